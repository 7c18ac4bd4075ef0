// Omnisonic
// Copyright (c) 2026 The Omnisonic Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Omnisonic.
//
// Omnisonic is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Omnisonic is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Omnisonic.  If not, see <http://www.gnu.org/licenses/>.

// Package candidates holds the per-entity-type candidate universes a headline
// is resolved against, together with the stoplists that veto candidates.
package candidates

import (
	"github.com/danielwellz/omnisonic/pkg/tagging/normalize"
)

// Kind names one of the entity types a headline can refer to.
type Kind string

const (
	KindArtist    Kind = "artist"
	KindWork      Kind = "work"
	KindRecording Kind = "recording"
)

// Kinds lists every entity type in result order.
var Kinds = []Kind{KindArtist, KindWork, KindRecording}

// EntityCandidate is one known catalogue label with its precomputed
// normalized form and token set. Normalized is a pure function of Label.
type EntityCandidate struct {
	Tokens     normalize.TokenSet
	Label      string
	Normalized string
}

// Index is the deduplicated, ordered candidate universe for one entity type.
type Index struct {
	candidates []EntityCandidate
}

// BuildIndex normalizes labels once, keeping the first label seen for each
// normalized form. Labels that normalize to "" are dropped.
func BuildIndex(labels []string) Index {
	seen := make(map[string]struct{}, len(labels))
	out := make([]EntityCandidate, 0, len(labels))
	for _, label := range labels {
		normalized := normalize.Normalize(label)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, EntityCandidate{
			Label:      label,
			Normalized: normalized,
			Tokens:     normalize.NewTokenSet(normalize.Tokenize(normalized)),
		})
	}
	return Index{candidates: out}
}

// Len returns the number of distinct candidates.
func (ix Index) Len() int {
	return len(ix.candidates)
}

// Candidates returns the candidates in index order. The slice is shared and
// must not be modified.
func (ix Index) Candidates() []EntityCandidate {
	return ix.candidates
}

// Labels returns the representative label of every candidate, in order.
func (ix Index) Labels() []string {
	labels := make([]string, len(ix.candidates))
	for i, c := range ix.candidates {
		labels[i] = c.Label
	}
	return labels
}
