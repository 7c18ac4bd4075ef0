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

package tagging

import (
	"github.com/danielwellz/omnisonic/pkg/tagging/candidates"
)

// Method records which signals produced a match.
type Method string

const (
	// MethodNone marks an absent match.
	MethodNone Method = "none"
	// MethodHeuristic is the placeholder used while scanning; it never
	// survives into a returned result.
	MethodHeuristic Method = "heuristic"
	MethodFuzzy     Method = "fuzzy"
	MethodHybrid    Method = "hybrid"
)

// MatchDetail is the resolution of one entity type. Method is MethodNone
// exactly when Value is nil.
type MatchDetail struct {
	Value      *string `json:"value"`
	Snippet    *string `json:"snippet"`
	Method     Method  `json:"method"`
	Confidence float64 `json:"confidence"`
}

// Absent reports whether no candidate was selected.
func (d MatchDetail) Absent() bool {
	return d.Value == nil
}

// Label returns the matched label or "".
func (d MatchDetail) Label() string {
	if d.Value == nil {
		return ""
	}
	return *d.Value
}

func absentDetail() MatchDetail {
	return MatchDetail{Method: MethodNone}
}

// TagResult holds the independent resolutions of every entity type.
type TagResult struct {
	Artist    MatchDetail `json:"artist"`
	Work      MatchDetail `json:"work"`
	Recording MatchDetail `json:"recording"`
}

// EmptyResult is the result for text with no usable tokens.
func EmptyResult() TagResult {
	return TagResult{
		Artist:    absentDetail(),
		Work:      absentDetail(),
		Recording: absentDetail(),
	}
}

func (r TagResult) Detail(kind candidates.Kind) MatchDetail {
	switch kind {
	case candidates.KindArtist:
		return r.Artist
	case candidates.KindWork:
		return r.Work
	case candidates.KindRecording:
		return r.Recording
	default:
		return absentDetail()
	}
}

func (r *TagResult) set(kind candidates.Kind, d MatchDetail) {
	switch kind {
	case candidates.KindArtist:
		r.Artist = d
	case candidates.KindWork:
		r.Work = d
	case candidates.KindRecording:
		r.Recording = d
	}
}

// Confidences maps each entity type to its confidence.
func (r TagResult) Confidences() map[candidates.Kind]float64 {
	return map[candidates.Kind]float64{
		candidates.KindArtist:    r.Artist.Confidence,
		candidates.KindWork:      r.Work.Confidence,
		candidates.KindRecording: r.Recording.Confidence,
	}
}
