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

package candidates

import (
	"github.com/danielwellz/omnisonic/pkg/tagging/normalize"
)

// DefaultArtistStoplist seeds the artist stoplist when the caller supplies
// none: placeholder credits that appear on compilations and untagged uploads.
var DefaultArtistStoplist = []string{"various artists", "unknown"}

// Stoplist holds, per entity type, the normalized labels that can never be
// selected as a match.
type Stoplist struct {
	sets map[Kind]map[string]struct{}
}

// NewStoplist builds a stoplist from raw labels. An empty artist list falls
// back to DefaultArtistStoplist.
func NewStoplist(artists, works, recordings []string) Stoplist {
	if len(artists) == 0 {
		artists = DefaultArtistStoplist
	}
	return Stoplist{sets: map[Kind]map[string]struct{}{
		KindArtist:    normalizedSet(artists),
		KindWork:      normalizedSet(works),
		KindRecording: normalizedSet(recordings),
	}}
}

func normalizedSet(labels []string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if n := normalize.Normalize(l); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// Blocked reports whether label is stoplisted for kind. Comparison is by
// normalized form, so case and diacritics are ignored.
func (s Stoplist) Blocked(kind Kind, label string) bool {
	set := s.sets[kind]
	if len(set) == 0 {
		return false
	}
	_, ok := set[normalize.Normalize(label)]
	return ok
}
