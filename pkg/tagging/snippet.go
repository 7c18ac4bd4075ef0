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
	"strings"
	"unicode/utf8"
)

// findSnippet returns the first case-insensitive literal occurrence of label
// in text, as it appears in text, or nil.
func findSnippet(text, label string) *string {
	if label == "" || text == "" {
		return nil
	}
	width := utf8.RuneCountInString(label)
	// byte offset of every rune start, then the end of text
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))

	for start := 0; start+width < len(offsets); start++ {
		window := text[offsets[start]:offsets[start+width]]
		if strings.EqualFold(window, label) {
			return &window
		}
	}
	return nil
}
