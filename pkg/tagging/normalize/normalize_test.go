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

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "punctuation only", input: "!!! ---", expected: ""},
		{name: "whitespace collapse", input: "  Daft   Punk \t", expected: "daft punk"},
		{name: "diacritics", input: "Sigur Rós", expected: "sigur ros"},
		{name: "dotted ft", input: "Beyoncé ft. JAY-Z — Drunk in Love!", expected: "beyonce feat jay z drunk in love"},
		{name: "featuring", input: "Artist featuring Other", expected: "artist feat other"},
		{name: "feat dot", input: "Artist Feat. Other", expected: "artist feat other"},
		{name: "versus dotted", input: "Jay vs. Nas", expected: "jay feat nas"},
		{name: "versus bare", input: "Jay VS Nas", expected: "jay feat nas"},
		{name: "marker inside word untouched", input: "Left Eye", expected: "left eye"},
		{name: "marker exposed by punctuation", input: "ft.-Guest", expected: "feat guest"},
		{name: "trailing marker without whitespace", input: "Remix ft", expected: "remix ft"},
		{name: "slash separator", input: "AC/DC", expected: "ac dc"},
		{name: "apostrophe dropped", input: "Guns N' Roses", expected: "guns n roses"},
		{name: "dotted capital i", input: "İstanbul", expected: "istanbul"},
		{name: "digits kept", input: "Blink-182", expected: "blink 182"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Tokenize(""))
	assert.Equal(t, []string{"billie", "eilish", "drops"}, Tokenize("billie eilish drops billie"))
	assert.Equal(t, []string{"rock'n'roll", "x-ray"}, Tokenize("rock'n'roll x-ray"))
}

func TestTokenSet(t *testing.T) {
	t.Parallel()

	q := TokenSetOf("Billie Eilish drops surprise single")
	c := TokenSetOf("Billie Eilish")

	assert.Equal(t, 5, q.Len())
	assert.Equal(t, 2, c.Len())
	assert.True(t, q.Has("eilish"))
	assert.False(t, c.Has("single"))
	assert.Equal(t, 2, q.IntersectionSize(c))
	assert.Equal(t, 2, c.IntersectionSize(q))
	assert.Equal(t, 0, TokenSetOf("").Len())
}
