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
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// headlineGen generates headline-like strings mixing credits, accents and punctuation.
func headlineGen() *rapid.Generator[string] {
	words := []string{
		"Beyoncé", "ft.", "feat", "FEAT.", "featuring", "vs.", "VS", "Sigur", "Rós",
		"AC/DC", "Blink-182", "Guns", "N'", "Roses", "İstanbul", "—", "!!", "(Live)",
		"Mötley", "Crüe", "x", "&", "Ñandú", "ft.-", "Straße",
	}
	return rapid.Custom(func(t *rapid.T) string {
		count := rapid.IntRange(0, 8).Draw(t, "wordCount")
		parts := make([]string, count)
		for i := range count {
			parts[i] = rapid.SampledFrom(words).Draw(t, "word")
		}
		sep := rapid.SampledFrom([]string{" ", "  ", "\t", "-", ""}).Draw(t, "sep")
		return strings.Join(parts, sep)
	})
}

func TestPropertyNormalizeIdempotent(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.OneOf(rapid.String(), headlineGen()).Draw(t, "input")

		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent: %q → %q → %q", input, once, twice)
		}
	})
}

func TestPropertyNormalizeCanonicalWhitespace(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		out := Normalize(headlineGen().Draw(t, "input"))

		if strings.Contains(out, "  ") {
			t.Fatalf("double space in %q", out)
		}
		if strings.TrimSpace(out) != out {
			t.Fatalf("untrimmed output %q", out)
		}
	})
}

func TestPropertyTokenizeDistinct(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		tokens := Tokenize(Normalize(headlineGen().Draw(t, "input")))

		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			if tok == "" {
				t.Fatal("empty token")
			}
			if seen[tok] {
				t.Fatalf("duplicate token %q in %v", tok, tokens)
			}
			seen[tok] = true
		}
	})
}
