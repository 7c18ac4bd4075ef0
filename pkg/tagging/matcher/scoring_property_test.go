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

package matcher

import (
	"strings"
	"testing"

	"github.com/danielwellz/omnisonic/pkg/tagging/normalize"
	"pgregory.net/rapid"
)

// labelGen generates catalogue-like labels from a small vocabulary so that
// generated pairs overlap often.
func labelGen() *rapid.Generator[string] {
	words := []string{
		"billie", "eilish", "daft", "punk", "punks", "love", "live", "night",
		"single", "drops", "new", "album", "the", "radiohead", "creep", "feat",
	}
	return rapid.Custom(func(t *rapid.T) string {
		count := rapid.IntRange(0, 6).Draw(t, "wordCount")
		parts := make([]string, count)
		for i := range count {
			parts[i] = rapid.SampledFrom(words).Draw(t, "word")
		}
		return strings.Join(parts, " ")
	})
}

func TestPropertyScoresBounded(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		q := normalize.TokenSetOf(labelGen().Draw(t, "query"))
		c := normalize.TokenSetOf(labelGen().Draw(t, "candidate"))

		s := Compare(q, c)
		for name, v := range map[string]float64{"lexical": s.Lexical, "fuzzy": s.Fuzzy, "base": s.Base} {
			if v < 0 || v > 1 {
				t.Fatalf("%s score %.4f out of [0,1]", name, v)
			}
		}
		if s.Base < s.Lexical || s.Base < s.Fuzzy {
			t.Fatalf("base %.4f below a component (%.4f, %.4f)", s.Base, s.Lexical, s.Fuzzy)
		}
	})
}

func TestPropertyScoresSymmetric(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		a := normalize.TokenSetOf(labelGen().Draw(t, "a"))
		b := normalize.TokenSetOf(labelGen().Draw(t, "b"))

		if Lexical(a, b) != Lexical(b, a) {
			t.Fatalf("lexical not symmetric")
		}
		if Fuzzy(a, b) != Fuzzy(b, a) {
			t.Fatalf("fuzzy not symmetric: %.4f vs %.4f", Fuzzy(a, b), Fuzzy(b, a))
		}
	})
}

func TestPropertyIdenticalScoresOne(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		label := labelGen().Draw(t, "label")
		s := normalize.TokenSetOf(label)
		if s.Len() == 0 {
			return
		}
		if got := Compare(s, s).Base; got != 1 {
			t.Fatalf("identical sets scored %.4f", got)
		}
	})
}
