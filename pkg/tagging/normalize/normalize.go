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

// Package normalize canonicalizes free text (feed headlines, catalogue labels)
// into a comparable form and splits it into word tokens.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RoleMarker is the single token every featuring/versus credit marker
// collapses to.
const RoleMarker = "feat"

var (
	// roleMarkerRegex runs before punctuation stripping so dotted forms
	// ("feat.", "ft.", "vs.") are recognised.
	roleMarkerRegex = regexp.MustCompile(`(?i)\b(?:featuring|feat\.?|ft\.?|vs\.?)\s+`)
	// bareMarkerRegex catches markers that only become visible once
	// punctuation has been replaced with spaces (e.g. "ft.-x" → "ft x").
	bareMarkerRegex = regexp.MustCompile(`(?i)\b(?:featuring|feat|ft|vs) `)
	nonAlnumRegex   = regexp.MustCompile(`[^\p{L}\p{N}\p{M}]+`)
	wordRegex       = regexp.MustCompile(`[\p{L}\p{N}\p{M}'\-]+`)
)

// foldDiacritics decomposes s, drops nonspacing marks and recomposes.
// "Beyoncé" → "Beyonce", "Sigur Rós" → "Sigur Ros".
func foldDiacritics(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	if folded, _, err := transform.String(t, s); err == nil {
		return folded
	}
	return s
}

// Normalize converts raw text into its canonical matching form.
//
// Pipeline:
//
//	Stage 1: diacritic folding (NFD, strip Mn, NFC)
//	Stage 2: role markers ("feat.", "ft", "featuring", "vs.") → "feat"
//	Stage 3: non-alphanumeric runs → single space
//	Stage 4: lowercase (re-folding marks that case mapping can introduce, "İ" → "i̇")
//	Stage 5: whitespace collapse and trim
//
// The function is deterministic and idempotent:
//
//	Normalize(Normalize(x)) == Normalize(x)
//
// Example:
//
//	Normalize("Beyoncé ft. JAY-Z — Drunk in Love!") → "beyonce feat jay z drunk in love"
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = foldDiacritics(s)
	s = roleMarkerRegex.ReplaceAllString(s, RoleMarker+" ")
	s = nonAlnumRegex.ReplaceAllString(s, " ")
	s = foldDiacritics(strings.ToLower(s))
	s = strings.Join(strings.Fields(s), " ")

	return bareMarkerRegex.ReplaceAllString(s, RoleMarker+" ")
}

// Tokenize splits a normalized string into its distinct words, in order of
// first occurrence. Empty input yields an empty (nil) slice.
func Tokenize(normalized string) []string {
	words := wordRegex.FindAllString(normalized, -1)
	if len(words) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(words))
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		tokens = append(tokens, w)
	}
	return tokens
}
