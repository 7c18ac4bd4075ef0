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

// Package matcher scores a normalized query against a candidate label using
// token overlap and approximate string similarity.
package matcher

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/danielwellz/omnisonic/pkg/tagging/normalize"
	"github.com/hbollon/go-edlib"
)

// Score is the breakdown of a query/candidate comparison. All values are in [0, 1].
type Score struct {
	Lexical float64
	Fuzzy   float64
	Base    float64
}

// Compare scores query tokens against candidate tokens.
func Compare(query, candidate normalize.TokenSet) Score {
	lex := Lexical(query, candidate)
	fz := Fuzzy(query, candidate)
	return Score{Lexical: lex, Fuzzy: fz, Base: max(lex, fz)}
}

// Lexical is the token overlap ratio |q ∩ c| / max(|q|, |c|). It is 0 when
// either set is empty.
func Lexical(query, candidate normalize.TokenSet) float64 {
	if query.Len() == 0 || candidate.Len() == 0 {
		return 0
	}
	common := query.IntersectionSize(candidate)
	return float64(common) / float64(max(query.Len(), candidate.Len()))
}

// Fuzzy is a token-set ratio between the two normalized strings, tolerant of
// word order and of extra words on either side.
//
// Tokens are split into the sorted intersection and the sorted remainders of
// each side, and the best indel ratio among
//
//	(intersection, intersection + query rest)
//	(intersection, intersection + candidate rest)
//	(intersection + query rest, intersection + candidate rest)
//
// is returned. When every token of one side appears in the other the score is 1.
//
// Example:
//
//	Fuzzy("billie eilish drops surprise single", "billie eilish") → 1.0
//	Fuzzy("daft punk", "daft punks")                             → ≈0.95
func Fuzzy(query, candidate normalize.TokenSet) float64 {
	if query.Len() == 0 || candidate.Len() == 0 {
		return 0
	}

	var inter, queryRest, candRest []string
	for t := range query {
		if candidate.Has(t) {
			inter = append(inter, t)
		} else {
			queryRest = append(queryRest, t)
		}
	}
	for t := range candidate {
		if !query.Has(t) {
			candRest = append(candRest, t)
		}
	}

	if len(inter) > 0 && (len(queryRest) == 0 || len(candRest) == 0) {
		return 1
	}

	sort.Strings(inter)
	sort.Strings(queryRest)
	sort.Strings(candRest)

	sect := strings.Join(inter, " ")
	combQuery := joinNonEmpty(sect, strings.Join(queryRest, " "))
	combCand := joinNonEmpty(sect, strings.Join(candRest, " "))

	best := ratio(combQuery, combCand)
	if sect != "" {
		best = max(best, ratio(sect, combQuery), ratio(sect, combCand))
	}
	return best
}

// ratio is the normalized indel similarity 2·LCS / (|a| + |b|), in runes.
func ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 || a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	return float64(2*edlib.LCS(a, b)) / float64(total)
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
