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

// Package tagging resolves the artist, work and recording a short piece of
// text (typically a news headline and its summary) refers to.
//
// Each entity type is resolved independently against its own candidate
// universe. A candidate must clear the fuzzy gate on its base score
// (max of token overlap and token-set string similarity) and, when
// embeddings are in use, the embedding gate on its cosine similarity to the
// query. The highest confidence wins; ties keep the earlier candidate.
package tagging

import (
	"context"
	"math"
	"strings"

	"github.com/danielwellz/omnisonic/pkg/tagging/candidates"
	"github.com/danielwellz/omnisonic/pkg/tagging/embeddings"
	"github.com/danielwellz/omnisonic/pkg/tagging/matcher"
	"github.com/danielwellz/omnisonic/pkg/tagging/normalize"
	"github.com/rs/zerolog/log"
)

const (
	// BaseWeight and EmbeddingWeight blend a hybrid confidence.
	BaseWeight      = 0.6
	EmbeddingWeight = 0.4

	confidencePrecision = 1e4
)

// EmbeddingClient is the optional semantic signal. Embed returning false
// means "no vector", never an error.
type EmbeddingClient interface {
	Enabled() bool
	Embed(ctx context.Context, text string) ([]float32, bool)
}

// MatchEntities resolves title and description against cfg. emb may be nil.
// It never fails: unusable input yields an all-absent result.
func MatchEntities(
	ctx context.Context,
	title, description string,
	cfg Config,
	emb EmbeddingClient,
) TagResult {
	raw := strings.TrimSpace(title + " " + description)
	normalized := normalize.Normalize(raw)
	tokens := normalize.NewTokenSet(normalize.Tokenize(normalized))
	if tokens.Len() == 0 {
		return EmptyResult()
	}

	q := &query{raw: raw, normalized: normalized, tokens: tokens}
	if cfg.useEmbeddings && emb != nil && emb.Enabled() {
		q.emb = emb
	}

	result := EmptyResult()
	for _, kind := range candidates.Kinds {
		result.set(kind, selectMatch(ctx, q, kind, cfg))
	}
	return result
}

type query struct {
	emb        EmbeddingClient
	tokens     normalize.TokenSet
	raw        string
	normalized string
	vector     []float32
	embedded   bool
	hasVector  bool
}

// queryVector embeds the query at most once per call.
func (q *query) queryVector(ctx context.Context) ([]float32, bool) {
	if !q.embedded {
		q.embedded = true
		q.vector, q.hasVector = q.emb.Embed(ctx, q.raw)
	}
	return q.vector, q.hasVector
}

func selectMatch(ctx context.Context, q *query, kind candidates.Kind, cfg Config) MatchDetail {
	best := MatchDetail{Method: MethodHeuristic}
	gate := cfg.fuzzyGate()
	stoplist := cfg.Stoplist()

	for _, c := range cfg.Index(kind).Candidates() {
		if stoplist.Blocked(kind, c.Label) {
			continue
		}
		score := matcher.Compare(q.tokens, c.Tokens)
		if score.Base < gate {
			continue
		}

		confidence, method, ok := combine(ctx, q, c, score.Base, cfg.embeddingThreshold)
		if !ok {
			continue
		}

		log.Debug().
			Str("kind", string(kind)).
			Str("candidate", c.Label).
			Float64("lexical", score.Lexical).
			Float64("fuzzy", score.Fuzzy).
			Float64("confidence", confidence).
			Str("method", string(method)).
			Msg("candidate passed gates")

		if confidence > best.Confidence {
			label := c.Label
			best = MatchDetail{
				Value:      &label,
				Confidence: confidence,
				Method:     method,
				Snippet:    findSnippet(q.raw, c.Label),
			}
		}
	}

	if best.Value == nil {
		return absentDetail()
	}
	return best
}

// combine turns a base score that already cleared the fuzzy gate into a
// confidence. ok is false when the embedding gate rejects the candidate. A
// missing query or candidate vector has similarity 0.
func combine(
	ctx context.Context,
	q *query,
	c candidates.EntityCandidate,
	base, embeddingThreshold float64,
) (confidence float64, method Method, ok bool) {
	if q.emb == nil {
		return roundConfidence(base), MethodFuzzy, true
	}
	var sim float64
	if qv, hasQuery := q.queryVector(ctx); hasQuery {
		cv, _ := q.emb.Embed(ctx, c.Normalized)
		sim = embeddings.Similarity(qv, cv)
	}
	if sim < embeddingThreshold {
		log.Debug().
			Str("candidate", c.Label).
			Float64("similarity", sim).
			Float64("threshold", embeddingThreshold).
			Msg("candidate rejected by embedding gate")
		return 0, MethodHybrid, false
	}
	return roundConfidence(BaseWeight*base + EmbeddingWeight*sim), MethodHybrid, true
}

func roundConfidence(v float64) float64 {
	return math.Round(v*confidencePrecision) / confidencePrecision
}
