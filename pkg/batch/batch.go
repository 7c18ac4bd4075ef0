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

// Package batch tags many items against one candidate catalogue, reading
// and writing CSV.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/danielwellz/omnisonic/pkg/tagging"
	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is used when Run is given a non-positive limit.
const DefaultConcurrency = 4

var ErrNoItems = errors.New("no items to tag")

// Item is one headline to tag.
type Item struct {
	ID          string `csv:"id" json:"id,omitempty" validate:"omitempty,notblank,max=128"`
	Title       string `csv:"title" json:"title" validate:"max=1024"`
	Description string `csv:"description" json:"description,omitempty" validate:"max=8192"`
}

type Result struct {
	ID     string            `json:"id"`
	Result tagging.TagResult `json:"result"`
}

// ReadItems parses CSV with an id,title,description header. Missing
// columns are left empty.
func ReadItems(r io.Reader) ([]Item, error) {
	var items []Item
	if err := gocsv.Unmarshal(r, &items); err != nil {
		return nil, fmt.Errorf("failed to parse items CSV: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	return items, nil
}

// Run tags every item with at most concurrency in flight. Results are in
// input order and items without an ID are given a random one.
func Run(
	ctx context.Context,
	items []Item,
	cfg tagging.Config,
	emb tagging.EmbeddingClient,
	concurrency int,
) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]Result, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			id := item.ID
			if id == "" {
				id = uuid.NewString()
			}
			results[i] = Result{
				ID:     id,
				Result: tagging.MatchEntities(gctx, item.Title, item.Description, cfg, emb),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch interrupted: %w", err)
	}
	return results, nil
}

// row is the flattened CSV form of a Result.
type row struct {
	ID                  string  `csv:"id"`
	Artist              string  `csv:"artist"`
	ArtistMethod        string  `csv:"artist_method"`
	ArtistSnippet       string  `csv:"artist_snippet"`
	Work                string  `csv:"work"`
	WorkMethod          string  `csv:"work_method"`
	WorkSnippet         string  `csv:"work_snippet"`
	Recording           string  `csv:"recording"`
	RecordingMethod     string  `csv:"recording_method"`
	RecordingSnippet    string  `csv:"recording_snippet"`
	ArtistConfidence    float64 `csv:"artist_confidence"`
	WorkConfidence      float64 `csv:"work_confidence"`
	RecordingConfidence float64 `csv:"recording_confidence"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toRow(r Result) row {
	t := r.Result
	return row{
		ID:                  r.ID,
		Artist:              t.Artist.Label(),
		ArtistMethod:        string(t.Artist.Method),
		ArtistSnippet:       deref(t.Artist.Snippet),
		ArtistConfidence:    t.Artist.Confidence,
		Work:                t.Work.Label(),
		WorkMethod:          string(t.Work.Method),
		WorkSnippet:         deref(t.Work.Snippet),
		WorkConfidence:      t.Work.Confidence,
		Recording:           t.Recording.Label(),
		RecordingMethod:     string(t.Recording.Method),
		RecordingSnippet:    deref(t.Recording.Snippet),
		RecordingConfidence: t.Recording.Confidence,
	}
}

// WriteResults writes one CSV row per result, absent matches as empty
// cells.
func WriteResults(w io.Writer, results []Result) error {
	rows := make([]row, 0, len(results))
	for _, r := range results {
		rows = append(rows, toRow(r))
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write results CSV: %w", err)
	}
	return nil
}
