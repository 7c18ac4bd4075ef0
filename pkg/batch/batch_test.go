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

package batch

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"

	"github.com/danielwellz/omnisonic/pkg/tagging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() tagging.Config {
	p := tagging.DefaultParams()
	p.Artists = []string{"Billie Eilish", "Various Artists"}
	p.Works = []string{"Bad Guy"}
	return tagging.NewConfig(p)
}

func TestReadItems(t *testing.T) {
	t.Parallel()

	in := "id,title,description\n" +
		"a1,Billie Eilish announces tour,Dates in May\n" +
		",\"Untitled, with comma\",\n"

	items, err := ReadItems(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, Item{ID: "a1", Title: "Billie Eilish announces tour", Description: "Dates in May"}, items[0])
	assert.Equal(t, "Untitled, with comma", items[1].Title)
	assert.Empty(t, items[1].ID)
}

func TestReadItems_MissingDescriptionColumn(t *testing.T) {
	t.Parallel()

	items, err := ReadItems(strings.NewReader("id,title\nx,Hello\n"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Description)
}

func TestReadItems_Empty(t *testing.T) {
	t.Parallel()

	_, err := ReadItems(strings.NewReader("id,title,description\n"))
	require.ErrorIs(t, err, ErrNoItems)
}

func TestRun_PreservesOrder(t *testing.T) {
	t.Parallel()

	items := make([]Item, 50)
	for i := range items {
		items[i] = Item{ID: fmt.Sprintf("item-%02d", i), Title: "Billie Eilish live"}
		if i%2 == 1 {
			items[i].Title = "Weather report"
		}
	}

	results, err := Run(context.Background(), items, testConfig(), nil, 8)
	require.NoError(t, err)
	require.Len(t, results, len(items))

	for i, r := range results {
		assert.Equal(t, items[i].ID, r.ID)
		if i%2 == 0 {
			assert.Equal(t, "Billie Eilish", r.Result.Artist.Label())
			assert.Equal(t, tagging.MethodFuzzy, r.Result.Artist.Method)
		} else {
			assert.True(t, r.Result.Artist.Absent())
		}
	}
}

func TestRun_AssignsMissingIDs(t *testing.T) {
	t.Parallel()

	results, err := Run(context.Background(), []Item{{Title: "a"}, {Title: "b"}}, testConfig(), nil, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NotEmpty(t, results[0].ID)
	assert.NotEqual(t, results[0].ID, results[1].ID)
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, []Item{{Title: "Billie Eilish"}}, testConfig(), nil, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWriteResults(t *testing.T) {
	t.Parallel()

	results, err := Run(context.Background(), []Item{
		{ID: "1", Title: "Billie Eilish performs Bad Guy"},
		{ID: "2", Title: "Nothing relevant here"},
	}, testConfig(), nil, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, results))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("missing column %q", name)
		return -1
	}

	first, second := records[1], records[2]
	assert.Equal(t, "1", first[col("id")])
	assert.Equal(t, "Billie Eilish", first[col("artist")])
	assert.Equal(t, "fuzzy", first[col("artist_method")])
	assert.Equal(t, "Billie Eilish", first[col("artist_snippet")])
	assert.Equal(t, "Bad Guy", first[col("work")])

	assert.Empty(t, second[col("artist")])
	assert.Equal(t, "none", second[col("artist_method")])
	assert.Equal(t, "0", second[col("artist_confidence")])
}
