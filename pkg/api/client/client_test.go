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

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielwellz/omnisonic/pkg/api"
	"github.com/danielwellz/omnisonic/pkg/batch"
	"github.com/danielwellz/omnisonic/pkg/config"
	"github.com/danielwellz/omnisonic/pkg/testing/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	vals := config.BaseDefaults
	cfg, err := helpers.NewTestConfigWith(helpers.NewMemoryFS(), "/cfg", &vals)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(api.NewRouter(ctx, cfg, nil))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})

	c, err := New(srv.URL+"/", 5*time.Second)
	require.NoError(t, err)
	return c
}

func TestClient_Tag(t *testing.T) {
	t.Parallel()
	c := newTestClient(t)

	result, err := c.Tag(context.Background(), &api.TagRequest{
		Title:   "Lorde announces new album",
		Artists: []string{"Lorde"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Lorde", result.Artist.Label())
}

func TestClient_TagBatch(t *testing.T) {
	t.Parallel()
	c := newTestClient(t)

	out, err := c.TagBatch(context.Background(), &api.BatchRequest{
		Artists: []string{"Lorde"},
		Items:   []batch.Item{{ID: "1", Title: "Lorde live"}, {ID: "2", Title: "Weather"}},
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "Lorde", out.Results[0].Result.Artist.Label())
	assert.True(t, out.Results[1].Result.Artist.Absent())
}

func TestClient_Health(t *testing.T) {
	t.Parallel()
	c := newTestClient(t)

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.False(t, health.EmbeddingsEnabled)
}

func TestClient_StatusError(t *testing.T) {
	t.Parallel()
	c := newTestClient(t)

	_, err := c.TagBatch(context.Background(), &api.BatchRequest{})
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadRequest, serr.StatusCode)
	assert.Equal(t, "validation failed", serr.Body.Error)
	assert.Contains(t, serr.Error(), "items is required")
}

func TestClient_NonJSONError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = c.Health(context.Background())
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "api returned status 502", serr.Error())
}

func TestNew_EmptyURL(t *testing.T) {
	t.Parallel()
	_, err := New("  ", time.Second)
	require.ErrorIs(t, err, ErrEmptyBaseURL)
}
