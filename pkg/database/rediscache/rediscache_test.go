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

package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/danielwellz/omnisonic/pkg/tagging/embeddings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetGetExpire(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	store, err := Open(context.Background(), "redis://"+mr.Addr(), 250*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	ctx := context.Background()
	_, err = store.Get(ctx, "omnisonic:embedding:abc")
	require.ErrorIs(t, err, embeddings.ErrMiss)

	require.NoError(t, store.Set(ctx, "omnisonic:embedding:abc", []byte(`[1,2]`), time.Hour))
	got, err := store.Get(ctx, "omnisonic:embedding:abc")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2]`), got)
	assert.Equal(t, time.Hour, mr.TTL("omnisonic:embedding:abc"))

	mr.FastForward(time.Hour + time.Second)
	_, err = store.Get(ctx, "omnisonic:embedding:abc")
	require.ErrorIs(t, err, embeddings.ErrMiss)
}

func TestStore_ServerErrorsAreNotMisses(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	store, err := Open(context.Background(), "redis://"+mr.Addr(), 250*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	mr.SetError("LOADING Redis is loading the dataset in memory")
	_, err = store.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, embeddings.ErrMiss)
	require.Error(t, store.Set(context.Background(), "k", []byte(`[1]`), time.Minute))
}

func TestOpen_Failures(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "http://not-redis", time.Second)
	require.ErrorContains(t, err, "invalid redis url")

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	addr := mr.Addr()
	mr.Close()
	_, err = Open(context.Background(), "redis://"+addr, 100*time.Millisecond)
	require.Error(t, err)
}
