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

package embeddings

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielwellz/omnisonic/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeBackend struct {
	err   error
	texts []string
	calls atomic.Int32
	mu    syncutil.Mutex
	delay time.Duration
}

func (f *fakeBackend) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1, 0.5}, nil
}

func (*fakeBackend) ModelID() string { return "fake-model" }
func (*fakeBackend) Close() error    { return nil }

type fakeCache struct {
	getErr  error
	setErr  error
	entries map[string][]byte
	ttls    map[string]time.Duration
	block   bool
	mu      syncutil.Mutex
	closed  bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.setErr != nil {
		return f.setErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) Close() error {
	f.closed = true
	return nil
}

func TestAugmenter_Disabled(t *testing.T) {
	t.Parallel()

	a := New(Options{})
	assert.False(t, a.Enabled())
	vec, ok := a.Embed(context.Background(), "anything")
	assert.False(t, ok)
	assert.Nil(t, vec)
	require.NoError(t, a.Close())

	var nilAug *Augmenter
	assert.False(t, nilAug.Enabled())
	assert.Empty(t, nilAug.ModelID())
	assert.Equal(t, Stats{}, nilAug.Stats())
}

func TestAugmenter_BlankTextSkipsBackend(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	a := New(Options{Backend: backend})
	_, ok := a.Embed(context.Background(), "  \t\n ")
	assert.False(t, ok)
	assert.Zero(t, backend.calls.Load())
}

func TestAugmenter_MemoryTier(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	a := New(Options{Backend: backend})
	ctx := context.Background()

	first, ok := a.Embed(ctx, "Billie Eilish")
	require.True(t, ok)
	second, ok := a.Embed(ctx, "  billie   EILISH ")
	require.True(t, ok)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), backend.calls.Load())
	assert.Equal(t, []string{"billie eilish"}, backend.texts)

	stats := a.Stats()
	assert.Equal(t, int64(1), stats.Computed)
	assert.Equal(t, int64(1), stats.MemoryHits)
}

func TestAugmenter_MemoryTierExpires(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	clock := clockwork.NewFakeClock()
	a := New(Options{Backend: backend, TTL: time.Minute, Clock: clock})
	ctx := context.Background()

	_, ok := a.Embed(ctx, "lorde")
	require.True(t, ok)
	clock.Advance(59 * time.Second)
	_, ok = a.Embed(ctx, "lorde")
	require.True(t, ok)
	assert.Equal(t, int64(1), a.Stats().Computed)
	assert.Equal(t, int64(1), a.Stats().MemoryHits)

	clock.Advance(time.Second)
	_, ok = a.Embed(ctx, "lorde")
	require.True(t, ok)
	assert.Equal(t, int64(2), a.Stats().Computed)
	assert.Equal(t, int64(1), a.Stats().MemoryHits)
	assert.Equal(t, int32(2), backend.calls.Load())
}

func TestAugmenter_DeleteExpiredDropsMemoryEntries(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	a := New(Options{Backend: &fakeBackend{}, TTL: time.Minute, Clock: clock})
	ctx := context.Background()

	_, _ = a.Embed(ctx, "lorde")
	clock.Advance(30 * time.Second)
	_, _ = a.Embed(ctx, "sia")
	assert.Equal(t, 2, a.memory.ItemCount())

	clock.Advance(45 * time.Second)
	a.DeleteExpired(ctx)
	assert.Equal(t, 1, a.memory.ItemCount())
	_, ok := a.memory.Get(CacheKey(a.ModelID(), "sia"))
	assert.True(t, ok)
}

func TestAugmenter_ReturnsCopies(t *testing.T) {
	t.Parallel()

	a := New(Options{Backend: &fakeBackend{}})
	ctx := context.Background()

	vec, ok := a.Embed(ctx, "radiohead")
	require.True(t, ok)
	vec[0] = -42

	again, ok := a.Embed(ctx, "radiohead")
	require.True(t, ok)
	assert.InDelta(t, 9, again[0], 1e-9)
}

func TestAugmenter_WritesAndReadsExternalTier(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	external := newFakeCache()
	backend := &fakeBackend{}

	writer := New(Options{Backend: backend, External: external, TTL: time.Hour})
	vec, ok := writer.Embed(ctx, "Bad Guy")
	require.True(t, ok)

	key := CacheKey("fake-model", "bad guy")
	require.Contains(t, external.entries, key)
	assert.Equal(t, time.Hour, external.ttls[key])

	// a second process shares the external tier but not the memory tier
	otherBackend := &fakeBackend{}
	reader := New(Options{Backend: otherBackend, External: external})
	got, ok := reader.Embed(ctx, "bad guy")
	require.True(t, ok)
	assert.Equal(t, vec, got)
	assert.Zero(t, otherBackend.calls.Load())
	assert.Equal(t, int64(1), reader.Stats().ExternalHits)
}

func TestAugmenter_ExternalFailuresAreMisses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cache *fakeCache
		name  string
	}{
		{name: "read error", cache: &fakeCache{
			entries: map[string][]byte{}, ttls: map[string]time.Duration{},
			getErr: errors.New("connection refused"), setErr: errors.New("connection refused"),
		}},
		{name: "timeout", cache: &fakeCache{
			entries: map[string][]byte{}, ttls: map[string]time.Duration{}, block: true,
		}},
		{name: "malformed payload", cache: func() *fakeCache {
			c := newFakeCache()
			c.entries[CacheKey("fake-model", "hello")] = []byte("{not json")
			return c
		}()},
		{name: "empty vector payload", cache: func() *fakeCache {
			c := newFakeCache()
			c.entries[CacheKey("fake-model", "hello")] = []byte("[]")
			return c
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend := &fakeBackend{}
			a := New(Options{Backend: backend, External: tt.cache, CacheTimeout: 20 * time.Millisecond})
			vec, ok := a.Embed(context.Background(), "hello")
			require.True(t, ok)
			assert.Equal(t, []float32{5, 1, 0.5}, vec)
			assert.Equal(t, int32(1), backend.calls.Load())
			assert.Positive(t, a.Stats().ExternalErrors)
		})
	}
}

func TestAugmenter_BackendErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{err: errors.New("model crashed")}
	external := newFakeCache()
	a := New(Options{Backend: backend, External: external})

	vec, ok := a.Embed(context.Background(), "some headline")
	assert.False(t, ok)
	assert.Nil(t, vec)
	assert.Empty(t, external.entries)
	assert.Equal(t, int64(1), a.Stats().BackendErrors)

	// failures are not cached
	_, ok = a.Embed(context.Background(), "some headline")
	assert.False(t, ok)
	assert.Equal(t, int32(2), backend.calls.Load())
}

func TestAugmenter_ConcurrentCallsCoalesce(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{delay: 50 * time.Millisecond}
	a := New(Options{Backend: backend})

	var wg sync.WaitGroup
	results := make([][]float32, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			vec, ok := a.Embed(context.Background(), "Dua Lipa")
			if ok {
				results[i] = vec
			}
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, []float32{8, 1, 0.5}, r)
	}
	assert.LessOrEqual(t, backend.calls.Load(), int32(2))
}

func TestAugmenter_ModelIDOverride(t *testing.T) {
	t.Parallel()

	external := newFakeCache()
	a := New(Options{Backend: &fakeBackend{}, External: external, ModelID: "minilm-v2"})
	assert.Equal(t, "minilm-v2", a.ModelID())

	_, ok := a.Embed(context.Background(), "x")
	require.True(t, ok)
	assert.Contains(t, external.entries, CacheKey("minilm-v2", "x"))
}

type sweepingCache struct {
	*fakeCache
	swept int
}

func (s *sweepingCache) Sweep(context.Context) (int64, error) {
	s.swept++
	return 3, nil
}

func TestAugmenter_DeleteExpiredSweepsExternal(t *testing.T) {
	t.Parallel()

	external := &sweepingCache{fakeCache: newFakeCache()}
	a := New(Options{Backend: &fakeBackend{}, External: external})
	a.DeleteExpired(context.Background())
	assert.Equal(t, 1, external.swept)

	require.NoError(t, a.Close())
	assert.True(t, external.closed)
}
