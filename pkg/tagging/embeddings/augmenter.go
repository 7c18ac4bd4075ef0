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
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTTL is how long a vector stays valid in either cache tier.
	DefaultTTL = 24 * time.Hour
	// DefaultCacheTimeout bounds every external cache read or write.
	DefaultCacheTimeout = 250 * time.Millisecond
)

// Options configures an Augmenter. A nil Backend yields a disabled augmenter.
type Options struct {
	Backend  Backend
	External ExternalCache
	// ModelID overrides Backend.ModelID() in cache keys.
	ModelID      string
	TTL          time.Duration
	CacheTimeout time.Duration
	// Clock decides memory tier expiry. Defaults to the real clock.
	Clock clockwork.Clock
}

// Stats counts where Embed calls were served from.
type Stats struct {
	MemoryHits     int64 `json:"memory_hits"`
	ExternalHits   int64 `json:"external_hits"`
	Computed       int64 `json:"computed"`
	BackendErrors  int64 `json:"backend_errors"`
	ExternalErrors int64 `json:"external_errors"`
}

// Augmenter embeds text through a memory tier, an optional shared external
// tier, and finally the model backend. It is safe for concurrent use.
type Augmenter struct {
	backend      Backend
	external     ExternalCache
	memory       *gocache.Cache
	clock        clockwork.Clock
	group        singleflight.Group
	modelID      string
	ttl          time.Duration
	cacheTimeout time.Duration

	memoryHits     atomic.Int64
	externalHits   atomic.Int64
	computed       atomic.Int64
	backendErrors  atomic.Int64
	externalErrors atomic.Int64
}

// New builds an Augmenter. It never fails: a missing backend only disables
// the semantic signal.
func New(opts Options) *Augmenter {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	timeout := opts.CacheTimeout
	if timeout <= 0 {
		timeout = DefaultCacheTimeout
	}
	modelID := opts.ModelID
	if modelID == "" && opts.Backend != nil {
		modelID = opts.Backend.ModelID()
	}

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	// expiry is tracked per entry against clock; DeleteExpired reclaims
	a := &Augmenter{
		backend:      opts.Backend,
		external:     opts.External,
		memory:       gocache.New(gocache.NoExpiration, 0),
		clock:        clock,
		modelID:      modelID,
		ttl:          ttl,
		cacheTimeout: timeout,
	}

	if a.backend == nil {
		log.Info().Msg("no embedding backend configured; semantic matching disabled")
	} else {
		log.Info().
			Str("model", modelID).
			Dur("ttl", ttl).
			Bool("external_cache", a.external != nil).
			Msg("embedding augmenter ready")
	}
	return a
}

// Enabled reports whether a backend is loaded.
func (a *Augmenter) Enabled() bool {
	return a != nil && a.backend != nil
}

// ModelID returns the model identifier used in cache keys.
func (a *Augmenter) ModelID() string {
	if a == nil {
		return ""
	}
	return a.modelID
}

// Embed returns the vector for text and true, or false when the augmenter is
// disabled, the text is blank, or the backend failed. Cache failures of any
// kind are treated as misses.
func (a *Augmenter) Embed(ctx context.Context, text string) ([]float32, bool) {
	if !a.Enabled() {
		return nil, false
	}
	canonical := canonicalText(text)
	if canonical == "" {
		return nil, false
	}
	key := CacheKey(a.modelID, canonical)

	if vec, ok := a.readMemory(key); ok {
		a.memoryHits.Add(1)
		return cloneVector(vec), true
	}

	if vec, ok := a.readExternal(ctx, key); ok {
		a.externalHits.Add(1)
		a.writeMemory(key, vec)
		return cloneVector(vec), true
	}

	res, err, _ := a.group.Do(key, func() (any, error) {
		vec, err := a.backend.Embed(ctx, canonical)
		if err != nil {
			return nil, fmt.Errorf("backend embed: %w", err)
		}
		if len(vec) == 0 {
			return nil, errEmptyVector
		}
		a.computed.Add(1)
		a.writeMemory(key, vec)
		a.writeExternal(ctx, key, vec)
		return vec, nil
	})
	if err != nil {
		a.backendErrors.Add(1)
		log.Warn().Err(err).Str("model", a.modelID).Msg("embedding unavailable")
		return nil, false
	}
	vec, ok := res.([]float32)
	if !ok {
		return nil, false
	}
	return cloneVector(vec), true
}

// memoryEntry is a vector stamped with the moment it stops being valid.
type memoryEntry struct {
	expires time.Time
	vec     []float32
}

func (a *Augmenter) readMemory(key string) ([]float32, bool) {
	v, ok := a.memory.Get(key)
	if !ok {
		return nil, false
	}
	entry, ok := v.(memoryEntry)
	if !ok || !a.clock.Now().Before(entry.expires) {
		return nil, false
	}
	return entry.vec, true
}

func (a *Augmenter) writeMemory(key string, vec []float32) {
	a.memory.Set(key, memoryEntry{vec: vec, expires: a.clock.Now().Add(a.ttl)}, gocache.NoExpiration)
}

func (a *Augmenter) readExternal(ctx context.Context, key string) ([]float32, bool) {
	if a.external == nil {
		return nil, false
	}
	payload, err := bounded(ctx, a.cacheTimeout, func(cctx context.Context) ([]byte, error) {
		return a.external.Get(cctx, key)
	})
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			a.externalErrors.Add(1)
			log.Debug().Err(err).Str("key", key).Msg("external embedding cache read failed")
		}
		return nil, false
	}
	vec, err := decodeVector(payload)
	if err != nil {
		a.externalErrors.Add(1)
		log.Debug().Err(err).Str("key", key).Msg("discarding external embedding cache entry")
		return nil, false
	}
	return vec, true
}

func (a *Augmenter) writeExternal(ctx context.Context, key string, vec []float32) {
	if a.external == nil {
		return
	}
	payload, err := encodeVector(vec)
	if err != nil {
		log.Debug().Err(err).Msg("skipping external embedding cache write")
		return
	}
	_, err = bounded(ctx, a.cacheTimeout, func(cctx context.Context) (struct{}, error) {
		return struct{}{}, a.external.Set(cctx, key, payload, a.ttl)
	})
	if err != nil {
		a.externalErrors.Add(1)
		log.Debug().Err(err).Str("key", key).Msg("external embedding cache write failed")
	}
}

// bounded runs fn with a deadline and stops waiting once it passes, even if
// fn ignores its context.
func bounded[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(cctx)
		done <- result{val: v, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-cctx.Done():
		var zero T
		return zero, fmt.Errorf("external embedding cache: %w", cctx.Err())
	}
}

// DeleteExpired drops expired vectors from the memory tier and sweeps the
// external tier when it supports it.
func (a *Augmenter) DeleteExpired(ctx context.Context) {
	if a == nil {
		return
	}
	now := a.clock.Now()
	for key, item := range a.memory.Items() {
		if entry, ok := item.Object.(memoryEntry); !ok || !now.Before(entry.expires) {
			a.memory.Delete(key)
		}
	}
	sw, ok := a.external.(Sweeper)
	if !ok {
		return
	}
	n, err := sw.Sweep(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to sweep external embedding cache")
		return
	}
	if n > 0 {
		log.Debug().Int64("removed", n).Msg("swept expired embeddings")
	}
}

// Stats returns a snapshot of the cache counters.
func (a *Augmenter) Stats() Stats {
	if a == nil {
		return Stats{}
	}
	return Stats{
		MemoryHits:     a.memoryHits.Load(),
		ExternalHits:   a.externalHits.Load(),
		Computed:       a.computed.Load(),
		BackendErrors:  a.backendErrors.Load(),
		ExternalErrors: a.externalErrors.Load(),
	}
}

// Close releases the backend and the external cache.
func (a *Augmenter) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close embedding backend: %w", err))
		}
	}
	if a.external != nil {
		if err := a.external.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close embedding cache: %w", err))
		}
	}
	return errors.Join(errs...)
}
