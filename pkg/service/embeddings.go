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

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielwellz/omnisonic/pkg/config"
	"github.com/danielwellz/omnisonic/pkg/database/boltcache"
	"github.com/danielwellz/omnisonic/pkg/database/rediscache"
	"github.com/danielwellz/omnisonic/pkg/database/sqlitecache"
	"github.com/danielwellz/omnisonic/pkg/tagging/embeddings"
	"github.com/danielwellz/omnisonic/pkg/tagging/embeddings/httpembed"
	"github.com/danielwellz/omnisonic/pkg/tagging/embeddings/onnx"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

var ErrUnknownBackend = errors.New("unknown backend")

// NewAugmenter builds the embedding augmenter from cfg. It never fails: a
// backend that cannot start disables embeddings, and an external cache that
// cannot be reached leaves the memory tier on its own.
func NewAugmenter(ctx context.Context, cfg *config.Instance, dataDir string, clock clockwork.Clock) *embeddings.Augmenter {
	backend, err := newBackend(cfg)
	if err != nil {
		log.Error().Err(err).Msg("embedding backend unavailable, continuing without embeddings")
		backend = nil
	}
	if backend == nil {
		log.Info().Msg("embeddings disabled")
		return embeddings.New(embeddings.Options{})
	}

	external, err := newExternalCache(ctx, cfg, dataDir, clock)
	if err != nil {
		log.Error().Err(err).Msg("embedding cache unavailable, using memory tier only")
		external = nil
	}

	aug := embeddings.New(embeddings.Options{
		Backend:      backend,
		External:     external,
		ModelID:      cfg.EmbeddingModel(),
		TTL:          cfg.EmbeddingCacheTTL(),
		CacheTimeout: cfg.CacheTimeout(),
		Clock:        clock,
	})
	log.Info().
		Str("backend", cfg.EmbeddingBackend()).
		Str("model", aug.ModelID()).
		Str("cache", cfg.CacheBackend()).
		Msg("embeddings enabled")
	return aug
}

// newBackend returns nil without error when no backend is configured.
func newBackend(cfg *config.Instance) (embeddings.Backend, error) {
	switch name := cfg.EmbeddingBackend(); name {
	case config.EmbeddingBackendNone:
		return nil, nil //nolint:nilnil // no backend configured
	case config.EmbeddingBackendONNX:
		o := cfg.EmbeddingsONNX()
		emb, err := onnx.New(onnx.Config{
			LibraryPath:   o.LibraryPath,
			ModelPath:     o.ModelPath,
			TokenizerPath: o.TokenizerPath,
			ModelID:       cfg.EmbeddingModel(),
			MaxSeqLen:     o.MaxSeqLen,
			Threads:       o.Threads,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to start onnx backend: %w", err)
		}
		return emb, nil
	case config.EmbeddingBackendHTTP:
		h := cfg.EmbeddingsHTTP()
		client, err := httpembed.New(httpembed.Config{
			BaseURL: h.BaseURL,
			APIKey:  h.APIKey,
			Model:   cfg.EmbeddingModel(),
			Timeout: time.Duration(h.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to start http backend: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// newExternalCache returns nil without error when no shared cache is
// configured.
func newExternalCache(
	ctx context.Context,
	cfg *config.Instance,
	dataDir string,
	clock clockwork.Clock,
) (embeddings.ExternalCache, error) {
	switch name := cfg.CacheBackend(); name {
	case config.CacheBackendNone:
		return nil, nil //nolint:nilnil // no shared cache configured
	case config.CacheBackendRedis:
		store, err := rediscache.Open(ctx, cfg.CacheRedisURL(), cfg.CacheTimeout())
		if err != nil {
			return nil, fmt.Errorf("failed to open redis cache: %w", err)
		}
		return store, nil
	case config.CacheBackendSQLite:
		store, err := sqlitecache.Open(ctx, cfg.CachePath(dataDir), clock)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
		}
		return store, nil
	case config.CacheBackendBolt:
		store, err := boltcache.Open(cfg.CachePath(dataDir), clock)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt cache: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// runJanitor drops expired cache entries every interval until ctx ends.
func runJanitor(ctx context.Context, clock clockwork.Clock, interval time.Duration, aug *embeddings.Augmenter) {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			aug.DeleteExpired(ctx)
		}
	}
}
