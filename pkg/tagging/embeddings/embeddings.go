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

// Package embeddings provides the optional semantic signal for tagging: a
// model backend that turns text into vectors, a two-tier vector cache, and
// cosine similarity between vectors.
//
// The Augmenter is built once per process and passed to every matching call.
// When no backend is configured it reports itself disabled and every Embed
// call returns unavailable; callers treat that as "no semantic signal", never
// as an error.
package embeddings

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by an ExternalCache when the key is absent or expired.
var ErrMiss = errors.New("embedding cache miss")

// Backend computes an embedding vector for text.
type Backend interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// ModelID identifies the model; it is part of every cache key.
	ModelID() string
	Close() error
}

// ExternalCache is a shared byte store with per-entry TTL (Redis, SQLite,
// bbolt). Get returns ErrMiss for absent or expired keys. Implementations
// should honour ctx deadlines.
type ExternalCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Sweeper is implemented by external caches that need expired entries
// removed explicitly.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}
