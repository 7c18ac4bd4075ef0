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

package config

import (
	"path/filepath"
	"time"
)

const (
	CacheBackendNone   = "none"
	CacheBackendRedis  = "redis"
	CacheBackendSQLite = "sqlite"
	CacheBackendBolt   = "bolt"

	DefaultCacheTimeout  = 250 * time.Millisecond
	DefaultSweepInterval = 10 * time.Minute
)

type Cache struct {
	TimeoutMs         *int   `toml:"timeout_ms,omitempty"`
	SweepIntervalSecs *int   `toml:"sweep_interval_secs,omitempty"`
	Backend           string `toml:"backend"`
	RedisURL          string `toml:"redis_url,omitempty"`
	Path              string `toml:"path,omitempty"`
}

// CacheBackend is one of the CacheBackend* values; unknown values read as
// none.
func (c *Instance) CacheBackend() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch c.vals.Cache.Backend {
	case CacheBackendRedis, CacheBackendSQLite, CacheBackendBolt:
		return c.vals.Cache.Backend
	default:
		return CacheBackendNone
	}
}

func (c *Instance) CacheRedisURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Cache.RedisURL == "" {
		return "redis://localhost:6379/0"
	}
	return c.vals.Cache.RedisURL
}

// CachePath is the file used by the sqlite and bolt backends, defaulting to
// a backend-specific file under dataDir.
func (c *Instance) CachePath(dataDir string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Cache.Path != "" {
		return c.vals.Cache.Path
	}
	if c.vals.Cache.Backend == CacheBackendBolt {
		return filepath.Join(dataDir, EmbeddingCacheBoltFile)
	}
	return filepath.Join(dataDir, EmbeddingCacheDbFile)
}

func (c *Instance) CacheTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Cache.TimeoutMs == nil || *c.vals.Cache.TimeoutMs <= 0 {
		return DefaultCacheTimeout
	}
	return time.Duration(*c.vals.Cache.TimeoutMs) * time.Millisecond
}

func (c *Instance) CacheSweepInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Cache.SweepIntervalSecs == nil || *c.vals.Cache.SweepIntervalSecs <= 0 {
		return DefaultSweepInterval
	}
	return time.Duration(*c.vals.Cache.SweepIntervalSecs) * time.Second
}
