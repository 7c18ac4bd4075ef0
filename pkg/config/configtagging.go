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

import "time"

const (
	DefaultFuzzyThreshold     = 60
	DefaultEmbeddingThreshold = 0.7
	DefaultEmbeddingTTL       = 24 * time.Hour

	EmbeddingBackendNone = "none"
	EmbeddingBackendONNX = "onnx"
	EmbeddingBackendHTTP = "http"
)

type Tagging struct {
	FuzzyThreshold     *int     `toml:"fuzzy_threshold,omitempty"`
	EmbeddingThreshold *float64 `toml:"embedding_threshold,omitempty"`
	UseEmbeddings      bool     `toml:"use_embeddings"`
}

type Embeddings struct {
	CacheTTLSecs *int           `toml:"cache_ttl_secs,omitempty"`
	ONNX         EmbeddingsONNX `toml:"onnx,omitempty"`
	HTTP         EmbeddingsHTTP `toml:"http,omitempty"`
	Backend      string         `toml:"backend"`
	Model        string         `toml:"model,omitempty"`
}

type EmbeddingsONNX struct {
	LibraryPath   string `toml:"library_path,omitempty"`
	ModelPath     string `toml:"model_path,omitempty"`
	TokenizerPath string `toml:"tokenizer_path,omitempty"`
	MaxSeqLen     int    `toml:"max_seq_len,omitempty"`
	Threads       int    `toml:"threads,omitempty"`
}

type EmbeddingsHTTP struct {
	BaseURL     string `toml:"base_url,omitempty"`
	APIKey      string `toml:"api_key,omitempty"`
	TimeoutSecs int    `toml:"timeout_secs,omitempty"`
}

func (c *Instance) FuzzyThreshold() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Tagging.FuzzyThreshold == nil {
		return DefaultFuzzyThreshold
	}
	return *c.vals.Tagging.FuzzyThreshold
}

func (c *Instance) SetFuzzyThreshold(v int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Tagging.FuzzyThreshold = &v
}

func (c *Instance) EmbeddingThreshold() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Tagging.EmbeddingThreshold == nil {
		return DefaultEmbeddingThreshold
	}
	return *c.vals.Tagging.EmbeddingThreshold
}

func (c *Instance) UseEmbeddings() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Tagging.UseEmbeddings
}

func (c *Instance) SetUseEmbeddings(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Tagging.UseEmbeddings = enabled
}

// EmbeddingBackend is one of the EmbeddingBackend* values; unknown values
// read as none.
func (c *Instance) EmbeddingBackend() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch c.vals.Embeddings.Backend {
	case EmbeddingBackendONNX, EmbeddingBackendHTTP:
		return c.vals.Embeddings.Backend
	default:
		return EmbeddingBackendNone
	}
}

func (c *Instance) EmbeddingModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Embeddings.Model
}

func (c *Instance) EmbeddingCacheTTL() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Embeddings.CacheTTLSecs == nil || *c.vals.Embeddings.CacheTTLSecs <= 0 {
		return DefaultEmbeddingTTL
	}
	return time.Duration(*c.vals.Embeddings.CacheTTLSecs) * time.Second
}

func (c *Instance) EmbeddingsONNX() EmbeddingsONNX {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Embeddings.ONNX
}

func (c *Instance) EmbeddingsHTTP() EmbeddingsHTTP {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Embeddings.HTTP
}
