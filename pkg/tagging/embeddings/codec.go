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
	"crypto/sha1" //nolint:gosec // cache key only, not a security boundary
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// KeyPrefix namespaces embedding entries in shared caches.
const KeyPrefix = "omnisonic:embedding:"

var errEmptyVector = errors.New("empty embedding vector")

// canonicalText is the form both hashed for the cache key and sent to the
// backend, so a cached vector is a pure function of its key.
func canonicalText(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// CacheKey derives the stable cache key for text under modelID.
func CacheKey(modelID, text string) string {
	h := sha1.New() //nolint:gosec // see import
	_, _ = h.Write([]byte(modelID))
	_, _ = h.Write([]byte("|"))
	_, _ = h.Write([]byte(canonicalText(text)))
	return KeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// encodeVector serializes a vector as a JSON array of numbers.
func encodeVector(vec []float32) ([]byte, error) {
	b, err := json.Marshal(vec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode embedding: %w", err)
	}
	return b, nil
}

// decodeVector parses a JSON array payload, rejecting empty or non-finite vectors.
func decodeVector(payload []byte) ([]float32, error) {
	var vec []float32
	if err := json.Unmarshal(payload, &vec); err != nil {
		return nil, fmt.Errorf("malformed embedding payload: %w", err)
	}
	if len(vec) == 0 {
		return nil, errEmptyVector
	}
	for _, v := range vec {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, errors.New("non-finite value in embedding payload")
		}
	}
	return vec, nil
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
