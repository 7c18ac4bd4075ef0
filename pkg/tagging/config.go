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

package tagging

import (
	"math"

	"github.com/danielwellz/omnisonic/pkg/tagging/candidates"
)

const (
	DefaultFuzzyThreshold     = 60
	DefaultEmbeddingThreshold = 0.7

	MinFuzzyThreshold = 1
	MaxFuzzyThreshold = 100
)

// StoplistParams are the raw blocked labels per entity type.
type StoplistParams struct {
	Artists    []string `json:"artists" toml:"artists" yaml:"artists"`
	Works      []string `json:"works" toml:"works" yaml:"works"`
	Recordings []string `json:"recordings" toml:"recordings" yaml:"recordings"`
}

// Params is the caller-supplied input to NewConfig. Thresholds outside
// their ranges are clamped, not rejected.
type Params struct {
	Artists    []string
	Works      []string
	Recordings []string
	Stoplist   StoplistParams
	// FuzzyThreshold is a percentage in [1, 100].
	FuzzyThreshold int
	// EmbeddingThreshold is a cosine similarity floor in [0, 1].
	EmbeddingThreshold float64
	UseEmbeddings      bool
}

// DefaultParams returns Params with the stock thresholds and no candidates.
func DefaultParams() Params {
	return Params{
		FuzzyThreshold:     DefaultFuzzyThreshold,
		EmbeddingThreshold: DefaultEmbeddingThreshold,
	}
}

// Config is an immutable matching configuration: the indexed candidate
// universe, the stoplist and the gates. Build it with NewConfig and reuse it
// across any number of concurrent MatchEntities calls.
type Config struct {
	indexes            map[candidates.Kind]candidates.Index
	stoplist           candidates.Stoplist
	fuzzyThreshold     int
	embeddingThreshold float64
	useEmbeddings      bool
}

func NewConfig(p Params) Config {
	return Config{
		indexes: map[candidates.Kind]candidates.Index{
			candidates.KindArtist:    candidates.BuildIndex(p.Artists),
			candidates.KindWork:      candidates.BuildIndex(p.Works),
			candidates.KindRecording: candidates.BuildIndex(p.Recordings),
		},
		stoplist: candidates.NewStoplist(
			p.Stoplist.Artists, p.Stoplist.Works, p.Stoplist.Recordings),
		fuzzyThreshold:     ClampFuzzyThreshold(p.FuzzyThreshold),
		embeddingThreshold: ClampEmbeddingThreshold(p.EmbeddingThreshold),
		useEmbeddings:      p.UseEmbeddings,
	}
}

func ClampFuzzyThreshold(v int) int {
	return min(max(v, MinFuzzyThreshold), MaxFuzzyThreshold)
}

// ClampEmbeddingThreshold clamps v into [0, 1]; NaN becomes 0.
func ClampEmbeddingThreshold(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}

func (c Config) Index(kind candidates.Kind) candidates.Index {
	return c.indexes[kind]
}

func (c Config) Stoplist() candidates.Stoplist {
	return c.stoplist
}

func (c Config) FuzzyThreshold() int {
	return c.fuzzyThreshold
}

func (c Config) EmbeddingThreshold() float64 {
	return c.embeddingThreshold
}

func (c Config) UseEmbeddings() bool {
	return c.useEmbeddings
}

// fuzzyGate is the threshold as a fraction of 1.
func (c Config) fuzzyGate() float64 {
	return float64(c.fuzzyThreshold) / 100
}
