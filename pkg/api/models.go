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

package api

import (
	"github.com/danielwellz/omnisonic/pkg/api/validation"
	"github.com/danielwellz/omnisonic/pkg/batch"
	"github.com/danielwellz/omnisonic/pkg/tagging"
	"github.com/danielwellz/omnisonic/pkg/tagging/embeddings"
)

// CatalogRequest is the candidate universe and optional per-request
// overrides of the configured thresholds, shared by both tag endpoints.
type CatalogRequest struct {
	FuzzyThreshold     *int
	EmbeddingThreshold *float64
	UseEmbeddings      *bool
	Stoplist           tagging.StoplistParams
	Artists            []string
	Works              []string
	Recordings         []string
}

type TagRequest struct {
	FuzzyThreshold     *int                   `json:"fuzzy_threshold,omitempty"`
	EmbeddingThreshold *float64               `json:"embedding_threshold,omitempty"`
	UseEmbeddings      *bool                  `json:"use_embeddings,omitempty"`
	Stoplist           tagging.StoplistParams `json:"stoplist"`
	Title              string                 `json:"title" validate:"max=1024"`
	Description        string                 `json:"description,omitempty" validate:"max=8192"`
	Artists            []string               `json:"artists" validate:"max=10000,dive,max=512"`
	Works              []string               `json:"works" validate:"max=10000,dive,max=512"`
	Recordings         []string               `json:"recordings" validate:"max=10000,dive,max=512"`
}

func (r *TagRequest) catalog() CatalogRequest {
	return CatalogRequest{
		FuzzyThreshold:     r.FuzzyThreshold,
		EmbeddingThreshold: r.EmbeddingThreshold,
		UseEmbeddings:      r.UseEmbeddings,
		Stoplist:           r.Stoplist,
		Artists:            r.Artists,
		Works:              r.Works,
		Recordings:         r.Recordings,
	}
}

type BatchRequest struct {
	FuzzyThreshold     *int                   `json:"fuzzy_threshold,omitempty"`
	EmbeddingThreshold *float64               `json:"embedding_threshold,omitempty"`
	UseEmbeddings      *bool                  `json:"use_embeddings,omitempty"`
	Stoplist           tagging.StoplistParams `json:"stoplist"`
	Items              []batch.Item           `json:"items" validate:"required,min=1,max=500,dive"`
	Artists            []string               `json:"artists" validate:"max=10000,dive,max=512"`
	Works              []string               `json:"works" validate:"max=10000,dive,max=512"`
	Recordings         []string               `json:"recordings" validate:"max=10000,dive,max=512"`
}

func (r *BatchRequest) catalog() CatalogRequest {
	return CatalogRequest{
		FuzzyThreshold:     r.FuzzyThreshold,
		EmbeddingThreshold: r.EmbeddingThreshold,
		UseEmbeddings:      r.UseEmbeddings,
		Stoplist:           r.Stoplist,
		Artists:            r.Artists,
		Works:              r.Works,
		Recordings:         r.Recordings,
	}
}

type BatchResponse struct {
	Results []batch.Result `json:"results"`
}

type HealthResponse struct {
	Status            string            `json:"status"`
	Model             string            `json:"model,omitempty"`
	Cache             *embeddings.Stats `json:"cache,omitempty"`
	EmbeddingsEnabled bool              `json:"embeddings_enabled"`
}

type ErrorResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}
