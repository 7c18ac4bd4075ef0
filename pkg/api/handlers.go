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
	"encoding/json"
	"errors"
	"net/http"
	"runtime"

	"github.com/danielwellz/omnisonic/pkg/api/validation"
	"github.com/danielwellz/omnisonic/pkg/batch"
	"github.com/danielwellz/omnisonic/pkg/config"
	"github.com/danielwellz/omnisonic/pkg/tagging"
	gpvalidator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

type handlers struct {
	cfg       *config.Instance
	emb       Embedder
	validator *validation.Validator
}

func newHandlers(cfg *config.Instance, emb Embedder) *handlers {
	v := validation.NewValidator()
	v.RegisterStructValidation(validateUniqueIDs, BatchRequest{})
	return &handlers{cfg: cfg, emb: emb, validator: v}
}

// validateUniqueIDs rejects a batch where two items share a non-empty id.
func validateUniqueIDs(sl gpvalidator.StructLevel) {
	req, ok := sl.Current().Interface().(BatchRequest)
	if !ok {
		return
	}
	seen := make(map[string]struct{}, len(req.Items))
	for _, item := range req.Items {
		if item.ID == "" {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			sl.ReportError(req.Items, "items", "Items", "unique", "")
			return
		}
		seen[item.ID] = struct{}{}
	}
}

// params merges the request with the configured defaults. Thresholds are
// clamped later by tagging.NewConfig.
func (h *handlers) params(req *CatalogRequest) tagging.Params {
	p := tagging.Params{
		Artists:            req.Artists,
		Works:              req.Works,
		Recordings:         req.Recordings,
		Stoplist:           req.Stoplist,
		FuzzyThreshold:     h.cfg.FuzzyThreshold(),
		EmbeddingThreshold: h.cfg.EmbeddingThreshold(),
		UseEmbeddings:      h.cfg.UseEmbeddings(),
	}
	if req.FuzzyThreshold != nil {
		p.FuzzyThreshold = *req.FuzzyThreshold
	}
	if req.EmbeddingThreshold != nil {
		p.EmbeddingThreshold = *req.EmbeddingThreshold
	}
	if req.UseEmbeddings != nil {
		p.UseEmbeddings = *req.UseEmbeddings
	}
	return p
}

func (h *handlers) embedder() tagging.EmbeddingClient {
	if h.emb == nil {
		return nil
	}
	return h.emb
}

func (h *handlers) tag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if err := validation.DecodeAndValidate(h.validator, r.Body, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	catalog := req.catalog()
	cfg := tagging.NewConfig(h.params(&catalog))
	result := tagging.MatchEntities(r.Context(), req.Title, req.Description, cfg, h.embedder())
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) tagBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := validation.DecodeAndValidate(h.validator, r.Body, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	catalog := req.catalog()
	cfg := tagging.NewConfig(h.params(&catalog))
	results, err := batch.Run(r.Context(), req.Items, cfg, h.embedder(), runtime.GOMAXPROCS(0))
	if err != nil {
		log.Warn().Err(err).Int("items", len(req.Items)).Msg("batch request did not complete")
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "request cancelled"})
		return
	}
	writeJSON(w, http.StatusOK, BatchResponse{Results: results})
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if h.emb != nil && h.emb.Enabled() {
		resp.EmbeddingsEnabled = true
		resp.Model = h.emb.ModelID()
		if sr, ok := h.emb.(statsReporter); ok {
			stats := sr.Stats()
			resp.Cache = &stats
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeDecodeError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, validation.ErrMissingBody):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing request body"})
	default:
		log.Debug().Err(err).Msg("rejected request body")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}
