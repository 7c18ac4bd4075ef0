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

// Package api serves the tagger over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/danielwellz/omnisonic/pkg/api/middleware"
	"github.com/danielwellz/omnisonic/pkg/config"
	"github.com/danielwellz/omnisonic/pkg/tagging"
	"github.com/danielwellz/omnisonic/pkg/tagging/embeddings"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

const (
	maxBodyBytes      = 4 << 20
	readHeaderTimeout = 10 * time.Second
)

// Embedder is the embedding client as seen by the API.
type Embedder interface {
	tagging.EmbeddingClient
	ModelID() string
}

// statsReporter is implemented by embedders that count cache hits.
type statsReporter interface {
	Stats() embeddings.Stats
}

// NewRouter builds the HTTP handler. ctx bounds background work such as
// rate limiter cleanup. emb may be nil.
func NewRouter(ctx context.Context, cfg *config.Instance, emb Embedder) http.Handler {
	h := newHandlers(cfg, emb)

	origins := cfg.AllowedOrigins()
	if len(origins) == 0 {
		origins = []string{"https://*", "http://*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.NoCache)
	r.Use(chimw.Timeout(cfg.RequestTimeout()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(middleware.HTTPIPFilterMiddleware(middleware.NewIPFilter(cfg.AllowedIPs())))

	r.Get("/healthz", h.health)

	r.Route("/api/v1", func(r chi.Router) {
		if perMinute, burst := cfg.RateLimit(); perMinute > 0 {
			limiter := middleware.NewIPRateLimiter(perMinute, burst, nil)
			limiter.StartCleanup(ctx)
			r.Use(middleware.HTTPRateLimitMiddleware(limiter))
		}
		r.Use(chimw.RequestSize(maxBodyBytes))
		r.Use(chimw.AllowContentType("application/json"))

		r.Post("/tag", h.tag)
		r.Post("/tag/batch", h.tagBatch)
	})

	return r
}

// Server is a running API listener.
type Server struct {
	srv      *http.Server
	listener net.Listener
	cancel   context.CancelFunc
	done     chan struct{}
	serveErr error
}

// Start listens on the configured address and serves in the background.
func Start(ctx context.Context, cfg *config.Instance, emb Embedder) (*Server, error) {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", cfg.ListenAddr())
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddr(), err)
	}

	srvCtx, cancel := context.WithCancel(ctx)
	s := &Server{
		srv: &http.Server{
			Handler:           NewRouter(srvCtx, cfg, emb),
			ReadHeaderTimeout: readHeaderTimeout,
		},
		listener: ln,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("api server stopped")
			s.serveErr = err
		}
	}()

	log.Info().Str("addr", ln.Addr().String()).Msg("api server listening")
	return s, nil
}

// Addr is the bound listen address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.cancel()
	err := s.srv.Shutdown(ctx)
	<-s.done
	if err != nil {
		return fmt.Errorf("failed to shut down api server: %w", err)
	}
	return s.serveErr
}
