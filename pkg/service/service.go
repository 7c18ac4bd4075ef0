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

// Package service runs the tagger as a long-lived HTTP service.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/danielwellz/omnisonic/pkg/api"
	"github.com/danielwellz/omnisonic/pkg/config"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	Clock clockwork.Clock
	// OnListening is called with the bound API address once serving.
	OnListening func(addr string)
	// DataDir holds file-backed caches. Defaults to config.DefaultDataDir.
	DataDir string
	// WatchConfig reloads the config file when it changes on disk.
	WatchConfig bool
}

// Start brings up the embedding augmenter, cache janitor and API server.
// stop shuts everything down and waits; done closes once shutdown has
// finished for any reason.
func Start(cfg *config.Instance, opts Options) (stop func() error, done <-chan struct{}, err error) {
	log.Info().Msgf("version: %s", config.AppVersion)

	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.DataDir == "" {
		opts.DataDir = config.DefaultDataDir()
	}

	ctx, cancel := context.WithCancel(context.Background())

	log.Info().Msg("initializing embeddings")
	aug := NewAugmenter(ctx, cfg, opts.DataDir, opts.Clock)

	log.Info().Msg("starting API service")
	srv, err := api.Start(ctx, cfg, aug)
	if err != nil {
		cancel()
		return nil, nil, errors.Join(err, aug.Close())
	}
	if opts.OnListening != nil {
		opts.OnListening(srv.Addr())
	}

	var wg sync.WaitGroup
	if aug.Enabled() {
		interval := cfg.CacheSweepInterval()
		log.Info().Dur("interval", interval).Msg("starting embedding cache janitor")
		wg.Go(func() { runJanitor(ctx, opts.Clock, interval, aug) })
	}

	if opts.WatchConfig {
		wg.Go(func() {
			err := cfg.Watch(ctx, func() {
				log.Info().
					Int("fuzzy_threshold", cfg.FuzzyThreshold()).
					Float64("embedding_threshold", cfg.EmbeddingThreshold()).
					Bool("use_embeddings", cfg.UseEmbeddings()).
					Msg("config reloaded")
			})
			if err != nil {
				log.Warn().Err(err).Msg("config watcher stopped")
			}
		})
	}

	var stopErr error
	doneCh := make(chan struct{})
	go func() {
		<-ctx.Done()
		log.Info().Msg("service context cancelled, running cleanup")

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		wg.Wait()
		if err := aug.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close embeddings: %w", err))
		}
		stopErr = errors.Join(errs...)

		log.Info().Msg("service cleanup completed")
		close(doneCh)
	}()

	stop = func() error {
		cancel()
		<-doneCh
		return stopErr
	}
	return stop, doneCh, nil
}
