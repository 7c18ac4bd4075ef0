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

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielwellz/omnisonic/pkg/api"
	"github.com/danielwellz/omnisonic/pkg/api/client"
	"github.com/danielwellz/omnisonic/pkg/batch"
	"github.com/danielwellz/omnisonic/pkg/config"
	"github.com/danielwellz/omnisonic/pkg/service"
	"github.com/danielwellz/omnisonic/pkg/tagging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// LoadCatalog reads the catalogue at path. An empty path yields an empty
// catalogue, which can never match anything.
func LoadCatalog(fs afero.Fs, path string) (batch.Catalog, error) {
	if path == "" {
		log.Warn().Msg("no catalog given, nothing can match")
		return batch.Catalog{}, nil
	}
	cat, err := batch.LoadCatalog(fs, path)
	if err != nil {
		return cat, fmt.Errorf("error loading catalog: %w", err)
	}
	log.Info().
		Int("artists", len(cat.Artists)).
		Int("works", len(cat.Works)).
		Int("recordings", len(cat.Recordings)).
		Msg("loaded catalog")
	return cat, nil
}

// matchConfig combines the configured thresholds with the catalogue.
func matchConfig(cfg *config.Instance, cat batch.Catalog) tagging.Config {
	return tagging.NewConfig(cat.Params(tagging.Params{
		FuzzyThreshold:     cfg.FuzzyThreshold(),
		EmbeddingThreshold: cfg.EmbeddingThreshold(),
		UseEmbeddings:      cfg.UseEmbeddings(),
	}))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error writing result: %w", err)
	}
	return nil
}

// TagOne tags a single headline and writes the result as JSON to w.
func TagOne(
	ctx context.Context,
	w io.Writer,
	cfg *config.Instance,
	cat batch.Catalog,
	emb tagging.EmbeddingClient,
	title, description string,
) error {
	result := tagging.MatchEntities(ctx, title, description, matchConfig(cfg, cat), emb)
	return writeJSON(w, result)
}

// TagCSV tags every row read from in and writes one CSV row per item to out,
// in input order.
func TagCSV(
	ctx context.Context,
	in io.Reader,
	out io.Writer,
	cfg *config.Instance,
	cat batch.Catalog,
	emb tagging.EmbeddingClient,
) error {
	items, err := batch.ReadItems(in)
	if err != nil {
		return fmt.Errorf("error reading items: %w", err)
	}
	results, err := batch.Run(ctx, items, matchConfig(cfg, cat), emb, batch.DefaultConcurrency)
	if err != nil {
		return fmt.Errorf("error tagging items: %w", err)
	}
	if err := batch.WriteResults(out, results); err != nil {
		return fmt.Errorf("error writing results: %w", err)
	}
	log.Info().Int("items", len(results)).Msg("batch complete")
	return nil
}

// TagRemote sends a headline and the catalogue to a running service. The
// service's configured thresholds apply.
func TagRemote(
	ctx context.Context,
	w io.Writer,
	c client.APIClient,
	cat batch.Catalog,
	title, description string,
) error {
	result, err := c.Tag(ctx, &api.TagRequest{
		Title:       title,
		Description: description,
		Stoplist:    cat.Stoplist,
		Artists:     cat.Artists,
		Works:       cat.Works,
		Recordings:  cat.Recordings,
	})
	if err != nil {
		var se *client.StatusError
		if errors.As(err, &se) {
			for _, f := range se.Body.Fields {
				log.Error().Str("field", f.Field).Msg(f.Message)
			}
		}
		return fmt.Errorf("error calling service: %w", err)
	}
	return writeJSON(w, result)
}

// RunDaemon runs the service until SIGINT or SIGTERM, or until it stops on
// its own.
func RunDaemon(cfg *config.Instance, dataDir string) error {
	stop, done, err := service.Start(cfg, service.Options{
		DataDir:     dataDir,
		WatchConfig: true,
		OnListening: func(addr string) {
			log.Info().Str("addr", addr).Msg("started in daemon mode")
		},
	})
	if err != nil {
		return fmt.Errorf("error starting service: %w", err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case sig := <-sigs:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-done:
		log.Warn().Msg("service stopped unexpectedly")
	}

	if err := stop(); err != nil {
		return fmt.Errorf("error stopping service: %w", err)
	}
	return nil
}
