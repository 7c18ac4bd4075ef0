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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielwellz/omnisonic/internal/telemetry"
	"github.com/danielwellz/omnisonic/pkg/api/client"
	"github.com/danielwellz/omnisonic/pkg/cli"
	"github.com/danielwellz/omnisonic/pkg/config"
	"github.com/danielwellz/omnisonic/pkg/helpers"
	"github.com/danielwellz/omnisonic/pkg/service"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags(flag.CommandLine)
	flag.Parse()

	mode := flags.Mode()
	switch mode {
	case cli.ModeVersion:
		_, _ = fmt.Printf("Omnisonic tagger v%s\n", config.AppVersion)
		return nil
	case cli.ModeNone:
		flag.Usage()
		return cli.ErrNoMode
	default:
	}

	var logWriters []io.Writer
	if mode == cli.ModeDaemon || *flags.Verbose {
		logWriters = []io.Writer{helpers.ConsoleWriter()}
	}

	fs := afero.NewOsFs()
	cfg, err := cli.Setup(fs, *flags.ConfigDir, *flags.DataDir, config.BaseDefaults, logWriters)
	if err != nil {
		return err //nolint:wrapcheck // already descriptive
	}
	defer telemetry.Close()

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	if mode == cli.ModeDaemon {
		return cli.RunDaemon(cfg, *flags.DataDir) //nolint:wrapcheck // already descriptive
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := cli.LoadCatalog(fs, *flags.Catalog)
	if err != nil {
		return err //nolint:wrapcheck // already descriptive
	}

	if mode == cli.ModeRemote {
		c, err := client.New(*flags.Remote, *flags.Timeout)
		if err != nil {
			return fmt.Errorf("error creating client: %w", err)
		}
		return cli.TagRemote(ctx, os.Stdout, c, cat, *flags.Title, *flags.Description) //nolint:wrapcheck // already descriptive
	}

	aug := service.NewAugmenter(ctx, cfg, *flags.DataDir, clockwork.NewRealClock())
	defer func() {
		if err := aug.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing embeddings")
		}
	}()

	if mode == cli.ModeOneShot {
		return cli.TagOne(ctx, os.Stdout, cfg, cat, aug, *flags.Title, *flags.Description) //nolint:wrapcheck // already descriptive
	}

	in := io.Reader(os.Stdin)
	if *flags.CSV != "-" {
		f, err := fs.Open(*flags.CSV)
		if err != nil {
			return fmt.Errorf("error opening %s: %w", *flags.CSV, err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}
	return cli.TagCSV(ctx, in, os.Stdout, cfg, cat, aug) //nolint:wrapcheck // already descriptive
}
