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

// Package cli holds the flag handling and run modes shared by the tagger
// binaries.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/danielwellz/omnisonic/internal/telemetry"
	"github.com/danielwellz/omnisonic/pkg/config"
	"github.com/danielwellz/omnisonic/pkg/helpers"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var ErrNoMode = errors.New("nothing to do: pass -title, -csv or -daemon")

// Mode is the action selected by the command line.
type Mode int

const (
	ModeNone Mode = iota
	ModeVersion
	ModeDaemon
	ModeCSV
	ModeOneShot
	ModeRemote
)

type Flags struct {
	ConfigDir   *string
	DataDir     *string
	Catalog     *string
	CSV         *string
	Title       *string
	Description *string
	Remote      *string
	Timeout     *time.Duration
	Daemon      *bool
	Version     *bool
	Verbose     *bool
}

// SetupFlags defines the tagger flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		ConfigDir: fs.String(
			"config-dir",
			config.DefaultConfigDir(),
			"directory holding "+config.CfgFile,
		),
		DataDir: fs.String(
			"data-dir",
			config.DefaultDataDir(),
			"directory for logs and file-backed caches",
		),
		Catalog: fs.String(
			"catalog",
			"",
			"candidate catalogue file (.toml, .yaml or .yml)",
		),
		CSV: fs.String(
			"csv",
			"",
			"tag every row of a CSV file (id,title,description), - for stdin",
		),
		Title: fs.String(
			"title",
			"",
			"headline to tag",
		),
		Description: fs.String(
			"description",
			"",
			"optional description for -title",
		),
		Remote: fs.String(
			"remote",
			"",
			"send -title to a running tagger service at this base URL",
		),
		Timeout: fs.Duration(
			"timeout",
			30*time.Second,
			"request timeout for -remote",
		),
		Daemon: fs.Bool(
			"daemon",
			false,
			"run the HTTP service in the foreground",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
		Verbose: fs.Bool(
			"verbose",
			false,
			"also log to stderr",
		),
	}
}

// Mode picks the action. -version wins, then -daemon, -csv, -remote and
// finally a plain -title.
func (f *Flags) Mode() Mode {
	switch {
	case *f.Version:
		return ModeVersion
	case *f.Daemon:
		return ModeDaemon
	case *f.CSV != "":
		return ModeCSV
	case *f.Remote != "" && *f.Title != "":
		return ModeRemote
	case *f.Title != "":
		return ModeOneShot
	default:
		return ModeNone
	}
}

// Setup loads the config from configDir and initializes logging under
// dataDir and opt-in error reporting.
//
//nolint:gocritic // config struct copied for immutability
func Setup(
	fs afero.Fs,
	configDir, dataDir string,
	defaults config.Values,
	writers []io.Writer,
) (*config.Instance, error) {
	cfg, err := config.NewConfig(fs, configDir, defaults)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if err := helpers.InitLogging(cfg.LogFilePath(dataDir), cfg.DebugLogging(), writers); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	if err := telemetry.Init(
		cfg.SentryDSN(),
		cfg.TelemetryEnvironment(),
		config.AppVersion,
	); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg, nil
}
