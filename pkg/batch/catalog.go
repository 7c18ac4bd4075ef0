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

package batch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/danielwellz/omnisonic/pkg/tagging"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

var ErrUnknownCatalogFormat = errors.New("unknown catalog format")

// Catalog is a candidate universe stored on disk as TOML or YAML.
type Catalog struct {
	Artists    []string               `toml:"artists" yaml:"artists"`
	Works      []string               `toml:"works" yaml:"works"`
	Recordings []string               `toml:"recordings" yaml:"recordings"`
	Stoplist   tagging.StoplistParams `toml:"stoplist" yaml:"stoplist"`
}

// LoadCatalog reads a .toml, .yaml or .yml catalogue file.
func LoadCatalog(fs afero.Fs, path string) (Catalog, error) {
	var cat Catalog

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return cat, fmt.Errorf("failed to read catalog: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cat)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cat)
	default:
		return cat, fmt.Errorf("%w: %s", ErrUnknownCatalogFormat, filepath.Ext(path))
	}
	if err != nil {
		return cat, fmt.Errorf("failed to parse catalog %s: %w", filepath.Base(path), err)
	}

	return cat, nil
}

// Params fills the candidate lists and stoplist of base from the catalogue.
func (c Catalog) Params(base tagging.Params) tagging.Params {
	base.Artists = c.Artists
	base.Works = c.Works
	base.Recordings = c.Recordings
	base.Stoplist = c.Stoplist
	return base
}
