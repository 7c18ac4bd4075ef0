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
	"testing"

	"github.com/danielwellz/omnisonic/pkg/tagging"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlCatalog = `
artists = ["Billie Eilish", "Various Artists"]
works = ["Bad Guy"]
recordings = ["Bad Guy (Live)"]

[stoplist]
artists = ["Various Artists"]
`

const yamlCatalog = `
artists:
  - Billie Eilish
works:
  - Bad Guy
stoplist:
  works:
    - Intro
`

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/c/catalog.toml", []byte(tomlCatalog), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/c/catalog.YML", []byte(yamlCatalog), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/c/catalog.json", []byte("{}"), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/c/broken.toml", []byte("artists = ["), 0o600))

	cat, err := LoadCatalog(fs, "/c/catalog.toml")
	require.NoError(t, err)
	assert.Equal(t, []string{"Billie Eilish", "Various Artists"}, cat.Artists)
	assert.Equal(t, []string{"Bad Guy (Live)"}, cat.Recordings)
	assert.Equal(t, []string{"Various Artists"}, cat.Stoplist.Artists)

	cat, err = LoadCatalog(fs, "/c/catalog.YML")
	require.NoError(t, err)
	assert.Equal(t, []string{"Billie Eilish"}, cat.Artists)
	assert.Equal(t, []string{"Intro"}, cat.Stoplist.Works)
	assert.Empty(t, cat.Recordings)

	_, err = LoadCatalog(fs, "/c/catalog.json")
	require.ErrorIs(t, err, ErrUnknownCatalogFormat)

	_, err = LoadCatalog(fs, "/c/broken.toml")
	require.Error(t, err)

	_, err = LoadCatalog(fs, "/c/missing.toml")
	require.Error(t, err)
}

func TestCatalogParams(t *testing.T) {
	t.Parallel()

	base := tagging.DefaultParams()
	base.FuzzyThreshold = 75
	base.Artists = []string{"dropped"}

	p := Catalog{Artists: []string{"A"}, Works: []string{"W"}}.Params(base)
	assert.Equal(t, []string{"A"}, p.Artists)
	assert.Equal(t, []string{"W"}, p.Works)
	assert.Equal(t, 75, p.FuzzyThreshold)
}
