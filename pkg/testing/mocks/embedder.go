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

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmbedder is a mock of the embedding client used by the tagger and
// the API.
type MockEmbedder struct {
	mock.Mock
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

func (m *MockEmbedder) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, bool) {
	args := m.Called(ctx, text)
	vec, _ := args.Get(0).([]float32)
	return vec, args.Bool(1)
}

func (m *MockEmbedder) ModelID() string {
	args := m.Called()
	return args.String(0)
}

// SetupDisabled configures the mock as an embedder with no backend.
func (m *MockEmbedder) SetupDisabled() {
	m.On("Enabled").Return(false)
	m.On("ModelID").Return("")
}

// SetupVectors makes the mock return vecs[text] for each known text and
// no vector for anything else.
func (m *MockEmbedder) SetupVectors(model string, vecs map[string][]float32) {
	m.On("Enabled").Return(true)
	m.On("ModelID").Return(model)
	for text, vec := range vecs {
		m.On("Embed", mock.Anything, text).Return(vec, true)
	}
	m.On("Embed", mock.Anything, mock.Anything).Return(nil, false)
}

// MockBackend is a mock of embeddings.Backend.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	vec, _ := args.Get(0).([]float32)
	return vec, args.Error(1)
}

func (m *MockBackend) ModelID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockBackend) Close() error {
	args := m.Called()
	return args.Error(0)
}
