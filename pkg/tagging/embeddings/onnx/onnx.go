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

// Package onnx computes sentence embeddings in-process with a BERT-style
// ONNX model and its HuggingFace tokenizer.json.
package onnx

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/danielwellz/omnisonic/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

const DefaultMaxSeqLen = 128

var requiredInputs = []string{"input_ids", "attention_mask", "token_type_ids"}

var ErrClosed = errors.New("onnx embedder is closed")

// the runtime environment is process wide
var ortEnv struct {
	err  error
	once sync.Once
}

func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

type Config struct {
	// LibraryPath is the onnxruntime shared library. Empty uses the
	// platform default search path.
	LibraryPath   string
	ModelPath     string
	TokenizerPath string
	// ModelID defaults to the model file name.
	ModelID   string
	MaxSeqLen int
	Threads   int
}

type Embedder struct {
	session *ort.DynamicAdvancedSession
	tk      *tokenizer.Tokenizer
	modelID string
	output  string
	dim     int64
	maxSeq  int
	mu      syncutil.Mutex
	closed  bool
}

func New(cfg Config) (*Embedder, error) {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		return nil, errors.New("onnx: model and tokenizer paths are required")
	}
	if err := initORT(cfg.LibraryPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}
	if err := validateInputs(inputs); err != nil {
		return nil, err
	}
	if len(outputs) == 0 {
		return nil, errors.New("onnx: model has no outputs")
	}
	dims := outputs[0].Dimensions
	if len(dims) != 3 || dims[2] <= 0 {
		return nil, fmt.Errorf("onnx: expected [batch, seq, dim] output, got %v", dims)
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to load tokenizer: %w", err)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer func() { _ = opts.Destroy() }()
	threads := cfg.Threads
	if threads <= 0 {
		threads = 2
	}
	if err := opts.SetIntraOpNumThreads(threads); err != nil {
		return nil, fmt.Errorf("onnx: failed to set thread count: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath, requiredInputs, []string{outputs[0].Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	modelID := cfg.ModelID
	if modelID == "" {
		modelID = strings.TrimSuffix(filepath.Base(cfg.ModelPath), filepath.Ext(cfg.ModelPath))
	}
	maxSeq := cfg.MaxSeqLen
	if maxSeq <= 0 {
		maxSeq = DefaultMaxSeqLen
	}

	log.Info().
		Str("model", modelID).
		Int64("dim", dims[2]).
		Int("max_seq_len", maxSeq).
		Msg("loaded onnx embedding model")

	return &Embedder{
		session: session,
		tk:      tk,
		modelID: modelID,
		output:  outputs[0].Name,
		dim:     dims[2],
		maxSeq:  maxSeq,
	}, nil
}

func validateInputs(inputs []ort.InputOutputInfo) error {
	have := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		have[in.Name] = struct{}{}
	}
	for _, name := range requiredInputs {
		if _, ok := have[name]; !ok {
			return fmt.Errorf("onnx: model missing required input %q", name)
		}
	}
	return nil
}

func (e *Embedder) ModelID() string {
	return e.modelID
}

// Embed returns the L2-normalized mean-pooled embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("onnx: %w", err)
	}
	enc, err := e.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("onnx: tokenize: %w", err)
	}
	ids, mask, types := truncate(enc.Ids, enc.AttentionMask, enc.TypeIds, e.maxSeq)
	if len(ids) == 0 {
		return nil, errors.New("onnx: tokenizer produced no tokens")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	hidden, err := e.infer(ids, mask, types)
	if err != nil {
		return nil, err
	}
	vec := meanPool(hidden, mask, e.dim)
	l2Normalize(vec)
	return vec, nil
}

func (e *Embedder) infer(ids, mask, types []int64) ([]float32, error) {
	seqLen := int64(len(ids))
	shape := ort.NewShape(1, seqLen)

	tIDs, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, fmt.Errorf("onnx: input_ids tensor: %w", err)
	}
	defer func() { _ = tIDs.Destroy() }()
	tMask, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("onnx: attention_mask tensor: %w", err)
	}
	defer func() { _ = tMask.Destroy() }()
	tTypes, err := ort.NewTensor(shape, types)
	if err != nil {
		return nil, fmt.Errorf("onnx: token_type_ids tensor: %w", err)
	}
	defer func() { _ = tTypes.Destroy() }()

	tOut, err := ort.NewEmptyTensor[float32](ort.NewShape(1, seqLen, e.dim))
	if err != nil {
		return nil, fmt.Errorf("onnx: output tensor: %w", err)
	}
	defer func() { _ = tOut.Destroy() }()

	if err := e.session.Run([]ort.Value{tIDs, tMask, tTypes}, []ort.Value{tOut}); err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}
	src := tOut.GetData()
	out := make([]float32, len(src))
	copy(out, src)
	return out, nil
}

func (e *Embedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if err := e.session.Destroy(); err != nil {
		return fmt.Errorf("onnx: failed to destroy session: %w", err)
	}
	return nil
}
