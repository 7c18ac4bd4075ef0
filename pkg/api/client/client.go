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

// Package client calls a running tagger API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/danielwellz/omnisonic/pkg/api"
	"github.com/danielwellz/omnisonic/pkg/shared/httpclient"
	"github.com/danielwellz/omnisonic/pkg/tagging"
)

var ErrEmptyBaseURL = errors.New("api base URL is empty")

// APIClient abstracts API communication for testability.
type APIClient interface {
	Tag(ctx context.Context, req *api.TagRequest) (tagging.TagResult, error)
	TagBatch(ctx context.Context, req *api.BatchRequest) (api.BatchResponse, error)
	Health(ctx context.Context) (api.HealthResponse, error)
}

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Body       api.ErrorResponse
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Body.Error == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	msg := fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Body.Error)
	if len(e.Body.Fields) > 0 {
		parts := make([]string, len(e.Body.Fields))
		for i, f := range e.Body.Fields {
			parts[i] = f.Message
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	return msg
}

// Client implements APIClient over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a client for the API at baseURL, e.g. http://localhost:8100.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}
	return &Client{
		http:    httpclient.NewClient("", timeout),
		baseURL: baseURL,
	}, nil
}

func (c *Client) Tag(ctx context.Context, req *api.TagRequest) (tagging.TagResult, error) {
	var out tagging.TagResult
	err := c.do(ctx, http.MethodPost, "/api/v1/tag", req, &out)
	return out, err
}

func (c *Client) TagBatch(ctx context.Context, req *api.BatchRequest) (api.BatchResponse, error) {
	var out api.BatchResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/tag/batch", req, &out)
	return out, err
}

func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var out api.HealthResponse
	err := c.do(ctx, http.MethodGet, "/healthz", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	body := io.Reader(http.NoBody)
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(data, &serr.Body)
		return serr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
