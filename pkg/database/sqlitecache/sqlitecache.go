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

// Package sqlitecache is a file-backed external embedding cache for
// single-host deployments that want vectors to survive restarts.
package sqlitecache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/danielwellz/omnisonic/pkg/database"
	"github.com/danielwellz/omnisonic/pkg/tagging/embeddings"
	"github.com/jonboulle/clockwork"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var ErrNullSQL = errors.New("embedding cache database is not connected")

type Store struct {
	sql   *sql.DB
	clock clockwork.Clock
}

// Open creates (if needed) and migrates the cache database at path.
func Open(ctx context.Context, path string, clock clockwork.Clock) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for embedding cache: %w", err)
	}
	sqlDB, err := sql.Open("sqlite3", path+database.SQLiteConnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to embedding cache: %w", err)
	}
	if err := database.MigrateUp(sqlDB, migrationFiles, "migrations"); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return NewWithDB(sqlDB, clock), nil
}

// NewWithDB wraps an already migrated connection.
func NewWithDB(sqlDB *sql.DB, clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{sql: sqlDB, clock: clock}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if s.sql == nil {
		return nil, ErrNullSQL
	}
	var payload []byte
	err := s.sql.QueryRowContext(ctx,
		`SELECT Payload FROM Embeddings WHERE CacheKey = ? AND ExpiresAt > ?;`,
		key, s.clock.Now().UnixMilli(),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, embeddings.ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding: %w", err)
	}
	return payload, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.sql == nil {
		return ErrNullSQL
	}
	_, err := s.sql.ExecContext(ctx,
		`INSERT INTO Embeddings (CacheKey, Payload, ExpiresAt) VALUES (?, ?, ?)
		ON CONFLICT(CacheKey) DO UPDATE SET Payload = excluded.Payload, ExpiresAt = excluded.ExpiresAt;`,
		key, value, s.clock.Now().Add(ttl).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to write embedding: %w", err)
	}
	return nil
}

// Sweep deletes expired rows and reports how many were removed.
func (s *Store) Sweep(ctx context.Context) (int64, error) {
	if s.sql == nil {
		return 0, ErrNullSQL
	}
	res, err := s.sql.ExecContext(ctx,
		`DELETE FROM Embeddings WHERE ExpiresAt <= ?;`, s.clock.Now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep embeddings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count swept embeddings: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	if s.sql == nil {
		return nil
	}
	if err := s.sql.Close(); err != nil {
		return fmt.Errorf("failed to close embedding cache: %w", err)
	}
	return nil
}
