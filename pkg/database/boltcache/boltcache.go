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

// Package boltcache is an embedded key/value external embedding cache on
// top of bbolt. Each value is stored behind an 8-byte expiry header.
package boltcache

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/danielwellz/omnisonic/pkg/tagging/embeddings"
	"github.com/jonboulle/clockwork"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketEmbeddings = "embeddings"
	headerLen        = 8
)

var errCorruptEntry = errors.New("corrupt bolt cache entry")

type Store struct {
	bdb   *bolt.DB
	clock clockwork.Clock
}

func Open(path string, clock clockwork.Clock) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for embedding cache: %w", err)
	}
	// a second process holding the file must not hang startup
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketEmbeddings))
		return err //nolint:wrapcheck // wrapped below
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket %q: %w", BucketEmbeddings, err)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{bdb: db, clock: clock}, nil
}

func encodeEntry(expiresAt time.Time, payload []byte) []byte {
	buf := make([]byte, headerLen+len(payload))
	binary.BigEndian.PutUint64(buf, uint64(expiresAt.UnixMilli())) //nolint:gosec // post-epoch times
	copy(buf[headerLen:], payload)
	return buf
}

func decodeExpiry(v []byte) (int64, error) {
	if len(v) < headerLen {
		return 0, errCorruptEntry
	}
	return int64(binary.BigEndian.Uint64(v[:headerLen])), nil //nolint:gosec // see encodeEntry
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var payload []byte
	now := s.clock.Now().UnixMilli()
	err := s.bdb.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketEmbeddings))
		if b == nil {
			return fmt.Errorf("bucket %q does not exist", BucketEmbeddings)
		}
		v := b.Get([]byte(key))
		if v == nil {
			return embeddings.ErrMiss
		}
		exp, err := decodeExpiry(v)
		if err != nil {
			return err
		}
		if exp <= now {
			return embeddings.ErrMiss
		}
		// bolt memory is only valid inside the transaction
		payload = bytes.Clone(v[headerLen:])
		return nil
	})
	if err != nil {
		if errors.Is(err, embeddings.ErrMiss) {
			return nil, embeddings.ErrMiss
		}
		return nil, fmt.Errorf("failed to view bolt database: %w", err)
	}
	return payload, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := encodeEntry(s.clock.Now().Add(ttl), value)
	err := s.bdb.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketEmbeddings))
		if b == nil {
			return fmt.Errorf("bucket %q does not exist", BucketEmbeddings)
		}
		return b.Put([]byte(key), entry) //nolint:wrapcheck // wrapped below
	})
	if err != nil {
		return fmt.Errorf("failed to update bolt database: %w", err)
	}
	return nil
}

// Sweep removes expired and unreadable entries.
func (s *Store) Sweep(ctx context.Context) (int64, error) {
	now := s.clock.Now().UnixMilli()
	var removed int64
	err := s.bdb.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketEmbeddings))
		if b == nil {
			return nil
		}
		var expired [][]byte
		err := b.ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err //nolint:wrapcheck // wrapped below
			}
			exp, err := decodeExpiry(v)
			if err != nil || exp <= now {
				expired = append(expired, bytes.Clone(k))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err //nolint:wrapcheck // wrapped below
			}
		}
		removed = int64(len(expired))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to sweep bolt database: %w", err)
	}
	return removed, nil
}

func (s *Store) Close() error {
	if err := s.bdb.Close(); err != nil {
		return fmt.Errorf("failed to close bolt database: %w", err)
	}
	return nil
}
