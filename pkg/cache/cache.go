// Annuaire Core
// Copyright (c) 2026 The Annuaire Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Annuaire Core.
//
// Annuaire Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Annuaire Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Annuaire Core.  If not, see <http://www.gnu.org/licenses/>.

// Package cache is a TTL cache over a pluggable Backend. Entries are JSON
// envelopes carrying their write time; expired or unreadable entries are
// deleted when read and never returned.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ErrCorrupt is returned by Get when a stored entry cannot be decoded. The
// entry has already been deleted.
var ErrCorrupt = errors.New("corrupt cache entry")

const boltOpenTimeout = time.Second

// Namespaces used by the directory.
const (
	NamespaceGeocode = "geocode:"
	NamespaceSuggest = "suggest:"
	NamespaceState   = "state:"
)

type envelope struct {
	V  json.RawMessage `json:"v"`
	TS int64           `json:"ts"`
}

// Options configure a Cache.
type Options struct {
	Clock clockwork.Clock
	// TTL is how long an entry stays readable. Zero disables expiry.
	TTL time.Duration
}

// Cache is a namespaced view over a Backend.
type Cache struct {
	backend Backend
	clock   clockwork.Clock
	prefix  string
	ttl     time.Duration
}

// New returns a cache over backend.
func New(backend Backend, opts Options) *Cache {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{backend: backend, clock: clock, ttl: opts.TTL}
}

// Namespace returns a view whose keys are prefixed with prefix and whose
// entries expire after ttl. The backend is shared.
func (c *Cache) Namespace(prefix string, ttl time.Duration) *Cache {
	return &Cache{
		backend: c.backend,
		clock:   c.clock,
		prefix:  c.prefix + prefix,
		ttl:     ttl,
	}
}

// Prefix returns the namespace prefix of the view.
func (c *Cache) Prefix() string {
	return c.prefix
}

// Get decodes the entry stored at key into out. It reports false when the
// entry is missing or expired.
func (c *Cache) Get(key string, out any) (bool, error) {
	full := c.prefix + key
	data, ok, err := c.backend.Get(full)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", full, err)
	}
	if !ok {
		return false, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.TS == 0 {
		c.discard(full)
		return false, fmt.Errorf("%w: %s", ErrCorrupt, full)
	}
	if c.expired(env.TS) {
		c.discard(full)
		return false, nil
	}
	if err := json.Unmarshal(env.V, out); err != nil {
		c.discard(full)
		return false, fmt.Errorf("%w: %s: %w", ErrCorrupt, full, err)
	}
	return true, nil
}

// Set stores v at key with the current time.
func (c *Cache) Set(key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	data, err := json.Marshal(envelope{TS: c.clock.Now().UnixMilli(), V: value})
	if err != nil {
		return fmt.Errorf("failed to marshal cache envelope: %w", err)
	}
	if err := c.backend.Set(c.prefix+key, data); err != nil {
		return fmt.Errorf("failed to store %s: %w", c.prefix+key, err)
	}
	return nil
}

// Delete removes key.
func (c *Cache) Delete(key string) error {
	if err := c.backend.Delete(c.prefix + key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", c.prefix+key, err)
	}
	return nil
}

// Prune deletes every expired or corrupt entry of the namespace and returns
// how many were removed.
func (c *Cache) Prune() (int, error) {
	keys, err := c.backend.Keys(c.prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list cache keys: %w", err)
	}

	removed := 0
	for _, key := range keys {
		data, ok, err := c.backend.Get(key)
		if err != nil || !ok {
			continue
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err == nil && env.TS != 0 && !c.expired(env.TS) {
			continue
		}
		if err := c.backend.Delete(key); err != nil {
			return removed, fmt.Errorf("failed to prune %s: %w", key, err)
		}
		removed++
	}
	return removed, nil
}

// Close closes the backend.
func (c *Cache) Close() error {
	if err := c.backend.Close(); err != nil {
		return fmt.Errorf("failed to close cache backend: %w", err)
	}
	return nil
}

func (c *Cache) expired(ts int64) bool {
	if c.ttl <= 0 {
		return false
	}
	return c.clock.Since(time.UnixMilli(ts)) > c.ttl
}

func (c *Cache) discard(key string) {
	if err := c.backend.Delete(key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to discard cache entry")
	}
}
