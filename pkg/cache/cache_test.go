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

package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type place struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
}

func backends() map[string]func(t *testing.T) Backend {
	return map[string]func(t *testing.T) Backend{
		"memory": func(*testing.T) Backend { return NewMemoryBackend() },
		"bolt": func(t *testing.T) Backend {
			b, err := OpenBolt(filepath.Join(t.TempDir(), "cache.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = b.Close() })
			return b
		},
	}
}

func TestCache_SetGetExpire(t *testing.T) {
	t.Parallel()

	for name, newBackend := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			clock := clockwork.NewFakeClock()
			c := New(newBackend(t), Options{Clock: clock, TTL: time.Hour})

			require.NoError(t, c.Set("meudon", place{Name: "Meudon", Lat: 48.81}))

			var got place
			ok, err := c.Get("meudon", &got)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "Meudon", got.Name)

			clock.Advance(59 * time.Minute)
			ok, err = c.Get("meudon", &got)
			require.NoError(t, err)
			assert.True(t, ok)

			clock.Advance(2 * time.Minute)
			ok, err = c.Get("meudon", &got)
			require.NoError(t, err)
			assert.False(t, ok, "expired")

			keys, err := c.backend.Keys("")
			require.NoError(t, err)
			assert.Empty(t, keys, "expired entry deleted on read")
		})
	}
}

func TestCache_Missing(t *testing.T) {
	t.Parallel()

	c := New(NewMemoryBackend(), Options{})
	var got place
	ok, err := c.Get("nope", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_CorruptEntryDiscarded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "{oops"},
		{name: "no timestamp", raw: `{"v": {"name": "x"}}`},
		{name: "wrong value shape", raw: `{"ts": 1, "v": "a string"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend := NewMemoryBackend()
			require.NoError(t, backend.Set("state:ui", []byte(tt.raw)))
			c := New(backend, Options{}).Namespace(NamespaceState, 0)

			var got place
			ok, err := c.Get("ui", &got)
			require.ErrorIs(t, err, ErrCorrupt)
			assert.False(t, ok)

			_, present, err := backend.Get("state:ui")
			require.NoError(t, err)
			assert.False(t, present)
		})
	}
}

func TestCache_Namespaces(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	root := New(NewMemoryBackend(), Options{Clock: clock})
	geocode := root.Namespace(NamespaceGeocode, time.Hour)
	state := root.Namespace(NamespaceState, 24*time.Hour)

	require.NoError(t, geocode.Set("k", 1))
	require.NoError(t, state.Set("k", 2))
	assert.Equal(t, "geocode:", geocode.Prefix())

	clock.Advance(2 * time.Hour)

	var v int
	ok, err := geocode.Get("k", &v)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = state.Get("k", &v)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, v)

	require.NoError(t, state.Delete("k"))
	ok, err = state.Get("k", &v)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Prune(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	backend := NewMemoryBackend()
	c := New(backend, Options{Clock: clock}).Namespace(NamespaceSuggest, time.Hour)

	require.NoError(t, c.Set("old", "a"))
	clock.Advance(90 * time.Minute)
	require.NoError(t, c.Set("fresh", "b"))
	require.NoError(t, backend.Set("suggest:broken", []byte("nope")))
	require.NoError(t, backend.Set("other:old", []byte("nope")))

	removed, err := c.Prune()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	keys, err := backend.Keys("")
	require.NoError(t, err)
	assert.Equal(t, []string{"other:old", "suggest:fresh"}, keys)
}

func TestBoltBackend_Persists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.db")
	b, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, New(b, Options{}).Set("state:debug", true))
	require.NoError(t, b.Close())

	b, err = OpenBolt(path)
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	var debug bool
	ok, err := New(b, Options{}).Get("state:debug", &debug)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, debug)

	keys, err := b.Keys("state:")
	require.NoError(t, err)
	assert.Equal(t, []string{"state:debug"}, keys)
}

func TestRunPruner(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	backend := NewMemoryBackend()
	c := New(backend, Options{Clock: clock}).Namespace(NamespaceGeocode, time.Minute)
	require.NoError(t, c.Set("k", 1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunPruner(ctx, clock, 10*time.Minute, c)
		close(done)
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(10 * time.Minute)

	assert.Eventually(t, func() bool {
		keys, err := backend.Keys("")
		return err == nil && len(keys) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
