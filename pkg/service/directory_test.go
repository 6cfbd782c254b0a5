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

package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/annuaire-echecs/annuaire-core/pkg/cache"
	"github.com/annuaire-echecs/annuaire-core/pkg/config"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/distance"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/records"
	"github.com/annuaire-echecs/annuaire-core/pkg/testing/helpers"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

const datasetsRoot = "/data"

func newTestConfig() *config.Instance {
	vals := config.BaseDefaults
	vals.Datasets.Dir = datasetsRoot
	cfg := config.NewInstance(vals)
	cfg.SetGeocodingEnabled(false)
	return cfg
}

func openTestDirectory(t *testing.T, opts Options) *Directory {
	t.Helper()

	if opts.Fs == nil {
		fs := helpers.NewMemoryFS()
		require.NoError(t, fs.WriteDataset(datasetsRoot))
		opts.Fs = fs.Fs
	}
	if opts.Config == nil {
		opts.Config = newTestConfig()
	}

	d, err := Open(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, d.Close())
	})
	return d
}

func TestOpen_RequiresConfig(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), Options{})
	require.Error(t, err)
}

func TestOpen_LoadsDatasets(t *testing.T) {
	t.Parallel()

	d := openTestDirectory(t, Options{})

	clubs, err := d.Collection(records.KindClub)
	require.NoError(t, err)
	assert.Equal(t, 7, clubs.Len())

	players, err := d.Collection(records.KindPlayer)
	require.NoError(t, err)
	assert.Equal(t, 2, players.Len())

	_, err = d.Collection("tournament")
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestOpen_MissingDatasets(t *testing.T) {
	t.Parallel()

	d := openTestDirectory(t, Options{Fs: afero.NewMemMapFs()})

	clubs, err := d.Collection(records.KindClub)
	require.NoError(t, err)
	assert.Zero(t, clubs.Len())

	hits, err := d.Search(records.KindClub, "echiquier", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	d := openTestDirectory(t, Options{})

	hits, err := d.Search(records.KindClub, "boulogne", 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "C92-002", hits[0].Record.ID, "name prefix outranks address match")
	assert.Equal(t, "C92-001", hits[1].Record.ID)

	limited, err := d.Search(records.KindClub, "", 3)
	require.NoError(t, err)
	assert.Len(t, limited, 3)

	all, err := d.Search(records.KindClub, "", -1)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	_, err = d.Search("tournament", "x", 0)
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	d := openTestDirectory(t, Options{})

	rec, ok := d.Lookup(records.KindClub, "C92-004")
	require.True(t, ok)
	assert.Equal(t, "Tour Prends Garde", rec.Name)

	bySlug, ok := d.Lookup(records.KindClub, rec.Slug)
	require.True(t, ok)
	assert.Equal(t, rec.ID, bySlug.ID)

	_, ok = d.Lookup(records.KindPlayer, "C92-004")
	assert.False(t, ok)
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	d := openTestDirectory(t, Options{})

	out := d.Suggest(context.Background(), "921")
	require.NotEmpty(t, out)
	for _, s := range out {
		assert.True(t, strings.HasPrefix(s.PostalCode, "921"), s.PostalCode)
	}

	session := d.NewSuggestSession()
	defer session.Close()
	got, err := session.Suggest(context.Background(), "paris")
	require.NoError(t, err)
	assert.Len(t, got, 20)
}

func TestNear(t *testing.T) {
	t.Parallel()

	d := openTestDirectory(t, Options{})

	res, err := d.Near(context.Background(), records.KindClub, "92160", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "92160", res.Reference.PostalCode)
	require.Len(t, res.Results, 7)

	first := res.Results[0]
	assert.Equal(t, "C92-004", first.Record.ID)
	assert.True(t, first.Onsite)
	assert.Equal(t, distance.OnsiteLabel, distance.FormatDistance(&first))
	for i := 1; i < len(res.Results); i++ {
		assert.False(t, res.Results[i].Onsite)
		assert.True(t, res.Results[i].Resolved(), res.Results[i].Record.ID)
		assert.LessOrEqual(t, res.Results[i-1].DistanceKm, res.Results[i].DistanceKm)
	}

	filtered, err := d.Near(context.Background(), records.KindClub, "92160", "echiquier", 0)
	require.NoError(t, err)
	require.NotEmpty(t, filtered.Results)
	for _, r := range filtered.Results {
		assert.NotEqual(t, "C92-004", r.Record.ID)
	}

	_, err = d.Near(context.Background(), records.KindClub, "Atlantide", "", 0)
	require.ErrorIs(t, err, distance.ErrUnknownReference)
}

func TestNear_RemoteGeocoding(t *testing.T) {
	t.Parallel()

	srv := helpers.NewMockGeoAPIServer(t)
	vals := config.BaseDefaults
	vals.Datasets.Dir = datasetsRoot
	vals.Geocoding.AdresseURL = srv.AdresseURL()
	vals.Geocoding.CommunesURL = srv.CommunesURL()
	vals.Geocoding.NominatimURL = srv.NominatimURL()

	d := openTestDirectory(t, Options{Config: config.NewInstance(vals)})

	res, err := d.Near(context.Background(), records.KindClub, "place de la mairie", "", 1)
	require.NoError(t, err)
	assert.Equal(t, "Meudon", res.Reference.Commune)
	assert.Len(t, res.Results, 1)

	adresse, _, _ := srv.Hits()
	assert.Equal(t, 1, adresse)

	// The answer is cached.
	_, err = d.Near(context.Background(), records.KindClub, "place de la mairie", "", 1)
	require.NoError(t, err)
	adresse, _, _ = srv.Hits()
	assert.Equal(t, 1, adresse)
}

func TestState_RoundTrip(t *testing.T) {
	t.Parallel()

	d := openTestDirectory(t, Options{})

	_, ok := d.LastSearch()
	assert.False(t, ok)

	want := SearchState{Kind: records.KindClub, Query: "echiquier", Near: "92160"}
	require.NoError(t, d.SaveSearch(want))
	require.NoError(t, d.SaveScroll(42))

	got, ok := d.LastSearch()
	require.True(t, ok)
	assert.Equal(t, want, got)

	pos, ok := d.LastScroll()
	require.True(t, ok)
	assert.Equal(t, 42, pos)
}

func TestState_Expires(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	d := openTestDirectory(t, Options{Clock: clock})

	require.NoError(t, d.SaveScroll(7))
	clock.Advance(config.DefaultStateTTL + time.Minute)

	_, ok := d.LastScroll()
	assert.False(t, ok)
}

func TestState_CorruptDiscarded(t *testing.T) {
	t.Parallel()

	backend := cache.NewMemoryBackend()
	d := openTestDirectory(t, Options{Backend: backend})

	require.NoError(t, backend.Set(cache.NamespaceState+stateSearch, []byte("{not json")))
	_, ok := d.LastSearch()
	assert.False(t, ok)

	_, found, err := backend.Get(cache.NamespaceState + stateSearch)
	require.NoError(t, err)
	assert.False(t, found, "corrupt entry deleted")
}

//nolint:paralleltest // changes the global log level
func TestState_DebugFlagRestored(t *testing.T) {
	backend := cache.NewMemoryBackend()

	first := openTestDirectory(t, Options{Backend: backend})
	require.NoError(t, first.SetDebug(true))
	t.Cleanup(func() { first.Config().SetDebugLogging(false) })
	require.NoError(t, first.Close())

	second := openTestDirectory(t, Options{Backend: backend})
	assert.True(t, second.Config().DebugLogging())
	second.Config().SetDebugLogging(false)
}

func TestPrunerRemovesExpiredState(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	backend := cache.NewMemoryBackend()
	d := openTestDirectory(t, Options{Clock: clock, Backend: backend})

	require.NoError(t, d.SaveScroll(3))
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(config.DefaultStateTTL + config.DefaultPruneInterval)

	assert.Eventually(t, func() bool {
		keys, err := backend.Keys(cache.NamespaceState)
		return err == nil && len(keys) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBoltCachePersists(t *testing.T) {
	t.Parallel()

	vals := config.BaseDefaults
	vals.Datasets.Dir = datasetsRoot
	vals.Cache.Backend = config.CacheBackendBolt
	vals.Cache.Path = filepath.Join(t.TempDir(), "cache.db")

	open := func() *Directory {
		cfg := config.NewInstance(vals)
		cfg.SetGeocodingEnabled(false)
		d, err := Open(context.Background(), Options{Config: cfg, Fs: afero.NewMemMapFs()})
		require.NoError(t, err)
		return d
	}

	d := open()
	require.NoError(t, d.SaveScroll(12))
	require.NoError(t, d.Close())
	require.NoError(t, d.Close(), "second close is a no-op")

	d = open()
	defer func() { assert.NoError(t, d.Close()) }()
	pos, ok := d.LastScroll()
	require.True(t, ok)
	assert.Equal(t, 12, pos)
}
