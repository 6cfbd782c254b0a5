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

package records

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/gazetteer"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/geo"
	"github.com/annuaire-echecs/annuaire-core/pkg/shared/httpclient"
	"github.com/annuaire-echecs/annuaire-core/pkg/testing/fixtures"
	"github.com/annuaire-echecs/annuaire-core/pkg/testing/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFSLoader(t *testing.T) *Loader {
	t.Helper()

	fsh := helpers.NewMemoryFS()
	require.NoError(t, fsh.WriteDataset("datasets"))
	return &Loader{
		Source:      FSSource{Fs: fsh.Fs, Root: "datasets"},
		Labels:      gazetteer.New(),
		Concurrency: 2,
	}
}

func TestLoader_LoadClubs(t *testing.T) {
	t.Parallel()

	loader := newFSLoader(t)
	coll, err := loader.Load(context.Background(), LoadOptions{
		Kind:     KindClub,
		Manifest: "clubs/manifest.json",
		GeoHints: "geo-hints.json",
	})
	require.NoError(t, err)

	// Department 93 has no file and the nameless row is dropped.
	assert.Equal(t, 7, coll.Len())
	assert.Equal(t, KindClub, coll.Kind())

	issy, ok := coll.ByID("C92-003")
	require.True(t, ok)
	assert.Equal(t, "Issy-les-Moulineaux", issy.Commune)
	assert.Equal(t, "92130", issy.PostalCode)
	assert.Equal(t, 60, issy.Popularity)

	passy, ok := coll.ByID("C75-002")
	require.True(t, ok)
	assert.Equal(t, "75016", passy.PostalCode)
	assert.Equal(t, "75", passy.Department)

	antony, ok := coll.ByID("C92-004")
	require.True(t, ok)
	require.NotNil(t, antony.Coordinates, "geo hint applied")
	assert.InDelta(t, 48.7540, antony.Coordinates.Lat, 1e-9)
	assert.Equal(t, geo.PrecisionExact, antony.Coordinates.Precision)

	bySlug, ok := coll.BySlug(antony.Slug)
	require.True(t, ok)
	assert.Equal(t, antony.ID, bySlug.ID)
}

func TestLoader_LoadPlayers(t *testing.T) {
	t.Parallel()

	loader := newFSLoader(t)
	coll, err := loader.Load(context.Background(), LoadOptions{
		Kind:     KindPlayer,
		Manifest: "players/manifest.json",
	})
	require.NoError(t, err)
	require.Equal(t, 2, coll.Len())

	martin, ok := coll.ByID("P-2")
	require.True(t, ok)
	assert.Equal(t, 1620, martin.Popularity)
	assert.Equal(t, "92160", martin.PostalCode)
	assert.Equal(t, "Antony", martin.Commune)
	assert.Equal(t, "Tour Prends Garde", martin.Club)
}

func TestLoader_ManifestMissing(t *testing.T) {
	t.Parallel()

	loader := newFSLoader(t)
	coll, err := loader.Load(context.Background(), LoadOptions{
		Kind:     KindClub,
		Manifest: "nope/manifest.json",
	})
	require.ErrorIs(t, err, ErrDataUnavailable)
	require.NotNil(t, coll)
	assert.Equal(t, 0, coll.Len())
}

func TestLoader_MalformedManifest(t *testing.T) {
	t.Parallel()

	fsh := helpers.NewMemoryFS()
	require.NoError(t, fsh.WriteFile("clubs/manifest.json", "{not json"))

	loader := &Loader{Source: FSSource{Fs: fsh.Fs}}
	_, err := loader.Load(context.Background(), LoadOptions{Kind: KindClub, Manifest: "clubs/manifest.json"})
	require.ErrorIs(t, err, ErrDataUnavailable)
}

func TestLoader_MalformedDepartmentAndHints(t *testing.T) {
	t.Parallel()

	fsh := helpers.NewMemoryFS()
	require.NoError(t, fsh.WriteFiles("", map[string]string{
		"clubs/manifest.json": fixtures.ClubsManifest,
		"clubs/92.json":       fixtures.Clubs92,
		"clubs/75.json":       `[{"nom": `,
		"geo-hints.json":      `[]`,
	}))

	loader := &Loader{Source: FSSource{Fs: fsh.Fs}, Labels: gazetteer.New()}
	coll, err := loader.Load(context.Background(), LoadOptions{
		Kind:     KindClub,
		Manifest: "clubs/manifest.json",
		GeoHints: "geo-hints.json",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, coll.Len())

	antony, ok := coll.ByID("C92-004")
	require.True(t, ok)
	assert.Nil(t, antony.Coordinates, "broken hints file ignored")
}

func TestHTTPSource(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content, ok := fixtures.Files[strings.TrimPrefix(r.URL.Path, "/data/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(content))
	}))
	t.Cleanup(srv.Close)

	loader := &Loader{
		Source: HTTPSource{Client: httpclient.NewClient(), BaseURL: srv.URL + "/data/"},
		Labels: gazetteer.New(),
	}
	coll, err := loader.Load(context.Background(), LoadOptions{
		Kind:     KindClub,
		Manifest: "clubs/manifest.json",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, coll.Len())

	_, err = HTTPSource{Client: httpclient.NewClient(), BaseURL: srv.URL}.Read(context.Background(), "missing.json")
	require.Error(t, err)
}
