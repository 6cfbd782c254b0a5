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

package gazetteer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/geo"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SeedsBundledTables(t *testing.T) {
	t.Parallel()

	g := New()

	boulogne := g.LookupByPostal("92100")
	require.Len(t, boulogne, 1)
	assert.Equal(t, "Boulogne-Billancourt", boulogne[0].Label)
	assert.Equal(t, geo.PrecisionPostal, boulogne[0].Precision)

	for n := 1; n <= 20; n++ {
		entries := g.LookupByPostal(ParisEntry(n).PostalCode)
		require.Len(t, entries, 1, "arrondissement %d", n)
	}

	dept, ok := g.Department("92")
	require.True(t, ok)
	assert.Equal(t, "Hauts-de-Seine", dept.Label)
	assert.Equal(t, geo.PrecisionDepartment, dept.Precision)
}

func TestLookupByPostal_ParisAliases(t *testing.T) {
	t.Parallel()

	g := New()

	entries := g.LookupByPostal("75116")
	require.Len(t, entries, 1)
	assert.Equal(t, "Paris 16e", entries[0].Label)

	assert.Empty(t, g.LookupByPostal("75000"))
	assert.Empty(t, g.LookupByPostal(""))
}

func TestLookupByPostal_ReverseAlias(t *testing.T) {
	t.Parallel()

	g := NewEmpty()
	g.Merge([]Entry{{PostalCode: "75116", Label: "Paris 16e Nord", Lat: 48.87, Lng: 2.28}})

	entries := g.LookupByPostal("75016")
	require.Len(t, entries, 1)
	assert.Equal(t, "Paris 16e Nord", entries[0].Label)
}

func TestLookupByPostalPrefix(t *testing.T) {
	t.Parallel()

	g := NewEmpty()
	g.Merge([]Entry{
		{PostalCode: "92130", Label: "Issy-les-Moulineaux", Lat: 48.82, Lng: 2.27},
		{PostalCode: "92100", Label: "Boulogne-Billancourt", Lat: 48.83, Lng: 2.24},
		{PostalCode: "01000", Label: "Bourg-en-Bresse", Lat: 46.20, Lng: 5.22},
		{PostalCode: "93100", Label: "Montreuil", Lat: 48.86, Lng: 2.44},
	})

	got := g.LookupByPostalPrefix("921")
	require.Len(t, got, 2)
	assert.Equal(t, "92100", got[0].PostalCode)
	assert.Equal(t, "92130", got[1].PostalCode)

	padded := g.LookupByPostalPrefix("100")
	require.Len(t, padded, 1)
	assert.Equal(t, "Bourg-en-Bresse", padded[0].Label)

	assert.Nil(t, g.LookupByPostalPrefix("9"))
	assert.Nil(t, g.LookupByPostalPrefix("92100"))
	assert.Nil(t, g.LookupByPostalPrefix("9a"))
}

func TestLookupByCommuneName(t *testing.T) {
	t.Parallel()

	g := New()

	tests := []struct {
		name   string
		query  string
		postal string
		found  bool
	}{
		{name: "exact", query: "Sèvres", postal: "92310", found: true},
		{name: "no accents", query: "SEVRES", postal: "92310", found: true},
		{name: "spaces for hyphens", query: "issy les moulineaux", postal: "92130", found: true},
		{name: "first writer wins", query: "Meudon", postal: "92190", found: true},
		{name: "paris centre", query: "paris", postal: "75", found: true},
		{name: "unknown", query: "Atlantis", found: false},
		{name: "empty", query: "  ", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, ok := g.LookupByCommuneName(tt.query)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.postal, e.PostalCode)
		})
	}
}

func TestDepartmentFallback(t *testing.T) {
	t.Parallel()

	g := New()

	paris, ok := g.DepartmentFallback("75015")
	require.True(t, ok)
	assert.Equal(t, "Paris 15e", paris.Label)
	assert.Equal(t, geo.PrecisionPostal, paris.Precision, "Paris never falls back to the department")

	dept, ok := g.DepartmentFallback("92999")
	require.True(t, ok)
	assert.Equal(t, "Hauts-de-Seine", dept.Label)
	assert.Equal(t, geo.PrecisionDepartment, dept.Precision)

	southCorsica, ok := g.DepartmentFallback("20000")
	require.True(t, ok)
	assert.Equal(t, "Corse-du-Sud", southCorsica.Label)

	northCorsica, ok := g.DepartmentFallback("20200")
	require.True(t, ok)
	assert.Equal(t, "Haute-Corse", northCorsica.Label)

	reunion, ok := g.DepartmentFallback("97400")
	require.True(t, ok)
	assert.Equal(t, "La Réunion", reunion.Label)

	_, ok = g.DepartmentFallback("")
	assert.False(t, ok)
}

func TestMerge_Dedup(t *testing.T) {
	t.Parallel()

	g := NewEmpty()
	e := Entry{PostalCode: "92100", Label: "Boulogne-Billancourt", Lat: 48.8397, Lng: 2.2399}

	assert.Equal(t, 1, g.Merge([]Entry{e}))
	assert.Equal(t, 0, g.Merge([]Entry{e}), "exact duplicate")

	nudged := e
	nudged.Lat += 0.0000001
	assert.Equal(t, 0, g.Merge([]Entry{nudged}), "same location after rounding")

	assert.Equal(t, 0, g.Merge([]Entry{
		{PostalCode: "", Label: "Nowhere", Lat: 1, Lng: 1},
		{PostalCode: "92000", Label: "", Lat: 1, Lng: 1},
		{PostalCode: "92000", Label: "Nanterre"},
	}), "invalid rows skipped")

	assert.Equal(t, 1, g.Len())
}

func TestPostalLabels(t *testing.T) {
	t.Parallel()

	g := NewEmpty()
	g.Merge([]Entry{
		{PostalCode: "92190", Label: "Meudon", Lat: 48.81, Lng: 2.23},
		{PostalCode: "92190", Label: "Meudon", Lat: 48.80, Lng: 2.24},
		{PostalCode: "92190", Label: "Meudon-la-Forêt", Lat: 48.79, Lng: 2.22},
	})

	assert.Equal(t, []string{"Meudon", "Meudon-la-Forêt"}, g.PostalLabels("92190"))
	assert.Empty(t, g.PostalLabels("00000"))
}

func TestRange_StopsEarly(t *testing.T) {
	t.Parallel()

	g := New()
	count := 0
	g.Range(func(Entry) bool {
		count++
		return count < 3
	})
	assert.Equal(t, 3, count)
}

func TestEnsureExtended_LoadsOnce(t *testing.T) {
	t.Parallel()

	g := NewEmpty()
	var calls atomic.Int32
	loader := func(context.Context) ([]Entry, error) {
		calls.Add(1)
		return []Entry{{PostalCode: "69001", Label: "Lyon 1er", Lat: 45.767, Lng: 4.834}}, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.EnsureExtended(context.Background(), loader))
		}()
	}
	wg.Wait()

	assert.True(t, g.Extended())
	assert.LessOrEqual(t, calls.Load(), int32(8))
	require.NoError(t, g.EnsureExtended(context.Background(), loader))
	before := calls.Load()
	require.NoError(t, g.EnsureExtended(context.Background(), loader))
	assert.Equal(t, before, calls.Load(), "no reload once extended")
	assert.Len(t, g.LookupByPostal("69001"), 1)
}

func TestEnsureExtended_RetriesAfterFailure(t *testing.T) {
	t.Parallel()

	g := NewEmpty()
	boom := errors.New("boom")

	err := g.EnsureExtended(context.Background(), func(context.Context) ([]Entry, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, g.Extended())

	err = g.EnsureExtended(context.Background(), func(context.Context) ([]Entry, error) {
		return nil, nil
	})
	require.ErrorIs(t, err, ErrNotLoaded)

	err = g.EnsureExtended(context.Background(), func(context.Context) ([]Entry, error) {
		return []Entry{{PostalCode: "33000", Label: "Bordeaux", Lat: 44.84, Lng: -0.58}}, nil
	})
	require.NoError(t, err)
	assert.True(t, g.Extended())
}

func TestFileLoader(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/communes.json", []byte(`[
		{"postalCode": "13001", "label": "Marseille 1er", "lat": 43.2999, "lng": 5.3841},
		{"postalCode": "06000", "label": "Nice", "lat": 43.7102, "lng": 7.262, "precision": "commune"}
	]`), 0o644))

	entries, err := FileLoader(fs, "/data/communes.json")(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, geo.PrecisionUnknown, entries[0].Precision)
	assert.Equal(t, geo.PrecisionCommune, entries[1].Precision)

	g := NewEmpty()
	require.NoError(t, g.EnsureExtended(context.Background(), FileLoader(fs, "/data/communes.json")))
	merged := g.LookupByPostal("13001")
	require.Len(t, merged, 1)
	assert.Equal(t, geo.PrecisionPostal, merged[0].Precision)

	_, err = FileLoader(fs, "/data/missing.json")(context.Background())
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/data/bad.json", []byte(`{`), 0o644))
	_, err = FileLoader(fs, "/data/bad.json")(context.Background())
	require.Error(t, err)
}
