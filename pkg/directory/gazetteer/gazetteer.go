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

// Package gazetteer maps postal codes and commune names to approximate
// coordinates. It starts from a small bundled table and the 20 Paris
// arrondissements and is extended at runtime from larger tables and from
// remote suggestion results.
package gazetteer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/geo"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
	"github.com/annuaire-echecs/annuaire-core/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// ErrNotLoaded is returned by EnsureExtended when the loader yields nothing.
var ErrNotLoaded = errors.New("gazetteer extension returned no entries")

// Entry is one gazetteer row.
type Entry struct {
	PostalCode string        `json:"postalCode" csv:"postal_code"`
	Label      string        `json:"label" csv:"label"`
	Lat        float64       `json:"lat" csv:"lat"`
	Lng        float64       `json:"lng" csv:"lng"`
	Precision  geo.Precision `json:"precision,omitempty" csv:"-"`
}

// Point returns the entry location.
func (e Entry) Point() geo.Point {
	return geo.Point{Lat: e.Lat, Lng: e.Lng}
}

// Coordinates returns the entry location tagged with its precision.
func (e Entry) Coordinates() geo.Coordinates {
	return geo.Coordinates{Point: e.Point(), Precision: e.Precision}
}

// Loader fetches additional gazetteer entries.
type Loader func(ctx context.Context) ([]Entry, error)

// Gazetteer is safe for concurrent use.
type Gazetteer struct {
	byPostal    map[string][]Entry
	byCommune   map[string]Entry
	seen        map[string]struct{}
	departments map[string]Entry
	extendGroup singleflight.Group
	entries     []Entry
	mu          syncutil.RWMutex
	extended    atomic.Bool
}

// NewEmpty returns a gazetteer with no entries at all.
func NewEmpty() *Gazetteer {
	return &Gazetteer{
		byPostal:    make(map[string][]Entry),
		byCommune:   make(map[string]Entry),
		seen:        make(map[string]struct{}),
		departments: make(map[string]Entry),
	}
}

// New returns a gazetteer seeded with the bundled communes, the Paris
// arrondissements and the department centroids.
func New() *Gazetteer {
	g := NewEmpty()

	departments, err := bundledDepartments()
	if err != nil {
		log.Error().Err(err).Msg("failed to decode bundled department centroids")
	}
	for _, d := range departments {
		g.departments[d.PostalCode] = d
	}

	g.Merge(ParisEntries())
	g.byCommune[normalize.ForSearch(parisCentre.Label)] = parisCentre

	communes, err := bundledCommunes()
	if err != nil {
		log.Error().Err(err).Msg("failed to decode bundled gazetteer")
	}
	g.Merge(communes)

	log.Debug().
		Int("entries", g.Len()).
		Int("departments", len(g.departments)).
		Msg("gazetteer initialised")
	return g
}

func dedupKey(e Entry) string {
	return fmt.Sprintf("%s|%s|%.6f|%.6f", e.PostalCode, e.Label, round6(e.Lat), round6(e.Lng))
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Merge adds entries, skipping exact duplicates and rows without a postal
// code, a label or a usable location. Entries without a precision are tagged
// as postal-level. The first entry seen for a commune name keeps the name
// index. Merge returns the number of entries added.
func (g *Gazetteer) Merge(entries []Entry) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	added := 0
	for _, e := range entries {
		e.PostalCode = strings.TrimSpace(e.PostalCode)
		e.Label = strings.TrimSpace(e.Label)
		if e.PostalCode == "" || e.Label == "" || !e.Point().Valid() {
			continue
		}
		if e.Precision == geo.PrecisionUnknown {
			e.Precision = geo.PrecisionPostal
		}

		key := dedupKey(e)
		if _, ok := g.seen[key]; ok {
			continue
		}
		g.seen[key] = struct{}{}

		g.entries = append(g.entries, e)
		g.byPostal[e.PostalCode] = append(g.byPostal[e.PostalCode], e)
		if name := normalize.ForSearch(e.Label); name != "" {
			if _, ok := g.byCommune[name]; !ok {
				g.byCommune[name] = e
			}
		}
		added++
	}
	return added
}

// Len returns the number of postal entries.
func (g *Gazetteer) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// Range calls fn for every postal entry in insertion order until fn returns
// false.
func (g *Gazetteer) Range(fn func(Entry) bool) {
	g.mu.RLock()
	snapshot := make([]Entry, len(g.entries))
	copy(snapshot, g.entries)
	g.mu.RUnlock()

	for _, e := range snapshot {
		if !fn(e) {
			return
		}
	}
}

// LookupByPostal returns every entry for an exact postal code. When there is
// none, Paris codes are retried in canonical form and under the 75116 alias.
func (g *Gazetteer) LookupByPostal(code string) []Entry {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if found := g.byPostal[code]; len(found) > 0 {
		return append([]Entry(nil), found...)
	}

	canonical := normalize.CanonicalParisPostal(code)
	if canonical == "" {
		return nil
	}
	keys := []string{canonical}
	if canonical == "75016" {
		keys = append(keys, normalize.ParisAlias16)
	}

	var out []Entry
	for _, k := range keys {
		if k == code {
			continue
		}
		out = append(out, g.byPostal[k]...)
	}
	return out
}

// LookupByPostalPrefix returns entries whose postal code starts with a 2 to 4
// digit prefix, or with the prefix behind a leading zero ("1000" also finds
// "01000"). Results are sorted by postal code, then label.
func (g *Gazetteer) LookupByPostalPrefix(prefix string) []Entry {
	prefix = strings.TrimSpace(prefix)
	if len(prefix) < 2 || len(prefix) > 4 || normalize.DigitsOnly(prefix) != prefix {
		return nil
	}
	padded := "0" + prefix

	g.mu.RLock()
	var out []Entry
	for code, entries := range g.byPostal {
		if strings.HasPrefix(code, prefix) || strings.HasPrefix(code, padded) {
			out = append(out, entries...)
		}
	}
	g.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PostalCode != out[j].PostalCode {
			return out[i].PostalCode < out[j].PostalCode
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// LookupByCommuneName finds a commune by name, ignoring case, accents and
// punctuation.
func (g *Gazetteer) LookupByCommuneName(name string) (Entry, bool) {
	key := normalize.ForSearch(name)
	if key == "" {
		return Entry{}, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.byCommune[key]
	return e, ok
}

// PostalLabels returns the distinct labels known for a postal code.
func (g *Gazetteer) PostalLabels(code string) []string {
	entries := g.LookupByPostal(code)
	labels := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Label]; ok {
			continue
		}
		seen[e.Label] = struct{}{}
		labels = append(labels, e.Label)
	}
	return labels
}

// DepartmentFallback returns a coarse location for a postal code. A valid
// Paris code always resolves to its arrondissement, never to the Paris
// department centroid.
func (g *Gazetteer) DepartmentFallback(postal string) (Entry, bool) {
	if n := normalize.ParisArrondissement(postal); n > 0 {
		return ParisEntry(n), true
	}

	dept := normalize.Department(postal)
	if dept == "" {
		return Entry{}, false
	}
	if dept == "20" {
		dept = corsicanDepartment(normalize.DigitsOnly(postal))
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.departments[dept]
	return e, ok
}

// Department returns the centroid entry of a department code ("92", "2A",
// "974").
func (g *Gazetteer) Department(code string) (Entry, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.departments[strings.ToUpper(strings.TrimSpace(code))]
	return e, ok
}

func corsicanDepartment(postal string) string {
	if len(postal) >= 3 && postal[:3] < "202" {
		return "2A"
	}
	return "2B"
}

// Extended reports whether EnsureExtended has completed successfully.
func (g *Gazetteer) Extended() bool {
	return g.extended.Load()
}

// EnsureExtended runs loader once and merges its entries. Concurrent callers
// share the same load; after a failure the next call retries.
func (g *Gazetteer) EnsureExtended(ctx context.Context, loader Loader) error {
	if g.extended.Load() {
		return nil
	}

	_, err, shared := g.extendGroup.Do("extend", func() (any, error) {
		if g.extended.Load() {
			return 0, nil
		}
		entries, err := loader(ctx)
		if err != nil {
			return 0, err
		}
		if len(entries) == 0 {
			return 0, ErrNotLoaded
		}
		added := g.Merge(entries)
		g.extended.Store(true)
		log.Info().
			Int("received", len(entries)).
			Int("added", added).
			Msg("gazetteer extended")
		return added, nil
	})
	if err != nil {
		return fmt.Errorf("failed to extend gazetteer: %w", err)
	}
	if shared {
		log.Debug().Msg("gazetteer extension shared with concurrent caller")
	}
	return nil
}
