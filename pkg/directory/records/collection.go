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
	"sort"
	"strconv"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
	"github.com/rs/zerolog/log"
)

// Collection is a loaded, read-only set of records.
type Collection struct {
	byID       map[string]int
	bySlug     map[string]int
	records    []Record
	collisions []SlugCollision
	kind       Kind
}

// NewCollection indexes recs. IDs and slugs are made unique first.
func NewCollection(kind Kind, recs []Record) *Collection {
	EnsureUniqueIDs(recs)
	collisions := EnsureUniqueSlugs(recs)

	c := &Collection{
		kind:       kind,
		records:    recs,
		collisions: collisions,
		byID:       make(map[string]int, len(recs)),
		bySlug:     make(map[string]int, len(recs)),
	}
	for i := range recs {
		c.byID[recs[i].ID] = i
		c.bySlug[recs[i].Slug] = i
	}
	return c
}

// EnsureUniqueIDs suffixes repeated IDs with "-2", "-3", … in load order,
// skipping IDs already taken. The first record keeps its ID.
func EnsureUniqueIDs(recs []Record) {
	used := make(map[string]struct{}, len(recs))
	for i := range recs {
		used[recs[i].ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(recs))
	for i := range recs {
		id := recs[i].ID
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			continue
		}
		suffix := 2
		candidate := id + "-" + strconv.Itoa(suffix)
		for {
			if _, taken := used[candidate]; !taken {
				break
			}
			suffix++
			candidate = id + "-" + strconv.Itoa(suffix)
		}
		log.Warn().Str("id", id).Str("renamed", candidate).Msg("duplicate record ID")
		used[candidate] = struct{}{}
		seen[candidate] = struct{}{}
		recs[i].ID = candidate
	}
}

// Kind returns the record kind of the collection.
func (c *Collection) Kind() Kind {
	return c.kind
}

// Len returns the number of records.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// All returns the records in load order. Callers must not modify them.
func (c *Collection) All() []Record {
	if c == nil {
		return nil
	}
	return c.records
}

// ByID looks a record up by ID.
func (c *Collection) ByID(id string) (Record, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Record{}, false
	}
	return c.records[i], true
}

// BySlug looks a record up by slug.
func (c *Collection) BySlug(slug string) (Record, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Record{}, false
	}
	return c.records[i], true
}

// Collisions reports the slugs that had to be suffixed at load time.
func (c *Collection) Collisions() []SlugCollision {
	return c.collisions
}

// Locations returns the distinct commune and postal code pairs of the
// collection, sorted by postal code then commune. When several records share
// a location, the first one with coordinates provides them.
func (c *Collection) Locations() []Location {
	if c == nil {
		return nil
	}

	index := make(map[string]int)
	var out []Location
	for i := range c.records {
		r := &c.records[i]
		if r.Commune == "" && r.PostalCode == "" {
			continue
		}
		key := normalize.CanonicalParisPostal(r.PostalCode) + "|" + normalize.ForSearch(r.Commune)
		if j, ok := index[key]; ok {
			if out[j].Coordinates == nil && r.HasCoordinates() {
				coords := *r.Coordinates
				out[j].Coordinates = &coords
			}
			continue
		}

		loc := Location{Commune: r.Commune, PostalCode: r.PostalCode, Kind: r.Kind}
		if r.HasCoordinates() {
			coords := *r.Coordinates
			loc.Coordinates = &coords
		}
		index[key] = len(out)
		out = append(out, loc)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PostalCode != out[j].PostalCode {
			return out[i].PostalCode < out[j].PostalCode
		}
		return out[i].Commune < out[j].Commune
	})
	return out
}

// ApplyGeoHints applies a hints overlay to the collection's records.
func (c *Collection) ApplyGeoHints(hints GeoHints) int {
	return ApplyGeoHints(c.records, hints)
}
