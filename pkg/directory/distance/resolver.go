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

// Package distance resolves record locations and ranks records by distance
// to a reference point.
package distance

import (
	"context"
	"errors"
	"strings"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/gazetteer"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/geo"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/records"
	"github.com/annuaire-echecs/annuaire-core/pkg/geocoding"
	"github.com/annuaire-echecs/annuaire-core/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

// Method tells which step of the resolution chain located a record.
type Method string

const (
	MethodNone       Method = ""
	MethodDirect     Method = "direct"
	MethodCommune    Method = "commune"
	MethodPostal     Method = "postal"
	MethodDepartment Method = "department"
	MethodGeocoder   Method = "geocoder"
)

// Resolution is the best known location of a record.
type Resolution struct {
	Coordinates *geo.Coordinates `json:"coordinates,omitempty"`
	Method      Method           `json:"method,omitempty"`
}

// Resolved reports whether a location was found.
func (r Resolution) Resolved() bool {
	return r.Coordinates != nil
}

// Resolver locates records. Results, misses included, are kept in a side
// table keyed by record kind and ID for the lifetime of the resolver so records
// themselves are never modified.
type Resolver struct {
	gazetteer *gazetteer.Gazetteer
	geocoder  geocoding.Provider
	memo      map[string]Resolution
	mu        syncutil.RWMutex
}

// NewResolver returns a resolver over g. The geocoder is optional and only
// consulted when nothing local is known.
func NewResolver(g *gazetteer.Gazetteer, geocoder geocoding.Provider) *Resolver {
	return &Resolver{
		gazetteer: g,
		geocoder:  geocoder,
		memo:      make(map[string]Resolution),
	}
}

// Resolve returns the location of rec, trying in order: the record's own
// coordinates, its commune in the gazetteer (same department only), its
// postal code (preferring the label matching its commune), the department
// centroid, and finally the geocoder on the address text.
func (r *Resolver) Resolve(ctx context.Context, rec *records.Record) Resolution {
	if rec.HasCoordinates() {
		coords := *rec.Coordinates
		return Resolution{Coordinates: &coords, Method: MethodDirect}
	}

	key := memoKey(rec)
	if key != "" {
		r.mu.RLock()
		res, ok := r.memo[key]
		r.mu.RUnlock()
		if ok {
			return res
		}
	}

	res := r.resolveLocal(rec)
	if !res.Resolved() && r.geocoder != nil {
		var err error
		res, err = r.geocode(ctx, rec)
		if err != nil && !errors.Is(err, geocoding.ErrNoResult) {
			// Only definite misses are remembered; failures are retried.
			return Resolution{}
		}
	}

	if key != "" {
		r.mu.Lock()
		r.memo[key] = res
		r.mu.Unlock()
	}
	return res
}

// Forget drops the memoised location of a record.
func (r *Resolver) Forget(rec *records.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.memo, memoKey(rec))
}

// memoKey is unique per record across collections. Records without an ID
// are never memoised.
func memoKey(rec *records.Record) string {
	if rec.ID == "" {
		return ""
	}
	return string(rec.Kind) + "/" + rec.ID
}

// Memoised returns the number of records in the side table.
func (r *Resolver) Memoised() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.memo)
}

func (r *Resolver) resolveLocal(rec *records.Record) Resolution {
	if r.gazetteer == nil {
		return Resolution{}
	}

	// Paris arrondissements always resolve through their postal code.
	if rec.Commune != "" && !normalize.IsParisPostal(rec.PostalCode) {
		if e, ok := r.gazetteer.LookupByCommuneName(rec.Commune); ok && sameDepartment(rec, e.PostalCode) {
			return fromEntry(e, MethodCommune)
		}
	}

	if entries := r.gazetteer.LookupByPostal(rec.PostalCode); len(entries) > 0 {
		best := entries[0]
		want := normalize.ForSearch(rec.Commune)
		for _, e := range entries {
			if want != "" && normalize.ForSearch(e.Label) == want {
				best = e
				break
			}
		}
		return fromEntry(best, MethodPostal)
	}

	if e, ok := r.gazetteer.DepartmentFallback(rec.PostalCode); ok {
		return fromEntry(e, MethodDepartment)
	}
	if rec.Department != "" {
		if e, ok := r.gazetteer.Department(rec.Department); ok {
			return fromEntry(e, MethodDepartment)
		}
	}
	return Resolution{}
}

func (r *Resolver) geocode(ctx context.Context, rec *records.Record) (Resolution, error) {
	text := rec.AddressStandard
	if text == "" {
		text = strings.TrimSpace(rec.Address + " " + rec.PostalCode + " " + rec.Commune)
	}
	place, err := geocoding.Geocode(ctx, r.geocoder, text)
	if err != nil {
		if !errors.Is(err, geocoding.ErrNoResult) {
			log.Debug().Err(err).Str("record", rec.ID).Msg("geocoding failed")
		}
		return Resolution{}, err
	}
	coords := geo.Coordinates{Point: place.Coordinates.Point, Precision: geo.PrecisionApprox}
	return Resolution{Coordinates: &coords, Method: MethodGeocoder}, nil
}

func fromEntry(e gazetteer.Entry, m Method) Resolution {
	coords := e.Coordinates()
	return Resolution{Coordinates: &coords, Method: m}
}

// sameDepartment reports whether a gazetteer postal code lies in the
// record's department. Records without any department information accept
// any match.
func sameDepartment(rec *records.Record, entryPostal string) bool {
	dept := normalize.Department(rec.PostalCode)
	if dept == "" {
		dept = rec.Department
	}
	if dept == "" {
		return true
	}
	entryDept := normalize.Department(entryPostal)
	if dept == "2A" || dept == "2B" {
		dept = "20"
	}
	return entryDept == dept
}
