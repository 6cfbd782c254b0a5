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

package distance

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/gazetteer"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/geo"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/suggest"
	"github.com/annuaire-echecs/annuaire-core/pkg/geocoding"
)

// ErrUnknownReference is returned when a reference query cannot be located.
var ErrUnknownReference = errors.New("unknown reference location")

var latLngRegex = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*[,;\s]\s*(-?\d+(?:\.\d+)?)\s*$`)

// ResolveReference turns a user query into a reference point. It accepts
// "lat,lng" pairs, Paris queries ("paris 15", "75015"), postal codes,
// commune names with or without a postal code and, when a geocoder is
// configured, anything it can find.
func (r *Resolver) ResolveReference(ctx context.Context, query string) (Reference, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Reference{}, ErrUnknownReference
	}

	if m := latLngRegex.FindStringSubmatch(query); m != nil {
		lat, errLat := strconv.ParseFloat(m[1], 64)
		lng, errLng := strconv.ParseFloat(m[2], 64)
		pt := geo.Point{Lat: lat, Lng: lng}
		if errLat == nil && errLng == nil && pt.Valid() {
			return Reference{
				Label:       query,
				Coordinates: geo.Coordinates{Point: pt, Precision: geo.PrecisionExact},
			}, nil
		}
	}

	if ref, ok := r.localReference(query); ok {
		return ref, nil
	}

	if r.geocoder != nil {
		place, err := geocoding.Geocode(ctx, r.geocoder, query)
		if err == nil {
			label := place.Label
			if label == "" {
				label = suggest.DisplayLabel(place.Commune, place.PostalCode)
			}
			return Reference{
				Label:       label,
				PostalCode:  place.PostalCode,
				Commune:     place.Commune,
				Coordinates: place.Coordinates,
			}, nil
		}
		if !errors.Is(err, geocoding.ErrNoResult) {
			return Reference{}, fmt.Errorf("%w: %q: %w", ErrUnknownReference, query, err)
		}
	}
	return Reference{}, fmt.Errorf("%w: %q", ErrUnknownReference, query)
}

func (r *Resolver) localReference(query string) (Reference, bool) {
	if r.gazetteer == nil {
		return Reference{}, false
	}
	q := suggest.ParseQuery(query)

	if hint, ok := q.Paris(); ok {
		if hint > 0 {
			return entryReference(gazetteer.ParisEntry(hint)), true
		}
		if q.Text != "" {
			if e, found := r.gazetteer.LookupByCommuneName("paris"); found {
				return entryReference(e), true
			}
		}
	}

	if q.ExactPostal() {
		entries := r.gazetteer.LookupByPostal(q.Postal)
		for _, e := range entries {
			if q.Text == "" || strings.Contains(normalize.Compact(e.Label), q.Text) {
				return entryReference(e), true
			}
		}
		if q.Text == "" {
			if e, ok := r.gazetteer.DepartmentFallback(q.Postal); ok {
				ref := entryReference(e)
				ref.PostalCode = q.Postal
				ref.Label = q.Postal
				return ref, true
			}
		}
	}

	if q.Postal == "" {
		if e, ok := r.gazetteer.LookupByCommuneName(query); ok {
			return entryReference(e), true
		}
	}
	return Reference{}, false
}

// entryReference keeps arrondissement labels as the commune so that Paris
// records are only on site in their own arrondissement.
func entryReference(e gazetteer.Entry) Reference {
	return Reference{
		Label:       suggest.DisplayLabel(e.Label, e.PostalCode),
		PostalCode:  e.PostalCode,
		Commune:     e.Label,
		Coordinates: e.Coordinates(),
	}
}
