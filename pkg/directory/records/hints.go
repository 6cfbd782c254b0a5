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
	"encoding/json"
	"fmt"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/geo"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
)

// GeoHint is a manually curated location correction.
type GeoHint struct {
	PostalCode string  `json:"postalCode,omitempty"`
	Precision  string  `json:"precision,omitempty"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

// GeoHints is the overlay file, keyed by slug (or record ID).
type GeoHints struct {
	Hints map[string]GeoHint `json:"hints"`
}

// ParseGeoHints decodes a geo hints file.
func ParseGeoHints(data []byte) (GeoHints, error) {
	var hints GeoHints
	if err := json.Unmarshal(data, &hints); err != nil {
		return GeoHints{}, fmt.Errorf("failed to parse geo hints: %w", err)
	}
	return hints, nil
}

// ApplyGeoHints overrides the location of every record whose slug or ID has
// a hint. It must run after slugs are made unique. Hints always win over
// coordinates from the dataset. The number of records changed is returned.
func ApplyGeoHints(recs []Record, hints GeoHints) int {
	if len(hints.Hints) == 0 {
		return 0
	}

	applied := 0
	for i := range recs {
		hint, ok := hints.Hints[recs[i].Slug]
		if !ok {
			hint, ok = hints.Hints[recs[i].ID]
		}
		if !ok {
			continue
		}

		changed := false
		if p := (geo.Point{Lat: hint.Lat, Lng: hint.Lng}); p.Valid() {
			recs[i].Coordinates = &geo.Coordinates{
				Point:     p,
				Precision: geo.ParsePrecision(hint.Precision, geo.PrecisionExact),
			}
			changed = true
		}
		if postal := normalize.NormalizePostalCode(hint.PostalCode); postal != "" {
			recs[i].PostalCode = postal
			recs[i].Department = normalize.Department(postal)
			recs[i].AddressStandard = standardAddress(recs[i].Street, postal, recs[i].Commune)
			recs[i].Search = BuildSearchFields(&recs[i])
			changed = true
		}
		if changed {
			applied++
		}
	}
	return applied
}
