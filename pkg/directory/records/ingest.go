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
	"fmt"
	"strconv"
	"strings"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/address"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/geo"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
	"github.com/cespare/xxhash/v2"
)

// SlugLength is the number of base-36 characters kept from the identity hash.
const SlugLength = 6

// BuildOptions carry what a row cannot tell about itself.
type BuildOptions struct {
	// Labels resolves postal codes to known commune labels, usually the
	// gazetteer. May be nil.
	Labels address.PostalLabeler
	Kind   Kind
	// Department is the manifest department code the row was loaded from.
	Department string
	// Index is the row position, used to seed an ID when the row has none.
	Index int
}

// Build turns a decoded row into a record. The address is parsed for postal
// code, commune and street; the explicit fields win when present.
func Build(raw RawRecord, opts BuildOptions) Record {
	parsed := address.Parse(raw.Address)

	postal := normalize.NormalizePostalCode(raw.PostalCode)
	if postal == "" {
		postal = normalize.NormalizePostalCode(parsed.PostalCode)
	}

	commune := address.PickBestCommune([]string{raw.Commune, parsed.City}, postal, opts.Labels)

	dept := opts.Department
	if dept == "" {
		dept = normalize.Department(postal)
	}

	rec := Record{
		Kind:            opts.Kind,
		Name:            strings.TrimSpace(raw.Name),
		Commune:         commune,
		PostalCode:      postal,
		Department:      dept,
		Address:         parsed.Full,
		Street:          parsed.Street,
		AddressStandard: standardAddress(parsed.Street, postal, commune),
		Phone:           strings.TrimSpace(raw.Phone),
		Email:           strings.TrimSpace(raw.Email),
		Website:         strings.TrimSpace(raw.Website),
		Club:            strings.TrimSpace(raw.Club),
	}

	switch opts.Kind {
	case KindPlayer:
		rec.Popularity = raw.Elo
	default:
		rec.Popularity = raw.Licences
	}

	if p := (geo.Point{Lat: raw.Lat, Lng: raw.Lng}); p.Valid() {
		rec.Coordinates = &geo.Coordinates{
			Point:     p,
			Precision: geo.ParsePrecision(raw.Precision, geo.PrecisionExact),
		}
	}

	rec.ID = recordID(raw.ID, rec, opts.Index)
	rec.Slug = BaseSlug(rec)
	rec.Search = BuildSearchFields(&rec)
	return rec
}

func standardAddress(street, postal, commune string) string {
	parts := make([]string, 0, 2)
	if street != "" {
		parts = append(parts, street)
	}
	if locality := strings.TrimSpace(postal + " " + commune); locality != "" {
		parts = append(parts, locality)
	}
	return strings.Join(parts, ", ")
}

// recordID keeps the source identifier when there is one, otherwise derives
// one from name, postal code and commune, falling back to the row position.
// Derived IDs may still repeat; NewCollection makes them unique.
func recordID(sourceID string, rec Record, index int) string {
	if id := strings.TrimSpace(sourceID); id != "" {
		return id
	}
	kind := string(rec.Kind)
	if kind == "" {
		kind = string(KindClub)
	}
	if seed := normalize.Slugify(rec.Name + " " + rec.PostalCode + " " + rec.Commune); seed != "" {
		return kind + "-" + seed
	}
	return fmt.Sprintf("%s-%s-%d", kind, rec.Department, index)
}

// BaseSlug hashes the identity fields of a record into a short base-36
// handle. Records with the same identity share a base slug until
// EnsureUniqueSlugs runs.
func BaseSlug(rec Record) string {
	identity := strings.Join([]string{
		string(rec.Kind),
		normalize.ForSearch(rec.Name),
		normalize.ForSearch(rec.Commune),
		rec.PostalCode,
	}, "|")
	slug := strconv.FormatUint(xxhash.Sum64String(identity), 36)
	if len(slug) > SlugLength {
		slug = slug[:SlugLength]
	}
	return slug
}
