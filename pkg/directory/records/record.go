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

// Package records builds the immutable club and player records the search,
// suggestion and distance rankers work on, from loosely typed department
// files.
package records

import (
	"strings"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/geo"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
)

// Kind tells clubs and players apart.
type Kind string

const (
	KindClub   Kind = "club"
	KindPlayer Kind = "player"
)

// SearchFields are computed once at ingestion.
type SearchFields struct {
	// Blob covers every searchable field.
	Blob        string   `json:"blob"`
	NameBlob    string   `json:"nameBlob"`
	AddressBlob string   `json:"addressBlob"`
	Tokens      []string `json:"tokens"`
}

// Record is a club or player. It is not modified after the collection is
// built; resolved coordinates live in the distance package's memo instead.
type Record struct {
	Coordinates     *geo.Coordinates `json:"coordinates,omitempty"`
	ID              string           `json:"id"`
	Slug            string           `json:"slug"`
	Kind            Kind             `json:"kind"`
	Name            string           `json:"name"`
	Commune         string           `json:"commune,omitempty"`
	PostalCode      string           `json:"postalCode,omitempty"`
	Department      string           `json:"department,omitempty"`
	Address         string           `json:"address,omitempty"`
	AddressStandard string           `json:"addressStandard,omitempty"`
	Street          string           `json:"street,omitempty"`
	Phone           string           `json:"phone,omitempty"`
	Email           string           `json:"email,omitempty"`
	Website         string           `json:"website,omitempty"`
	Club            string           `json:"club,omitempty"`
	Search          SearchFields     `json:"-"`
	Popularity      int              `json:"popularity,omitempty"`
}

// HasCoordinates reports whether the record carries its own location.
func (r *Record) HasCoordinates() bool {
	return r.Coordinates != nil && r.Coordinates.Valid()
}

// BuildSearchFields derives the normalised blobs of a record.
func BuildSearchFields(r *Record) SearchFields {
	name := normalize.ForSearch(r.Name)
	addr := normalize.ForSearch(strings.Join([]string{r.Address, r.Commune, r.PostalCode}, " "))
	blob := normalize.ForSearch(strings.Join([]string{
		r.Name, r.Commune, r.PostalCode, r.Address, r.Club,
	}, " "))

	seen := make(map[string]struct{})
	tokens := make([]string, 0, 8)
	for _, tok := range strings.Fields(blob) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}

	return SearchFields{
		Blob:        blob,
		NameBlob:    name,
		AddressBlob: addr,
		Tokens:      tokens,
	}
}

// Location is a distinct commune and postal code pair seen in a collection.
type Location struct {
	Coordinates *geo.Coordinates `json:"coordinates,omitempty"`
	Commune     string           `json:"commune"`
	PostalCode  string           `json:"postalCode"`
	Kind        Kind             `json:"kind"`
}
