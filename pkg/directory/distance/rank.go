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
	"encoding/json"
	"math"
	"sort"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/geo"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/matcher"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/records"
)

// CoarseRejectKm is the distance under which a department centroid is
// considered meaningless.
const CoarseRejectKm = 1.0

// Reference is the point records are ranked against.
type Reference struct {
	Label       string          `json:"label"`
	PostalCode  string          `json:"postalCode,omitempty"`
	Commune     string          `json:"commune,omitempty"`
	Coordinates geo.Coordinates `json:"coordinates"`
}

// Ranked is a record with its distance to the reference. DistanceKm is
// +Inf when the record could not be located.
type Ranked struct {
	Record      records.Record   `json:"record"`
	Coordinates *geo.Coordinates `json:"coordinates,omitempty"`
	Method      Method           `json:"method,omitempty"`
	DistanceKm  float64          `json:"distanceKm"`
	Onsite      bool             `json:"onsite"`
}

// Resolved reports whether the record has a usable distance.
func (r *Ranked) Resolved() bool {
	return !math.IsInf(r.DistanceKm, 1)
}

// MarshalJSON writes the distance of an unresolved record as null.
func (r Ranked) MarshalJSON() ([]byte, error) {
	type plain Ranked
	var km *float64
	if r.Resolved() {
		km = &r.DistanceKm
	}
	//nolint:wrapcheck // plain struct encoding
	return json.Marshal(struct {
		DistanceKm *float64 `json:"distanceKm"`
		plain
	}{DistanceKm: km, plain: plain(r)})
}

func (r *Ranked) bucket() int {
	switch {
	case r.Onsite:
		return 0
	case r.Resolved():
		return 1
	default:
		return 2
	}
}

// Ranker orders records by distance.
type Ranker struct {
	Resolver *Resolver
}

// NewRanker returns a ranker using r to locate records.
func NewRanker(r *Resolver) *Ranker {
	return &Ranker{Resolver: r}
}

// Rank orders recs: records on site first (most popular first, then by
// name), then records with a known distance nearest first (ties broken the
// same way), then records that could not be located, by name.
func (rk *Ranker) Rank(ctx context.Context, recs []records.Record, ref Reference) []Ranked {
	out := make([]Ranked, len(recs))
	for i := range recs {
		rec := &recs[i]
		res := rk.Resolver.Resolve(ctx, rec)
		out[i] = Ranked{
			Record:      *rec,
			Coordinates: res.Coordinates,
			Method:      res.Method,
			DistanceKm:  Distance(ref, res.Coordinates),
			Onsite:      IsOnsite(rec, ref),
		}
	}
	SortRanked(out)
	return out
}

// Distance returns the great-circle distance from ref to c, or +Inf when c
// is missing or is a department centroid closer than CoarseRejectKm.
func Distance(ref Reference, c *geo.Coordinates) float64 {
	if c == nil || !c.Valid() || !ref.Coordinates.Valid() {
		return math.Inf(1)
	}
	d := geo.Haversine(ref.Coordinates.Point, c.Point)
	if c.Precision == geo.PrecisionDepartment && d < CoarseRejectKm {
		return math.Inf(1)
	}
	return d
}

// IsOnsite reports whether rec is in the reference locality: same canonical
// postal code, or same commune name within the same department (communes
// may span several postal codes). A reference to Paris as a whole holds every
// arrondissement.
func IsOnsite(rec *records.Record, ref Reference) bool {
	if ref.PostalCode == normalize.ParisPrefix && normalize.IsParisPostal(rec.PostalCode) {
		return true
	}

	recPostal := normalize.CanonicalParisPostal(rec.PostalCode)
	refPostal := normalize.CanonicalParisPostal(ref.PostalCode)
	if recPostal != "" && recPostal == refPostal {
		return true
	}

	commune := normalize.ForSearch(rec.Commune)
	if commune == "" || commune != normalize.ForSearch(ref.Commune) {
		return false
	}
	recDept := normalize.Department(rec.PostalCode)
	return recDept != "" && recDept == normalize.Department(ref.PostalCode)
}

// SortRanked applies the Rank ordering in place.
func SortRanked(out []Ranked) {
	coll := matcher.NewNameCollator()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if ba, bb := a.bucket(), b.bucket(); ba != bb {
			return ba < bb
		}
		switch a.bucket() {
		case 1:
			if a.DistanceKm != b.DistanceKm {
				return a.DistanceKm < b.DistanceKm
			}
			fallthrough
		case 0:
			if a.Record.Popularity != b.Record.Popularity {
				return a.Record.Popularity > b.Record.Popularity
			}
		}
		if c := coll.Compare(a.Record.Name, b.Record.Name); c != 0 {
			return c < 0
		}
		return a.Record.ID < b.Record.ID
	})
}
