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

// Package geo holds the coordinate types shared by the gazetteer, the distance
// ranker and the remote geocoders.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// Precision tells how a coordinate was obtained. Coarser tiers are only ever
// used as distance estimates and must never be presented as exact.
type Precision int

const (
	PrecisionUnknown Precision = iota
	PrecisionApprox
	PrecisionDepartment
	PrecisionPostal
	PrecisionCommune
	PrecisionExact
)

var precisionNames = map[Precision]string{
	PrecisionUnknown:    "unknown",
	PrecisionApprox:     "approx",
	PrecisionDepartment: "department",
	PrecisionPostal:     "postal",
	PrecisionCommune:    "commune",
	PrecisionExact:      "exact",
}

func (p Precision) String() string {
	if name, ok := precisionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("precision(%d)", int(p))
}

// ParsePrecision maps a dataset precision tag onto a Precision. Unknown or
// empty tags fall back to def.
func ParsePrecision(s string, def Precision) Precision {
	for p, name := range precisionNames {
		if name == s && p != PrecisionUnknown {
			return p
		}
	}
	return def
}

// MarshalText implements encoding.TextMarshaler.
func (p Precision) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Precision) UnmarshalText(text []byte) error {
	*p = ParsePrecision(string(text), PrecisionUnknown)
	return nil
}

// Coarse reports whether the tier is too coarse to be shown as a real
// location.
func (p Precision) Coarse() bool {
	return p == PrecisionDepartment || p == PrecisionApprox
}

// Point is a bare latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point is inside the WGS84 range and not the
// (0, 0) placeholder some exports use for "unknown".
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	if p.Lat == 0 && p.Lng == 0 {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Coordinates is a point tagged with the precision tier it was resolved at.
type Coordinates struct {
	Point
	Precision Precision `json:"precision"`
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
