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
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/geo"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
	"github.com/gocarina/gocsv"
	"github.com/spf13/afero"
)

//go:embed bundled.csv
var bundledCSV []byte

//go:embed departments.csv
var departmentsCSV []byte

type departmentRow struct {
	Code string  `csv:"code"`
	Name string  `csv:"name"`
	Lat  float64 `csv:"lat"`
	Lng  float64 `csv:"lng"`
}

func bundledCommunes() ([]Entry, error) {
	var rows []Entry
	if err := gocsv.UnmarshalBytes(bundledCSV, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bundled communes: %w", err)
	}
	for i := range rows {
		rows[i].Precision = geo.PrecisionPostal
	}
	return rows, nil
}

func bundledDepartments() ([]Entry, error) {
	var rows []departmentRow
	if err := gocsv.Unmarshal(bytes.NewReader(departmentsCSV), &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal department centroids: %w", err)
	}
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, Entry{
			PostalCode: r.Code,
			Label:      r.Name,
			Lat:        r.Lat,
			Lng:        r.Lng,
			Precision:  geo.PrecisionDepartment,
		})
	}
	return out, nil
}

// parisArrondissements holds the approximate centroid of each arrondissement,
// indexed by number - 1.
var parisArrondissements = [normalize.ParisArrondissements]geo.Point{
	{Lat: 48.8625, Lng: 2.3364},
	{Lat: 48.8683, Lng: 2.3428},
	{Lat: 48.8630, Lng: 2.3600},
	{Lat: 48.8543, Lng: 2.3576},
	{Lat: 48.8445, Lng: 2.3507},
	{Lat: 48.8491, Lng: 2.3328},
	{Lat: 48.8562, Lng: 2.3122},
	{Lat: 48.8727, Lng: 2.3125},
	{Lat: 48.8771, Lng: 2.3375},
	{Lat: 48.8761, Lng: 2.3607},
	{Lat: 48.8591, Lng: 2.3800},
	{Lat: 48.8350, Lng: 2.4213},
	{Lat: 48.8283, Lng: 2.3623},
	{Lat: 48.8292, Lng: 2.3265},
	{Lat: 48.8401, Lng: 2.2929},
	{Lat: 48.8604, Lng: 2.2620},
	{Lat: 48.8874, Lng: 2.3067},
	{Lat: 48.8925, Lng: 2.3484},
	{Lat: 48.8871, Lng: 2.3848},
	{Lat: 48.8634, Lng: 2.4011},
}

// parisCentre answers commune lookups for plain "Paris".
var parisCentre = Entry{
	PostalCode: normalize.ParisPrefix,
	Label:      "Paris",
	Lat:        48.8566,
	Lng:        2.3522,
	Precision:  geo.PrecisionCommune,
}

// ParisEntry returns the gazetteer entry of arrondissement n (1 to 20).
func ParisEntry(n int) Entry {
	if n < 1 || n > normalize.ParisArrondissements {
		return Entry{}
	}
	p := parisArrondissements[n-1]
	return Entry{
		PostalCode: normalize.ParisPostal(n),
		Label:      normalize.ParisLabel(n),
		Lat:        p.Lat,
		Lng:        p.Lng,
		Precision:  geo.PrecisionPostal,
	}
}

// ParisEntries returns the 20 arrondissements in order.
func ParisEntries() []Entry {
	out := make([]Entry, 0, normalize.ParisArrondissements)
	for n := 1; n <= normalize.ParisArrondissements; n++ {
		out = append(out, ParisEntry(n))
	}
	return out
}

// FileLoader reads a JSON array of entries from path. It is used to extend
// the gazetteer with a full national table shipped next to the datasets.
func FileLoader(fs afero.Fs, path string) Loader {
	return func(_ context.Context) ([]Entry, error) {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read gazetteer file %s: %w", path, err)
		}
		var entries []Entry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse gazetteer file %s: %w", path, err)
		}
		return entries, nil
	}
}
