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

package geocoding

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"unicode/utf8"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/geo"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
	"github.com/annuaire-echecs/annuaire-core/pkg/shared/httpclient"
)

// adresseMinQuery is the shortest q the API accepts.
const adresseMinQuery = 3

// AdresseProvider queries the national address API (api-adresse), which
// answers with a GeoJSON FeatureCollection.
type AdresseProvider struct {
	Client  *httpclient.Client
	BaseURL string
}

type adresseResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label    string `json:"label"`
			Name     string `json:"name"`
			Postcode string `json:"postcode"`
			City     string `json:"city"`
			Type     string `json:"type"`
		} `json:"properties"`
	} `json:"features"`
}

func (*AdresseProvider) Name() string {
	return "adresse"
}

func (p *AdresseProvider) Search(ctx context.Context, req Request) ([]Place, error) {
	if utf8.RuneCountInString(req.Query) < adresseMinQuery {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", req.Query)
	params.Set("limit", strconv.Itoa(req.limit()))
	if req.Municipality {
		params.Set("type", "municipality")
	}
	if req.PostalCode != "" {
		params.Set("postcode", req.PostalCode)
	}

	var resp adresseResponse
	if err := p.Client.GetJSON(ctx, p.BaseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("adresse search failed: %w", err)
	}

	places := make([]Place, 0, len(resp.Features))
	for _, f := range resp.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		pt := geo.Point{Lat: f.Geometry.Coordinates[1], Lng: f.Geometry.Coordinates[0]}
		if !pt.Valid() {
			continue
		}
		commune := f.Properties.City
		if commune == "" {
			commune = f.Properties.Name
		}
		places = append(places, Place{
			Commune:     commune,
			PostalCode:  normalize.NormalizePostalCode(f.Properties.Postcode),
			Label:       f.Properties.Label,
			Provider:    p.Name(),
			Coordinates: geo.Coordinates{Point: pt, Precision: adressePrecision(f.Properties.Type)},
		})
	}
	return places, nil
}

func adressePrecision(kind string) geo.Precision {
	switch kind {
	case "housenumber", "street":
		return geo.PrecisionExact
	case "municipality", "locality":
		return geo.PrecisionCommune
	default:
		return geo.PrecisionPostal
	}
}
