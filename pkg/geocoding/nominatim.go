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

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/geo"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
	"github.com/annuaire-echecs/annuaire-core/pkg/shared/httpclient"
)

// NominatimProvider queries an OpenStreetMap Nominatim instance restricted
// to France. The public instance allows one request per second; the client
// must be rate limited accordingly.
type NominatimProvider struct {
	Client  *httpclient.Client
	BaseURL string
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	AddressType string `json:"addresstype"`
	Address     struct {
		Postcode     string `json:"postcode"`
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
	} `json:"address"`
}

func (r *nominatimResult) commune() string {
	for _, s := range []string{r.Address.City, r.Address.Town, r.Address.Village, r.Address.Municipality} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (*NominatimProvider) Name() string {
	return "nominatim"
}

func (p *NominatimProvider) Search(ctx context.Context, req Request) ([]Place, error) {
	if req.Query == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", req.Query)
	params.Set("format", "jsonv2")
	params.Set("countrycodes", "fr")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(req.limit()))
	if req.PostalCode != "" {
		params.Set("postalcode", req.PostalCode)
	}

	var resp []nominatimResult
	if err := p.Client.GetJSON(ctx, p.BaseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("nominatim search failed: %w", err)
	}

	places := make([]Place, 0, len(resp))
	for i := range resp {
		r := &resp[i]
		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lng, errLng := strconv.ParseFloat(r.Lon, 64)
		if errLat != nil || errLng != nil {
			continue
		}
		pt := geo.Point{Lat: lat, Lng: lng}
		if !pt.Valid() {
			continue
		}
		precision := geo.PrecisionExact
		if req.Municipality || r.AddressType == "city" || r.AddressType == "town" || r.AddressType == "village" {
			precision = geo.PrecisionCommune
		}
		places = append(places, Place{
			Commune:     r.commune(),
			PostalCode:  normalize.NormalizePostalCode(r.Address.Postcode),
			Label:       r.DisplayName,
			Provider:    p.Name(),
			Coordinates: geo.Coordinates{Point: pt, Precision: precision},
		})
	}
	return places, nil
}
