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

// CommunesProvider queries geo.api.gouv.fr, which answers with a list of
// communes. A commune with several postal codes yields one place per code.
type CommunesProvider struct {
	Client  *httpclient.Client
	BaseURL string
}

type commune struct {
	Nom          string   `json:"nom"`
	CodesPostaux []string `json:"codesPostaux"`
	Centre       struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"centre"`
}

func (*CommunesProvider) Name() string {
	return "communes"
}

func (p *CommunesProvider) Search(ctx context.Context, req Request) ([]Place, error) {
	params := url.Values{}
	params.Set("fields", "nom,codesPostaux,centre")
	params.Set("limit", strconv.Itoa(req.limit()))

	postal := req.PostalCode
	if postal == "" && len(req.Query) == 5 && IsDigits(req.Query) {
		postal = req.Query
	}
	switch {
	case postal != "":
		params.Set("codePostal", postal)
	case req.Query != "":
		params.Set("nom", req.Query)
		params.Set("boost", "population")
	default:
		return nil, nil
	}

	var resp []commune
	if err := p.Client.GetJSON(ctx, p.BaseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("communes search failed: %w", err)
	}

	var places []Place
	for _, c := range resp {
		if len(c.Centre.Coordinates) < 2 {
			continue
		}
		pt := geo.Point{Lat: c.Centre.Coordinates[1], Lng: c.Centre.Coordinates[0]}
		if !pt.Valid() {
			continue
		}
		for _, code := range c.CodesPostaux {
			code = normalize.NormalizePostalCode(code)
			if postal != "" && code != normalize.NormalizePostalCode(postal) {
				continue
			}
			places = append(places, Place{
				Commune:     c.Nom,
				PostalCode:  code,
				Label:       c.Nom,
				Provider:    p.Name(),
				Coordinates: geo.Coordinates{Point: pt, Precision: geo.PrecisionCommune},
			})
		}
	}
	if limit := req.limit(); len(places) > limit {
		places = places[:limit]
	}
	return places, nil
}
