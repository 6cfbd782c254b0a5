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

package fixtures

// Canned remote API responses.

// AdresseMunicipalities is an api-adresse answer for q=meudon&type=municipality.
const AdresseMunicipalities = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "geometry": {"type": "Point", "coordinates": [2.2382, 48.8123]},
     "properties": {"label": "Meudon", "name": "Meudon", "postcode": "92190",
                    "city": "Meudon", "citycode": "92048", "type": "municipality"}},
    {"type": "Feature",
     "geometry": {"type": "Point", "coordinates": [2.2400, 48.7780]},
     "properties": {"label": "Meudon-la-Forêt", "name": "Meudon-la-Forêt", "postcode": "92360",
                    "city": "Meudon", "citycode": "92048", "type": "municipality"}}
  ]
}`

// Communes is a geo.api.gouv.fr answer for nom=montreuil.
const Communes = `[
  {"nom": "Montreuil", "code": "93048", "codesPostaux": ["93100"],
   "centre": {"type": "Point", "coordinates": [2.4410, 48.8638]}},
  {"nom": "Montreuil-sur-Mer", "code": "62588", "codesPostaux": ["62170"],
   "centre": {"type": "Point", "coordinates": [1.7631, 50.4641]}}
]`

// Nominatim is a jsonv2 search answer for a street address.
const Nominatim = `[
  {"place_id": 1, "lat": "48.8156", "lon": "2.3631",
   "display_name": "Place d'Italie, Paris 13e, Paris, France",
   "address": {"postcode": "75013", "city": "Paris"}}
]`
