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

// Sample datasets laid out the way the site publishes them: one manifest per
// kind, one JSON array per department and a geo hints overlay. Department 93
// is listed in the clubs manifest but has no file.

const ClubsManifest = `{
  "basePath": "/clubs",
  "departments": [
    {"code": "92", "name": "Hauts-de-Seine", "slug": "hauts-de-seine", "file": "92.json"},
    {"code": "75", "name": "Paris", "slug": "paris", "file": "75.json"},
    {"code": "93", "name": "Seine-Saint-Denis", "slug": "seine-saint-denis", "file": "93.json"}
  ]
}`

const Clubs92 = `[
  {"nom": "Echiquier Club", "adresse": "12 rue de la Paix, 92100 Boulogne-Billancourt",
   "licences": 45, "ref": "C92-001"},
  {"nom": "Boulogne-Billancourt Échecs",
   "adresse": "Salle des fêtes, 3 place de la Mairie, 92100 Boulogne-Billancourt",
   "licences": 120, "ref": "C92-002", "lat": 48.8353, "lng": 2.2410},
  {"nom": "Cavalier d'Issy", "code_postal": "92130", "ville": "ISSY LES MOULINEAUX",
   "licences": "60", "ref": "C92-003"},
  {"nom": "Tour Prends Garde", "adresse": "8 avenue Aristide Briand, 92160 Antony",
   "licences": 30, "ref": "C92-004"},
  {"name": "Legendary Knights", "address": "5 rue Gambetta 92000 Nanterre",
   "licences": 15, "ref": "C92-005"},
  {"nom": "", "adresse": "row without a name is dropped"}
]`

const Clubs75 = `[
  {"nom": "Paris Rive Gauche", "adresse": "40 rue de Vaugirard, 75006 Paris",
   "licences": 200, "ref": "C75-001", "lat": 48.8490, "lng": 2.3340},
  {"nom": "Cercle de Passy", "adresse": "71 avenue Henri Martin, 75116 Paris",
   "licences": 150, "ref": "C75-002"}
]`

const PlayersManifest = `{
  "departments": [
    {"code": "92", "name": "Hauts-de-Seine", "slug": "hauts-de-seine", "file": "92.json"}
  ]
}`

const Players92 = `[
  {"nom": "Dupont Marie", "club": "Echiquier Club", "elo": 1875,
   "commune": "Boulogne-Billancourt", "cp": "92100", "ref": "P-1"},
  {"nom": "Martin Paul", "club": "Tour Prends Garde", "elo": "1620",
   "commune": "antony", "cp": 92160, "ref": "P-2"}
]`

const GeoHints = `{
  "hints": {
    "C92-004": {"lat": 48.7540, "lng": 2.2990, "precision": "exact"}
  }
}`

// Files maps dataset paths, relative to the datasets root, to their content.
var Files = map[string]string{
	"clubs/manifest.json":   ClubsManifest,
	"clubs/92.json":         Clubs92,
	"clubs/75.json":         Clubs75,
	"players/manifest.json": PlayersManifest,
	"players/92.json":       Players92,
	"geo-hints.json":        GeoHints,
}
