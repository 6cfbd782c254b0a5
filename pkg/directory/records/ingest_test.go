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
	"testing"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/gazetteer"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_EndToEnd(t *testing.T) {
	t.Parallel()

	raw, err := DecodeRaw(map[string]any{
		"nom":     "Echiquier Club",
		"adresse": "12 rue de la Paix, 92100 Boulogne-Billancourt",
	})
	require.NoError(t, err)

	rec := Build(raw, BuildOptions{Kind: KindClub, Labels: gazetteer.New()})

	assert.Equal(t, "92100", rec.PostalCode)
	assert.Equal(t, "Boulogne-Billancourt", rec.Commune)
	assert.Equal(t, "92", rec.Department)
	assert.Contains(t, rec.AddressStandard, "12 rue de la Paix")
	assert.Equal(t, "12 rue de la Paix, 92100 Boulogne-Billancourt", rec.AddressStandard)
	assert.Equal(t, "club-echiquier-club-92100-boulogne-billancourt", rec.ID)
	assert.NotEmpty(t, rec.Slug)
	assert.LessOrEqual(t, len(rec.Slug), SlugLength)
	assert.Nil(t, rec.Coordinates)

	assert.Equal(t, "echiquier club", rec.Search.NameBlob)
	assert.Contains(t, rec.Search.Blob, "boulogne billancourt")
	assert.Contains(t, rec.Search.AddressBlob, "12 rue de la paix")
	assert.Contains(t, rec.Search.Tokens, "92100")
}

func TestBuild_ExplicitFieldsWin(t *testing.T) {
	t.Parallel()

	raw, err := DecodeRaw(map[string]any{
		"name":        "Cercle d'Échecs de Paris 16",
		"address":     "Mairie annexe, 71 avenue Henri Martin",
		"code_postal": 75116,
		"ville":       "PARIS",
		"lat":         "48,8635",
		"lng":         2.2764,
		"licences":    "87",
		"ref":         "C-75016-01",
	})
	require.NoError(t, err)

	rec := Build(raw, BuildOptions{Kind: KindClub, Department: "75"})

	assert.Equal(t, "C-75016-01", rec.ID)
	assert.Equal(t, "75016", rec.PostalCode, "Paris alias canonicalised")
	assert.Equal(t, "Paris", rec.Commune)
	assert.Equal(t, "75", rec.Department)
	assert.Equal(t, "71 avenue Henri Martin", rec.Street)
	assert.Equal(t, 87, rec.Popularity)
	require.NotNil(t, rec.Coordinates)
	assert.InDelta(t, 48.8635, rec.Coordinates.Lat, 1e-9)
	assert.Equal(t, geo.PrecisionExact, rec.Coordinates.Precision)
}

func TestBuild_Player(t *testing.T) {
	t.Parallel()

	raw, err := DecodeRaw(map[string]any{
		"nom":     "Dupont Marie",
		"club":    "Echiquier de Sèvres",
		"elo":     1875,
		"commune": "sevres",
		"cp":      "92310",
	})
	require.NoError(t, err)

	rec := Build(raw, BuildOptions{Kind: KindPlayer, Labels: gazetteer.New()})
	assert.Equal(t, KindPlayer, rec.Kind)
	assert.Equal(t, 1875, rec.Popularity)
	assert.Equal(t, "Sèvres", rec.Commune, "gazetteer spelling")
	assert.Equal(t, "Echiquier de Sèvres", rec.Club)
	assert.Contains(t, rec.Search.Blob, "echiquier de sevres")
}

func TestBuild_FourDigitPostalCode(t *testing.T) {
	t.Parallel()

	raw, err := DecodeRaw(map[string]any{"nom": "Club de l'Ain", "code_postal": 1000, "commune": "BOURG EN BRESSE"})
	require.NoError(t, err)

	rec := Build(raw, BuildOptions{Kind: KindClub})
	assert.Equal(t, "01000", rec.PostalCode)
	assert.Equal(t, "01", rec.Department)
	assert.Equal(t, "Bourg en Bresse", rec.Commune)
}

func TestRecordID_Fallbacks(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "src-1", recordID(" src-1 ", Record{}, 0))
	assert.Equal(t, "player-marie-meudon", recordID("", Record{Kind: KindPlayer, Name: "Marie", Commune: "Meudon"}, 0))
	assert.Equal(t, "club-echiquier-75018-paris-18e",
		recordID("", Record{Name: "Echiquier", PostalCode: "75018", Commune: "Paris 18e"}, 0))
	assert.Equal(t, "club-92-7", recordID("", Record{Department: "92", Name: "***"}, 7))
}

func TestBaseSlug_Deterministic(t *testing.T) {
	t.Parallel()

	a := Record{Kind: KindClub, Name: "Tour Prends Garde", Commune: "Antony", PostalCode: "92160"}
	b := Record{Kind: KindClub, Name: "TOUR PRENDS GARDE", Commune: "antony", PostalCode: "92160"}
	c := Record{Kind: KindClub, Name: "Tour Prends Garde", Commune: "Antony", PostalCode: "92161"}

	assert.Equal(t, BaseSlug(a), BaseSlug(a))
	assert.Equal(t, BaseSlug(a), BaseSlug(b), "case and accents do not change identity")
	assert.NotEqual(t, BaseSlug(a), BaseSlug(c))
}
