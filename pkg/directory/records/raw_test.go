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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRaw_Aliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		row  map[string]any
		want RawRecord
		name string
	}{
		{
			name: "french keys",
			row: map[string]any{
				"Nom": "Cavalier", "Adresse": "1 rue A", "Code_Postal": "92130",
				"Ville": "Issy", "Telephone": "01 02", "Courriel": "a@b.fr",
			},
			want: RawRecord{
				Name: "Cavalier", Address: "1 rue A", PostalCode: "92130",
				Commune: "Issy", Phone: "01 02", Email: "a@b.fr",
			},
		},
		{
			name: "english keys",
			row:  map[string]any{"name": "Knights", "address": "2 road", "city": "Nanterre", "website": "x.fr"},
			want: RawRecord{Name: "Knights", Address: "2 road", Commune: "Nanterre", Website: "x.fr"},
		},
		{
			name: "numbers as strings with decimal commas",
			row:  map[string]any{"nom": "A", "latitude": "48,85", "lon": " 2,35 ", "nb_licencies": "12"},
			want: RawRecord{Name: "A", Lat: 48.85, Lng: 2.35, Licences: 12},
		},
		{
			name: "empty numeric strings are ignored",
			row:  map[string]any{"nom": "A", "lat": "", "elo": " "},
			want: RawRecord{Name: "A"},
		},
		{
			name: "numeric postal code",
			row:  map[string]any{"nom": "A", "cp": 92160, "ref": 17},
			want: RawRecord{Name: "A", PostalCode: "92160", ID: "17"},
		},
		{
			name: "first alias wins",
			row:  map[string]any{"nom": "Nom", "name": "Name"},
			want: RawRecord{Name: "Nom"},
		},
		{
			name: "nil values skipped",
			row:  map[string]any{"nom": nil, "name": "Name"},
			want: RawRecord{Name: "Name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := DecodeRaw(tt.row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeRaw_BadNumber(t *testing.T) {
	t.Parallel()

	_, err := DecodeRaw(map[string]any{"nom": "A", "lat": "north"})
	require.Error(t, err)
}
