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
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// RawRecord is a department file row after its field names have been mapped
// to canonical keys.
type RawRecord struct {
	ID         string  `mapstructure:"id"`
	Name       string  `mapstructure:"name"`
	Address    string  `mapstructure:"address"`
	PostalCode string  `mapstructure:"postal_code"`
	Commune    string  `mapstructure:"commune"`
	Phone      string  `mapstructure:"phone"`
	Email      string  `mapstructure:"email"`
	Website    string  `mapstructure:"website"`
	Club       string  `mapstructure:"club"`
	Precision  string  `mapstructure:"precision"`
	Lat        float64 `mapstructure:"lat"`
	Lng        float64 `mapstructure:"lng"`
	Licences   int     `mapstructure:"licences"`
	Elo        int     `mapstructure:"elo"`
}

// fieldAliases maps every accepted source key (lowercased) to its canonical
// key. The first alias present in a row wins.
var fieldAliases = map[string][]string{
	"id":          {"id", "ref", "reference", "code"},
	"name":        {"nom", "name", "libelle", "intitule"},
	"address":     {"adresse", "address", "lieu"},
	"postal_code": {"code_postal", "codepostal", "postalcode", "postal_code", "cp"},
	"commune":     {"commune", "ville", "city", "localite"},
	"phone":       {"telephone", "tel", "phone"},
	"email":       {"email", "mail", "courriel"},
	"website":     {"site", "site_web", "website", "url"},
	"club":        {"club", "club_nom"},
	"precision":   {"precision"},
	"lat":         {"lat", "latitude"},
	"lng":         {"lng", "lon", "long", "longitude"},
	"licences":    {"licences", "nb_licencies", "licencies", "members"},
	"elo":         {"elo", "rating", "classement"},
}

var numericKeys = map[string]struct{}{"lat": {}, "lng": {}, "licences": {}, "elo": {}}

// canonicalize rewrites source keys to canonical keys and cleans numeric
// strings ("48,85" → "48.85", "" → absent).
func canonicalize(row map[string]any) map[string]any {
	lowered := make(map[string]any, len(row))
	for k, v := range row {
		lowered[strings.ToLower(strings.TrimSpace(k))] = v
	}

	out := make(map[string]any, len(fieldAliases))
	for canonical, aliases := range fieldAliases {
		for _, alias := range aliases {
			v, ok := lowered[alias]
			if !ok || v == nil {
				continue
			}
			if _, numeric := numericKeys[canonical]; numeric {
				if s, isString := v.(string); isString {
					s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
					if s == "" {
						continue
					}
					v = s
				}
			}
			out[canonical] = v
			break
		}
	}
	return out
}

// DecodeRaw decodes one loosely typed row. Numbers and strings are accepted
// interchangeably for every field.
func DecodeRaw(row map[string]any) (RawRecord, error) {
	var raw RawRecord
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &raw,
	})
	if err != nil {
		return RawRecord{}, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(canonicalize(row)); err != nil {
		return RawRecord{}, fmt.Errorf("failed to decode record: %w", err)
	}
	return raw, nil
}
