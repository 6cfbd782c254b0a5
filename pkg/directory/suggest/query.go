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

package suggest

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
)

// ordinalSuffixes follow an arrondissement number: "1er", "15e", "15eme".
var ordinalSuffixes = []string{"eme", "er", "e"}

// Query is a location query split into its postal and text parts.
type Query struct {
	Raw string
	// Postal is the first run of digits.
	Postal string
	// Text is the compacted non-digit part.
	Text string
	// Words counts the whitespace separated words of the raw query.
	Words   int
	Letters int
	Digits  int
}

// ParseQuery splits raw into its postal and text parts.
func ParseQuery(raw string) Query {
	raw = strings.TrimSpace(raw)
	q := Query{Raw: raw, Words: len(strings.Fields(raw))}

	var text strings.Builder
	inDigits, postalDone := false, false
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			q.Digits++
			if !postalDone {
				q.Postal += string(r)
				inDigits = true
			}
			continue
		}
		if inDigits {
			inDigits, postalDone = false, true
		}
		if unicode.IsLetter(r) {
			q.Letters++
		}
		text.WriteRune(r)
	}
	q.Text = normalize.Compact(text.String())
	return q
}

// Empty reports whether the query has nothing to match on.
func (q Query) Empty() bool {
	return q.Postal == "" && q.Text == ""
}

// Remote reports whether the query is specific enough to be sent to a
// remote API: at least two letters or three digits.
func (q Query) Remote() bool {
	return q.Letters >= 2 || q.Digits >= 3
}

// ExactPostal reports whether the query carries a complete postal code.
func (q Query) ExactPostal() bool {
	return len(q.Postal) == 5
}

// Paris recognises queries aimed at Paris: the word "paris" optionally
// followed by an arrondissement number ("paris 15", "Paris 15e"), or a
// numeric query starting with 75. The hinted arrondissement is 0 when the
// query does not name one.
func (q Query) Paris() (hint int, ok bool) {
	if q.Text == "" && q.Postal != "" {
		if !strings.HasPrefix(q.Postal, normalize.ParisPrefix) {
			return 0, false
		}
		if len(q.Postal) == 5 {
			return normalize.ParisArrondissement(q.Postal), true
		}
		return 0, true
	}

	text := q.Text
	for _, suffix := range ordinalSuffixes {
		if t, found := strings.CutSuffix(text, suffix); found {
			text = t
			break
		}
	}
	if text != "paris" {
		return 0, false
	}
	if q.Postal == "" {
		return 0, true
	}
	if len(q.Postal) == 5 {
		return normalize.ParisArrondissement(q.Postal), true
	}
	n, err := strconv.Atoi(q.Postal)
	if err != nil || n < 1 || n > normalize.ParisArrondissements {
		return 0, true
	}
	return n, true
}
