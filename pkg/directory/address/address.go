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

// Package address extracts postal codes, communes and street fragments from
// the free-form address fields of the club and player datasets.
package address

import (
	"strings"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
)

// Parsed is the structured form of a free-form address.
type Parsed struct {
	// Full is the input with whitespace collapsed.
	Full       string
	PostalCode string
	// City is the best commune candidate, already formatted for display.
	City   string
	Street string
	// Standard recombines the parts as "<street>, <postal> <City>".
	Standard string
}

// Parse splits raw into postal code, city and street.
//
// The first standalone 5-digit number is taken as the postal code. The city is
// read from the text right after it, falling back to the last comma-separated
// segment before it. The street is the best scoring segment (see ScoreSegment)
// preceding the postal code.
//
//	Parse("12 rue de la Paix, 92100 Boulogne-Billancourt")
//	→ {PostalCode: "92100", City: "Boulogne-Billancourt", Street: "12 rue de la Paix", ...}
func Parse(raw string) Parsed {
	full := collapseSpaces(raw)
	result := Parsed{Full: full}
	if full == "" {
		return result
	}

	var before []string
	if loc := postalRegex.FindStringIndex(full); loc != nil {
		result.PostalCode = full[loc[0]:loc[1]]
		before = segments(full[:loc[0]])
		if after := segments(full[loc[1]:]); len(after) > 0 {
			result.City = cityCandidate(after[0])
		}
	} else {
		before = segments(full)
	}

	result.Street = bestSegment(before, DefaultSegmentWeights)

	if result.City == "" && len(before) > 0 {
		last := before[len(before)-1]
		if last != result.Street {
			result.City = cityCandidate(last)
		}
	}
	if result.City != "" && normalize.ForSearch(result.City) == normalize.ForSearch(result.Street) {
		result.Street = ""
	}

	result.Standard = standardize(result)
	return result
}

func cityCandidate(segment string) string {
	cleaned := CleanCandidate(segment)
	if cleaned == "" || LooksLikeStreet(cleaned) {
		return ""
	}
	return normalize.FormatCommuneLabel(cleaned)
}

func bestSegment(segs []string, w SegmentWeights) string {
	best := ""
	bestScore := w.Accept - 1
	for _, seg := range segs {
		seg = collapseSpaces(parenRegex.ReplaceAllString(seg, " "))
		if seg == "" {
			continue
		}
		if score := ScoreSegmentWith(seg, w); score > bestScore {
			best = seg
			bestScore = score
		}
	}
	return best
}

func standardize(p Parsed) string {
	parts := make([]string, 0, 2)
	if p.Street != "" {
		parts = append(parts, p.Street)
	}
	if locality := strings.TrimSpace(p.PostalCode + " " + p.City); locality != "" {
		parts = append(parts, locality)
	}
	return strings.Join(parts, ", ")
}

// CleanCandidate strips the noise the datasets attach to commune names:
// parenthetical notes, cedex suffixes, postal codes, trailing opening hours
// and a trailing "France". A segment dominated by a venue name ("Salle des
// fêtes", "Gymnase Coubertin") cleans to "".
func CleanCandidate(s string) string {
	s = parenRegex.ReplaceAllString(s, " ")
	s = cedexRegex.ReplaceAllString(s, " ")
	s = postalRegex.ReplaceAllString(s, " ")
	if loc := scheduleRegex.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	s = franceRegex.ReplaceAllString(collapseSpaces(s), "")
	s = trailingParticleRegex.ReplaceAllString(s, "")
	s = strings.Trim(collapseSpaces(s), edgeTrimChars)
	if s == "" {
		return ""
	}
	if venueDominated(normalize.Tokens(s)) {
		return ""
	}
	return s
}
