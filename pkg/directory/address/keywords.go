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

package address

import (
	"regexp"
	"strings"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
)

// streetKeywords are street-type words, compared against normalised tokens.
var streetKeywords = newSet(
	"rue", "avenue", "av", "ave", "bd", "bld", "boulevard", "place", "pl",
	"chemin", "allee", "allees", "impasse", "route", "rte", "quai", "cours",
	"square", "passage", "voie", "sentier", "chaussee", "esplanade",
	"promenade", "faubourg", "fg", "parvis", "residence", "lieu", "rond",
	"mail", "hameau", "lotissement",
)

// venueKeywords open segments that name a building rather than a place.
var venueKeywords = newSet(
	"salle", "gymnase", "mairie", "maison", "centre", "complexe", "espace",
	"foyer", "ecole", "college", "lycee", "mediatheque", "bibliotheque",
	"stade", "local", "cafe", "restaurant", "hotel",
)

// scheduleKeywords mark opening-hours fragments.
var scheduleKeywords = newSet(
	"lundi", "lundis", "mardi", "mardis", "mercredi", "mercredis", "jeudi",
	"jeudis", "vendredi", "vendredis", "samedi", "samedis", "dimanche",
	"dimanches", "weekend", "week", "semaine", "horaires", "soir", "soirs",
)

var (
	postalRegex = regexp.MustCompile(`\b\d{5}\b`)
	parenRegex  = regexp.MustCompile(`\([^)]*\)?`)
	cedexRegex  = regexp.MustCompile(`(?i)\bcedex\b(?:\s*\d{1,3}\b)?`)
	franceRegex = regexp.MustCompile(`(?i)\bfrance\s*$`)
	hourRegex   = regexp.MustCompile(`(?i)\b\d{1,2}\s*h\s*\d{0,2}\b`)
	// scheduleRegex finds where an opening-hours tail starts; everything from
	// the match on is dropped from a commune candidate.
	scheduleRegex = regexp.MustCompile(
		`(?i)\b(lundis?|mardis?|mercredis?|jeudis?|vendredis?|samedis?|dimanches?|` +
			`week-?ends?|semaine|horaires|tous les|le soir)\b|\b\d{1,2}\s*h\s*\d{0,2}\b`,
	)
	trailingParticleRegex = regexp.MustCompile(
		`(?i)(\s+(le|la|les|de|du|des|et|a|à|au|aux|tous|chaque))+\s*$`,
	)
	segmentSplitRegex = regexp.MustCompile(`\s*(?:[,;|\n]|\s-\s|\s–\s)\s*`)
	spaceRegex        = regexp.MustCompile(`\s+`)
	edgeTrimChars     = " \t,;:.-–/"
)

func newSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func hasKeyword(tokens []string, set map[string]struct{}) bool {
	for _, t := range tokens {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

// hasSchedule reports whether s reads like opening hours.
func hasSchedule(s string) bool {
	if hourRegex.MatchString(s) {
		return true
	}
	return hasKeyword(normalize.Tokens(s), scheduleKeywords)
}

// venueDominated reports whether the segment names a venue ("Salle des
// fêtes", "Gymnase Jean Moulin") rather than a locality.
func venueDominated(tokens []string) bool {
	if len(tokens) < 2 {
		return false
	}
	_, ok := venueKeywords[tokens[0]]
	return ok
}

// LooksLikeStreet reports whether s has digits, a street keyword and at least
// three words. Such a string is never accepted as a commune name.
func LooksLikeStreet(s string) bool {
	tokens := normalize.Tokens(s)
	return len(tokens) >= 3 && hasDigit(s) && hasKeyword(tokens, streetKeywords)
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRegex.ReplaceAllString(s, " "))
}

func segments(s string) []string {
	parts := segmentSplitRegex.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, edgeTrimChars)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
