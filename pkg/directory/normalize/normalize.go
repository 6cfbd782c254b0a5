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

// Package normalize holds the pure string functions every search, slug and
// gazetteer key in the directory is built from.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumRegex = regexp.MustCompile(`[^a-z0-9]+`)
	nonDigitRegex    = regexp.MustCompile(`[^0-9]+`)
)

// removeDiacritics strips combining marks after canonical decomposition.
func removeDiacritics(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	if normalized, _, err := transform.String(t, s); err == nil {
		return normalized
	}
	return s
}

func isASCII(s string) bool {
	for i := range s {
		if s[i] >= 128 {
			return false
		}
	}
	return true
}

// Normalize lowercases s and removes diacritics.
//
// Lowercasing happens before decomposition so that characters whose lowercase
// form carries a combining mark (İ → i̇) are still stripped, which keeps the
// function idempotent:
//
//	Normalize(Normalize(s)) == Normalize(s)
func Normalize(s string) string {
	s = strings.ToLower(s)
	if isASCII(s) {
		return s
	}
	return removeDiacritics(s)
}

// ForSearch is the basis of every search blob: Normalize, then collapse any run
// of characters outside [a-z0-9] to a single space.
//
//	ForSearch("Échiquier Club de Boulogne-Billancourt") → "echiquier club de boulogne billancourt"
func ForSearch(s string) string {
	s = nonAlphanumRegex.ReplaceAllString(Normalize(s), " ")
	return strings.TrimSpace(s)
}

// Compact is ForSearch without any separators at all. Suggestion matching uses
// it so "saint cloud", "saint-cloud" and "saintcloud" compare equal.
func Compact(s string) string {
	return nonAlphanumRegex.ReplaceAllString(Normalize(s), "")
}

// Slugify returns a URL-safe, hyphen separated form of s. An empty or
// punctuation-only input yields an empty slug and the caller must supply its
// own fallback seed.
func Slugify(s string) string {
	s = nonAlphanumRegex.ReplaceAllString(Normalize(s), "-")
	return strings.Trim(s, "-")
}

// Tokens splits ForSearch(s) into words.
func Tokens(s string) []string {
	return strings.Fields(ForSearch(s))
}

// DigitsOnly drops every non-digit character.
func DigitsOnly(s string) string {
	return nonDigitRegex.ReplaceAllString(s, "")
}
