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

package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// communeParticles stay lowercase inside a commune label.
var communeParticles = map[string]struct{}{
	"de":   {},
	"du":   {},
	"des":  {},
	"la":   {},
	"le":   {},
	"les":  {},
	"sur":  {},
	"sous": {},
	"et":   {},
	"aux":  {},
	"au":   {},
	"en":   {},
}

var elisionPrefixes = []string{"d'", "l'", "d’", "l’"}

// FormatCommuneLabel gives a commune name its conventional French casing.
//
//	"BOULOGNE-BILLANCOURT"  → "Boulogne-Billancourt"
//	"saint ouen sur seine"  → "Saint Ouen sur Seine"
//	"VILLE-D'AVRAY"         → "Ville-d'Avray"
//	"l'hay-les-roses"       → "L'Hay-les-Roses"
//
// The output depends only on the lowercased input, so the function is stable
// under re-application.
func FormatCommuneLabel(raw string) string {
	words := strings.Fields(strings.ToLower(raw))
	if len(words) == 0 {
		return ""
	}

	position := 0
	for i, word := range words {
		parts := strings.Split(word, "-")
		for j, part := range parts {
			parts[j] = formatLabelPart(part, position == 0)
			if part != "" {
				position++
			}
		}
		words[i] = strings.Join(parts, "-")
	}
	return strings.Join(words, " ")
}

func formatLabelPart(part string, first bool) string {
	if part == "" {
		return part
	}
	for _, prefix := range elisionPrefixes {
		if rest, ok := strings.CutPrefix(part, prefix); ok {
			head := prefix
			if first {
				head = titleWord(prefix)
			}
			return head + titleWord(rest)
		}
	}
	if _, ok := communeParticles[part]; ok && !first {
		return part
	}
	return titleWord(part)
}

func titleWord(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
