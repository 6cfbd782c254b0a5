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
	"fmt"
	"strconv"
	"strings"
)

const (
	// ParisPrefix is the department prefix shared by every Paris postal code.
	ParisPrefix = "75"
	// ParisAlias16 is the second postal code of the 16th arrondissement.
	ParisAlias16 = "75116"

	ParisArrondissements = 20
)

// CanonicalParisPostal folds Paris postal codes onto their 750NN form.
//
//	"75116" → "75016"
//	"75015" → "75015"
//	"75000" → ""      (no arrondissement 0)
//	"75120" → ""      (no arrondissement 120)
//	"92100" → "92100" (not Parisian, unchanged)
func CanonicalParisPostal(code string) string {
	code = strings.TrimSpace(code)
	if code == ParisAlias16 {
		return "75016"
	}
	if !isParisShape(code) {
		return code
	}
	n, err := strconv.Atoi(code[2:])
	if err != nil || n < 1 || n > ParisArrondissements {
		return ""
	}
	return ParisPostal(n)
}

// ParisArrondissement returns the arrondissement number for a Paris postal
// code, or 0 if the code is not a valid Paris code.
func ParisArrondissement(code string) int {
	code = strings.TrimSpace(code)
	if !isParisShape(code) {
		return 0
	}
	canonical := CanonicalParisPostal(code)
	if canonical == "" {
		return 0
	}
	n, err := strconv.Atoi(canonical[2:])
	if err != nil {
		return 0
	}
	return n
}

// ParisPostal formats the canonical postal code of arrondissement n.
func ParisPostal(n int) string {
	return fmt.Sprintf("750%02d", n)
}

// ParisLabel is the display label of arrondissement n: "Paris 1er", "Paris 15e".
func ParisLabel(n int) string {
	if n == 1 {
		return "Paris 1er"
	}
	return fmt.Sprintf("Paris %de", n)
}

// IsParisPostal reports whether code canonicalises to one of the 20
// arrondissements.
func IsParisPostal(code string) bool {
	return ParisArrondissement(code) > 0
}

func isParisShape(code string) bool {
	if len(code) != 5 || !strings.HasPrefix(code, ParisPrefix) {
		return false
	}
	for i := range len(code) {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// NormalizePostalCode cleans a raw postal code field. Non-digits are dropped, a
// leading zero lost by spreadsheet exports is restored on 4-digit codes, and
// anything outside 2–5 digits is rejected. Paris codes are canonicalised; a
// Parisian-looking code without a valid arrondissement keeps its digits.
func NormalizePostalCode(raw string) string {
	digits := DigitsOnly(raw)
	if len(digits) == 4 {
		digits = "0" + digits
	}
	if len(digits) < 2 || len(digits) > 5 {
		return ""
	}
	if canonical := CanonicalParisPostal(digits); canonical != "" {
		return canonical
	}
	return digits
}

// Department returns the department code of a postal code: the first two
// digits, or three for overseas departments (971–976). Corsican codes (20xxx)
// are reported as "20" since the postal code alone cannot tell 2A from 2B.
func Department(postal string) string {
	postal = DigitsOnly(postal)
	if len(postal) < 2 {
		return ""
	}
	if strings.HasPrefix(postal, "97") && len(postal) >= 3 {
		return postal[:3]
	}
	return postal[:2]
}
