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

package distance

import (
	"fmt"
	"math"
	"strings"
)

// OnsiteLabel is shown instead of a distance for records on site.
const OnsiteLabel = "sur place"

// FormatDistance renders the distance label of a ranked record: "sur
// place", metres under a kilometre, one decimal under ten kilometres and
// whole kilometres beyond. Estimates from coarse coordinates are prefixed
// with "≈". Unlocated records get an empty label.
func FormatDistance(r *Ranked) string {
	if r.Onsite {
		return OnsiteLabel
	}
	if !r.Resolved() {
		return ""
	}

	var label string
	switch d := r.DistanceKm; {
	case d < 1:
		m := int(math.Round(d*100) * 10)
		label = fmt.Sprintf("%d m", m)
	case d < 10:
		label = strings.Replace(fmt.Sprintf("%.1f km", d), ".", ",", 1)
	default:
		label = fmt.Sprintf("%d km", int(math.Round(d)))
	}

	if r.Coordinates != nil && r.Coordinates.Precision.Coarse() {
		return "≈ " + label
	}
	return label
}
