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
	"context"
	"fmt"
	"testing"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/gazetteer"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/geo"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/records"
	"pgregory.net/rapid"
)

// TestPropertyRankOrdering verifies on-site records come first, located
// records follow nearest first and unlocated records close the list.
func TestPropertyRankOrdering(t *testing.T) {
	t.Parallel()

	ranker := NewRanker(NewResolver(gazetteer.New(), nil))
	postals := []string{"75004", "75015", "92190", "92999", "69001", ""}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(t, "n")
		recs := make([]records.Record, n)
		for i := range recs {
			recs[i] = records.Record{
				ID:         fmt.Sprintf("r%d", i),
				Name:       rapid.SampledFrom([]string{"Alpha", "Bêta", "gamma", "42 Club", ""}).Draw(t, "name"),
				PostalCode: rapid.SampledFrom(postals).Draw(t, "postal"),
				Popularity: rapid.IntRange(0, 100).Draw(t, "pop"),
			}
			if rapid.Bool().Draw(t, "coords") {
				recs[i].Coordinates = &geo.Coordinates{
					Point: geo.Point{
						Lat: rapid.Float64Range(42, 51).Draw(t, "lat"),
						Lng: rapid.Float64Range(-4, 8).Draw(t, "lng"),
					},
					Precision: geo.PrecisionExact,
				}
			}
		}

		out := ranker.Rank(context.Background(), recs, parisCentre)
		if len(out) != len(recs) {
			t.Fatalf("got %d ranked records, want %d", len(out), len(recs))
		}
		for i := 1; i < len(out); i++ {
			a, b := &out[i-1], &out[i]
			if a.bucket() > b.bucket() {
				t.Fatalf("bucket order broken at %d: %d then %d", i, a.bucket(), b.bucket())
			}
			if a.bucket() == 1 && b.bucket() == 1 && a.DistanceKm > b.DistanceKm {
				t.Fatalf("distance order broken at %d: %f then %f", i, a.DistanceKm, b.DistanceKm)
			}
			if a.bucket() == 2 && a.Resolved() {
				t.Fatalf("resolved record %s in unresolved bucket", a.Record.ID)
			}
		}
	})
}
