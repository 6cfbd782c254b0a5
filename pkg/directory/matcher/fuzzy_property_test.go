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

package matcher

import (
	"strings"
	"testing"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/records"
	"pgregory.net/rapid"
)

func nameGen() *rapid.Generator[string] {
	words := []string{
		"Echiquier", "Club", "Cavalier", "Tour", "Roi", "Dame", "Fou",
		"Boulogne", "Antony", "Meudon", "Legendary", "Knights", "Échecs",
	}
	return rapid.Custom(func(t *rapid.T) string {
		count := rapid.IntRange(1, 4).Draw(t, "wordCount")
		parts := make([]string, count)
		for i := range count {
			parts[i] = rapid.SampledFrom(words).Draw(t, "word")
		}
		return strings.Join(parts, " ")
	})
}

func queryGen() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-z]{1,8}( [a-z]{1,8}){0,2}`)
}

// TestPropertyMatchIsConjunction verifies a multi-term query matches only
// when every one of its terms matches on its own.
func TestPropertyMatchIsConjunction(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		rec := records.Record{ID: "x", Name: nameGen().Draw(t, "name")}
		rec.Search = records.BuildSearchFields(&rec)
		q := NewQuery(queryGen().Draw(t, "query"))

		all := true
		for _, term := range q.Terms {
			if !Match(rec.Search, NewQuery(term), DefaultWeights).Matched {
				all = false
				break
			}
		}
		if got := Match(rec.Search, q, DefaultWeights).Matched; got != all {
			t.Fatalf("query %q on %q: matched=%v, per-term=%v", q.Raw, rec.Name, got, all)
		}
	})
}

// TestPropertySearchSorted verifies Search output is ordered by score and
// only contains matching records.
func TestPropertySearchSorted(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 15).Draw(t, "n")
		recs := make([]records.Record, n)
		for i := range recs {
			recs[i] = records.Record{ID: rapid.StringMatching(`[a-z]{3}`).Draw(t, "id"), Name: nameGen().Draw(t, "name")}
			recs[i].Search = records.BuildSearchFields(&recs[i])
		}
		q := NewQuery(queryGen().Draw(t, "query"))

		hits := Search(recs, q, DefaultWeights)
		for i := range hits {
			if !Match(hits[i].Record.Search, q, DefaultWeights).Matched {
				t.Fatalf("non-matching record %q in results", hits[i].Record.Name)
			}
			if i > 0 && hits[i-1].Score < hits[i].Score {
				t.Fatalf("hits out of order at %d: %d < %d", i, hits[i-1].Score, hits[i].Score)
			}
		}
	})
}

// TestPropertyCaseAndAccentInsensitive verifies a query scores the same
// regardless of case and accents.
func TestPropertyCaseAndAccentInsensitive(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		rec := records.Record{ID: "x", Name: nameGen().Draw(t, "name")}
		rec.Search = records.BuildSearchFields(&rec)
		raw := queryGen().Draw(t, "query")
		accented := strings.ToUpper(strings.NewReplacer("e", "é", "a", "à", "c", "ç").Replace(raw))

		a := Match(rec.Search, NewQuery(raw), DefaultWeights)
		b := Match(rec.Search, NewQuery(accented), DefaultWeights)
		if a != b {
			t.Fatalf("%q and %q differ: %+v vs %+v", raw, accented, a, b)
		}
	})
}
