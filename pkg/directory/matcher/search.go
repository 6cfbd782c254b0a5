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
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/records"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Hit is a matched record with its score.
type Hit struct {
	Record records.Record `json:"record"`
	Score  int            `json:"score"`
}

// Search returns the records matching q, best first. Ties are broken by the
// class of the name's first character (letter, digit, other), then by
// French collation ignoring case and accents, then by ID.
func Search(recs []records.Record, q Query, w Weights) []Hit {
	hits := make([]Hit, 0, len(recs))
	for i := range recs {
		if res := Match(recs[i].Search, q, w); res.Matched {
			hits = append(hits, Hit{Record: recs[i], Score: res.Score})
		}
	}
	SortHits(hits)
	return hits
}

// SortHits orders hits the way Search does.
func SortHits(hits []Hit) {
	// Collators keep internal buffers and are not safe for concurrent use.
	coll := NewNameCollator()
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := &hits[i], &hits[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if c := coll.Compare(a.Record.Name, b.Record.Name); c != 0 {
			return c < 0
		}
		return a.Record.ID < b.Record.ID
	})
}

// NameCollator compares display names: letters before digits before
// anything else, then French collation ignoring case and diacritics.
type NameCollator struct {
	c *collate.Collator
}

// NewNameCollator returns a collator for one goroutine.
func NewNameCollator() *NameCollator {
	return &NameCollator{
		c: collate.New(language.French, collate.IgnoreCase, collate.IgnoreDiacritics),
	}
}

// Compare returns -1, 0 or 1.
func (n *NameCollator) Compare(a, b string) int {
	ca, cb := NameClass(a), NameClass(b)
	if ca != cb {
		if ca < cb {
			return -1
		}
		return 1
	}
	return n.c.CompareString(strings.TrimSpace(a), strings.TrimSpace(b))
}

// NameClass is 0 for names starting with a letter, 1 for a digit and 2
// otherwise (including empty names).
func NameClass(name string) int {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	switch {
	case r == utf8.RuneError:
		return 2
	case unicode.IsLetter(r):
		return 0
	case unicode.IsDigit(r):
		return 1
	default:
		return 2
	}
}
