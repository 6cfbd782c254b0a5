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

// Package matcher implements the typo tolerant record search: every query
// term must be found in a record, either literally or within a small edit
// distance of one of its tokens.
package matcher

import (
	"strings"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/records"
	"github.com/hbollon/go-edlib"
)

// Weights are the scoring constants of Match.
type Weights struct {
	// ContainFactor is multiplied by the term length when a term is found
	// literally in the blob; the product is capped at ContainCap.
	ContainFactor int
	ContainCap    int
	// FuzzyBase minus the edit distance is added for a fuzzy term match.
	FuzzyBase int
	// NamePrefix, NameContains and AddressContains reward the whole
	// normalised query found in the name or address blobs.
	NamePrefix      int
	NameContains    int
	AddressContains int
}

// DefaultWeights are the production weights.
var DefaultWeights = Weights{
	ContainFactor:   2,
	ContainCap:      12,
	FuzzyBase:       3,
	NamePrefix:      40,
	NameContains:    20,
	AddressContains: 5,
}

// Threshold is the largest edit distance accepted for a term of termLen
// characters: exact up to 2, one edit up to 4, two edits beyond.
func Threshold(termLen int) int {
	switch {
	case termLen <= 2:
		return 0
	case termLen <= 4:
		return 1
	default:
		return 2
	}
}

// Query is a normalised search query.
type Query struct {
	Raw        string
	Normalized string
	Terms      []string
}

// NewQuery normalises raw and splits it into terms.
func NewQuery(raw string) Query {
	normalized := normalize.ForSearch(raw)
	return Query{
		Raw:        raw,
		Normalized: normalized,
		Terms:      strings.Fields(normalized),
	}
}

// Empty reports whether the query has no terms.
func (q Query) Empty() bool {
	return len(q.Terms) == 0
}

// Result is the outcome of matching one record.
type Result struct {
	Score   int
	Matched bool
}

// Match scores a record's search fields against q. Every term must match,
// a single failing term rejects the record. An empty query matches
// everything with a zero score.
func Match(fields records.SearchFields, q Query, w Weights) Result {
	if q.Empty() {
		return Result{Matched: true}
	}

	tokens := fields.Tokens
	if tokens == nil {
		tokens = strings.Fields(fields.Blob)
	}

	score := 0
	for _, term := range q.Terms {
		if strings.Contains(fields.Blob, term) {
			score += min(len(term)*w.ContainFactor, w.ContainCap)
			continue
		}
		dist, ok := minDistance(term, tokens)
		if !ok {
			return Result{}
		}
		score += w.FuzzyBase - dist
	}

	switch {
	case strings.HasPrefix(fields.NameBlob, q.Normalized):
		score += w.NamePrefix
	case strings.Contains(fields.NameBlob, q.Normalized):
		score += w.NameContains
	}
	if strings.Contains(fields.AddressBlob, q.Normalized) {
		score += w.AddressContains
	}

	return Result{Matched: true, Score: score}
}

// minDistance returns the smallest Levenshtein distance between term and any
// token, and whether it is within the term's threshold. Tokens whose length
// differs from the term by more than the threshold cannot be within it and
// are skipped.
func minDistance(term string, tokens []string) (int, bool) {
	limit := Threshold(len(term))
	if limit == 0 {
		// Exact matches were already caught by the containment check.
		return 0, false
	}

	best := limit + 1
	for _, tok := range tokens {
		lenDiff := len(term) - len(tok)
		if lenDiff < 0 {
			lenDiff = -lenDiff
		}
		if lenDiff > limit {
			continue
		}
		if d := edlib.LevenshteinDistance(term, tok); d < best {
			best = d
			if best == 0 {
				break
			}
		}
	}
	return best, best <= limit
}
