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
	"strings"
	"unicode/utf8"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
)

// SegmentWeights scores address segments when picking the street part of an
// address that mixes venue, street, hours and city.
type SegmentWeights struct {
	// StreetKeyword is added when the segment has a street-type word.
	StreetKeyword int
	// Digits is added when the segment contains a digit.
	Digits int
	// Length is added when the segment is at least MinLength runes long.
	Length    int
	MinLength int
	// Schedule is subtracted when the segment reads like opening hours.
	Schedule int
	// Accept is the minimum score for a segment to be used as a street.
	Accept int
}

// DefaultSegmentWeights are the weights used by Parse.
var DefaultSegmentWeights = SegmentWeights{
	StreetKeyword: 3,
	Digits:        2,
	Length:        1,
	MinLength:     10,
	Schedule:      4,
	Accept:        2,
}

// ScoreSegment scores segment with DefaultSegmentWeights.
func ScoreSegment(segment string) int {
	return ScoreSegmentWith(segment, DefaultSegmentWeights)
}

// ScoreSegmentWith rewards street keywords, digits and length, and penalises
// schedule text.
func ScoreSegmentWith(segment string, w SegmentWeights) int {
	segment = strings.TrimSpace(segment)
	tokens := normalize.Tokens(segment)

	score := 0
	if hasKeyword(tokens, streetKeywords) {
		score += w.StreetKeyword
	}
	if hasDigit(segment) {
		score += w.Digits
	}
	if utf8.RuneCountInString(segment) >= w.MinLength {
		score += w.Length
	}
	if hasSchedule(segment) {
		score -= w.Schedule
	}
	return score
}

// PostalLabeler gives the known commune labels for a postal code. The
// gazetteer implements it.
type PostalLabeler interface {
	PostalLabels(postalCode string) []string
}

// CommuneWeights scores cleaned commune candidates.
type CommuneWeights struct {
	// NoDigits is added to candidates without any digit.
	NoDigits int
	// Digits is subtracted from candidates containing digits.
	Digits int
	// KnownLabel is added when the candidate equals a gazetteer label for the
	// postal code; PartialLabel when one contains the other.
	KnownLabel   int
	PartialLabel int
	// StreetKeyword and Schedule are subtracted for street or hours text.
	StreetKeyword int
	Schedule      int
	// LongSegment is subtracted when the candidate has more than MaxWords words.
	LongSegment int
	MaxWords    int
	// Reject is the threshold a candidate must exceed to be returned.
	Reject int
}

// DefaultCommuneWeights are the weights used by PickBestCommune.
var DefaultCommuneWeights = CommuneWeights{
	NoDigits:      3,
	Digits:        4,
	KnownLabel:    6,
	PartialLabel:  2,
	StreetKeyword: 3,
	Schedule:      5,
	LongSegment:   2,
	MaxWords:      5,
	Reject:        0,
}

// ScoreCommune scores an already cleaned candidate against the known labels
// of its postal code (normalised with normalize.ForSearch).
func ScoreCommune(candidate string, knownKeys []string, w CommuneWeights) int {
	tokens := normalize.Tokens(candidate)
	key := strings.Join(tokens, " ")

	score := 0
	if hasDigit(candidate) {
		score -= w.Digits
	} else {
		score += w.NoDigits
	}

	for _, known := range knownKeys {
		if known == "" || key == "" {
			continue
		}
		if known == key {
			score += w.KnownLabel
			break
		}
		if strings.Contains(known, key) || strings.Contains(key, known) {
			score += w.PartialLabel
			break
		}
	}

	if hasKeyword(tokens, streetKeywords) {
		score -= w.StreetKeyword
	}
	if hasSchedule(candidate) {
		score -= w.Schedule
	}
	if len(tokens) > w.MaxWords {
		score -= w.LongSegment
	}
	return score
}

// PickBestCommune picks the commune name among candidates coming from
// different source fields, using DefaultCommuneWeights.
func PickBestCommune(candidates []string, postalCode string, labels PostalLabeler) string {
	return PickBestCommuneWith(candidates, postalCode, labels, DefaultCommuneWeights)
}

// PickBestCommuneWith cleans and scores every candidate and returns the best
// one above the rejection threshold, formatted for display. Candidates that
// look like a street address are rejected outright. When a candidate matches
// a gazetteer label exactly, the label's own spelling is returned. If nothing
// is accepted, the first gazetteer label for the postal code is returned.
// Earlier candidates win ties.
func PickBestCommuneWith(
	candidates []string,
	postalCode string,
	labels PostalLabeler,
	w CommuneWeights,
) string {
	var known []string
	if labels != nil && postalCode != "" {
		known = labels.PostalLabels(postalCode)
	}
	knownKeys := make([]string, len(known))
	for i, label := range known {
		knownKeys[i] = normalize.ForSearch(label)
	}

	best := ""
	bestScore := w.Reject
	for _, raw := range candidates {
		cleaned := CleanCandidate(raw)
		if cleaned == "" || LooksLikeStreet(cleaned) {
			continue
		}
		if score := ScoreCommune(cleaned, knownKeys, w); score > bestScore {
			best = cleaned
			bestScore = score
		}
	}

	if best == "" {
		if len(known) > 0 {
			return known[0]
		}
		return ""
	}

	key := normalize.ForSearch(best)
	for i, knownKey := range knownKeys {
		if knownKey == key {
			return known[i]
		}
	}
	return normalize.FormatCommuneLabel(best)
}
