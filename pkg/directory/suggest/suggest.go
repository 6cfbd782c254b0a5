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

// Package suggest ranks location suggestions while the user types a commune
// name or postal code. Candidates come from the local gazetteer, from the
// locations of loaded records and, for specific enough queries, from a remote
// address API whose answers are merged back into the gazetteer.
package suggest

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/gazetteer"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/geo"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/records"
	"github.com/annuaire-echecs/annuaire-core/pkg/geocoding"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Source tells where a suggestion came from.
type Source string

const (
	SourceGazetteer Source = "gazetteer"
	SourceRecord    Source = "record"
	SourceRemote    Source = "remote"
	SourceParis     Source = "paris"
)

// Suggestion is one ranked location.
type Suggestion struct {
	Coordinates *geo.Coordinates `json:"coordinates,omitempty"`
	Display     string           `json:"display"`
	PostalCode  string           `json:"postalCode"`
	Commune     string           `json:"commune"`
	Source      Source           `json:"source"`
	HasRecord   bool             `json:"hasRecord"`
	Score       int              `json:"score"`
}

// Key is the deduplication key: canonical postal code and normalised
// commune.
func (s *Suggestion) Key() string {
	return normalize.CanonicalParisPostal(s.PostalCode) + "|" + normalize.ForSearch(s.Commune)
}

// DisplayLabel formats "Commune (postal)".
func DisplayLabel(commune, postal string) string {
	switch {
	case postal == "":
		return commune
	case commune == "":
		return postal
	default:
		return commune + " (" + postal + ")"
	}
}

// Weights are the scoring constants.
type Weights struct {
	// PostalPrefix is awarded when the query digits prefix the postal code,
	// minus PostalDecay for every digit the query is missing.
	PostalPrefix int
	PostalDecay  int
	// TextPrefix and TextContains match the compacted commune name.
	TextPrefix   int
	TextContains int
	// RecordBonus is added when a loaded record is located there.
	RecordBonus int
	// ParisHint is added to the arrondissement named by a Paris query.
	ParisHint int
}

// DefaultWeights are the production weights.
var DefaultWeights = Weights{
	PostalPrefix: 100,
	PostalDecay:  5,
	TextPrefix:   60,
	TextContains: 30,
	RecordBonus:  15,
	ParisHint:    1000,
}

// Limits cap the number of suggestions.
type Limits struct {
	Default int
	// LongQuery applies to multi-word queries.
	LongQuery int
}

// DefaultLimits are the production caps.
var DefaultLimits = Limits{Default: 12, LongQuery: 16}

// LocationSource exposes the locations of a loaded collection.
type LocationSource interface {
	Locations() []records.Location
}

// Ranker produces suggestions.
type Ranker struct {
	Gazetteer *gazetteer.Gazetteer
	// Remote is optional.
	Remote  geocoding.Provider
	Sources []LocationSource
	Weights Weights
	Limits  Limits
	// RemoteTimeout bounds each remote call; zero means no timeout beyond
	// the caller's context.
	RemoteTimeout time.Duration
}

// NewRanker returns a ranker with the default weights and limits.
func NewRanker(g *gazetteer.Gazetteer, remote geocoding.Provider, sources ...LocationSource) *Ranker {
	return &Ranker{
		Gazetteer: g,
		Remote:    remote,
		Sources:   sources,
		Weights:   DefaultWeights,
		Limits:    DefaultLimits,
	}
}

// Suggest returns the ranked suggestions for query.
func (r *Ranker) Suggest(ctx context.Context, query string) []Suggestion {
	return r.suggest(ctx, query, log.Logger)
}

func (r *Ranker) suggest(ctx context.Context, raw string, logger zerolog.Logger) []Suggestion {
	q := ParseQuery(raw)
	if q.Empty() {
		return nil
	}

	if hint, ok := q.Paris(); ok {
		return r.paris(hint)
	}

	var remote []geocoding.Place
	if r.Remote != nil && q.Remote() {
		remote = r.fetchRemote(ctx, q, logger)
	}

	merged := newMerger()
	r.collectGazetteer(q, merged)
	r.collectRecords(merged)
	for _, p := range remote {
		coords := p.Coordinates
		merged.add(Suggestion{
			Commune:     p.Commune,
			PostalCode:  p.PostalCode,
			Coordinates: &coords,
			Source:      SourceRemote,
		})
	}

	out := make([]Suggestion, 0, len(merged.items))
	exact := 0
	for _, s := range merged.items {
		score, ok := Score(s, q, r.Weights)
		if !ok {
			continue
		}
		s.Score = score
		s.Display = DisplayLabel(s.Commune, s.PostalCode)
		if q.ExactPostal() && normalize.CanonicalParisPostal(s.PostalCode) == q.Postal {
			exact++
		}
		out = append(out, s)
	}

	sortSuggestions(out)

	limit := r.Limits.Default
	if q.Words > 1 && r.Limits.LongQuery > limit {
		limit = r.Limits.LongQuery
	}
	if exact > limit {
		limit = exact
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	logger.Debug().
		Str("query", q.Raw).
		Int("remote", len(remote)).
		Int("results", len(out)).
		Msg("suggestions ranked")
	return out
}

// Score scores a candidate against q. It reports false when the candidate
// does not match: the postal part must prefix the postal code and the text
// part must occur in the compacted commune name. Queries with both parts
// must match both.
func Score(s Suggestion, q Query, w Weights) (int, bool) {
	score := 0
	if q.Postal != "" {
		postal := normalize.CanonicalParisPostal(s.PostalCode)
		prefix := q.Postal
		if !strings.HasPrefix(postal, prefix) && len(prefix) < 5 {
			// A leading zero lost by the user: "1000" for 01000.
			prefix = "0" + prefix
		}
		if !strings.HasPrefix(postal, prefix) {
			return 0, false
		}
		missing := max(len(postal)-len(prefix), 0)
		score += w.PostalPrefix - w.PostalDecay*missing
	}
	if q.Text != "" {
		commune := normalize.Compact(s.Commune)
		switch {
		case strings.HasPrefix(commune, q.Text):
			score += w.TextPrefix
		case strings.Contains(commune, q.Text):
			score += w.TextContains
		default:
			return 0, false
		}
	}
	if s.HasRecord {
		score += w.RecordBonus
	}
	return score, true
}

func sortSuggestions(out []Suggestion) {
	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.PostalCode != b.PostalCode {
			return a.PostalCode < b.PostalCode
		}
		return a.Commune < b.Commune
	})
}

// paris lists the 20 arrondissements in order, the hinted one first.
func (r *Ranker) paris(hint int) []Suggestion {
	withRecords := make(map[string]bool)
	for _, src := range r.Sources {
		for _, loc := range src.Locations() {
			if n := normalize.ParisArrondissement(loc.PostalCode); n > 0 {
				withRecords[normalize.ParisPostal(n)] = true
			}
		}
	}

	entries := gazetteer.ParisEntries()
	out := make([]Suggestion, 0, len(entries))
	for i, e := range entries {
		coords := e.Coordinates()
		s := Suggestion{
			Commune:     e.Label,
			PostalCode:  e.PostalCode,
			Display:     DisplayLabel(e.Label, e.PostalCode),
			Coordinates: &coords,
			Source:      SourceParis,
			HasRecord:   withRecords[e.PostalCode],
			Score:       len(entries) - i,
		}
		if i+1 == hint {
			s.Score += r.Weights.ParisHint
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func (r *Ranker) fetchRemote(ctx context.Context, q Query, logger zerolog.Logger) []geocoding.Place {
	if r.RemoteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.RemoteTimeout)
		defer cancel()
	}

	req := geocoding.Request{Query: q.Raw, Municipality: true, Limit: r.Limits.Default}
	if q.ExactPostal() {
		req.PostalCode = q.Postal
	}
	places, err := r.Remote.Search(ctx, req)
	if err != nil {
		logger.Warn().Err(err).Str("query", q.Raw).Msg("remote suggestions unavailable")
		return nil
	}

	if r.Gazetteer != nil && len(places) > 0 {
		entries := make([]gazetteer.Entry, 0, len(places))
		for _, p := range places {
			entries = append(entries, gazetteer.Entry{
				PostalCode: p.PostalCode,
				Label:      p.Commune,
				Lat:        p.Coordinates.Lat,
				Lng:        p.Coordinates.Lng,
				Precision:  p.Coordinates.Precision,
			})
		}
		added := r.Gazetteer.Merge(entries)
		logger.Debug().Int("added", added).Msg("merged remote places into gazetteer")
	}
	return places
}

func (r *Ranker) collectGazetteer(q Query, m *merger) {
	if r.Gazetteer == nil {
		return
	}

	add := func(e gazetteer.Entry) {
		coords := e.Coordinates()
		m.add(Suggestion{
			Commune:     e.Label,
			PostalCode:  e.PostalCode,
			Coordinates: &coords,
			Source:      SourceGazetteer,
		})
	}

	switch {
	case len(q.Postal) >= 2 && len(q.Postal) <= 4:
		for _, e := range r.Gazetteer.LookupByPostalPrefix(q.Postal) {
			add(e)
		}
	case q.ExactPostal():
		for _, e := range r.Gazetteer.LookupByPostal(q.Postal) {
			add(e)
		}
	case q.Text != "":
		r.Gazetteer.Range(func(e gazetteer.Entry) bool {
			if strings.Contains(normalize.Compact(e.Label), q.Text) {
				add(e)
			}
			return true
		})
	}
}

func (r *Ranker) collectRecords(m *merger) {
	for _, src := range r.Sources {
		for _, loc := range src.Locations() {
			m.add(Suggestion{
				Commune:     loc.Commune,
				PostalCode:  loc.PostalCode,
				Coordinates: loc.Coordinates,
				Source:      SourceRecord,
				HasRecord:   true,
			})
		}
	}
}

// merger deduplicates candidates on Suggestion.Key, keeping insertion order.
// A duplicate contributes its coordinates when the kept entry has none, and
// its record backing.
type merger struct {
	index map[string]int
	items []Suggestion
}

func newMerger() *merger {
	return &merger{index: make(map[string]int)}
}

func (m *merger) add(s Suggestion) {
	if s.Commune == "" && s.PostalCode == "" {
		return
	}
	if s.Coordinates != nil && !s.Coordinates.Valid() {
		s.Coordinates = nil
	}

	key := s.Key()
	i, ok := m.index[key]
	if !ok {
		m.index[key] = len(m.items)
		m.items = append(m.items, s)
		return
	}

	kept := &m.items[i]
	if kept.Coordinates == nil && s.Coordinates != nil {
		kept.Coordinates = s.Coordinates
		if !kept.HasRecord {
			kept.Source = s.Source
		}
	}
	if s.HasRecord && !kept.HasRecord {
		kept.HasRecord = true
	}
}
