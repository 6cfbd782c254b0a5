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

package service

import (
	"context"
	"fmt"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/distance"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/matcher"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/records"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/suggest"
	"github.com/rs/zerolog/log"
)

// Search runs a fuzzy text search over one kind of record. A limit of zero
// uses the configured result limit; a negative limit returns every hit.
func (d *Directory) Search(kind records.Kind, query string, limit int) ([]matcher.Hit, error) {
	coll, err := d.Collection(kind)
	if err != nil {
		return nil, err
	}
	hits := matcher.Search(coll.All(), matcher.NewQuery(query), d.weights)
	log.Debug().
		Str("kind", string(kind)).
		Str("query", query).
		Int("hits", len(hits)).
		Msg("search")
	return truncate(hits, d.limit(limit)), nil
}

// Lookup finds a record by slug, falling back to its ID.
func (d *Directory) Lookup(kind records.Kind, key string) (records.Record, bool) {
	coll, err := d.Collection(kind)
	if err != nil {
		return records.Record{}, false
	}
	if rec, ok := coll.BySlug(key); ok {
		return rec, true
	}
	return coll.ByID(key)
}

// Suggest returns location suggestions for a partial query.
func (d *Directory) Suggest(ctx context.Context, query string) []suggest.Suggestion {
	return d.suggester.Suggest(ctx, query)
}

// NewSuggestSession returns a session where each request supersedes the
// previous one, for callers issuing a suggestion per keystroke.
func (d *Directory) NewSuggestSession() *suggest.Session {
	return d.suggester.NewSession()
}

// NearResult is a distance ranking around a reference location.
type NearResult struct {
	Reference distance.Reference `json:"reference"`
	Results   []distance.Ranked  `json:"results"`
}

// Near ranks records of one kind by distance to the location described by
// query. When text is not empty only records matching it are ranked.
func (d *Directory) Near(ctx context.Context, kind records.Kind, query, text string, limit int) (NearResult, error) {
	coll, err := d.Collection(kind)
	if err != nil {
		return NearResult{}, err
	}

	ref, err := d.resolver.ResolveReference(ctx, query)
	if err != nil {
		return NearResult{}, fmt.Errorf("failed to resolve %q: %w", query, err)
	}

	recs := coll.All()
	if q := matcher.NewQuery(text); !q.Empty() {
		hits := matcher.Search(recs, q, d.weights)
		recs = make([]records.Record, len(hits))
		for i := range hits {
			recs[i] = hits[i].Record
		}
	}

	ranked := d.ranker.Rank(ctx, recs, ref)
	log.Debug().
		Str("kind", string(kind)).
		Str("reference", ref.Label).
		Int("ranked", len(ranked)).
		Msg("near")
	return NearResult{Reference: ref, Results: truncate(ranked, d.limit(limit))}, nil
}

func (d *Directory) limit(n int) int {
	if n == 0 {
		return d.cfg.ResultLimit()
	}
	return n
}

func truncate[T any](s []T, n int) []T {
	if n < 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
