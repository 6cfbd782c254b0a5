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

// Package geocoding adapts the public French address APIs to a single
// Place shape used for location suggestions and as the last resort when a
// record's location cannot be resolved locally.
package geocoding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/geo"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
	"github.com/rs/zerolog/log"
)

// ErrNoResult is returned by Geocode when no provider found anything.
var ErrNoResult = errors.New("no geocoding result")

// DefaultLimit is the number of places requested when a request has none.
const DefaultLimit = 10

// Place is one remote result.
type Place struct {
	Commune     string          `json:"commune"`
	PostalCode  string          `json:"postalCode"`
	Label       string          `json:"label"`
	Provider    string          `json:"provider"`
	Coordinates geo.Coordinates `json:"coordinates"`
}

// Request is a place search. PostalCode narrows the search when the
// provider supports it. Municipality restricts results to communes.
type Request struct {
	Query        string
	PostalCode   string
	Limit        int
	Municipality bool
}

func (r Request) limit() int {
	if r.Limit <= 0 {
		return DefaultLimit
	}
	return r.Limit
}

// Provider is a remote place search.
type Provider interface {
	Name() string
	Search(ctx context.Context, req Request) ([]Place, error)
}

// Geocode resolves free text to the best place p knows.
func Geocode(ctx context.Context, p Provider, text string) (Place, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Place{}, ErrNoResult
	}
	places, err := p.Search(ctx, Request{Query: text, Limit: 1})
	if err != nil {
		return Place{}, err
	}
	if len(places) == 0 {
		return Place{}, ErrNoResult
	}
	return places[0], nil
}

// Chain tries providers in order and returns the first non-empty answer.
// Provider errors are only returned when every provider failed.
type Chain struct {
	Providers []Provider
}

// NewChain returns a chain over the non-nil providers.
func NewChain(providers ...Provider) *Chain {
	c := &Chain{}
	for _, p := range providers {
		if p != nil {
			c.Providers = append(c.Providers, p)
		}
	}
	return c
}

func (c *Chain) Name() string {
	names := make([]string, len(c.Providers))
	for i, p := range c.Providers {
		names[i] = p.Name()
	}
	return strings.Join(names, "+")
}

func (c *Chain) Search(ctx context.Context, req Request) ([]Place, error) {
	var errs []error
	for _, p := range c.Providers {
		places, err := p.Search(ctx, req)
		if err != nil {
			log.Debug().Err(err).Str("provider", p.Name()).Str("query", req.Query).Msg("provider failed")
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(places) > 0 {
			return places, nil
		}
	}
	if len(errs) == len(c.Providers) && len(errs) > 0 {
		return nil, fmt.Errorf("all providers failed: %w", errors.Join(errs...))
	}
	return nil, nil
}

// IsDigits reports whether s is only ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// cacheKey identifies a request regardless of case, accents and spacing.
func cacheKey(provider string, req Request) string {
	return fmt.Sprintf("%s|%s|%s|%d|%t",
		provider, normalize.ForSearch(req.Query), req.PostalCode, req.limit(), req.Municipality)
}
