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

package geocoding

import (
	"context"
	"errors"
	"time"

	"github.com/annuaire-echecs/annuaire-core/pkg/cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// DefaultSharedTimeout bounds an upstream call shared by concurrent callers.
const DefaultSharedTimeout = 10 * time.Second

// Cached memoises a provider's answers, including empty ones. Concurrent
// identical requests share one upstream call, which outlives any single
// caller's cancellation; each caller still stops waiting when its own
// context is done.
type Cached struct {
	Provider Provider
	cache    *cache.Cache
	group    singleflight.Group
	// Timeout defaults to DefaultSharedTimeout.
	Timeout time.Duration
}

// NewCached wraps p with c. A nil cache only deduplicates in-flight calls.
func NewCached(p Provider, c *cache.Cache) *Cached {
	return &Cached{Provider: p, cache: c}
}

func (c *Cached) Name() string {
	return c.Provider.Name()
}

func (c *Cached) Search(ctx context.Context, req Request) ([]Place, error) {
	key := cacheKey(c.Provider.Name(), req)

	if c.cache != nil {
		var places []Place
		ok, err := c.cache.Get(key, &places)
		switch {
		case errors.Is(err, cache.ErrCorrupt):
			log.Warn().Err(err).Msg("discarded corrupt geocoding cache entry")
		case err != nil:
			log.Warn().Err(err).Msg("geocoding cache read failed")
		case ok:
			return places, nil
		}
	}

	ch := c.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout())
		defer cancel()
		places, err := c.Provider.Search(callCtx, req)
		if err != nil {
			return nil, err
		}
		if c.cache != nil {
			if err := c.cache.Set(key, places); err != nil {
				log.Warn().Err(err).Msg("geocoding cache write failed")
			}
		}
		return places, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err() //nolint:wrapcheck // caller's own cancellation
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err //nolint:wrapcheck // already wrapped by the provider
		}
		places, _ := res.Val.([]Place)
		return places, nil
	}
}

func (c *Cached) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultSharedTimeout
}
