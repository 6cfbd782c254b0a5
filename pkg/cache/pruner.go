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

package cache

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// RunPruner prunes every view on each tick of interval until ctx is done.
// It blocks; run it in its own goroutine.
func RunPruner(ctx context.Context, clock clockwork.Clock, interval time.Duration, views ...*Cache) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	log.Debug().Dur("interval", interval).Msg("cache pruner started")
	defer log.Debug().Msg("cache pruner stopped")

	for {
		select {
		case <-ticker.Chan():
			for _, v := range views {
				removed, err := v.Prune()
				if err != nil {
					log.Warn().Err(err).Str("namespace", v.Prefix()).Msg("cache prune failed")
					continue
				}
				if removed > 0 {
					log.Debug().Str("namespace", v.Prefix()).Int("removed", removed).Msg("pruned cache entries")
				}
			}
		case <-ctx.Done():
			return
		}
	}
}
