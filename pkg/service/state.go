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
	"errors"
	"fmt"

	"github.com/annuaire-echecs/annuaire-core/pkg/cache"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/records"
	"github.com/rs/zerolog/log"
)

const (
	stateSearch = "search"
	stateScroll = "scroll"
	stateDebug  = "debug"
)

// SearchState is the last search a user ran, restored on the next start.
type SearchState struct {
	Kind  records.Kind `json:"kind"`
	Query string       `json:"query,omitempty"`
	Near  string       `json:"near,omitempty"`
}

// SaveSearch remembers the last search.
func (d *Directory) SaveSearch(s SearchState) error {
	return d.saveState(stateSearch, s)
}

// LastSearch returns the remembered search. Missing, expired and corrupt
// state all report false.
func (d *Directory) LastSearch() (SearchState, bool) {
	var s SearchState
	if !d.loadState(stateSearch, &s) {
		return SearchState{}, false
	}
	return s, true
}

// SaveScroll remembers the position in the last result list.
func (d *Directory) SaveScroll(pos int) error {
	return d.saveState(stateScroll, pos)
}

// LastScroll returns the remembered result list position.
func (d *Directory) LastScroll() (int, bool) {
	var pos int
	if !d.loadState(stateScroll, &pos) {
		return 0, false
	}
	return pos, true
}

// SetDebug switches debug logging and persists the choice so it survives a
// restart even when the config file says otherwise.
func (d *Directory) SetDebug(enabled bool) error {
	d.cfg.SetDebugLogging(enabled)
	return d.saveState(stateDebug, enabled)
}

// restoreDebug applies a persisted debug flag on top of the config.
func (d *Directory) restoreDebug() {
	var enabled bool
	if d.loadState(stateDebug, &enabled) && enabled != d.cfg.DebugLogging() {
		d.cfg.SetDebugLogging(enabled)
		log.Debug().Bool("debug", enabled).Msg("restored debug flag")
	}
}

func (d *Directory) saveState(key string, v any) error {
	if err := d.state.Set(key, v); err != nil {
		return fmt.Errorf("failed to save %s state: %w", key, err)
	}
	return nil
}

func (d *Directory) loadState(key string, out any) bool {
	ok, err := d.state.Get(key, out)
	switch {
	case errors.Is(err, cache.ErrCorrupt):
		log.Warn().Err(err).Str("key", key).Msg("discarded corrupt state")
		return false
	case err != nil:
		log.Warn().Err(err).Str("key", key).Msg("failed to read state")
		return false
	}
	return ok
}
