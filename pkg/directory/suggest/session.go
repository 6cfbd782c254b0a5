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

package suggest

import (
	"context"
	"errors"

	"github.com/annuaire-echecs/annuaire-core/pkg/helpers/syncutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrSuperseded is returned to a request that finished after a newer one
// was issued on the same session.
var ErrSuperseded = errors.New("suggestion request superseded")

// Session serialises the suggestion requests of one user typing in one
// field: issuing a request cancels the previous one, and only the latest
// request's results are ever returned.
type Session struct {
	ranker *Ranker
	cancel context.CancelFunc
	seq    uint64
	mu     syncutil.Mutex
}

// NewSession returns a session over r.
func (r *Ranker) NewSession() *Session {
	return &Session{ranker: r}
}

// Suggest issues a new request, superseding any request still in flight.
func (s *Session) Suggest(ctx context.Context, query string) ([]Suggestion, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	logger := log.With().Str("request", uuid.NewString()).Uint64("seq", seq).Logger()
	out := s.ranker.suggest(ctx, query, logger)

	s.mu.Lock()
	latest := s.seq == seq
	if latest {
		s.cancel = nil
	}
	s.mu.Unlock()

	if !latest {
		logger.Debug().Msg("discarding superseded suggestions")
		return nil, ErrSuperseded
	}
	return out, nil
}

// Latest returns the sequence number of the most recent request.
func (s *Session) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Close cancels the request in flight, if any.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
