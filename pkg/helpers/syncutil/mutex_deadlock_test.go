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

//go:build deadlock

package syncutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDetectorTimeout(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 30*time.Second, detectorTimeout(""))
	assert.Equal(t, 30*time.Second, detectorTimeout("nonsense"))
	assert.Equal(t, 30*time.Second, detectorTimeout("-5s"))
	assert.Equal(t, 5*time.Second, detectorTimeout("5s"))
	assert.True(t, DeadlockEnabled)
}
