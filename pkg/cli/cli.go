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

// Package cli is the command line front end of the directory.
package cli

import (
	"fmt"
	"io"

	"github.com/annuaire-echecs/annuaire-core/pkg/config"
	"github.com/annuaire-echecs/annuaire-core/pkg/helpers"
	"github.com/rs/zerolog"
)

// Setup creates the application directories, starts logging and loads the
// config. A non-empty cfgPath replaces the default config location.
func Setup(dirs helpers.Dirs, cfgPath string, writers []io.Writer) (*config.Instance, error) {
	// Ensure directories exist before logging initialization
	if err := helpers.EnsureDirectories(dirs); err != nil {
		return nil, fmt.Errorf("error creating directories: %w", err)
	}

	if err := helpers.InitLogging(dirs.Log, writers); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	var (
		cfg *config.Instance
		err error
	)
	if cfgPath != "" {
		cfg, err = config.OpenFile(cfgPath, config.BaseDefaults)
	} else {
		cfg, err = config.NewConfig(dirs.Config, config.BaseDefaults)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return cfg, nil
}
