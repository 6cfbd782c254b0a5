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

package helpers

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/annuaire-echecs/annuaire-core/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dirs := Dirs{
		Config: filepath.Join(root, "config", "nested"),
		Data:   filepath.Join(root, "data"),
		Log:    filepath.Join(root, "logs", "nested"),
	}

	require.NoError(t, EnsureDirectories(dirs))
	require.NoError(t, EnsureDirectories(dirs), "existing directories are fine")

	for _, dir := range []string{dirs.Config, dirs.Data, dirs.Log} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		if runtime.GOOS != "windows" {
			assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
		}
	}
}

func TestEnsureDirectories_SkipsEmpty(t *testing.T) {
	t.Parallel()
	require.NoError(t, EnsureDirectories(Dirs{Data: filepath.Join(t.TempDir(), "data")}))
}

func TestEnsureDirectories_InvalidPath(t *testing.T) {
	t.Parallel()

	err := EnsureDirectories(Dirs{Config: t.TempDir(), Data: "/proc/invalid\x00path"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create data directory")
}

func TestDefaultDirs(t *testing.T) {
	t.Parallel()

	dirs := DefaultDirs()
	assert.Equal(t, config.AppName, filepath.Base(dirs.Config))
	assert.Equal(t, config.AppName, filepath.Base(dirs.Data))
	assert.Equal(t, config.AppName, filepath.Base(dirs.Log))
}

func TestInitLogging(t *testing.T) {
	// Note: Cannot use t.Parallel() because InitLogging modifies global log.Logger
	original := log.Logger
	t.Cleanup(func() { log.Logger = original })

	logDir := filepath.Join(t.TempDir(), "logs")
	var buf bytes.Buffer

	require.NoError(t, InitLogging(logDir, []io.Writer{&buf}))
	log.Info().Str("component", "test").Msg("hello")

	assert.Contains(t, buf.String(), `"component":"test"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
	assert.FileExists(t, filepath.Join(logDir, config.LogFile))
}

func TestInitLogging_InvalidDir(t *testing.T) {
	original := log.Logger
	t.Cleanup(func() { log.Logger = original })

	err := InitLogging("/proc/invalid\x00path", nil)
	require.Error(t, err)
}
