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
	"fmt"
	"path"

	"github.com/annuaire-echecs/annuaire-core/pkg/testing/fixtures"
	"github.com/spf13/afero"
)

// FSHelper provides utilities for filesystem mocking in tests
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a new in-memory filesystem for testing
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// NewOSFS creates a filesystem helper using the real filesystem (for integration tests)
func NewOSFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewOsFs(),
	}
}

// WriteFile writes content at p, creating parent directories.
func (h *FSHelper) WriteFile(p, content string) error {
	if err := h.Fs.MkdirAll(path.Dir(p), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", p, err)
	}
	if err := afero.WriteFile(h.Fs, p, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

// WriteFiles writes every file of files under root.
func (h *FSHelper) WriteFiles(root string, files map[string]string) error {
	for name, content := range files {
		if err := h.WriteFile(path.Join(root, name), content); err != nil {
			return err
		}
	}
	return nil
}

// WriteDataset lays the sample datasets out under root.
func (h *FSHelper) WriteDataset(root string) error {
	return h.WriteFiles(root, fixtures.Files)
}
