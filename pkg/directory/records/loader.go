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

package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/address"
	"github.com/annuaire-echecs/annuaire-core/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// ErrDataUnavailable is returned when the manifest itself cannot be loaded.
// Individual department failures only shrink the collection.
var ErrDataUnavailable = errors.New("dataset unavailable")

// Source reads dataset files by relative name.
type Source interface {
	Read(ctx context.Context, name string) ([]byte, error)
}

// FSSource reads datasets from a directory.
type FSSource struct {
	Fs   afero.Fs
	Root string
}

func (s FSSource) Read(_ context.Context, name string) ([]byte, error) {
	p := name
	if s.Root != "" {
		p = path.Join(s.Root, name)
	}
	data, err := afero.ReadFile(s.Fs, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

// HTTPSource fetches datasets relative to a base URL.
type HTTPSource struct {
	Client  *httpclient.Client
	BaseURL string
}

func (s HTTPSource) Read(ctx context.Context, name string) ([]byte, error) {
	url := strings.TrimRight(s.BaseURL, "/") + "/" + strings.TrimLeft(name, "/")
	data, err := s.Client.GetBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", name, err)
	}
	return data, nil
}

// Manifest lists the department files of a dataset.
type Manifest struct {
	BasePath    string          `json:"basePath"`
	Departments []DepartmentRef `json:"departments"`
}

// DepartmentRef is one manifest entry.
type DepartmentRef struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	File string `json:"file"`
}

// Loader builds collections from a Source.
type Loader struct {
	Source Source
	// Labels is consulted when picking commune names, usually the gazetteer.
	Labels address.PostalLabeler
	// Concurrency bounds parallel department reads; 0 means unbounded.
	Concurrency int
}

// LoadOptions select one dataset.
type LoadOptions struct {
	Kind     Kind
	Manifest string
	// GeoHints is optional; a missing or broken hints file is ignored.
	GeoHints string
}

// Load reads the manifest and every department file it lists. A department
// that fails to load is logged and left out. If the manifest itself is
// unavailable an empty collection is returned with ErrDataUnavailable.
func (l *Loader) Load(ctx context.Context, opts LoadOptions) (*Collection, error) {
	empty := NewCollection(opts.Kind, nil)

	data, err := l.Source.Read(ctx, opts.Manifest)
	if err != nil {
		return empty, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return empty, fmt.Errorf("%w: malformed manifest %s: %w", ErrDataUnavailable, opts.Manifest, err)
	}

	base := strings.TrimPrefix(manifest.BasePath, "/")
	if base == "" {
		base = path.Dir(opts.Manifest)
	}

	perDept := make([][]Record, len(manifest.Departments))
	g, gctx := errgroup.WithContext(ctx)
	if l.Concurrency > 0 {
		g.SetLimit(l.Concurrency)
	}
	for i, dept := range manifest.Departments {
		g.Go(func() error {
			perDept[i] = l.loadDepartment(gctx, opts.Kind, base, dept)
			return nil
		})
	}
	_ = g.Wait()

	var recs []Record
	for _, part := range perDept {
		recs = append(recs, part...)
	}

	coll := NewCollection(opts.Kind, recs)
	if len(coll.Collisions()) > 0 {
		log.Debug().
			Str("kind", string(opts.Kind)).
			Int("collisions", len(coll.Collisions())).
			Msg("resolved slug collisions")
	}

	if opts.GeoHints != "" {
		l.applyHints(ctx, coll, opts.GeoHints)
	}

	log.Info().
		Str("kind", string(opts.Kind)).
		Int("departments", len(manifest.Departments)).
		Int("records", coll.Len()).
		Msg("dataset loaded")
	return coll, nil
}

func (l *Loader) loadDepartment(ctx context.Context, kind Kind, base string, dept DepartmentRef) []Record {
	name := strings.TrimPrefix(dept.File, "/")
	if base != "" && base != "." && !strings.HasPrefix(name, base+"/") {
		name = path.Join(base, name)
	}

	data, err := l.Source.Read(ctx, name)
	if err != nil {
		log.Warn().Err(err).Str("department", dept.Code).Msg("department file unavailable")
		return nil
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		log.Warn().Err(err).Str("department", dept.Code).Msg("malformed department file")
		return nil
	}

	recs := make([]Record, 0, len(rows))
	for i, row := range rows {
		raw, err := DecodeRaw(row)
		if err != nil {
			log.Debug().Err(err).Str("department", dept.Code).Int("row", i).Msg("skipping record")
			continue
		}
		rec := Build(raw, BuildOptions{
			Labels:     l.Labels,
			Kind:       kind,
			Department: dept.Code,
			Index:      i,
		})
		if rec.Name == "" {
			continue
		}
		recs = append(recs, rec)
	}
	return recs
}

func (l *Loader) applyHints(ctx context.Context, coll *Collection, name string) {
	data, err := l.Source.Read(ctx, name)
	if err != nil {
		log.Debug().Err(err).Msg("no geo hints")
		return
	}
	hints, err := ParseGeoHints(data)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring geo hints")
		return
	}
	applied := coll.ApplyGeoHints(hints)
	log.Debug().Int("applied", applied).Msg("geo hints applied")
}
