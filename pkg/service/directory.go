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

// Package service wires the directory packages into one application
// instance used by the command line front end.
package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/annuaire-echecs/annuaire-core/pkg/cache"
	"github.com/annuaire-echecs/annuaire-core/pkg/config"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/distance"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/gazetteer"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/matcher"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/records"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/suggest"
	"github.com/annuaire-echecs/annuaire-core/pkg/geocoding"
	"github.com/annuaire-echecs/annuaire-core/pkg/shared/httpclient"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrUnknownKind is returned for a record kind the directory does not hold.
var ErrUnknownKind = errors.New("unknown record kind")

// Options are the dependencies of a Directory. Only Config is required.
type Options struct {
	Config *config.Instance
	// Fs holds the datasets and the extended gazetteer. Defaults to the OS
	// filesystem.
	Fs afero.Fs
	// Clock drives cache expiry and the pruner. Defaults to the real clock.
	Clock clockwork.Clock
	// Backend overrides the configured cache backend.
	Backend cache.Backend
	// DataDir is where relative cache paths are resolved.
	DataDir string
}

// Directory is a loaded club and player directory.
type Directory struct {
	cfg       *config.Instance
	clock     clockwork.Clock
	gazetteer *gazetteer.Gazetteer
	cache     *cache.Cache
	state     *cache.Cache
	geo       geocoding.Services
	clubs     *records.Collection
	players   *records.Collection
	suggester *suggest.Ranker
	resolver  *distance.Resolver
	ranker    *distance.Ranker
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
	weights   matcher.Weights
}

// Open loads both datasets and starts the cache pruner. Missing datasets
// leave an empty collection behind and are only logged; Open fails when the
// cache cannot be opened.
func Open(ctx context.Context, opts Options) (*Directory, error) {
	if opts.Config == nil {
		return nil, errors.New("service: config is required")
	}
	cfg := opts.Config
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	backend, err := openBackend(cfg, opts)
	if err != nil {
		return nil, err
	}
	root := cache.New(backend, cache.Options{Clock: opts.Clock, TTL: cfg.CacheTTL()})

	d := &Directory{
		cfg:       cfg,
		clock:     opts.Clock,
		gazetteer: gazetteer.New(),
		cache:     root,
		state:     root.Namespace(cache.NamespaceState, cfg.StateTTL()),
		weights:   matcher.DefaultWeights,
	}
	d.restoreDebug()

	d.geo = geocoding.NewServices(cfg, root)

	if file := cfg.GazetteerFile(); file != "" {
		loader := gazetteer.FileLoader(opts.Fs, resolveDatasetPath(cfg, file))
		if err := d.gazetteer.EnsureExtended(ctx, loader); err != nil {
			log.Warn().Err(err).Str("file", file).Msg("extended gazetteer unavailable, using bundled table")
		}
	}

	d.loadCollections(ctx, opts.Fs)

	d.suggester = suggest.NewRanker(d.gazetteer, d.geo.Places, d.clubs, d.players)
	d.suggester.Limits = suggest.Limits{Default: cfg.SuggestLimit(), LongQuery: cfg.LongQueryLimit()}
	d.suggester.RemoteTimeout = cfg.RemoteTimeout()

	d.resolver = distance.NewResolver(d.gazetteer, d.geo.Addresses)
	d.ranker = distance.NewRanker(d.resolver)

	pruneCtx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	views := []*cache.Cache{
		d.state,
		root.Namespace(cache.NamespaceGeocode, cfg.CacheTTL()),
		root.Namespace(cache.NamespaceSuggest, cfg.CacheTTL()),
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		cache.RunPruner(pruneCtx, d.clock, cfg.PruneInterval(), views...)
	}()

	log.Info().
		Int("clubs", d.clubs.Len()).
		Int("players", d.players.Len()).
		Int("gazetteer", d.gazetteer.Len()).
		Bool("geocoding", d.geo.Places != nil).
		Msg("directory ready")
	return d, nil
}

func openBackend(cfg *config.Instance, opts Options) (cache.Backend, error) {
	if opts.Backend != nil {
		return opts.Backend, nil
	}
	if cfg.CacheBackend() != config.CacheBackendBolt {
		return cache.NewMemoryBackend(), nil
	}
	p := cfg.CachePath(opts.DataDir)
	backend, err := cache.OpenBolt(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", p, err)
	}
	return backend, nil
}

func resolveDatasetPath(cfg *config.Instance, name string) string {
	dir := cfg.DatasetsDir()
	if dir == "" || path.IsAbs(name) {
		return name
	}
	return path.Join(dir, name)
}

func (d *Directory) source(fs afero.Fs) records.Source {
	if base := d.cfg.DatasetsBaseURL(); base != "" {
		return records.HTTPSource{Client: httpclient.NewClientFromConfig(d.cfg), BaseURL: base}
	}
	return records.FSSource{Fs: fs, Root: d.cfg.DatasetsDir()}
}

func (d *Directory) loadCollections(ctx context.Context, fs afero.Fs) {
	loader := &records.Loader{
		Source:      d.source(fs),
		Labels:      d.gazetteer,
		Concurrency: d.cfg.LoadConcurrency(),
	}

	load := func(kind records.Kind, manifest string) *records.Collection {
		coll, err := loader.Load(ctx, records.LoadOptions{
			Kind:     kind,
			Manifest: manifest,
			GeoHints: d.cfg.GeoHintsFile(),
		})
		if err != nil {
			log.Error().Err(err).Str("kind", string(kind)).Msg("dataset unavailable")
		}
		return coll
	}

	d.clubs = load(records.KindClub, d.cfg.ClubsManifest())
	d.players = load(records.KindPlayer, d.cfg.PlayersManifest())
}

// Collection returns the records of one kind.
func (d *Directory) Collection(kind records.Kind) (*records.Collection, error) {
	switch kind {
	case records.KindClub:
		return d.clubs, nil
	case records.KindPlayer:
		return d.players, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Gazetteer returns the shared gazetteer.
func (d *Directory) Gazetteer() *gazetteer.Gazetteer {
	return d.gazetteer
}

// Config returns the configuration the directory was opened with.
func (d *Directory) Config() *config.Instance {
	return d.cfg
}

// Close stops the pruner and closes the cache. It is safe to call more than
// once.
func (d *Directory) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.cancel()
		d.wg.Wait()
		if closeErr := d.cache.Close(); closeErr != nil {
			err = fmt.Errorf("failed to close cache: %w", closeErr)
		}
		log.Debug().Msg("directory closed")
	})
	return err
}
