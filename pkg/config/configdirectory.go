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

package config

import (
	"path/filepath"
	"time"
)

const (
	ProviderAdresse  = "adresse"
	ProviderCommunes = "communes"

	CacheBackendMemory = "memory"
	CacheBackendBolt   = "bolt"

	DefaultAdresseURL   = "https://api-adresse.data.gouv.fr/search/"
	DefaultCommunesURL  = "https://geo.api.gouv.fr/communes"
	DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"

	DefaultConcurrency    = 4
	DefaultSuggestLimit   = 12
	DefaultLongQueryLimit = 16
	DefaultResultLimit    = 50
	DefaultCacheTTL       = 7 * 24 * time.Hour
	DefaultStateTTL       = 24 * time.Hour
	DefaultPruneInterval  = 10 * time.Minute
	DefaultNominatimRate  = 1.0
	DefaultRemoteRate     = 10.0
)

// Datasets locates the static club and player datasets. Paths are relative
// to Dir, or to BaseURL when datasets are fetched over HTTP.
type Datasets struct {
	Dir             string `toml:"dir,omitempty"`
	BaseURL         string `toml:"base_url,omitempty" validate:"omitempty,url"`
	ClubsManifest   string `toml:"clubs_manifest,omitempty"`
	PlayersManifest string `toml:"players_manifest,omitempty"`
	GeoHints        string `toml:"geo_hints,omitempty"`
	Gazetteer       string `toml:"gazetteer,omitempty"`
	Concurrency     int    `toml:"concurrency,omitempty" validate:"gte=0,lte=64"`
}

// Geocoding configures the remote suggestion and geocoding providers.
type Geocoding struct {
	Enabled           *bool   `toml:"enabled,omitempty"`
	Provider          string  `toml:"provider,omitempty" validate:"omitempty,oneof=adresse communes"`
	AdresseURL        string  `toml:"adresse_url,omitempty" validate:"omitempty,url"`
	CommunesURL       string  `toml:"communes_url,omitempty" validate:"omitempty,url"`
	NominatimURL      string  `toml:"nominatim_url,omitempty" validate:"omitempty,url"`
	Timeout           string  `toml:"timeout,omitempty" validate:"omitempty,duration"`
	RequestsPerSecond float64 `toml:"requests_per_second,omitempty" validate:"gte=0"`
}

// Cache configures the persisted TTL cache.
type Cache struct {
	Backend       string `toml:"backend,omitempty" validate:"omitempty,oneof=memory bolt"`
	Path          string `toml:"path,omitempty"`
	TTL           string `toml:"ttl,omitempty" validate:"omitempty,duration"`
	StateTTL      string `toml:"state_ttl,omitempty" validate:"omitempty,duration"`
	PruneInterval string `toml:"prune_interval,omitempty" validate:"omitempty,duration"`
}

// Search tunes result sizes.
type Search struct {
	SuggestLimit   int `toml:"suggest_limit,omitempty" validate:"gte=0"`
	LongQueryLimit int `toml:"long_query_limit,omitempty" validate:"gte=0"`
	ResultLimit    int `toml:"result_limit,omitempty" validate:"gte=0"`
}

func (c *Instance) DatasetsDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Datasets.Dir
}

func (c *Instance) DatasetsBaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Datasets.BaseURL
}

func (c *Instance) ClubsManifest() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Datasets.ClubsManifest
}

func (c *Instance) PlayersManifest() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Datasets.PlayersManifest
}

func (c *Instance) GeoHintsFile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Datasets.GeoHints
}

// GazetteerFile is the extended gazetteer table, empty when only the bundled
// table is used.
func (c *Instance) GazetteerFile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Datasets.Gazetteer
}

// LoadConcurrency bounds the number of department files fetched at once.
func (c *Instance) LoadConcurrency() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Datasets.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return c.vals.Datasets.Concurrency
}

// GeocodingEnabled defaults to true.
func (c *Instance) GeocodingEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Geocoding.Enabled == nil {
		return true
	}
	return *c.vals.Geocoding.Enabled
}

func (c *Instance) SetGeocodingEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Geocoding.Enabled = &enabled
}

// GeocodingProvider is the primary suggestion provider; the other one is
// used as fallback.
func (c *Instance) GeocodingProvider() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Geocoding.Provider == "" {
		return ProviderAdresse
	}
	return c.vals.Geocoding.Provider
}

func (c *Instance) AdresseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Geocoding.AdresseURL == "" {
		return DefaultAdresseURL
	}
	return c.vals.Geocoding.AdresseURL
}

func (c *Instance) CommunesURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Geocoding.CommunesURL == "" {
		return DefaultCommunesURL
	}
	return c.vals.Geocoding.CommunesURL
}

func (c *Instance) NominatimURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Geocoding.NominatimURL == "" {
		return DefaultNominatimURL
	}
	return c.vals.Geocoding.NominatimURL
}

// RemoteTimeout bounds every remote suggestion or geocoding call.
func (c *Instance) RemoteTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.vals.Geocoding.Timeout, DefaultRemoteTimeout)
}

// RemoteRate is the request rate allowed against the address APIs.
// Nominatim always uses DefaultNominatimRate.
func (c *Instance) RemoteRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Geocoding.RequestsPerSecond <= 0 {
		return DefaultRemoteRate
	}
	return c.vals.Geocoding.RequestsPerSecond
}

func (c *Instance) CacheBackend() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Cache.Backend == "" {
		return CacheBackendMemory
	}
	return c.vals.Cache.Backend
}

// CachePath returns the bolt file path, resolved against dataDir when
// relative.
func (c *Instance) CachePath(dataDir string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	path := c.vals.Cache.Path
	if path == "" {
		path = CacheFile
	}
	return resolvePath(dataDir, path)
}

func (c *Instance) CacheTTL() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.vals.Cache.TTL, DefaultCacheTTL)
}

// StateTTL bounds the persisted UI state (last search, scroll position).
func (c *Instance) StateTTL() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.vals.Cache.StateTTL, DefaultStateTTL)
}

func (c *Instance) PruneInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d := parseDuration(c.vals.Cache.PruneInterval, DefaultPruneInterval)
	if d == 0 {
		return DefaultPruneInterval
	}
	return d
}

func (c *Instance) SuggestLimit() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Search.SuggestLimit <= 0 {
		return DefaultSuggestLimit
	}
	return c.vals.Search.SuggestLimit
}

func (c *Instance) LongQueryLimit() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Search.LongQueryLimit <= 0 {
		return DefaultLongQueryLimit
	}
	return c.vals.Search.LongQueryLimit
}

func (c *Instance) ResultLimit() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Search.ResultLimit <= 0 {
		return DefaultResultLimit
	}
	return c.vals.Search.ResultLimit
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
