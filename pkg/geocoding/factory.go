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

package geocoding

import (
	"github.com/annuaire-echecs/annuaire-core/pkg/cache"
	"github.com/annuaire-echecs/annuaire-core/pkg/config"
	"github.com/annuaire-echecs/annuaire-core/pkg/shared/httpclient"
)

// Services are the providers the directory uses: Places for location
// suggestions, Addresses for geocoding free address text.
type Services struct {
	Places    Provider
	Addresses Provider
}

// NewServices builds the configured provider chains. The configured
// provider is queried first and the other public API is the fallback.
// Address geocoding tries api-adresse then Nominatim. Place answers are
// cached under the suggest namespace of c and address answers under the
// geocode namespace; c may be nil. When geocoding is disabled both fields are
// nil.
func NewServices(cfg *config.Instance, c *cache.Cache) Services {
	if !cfg.GeocodingEnabled() {
		return Services{}
	}

	client := httpclient.NewClientFromConfig(cfg)
	nominatimClient := httpclient.NewClientWithOptions(httpclient.Options{
		Timeout:           cfg.RemoteTimeout(),
		RequestsPerSecond: config.DefaultNominatimRate,
	})

	adresse := &AdresseProvider{Client: client, BaseURL: cfg.AdresseURL()}
	communes := &CommunesProvider{Client: client, BaseURL: cfg.CommunesURL()}
	nominatim := &NominatimProvider{Client: nominatimClient, BaseURL: cfg.NominatimURL()}

	var places *Chain
	switch cfg.GeocodingProvider() {
	case config.ProviderCommunes:
		places = NewChain(communes, adresse)
	default:
		places = NewChain(adresse, communes)
	}

	var placeCache, addressCache *cache.Cache
	if c != nil {
		placeCache = c.Namespace(cache.NamespaceSuggest, cfg.CacheTTL())
		addressCache = c.Namespace(cache.NamespaceGeocode, cfg.CacheTTL())
	}

	// Chains make at most two sequential calls.
	shared := 2 * cfg.RemoteTimeout()
	placesCached := NewCached(places, placeCache)
	placesCached.Timeout = shared
	addressesCached := NewCached(NewChain(adresse, nominatim), addressCache)
	addressesCached.Timeout = shared

	return Services{
		Places:    placesCached,
		Addresses: addressesCached,
	}
}
