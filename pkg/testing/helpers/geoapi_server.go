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
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/annuaire-echecs/annuaire-core/pkg/testing/fixtures"
)

// MockGeoAPIServer stands in for the three remote geocoding APIs. Every
// endpoint answers with the canned fixtures unless Fail is set, and counts
// the requests it served.
type MockGeoAPIServer struct {
	*httptest.Server
	queries   []string
	adresse   atomic.Int32
	communes  atomic.Int32
	nominatim atomic.Int32
	fail      atomic.Bool
	mu        sync.Mutex
}

// NewMockGeoAPIServer starts the server and registers its shutdown with t.
func NewMockGeoAPIServer(t *testing.T) *MockGeoAPIServer {
	t.Helper()

	mock := &MockGeoAPIServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/adresse/search/", mock.handle(&mock.adresse, fixtures.AdresseMunicipalities))
	mux.HandleFunc("/communes", mock.handle(&mock.communes, fixtures.Communes))
	mux.HandleFunc("/nominatim/search", mock.handle(&mock.nominatim, fixtures.Nominatim))

	mock.Server = httptest.NewServer(mux)
	t.Cleanup(mock.Close)
	return mock
}

func (m *MockGeoAPIServer) handle(counter *atomic.Int32, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counter.Add(1)
		m.mu.Lock()
		m.queries = append(m.queries, r.URL.RawQuery)
		m.mu.Unlock()

		if m.fail.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

// SetFail makes every endpoint answer 503.
func (m *MockGeoAPIServer) SetFail(fail bool) {
	m.fail.Store(fail)
}

// AdresseURL is the api-adresse search endpoint.
func (m *MockGeoAPIServer) AdresseURL() string { return m.URL + "/adresse/search/" }

// CommunesURL is the geo.api.gouv.fr communes endpoint.
func (m *MockGeoAPIServer) CommunesURL() string { return m.URL + "/communes" }

// NominatimURL is the Nominatim search endpoint.
func (m *MockGeoAPIServer) NominatimURL() string { return m.URL + "/nominatim/search" }

// Hits returns the request counts per endpoint.
func (m *MockGeoAPIServer) Hits() (adresse, communes, nominatim int) {
	return int(m.adresse.Load()), int(m.communes.Load()), int(m.nominatim.Load())
}

// Queries returns the raw query strings received so far.
func (m *MockGeoAPIServer) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// LastQueryContains reports whether the most recent query contains s.
func (m *MockGeoAPIServer) LastQueryContains(s string) bool {
	q := m.Queries()
	return len(q) > 0 && strings.Contains(q[len(q)-1], s)
}
