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

package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/annuaire-echecs/annuaire-core/pkg/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeoutSeconds is the default timeout for HTTP requests
	DefaultTimeoutSeconds = 30
	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes = 16 << 20
)

// UserAgent identifies the client to the public address APIs, as Nominatim's
// usage policy requires.
var UserAgent = "annuaire-core/" + config.AppVersion

// ErrStatus is wrapped by every non-2xx response error.
var ErrStatus = errors.New("unexpected HTTP status")

// LimitedTransport waits on a rate limiter before each request and sets the
// User-Agent header when the caller did not.
type LimitedTransport struct {
	Base      http.RoundTripper
	Limiter   *rate.Limiter
	UserAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *LimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	if t.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.UserAgent)
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform HTTP round trip: %w", err)
	}
	return resp, nil
}

// DefaultTransport provides a configured transport with connection pooling and reasonable timeouts
var DefaultTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ResponseHeaderTimeout: 30 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	// Connection pooling settings
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// Options tune a Client. A zero RequestsPerSecond disables rate limiting.
type Options struct {
	Base              http.RoundTripper
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client provides an HTTP client with rate limiting and JSON helpers.
type Client struct {
	*http.Client
}

// NewClient creates a new HTTP client with the default timeout and no rate
// limit.
func NewClient() *Client {
	return NewClientWithOptions(Options{Timeout: DefaultTimeoutSeconds * time.Second})
}

// NewClientWithOptions creates a new HTTP client from opts.
func NewClientWithOptions(opts Options) *Client {
	base := opts.Base
	if base == nil {
		base = DefaultTransport
	}

	transport := &LimitedTransport{Base: base, UserAgent: UserAgent}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		transport.Limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		Client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
	}
}

// NewClientFromConfig creates a client for the remote address APIs using
// the configured timeout and rate.
func NewClientFromConfig(cfg *config.Instance) *Client {
	return NewClientWithOptions(Options{
		Timeout:           cfg.RemoteTimeout(),
		RequestsPerSecond: cfg.RemoteRate(),
	})
}

// GetBytes fetches url and returns the body of a 2xx response.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error getting url: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("error closing response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d from %s", ErrStatus, resp.StatusCode, req.URL.Host)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	return data, nil
}

// GetJSON fetches url and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	data, err := c.GetBytes(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}
