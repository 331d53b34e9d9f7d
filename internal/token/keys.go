// Copyright (c) 2026-present the Firefly Framework authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/fireflyframework/pyfly-sub003/internal/config"
)

// Provider supplies the JSON Web Key Set (JWKS) used to verify token
// signatures. Implementations may serve keys from disk, fetch them
// remotely, or merge several sources.
type Provider interface {
	// Keys returns the current JWK set, refreshing it as needed.
	Keys(ctx context.Context) (jwk.Set, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context) (jwk.Set, error)

// Keys implements the Provider interface.
func (f ProviderFunc) Keys(ctx context.Context) (jwk.Set, error) { return f(ctx) }

// NewProvider builds a Provider from configuration. A static file source
// and a remote endpoint may be combined; their keys are merged. With no
// source configured, an error is returned.
func NewProvider(ctx context.Context, cfg config.Keys) (Provider, error) {
	var providers []Provider
	if cfg.Static != "" {
		s, err := newStatic(cfg.Static)
		if err != nil {
			return nil, fmt.Errorf("static keys: %w", err)
		}
		providers = append(providers, s)
	}
	if cfg.Remote.Endpoint != "" {
		r, err := newRemote(ctx, cfg.Remote)
		if err != nil {
			return nil, fmt.Errorf("remote keys: %w", err)
		}
		providers = append(providers, r)
	}
	switch len(providers) {
	case 0:
		return nil, errors.New("no key source configured")
	case 1:
		return providers[0], nil
	default:
		return merged(providers), nil
	}
}

// static serves a JWKS document parsed eagerly from the filesystem.
type static struct {
	set jwk.Set
}

func newStatic(path string) (Provider, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %q: %w", path, err)
	}
	set, err := jwk.Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("parse jwk: %w", err)
	}
	return &static{set: set}, nil
}

func (s *static) Keys(context.Context) (jwk.Set, error) {
	return s.set, nil
}

// remote serves keys from a JWKS endpoint through a refreshing jwk.Cache.
type remote struct {
	cache *jwk.Cache
	url   string
}

func newRemote(ctx context.Context, cfg config.Remote) (Provider, error) {
	client := httprc.NewClient(httprc.WithHTTPClient(&http.Client{
		Timeout: 30 * time.Second,
	}))
	cache, err := jwk.NewCache(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	opts := []jwk.RegisterOption{}
	if cfg.Interval > 0 {
		opts = append(opts, jwk.WithMinInterval(
			time.Duration(cfg.Interval)*time.Second,
		))
	}

	// Bound the initial fetch so an unreachable endpoint cannot stall
	// startup indefinitely.
	wt, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cache.Register(wt, cfg.Endpoint, opts...); err != nil {
		return nil, fmt.Errorf("register endpoint: %w", err)
	}

	return &remote{cache: cache, url: cfg.Endpoint}, nil
}

func (r *remote) Keys(ctx context.Context) (jwk.Set, error) {
	return r.cache.Lookup(ctx, r.url)
}

// merged aggregates the key sets of several providers into one.
func merged(providers []Provider) Provider {
	return ProviderFunc(func(ctx context.Context) (jwk.Set, error) {
		agg := jwk.NewSet()
		for _, p := range providers {
			set, err := p.Keys(ctx)
			if err != nil {
				return nil, err
			}
			for i := 0; i < set.Len(); i++ {
				key, ok := set.Key(i)
				if !ok {
					continue
				}
				if err := agg.AddKey(key); err != nil {
					return nil, fmt.Errorf("add key: %w", err)
				}
			}
		}
		return agg, nil
	})
}
