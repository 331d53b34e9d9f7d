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

package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fireflyframework/pyfly-sub003/internal/health"
)

func up() health.Checker {
	return health.CheckerFunc(func(context.Context) error { return nil })
}

func down(err error) health.Checker {
	return health.CheckerFunc(func(context.Context) error { return err })
}

func TestRegistryCheck(t *testing.T) {
	t.Run("empty registry is up", func(t *testing.T) {
		r := health.NewRegistry()
		report := r.Check(t.Context())
		assert.Equal(t, health.Up, report.Status)
		assert.Empty(t, report.Checks)
	})

	t.Run("all up", func(t *testing.T) {
		r := health.NewRegistry()
		r.Add("keys", up())
		r.Add("upstream", up())

		report := r.Check(t.Context())
		assert.Equal(t, health.Up, report.Status)
		assert.Len(t, report.Checks, 2)
		assert.Equal(t, health.Up, report.Checks["keys"].Status)
	})

	t.Run("one failure takes the aggregate down", func(t *testing.T) {
		r := health.NewRegistry()
		r.Add("keys", up())
		r.Add("upstream", down(errors.New("connection refused")))

		report := r.Check(t.Context())
		assert.Equal(t, health.Down, report.Status)
		assert.Equal(t, health.Up, report.Checks["keys"].Status)
		assert.Equal(t, health.Down, report.Checks["upstream"].Status)
		assert.Equal(t, "connection refused", report.Checks["upstream"].Error)
	})

	t.Run("a panicking check is contained", func(t *testing.T) {
		r := health.NewRegistry()
		r.Add("keys", up())
		r.Add("broken", health.CheckerFunc(func(context.Context) error {
			panic("nil map write")
		}))

		report := r.Check(t.Context())
		assert.Equal(t, health.Down, report.Status)
		assert.Equal(t, health.Up, report.Checks["keys"].Status)
		assert.Contains(t, report.Checks["broken"].Error, "nil map write")
	})

	t.Run("replacing a checker keeps one entry", func(t *testing.T) {
		r := health.NewRegistry()
		r.Add("keys", down(errors.New("cold")))
		r.Add("keys", up())

		report := r.Check(t.Context())
		assert.Equal(t, health.Up, report.Status)
		assert.Len(t, report.Checks, 1)
	})

	t.Run("checks run concurrently", func(t *testing.T) {
		r := health.NewRegistry()
		slow := health.CheckerFunc(func(context.Context) error {
			time.Sleep(50 * time.Millisecond)
			return nil
		})
		r.Add("a", slow)
		r.Add("b", slow)
		r.Add("c", slow)

		start := time.Now()
		report := r.Check(t.Context())
		assert.Equal(t, health.Up, report.Status)
		assert.Less(t, time.Since(start), 140*time.Millisecond)
	})
}

func TestHandler(t *testing.T) {
	t.Run("up answers 200", func(t *testing.T) {
		r := health.NewRegistry()
		r.Add("keys", up())

		rr := httptest.NewRecorder()
		health.Handler(r)(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

		var report health.Report
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
		assert.Equal(t, health.Up, report.Status)
	})

	t.Run("down answers 503", func(t *testing.T) {
		r := health.NewRegistry()
		r.Add("upstream", down(errors.New("gone")))

		rr := httptest.NewRecorder()
		health.Handler(r)(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		require.Equal(t, http.StatusServiceUnavailable, rr.Code)

		var report health.Report
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
		assert.Equal(t, health.Down, report.Status)
		assert.Equal(t, "gone", report.Checks["upstream"].Error)
	})
}

func TestAlive(t *testing.T) {
	rr := httptest.NewRecorder()
	health.Alive()(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"UP"`)
}

func TestUpstream(t *testing.T) {
	t.Run("reachable backend is up", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(
			res http.ResponseWriter,
			req *http.Request,
		) {
			res.WriteHeader(http.StatusNotFound) // reachable is enough
		}))
		defer srv.Close()

		u, err := url.Parse(srv.URL)
		require.NoError(t, err)
		require.NoError(t, health.NewUpstream(u).Check(t.Context()))
	})

	t.Run("server errors count as down", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(
			res http.ResponseWriter,
			req *http.Request,
		) {
			res.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		u, err := url.Parse(srv.URL)
		require.NoError(t, err)
		err = health.NewUpstream(u).Check(t.Context())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "upstream returned 502")
	})

	t.Run("transport failures count as down", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close() // nothing listens anymore

		u, err := url.Parse(srv.URL)
		require.NoError(t, err)
		require.Error(t, health.NewUpstream(u).Check(t.Context()))
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(
			res http.ResponseWriter,
			req *http.Request,
		) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()

		u, err := url.Parse(srv.URL)
		require.NoError(t, err)
		require.Error(t, health.NewUpstream(u).Check(ctx))
	})
}
