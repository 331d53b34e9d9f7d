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

// Package server hosts the HTTP listener. Probe endpoints answer
// directly from the mux; everything else passes through the dispatcher
// into the filter chain.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fireflyframework/pyfly-sub003/internal/config"
	"github.com/fireflyframework/pyfly-sub003/internal/health"
)

// Server wraps an http.Server around the dispatcher and the health
// endpoints.
type Server struct {
	srv *http.Server
	mux *http.ServeMux
}

// New constructs a Server for the given configuration. The health
// probes are served outside the filter chain so that a broken chain or
// key source never blinds the orchestrator.
func New(cfg config.Server, dispatch http.Handler, checks *health.Registry) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", health.Alive())
	mux.HandleFunc("HEAD /healthz", health.Alive())
	mux.HandleFunc("GET /readyz", health.Handler(checks))
	mux.HandleFunc("HEAD /readyz", health.Handler(checks))

	mux.Handle("/", dispatch)

	return &Server{
		mux: mux,
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:           mux,
			ReadTimeout:       seconds(cfg.ReadTimeout, 30*time.Second),
			ReadHeaderTimeout: seconds(cfg.ReadHeaderTimeout, 10*time.Second),
			WriteTimeout:      0, // allow streaming responses
			IdleTimeout:       seconds(cfg.IdleTimeout, 90*time.Second),
			MaxHeaderBytes:    headerBytes(cfg.MaxHeaderBytes),
		},
	}
}

func headerBytes(n int) int {
	if n <= 0 {
		return 1 << 16 // 64 KiB
	}
	return n
}

func seconds(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

// Handler exposes the routing mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Start runs the listener and blocks until the server stops. It
// returns nil on graceful shutdown, the terminal error otherwise.
func (s *Server) Start() error {
	err := s.srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown attempts a graceful server shutdown within ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
