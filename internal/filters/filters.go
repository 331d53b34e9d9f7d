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

// Package filters carries the built-in filter set of the relay.
//
// Built-ins occupy a reserved order range below the user baseline, so
// they always run before user-supplied filters. Slots are spaced by 100
// to leave room for future built-ins without renumbering anything.
package filters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/fireflyframework/pyfly-sub003/internal/chain"
	"github.com/fireflyframework/pyfly-sub003/internal/config"
	"github.com/fireflyframework/pyfly-sub003/internal/hash"
	"github.com/fireflyframework/pyfly-sub003/internal/pattern"
	"github.com/fireflyframework/pyfly-sub003/internal/rules"
	"github.com/fireflyframework/pyfly-sub003/internal/token"
)

// Reserved order slots of the built-in filter set.
const (
	OrderRecovery  = chain.Highest + 100
	OrderTrace     = chain.Highest + 200
	OrderAccessLog = chain.Highest + 300
	OrderHeaders   = chain.Highest + 400
	OrderAuth      = chain.Highest + 500
	OrderAuthz     = chain.Highest + 600
)

// Options supplies the dependencies of the built-in filter set.
type Options struct {
	// Logger receives recovery and access log records.
	Logger *slog.Logger
	// Parser authenticates requests; nil disables the auth filter.
	Parser token.Parser
	// Engine authorizes requests; nil disables the authz filter.
	Engine *rules.Engine
	// Secret, when non-empty, HMAC-signs the stamped principal headers.
	Secret string
	// Gates holds the per-filter path patterns from configuration.
	Gates config.Filters
}

// Register adds the built-in filters to the registry. Path gates are
// compiled here, so a malformed pattern fails startup rather than a
// request.
func Register(r *chain.Registry, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Add(NewRecovery(logger))
	r.Add(NewTrace())

	logGate, err := gate(opts.Gates.AccessLog)
	if err != nil {
		return fmt.Errorf("accessLog gate: %w", err)
	}
	r.Add(NewAccessLog(logger), chain.WithPatterns(logGate))

	headerGate, err := gate(opts.Gates.Headers)
	if err != nil {
		return fmt.Errorf("headers gate: %w", err)
	}
	r.Add(NewHeaders(), chain.WithPatterns(headerGate))

	if opts.Parser != nil {
		authGate, err := gate(opts.Gates.Auth)
		if err != nil {
			return fmt.Errorf("auth gate: %w", err)
		}
		r.Add(NewAuth(opts.Parser, logger), chain.WithPatterns(authGate))
		if opts.Engine != nil {
			var signer *hash.Signer
			if opts.Secret != "" {
				signer = hash.New(opts.Secret)
			}
			// The authz filter shares the auth gate: a path exempt
			// from authentication has no claims to authorize.
			r.Add(NewAuthz(opts.Engine, signer), chain.WithPatterns(authGate))
		}
	}
	return nil
}

func gate(g config.Gate) (*pattern.Set, error) {
	if len(g.Include) == 0 && len(g.Exclude) == 0 {
		return nil, nil
	}
	return pattern.CompileSet(g.Include, g.Exclude)
}

// errorResponse builds a JSON error response for a short-circuit.
func errorResponse(req *http.Request, code int, msg string) *http.Response {
	body, _ := json.Marshal(map[string]any{
		"status": code,
		"error":  msg,
	})
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", code, http.StatusText(code)),
		StatusCode:    code,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
