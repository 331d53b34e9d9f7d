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

package filters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/fireflyframework/pyfly-sub003/internal/chain"
	"github.com/fireflyframework/pyfly-sub003/internal/token"
)

// tokenKey is the context key for the verified request token.
type tokenKey struct{}

// NewContext returns a copy of ctx carrying the verified token.
func NewContext(ctx context.Context, tok jwt.Token) context.Context {
	return context.WithValue(ctx, tokenKey{}, tok)
}

// FromContext extracts the verified token attached by the auth filter.
func FromContext(ctx context.Context) (jwt.Token, bool) {
	tok, ok := ctx.Value(tokenKey{}).(jwt.Token)
	return tok, ok
}

// Auth extracts and verifies the bearer credential of a request and
// attaches the resulting security context for later filters and the
// terminal handler. Requests without a valid credential are answered
// with 401 and a WWW-Authenticate challenge; the continuation is never
// invoked for them.
type Auth struct {
	parser token.Parser
	logger *slog.Logger
}

// NewAuth creates the credential extraction filter.
func NewAuth(parser token.Parser, logger *slog.Logger) *Auth {
	return &Auth{
		parser: parser,
		logger: logger.With("name", "filters.Auth"),
	}
}

// Order implements chain.Ordered.
func (*Auth) Order() int { return OrderAuth }

// Skip implements chain.Filter. Exemptions are expressed as path
// patterns on the descriptor.
func (*Auth) Skip(*http.Request) bool { return false }

// Intercept implements chain.Filter.
func (f *Auth) Intercept(req *http.Request, next chain.Service) (*http.Response, error) {
	tok, err := f.parser.Parse(req)
	if err != nil {
		var challenge *token.AuthenticationError
		if errors.As(err, &challenge) {
			f.logger.Debug("authentication failed",
				"path", req.URL.Path,
				"error", err,
			)
			res := errorResponse(req, http.StatusUnauthorized, "unauthorized")
			res.Header.Set("WWW-Authenticate", challenge.Challenge)
			return res, nil
		}
		// Not a credential problem (e.g. the key source failed);
		// surface it as an abnormal failure.
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return next(req.WithContext(NewContext(req.Context(), tok)))
}
