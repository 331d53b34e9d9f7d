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

// Package token parses and validates bearer tokens. The rest of the relay
// consumes it as an opaque capability: a request goes in, verified claims
// come out.
package token

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/fireflyframework/pyfly-sub003/internal/config"
)

// Header is the request header carrying the bearer token.
const Header = "Authorization"

// scheme is the expected authorization scheme, matched case-insensitively.
const scheme = "Bearer"

// AuthenticationError signals that a request could not be authenticated.
// Challenge is suitable for a WWW-Authenticate response header.
type AuthenticationError struct {
	msg string
	// Challenge describes how the client should authenticate.
	Challenge string
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	return e.msg
}

var (
	// ErrMissingToken indicates that no bearer token was presented.
	ErrMissingToken = &AuthenticationError{
		msg:       "missing bearer token",
		Challenge: scheme,
	}

	// ErrInvalidToken indicates that the presented token failed
	// signature or claim validation.
	ErrInvalidToken = &AuthenticationError{
		msg:       "invalid bearer token",
		Challenge: scheme + ` error="invalid_token"`,
	}
)

// Bearer extracts the bearer token from an Authorization header value.
// The scheme is matched case-insensitively; surrounding whitespace is
// trimmed. It returns an empty string when no token is present.
func Bearer(header string) string {
	s := strings.TrimSpace(header)
	if len(s) <= len(scheme) {
		return ""
	}
	if !strings.EqualFold(s[:len(scheme)], scheme) {
		return ""
	}
	rest := s[len(scheme):]
	if rest[0] != ' ' && rest[0] != '\t' {
		return ""
	}
	return strings.TrimSpace(rest)
}

// Parser authenticates HTTP requests by validating their bearer token.
type Parser interface {
	// Parse extracts and validates the bearer token from req. It returns
	// ErrMissingToken when no token is presented and ErrInvalidToken
	// when validation fails; key lookup failures are returned as-is.
	Parse(req *http.Request) (jwt.Token, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(req *http.Request) (jwt.Token, error)

// Parse implements the Parser interface.
func (f ParserFunc) Parse(req *http.Request) (jwt.Token, error) { return f(req) }

// NewParser wires a Parser from configuration: a key provider built from
// the configured JWKS sources plus issuer, audience, and leeway checks.
func NewParser(ctx context.Context, cfg config.Token) (Parser, error) {
	keys, err := NewProvider(ctx, cfg.Keys)
	if err != nil {
		return nil, fmt.Errorf("create key provider: %w", err)
	}
	return NewParserWithKeys(keys,
		WithIssuer(cfg.Issuer),
		WithAudience(cfg.Audience),
		WithLeeway(time.Duration(cfg.Leeway)*time.Second),
	), nil
}

// ParserOption customizes token validation.
type ParserOption func(*[]jwt.ParseOption)

// WithIssuer requires the token's iss claim to equal iss.
func WithIssuer(iss string) ParserOption {
	return func(opts *[]jwt.ParseOption) {
		if iss != "" {
			*opts = append(*opts, jwt.WithIssuer(iss))
		}
	}
}

// WithAudience requires the token's aud claim to contain aud.
func WithAudience(aud string) ParserOption {
	return func(opts *[]jwt.ParseOption) {
		if aud != "" {
			*opts = append(*opts, jwt.WithAudience(aud))
		}
	}
}

// WithLeeway accepts the given clock skew when checking time claims.
func WithLeeway(d time.Duration) ParserOption {
	return func(opts *[]jwt.ParseOption) {
		if d > 0 {
			*opts = append(*opts, jwt.WithAcceptableSkew(d))
		}
	}
}

// WithClock overrides the time source used for validation.
func WithClock(clock jwt.Clock) ParserOption {
	return func(opts *[]jwt.ParseOption) {
		if clock != nil {
			*opts = append(*opts, jwt.WithClock(clock))
		}
	}
}

// NewParserWithKeys constructs a Parser around an existing key Provider.
func NewParserWithKeys(keys Provider, opts ...ParserOption) Parser {
	cfg := []jwt.ParseOption{
		jwt.WithValidate(true),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &parser{keys: keys, opts: cfg}
}

type parser struct {
	keys Provider
	opts []jwt.ParseOption
}

func (p *parser) Parse(req *http.Request) (jwt.Token, error) {
	raw := Bearer(req.Header.Get(Header))
	if raw == "" {
		return nil, ErrMissingToken
	}
	set, err := p.keys.Keys(req.Context())
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}

	opts := make([]jwt.ParseOption, 0, len(p.opts)+2)
	opts = append(opts, p.opts...)
	opts = append(opts, jwt.WithKeySet(set), jwt.WithContext(req.Context()))

	tok, err := jwt.ParseString(raw, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}
	return tok, nil
}
