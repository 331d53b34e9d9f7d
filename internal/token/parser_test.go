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

package token_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fireflyframework/pyfly-sub003/internal/config"
	"github.com/fireflyframework/pyfly-sub003/internal/token"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jwks is a single symmetric key ("secret") for signing test tokens.
const jwks = `{"keys":[{"kty":"oct","k":"c2VjcmV0","alg":"HS256","kid":"k1"}]}`

func signingKey(t *testing.T) jwk.Key {
	t.Helper()
	set, err := jwk.Parse([]byte(jwks))
	require.NoError(t, err)
	key, ok := set.Key(0)
	require.True(t, ok)
	return key
}

func sign(t *testing.T, tok jwt.Token) string {
	t.Helper()
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), signingKey(t)))
	require.NoError(t, err)
	return string(signed)
}

func staticParser(t *testing.T, opts ...token.ParserOption) token.Parser {
	t.Helper()
	set, err := jwk.Parse([]byte(jwks))
	require.NoError(t, err)
	keys := token.ProviderFunc(func(context.Context) (jwk.Set, error) {
		return set, nil
	})
	return token.NewParserWithKeys(keys, opts...)
}

func request(auth string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set(token.Header, auth)
	}
	return req
}

func TestBearer(t *testing.T) {
	tests := []struct {
		name string
		auth string
		want string
	}{
		{name: "empty", auth: "", want: ""},
		{name: "spaces", auth: "   ", want: ""},
		{name: "wrong scheme", auth: "Basic abc", want: ""},
		{name: "no token", auth: "Bearer", want: ""},
		{name: "only spaces after", auth: "Bearer    ", want: ""},
		{name: "valid", auth: "Bearer token", want: "token"},
		{name: "case-insensitive", auth: "bearer token", want: "token"},
		{name: "padded", auth: "  Bearer token  ", want: "token"},
		{name: "multiple spaces", auth: "BEARER    token", want: "token"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, token.Bearer(tc.auth))
		})
	}
}

func TestParseMissingToken(t *testing.T) {
	p := staticParser(t)

	_, err := p.Parse(request(""))
	require.ErrorIs(t, err, token.ErrMissingToken)

	_, err = p.Parse(request("Bearer  "))
	require.ErrorIs(t, err, token.ErrMissingToken)
}

func TestParseInvalidToken(t *testing.T) {
	p := staticParser(t)

	_, err := p.Parse(request("Bearer garbage"))
	require.ErrorIs(t, err, token.ErrInvalidToken)

	var authErr *token.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Challenge, "invalid_token")
}

func TestParsePropagatesKeyErrors(t *testing.T) {
	keys := token.ProviderFunc(func(context.Context) (jwk.Set, error) {
		return nil, assert.AnError
	})
	p := token.NewParserWithKeys(keys)

	_, err := p.Parse(request("Bearer whatever"))
	require.ErrorIs(t, err, assert.AnError)
}

func TestParseValidToken(t *testing.T) {
	tok, err := jwt.NewBuilder().
		Subject("alice").
		Issuer("https://issuer.example.com").
		Audience([]string{"relay"}).
		Expiration(time.Now().Add(time.Hour)).
		Claim("scp", []string{"read", "write"}).
		Build()
	require.NoError(t, err)

	p := staticParser(t,
		token.WithIssuer("https://issuer.example.com"),
		token.WithAudience("relay"),
		token.WithLeeway(time.Minute),
	)

	parsed, err := p.Parse(request("Bearer " + sign(t, tok)))
	require.NoError(t, err)
	assert.Equal(t, "alice", token.Subject(parsed))

	scopes, ok := token.Claim[[]string](parsed, "scp")
	require.True(t, ok)
	assert.Equal(t, []string{"read", "write"}, scopes)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	tok, err := jwt.NewBuilder().
		Subject("alice").
		Issuer("https://evil.example.com").
		Expiration(time.Now().Add(time.Hour)).
		Build()
	require.NoError(t, err)

	p := staticParser(t, token.WithIssuer("https://issuer.example.com"))

	_, err = p.Parse(request("Bearer " + sign(t, tok)))
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tok, err := jwt.NewBuilder().
		Subject("alice").
		Expiration(time.Now().Add(-time.Hour)).
		Build()
	require.NoError(t, err)

	p := staticParser(t)

	_, err = p.Parse(request("Bearer " + sign(t, tok)))
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestNewParser(t *testing.T) {
	t.Run("static keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keys.jwks")
		require.NoError(t, os.WriteFile(path, []byte(jwks), 0o600))

		p, err := token.NewParser(t.Context(), config.Token{
			Keys: config.Keys{Static: path},
		})
		require.NoError(t, err)
		require.NotNil(t, p)
	})

	t.Run("missing static file", func(t *testing.T) {
		p, err := token.NewParser(t.Context(), config.Token{
			Keys: config.Keys{
				Static: filepath.Join(t.TempDir(), "missing.jwks"),
			},
		})
		require.Error(t, err)
		assert.Nil(t, p)
		assert.Contains(t, err.Error(), "create key provider")
	})

	t.Run("no key source", func(t *testing.T) {
		_, err := token.NewParser(t.Context(), config.Token{})
		require.Error(t, err)
	})
}
