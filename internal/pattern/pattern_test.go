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

package pattern_test

import (
	"testing"

	"github.com/fireflyframework/pyfly-sub003/internal/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"*", "", true},
		{"*", "/api/orders", true},
		{"", "", true},
		{"", "/", false},
		{"/api/*", "/api/", true},
		{"/api/*", "/api/orders/42", true}, // '*' crosses separators
		{"/api/*", "/other", false},
		{"/api/?", "/api/a", true},
		{"/api/?", "/api/ab", false},
		{"/v[12]/*", "/v1/users", true},
		{"/v[12]/*", "/v3/users", false},
		{"/v[!12]/*", "/v3/users", true},
		{"/files/*.json", "/files/a/b.json", true},
		{"/Api/*", "/api/x", false}, // case-sensitive
	}
	for _, tt := range tests {
		got, err := pattern.Matches(tt.pattern, tt.path)
		require.NoError(t, err)
		assert.Equalf(t, tt.want, got, "pattern %q path %q", tt.pattern, tt.path)
	}
}

func TestCompileRejectsMalformed(t *testing.T) {
	_, err := pattern.Compile("/api/[")
	require.Error(t, err)

	_, err = pattern.CompileSet([]string{"/ok/*"}, []string{"/bad/["})
	require.Error(t, err)
}

func TestSetSkip(t *testing.T) {
	set := func(include, exclude []string) *pattern.Set {
		s, err := pattern.CompileSet(include, exclude)
		require.NoError(t, err)
		return s
	}

	t.Run("no patterns never skips", func(t *testing.T) {
		s := set(nil, nil)
		assert.False(t, s.Skip("/x"))
		assert.False(t, s.Skip(""))
	})

	t.Run("nil set never skips", func(t *testing.T) {
		var s *pattern.Set
		assert.False(t, s.Skip("/x"))
	})

	t.Run("exclude narrows include", func(t *testing.T) {
		s := set([]string{"/api/*"}, []string{"/api/public/*"})
		assert.True(t, s.Skip("/api/public/data"))
		assert.False(t, s.Skip("/api/orders"))
	})

	t.Run("outside include skips", func(t *testing.T) {
		s := set([]string{"/api/*"}, nil)
		assert.True(t, s.Skip("/other"))
	})

	t.Run("exclude alone leaves everything else", func(t *testing.T) {
		s := set(nil, []string{"/internal/*"})
		assert.True(t, s.Skip("/internal/metrics"))
		assert.False(t, s.Skip("/api/orders"))
	})
}
