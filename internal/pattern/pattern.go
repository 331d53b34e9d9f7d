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

// Package pattern matches request paths against glob expressions.
//
// Patterns follow conventional glob grammar: '*' matches any run of
// characters including the empty string and path separators, '?' matches
// exactly one character, and '[...]' matches one character from a set,
// with support for ranges and negation. Matching is case-sensitive and
// anchored; the entire path must be consumed by the pattern.
package pattern

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Pattern is a compiled glob expression.
type Pattern struct {
	src string
	g   glob.Glob
}

// Compile parses src into a Pattern. A malformed glob is reported here,
// at configuration time, never during matching.
func Compile(src string) (Pattern, error) {
	// No separator runes: '*' must match across '/' as well.
	g, err := glob.Compile(src)
	if err != nil {
		return Pattern{}, fmt.Errorf("invalid glob pattern %q: %w", src, err)
	}
	return Pattern{src: src, g: g}, nil
}

// MustCompile is like Compile but panics on a malformed pattern.
// Intended for patterns hardcoded by the host application.
func MustCompile(src string) Pattern {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether path is fully matched by the pattern.
func (p Pattern) Match(path string) bool {
	if p.g == nil {
		// The zero Pattern behaves like the empty glob: it matches
		// only the empty path.
		return path == ""
	}
	return p.g.Match(path)
}

// String returns the pattern source text.
func (p Pattern) String() string {
	return p.src
}

// Matches compiles pattern and evaluates it against path. Callers on a
// hot path should compile once and reuse the Pattern instead.
func Matches(pattern, path string) (bool, error) {
	p, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return p.Match(path), nil
}

// Set pairs include and exclude patterns to gate a filter per request.
//
// An empty include list means "match all paths"; a non-empty list requires
// at least one include to match. Any matching exclude always wins over an
// include match: excludes narrow, never widen.
type Set struct {
	include []Pattern
	exclude []Pattern
}

// CompileSet compiles the given include and exclude sources into a Set.
// It fails on the first malformed pattern.
func CompileSet(include, exclude []string) (*Set, error) {
	s := &Set{}
	for _, src := range include {
		p, err := Compile(src)
		if err != nil {
			return nil, fmt.Errorf("include: %w", err)
		}
		s.include = append(s.include, p)
	}
	for _, src := range exclude {
		p, err := Compile(src)
		if err != nil {
			return nil, fmt.Errorf("exclude: %w", err)
		}
		s.exclude = append(s.exclude, p)
	}
	return s, nil
}

// Skip reports whether a filter gated by this Set must be bypassed for
// the given request path:
//
//  1. If includes are configured and none match, skip.
//  2. If any exclude matches, skip.
//  3. Otherwise, run.
//
// A nil Set never skips.
func (s *Set) Skip(path string) bool {
	if s == nil {
		return false
	}
	if len(s.include) > 0 && !matchAny(s.include, path) {
		return true
	}
	return matchAny(s.exclude, path)
}

func matchAny(patterns []Pattern, path string) bool {
	for _, p := range patterns {
		if p.Match(path) {
			return true
		}
	}
	return false
}
