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

// Package chain composes an ordered set of filters around a terminal
// handler into a single request/response entry point.
//
// Filters are registered in any order and sorted by their order value
// before the chain is assembled; lower values run earlier on the inbound
// path and later on the outbound path. A filter may bypass itself for a
// request, short-circuit the chain by producing a response without
// delegating, or rewrite the response bubbling back up.
//
// A built chain is immutable. When the filter set or any order value
// changes, the chain must be rebuilt and republished; there is no
// incremental update.
package chain

import "net/http"

// Service is a callable that turns a request into a response. It is used
// uniformly for the terminal handler, for continuations handed to
// filters, and for the entry point produced by Build.
//
// A non-nil error signals abnormal failure. The chain never swallows
// such errors; each enclosing filter observes the failure as its
// continuation call failing, and the dispatcher boundary translates
// whatever reaches it into a generic error response.
type Service func(req *http.Request) (*http.Response, error)

// Filter is a single unit of request/response interception.
type Filter interface {
	// Skip reports whether this filter must be bypassed for req.
	// A bypassed filter is not charged any pre or post work; the
	// request proceeds directly to the rest of the chain.
	Skip(req *http.Request) bool

	// Intercept handles req. Calling next delegates to the remaining
	// filters and the terminal handler; not calling it short-circuits
	// the chain with the returned response.
	Intercept(req *http.Request, next Service) (*http.Response, error)
}

// Func adapts a bare intercept function into a Filter that never skips.
type Func func(req *http.Request, next Service) (*http.Response, error)

// Skip implements Filter. It always runs the filter.
func (Func) Skip(*http.Request) bool { return false }

// Intercept implements Filter.
func (f Func) Intercept(req *http.Request, next Service) (*http.Response, error) {
	return f(req, next)
}

// Build assembles the entry point from filters sorted in ascending order
// and a terminal handler. It wraps the terminal in reverse: the last
// descriptor is folded in first, so the first (lowest order) filter ends
// up outermost, running first inbound and last outbound.
//
// Construction is a one-shot operation; the returned Service holds no
// mutable state and may be invoked concurrently.
func Build(sorted []Descriptor, terminal Service) Service {
	next := terminal
	for i := len(sorted) - 1; i >= 0; i-- {
		next = wrap(sorted[i], next)
	}
	return next
}

// wrap closes over one descriptor and the downstream continuation.
func wrap(d Descriptor, next Service) Service {
	f, gate := d.Filter, d.Patterns
	return func(req *http.Request) (*http.Response, error) {
		if gate.Skip(req.URL.Path) || f.Skip(req) {
			return next(req)
		}
		return f.Intercept(req, next)
	}
}
