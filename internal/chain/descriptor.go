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

package chain

import (
	"github.com/fireflyframework/pyfly-sub003/internal/pattern"
)

// Descriptor associates a filter with its resolved order value and an
// optional pattern gate. Descriptors are the unit the sorter and builder
// operate on; how the filter was authored is invisible to both.
type Descriptor struct {
	// Filter is the interception capability itself.
	Filter Filter

	// Order is the resolved chain position key.
	Order int

	// Patterns optionally gates the filter per request path. A nil set
	// never skips. Evaluated before Filter.Skip; either may bypass the
	// filter for a request.
	Patterns *pattern.Set
}

// Option customizes a Descriptor during registration.
type Option func(*Descriptor)

// WithOrder overrides the order value resolved from the filter.
func WithOrder(order int) Option {
	return func(d *Descriptor) {
		d.Order = order
	}
}

// WithPatterns gates the filter with a compiled pattern set.
func WithPatterns(set *pattern.Set) Option {
	return func(d *Descriptor) {
		d.Patterns = set
	}
}

// Registry collects filter descriptors from any number of registration
// sources. It records registration sequence implicitly, which the stable
// sort uses to break ties between equal order values.
//
// A Registry is not safe for concurrent registration; populate it during
// startup, then derive immutable chains from it.
type Registry struct {
	descriptors []Descriptor
}

// NewRegistry creates an empty filter registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a filter. Its order defaults to OrderOf(f) and may be
// overridden with WithOrder; a pattern gate is attached with WithPatterns.
func (r *Registry) Add(f Filter, opts ...Option) {
	d := Descriptor{
		Filter: f,
		Order:  OrderOf(f),
	}
	for _, opt := range opts {
		opt(&d)
	}
	r.descriptors = append(r.descriptors, d)
}

// Len returns the number of registered filters.
func (r *Registry) Len() int {
	return len(r.descriptors)
}

// Descriptors returns a copy of the registered descriptors in
// registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Build sorts the registered descriptors and assembles the chain entry
// point around the terminal handler.
func (r *Registry) Build(terminal Service) Service {
	return Build(Sort(r.Descriptors()), terminal)
}
