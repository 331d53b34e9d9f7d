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
	"cmp"
	"math"
	"slices"
)

const (
	// Highest is the most urgent order value a filter can take. Built-in
	// filters occupy Highest plus an offset, so they always precede
	// user-supplied filters.
	Highest = math.MinInt32

	// Lowest is the least urgent order value a filter can take.
	Lowest = math.MaxInt32

	// Default is the baseline assigned to filters that declare no order.
	Default = 0
)

// Ordered is implemented by filters that declare their own order value.
type Ordered interface {
	// Order returns the chain position key; lower runs earlier inbound
	// and later outbound.
	Order() int
}

// OrderOf resolves the order value for a filter: the declared value if
// the filter implements Ordered, otherwise Default.
func OrderOf(f Filter) int {
	if o, ok := f.(Ordered); ok {
		return o.Order()
	}
	return Default
}

// Sort returns the descriptors in ascending order. The sort is stable:
// descriptors sharing an order value keep their relative registration
// order, so sorting the same input twice yields the same output and
// sorting an already-sorted list is a no-op. The input is not modified.
func Sort(descriptors []Descriptor) []Descriptor {
	sorted := slices.Clone(descriptors)
	slices.SortStableFunc(sorted, func(a, b Descriptor) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return sorted
}
