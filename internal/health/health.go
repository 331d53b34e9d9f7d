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

// Package health aggregates named status checks into a single readiness
// verdict. Checks run concurrently; a panicking or failing check marks
// only its own indicator as down, never the aggregation itself.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// Status is the verdict of a single check or of the aggregate.
type Status string

const (
	// Up means the component is operational.
	Up Status = "UP"
	// Down means the component failed its check.
	Down Status = "DOWN"
)

// Checker reports the momentary status of one component. A nil error
// means up; any error means down.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a plain function to the Checker interface.
type CheckerFunc func(ctx context.Context) error

// Check implements Checker.
func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// Detail is the reported state of a single named check.
type Detail struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report is the aggregate of all registered checks. The overall status
// is Down as soon as any single check is Down.
type Report struct {
	Status Status            `json:"status"`
	Checks map[string]Detail `json:"checks,omitempty"`
}

// Registry holds named checkers and fans a probe out to all of them.
// The zero value is unusable; create one with NewRegistry.
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewRegistry creates an empty check registry.
func NewRegistry() *Registry {
	return &Registry{checkers: make(map[string]Checker)}
}

// Add registers a checker under the given name. Registering a second
// checker under an existing name replaces the first.
func (r *Registry) Add(name string, c Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = c
}

// Check runs all registered checkers concurrently and aggregates their
// results. A checker that panics is reported as Down with the panic
// value as its error; with no checkers registered the aggregate is Up.
func (r *Registry) Check(ctx context.Context) Report {
	r.mu.RLock()
	checkers := make(map[string]Checker, len(r.checkers))
	for name, c := range r.checkers {
		checkers[name] = c
	}
	r.mu.RUnlock()

	report := Report{
		Status: Up,
		Checks: make(map[string]Detail, len(checkers)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, c := range checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			detail := run(ctx, c)
			mu.Lock()
			defer mu.Unlock()
			report.Checks[name] = detail
			if detail.Status == Down {
				report.Status = Down
			}
		}()
	}
	wg.Wait()
	return report
}

// run executes a single checker, containing panics.
func run(ctx context.Context, c Checker) (detail Detail) {
	defer func() {
		if v := recover(); v != nil {
			detail = Detail{
				Status: Down,
				Error:  fmt.Sprintf("panic: %v", v),
			}
		}
	}()
	if err := c.Check(ctx); err != nil {
		return Detail{Status: Down, Error: err.Error()}
	}
	return Detail{Status: Up}
}

// Handler serves the aggregate report as JSON, answering 200 when the
// overall status is Up and 503 otherwise.
func Handler(r *Registry) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		report := r.Check(req.Context())
		code := http.StatusOK
		if report.Status == Down {
			code = http.StatusServiceUnavailable
		}
		res.Header().Set("Content-Type", "application/json")
		res.WriteHeader(code)
		_ = json.NewEncoder(res).Encode(report)
	}
}

// Alive serves the liveness probe: the process answers, so it is alive.
func Alive() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		res.Header().Set("Content-Type", "application/json")
		res.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(res).Encode(Report{Status: Up})
	}
}
