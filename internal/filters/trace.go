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
	"net/http"

	"github.com/google/uuid"

	"github.com/fireflyframework/pyfly-sub003/internal/chain"
)

// TraceHeader carries the request id through the relay and upstream.
const TraceHeader = "X-Request-Id"

// Trace propagates a per-request transaction id: an inbound id is kept,
// otherwise a fresh one is minted. The id travels upstream on the
// request and back to the client on the response.
type Trace struct{}

// NewTrace creates the trace filter.
func NewTrace() Trace { return Trace{} }

// Order implements chain.Ordered.
func (Trace) Order() int { return OrderTrace }

// Skip implements chain.Filter. Tracing always runs.
func (Trace) Skip(*http.Request) bool { return false }

// Intercept implements chain.Filter.
func (Trace) Intercept(req *http.Request, next chain.Service) (*http.Response, error) {
	id := req.Header.Get(TraceHeader)
	if id == "" {
		id = uuid.NewString()
		req.Header.Set(TraceHeader, id)
	}
	res, err := next(req)
	if err != nil {
		return nil, err
	}
	if res.Header.Get(TraceHeader) == "" {
		res.Header.Set(TraceHeader, id)
	}
	return res, nil
}
