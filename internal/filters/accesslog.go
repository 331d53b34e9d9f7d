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
	"log/slog"
	"net/http"
	"time"

	"github.com/fireflyframework/pyfly-sub003/internal/chain"
)

// AccessLog records one structured log line per request with the status
// and the wall-clock time spent in the rest of the chain. Failures are
// not logged here; they pass through untouched for the recovery filter
// to report.
type AccessLog struct {
	logger *slog.Logger
}

// NewAccessLog creates the request logging filter.
func NewAccessLog(logger *slog.Logger) *AccessLog {
	return &AccessLog{logger: logger.With("name", "filters.AccessLog")}
}

// Order implements chain.Ordered.
func (*AccessLog) Order() int { return OrderAccessLog }

// Skip implements chain.Filter. Gating is left to the path patterns.
func (*AccessLog) Skip(*http.Request) bool { return false }

// Intercept implements chain.Filter.
func (f *AccessLog) Intercept(req *http.Request, next chain.Service) (*http.Response, error) {
	start := time.Now()
	res, err := next(req)
	if err != nil {
		return nil, err
	}
	f.logger.Info("request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", res.StatusCode,
		"elapsed", time.Since(start),
		"id", req.Header.Get(TraceHeader),
	)
	return res, nil
}
