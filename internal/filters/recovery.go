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
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/fireflyframework/pyfly-sub003/internal/chain"
)

// Recovery converts panics and abnormal failures from the rest of the
// chain into a generic JSON 500 response. It sits at the earliest
// built-in slot, so no failure escapes past it to the dispatcher.
//
// Request cancellation is not recovered: when the client is gone there
// is nobody left to read an error body.
type Recovery struct {
	logger *slog.Logger
}

// NewRecovery creates the recovery filter.
func NewRecovery(logger *slog.Logger) *Recovery {
	return &Recovery{logger: logger.With("name", "filters.Recovery")}
}

// Order implements chain.Ordered.
func (*Recovery) Order() int { return OrderRecovery }

// Skip implements chain.Filter. Recovery always runs.
func (*Recovery) Skip(*http.Request) bool { return false }

// Intercept implements chain.Filter.
func (f *Recovery) Intercept(req *http.Request, next chain.Service) (res *http.Response, err error) {
	defer func() {
		if v := recover(); v != nil {
			f.logger.Error("unhandled panic",
				"method", req.Method,
				"path", req.URL.Path,
				"panic", v,
				"stack", string(debug.Stack()),
			)
			res, err = errorResponse(req, http.StatusInternalServerError, "internal server error"), nil
		}
	}()

	res, err = next(req)
	if err == nil {
		return res, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	f.logger.Error("request failed",
		"method", req.Method,
		"path", req.URL.Path,
		"error", err,
	)
	return errorResponse(req, http.StatusInternalServerError, "internal server error"), nil
}
