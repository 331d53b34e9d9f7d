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

package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

// Dispatcher is the boundary between net/http and the filter chain. It
// feeds each request into the chain entry and writes the resulting
// response back to the client. An error escaping the chain is reported
// as a generic 500 without leaking any detail.
type Dispatcher struct {
	entry  func(*http.Request) (*http.Response, error)
	pool   *bufferPool
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher around the given chain entry.
func NewDispatcher(
	entry func(*http.Request) (*http.Response, error),
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		entry:  entry,
		pool:   newBufferPool(32 << 10),
		logger: logger.With("name", "server.Dispatcher"),
	}
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	res, err := d.entry(req)
	if err != nil {
		if errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			// The client is gone; there is nobody to answer.
			return
		}
		d.logger.Error("unhandled chain failure",
			"method", req.Method,
			"path", req.URL.Path,
			"error", err,
		)
		http.Error(w,
			http.StatusText(http.StatusInternalServerError),
			http.StatusInternalServerError,
		)
		return
	}
	defer res.Body.Close()

	header := w.Header()
	for name, values := range res.Header {
		for _, value := range values {
			header.Add(name, value)
		}
	}
	w.WriteHeader(res.StatusCode)

	buf := d.pool.Get()
	defer d.pool.Put(buf)
	if _, err := io.CopyBuffer(w, res.Body, buf); err != nil {
		// Headers are already on the wire; all we can do is note it.
		d.logger.Debug("response copy aborted",
			"path", req.URL.Path,
			"error", err,
		)
	}
}
