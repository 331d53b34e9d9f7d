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

	"github.com/fireflyframework/pyfly-sub003/internal/chain"
)

// Headers injects security headers into responses on the unwinding path.
// Headers already set further down the chain (or by the upstream) win.
type Headers struct {
	set map[string]string
}

// NewHeaders creates the security header filter with a conservative
// default header set.
func NewHeaders() *Headers {
	return &Headers{set: map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
		"Cache-Control":          "no-store",
	}}
}

// Order implements chain.Ordered.
func (*Headers) Order() int { return OrderHeaders }

// Skip implements chain.Filter. Gating is left to the path patterns.
func (*Headers) Skip(*http.Request) bool { return false }

// Intercept implements chain.Filter.
func (f *Headers) Intercept(req *http.Request, next chain.Service) (*http.Response, error) {
	res, err := next(req)
	if err != nil {
		return nil, err
	}
	for name, value := range f.set {
		if res.Header.Get(name) == "" {
			res.Header.Set(name, value)
		}
	}
	return res, nil
}
