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

package rules

import (
	"net/http"

	"github.com/lestrrat-go/jwx/v3/jwt"
)

// Environment is the input context a rule expression evaluates against.
// Expressions reference its fields by name, e.g. `Claims.sub != ""` or
// `Method == "GET" && Path startsWith "/api/"`.
type Environment struct {
	// Claims holds the verified token claims by name.
	Claims map[string]any
	// Method is the HTTP method of the request.
	Method string
	// Path is the request path including the leading slash.
	Path string
}

// NewEnvironment populates an Environment from a verified token and the
// request under evaluation. A nil token yields empty claims, which lets
// deny-all rule sets run on unauthenticated paths.
func NewEnvironment(tok jwt.Token, req *http.Request) Environment {
	claims := make(map[string]any)
	if tok != nil {
		for _, name := range tok.Keys() {
			var v any
			if err := tok.Get(name, &v); err == nil {
				claims[name] = v
			}
		}
	}
	return Environment{
		Claims: claims,
		Method: req.Method,
		Path:   req.URL.Path,
	}
}
