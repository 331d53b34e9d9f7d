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
	"strings"

	"github.com/fireflyframework/pyfly-sub003/internal/chain"
	"github.com/fireflyframework/pyfly-sub003/internal/hash"
	"github.com/fireflyframework/pyfly-sub003/internal/rules"
)

// Headers carrying the authorized principal to the upstream.
const (
	// UserHeader names the authenticated principal.
	UserHeader = "X-Auth-Request-User"
	// RolesHeader lists the granted roles, comma-separated.
	RolesHeader = "X-Auth-Request-Roles"
	// TokenHeader carries the HMAC signature of the principal when an
	// upstream secret is configured.
	TokenHeader = "X-Auth-Request-Token"
)

// Authz evaluates the authorization rules against the security context
// established by the auth filter. A denied request is answered with 403
// without invoking the continuation; a granted one is forwarded with the
// principal stamped onto the request headers.
type Authz struct {
	engine *rules.Engine
	signer *hash.Signer
}

// NewAuthz creates the authorization filter. A nil signer disables
// principal signing.
func NewAuthz(engine *rules.Engine, signer *hash.Signer) *Authz {
	return &Authz{engine: engine, signer: signer}
}

// Order implements chain.Ordered.
func (*Authz) Order() int { return OrderAuthz }

// Skip implements chain.Filter.
func (*Authz) Skip(*http.Request) bool { return false }

// Intercept implements chain.Filter.
func (f *Authz) Intercept(req *http.Request, next chain.Service) (*http.Response, error) {
	tok, _ := FromContext(req.Context())
	res, err := f.engine.Eval(rules.NewEnvironment(tok, req))
	if err != nil {
		return nil, err
	}
	if !res.Allow {
		return errorResponse(req, http.StatusForbidden, "forbidden"), nil
	}

	// Never trust client-supplied principal headers.
	req.Header.Del(UserHeader)
	req.Header.Del(RolesHeader)
	req.Header.Del(TokenHeader)
	if res.User != "" {
		req.Header.Set(UserHeader, res.User)
		if len(res.Roles) > 0 {
			req.Header.Set(RolesHeader, strings.Join(res.Roles, ","))
		}
		if f.signer != nil {
			req.Header.Set(TokenHeader, f.signer.Sign(res.User))
		}
	}
	return next(req)
}
