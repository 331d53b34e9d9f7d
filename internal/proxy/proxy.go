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

// Package proxy forwards requests to the configured upstream. The
// Forwarder is the terminal service of the filter chain: it rewrites
// the request URL onto the backend, attaches the usual forwarding
// headers, and maps transport failures to gateway statuses.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fireflyframework/pyfly-sub003/internal/config"
)

// hopByHop are the connection-scoped headers that must not travel past
// a proxy (RFC 9110 section 7.6.1).
var hopByHop = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Forwarder relays requests to a single upstream host.
type Forwarder struct {
	target *url.URL
	rt     http.RoundTripper
}

// New creates a Forwarder for the configured upstream.
func New(cfg config.Upstream) (*Forwarder, error) {
	target, err := url.Parse(cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream target: %w", err)
	}
	return &Forwarder{
		target: target,
		rt:     transport(cfg),
	}, nil
}

// transport tunes the upstream connection pool.
func transport(cfg config.Upstream) *http.Transport {
	dial := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	t := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dial.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}
	if cfg.ResponseHeaderTimeout > 0 {
		t.ResponseHeaderTimeout = time.Duration(cfg.ResponseHeaderTimeout) * time.Second
	}
	return t
}

// Target returns the upstream base URL.
func (f *Forwarder) Target() *url.URL { return f.target }

// Forward relays the request to the upstream and returns its response.
// It satisfies the service signature expected at the end of the chain.
// Upstream timeouts map to 504 and other transport failures to 502; a
// canceled or expired request context propagates as an error.
func (f *Forwarder) Forward(req *http.Request) (*http.Response, error) {
	out := f.rewrite(req)
	res, err := f.rt.RoundTrip(out)
	if err != nil {
		// A dead request context is the caller's failure, not the
		// upstream's; propagate it instead of synthesizing a response
		// nobody will read.
		if errors.Is(err, context.Canceled) || req.Context().Err() != nil {
			return nil, err
		}
		code := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			code = http.StatusGatewayTimeout
		}
		return unavailable(req, code), nil
	}
	for _, name := range hopByHop {
		res.Header.Del(name)
	}
	return res, nil
}

// rewrite prepares the outbound request: URL onto the target, forwarded
// headers set, credentials and hop-by-hop headers stripped.
func (f *Forwarder) rewrite(req *http.Request) *http.Request {
	out := req.Clone(req.Context())
	out.URL.Scheme = f.target.Scheme
	out.URL.Host = f.target.Host
	out.URL.Path = joinPath(f.target.Path, req.URL.Path)
	out.Host = ""       // use the target host
	out.RequestURI = "" // client requests must not set it
	out.Close = false

	for _, name := range hopByHop {
		out.Header.Del(name)
	}
	// Access tokens are the gateway's business, not the upstream's.
	out.Header.Del("Authorization")

	out.Header.Set("X-Forwarded-Host", req.Host)
	if ip, _, err := net.SplitHostPort(req.RemoteAddr); err == nil && ip != "" {
		out.Header.Add("X-Forwarded-For", ip)
	}
	if out.Header.Get("X-Forwarded-Proto") == "" {
		scheme := "http"
		if req.TLS != nil {
			scheme = "https"
		}
		out.Header.Set("X-Forwarded-Proto", scheme)
	}
	return out
}

// joinPath concatenates the target base path and the request path with
// exactly one slash between them.
func joinPath(base, path string) string {
	switch {
	case base == "":
		return path
	case strings.HasSuffix(base, "/") && strings.HasPrefix(path, "/"):
		return base + path[1:]
	case !strings.HasSuffix(base, "/") && !strings.HasPrefix(path, "/"):
		return base + "/" + path
	default:
		return base + path
	}
}

// unavailable builds the gateway failure response.
func unavailable(req *http.Request, code int) *http.Response {
	text := http.StatusText(code)
	header := http.Header{}
	header.Set("Content-Type", "text/plain; charset=utf-8")
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", code, text),
		StatusCode:    code,
		Proto:         req.Proto,
		ProtoMajor:    req.ProtoMajor,
		ProtoMinor:    req.ProtoMinor,
		Header:        header,
		Body:          http.NoBody,
		ContentLength: 0,
		Request:       req,
	}
}
