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

package health

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Upstream probes the proxied backend for reachability. Any HTTP answer
// below 500 counts as up; transport failures and server errors count as
// down.
type Upstream struct {
	url string
	cli *http.Client
}

// NewUpstream creates a reachability check for the given backend URL.
func NewUpstream(target *url.URL) *Upstream {
	return &Upstream{
		url: target.String(),
		cli: &http.Client{Timeout: 2 * time.Second},
	}
}

// Check implements Checker.
func (u *Upstream) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.url, nil)
	if err != nil {
		return err
	}
	res, err := u.cli.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("upstream returned %d", res.StatusCode)
	}
	return nil
}
