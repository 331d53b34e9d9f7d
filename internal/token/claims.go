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

package token

import "github.com/lestrrat-go/jwx/v3/jwt"

// Claim retrieves a claim from tok decoded into type T. The second
// return value reports whether the claim is present and of that type.
func Claim[T any](tok jwt.Token, name string) (T, bool) {
	var v T
	if tok == nil {
		return v, false
	}
	if err := tok.Get(name, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// Subject returns the sub claim, or an empty string when absent.
func Subject(tok jwt.Token) string {
	s, _ := Claim[string](tok, "sub")
	return s
}
