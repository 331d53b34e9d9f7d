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

package hash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fireflyframework/pyfly-sub003/internal/hash"
)

func TestSign(t *testing.T) {
	s := hash.New("s3cret")

	tag := s.Sign("alice")
	assert.Len(t, tag, 64, "hex-encoded SHA-256 tag")
	assert.Equal(t, tag, s.Sign("alice"), "deterministic for the same input")
	assert.NotEqual(t, tag, s.Sign("bob"))
	assert.NotEqual(t, tag, hash.New("other").Sign("alice"))
}

func TestVerify(t *testing.T) {
	s := hash.New("s3cret")

	tag := s.Sign("alice")
	assert.True(t, s.Verify("alice", tag))
	assert.False(t, s.Verify("bob", tag))
	assert.False(t, s.Verify("alice", "deadbeef"))
}
