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

import "sync"

// maxBufferSize caps the size of buffers kept for reuse.
const maxBufferSize = 256 << 10 // 256 KiB

// bufferPool recycles byte slices for copying response bodies to the
// client, lowering GC pressure on large or streamed responses.
type bufferPool struct{ pool sync.Pool }

// newBufferPool creates a pool handing out buffers of size bytes.
func newBufferPool(size int) *bufferPool {
	return &bufferPool{
		pool: sync.Pool{
			New: func() any {
				// Pool a pointer so storing in the interface-typed
				// pool does not allocate.
				buf := make([]byte, size)
				return &buf
			},
		},
	}
}

func (b *bufferPool) Get() []byte {
	return *b.pool.Get().(*[]byte)
}

// Put returns the buffer unless it grew beyond the size limit.
func (b *bufferPool) Put(buf []byte) {
	if cap(buf) <= maxBufferSize {
		b.pool.Put(&buf)
	}
}
