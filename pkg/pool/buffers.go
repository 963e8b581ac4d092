// Package pool reuses render buffers across the hot render path.
package pool

import (
	"bytes"
	"sync"
)

// MaxPooledBufferSize is the largest buffer capacity kept for reuse. A full
// page render comfortably fits.
const MaxPooledBufferSize = 256 * 1024

var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// GetBuffer retrieves a buffer from the pool, reset for use.
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool. Oversized buffers are dropped.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > MaxPooledBufferSize {
		return
	}
	bufferPool.Put(buf)
}
