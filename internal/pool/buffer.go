// Package pool provides reuse of part-sized buffers.
//
// Every in-flight part holds a buffer of the full part size, which is large
// enough (10 MiB by default) that reallocating one per part would dominate
// the sink's allocation profile on long streams.
package pool

import (
	"sync"
)

// PartBuffers manages reusable buffers of a fixed part size.
type PartBuffers struct {
	size int
	pool *sync.Pool
}

// NewPartBuffers creates a pool whose buffers have capacity size.
func NewPartBuffers(size int) *PartBuffers {
	return &PartBuffers{
		size: size,
		pool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		},
	}
}

// Get returns a buffer with length equal to the pool's part size.
// The caller is responsible for calling Put to return the buffer to the pool.
func (p *PartBuffers) Get() []byte {
	bufPtr := p.pool.Get().(*[]byte)
	return (*bufPtr)[:p.size]
}

// Put returns a buffer to the pool. Buffers whose capacity no longer matches
// the part size are dropped. The buffer should not be used after calling Put.
func (p *PartBuffers) Put(buf []byte) {
	if cap(buf) < p.size {
		return
	}
	buf = buf[:p.size]
	p.pool.Put(&buf)
}

// Size returns the part size the pool was created with.
func (p *PartBuffers) Size() int {
	return p.size
}
