// Package chunker converts an arbitrarily-fragmented byte stream into a lazy
// sequence of store-compliant upload parts.
//
// The incoming stream may deliver fragments smaller or larger than the part
// size; the chunker accumulates them so every emitted part is exactly the
// configured size, except the final part which carries the remainder.
package chunker

import (
	"context"
	"io"

	"github.com/objstream/s3sink/internal/pool"
)

// MinPartSize is the minimum part size accepted by the store's multipart
// protocol. Streams shorter than this are routed to the single-put path.
const MinPartSize = 10 * 1024 * 1024

// Part is one contiguous byte range of the logical object. Numbers are
// 1-based and contiguous in the order parts are produced.
type Part struct {
	// Number is the 1-based part number
	Number int32

	// Data is the part payload. It is backed by a pooled buffer; the owner
	// must call Chunker.Release once the store has acknowledged the part.
	Data []byte
}

// Chunker produces a finite, single-pass sequence of Parts from a reader.
// It is not restartable: the underlying byte source is consumed once.
type Chunker struct {
	r       io.Reader
	buffers *pool.PartBuffers
	next    int32
	done    bool
}

// New creates a Chunker that emits parts sized to the given buffer pool.
func New(r io.Reader, buffers *pool.PartBuffers) *Chunker {
	return &Chunker{
		r:       r,
		buffers: buffers,
	}
}

// Next returns the next part of the stream. It blocks until a full part has
// accumulated or the stream ends. The final part may be shorter than the
// part size; a stream whose length is an exact multiple of the part size
// yields no zero-byte tail. io.EOF signals a clean end of the sequence.
func (c *Chunker) Next(ctx context.Context) (Part, error) {
	if c.done {
		return Part{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		c.done = true
		return Part{}, err
	}

	buf := c.buffers.Get()
	n, err := io.ReadFull(c.r, buf)
	switch {
	case err == io.EOF:
		// Stream ended exactly on a part boundary (or was empty).
		c.buffers.Put(buf)
		c.done = true
		return Part{}, io.EOF
	case err == io.ErrUnexpectedEOF:
		c.done = true
		c.next++
		return Part{Number: c.next, Data: buf[:n]}, nil
	case err != nil:
		c.buffers.Put(buf)
		c.done = true
		return Part{}, err
	}

	c.next++
	return Part{Number: c.next, Data: buf}, nil
}

// Release returns a part's buffer to the pool. Call it only after the store
// has acknowledged the part; the payload is invalid afterwards.
func (c *Chunker) Release(p Part) {
	c.buffers.Put(p.Data)
}

// Emitted reports how many parts have been produced so far.
func (c *Chunker) Emitted() int {
	return int(c.next)
}

// PartSize returns the full part size in bytes. Only the final emitted part
// may be shorter than this.
func (c *Chunker) PartSize() int {
	return c.buffers.Size()
}
