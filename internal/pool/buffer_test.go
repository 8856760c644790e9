package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartBuffers_Get(t *testing.T) {
	p := NewPartBuffers(64)

	buf := p.Get()
	assert.Len(t, buf, 64)
	assert.GreaterOrEqual(t, cap(buf), 64)
}

func TestPartBuffers_Reuse(t *testing.T) {
	p := NewPartBuffers(32)

	buf := p.Get()
	for i := range buf {
		buf[i] = 0xff
	}
	p.Put(buf)

	// A recycled buffer must come back at full length regardless of what the
	// previous owner left in it.
	again := p.Get()
	assert.Len(t, again, 32)
}

func TestPartBuffers_PutRejectsUndersized(t *testing.T) {
	p := NewPartBuffers(128)

	// Should not panic and must not poison the pool.
	p.Put(make([]byte, 16))

	buf := p.Get()
	assert.Len(t, buf, 128)
}

func TestPartBuffers_Size(t *testing.T) {
	assert.Equal(t, 512, NewPartBuffers(512).Size())
}
