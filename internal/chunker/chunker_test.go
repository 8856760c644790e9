package chunker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objstream/s3sink/internal/pool"
)

const testPartSize = 10

// drain pulls every part from the chunker, returning sizes and the
// reassembled payload.
func drain(t *testing.T, c *Chunker) (sizes []int, payload []byte) {
	t.Helper()
	for {
		part, err := c.Next(context.Background())
		if err == io.EOF {
			return sizes, payload
		}
		require.NoError(t, err)
		assert.Equal(t, int32(len(sizes)+1), part.Number, "part numbers must be contiguous from 1")
		sizes = append(sizes, len(part.Data))
		payload = append(payload, part.Data...)
		c.Release(part)
	}
}

func TestChunker_PartSizes(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		wantSizes []int
	}{
		{
			name:      "empty stream yields zero parts",
			length:    0,
			wantSizes: nil,
		},
		{
			name:      "stream shorter than part size yields one short part",
			length:    4,
			wantSizes: []int{4},
		},
		{
			name:      "exactly one part",
			length:    testPartSize,
			wantSizes: []int{testPartSize},
		},
		{
			name:      "exact multiple yields no zero-byte tail",
			length:    3 * testPartSize,
			wantSizes: []int{testPartSize, testPartSize, testPartSize},
		},
		{
			name:      "remainder goes into a short final part",
			length:    2*testPartSize + 5,
			wantSizes: []int{testPartSize, testPartSize, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := testPayload(tt.length)
			c := New(bytes.NewReader(data), pool.NewPartBuffers(testPartSize))

			sizes, payload := drain(t, c)

			assert.Equal(t, tt.wantSizes, sizes)
			assert.Equal(t, data, payload, "concatenated parts must reproduce the stream")
			assert.Equal(t, len(tt.wantSizes), c.Emitted())
		})
	}
}

func TestChunker_FragmentedInput(t *testing.T) {
	// Deliver the stream one byte at a time; parts must still come out
	// full-sized.
	data := testPayload(2*testPartSize + 3)
	c := New(iotest.OneByteReader(bytes.NewReader(data)), pool.NewPartBuffers(testPartSize))

	sizes, payload := drain(t, c)

	assert.Equal(t, []int{testPartSize, testPartSize, 3}, sizes)
	assert.Equal(t, data, payload)
}

func TestChunker_SinglePass(t *testing.T) {
	c := New(bytes.NewReader(testPayload(testPartSize)), pool.NewPartBuffers(testPartSize))

	_, err := c.Next(context.Background())
	require.NoError(t, err)
	_, err = c.Next(context.Background())
	require.Equal(t, io.EOF, err)

	// The sequence is not restartable.
	_, err = c.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestChunker_ReaderError(t *testing.T) {
	readErr := errors.New("upstream failed")
	c := New(iotest.ErrReader(readErr), pool.NewPartBuffers(testPartSize))

	_, err := c.Next(context.Background())
	assert.ErrorIs(t, err, readErr)

	// After a fault the sequence is over.
	_, err = c.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestChunker_ErrorMidStream(t *testing.T) {
	readErr := errors.New("connection reset")
	data := testPayload(testPartSize)
	r := io.MultiReader(bytes.NewReader(data), iotest.ErrReader(readErr))
	c := New(r, pool.NewPartBuffers(testPartSize))

	part, err := c.Next(context.Background())
	require.NoError(t, err)
	assert.Len(t, part.Data, testPartSize)
	c.Release(part)

	_, err = c.Next(context.Background())
	assert.ErrorIs(t, err, readErr)
}

func TestChunker_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(bytes.NewReader(testPayload(testPartSize)), pool.NewPartBuffers(testPartSize))
	_, err := c.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChunker_PartSize(t *testing.T) {
	c := New(bytes.NewReader(nil), pool.NewPartBuffers(testPartSize))
	assert.Equal(t, testPartSize, c.PartSize())
}

// testPayload builds a deterministic byte pattern so reordering bugs show up
// in the round-trip comparison.
func testPayload(n int) []byte {
	if n == 0 {
		return nil
	}
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}
