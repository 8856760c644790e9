package s3sink

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/objstream/s3sink/errors"
	"github.com/objstream/s3sink/internal/chunker"
	"github.com/objstream/s3sink/internal/testutil"
	"github.com/objstream/s3sink/sinktypes"
)

func localDestination(ls *testutil.LocalStackContainer, bucket string) sinktypes.DestinationConfig {
	return sinktypes.DestinationConfig{
		AccessKey:      "test",
		SecretKey:      "test",
		Region:         ls.Region(),
		Bucket:         bucket,
		Endpoint:       ls.Endpoint(),
		ForcePathStyle: true,
	}
}

func TestIntegration_WriteSmallObject(t *testing.T) {
	ctx := context.Background()
	ls := testutil.StartLocalStack(ctx, t)
	require.NoError(t, ls.CreateBucket(ctx, "sink-test"))

	sink, err := New(ctx, localDestination(ls, "sink-test"))
	require.NoError(t, err)
	defer sink.Close()

	data := []byte("hello object store")
	result, err := sink.Write(ctx, "greetings/hello.txt", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Parts)
	assert.Equal(t, int64(len(data)), result.Size)

	out, err := ls.GetObject(ctx, "sink-test", "greetings/hello.txt")
	require.NoError(t, err)
	defer out.Body.Close()

	got, err := io.ReadAll(out.Body)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestIntegration_WriteMultipart(t *testing.T) {
	ctx := context.Background()
	ls := testutil.StartLocalStack(ctx, t)
	require.NoError(t, ls.CreateBucket(ctx, "sink-multipart"))

	sink, err := New(ctx, localDestination(ls, "sink-multipart"), WithConcurrency(3))
	require.NoError(t, err)
	defer sink.Close()

	// Two full parts plus a half-sized remainder.
	data := make([]byte, 2*chunker.MinPartSize+chunker.MinPartSize/2)
	for i := range data {
		data[i] = byte(i % 241)
	}

	result, err := sink.Write(ctx, "bulk/payload.bin", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Parts)
	assert.Equal(t, int64(len(data)), result.Size)

	out, err := ls.GetObject(ctx, "sink-multipart", "bulk/payload.bin")
	require.NoError(t, err)
	defer out.Body.Close()

	got, err := io.ReadAll(out.Body)
	require.NoError(t, err)
	require.Len(t, got, len(data))
	assert.True(t, bytes.Equal(data, got), "object read back must match the written stream")
}

func TestIntegration_WriteEmptyObject(t *testing.T) {
	ctx := context.Background()
	ls := testutil.StartLocalStack(ctx, t)
	require.NoError(t, ls.CreateBucket(ctx, "sink-empty"))

	sink, err := New(ctx, localDestination(ls, "sink-empty"))
	require.NoError(t, err)
	defer sink.Close()

	result, err := sink.Write(ctx, "empty.bin", bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Size)

	out, err := ls.GetObject(ctx, "sink-empty", "empty.bin")
	require.NoError(t, err)
	defer out.Body.Close()

	got, err := io.ReadAll(out.Body)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIntegration_ProbeMissingBucket(t *testing.T) {
	ctx := context.Background()
	ls := testutil.StartLocalStack(ctx, t)

	sink, err := New(ctx, localDestination(ls, "never-created"))
	require.Error(t, err)
	assert.Nil(t, sink)
	assert.True(t, s3errors.IsInvalidConfiguration(err))
	assert.Contains(t, err.Error(), "Bucket does not exist")
}
