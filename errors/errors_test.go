package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	base := stderrors.New("boom")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "bucket and key",
			err:  NewObjectError("write", "my-bucket", "path/file.txt", base),
			want: "s3sink.write my-bucket/path/file.txt: boom",
		},
		{
			name: "bucket only",
			err:  NewBucketError("probe", "my-bucket", base),
			want: "s3sink.probe bucket my-bucket: boom",
		},
		{
			name: "key only",
			err:  NewError("write", base).WithKey("file.txt"),
			want: "s3sink.write object file.txt: boom",
		},
		{
			name: "op only",
			err:  NewError("close", base),
			want: "s3sink.close: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	base := stderrors.New("boom")
	err := NewObjectError("write", "bucket", "key", base)

	assert.ErrorIs(t, err, base)
	assert.Equal(t, base, stderrors.Unwrap(err))
}

func TestError_WithMessage(t *testing.T) {
	err := NewBucketError("probe", "my-bucket", ErrInvalidConfiguration).
		WithMessage("Bucket does not exist")

	assert.Contains(t, err.Error(), "Bucket does not exist")
	assert.ErrorIs(t, err, ErrInvalidConfiguration, "the sentinel must survive message wrapping")
}

func TestError_WithConfig(t *testing.T) {
	err := NewBucketError("probe", "my-bucket", ErrAccessDenied).
		WithConfig("bucket=my-bucket region=eu-west-1 accessKey=**** secretKey=****")

	assert.Equal(t,
		"s3sink.probe bucket my-bucket: s3sink: access denied "+
			"[bucket=my-bucket region=eu-west-1 accessKey=**** secretKey=****]",
		err.Error())
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestError_WithContext(t *testing.T) {
	err := NewError("write", stderrors.New("boom")).
		WithBucket("my-bucket").
		WithKey("file.txt")

	assert.Equal(t, "my-bucket", err.Bucket)
	assert.Equal(t, "file.txt", err.Key)
}

func TestSentinelHelpers(t *testing.T) {
	tests := []struct {
		name  string
		check func(error) bool
		err   error
	}{
		{name: "invalid configuration", check: IsInvalidConfiguration, err: ErrInvalidConfiguration},
		{name: "access denied", check: IsAccessDenied, err: ErrAccessDenied},
		{name: "bucket not found", check: IsBucketNotFound, err: ErrBucketNotFound},
		{name: "invalid input", check: IsInvalidInput, err: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := NewBucketError("op", "bucket", tt.err).WithMessage("context")
			assert.True(t, tt.check(wrapped))
			assert.False(t, tt.check(stderrors.New("unrelated")))
		})
	}
}

func TestErrorAs(t *testing.T) {
	wrapped := NewObjectError("write", "bucket", "key", ErrInvalidInput)

	var opErr *Error
	require.ErrorAs(t, error(wrapped), &opErr)
	assert.Equal(t, "write", opErr.Op)
}
