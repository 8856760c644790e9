// Package s3sink provides the stream write surface.
package s3sink

import (
	"context"
	"io"
	"time"

	s3errors "github.com/objstream/s3sink/errors"
	"github.com/objstream/s3sink/internal/chunker"
	"github.com/objstream/s3sink/internal/coordinator"
	"github.com/objstream/s3sink/internal/validation"
	"github.com/objstream/s3sink/sinktypes"
)

// Write consumes the byte stream from reader and materializes it as one
// object under key in the destination bucket.
//
// The stream is partitioned into minimum-part-size chunks and driven through
// the store's multipart-upload protocol; streams smaller than one part
// (including empty streams) are written with a single put instead. The whole
// payload is never buffered in memory: at most one part per upload worker is
// in flight at a time.
//
// Any part or completion failure aborts the multipart session before the
// error is returned, so the store does not accumulate orphaned sessions.
// Cancelling ctx mid-stream behaves the same way.
//
// Returns:
//   - *WriteResult: key, size, ETag, part count and duration of the write
//   - error: Returns an error if the write fails
//
// Errors:
//   - ErrClosed: If the sink has been closed
//   - ErrInvalidInput: If the key is invalid or reader is nil
//   - Network errors or AWS SDK errors wrapped in Error type
//
// Example:
//
//	result, err := sink.Write(ctx, "exports/2026-08-30.ndjson", stream,
//	    s3sink.WithContentType("application/x-ndjson"),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Wrote %d bytes in %d parts\n", result.Size, result.Parts)
func (s *Sink) Write(
	ctx context.Context,
	key string,
	reader io.Reader,
	opts ...sinktypes.WriteOption,
) (*sinktypes.WriteResult, error) {
	if s.isClosed() {
		return nil, s3errors.NewObjectError("write", s.bucket, key, s3errors.ErrClosed)
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, s3errors.NewObjectError("write", s.bucket, key, s3errors.ErrInvalidInput).
			WithMessage(err.Error())
	}
	if reader == nil {
		return nil, s3errors.NewObjectError("write", s.bucket, key, s3errors.ErrInvalidInput).
			WithMessage("reader cannot be nil")
	}

	config := &sinktypes.WriteOptionConfig{
		StorageClass: sinktypes.StorageClassStandard,
	}
	for _, opt := range opts {
		opt(config)
	}

	startTime := time.Now()

	parts := chunker.New(reader, s.buffers)
	coord := coordinator.New(s.client, s.logger)

	result, err := coord.Run(ctx, s.bucket, key, parts, &coordinator.Config{
		ContentType:  config.ContentType,
		Metadata:     config.Metadata,
		StorageClass: config.StorageClass,
		Concurrency:  s.cfg.Concurrency,
		Progress:     config.ProgressTracker,
	}, startTime)
	if err != nil {
		return nil, s3errors.NewError("write", err).WithBucket(s.bucket).WithKey(key)
	}

	return result, nil
}

// WriteFile streams a local file to the destination bucket under key.
// This is a convenience method that handles file opening through the sink's
// filesystem abstraction; the upload path is identical to Write.
//
// Returns:
//   - *WriteResult: key, size, ETag, part count and duration of the write
//   - error: Returns an error if the write fails
//
// Errors:
//   - ErrClosed: If the sink has been closed
//   - ErrInvalidInput: If the key is invalid, or path is empty or a directory
//   - File system errors if the file cannot be read
//   - Network errors or AWS SDK errors wrapped in Error type
func (s *Sink) WriteFile(
	ctx context.Context,
	key, path string,
	opts ...sinktypes.WriteOption,
) (*sinktypes.WriteResult, error) {
	if s.isClosed() {
		return nil, s3errors.NewObjectError("writeFile", s.bucket, key, s3errors.ErrClosed)
	}
	if path == "" {
		return nil, s3errors.NewObjectError("writeFile", s.bucket, key, s3errors.ErrInvalidInput).
			WithMessage("path cannot be empty")
	}

	info, err := s.fs.Stat(path)
	if err != nil {
		return nil, s3errors.NewObjectError("writeFile", s.bucket, key, err)
	}
	if info.IsDir() {
		return nil, s3errors.NewObjectError("writeFile", s.bucket, key, s3errors.ErrInvalidInput).
			WithMessage("path points to a directory, not a file")
	}

	file, err := s.fs.Open(path)
	if err != nil {
		return nil, s3errors.NewObjectError("writeFile", s.bucket, key, err)
	}
	defer file.Close()

	return s.Write(ctx, key, file, opts...)
}
