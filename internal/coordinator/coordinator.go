// Package coordinator drives the multipart upload lifecycle for one logical
// object: initiate, upload parts, then complete or abort.
//
// Every run ends in exactly one terminal state. On any part, stream, or
// completion fault the coordinator issues a best-effort abort so the store
// does not retain an orphaned multipart session, then propagates the
// originating error. Abort failures are logged, never escalated.
package coordinator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/objstream/s3sink/errors"
	"github.com/objstream/s3sink/internal/chunker"
	"github.com/objstream/s3sink/internal/s3api"
	"github.com/objstream/s3sink/sinktypes"
)

// DefaultContentType is used when content type detection fails.
const DefaultContentType = "application/octet-stream"

// SizeUnknown is reported to progress trackers while the stream length is
// still unknown.
const SizeUnknown = -1

// state tracks the lifecycle of one upload session.
type state int

const (
	stateUninitiated state = iota
	stateActive
	stateAborting
	stateCompleted
	stateAborted
)

// session is one in-progress multipart upload. Descriptors are recorded at a
// single mutation point (the coordinator's collector), so no locking is
// needed; part numbers recorded are contiguous from 1 once the run finishes.
type session struct {
	bucket      string
	key         string
	uploadID    string
	state       state
	descriptors map[int32]string // part number -> content tag (ETag)
}

func (s *session) record(number int32, etag string) {
	s.descriptors[number] = etag
}

// completedParts assembles the descriptor list in strictly increasing
// part-number order. It fails if any emitted part is missing an
// acknowledgment, which would make completion unsound.
func (s *session) completedParts(emitted int) ([]awstypes.CompletedPart, error) {
	parts := make([]awstypes.CompletedPart, 0, emitted)
	for n := int32(1); n <= int32(emitted); n++ {
		etag, ok := s.descriptors[n]
		if !ok {
			return nil, fmt.Errorf("part %d has no recorded descriptor", n)
		}
		parts = append(parts, awstypes.CompletedPart{
			ETag:       aws.String(etag),
			PartNumber: aws.Int32(n),
		})
	}
	return parts, nil
}

// Config holds per-write settings applied by the coordinator.
type Config struct {
	ContentType  string
	Metadata     map[string]string
	StorageClass sinktypes.StorageClass
	Concurrency  int
	Progress     sinktypes.ProgressTracker
}

// Coordinator owns the upload lifecycle for the objects it is handed.
type Coordinator struct {
	client s3api.S3API
	logger *zap.Logger
}

// New creates a Coordinator. A nil logger is replaced with a no-op logger.
func New(client s3api.S3API, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		client: client,
		logger: logger,
	}
}

// Run consumes the part sequence and materializes it as one object under
// key. Objects smaller than the minimum part size (including empty ones)
// bypass multipart entirely and are written with a single put.
func (c *Coordinator) Run(
	ctx context.Context,
	bucket, key string,
	parts *chunker.Chunker,
	cfg *Config,
	startTime time.Time,
) (*sinktypes.WriteResult, error) {
	first, err := parts.Next(ctx)
	if err == io.EOF {
		// Empty stream: the object is written as an explicit empty object.
		return c.putSingle(ctx, bucket, key, nil, cfg, startTime)
	}
	if err != nil {
		c.reportError(cfg, err)
		return nil, errors.NewObjectError("write", bucket, key, err)
	}

	if cfg.ContentType == "" {
		cfg.ContentType = detectContentType(key, first.Data)
	}

	if len(first.Data) < parts.PartSize() {
		// The whole object fits below the minimum part size.
		result, err := c.putSingle(ctx, bucket, key, first.Data, cfg, startTime)
		parts.Release(first)
		return result, err
	}

	sess, err := c.begin(ctx, bucket, key, cfg)
	if err != nil {
		c.reportError(cfg, err)
		return nil, err
	}

	total, err := c.uploadParts(ctx, sess, parts, first, cfg)
	if err != nil {
		c.abort(ctx, sess)
		c.reportError(cfg, err)
		return nil, errors.NewObjectError("write", bucket, key, err)
	}

	result, err := c.complete(ctx, sess, parts.Emitted(), total, startTime)
	if err != nil {
		c.abort(ctx, sess)
		c.reportError(cfg, err)
		return nil, err
	}

	if cfg.Progress != nil {
		cfg.Progress.Update(total, total)
		cfg.Progress.Complete()
	}
	return result, nil
}

// begin opens the multipart session: Uninitiated -> Active.
func (c *Coordinator) begin(ctx context.Context, bucket, key string, cfg *Config) (*session, error) {
	input := &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(cfg.ContentType),
	}
	if cfg.StorageClass != "" {
		input.StorageClass = awstypes.StorageClass(cfg.StorageClass)
	}
	if len(cfg.Metadata) > 0 {
		input.Metadata = cfg.Metadata
	}

	output, err := c.client.CreateMultipartUpload(ctx, input)
	if err != nil {
		return nil, errors.NewObjectError("createMultipartUpload", bucket, key, err)
	}

	sess := &session{
		bucket:      bucket,
		key:         key,
		uploadID:    aws.ToString(output.UploadId),
		state:       stateActive,
		descriptors: make(map[int32]string),
	}
	c.logger.Debug("multipart upload opened",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.String("uploadID", sess.uploadID))
	return sess, nil
}

// uploadParts feeds every part to the store. Part numbers are assigned in
// the order the chunker produced them, independent of transmission order.
func (c *Coordinator) uploadParts(
	ctx context.Context,
	sess *session,
	parts *chunker.Chunker,
	first chunker.Part,
	cfg *Config,
) (int64, error) {
	if cfg.Concurrency > 1 {
		return c.uploadConcurrent(ctx, sess, parts, first, cfg)
	}
	return c.uploadSequential(ctx, sess, parts, first, cfg)
}

func (c *Coordinator) uploadSequential(
	ctx context.Context,
	sess *session,
	parts *chunker.Chunker,
	first chunker.Part,
	cfg *Config,
) (int64, error) {
	var total int64
	part := first
	for {
		etag, err := c.uploadPart(ctx, sess, part)
		if err != nil {
			return total, err
		}
		sess.record(part.Number, etag)
		total += int64(len(part.Data))
		parts.Release(part)
		if cfg.Progress != nil {
			cfg.Progress.Update(total, SizeUnknown)
		}

		part, err = parts.Next(ctx)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// uploadConcurrent transmits parts through a bounded worker pool. The
// producer still reads the stream sequentially, so numbering stays in read
// order; descriptors are recorded only by the collector loop below.
func (c *Coordinator) uploadConcurrent(
	ctx context.Context,
	sess *session,
	parts *chunker.Chunker,
	first chunker.Part,
	cfg *Config,
) (int64, error) {
	uctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type partResult struct {
		number int32
		etag   string
		size   int64
		err    error
	}

	work := make(chan chunker.Part)
	results := make(chan partResult, cfg.Concurrency)
	prodErr := make(chan error, 1)

	go func() {
		defer close(work)
		part := first
		for {
			select {
			case work <- part:
			case <-uctx.Done():
				prodErr <- uctx.Err()
				return
			}

			var err error
			part, err = parts.Next(uctx)
			if err == io.EOF {
				prodErr <- nil
				return
			}
			if err != nil {
				prodErr <- err
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for part := range work {
				size := int64(len(part.Data))
				etag, err := c.uploadPart(uctx, sess, part)
				if err == nil {
					parts.Release(part)
				}
				select {
				case results <- partResult{number: part.Number, etag: etag, size: size, err: err}:
				case <-uctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var total int64
	var uploadErr error
	for res := range results {
		if res.err != nil {
			if uploadErr == nil {
				uploadErr = res.err
				cancel()
			}
			continue
		}
		sess.record(res.number, res.etag)
		total += res.size
		if cfg.Progress != nil {
			cfg.Progress.Update(total, SizeUnknown)
		}
	}
	if uploadErr != nil {
		return total, uploadErr
	}
	if err := <-prodErr; err != nil {
		return total, err
	}
	return total, nil
}

// uploadPart transmits a single part and returns its content tag.
func (c *Coordinator) uploadPart(ctx context.Context, sess *session, part chunker.Part) (string, error) {
	input := &s3.UploadPartInput{
		Bucket:     aws.String(sess.bucket),
		Key:        aws.String(sess.key),
		UploadId:   aws.String(sess.uploadID),
		PartNumber: aws.Int32(part.Number),
		Body:       bytes.NewReader(part.Data),
	}

	output, err := c.client.UploadPart(ctx, input)
	if err != nil {
		return "", errors.NewObjectError("uploadPart", sess.bucket, sess.key, err)
	}
	return aws.ToString(output.ETag), nil
}

// complete finalizes the session: Active -> Completed. It is only invoked
// once every emitted part has a recorded descriptor.
func (c *Coordinator) complete(
	ctx context.Context,
	sess *session,
	emitted int,
	total int64,
	startTime time.Time,
) (*sinktypes.WriteResult, error) {
	completed, err := sess.completedParts(emitted)
	if err != nil {
		return nil, errors.NewObjectError("completeMultipartUpload", sess.bucket, sess.key, err)
	}

	input := &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(sess.bucket),
		Key:      aws.String(sess.key),
		UploadId: aws.String(sess.uploadID),
		MultipartUpload: &awstypes.CompletedMultipartUpload{
			Parts: completed,
		},
	}

	output, err := c.client.CompleteMultipartUpload(ctx, input)
	if err != nil {
		return nil, errors.NewObjectError("completeMultipartUpload", sess.bucket, sess.key, err)
	}
	sess.state = stateCompleted

	c.logger.Debug("multipart upload completed",
		zap.String("bucket", sess.bucket),
		zap.String("key", sess.key),
		zap.String("uploadID", sess.uploadID),
		zap.Int("parts", emitted),
		zap.Int64("bytes", total))

	return &sinktypes.WriteResult{
		Key:      sess.key,
		Bucket:   sess.bucket,
		Size:     total,
		ETag:     aws.ToString(output.ETag),
		Parts:    emitted,
		Duration: time.Since(startTime),
	}, nil
}

// abort discards the session: Active -> Aborting -> Aborted. It is a no-op
// on a terminal session and runs even when the caller's context is already
// cancelled, so the store does not keep an orphaned upload.
func (c *Coordinator) abort(ctx context.Context, sess *session) {
	if sess.state == stateCompleted || sess.state == stateAborted {
		return
	}
	sess.state = stateAborting

	input := &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(sess.bucket),
		Key:      aws.String(sess.key),
		UploadId: aws.String(sess.uploadID),
	}
	if _, err := c.client.AbortMultipartUpload(context.WithoutCancel(ctx), input); err != nil {
		c.logger.Warn("abort of multipart upload failed",
			zap.String("bucket", sess.bucket),
			zap.String("key", sess.key),
			zap.String("uploadID", sess.uploadID),
			zap.Error(err))
	}
	sess.state = stateAborted
}

// putSingle writes the whole object with one PutObject call, skipping the
// multipart protocol and its minimum-part-size constraint.
func (c *Coordinator) putSingle(
	ctx context.Context,
	bucket, key string,
	data []byte,
	cfg *Config,
	startTime time.Time,
) (*sinktypes.WriteResult, error) {
	if cfg.ContentType == "" {
		cfg.ContentType = detectContentType(key, data)
	}

	size := int64(len(data))
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(cfg.ContentType),
		ContentLength: aws.Int64(size),
	}
	if cfg.StorageClass != "" {
		input.StorageClass = awstypes.StorageClass(cfg.StorageClass)
	}
	if len(cfg.Metadata) > 0 {
		input.Metadata = cfg.Metadata
	}

	output, err := c.client.PutObject(ctx, input)
	if err != nil {
		c.reportError(cfg, err)
		return nil, errors.NewObjectError("putObject", bucket, key, err)
	}

	if cfg.Progress != nil {
		cfg.Progress.Update(size, size)
		cfg.Progress.Complete()
	}

	return &sinktypes.WriteResult{
		Key:      key,
		Bucket:   bucket,
		Size:     size,
		ETag:     aws.ToString(output.ETag),
		Parts:    0,
		Duration: time.Since(startTime),
	}, nil
}

func (c *Coordinator) reportError(cfg *Config, err error) {
	if cfg.Progress != nil {
		cfg.Progress.Error(err)
	}
}

// detectContentType sniffs the stream head, falling back to extension-based
// lookup when the head is empty or unrecognized.
func detectContentType(key string, head []byte) string {
	if len(head) > 0 {
		if mt := mimetype.Detect(head); mt != nil {
			return mt.String()
		}
	}

	ext := strings.ToLower(filepath.Ext(key))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	return DefaultContentType
}
