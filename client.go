// Package s3sink provides sink construction and configuration.
//
// A Sink is built for exactly one destination bucket. Construction validates
// the destination configuration, builds the underlying S3 client from it,
// and probes the bucket before any write is accepted: a sink is never handed
// out for a destination that cannot be written to.
package s3sink

import (
	"context"
	goerrors "errors"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"go.uber.org/zap"

	"github.com/objstream/s3sink/errors"
	"github.com/objstream/s3sink/internal/chunker"
	"github.com/objstream/s3sink/internal/pool"
	"github.com/objstream/s3sink/internal/probe"
	"github.com/objstream/s3sink/internal/s3api"
	"github.com/objstream/s3sink/internal/validation"
	"github.com/objstream/s3sink/sinktypes"
)

// Sink writes byte streams to one destination bucket.
// It is safe for concurrent use; each Write drives its own upload session.
type Sink struct {
	// client is the underlying store client
	client s3api.S3API

	// bucket is the destination bucket all writes go to
	bucket string

	// cfg holds the resolved sink configuration
	cfg *sinktypes.SinkConfig

	// buffers supplies part-sized buffers, shared across writes
	buffers *pool.PartBuffers

	// logger receives lifecycle and cleanup diagnostics
	logger *zap.Logger

	// fs is the filesystem abstraction for file-backed writes
	fs fs.Filesystem

	// httpClient is the owned HTTP client, released on Close
	httpClient *http.Client

	// mu protects closed
	mu     sync.Mutex
	closed bool
}

// New creates a Sink for the given destination. The destination
// configuration is validated, a store client is constructed from its
// credentials, and the bucket liveness probe runs before the sink is
// returned. Probe failures are mapped to invalid-configuration or
// access-denied errors and no sink is constructed.
//
// Example:
//
//	sink, err := s3sink.New(ctx, sinktypes.DestinationConfig{
//	    AccessKey: accessKey,
//	    SecretKey: secretKey,
//	    Region:    "us-west-2",
//	    Bucket:    "pipeline-output",
//	})
func New(ctx context.Context, dest sinktypes.DestinationConfig, opts ...sinktypes.Option) (*Sink, error) {
	cfg := &sinktypes.SinkConfig{
		MaxRetries:  3,                   // Default retry count
		Timeout:     0,                   // No timeout by default
		Concurrency: 1,                   // Sequential part upload by default
		PartSize:    chunker.MinPartSize, // Store minimum part size
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.PartSize < chunker.MinPartSize {
		cfg.PartSize = chunker.MinPartSize
	}

	if err := validation.ValidateDestination(dest); err != nil {
		return nil, attachConfig(err, dest)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(dest.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(dest.AccessKey, dest.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, errors.NewBucketError("client initialization", dest.Bucket, err).
			WithConfig(dest.String())
	}
	if cfg.MaxRetries > 0 {
		awsCfg.RetryMaxAttempts = cfg.MaxRetries
	}

	endpoint := cfg.Endpoint
	if dest.Endpoint != "" {
		endpoint = dest.Endpoint
	}

	var httpClient *http.Client
	var s3Opts []func(*s3.Options)

	if dest.ForcePathStyle || cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	switch {
	case cfg.CustomHTTPClient != nil:
		httpClient = cfg.CustomHTTPClient
	case cfg.Timeout > 0:
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient != nil {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	s3Client := s3.NewFromConfig(awsCfg, s3Opts...)

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	filesystem := cfg.Filesystem
	if filesystem == nil {
		// Default to OS filesystem rooted at /
		filesystem = billy.NewOSFS("/")
	}

	if err := probe.CheckBucket(ctx, s3Client, dest.Bucket); err != nil {
		return nil, attachConfig(err, dest)
	}

	logger.Debug("sink constructed",
		zap.String("destination", dest.String()),
		zap.Int64("partSize", cfg.PartSize),
		zap.Int("concurrency", cfg.Concurrency))

	return &Sink{
		client:     s3Client,
		bucket:     dest.Bucket,
		cfg:        cfg,
		buffers:    pool.NewPartBuffers(int(cfg.PartSize)),
		logger:     logger,
		fs:         filesystem,
		httpClient: httpClient,
	}, nil
}

// NewWithClient creates a Sink with a custom S3API implementation.
// The liveness probe is skipped. This is primarily used for testing with
// mocked clients.
func NewWithClient(client s3api.S3API, bucket string, opts ...sinktypes.Option) *Sink {
	cfg := &sinktypes.SinkConfig{
		Concurrency: 1,
		PartSize:    chunker.MinPartSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	filesystem := cfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}

	return &Sink{
		client:  client,
		bucket:  bucket,
		cfg:     cfg,
		buffers: pool.NewPartBuffers(int(cfg.PartSize)),
		logger:  logger,
		fs:      filesystem,
	}
}

// Bucket returns the destination bucket the sink writes to.
func (s *Sink) Bucket() string {
	return s.bucket
}

// Close releases the sink. Further writes fail with ErrClosed. Closing an
// already-closed sink is a no-op.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.httpClient != nil {
		s.httpClient.CloseIdleConnections()
	}
	return nil
}

func (s *Sink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// attachConfig annotates a construction-time failure with the redacted form
// of the destination it was built against.
func attachConfig(err error, dest sinktypes.DestinationConfig) error {
	var opErr *errors.Error
	if goerrors.As(err, &opErr) {
		return opErr.WithConfig(dest.String())
	}
	return err
}
