// Package sinktypes provides shared type definitions for the S3 sink module.
package sinktypes

import (
	"net/http"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"go.uber.org/zap"

	"github.com/objstream/s3sink/errors"
)

// StorageClass represents the S3 storage class for written objects.
type StorageClass string

// Predefined S3 storage classes
const (
	// StorageClassStandard is the default S3 storage class
	StorageClassStandard StorageClass = "STANDARD"

	// StorageClassStandardIA provides infrequent access storage
	StorageClassStandardIA StorageClass = "STANDARD_IA"

	// StorageClassOneZoneIA provides one zone infrequent access storage
	StorageClassOneZoneIA StorageClass = "ONEZONE_IA"

	// StorageClassIntelligentTiering provides intelligent tiering storage
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"

	// StorageClassGlacier provides Glacier archival storage
	StorageClassGlacier StorageClass = "GLACIER"
)

// DestinationConfig describes one S3 write destination. It is consumed to
// construct the sink's client and is never mutated by the sink itself.
type DestinationConfig struct {
	// AccessKey is the AWS access key ID
	AccessKey string

	// SecretKey is the AWS secret access key
	SecretKey string

	// Region is the AWS region of the destination bucket
	Region string

	// Bucket is the destination bucket name
	Bucket string

	// Endpoint overrides the S3 endpoint URL, for S3-compatible stores
	// such as MinIO or LocalStack
	Endpoint string

	// ForcePathStyle forces path-style addressing, required by most
	// S3-compatible stores
	ForcePathStyle bool
}

// Redacted returns a copy of the configuration with credential fields
// replaced by the redaction placeholder. All diagnostics go through this
// copy; the original is never serialized.
func (c DestinationConfig) Redacted() DestinationConfig {
	out := c
	if out.AccessKey != "" {
		out.AccessKey = errors.RedactedCredentials
	}
	if out.SecretKey != "" {
		out.SecretKey = errors.RedactedCredentials
	}
	return out
}

// String renders the redacted form of the configuration.
func (c DestinationConfig) String() string {
	r := c.Redacted()
	return "bucket=" + r.Bucket + " region=" + r.Region +
		" accessKey=" + r.AccessKey + " secretKey=" + r.SecretKey
}

// ProgressTracker defines the interface for tracking transfer progress.
// Implementations can provide real-time progress updates during writes.
type ProgressTracker interface {
	// Update is called periodically with transfer progress
	Update(bytesTransferred, totalBytes int64)

	// Complete is called when the transfer completes successfully
	Complete()

	// Error is called when the transfer fails
	Error(err error)
}

// WriteResult contains the result of a completed write.
type WriteResult struct {
	// Key is the object key that was written
	Key string

	// Bucket is the destination bucket
	Bucket string

	// Size is the size of the written object in bytes
	Size int64

	// ETag is the S3 entity tag for the written object
	ETag string

	// Parts is the number of multipart parts used (0 for the single-put path)
	Parts int

	// Duration is how long the write took
	Duration time.Duration
}

// SinkConfig holds resolved configuration for the sink client.
type SinkConfig struct {
	MaxRetries       int
	Timeout          time.Duration
	Concurrency      int
	PartSize         int64
	Endpoint         string
	ForcePathStyle   bool
	CustomHTTPClient *http.Client
	Logger           *zap.Logger
	Filesystem       fs.Filesystem // Filesystem abstraction for file operations
}

// WriteOptionConfig holds configuration for write operations via functional options.
type WriteOptionConfig struct {
	ContentType     string
	Metadata        map[string]string
	StorageClass    StorageClass
	ProgressTracker ProgressTracker
}

// Option is a functional option for configuring the sink client.
type (
	Option func(*SinkConfig)
	// WriteOption is a functional option for configuring a single write.
	WriteOption func(*WriteOptionConfig)
)
