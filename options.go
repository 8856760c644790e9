// Package s3sink provides functional options for configuring sink behavior.
// These options follow the functional options pattern for clean, composable configuration.
package s3sink

import (
	"net/http"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"go.uber.org/zap"

	"github.com/objstream/s3sink/sinktypes"
)

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible stores such as MinIO, or local testing
// with LocalStack. An endpoint in the destination configuration takes
// precedence over this option.
func WithEndpoint(endpoint string) sinktypes.Option {
	return func(c *sinktypes.SinkConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible stores that don't support virtual hosting.
// Default is false (uses virtual-hosted style).
func WithForcePathStyle(forcePathStyle bool) sinktypes.Option {
	return func(c *sinktypes.SinkConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithMaxRetries sets the maximum number of retry attempts the underlying
// store client makes for transport-level faults. The sink itself never
// retries a failed part. Default is 3 retries.
func WithMaxRetries(maxRetries int) sinktypes.Option {
	return func(c *sinktypes.SinkConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the timeout for individual store calls.
// Default is no timeout (0). Values should be positive durations.
func WithTimeout(timeout time.Duration) sinktypes.Option {
	return func(c *sinktypes.SinkConfig) {
		c.Timeout = timeout
	}
}

// WithPartSize sets the multipart part size. Values below the store's
// 10 MiB minimum are raised to the minimum.
func WithPartSize(partSize int64) sinktypes.Option {
	return func(c *sinktypes.SinkConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithConcurrency sets the number of parts transmitted in parallel per
// write. Part numbering always follows stream order regardless of this
// setting. Default is 1 (sequential).
func WithConcurrency(concurrency int) sinktypes.Option {
	return func(c *sinktypes.SinkConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithLogger sets the logger used for lifecycle and cleanup diagnostics.
// Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) sinktypes.Option {
	return func(c *sinktypes.SinkConfig) {
		c.Logger = logger
	}
}

// WithFilesystem sets the filesystem abstraction used by WriteFile.
// Defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) sinktypes.Option {
	return func(c *sinktypes.SinkConfig) {
		c.Filesystem = filesystem
	}
}

// WithHTTPClient sets a custom HTTP client for the store client.
// This overrides WithTimeout.
func WithHTTPClient(client *http.Client) sinktypes.Option {
	return func(c *sinktypes.SinkConfig) {
		c.CustomHTTPClient = client
	}
}

// WithContentType sets the Content-Type of the written object. When not
// set, the type is sniffed from the head of the stream.
func WithContentType(contentType string) sinktypes.WriteOption {
	return func(c *sinktypes.WriteOptionConfig) {
		c.ContentType = contentType
	}
}

// WithMetadata sets user-defined metadata on the written object.
func WithMetadata(metadata map[string]string) sinktypes.WriteOption {
	return func(c *sinktypes.WriteOptionConfig) {
		c.Metadata = metadata
	}
}

// WithStorageClass sets the storage class of the written object.
// Default is STANDARD.
func WithStorageClass(storageClass sinktypes.StorageClass) sinktypes.WriteOption {
	return func(c *sinktypes.WriteOptionConfig) {
		c.StorageClass = storageClass
	}
}

// WithProgress sets a progress tracker receiving updates as parts are
// acknowledged by the store.
func WithProgress(tracker sinktypes.ProgressTracker) sinktypes.WriteOption {
	return func(c *sinktypes.WriteOptionConfig) {
		c.ProgressTracker = tracker
	}
}
