// Package errors provides error types and handling for the S3 sink.
package errors

import (
	"errors"
	"fmt"
)

// RedactedCredentials is the placeholder substituted for credential fields
// before a destination configuration is rendered into any error message or
// log payload.
const RedactedCredentials = "****"

// Error represents a sink operation error with context about the operation
// that failed. It wraps the underlying AWS SDK error with additional context
// for better debugging. Credential material must never be placed in any of
// its fields.
type Error struct {
	// Op is the operation that failed (e.g., "write", "probe", "complete")
	Op string

	// Bucket is the destination bucket name (if applicable)
	Bucket string

	// Key is the destination object key (if applicable)
	Key string

	// Config is the rendered destination configuration the operation ran
	// against, already redacted. Attached to construction-time failures only.
	Config string

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	var msg string
	switch {
	case e.Bucket != "" && e.Key != "":
		msg = fmt.Sprintf("s3sink.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	case e.Bucket != "":
		msg = fmt.Sprintf("s3sink.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	case e.Key != "":
		msg = fmt.Sprintf("s3sink.%s object %s: %v", e.Op, e.Key, e.Err)
	default:
		msg = fmt.Sprintf("s3sink.%s: %v", e.Op, e.Err)
	}
	if e.Config != "" {
		msg += " [" + e.Config + "]"
	}
	return msg
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithConfig attaches the rendered destination configuration. The caller
// must pass an already-redacted rendering; credential material never belongs
// here.
func (e *Error) WithConfig(config string) *Error {
	e.Config = config
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewBucketError creates a new Error with bucket context.
func NewBucketError(op, bucket string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Err:    err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for the sink's failure taxonomy.
// These can be used with errors.Is() for error checking.
var (
	// ErrInvalidConfiguration indicates that the destination configuration is
	// unusable: malformed fields, or a bucket the store reports as absent or
	// otherwise not serviceable
	ErrInvalidConfiguration = errors.New("s3sink: invalid configuration")

	// ErrAccessDenied indicates that the configured credentials lack
	// permission for the destination bucket
	ErrAccessDenied = errors.New("s3sink: access denied")

	// ErrBucketNotFound indicates that the destination bucket does not exist
	ErrBucketNotFound = errors.New("s3sink: bucket not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("s3sink: invalid input")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("s3sink: invalid object key")

	// ErrClosed indicates that the sink has already been closed
	ErrClosed = errors.New("s3sink: sink is closed")
)

// IsInvalidConfiguration checks if an error indicates an unusable destination
// configuration. This is a convenience function that handles both sentinel
// errors and wrapped errors.
func IsInvalidConfiguration(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// IsAccessDenied checks if an error indicates access was denied.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsBucketNotFound checks if an error indicates that the bucket was not found.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}

// IsInvalidInput checks if an error indicates invalid input.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
