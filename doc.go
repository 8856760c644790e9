// Package s3sink exposes an S3 bucket as a write target for a
// data-integration pipeline.
//
// A Sink accepts an unbounded byte stream for a single object key and
// durably materializes it as one object, using the store's multipart-upload
// protocol so the payload is never buffered whole in memory. The stream is
// partitioned into 10 MiB parts; objects smaller than one part take a
// single-put fast path. Every write ends in exactly one of two terminal
// states: the object is committed, or the multipart session is aborted and
// the originating error returned.
//
// Destination configurations are validated and the bucket probed before a
// sink is constructed, so misconfigured destinations fail fast with
// ErrInvalidConfiguration or ErrAccessDenied rather than mid-stream.
// Credentials are redacted from all errors and diagnostics.
//
// Basic usage:
//
//	sink, err := s3sink.New(ctx, sinktypes.DestinationConfig{
//	    AccessKey: accessKey,
//	    SecretKey: secretKey,
//	    Region:    "eu-central-1",
//	    Bucket:    "pipeline-output",
//	})
//	if err != nil {
//	    return err
//	}
//	defer sink.Close()
//
//	result, err := sink.Write(ctx, "exports/events.ndjson", stream)
package s3sink
