// Package probe implements the pre-flight bucket liveness check and the
// mapping of store-level faults to the sink's error taxonomy.
//
// The probe runs before any upload and decides whether a sink is constructed
// for a destination at all: an absent bucket or an unreachable store is an
// invalid-configuration error, a permission fault is an access-denied error,
// and any other negative status is an invalid-configuration error carrying
// the store's message verbatim.
package probe

import (
	"context"
	stderrors "errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/objstream/s3sink/errors"
	"github.com/objstream/s3sink/internal/s3api"
)

// CheckBucket verifies that the destination bucket exists and is accessible.
// A nil return means the destination is usable.
func CheckBucket(ctx context.Context, client s3api.S3API, bucket string) error {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err == nil {
		return nil
	}
	return mapFault(bucket, err)
}

// mapFault converts a HeadBucket fault into the sink's taxonomy.
func mapFault(bucket string, err error) error {
	switch classify(err) {
	case faultNotFound:
		return errors.NewBucketError("probe", bucket, errors.ErrInvalidConfiguration).
			WithMessage("Bucket does not exist")
	case faultAccessDenied:
		return errors.NewBucketError("probe", bucket, errors.ErrAccessDenied).
			WithMessage("Access denied")
	default:
		return errors.NewBucketError("probe", bucket, errors.ErrInvalidConfiguration).
			WithMessage(storeMessage(err))
	}
}

type faultKind int

const (
	faultOther faultKind = iota
	faultNotFound
	faultAccessDenied
)

// classify inspects typed SDK errors first, then API error codes, then the
// raw HTTP status of the response.
func classify(err error) faultKind {
	var notFound *types.NotFound
	if stderrors.As(err, &notFound) {
		return faultNotFound
	}
	var noSuchBucket *types.NoSuchBucket
	if stderrors.As(err, &noSuchBucket) {
		return faultNotFound
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return faultNotFound
		case "Forbidden", "AccessDenied", "AccessDeniedException":
			return faultAccessDenied
		}
	}

	var respErr *awshttp.ResponseError
	if stderrors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case 404:
			return faultNotFound
		case 403:
			return faultAccessDenied
		}
	}

	return faultOther
}

// storeMessage extracts the store's own message for verbatim reporting.
func storeMessage(err error) string {
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) && apiErr.ErrorMessage() != "" {
		return apiErr.ErrorMessage()
	}
	return err.Error()
}
