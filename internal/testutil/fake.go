package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/objstream/s3sink/internal/s3api"
)

// PutCall records one PutObject invocation.
type PutCall struct {
	Bucket      string
	Key         string
	Data        []byte
	ContentType string
}

// FakeObjectStore simulates the store side of the multipart protocol in
// memory. It records every call so tests can assert on the exact lifecycle
// the coordinator drove, and can be told to fail specific operations.
type FakeObjectStore struct {
	mu sync.Mutex

	// Recorded activity
	PutCalls       []PutCall
	CreateCalls    int
	Parts          map[int32][]byte
	PartOrder      []int32 // part numbers in upload-call order
	CompletedOrder []int32 // part numbers as submitted to completion
	Completed      bool
	AbortCalls     int
	AbortUploadID  string

	// Fault injection
	FailPartNumber int32 // fail the part with this number (0 = never)
	PartErr        error
	CreateErr      error
	CompleteErr    error
	AbortErr       error
	HeadErr        error
}

// Compile-time conformance with the port interface
var _ s3api.S3API = (*FakeObjectStore)(nil)

// NewFakeObjectStore returns an empty fake store.
func NewFakeObjectStore() *FakeObjectStore {
	return &FakeObjectStore{
		Parts: make(map[int32][]byte),
	}
}

const fakeUploadID = "fake-upload-id"

// PutObject records a single-shot write.
func (f *FakeObjectStore) PutObject(
	_ context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.PutCalls = append(f.PutCalls, PutCall{
		Bucket:      aws.ToString(params.Bucket),
		Key:         aws.ToString(params.Key),
		Data:        data,
		ContentType: aws.ToString(params.ContentType),
	})
	return &s3.PutObjectOutput{ETag: aws.String(`"put-etag"`)}, nil
}

// HeadBucket reports bucket liveness, or the injected fault.
func (f *FakeObjectStore) HeadBucket(
	_ context.Context,
	_ *s3.HeadBucketInput,
	_ ...func(*s3.Options),
) (*s3.HeadBucketOutput, error) {
	if f.HeadErr != nil {
		return nil, f.HeadErr
	}
	return &s3.HeadBucketOutput{}, nil
}

// CreateMultipartUpload opens the fake session.
func (f *FakeObjectStore) CreateMultipartUpload(
	_ context.Context,
	_ *s3.CreateMultipartUploadInput,
	_ ...func(*s3.Options),
) (*s3.CreateMultipartUploadOutput, error) {
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String(fakeUploadID)}, nil
}

// UploadPart stores the part payload, or fails if fault injection matches.
func (f *FakeObjectStore) UploadPart(
	_ context.Context,
	params *s3.UploadPartInput,
	_ ...func(*s3.Options),
) (*s3.UploadPartOutput, error) {
	number := aws.ToInt32(params.PartNumber)
	if f.FailPartNumber != 0 && number == f.FailPartNumber {
		return nil, f.PartErr
	}

	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Parts[number] = data
	f.PartOrder = append(f.PartOrder, number)
	return &s3.UploadPartOutput{
		ETag: aws.String(fmt.Sprintf(`"etag-%d"`, number)),
	}, nil
}

// CompleteMultipartUpload records the submitted descriptor order.
func (f *FakeObjectStore) CompleteMultipartUpload(
	_ context.Context,
	params *s3.CompleteMultipartUploadInput,
	_ ...func(*s3.Options),
) (*s3.CompleteMultipartUploadOutput, error) {
	if f.CompleteErr != nil {
		return nil, f.CompleteErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, part := range params.MultipartUpload.Parts {
		f.CompletedOrder = append(f.CompletedOrder, aws.ToInt32(part.PartNumber))
	}
	f.Completed = true
	return &s3.CompleteMultipartUploadOutput{ETag: aws.String(`"multipart-etag"`)}, nil
}

// AbortMultipartUpload records the abort.
func (f *FakeObjectStore) AbortMultipartUpload(
	_ context.Context,
	params *s3.AbortMultipartUploadInput,
	_ ...func(*s3.Options),
) (*s3.AbortMultipartUploadOutput, error) {
	f.mu.Lock()
	f.AbortCalls++
	f.AbortUploadID = aws.ToString(params.UploadId)
	f.mu.Unlock()
	if f.AbortErr != nil {
		return nil, f.AbortErr
	}
	return &s3.AbortMultipartUploadOutput{}, nil
}

// Object reassembles the stored parts in ascending part-number order.
func (f *FakeObjectStore) Object() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []byte
	for n := int32(1); n <= int32(len(f.Parts)); n++ {
		out = append(out, f.Parts[n]...)
	}
	return out
}
