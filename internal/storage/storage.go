package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKind    = errors.New("invalid upload kind")
	ErrInvalidKey     = errors.New("invalid object key")
	ErrInvalidImage   = errors.New("invalid image")
	ErrUploadFailed   = errors.New("there was an error while uploading the file")
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// PutOptions carries the headers stored alongside an object.
type PutOptions struct {
	ContentType        string
	ContentDisposition string
}

// Backend captures the S3-compatible operations the storage service needs.
// Implementations must return ErrObjectNotFound (possibly wrapped) for
// missing keys.
type Backend interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket, region string) error
	SetBucketPolicy(ctx context.Context, bucket, policy string) error
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts PutOptions) error
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error)
	StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error)
	RemoveObject(ctx context.Context, bucket, key string) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	PresignGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// UploadKind is the top-level folder an upload is filed under, per user.
type UploadKind string

const (
	KindPictures UploadKind = "pictures"
	KindPreviews UploadKind = "previews"
	KindResumes  UploadKind = "resumes"
)

// PublicKinds are readable without credentials once the bucket policy is set.
var PublicKinds = []UploadKind{KindPictures, KindPreviews, KindResumes}

func ParseUploadKind(s string) (UploadKind, error) {
	switch UploadKind(s) {
	case KindPictures, KindPreviews, KindResumes:
		return UploadKind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Extension is the file extension objects of this kind are stored with.
func (k UploadKind) Extension() string {
	if k == KindResumes {
		return "pdf"
	}
	return "jpg"
}

// ContentType is the MIME type objects of this kind are stored with.
func (k UploadKind) ContentType() string {
	if k == KindResumes {
		return "application/pdf"
	}
	return "image/jpeg"
}
