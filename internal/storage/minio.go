package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// NewClient builds a minio client from cfg. It performs no network I/O, so
// a bad configuration fails here before anything is dialled.
func NewClient(cfg ClientConfig) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials must be provided")
	}

	client, err := minio.New(cfg.Address(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return client, nil
}

// MinioBackend implements Backend on top of minio-go.
type MinioBackend struct {
	client *minio.Client
}

func NewMinioBackend(client *minio.Client) *MinioBackend {
	return &MinioBackend{client: client}
}

func (b *MinioBackend) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return b.client.BucketExists(ctx, bucket)
}

func (b *MinioBackend) MakeBucket(ctx context.Context, bucket, region string) error {
	return b.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region})
}

func (b *MinioBackend) SetBucketPolicy(ctx context.Context, bucket, policy string) error {
	return b.client.SetBucketPolicy(ctx, bucket, policy)
}

func (b *MinioBackend) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts PutOptions) error {
	_, err := b.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{
		ContentType:        opts.ContentType,
		ContentDisposition: opts.ContentDisposition,
	})
	return err
}

func (b *MinioBackend) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	object, err := b.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, mapMinioError(err)
	}
	// GetObject is lazy; Stat issues the request and surfaces NoSuchKey.
	stat, err := object.Stat()
	if err != nil {
		object.Close()
		return nil, ObjectInfo{}, mapMinioError(err)
	}
	return object, fromMinioInfo(stat), nil
}

func (b *MinioBackend) StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	stat, err := b.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, mapMinioError(err)
	}
	return fromMinioInfo(stat), nil
}

func (b *MinioBackend) RemoveObject(ctx context.Context, bucket, key string) error {
	return mapMinioError(b.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}))
}

func (b *MinioBackend) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	results := make([]ObjectInfo, 0)
	for object := range b.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, object.Err)
		}
		results = append(results, fromMinioInfo(object))
	}
	return results, nil
}

func (b *MinioBackend) PresignGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	u, err := b.client.PresignedGetObject(ctx, bucket, key, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

var _ Backend = (*MinioBackend)(nil)

func fromMinioInfo(info minio.ObjectInfo) ObjectInfo {
	return ObjectInfo{
		Key:          info.Key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}
}

func mapMinioError(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, resp.Key)
	}
	return err
}
