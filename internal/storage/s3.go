package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

const defaultS3Region = "us-east-1"

// S3API is the subset of the S3 client used by S3Backend.
type S3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutBucketPolicy(ctx context.Context, params *s3.PutBucketPolicyInput, optFns ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Backend implements Backend with the AWS SDK, for stores that are not
// reachable through the minio client.
type S3Backend struct {
	api     S3API
	presign func(ctx context.Context, params *s3.GetObjectInput, expiry time.Duration) (string, error)
}

// NewS3Backend builds a path-style S3 client for cfg.
func NewS3Backend(cfg ClientConfig) (*S3Backend, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials must be provided")
	}

	region := cfg.Region
	if region == "" {
		region = defaultS3Region
	}

	client := s3.New(s3.Options{
		Region:       region,
		Credentials:  aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		BaseEndpoint: aws.String(cfg.BaseURL()),
		UsePathStyle: true,
	})
	presigner := s3.NewPresignClient(client)

	return &S3Backend{
		api: client,
		presign: func(ctx context.Context, params *s3.GetObjectInput, expiry time.Duration) (string, error) {
			req, err := presigner.PresignGetObject(ctx, params, s3.WithPresignExpires(expiry))
			if err != nil {
				return "", err
			}
			return req.URL, nil
		},
	}, nil
}

// NewS3BackendWithAPI is used by tests and callers that build their own client.
func NewS3BackendWithAPI(api S3API) *S3Backend {
	return &S3Backend{api: api}
}

func (b *S3Backend) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := b.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return true, nil
	}
	if isS3NotFound(err) {
		return false, nil
	}
	return false, err
}

func (b *S3Backend) MakeBucket(ctx context.Context, bucket, region string) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	if region != "" && region != defaultS3Region {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	_, err := b.api.CreateBucket(ctx, input)
	return err
}

func (b *S3Backend) SetBucketPolicy(ctx context.Context, bucket, policy string) error {
	_, err := b.api.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(bucket),
		Policy: aws.String(policy),
	})
	return err
}

func (b *S3Backend) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts PutOptions) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.ContentDisposition != "" {
		input.ContentDisposition = aws.String(opts.ContentDisposition)
	}
	_, err := b.api.PutObject(ctx, input)
	return err
}

func (b *S3Backend) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	out, err := b.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ObjectInfo{}, mapS3Error(key, err)
	}
	return out.Body, ObjectInfo{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		ETag:         aws.ToString(out.ETag),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

func (b *S3Backend) StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	out, err := b.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return ObjectInfo{}, mapS3Error(key, err)
	}
	return ObjectInfo{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		ETag:         aws.ToString(out.ETag),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

func (b *S3Backend) RemoveObject(ctx context.Context, bucket, key string) error {
	_, err := b.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return mapS3Error(key, err)
}

func (b *S3Backend) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	results := make([]ObjectInfo, 0)
	paginator := s3.NewListObjectsV2Paginator(b.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, object := range page.Contents {
			results = append(results, ObjectInfo{
				Key:          aws.ToString(object.Key),
				Size:         aws.ToInt64(object.Size),
				ETag:         aws.ToString(object.ETag),
				LastModified: aws.ToTime(object.LastModified),
			})
		}
	}
	return results, nil
}

func (b *S3Backend) PresignGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if b.presign == nil {
		return "", fmt.Errorf("presigning is not configured")
	}
	return b.presign(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, expiry)
}

var _ Backend = (*S3Backend)(nil)

func isS3NotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}

func mapS3Error(key string, err error) error {
	if err == nil {
		return nil
	}
	if isS3NotFound(err) {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return err
}
