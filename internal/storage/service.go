package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/andresuchdata/reactive-resume/backend-go/internal/cache"
	"github.com/andresuchdata/reactive-resume/backend-go/internal/domain"
	"github.com/andresuchdata/reactive-resume/backend-go/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPresignTTL        = time.Hour
	defaultDeleteConcurrency = 8
	// presigned URLs are cached for slightly less than their lifetime so a
	// cached URL never hands out an already expired signature.
	presignCacheMargin = time.Minute
)

type Options struct {
	Bucket            string
	Region            string
	PublicURL         string
	SkipBucketCheck   bool
	PresignTTL        time.Duration
	DeleteConcurrency int
}

type Service struct {
	backend Backend
	assets  repository.AssetRepository
	presign cache.PresignCache
	opts    Options
}

// NewService wires a backend to the optional asset ledger and presign cache.
// Nil collaborators are replaced with no-op implementations.
func NewService(backend Backend, opts Options, assets repository.AssetRepository, presign cache.PresignCache) *Service {
	if assets == nil {
		assets = repository.NewNoopAssetRepository()
	}
	if presign == nil {
		presign = cache.NewNoopPresignCache()
	}
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = defaultPresignTTL
	}
	if opts.DeleteConcurrency <= 0 {
		opts.DeleteConcurrency = defaultDeleteConcurrency
	}
	opts.PublicURL = strings.TrimSuffix(opts.PublicURL, "/")

	return &Service{
		backend: backend,
		assets:  assets,
		presign: presign,
		opts:    opts,
	}
}

// DefaultPublicURL is used when STORAGE_URL is not set: objects are served
// straight from the store under the bucket path.
func DefaultPublicURL(cfg ClientConfig, bucket string) string {
	return cfg.BaseURL() + "/" + bucket
}

func (s *Service) Bucket() string {
	return s.opts.Bucket
}

// Bootstrap makes sure the bucket exists, creating it with the public-read
// policy when it does not.
func (s *Service) Bootstrap(ctx context.Context) error {
	if s.opts.SkipBucketCheck {
		log.Warn().Msg("Skipping the verification of whether the storage bucket exists")
		return nil
	}

	start := time.Now()
	exists, err := s.backend.BucketExists(ctx, s.opts.Bucket)
	observe("bucket_exists", start, err)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.opts.Bucket, err)
	}

	if exists {
		log.Info().Str("bucket", s.opts.Bucket).Msg("Successfully connected to the storage service")
		return nil
	}

	if err := s.backend.MakeBucket(ctx, s.opts.Bucket, s.opts.Region); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.opts.Bucket, err)
	}

	policy, err := PublicReadPolicy(s.opts.Bucket)
	if err != nil {
		return err
	}
	if err := s.backend.SetBucketPolicy(ctx, s.opts.Bucket, policy); err != nil {
		return fmt.Errorf("set policy on bucket %s: %w", s.opts.Bucket, err)
	}

	log.Info().Str("bucket", s.opts.Bucket).Msg("A new storage bucket has been created and the policy has been applied")
	return nil
}

// BucketExists is the storage health check.
func (s *Service) BucketExists(ctx context.Context) (bool, error) {
	start := time.Now()
	exists, err := s.backend.BucketExists(ctx, s.opts.Bucket)
	observe("bucket_exists", start, err)
	return exists, err
}

// ObjectKey builds userID/kind/filename.ext after validating each segment.
func ObjectKey(userID string, kind UploadKind, filename string) (string, error) {
	if _, err := ParseUploadKind(string(kind)); err != nil {
		return "", err
	}
	if err := validateSegment(userID); err != nil {
		return "", fmt.Errorf("user id: %w", err)
	}
	if err := validateSegment(filename); err != nil {
		return "", fmt.Errorf("filename: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s.%s", userID, kind, filename, kind.Extension()), nil
}

// UploadObject stores data under userID/kind/filename.ext and returns its
// public URL. Pictures and previews are normalised to a 600px JPEG. An empty
// filename gets a random one.
func (s *Service) UploadObject(ctx context.Context, userID string, kind UploadKind, data []byte, filename string) (string, error) {
	if filename == "" {
		filename = uuid.NewString()
	}

	key, err := ObjectKey(userID, kind, filename)
	if err != nil {
		return "", err
	}

	opts := PutOptions{ContentType: kind.ContentType()}
	if kind == KindResumes {
		opts.ContentDisposition = fmt.Sprintf("attachment; filename=%s.%s", filename, kind.Extension())
	} else {
		data, err = processPicture(data)
		if err != nil {
			return "", err
		}
	}

	start := time.Now()
	err = s.backend.PutObject(ctx, s.opts.Bucket, key, bytes.NewReader(data), int64(len(data)), opts)
	observe("put_object", start, err)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to upload object")
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	url := s.opts.PublicURL + "/" + key

	if err := s.assets.Record(ctx, &domain.Asset{
		UserID:      userID,
		Kind:        string(kind),
		Key:         key,
		URL:         url,
		Size:        int64(len(data)),
		ContentType: opts.ContentType,
	}); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to record asset")
	}
	if err := s.presign.InvalidatePrefix(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to invalidate presigned url")
	}

	return url, nil
}

// GetObject streams an object for the proxy endpoint. The caller closes the
// reader.
func (s *Service) GetObject(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if err := validateKey(key); err != nil {
		return nil, ObjectInfo{}, err
	}
	start := time.Now()
	rc, info, err := s.backend.GetObject(ctx, s.opts.Bucket, key)
	observe("get_object", start, err)
	return rc, info, err
}

func (s *Service) DeleteObject(ctx context.Context, userID string, kind UploadKind, filename string) error {
	key, err := ObjectKey(userID, kind, filename)
	if err != nil {
		return err
	}

	start := time.Now()
	err = s.backend.RemoveObject(ctx, s.opts.Bucket, key)
	observe("remove_object", start, err)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	if err := s.assets.DeleteByKey(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to delete asset record")
	}
	if err := s.presign.InvalidatePrefix(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to invalidate presigned url")
	}
	return nil
}

// DeleteFolder removes every object under the folder prefix, e.g. a user's
// whole folder when the account is deleted. The prefix always names a
// folder: "user-1" deletes "user-1/..." and never "user-10/...".
func (s *Service) DeleteFolder(ctx context.Context, prefix string) (int, error) {
	if strings.TrimSpace(prefix) == "" || strings.Trim(prefix, "/") == "" {
		return 0, fmt.Errorf("%w: refusing to delete the bucket root", ErrInvalidKey)
	}
	prefix = folderPrefix(prefix)

	start := time.Now()
	objects, err := s.backend.ListObjects(ctx, s.opts.Bucket, prefix)
	observe("list_objects", start, err)
	if err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.DeleteConcurrency)
	for _, object := range objects {
		key := object.Key
		g.Go(func() error {
			start := time.Now()
			err := s.backend.RemoveObject(gctx, s.opts.Bucket, key)
			observe("remove_object", start, err)
			if err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if _, err := s.assets.DeleteByPrefix(ctx, prefix); err != nil {
		log.Warn().Err(err).Str("prefix", prefix).Msg("failed to delete asset records")
	}
	if err := s.presign.InvalidatePrefix(ctx, prefix); err != nil {
		log.Warn().Err(err).Str("prefix", prefix).Msg("failed to invalidate presigned urls")
	}

	log.Info().Str("prefix", prefix).Int("objects", len(objects)).Msg("Deleted storage folder")
	return len(objects), nil
}

// ListObjects lists objects under prefix.
func (s *Service) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	start := time.Now()
	objects, err := s.backend.ListObjects(ctx, s.opts.Bucket, prefix)
	observe("list_objects", start, err)
	return objects, err
}

func (s *Service) ListAssets(ctx context.Context, userID string) ([]*domain.Asset, error) {
	if err := validateSegment(userID); err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}
	return s.assets.ListByUser(ctx, userID)
}

// PresignedURL returns a time-limited GET URL for key, served from cache
// when possible.
func (s *Service) PresignedURL(ctx context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	if url, ok, err := s.presign.Get(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("presign cache lookup failed")
	} else if ok {
		return url, nil
	}

	if _, err := s.backend.StatObject(ctx, s.opts.Bucket, key); err != nil {
		return "", err
	}

	start := time.Now()
	url, err := s.backend.PresignGetObject(ctx, s.opts.Bucket, key, s.opts.PresignTTL)
	observe("presign", start, err)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}

	if ttl := s.opts.PresignTTL - presignCacheMargin; ttl > 0 {
		if err := s.presign.Set(ctx, key, url, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to cache presigned url")
		}
	}
	return url, nil
}

func folderPrefix(prefix string) string {
	if strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}

func validateSegment(s string) error {
	switch {
	case s == "":
		return fmt.Errorf("%w: empty segment", ErrInvalidKey)
	case s == "." || s == "..":
		return fmt.Errorf("%w: %q", ErrInvalidKey, s)
	case strings.ContainsAny(s, "/\\"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidKey, s)
	}
	return nil
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
