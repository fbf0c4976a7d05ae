package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type fakeObject struct {
	data []byte
	opts PutOptions
}

// fakeBackend is an in-memory Backend.
type fakeBackend struct {
	mu        sync.Mutex
	buckets   map[string]bool
	policies  map[string]string
	objects   map[string]fakeObject
	presigned int

	putErr    error
	existsErr error
	removeErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		buckets:  map[string]bool{},
		policies: map[string]string{},
		objects:  map[string]fakeObject{},
	}
}

func (f *fakeBackend) BucketExists(ctx context.Context, bucket string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.buckets[bucket], nil
}

func (f *fakeBackend) MakeBucket(ctx context.Context, bucket, region string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buckets[bucket] = true
	return nil
}

func (f *fakeBackend) SetBucketPolicy(ctx context.Context, bucket, policy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.policies[bucket] = policy
	return nil
}

func (f *fakeBackend) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts PutOptions) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: %d != %d", len(data), size)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = fakeObject{data: data, opts: opts}
	return nil
}

func (f *fakeBackend) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	info, err := f.StatObject(ctx, bucket, key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return io.NopCloser(bytes.NewReader(f.objects[key].data)), info, nil
}

func (f *fakeBackend) StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[key]
	if !ok {
		return ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return ObjectInfo{
		Key:          key,
		Size:         int64(len(obj.data)),
		ContentType:  obj.opts.ContentType,
		ETag:         "etag-" + key,
		LastModified: time.Unix(0, 0),
	}, nil
}

func (f *fakeBackend) RemoveObject(ctx context.Context, bucket, key string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeBackend) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ObjectInfo
	for key, obj := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectInfo{Key: key, Size: int64(len(obj.data))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeBackend) PresignGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presigned++
	return fmt.Sprintf("https://signed.example/%s/%s?expires=%d&n=%d", bucket, key, int(expiry.Seconds()), f.presigned), nil
}

func (f *fakeBackend) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func (f *fakeBackend) object(key string) (fakeObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[key]
	if !ok {
		return fakeObject{}, errors.New("missing " + key)
	}
	return obj, nil
}

var _ Backend = (*fakeBackend)(nil)
