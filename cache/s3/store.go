package s3

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/mwantia/cmdkit/cache"
)

// Store persists cache entries as objects in an S3-compatible bucket.
// Object storage records no access times, so both timestamps report the
// last modification and eviction degrades to most-recently-written order.
type Store struct {
	mu sync.RWMutex

	client *minio.Client
	bucket string
	prefix string
}

func NewStore(endpoint, bucket, prefix, accessKey, secretKey string, useSsl bool) (*Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSsl,
	})
	if err != nil {
		return nil, err
	}

	return &Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (s *Store) Name() string { return "s3" }

func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return cache.ErrUnavailable
	}

	return nil
}

func (s *Store) Close(ctx context.Context) error { return nil }

func (s *Store) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

func (s *Store) Stat(ctx context.Context, key string) (*cache.EntryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := s.client.StatObject(ctx, s.bucket, s.objectKey(key), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, cache.ErrNotExist
		}
		return nil, err
	}

	return &cache.EntryInfo{
		Key:        key,
		Size:       info.Size,
		ModifyTime: info.LastModified,
		AccessTime: info.LastModified,
	}, nil
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	object, err := s.client.GetObject(ctx, s.bucket, s.objectKey(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, cache.ErrNotExist
		}
		return nil, err
	}

	return data, nil
}

func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.client.PutObject(ctx, s.bucket, s.objectKey(key),
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.client.RemoveObject(ctx, s.bucket, s.objectKey(key), minio.RemoveObjectOptions{})
}

func (s *Store) List(ctx context.Context) ([]*cache.EntryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listPrefix := ""
	if s.prefix != "" {
		listPrefix = s.prefix + "/"
	}

	var entries []*cache.EntryInfo
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    listPrefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, object.Err
		}

		key := object.Key
		if listPrefix != "" {
			key = key[len(listPrefix):]
		}

		entries = append(entries, &cache.EntryInfo{
			Key:        key,
			Size:       object.Size,
			ModifyTime: object.LastModified,
			AccessTime: object.LastModified,
		})
	}

	return entries, nil
}
