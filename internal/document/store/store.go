// Package store holds the uploaded file backends.
package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"immersionfacile/internal/platform/config"
	"immersionfacile/pkg/platform/sentinel"
)

// Object is a stored file.
type Object struct {
	Key         string
	Size        int64
	ContentType string
}

// MinIO stores files in an S3-compatible bucket. Safe for concurrent use.
type MinIO struct {
	client *minio.Client
	bucket string
}

// NewMinIO connects to the bucket and creates it when missing.
func NewMinIO(ctx context.Context, cfg config.Storage) (*MinIO, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinIO{client: cli, bucket: cfg.Bucket}, nil
}

func (m *MinIO) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (m *MinIO) Get(ctx context.Context, key string) (io.ReadCloser, Object, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, Object{}, fmt.Errorf("get object %s: %w", key, err)
	}
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, Object{}, sentinel.ErrNotFound
		}
		return nil, Object{}, fmt.Errorf("stat object %s: %w", key, err)
	}
	return obj, Object{Key: key, Size: st.Size, ContentType: st.ContentType}, nil
}

// InMemory keeps files in memory. Used when no bucket is configured.
type InMemory struct {
	mu    sync.RWMutex
	files map[string]memoryFile
}

type memoryFile struct {
	contentType string
	data        []byte
}

func NewInMemory() *InMemory {
	return &InMemory{files: make(map[string]memoryFile)}
}

func (s *InMemory) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = memoryFile{contentType: contentType, data: data}
	return nil
}

func (s *InMemory) Get(_ context.Context, key string) (io.ReadCloser, Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[key]
	if !ok {
		return nil, Object{}, sentinel.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(f.data)), Object{
		Key:         key,
		Size:        int64(len(f.data)),
		ContentType: f.contentType,
	}, nil
}
