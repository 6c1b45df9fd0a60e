// Package service uploads agency logos and serves them back.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"immersionfacile/internal/document/store"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/platform/sentinel"
)

// MaxFileSize bounds uploads to 5 MiB.
const MaxFileSize = 5 << 20

var allowedContentTypes = map[string]struct{}{
	"image/png":     {},
	"image/jpeg":    {},
	"image/svg+xml": {},
	"image/webp":    {},
}

type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, store.Object, error)
}

type Service struct {
	files         Store
	publicBaseURL string
	newID         func() string
	logger        *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

func New(files Store, publicBaseURL string, opts ...Option) *Service {
	s := &Service{
		files:         files,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		newID:         uuid.NewString,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadFile stores r under a fresh key keeping the name's extension and
// returns its public URL.
func (s *Service) UploadFile(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if _, ok := allowedContentTypes[contentType]; !ok {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "content type %q is not allowed", contentType)
	}
	if size <= 0 || size > MaxFileSize {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "file size must be between 1 and %d bytes", MaxFileSize)
	}
	key := s.newID() + strings.ToLower(path.Ext(name))
	if err := s.files.Put(ctx, key, r, size, contentType); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store file")
	}
	s.logger.InfoContext(ctx, "file uploaded",
		"key", key,
		"size", size,
		"content_type", contentType,
	)
	return s.publicBaseURL + "/" + key, nil
}

// GetFile opens a stored file. The caller closes the reader.
func (s *Service) GetFile(ctx context.Context, key string) (io.ReadCloser, store.Object, error) {
	rc, obj, err := s.files.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, store.Object{}, dErrors.Newf(dErrors.CodeNotFound, "file %s not found", key)
		}
		return nil, store.Object{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read file")
	}
	return rc, obj, nil
}
