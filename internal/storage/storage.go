package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"

	"quartz-site/internal/metrics"
	"quartz-site/internal/repo"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultMaxBytes is the upload limit when none is configured.
const DefaultMaxBytes = 2 * 1024 * 1024

// URLPrefix is the public path images are served under.
const URLPrefix = "/images/"

// AllowedTypes lists the accepted image content types.
var AllowedTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif"}

var (
	// ErrEmpty is returned for a zero-byte upload.
	ErrEmpty = errors.New("image file is empty")
	// ErrUnsupportedType is returned for content outside AllowedTypes.
	ErrUnsupportedType = fmt.Errorf("Invalid file type. Allowed types: %s", strings.Join(AllowedTypes, ", "))
)

// TooLargeError reports an upload over the limit.
type TooLargeError struct {
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("File size exceeds %gMB limit", float64(e.Limit)/1024/1024)
}

// Store persists image blobs.
type Store interface {
	PutImage(ctx context.Context, obj repo.ImageObject) error
	GetImage(ctx context.Context, key string) (*repo.ImageObject, error)
	DeleteImage(ctx context.Context, key string) error
}

// Service validates and stores uploaded images.
type Service struct {
	store    Store
	maxBytes int64
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewService builds the image bucket. maxBytes <= 0 uses DefaultMaxBytes.
func NewService(store Store, maxBytes int64, logger *slog.Logger, m *metrics.Metrics) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{
		store:    store,
		maxBytes: maxBytes,
		logger:   logger.With("component", "storage"),
		metrics:  m,
	}
}

// MaxBytes returns the configured upload limit.
func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Upload validates r and stores it under folder, returning the public URL.
func (s *Service) Upload(ctx context.Context, folder string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		s.metrics.Upload("error")
		return "", fmt.Errorf("read upload: %w", err)
	}
	contentType, err := s.check(data)
	if err != nil {
		s.metrics.Upload("rejected")
		return "", err
	}

	key := uuid.NewString()
	if folder = strings.Trim(strings.TrimSpace(folder), "/"); folder == "" {
		folder = "general"
	}
	obj := repo.ImageObject{
		Key:         key,
		Folder:      folder,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}
	if err := s.store.PutImage(ctx, obj); err != nil {
		s.metrics.Upload("error")
		s.metrics.Error("storage")
		return "", fmt.Errorf("store image: %w", err)
	}
	s.metrics.Upload("stored")
	s.logger.Info("image stored", "key", key, "folder", folder, "content_type", contentType, "size", len(data))
	return URLPrefix + key, nil
}

// UploadFile stores a single multipart file.
func (s *Service) UploadFile(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxBytes {
		s.metrics.Upload("rejected")
		return "", &TooLargeError{Limit: s.maxBytes}
	}
	f, err := fh.Open()
	if err != nil {
		s.metrics.Upload("error")
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return s.Upload(ctx, folder, f)
}

// UploadFiles stores files one after another and stops at the first failure.
func (s *Service) UploadFiles(ctx context.Context, folder string, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := s.UploadFile(ctx, folder, fh)
		if err != nil {
			return urls, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// Get loads a stored image by key.
func (s *Service) Get(ctx context.Context, key string) (*repo.ImageObject, error) {
	return s.store.GetImage(ctx, key)
}

// Discard deletes images stored by this service, identified by their public
// URLs. URLs outside URLPrefix are skipped and failures are only logged.
func (s *Service) Discard(ctx context.Context, urls []string) {
	for _, url := range urls {
		key, ok := strings.CutPrefix(url, URLPrefix)
		if !ok || key == "" {
			continue
		}
		if err := s.store.DeleteImage(ctx, key); err != nil {
			if !errors.Is(err, repo.ErrNotFound) {
				s.metrics.Error("storage")
				s.logger.Warn("failed discarding image", "key", key, "error", err)
			}
			continue
		}
		s.logger.Info("image discarded", "key", key)
	}
}

func (s *Service) check(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if int64(len(data)) > s.maxBytes {
		return "", &TooLargeError{Limit: s.maxBytes}
	}
	detected := mimetype.Detect(data)
	for _, allowed := range AllowedTypes {
		if detected.Is(allowed) {
			return allowed, nil
		}
	}
	return "", ErrUnsupportedType
}

// IsUploadError reports whether err is a client-side upload rejection.
func IsUploadError(err error) bool {
	var tooLarge *TooLargeError
	return errors.Is(err, ErrEmpty) || errors.Is(err, ErrUnsupportedType) || errors.As(err, &tooLarge)
}
