package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"quartz-site/internal/repo"
)

// 1x1 transparent PNG.
var tinyPNG, _ = base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

type memStore struct {
	objects map[string]repo.ImageObject
}

func (m *memStore) PutImage(_ context.Context, obj repo.ImageObject) error {
	m.objects[obj.Key] = obj
	return nil
}

func (m *memStore) GetImage(_ context.Context, key string) (*repo.ImageObject, error) {
	obj, ok := m.objects[key]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &obj, nil
}

func (m *memStore) DeleteImage(_ context.Context, key string) error {
	if _, ok := m.objects[key]; !ok {
		return repo.ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

func newTestService(maxBytes int64) (*Service, *memStore) {
	store := &memStore{objects: map[string]repo.ImageObject{}}
	return NewService(store, maxBytes, slog.New(slog.NewTextHandler(io.Discard, nil)), nil), store
}

func TestUploadStoresDetectedType(t *testing.T) {
	svc, store := newTestService(0)

	url, err := svc.Upload(context.Background(), "/products/", bytes.NewReader(tinyPNG))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(url, URLPrefix) {
		t.Fatalf("unexpected url %q", url)
	}
	obj, err := svc.Get(context.Background(), strings.TrimPrefix(url, URLPrefix))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if obj.ContentType != "image/png" || obj.Folder != "products" || obj.Size != int64(len(tinyPNG)) {
		t.Fatalf("unexpected object %+v", obj)
	}
	if len(store.objects) != 1 {
		t.Fatalf("expected one object, got %d", len(store.objects))
	}
}

func TestUploadRejections(t *testing.T) {
	svc, store := newTestService(64)

	_, err := svc.Upload(context.Background(), "", bytes.NewReader(nil))
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected empty error, got %v", err)
	}
	_, err = svc.Upload(context.Background(), "", strings.NewReader("plain text is not an image"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected unsupported type, got %v", err)
	}
	big := append(append([]byte{}, tinyPNG...), make([]byte, 64)...)
	_, err = svc.Upload(context.Background(), "", bytes.NewReader(big))
	var tooLarge *TooLargeError
	if !errors.As(err, &tooLarge) || !IsUploadError(err) {
		t.Fatalf("expected too large, got %v", err)
	}
	if len(store.objects) != 0 {
		t.Fatal("rejected uploads must not be stored")
	}
}

func TestTooLargeMessage(t *testing.T) {
	err := &TooLargeError{Limit: DefaultMaxBytes}
	if err.Error() != "File size exceeds 2MB limit" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestDiscardRemovesOwnImagesOnly(t *testing.T) {
	svc, store := newTestService(0)
	ctx := context.Background()

	kept, err := svc.Upload(ctx, "gallery", bytes.NewReader(tinyPNG))
	if err != nil {
		t.Fatalf("upload kept: %v", err)
	}
	dropped, err := svc.Upload(ctx, "gallery", bytes.NewReader(tinyPNG))
	if err != nil {
		t.Fatalf("upload dropped: %v", err)
	}

	svc.Discard(ctx, []string{dropped, "https://cdn.example.com/a.png", URLPrefix + "missing"})

	if len(store.objects) != 1 {
		t.Fatalf("expected one object left, got %d", len(store.objects))
	}
	if _, err := svc.Get(ctx, strings.TrimPrefix(kept, URLPrefix)); err != nil {
		t.Fatalf("kept image gone: %v", err)
	}
	if _, err := svc.Get(ctx, strings.TrimPrefix(dropped, URLPrefix)); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected dropped image to be gone, got %v", err)
	}
}
