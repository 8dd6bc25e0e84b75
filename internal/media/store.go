package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// Store persists an object and returns its public URL.
type Store interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// ----------------- Cloud Storage -----------------

type GCSStore struct {
	client        *storage.Client
	bucket        string
	prefix        string
	publicBaseURL string
}

// NewGCSStore expects the bucket to be publicly readable (uniform access).
func NewGCSStore(client *storage.Client, bucket, prefix string) *GCSStore {
	return &GCSStore{
		client:        client,
		bucket:        strings.TrimSpace(bucket),
		prefix:        strings.Trim(prefix, "/"),
		publicBaseURL: "https://storage.googleapis.com",
	}
}

func (s *GCSStore) objectPath(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func (s *GCSStore) publicURL(objectPath string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, objectPath)
}

func (s *GCSStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if s.client == nil {
		return "", errors.New("media: storage client is nil")
	}
	if s.bucket == "" {
		return "", errors.New("media: bucket is empty")
	}

	path := s.objectPath(name)
	w := s.client.Bucket(s.bucket).Object(path).
		If(storage.Conditions{DoesNotExist: true}).
		NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"
	w.Metadata = map[string]string{
		"uploadedAt": time.Now().UTC().Format(time.RFC3339),
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("media: gcs write: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("media: gcs close: %w", err)
	}
	return s.publicURL(path), nil
}

// ----------------- Local disk -----------------

// LocalStore writes under dir and serves files from publicPrefix.
type LocalStore struct {
	dir          string
	publicPrefix string
}

func NewLocalStore(dir, publicPrefix string) *LocalStore {
	return &LocalStore{dir: dir, publicPrefix: "/" + strings.Trim(publicPrefix, "/")}
}

func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("media: create upload dir: %w", err)
	}

	path := filepath.Join(s.dir, filepath.Base(name))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("media: create file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("media: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	return s.publicPrefix + "/" + filepath.Base(name), nil
}
