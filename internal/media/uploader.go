// Package media stores product images uploaded by staff.
package media

import (
	"context"
	"errors"
	"io"
	"net/http"

	"storvbox-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const MaxUploadSize = 10 << 20

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type Upload struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

type Uploader struct {
	store   Store
	maxSize int64
}

func NewUploader(store Store) *Uploader {
	return &Uploader{store: store, maxSize: MaxUploadSize}
}

// Upload sniffs the content type from the bytes instead of trusting the
// client, then stores the file under a random name.
func (u *Uploader) Upload(ctx context.Context, r io.Reader) (*Upload, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "media"),
		zap.String("method", "Upload"),
	)

	if r == nil {
		return nil, ErrNoFile
	}

	data, err := io.ReadAll(io.LimitReader(r, u.maxSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoFile
	}
	if int64(len(data)) > u.maxSize {
		return nil, ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		log.Info("rejected upload", zap.String("content_type", contentType))
		return nil, ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	url, err := u.store.Put(ctx, name, contentType, data)
	if err != nil {
		log.Error("failed to store upload", zap.Error(err))
		return nil, err
	}

	log.Info("file uploaded", zap.String("name", name), zap.Int("size", len(data)))
	return &Upload{URL: url, Name: name, ContentType: contentType, Size: len(data)}, nil
}

// IsTooLarge reports whether err came from an oversized request body.
func IsTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.Is(err, ErrTooLarge) || errors.As(err, &maxErr)
}
