// Package storage keeps uploaded product images on local disk or in an
// S3-compatible bucket and hands back the public URL of each stored file.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"santafe-store/internal/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedImage = errors.New("only jpeg, png, gif and webp images are allowed")
	ErrImageTooLarge    = errors.New("image exceeds the upload size limit")
	ErrEmptyImage       = errors.New("image is empty")
)

// allowedImageTypes maps accepted MIME types to the extension used on disk
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageStore persists product images
type ImageStore interface {
	// Save writes the image under name and returns the URL clients fetch it from
	Save(ctx context.Context, name string, contentType string, r io.Reader, size int64) (string, error)
	// Delete removes an image previously returned by Save. Unknown URLs are ignored.
	Delete(ctx context.Context, url string) error
}

// Image is a sniffed upload ready to be stored
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DetectImage sniffs the upload's content and accepts only the allowed
// image types. The client-supplied filename and header are not trusted.
func DetectImage(data []byte, maxBytes int64) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrImageTooLarge
	}

	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if ext, ok := allowedImageTypes[m.String()]; ok {
			return &Image{Data: data, ContentType: m.String(), Extension: ext}, nil
		}
	}

	return nil, fmt.Errorf("%w: got %s", ErrUnsupportedImage, mt.String())
}

// NewImageName returns a unique object name for a product image
func NewImageName(ext string) string {
	return "product-" + uuid.NewString() + ext
}

// New builds the image store selected by cfg.Driver
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (ImageStore, error) {
	switch cfg.Driver {
	case "", "disk":
		logger.Info("Using disk image store", zap.String("dir", cfg.UploadsDir))
		return NewDiskImageStore(cfg.UploadsDir)
	case "minio":
		logger.Info("Using MinIO image store",
			zap.String("endpoint", cfg.MinioEndpoint),
			zap.String("bucket", cfg.MinioBucket),
		)
		return NewMinioImageStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
