package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"santafe-store/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioImageStore keeps images in an S3-compatible bucket
type MinioImageStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioImageStore connects to MinIO and creates the bucket when missing
func NewMinioImageStore(ctx context.Context, cfg config.StorageConfig) (*MinioImageStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
	}

	return &MinioImageStore{
		client:    client,
		bucket:    cfg.MinioBucket,
		publicURL: publicBaseURL(cfg),
	}, nil
}

// publicBaseURL is where clients fetch objects from, MINIO_PUBLIC_URL when
// set, otherwise the endpoint itself
func publicBaseURL(cfg config.StorageConfig) string {
	base := cfg.MinioPublicURL
	if base == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s", scheme, cfg.MinioEndpoint)
	}
	return fmt.Sprintf("%s/%s/", strings.TrimRight(base, "/"), cfg.MinioBucket)
}

func (s *MinioImageStore) Save(ctx context.Context, name string, contentType string, r io.Reader, size int64) (string, error) {
	objectName := "products/" + name

	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return s.publicURL + objectName, nil
}

func (s *MinioImageStore) Delete(ctx context.Context, url string) error {
	objectName, ok := strings.CutPrefix(url, s.publicURL)
	if !ok {
		return nil
	}

	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
