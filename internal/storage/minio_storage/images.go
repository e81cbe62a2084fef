package minio_storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// ImageStorage keeps images of one owner kind (levels, users) in a bucket.
type ImageStorage struct {
	storage      *MinioStorage
	bucket       string
	prefix       string
	presignedTTL time.Duration
}

func NewImageStorage(ctx context.Context, storage *MinioStorage, bucketName, prefix string, presignedTTL time.Duration) (*ImageStorage, error) {
	if err := storage.ensureBucket(ctx, bucketName); err != nil {
		return nil, err
	}
	if presignedTTL <= 0 {
		presignedTTL = time.Hour
	}
	return &ImageStorage{storage: storage, bucket: bucketName, prefix: prefix, presignedTTL: presignedTTL}, nil
}

// ObjectKey builds a fresh key for an owner's image so a replaced image never
// shares a presigned URL with its predecessor.
func ObjectKey(prefix string, ownerID uuid.UUID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("%s/%s/%s%s", prefix, ownerID.String(), uuid.NewString(), ext)
}

// ContentType falls back to the extension and then to a generic binary type.
func ContentType(filename, declared string) string {
	if declared != "" {
		return declared
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (s *ImageStorage) Upload(
	ctx context.Context,
	ownerID uuid.UUID,
	filename string,
	reader io.Reader,
	size int64,
	contentType string,
) (objectKey string, err error) {
	objectKey = ObjectKey(s.prefix, ownerID, filename)

	_, err = s.storage.client.PutObject(
		ctx,
		s.bucket,
		objectKey,
		reader,
		size,
		minio.PutObjectOptions{ContentType: ContentType(filename, contentType)},
	)
	if err != nil {
		return "", err
	}
	return objectKey, nil
}

func (s *ImageStorage) URL(ctx context.Context, objectKey string) (string, error) {
	presignedURL, err := s.storage.client.PresignedGetObject(
		ctx,
		s.bucket,
		objectKey,
		s.presignedTTL,
		make(url.Values),
	)
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}

func (s *ImageStorage) Delete(ctx context.Context, objectKey string) error {
	return s.storage.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}
