package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// MinioStore holds submission archives in an S3-compatible bucket. It also
// satisfies services.FileStore for the workflow engine's cleanup path.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewFromEnv builds the client from S3_* environment variables and makes
// sure the bucket exists.
func NewFromEnv() (*MinioStore, error) {
	endpoint := os.Getenv("S3_ENDPOINT")
	accessKey := os.Getenv("S3_ACCESS_KEY")
	secretKey := os.Getenv("S3_SECRET_KEY")
	bucket := os.Getenv("S3_BUCKET")
	useSSL := os.Getenv("S3_USE_SSL") == "true"

	if endpoint == "" || bucket == "" {
		return nil, fmt.Errorf("S3_ENDPOINT and S3_BUCKET must be set")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
		log.WithField("bucket", bucket).Info("created storage bucket")
	}

	return &MinioStore{client: client, bucket: bucket}, nil
}

// Upload stores the archive under a timestamped key and returns the key.
func (s *MinioStore) Upload(ctx context.Context, data []byte, fileName, contentType string) (string, error) {
	key := fmt.Sprintf("%d-%s", time.Now().Unix(), fileName)

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return key, nil
}

// SignedURL returns a short-lived download URL for the stored archive.
func (s *MinioStore) SignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = time.Minute
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expires, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to create signed URL: %w", err)
	}
	return u.String(), nil
}

// Remove deletes the stored archive.
func (s *MinioStore) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
