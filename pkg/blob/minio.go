package blob

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// S3 presigned links cannot outlive seven days.
const maxPresignTTL = 7 * 24 * time.Hour

// MinioConfig contains connection settings for an S3-compatible object store.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Minio stores private objects in a bucket and signs presigned GET links.
type Minio struct {
	client *minio.Client
	bucket string
	logger zerolog.Logger
}

// NewMinio connects to the object store and makes sure the bucket exists.
func NewMinio(ctx context.Context, cfg MinioConfig, logger zerolog.Logger) (*Minio, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio endpoint, credentials and bucket must be provided")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &Minio{
		client: client,
		bucket: cfg.Bucket,
		logger: logger.With().Str("component", "minio").Logger(),
	}, nil
}

// Upload stores the object privately. Minio objects have no public URL.
func (m *Minio) Upload(ctx context.Context, data []byte, destination, contentType string) (UploadResult, error) {
	if err := validateDestination(destination); err != nil {
		return UploadResult{}, err
	}

	info, err := m.client.PutObject(ctx, m.bucket, destination, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to upload object: %w", err)
	}

	m.logger.Info().Str("path", info.Key).Int64("size_bytes", info.Size).Msg("object stored")

	return UploadResult{Path: destination}, nil
}

// SignedURL presigns a GET link for the object.
func (m *Minio) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if ttl <= 0 || ttl > maxPresignTTL {
		ttl = maxPresignTTL
	}

	signed, err := m.client.PresignedGetObject(ctx, m.bucket, path, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", path, err)
	}

	return signed.String(), nil
}
