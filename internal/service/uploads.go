package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/gema-assessment-api/internal/models"
	"github.com/noah-isme/gema-assessment-api/internal/observability"
	"github.com/noah-isme/gema-assessment-api/pkg/blob"
)

// FileUpload is an in-memory file received from a client.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadOptions bounds uploads handled by a service.
type UploadOptions struct {
	MaxSizeMB   int
	Concurrency int
}

type batchUploader struct {
	storage     blob.Storage
	maxSize     int64
	concurrency int
	logger      zerolog.Logger
}

func newBatchUploader(storage blob.Storage, opts UploadOptions, logger zerolog.Logger) *batchUploader {
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 20
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &batchUploader{
		storage:     storage,
		maxSize:     int64(opts.MaxSizeMB) * 1024 * 1024,
		concurrency: opts.Concurrency,
		logger:      logger,
	}
}

func (u *batchUploader) validate(files []FileUpload) error {
	for _, file := range files {
		if int64(len(file.Data)) > u.maxSize {
			observability.UploadRejected().WithLabelValues("size").Inc()
			return newValidationError("files", fmt.Sprintf("%s exceeds the %d MB limit", displayName(file.Name), u.maxSize/(1024*1024)))
		}
		if len(file.Data) == 0 {
			observability.UploadRejected().WithLabelValues("empty").Inc()
			return newValidationError("files", fmt.Sprintf("%s is empty", displayName(file.Name)))
		}
	}
	return nil
}

// uploadAll stores every file under dir and returns their references in input order.
// It fails as a whole when any upload fails. With keepPublicURL the backend's public
// URL is kept when one is returned; otherwise only the private path is recorded.
func (u *batchUploader) uploadAll(ctx context.Context, scope, dir string, files []FileUpload, keepPublicURL bool) ([]models.StoredFile, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if err := u.validate(files); err != nil {
		return nil, err
	}

	stored := make([]models.StoredFile, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(u.concurrency)

	for i, file := range files {
		i, file := i, file
		group.Go(func() error {
			name := displayName(file.Name)
			destination := blob.JoinPath(dir, blob.UniqueName(name))

			start := time.Now()
			result, err := u.storage.Upload(groupCtx, file.Data, destination, contentTypeOf(file))
			observability.UploadLatency().WithLabelValues(scope).Observe(time.Since(start).Seconds())
			if err != nil {
				observability.UploadRejected().WithLabelValues("storage").Inc()
				u.logger.Error().Err(err).Str("destination", destination).Msg("blob upload failed")
				return fmt.Errorf("upload %s: %w", name, err)
			}

			ref := models.StoredFile{Name: name, Path: result.Path}
			if keepPublicURL && result.PublicURL != "" {
				ref = models.StoredFile{Name: name, URL: result.PublicURL}
			}
			stored[i] = ref
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return stored, nil
}

func displayName(name string) string {
	trimmed := strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if trimmed == "" || trimmed == "." || trimmed == "/" {
		return "file"
	}
	return trimmed
}

func contentTypeOf(file FileUpload) string {
	contentType := strings.TrimSpace(file.ContentType)
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	return mimetype.Detect(file.Data).String()
}
