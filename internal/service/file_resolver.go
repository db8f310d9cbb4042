package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assessment-api/internal/models"
	"github.com/noah-isme/gema-assessment-api/pkg/blob"
)

// FileResolver turns stored file references into downloadable links.
type FileResolver struct {
	storage blob.Storage
	ttl     time.Duration
	logger  zerolog.Logger
}

// NewFileResolver builds a resolver signing private files for ttl.
func NewFileResolver(storage blob.Storage, ttl time.Duration, logger zerolog.Logger) *FileResolver {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &FileResolver{
		storage: storage,
		ttl:     ttl,
		logger:  logger.With().Str("component", "file_resolver").Logger(),
	}
}

// Resolve signs every private file with the default ttl.
func (r *FileResolver) Resolve(ctx context.Context, files []models.StoredFile) []models.StoredFile {
	return r.ResolveWithTTL(ctx, files, r.ttl)
}

// ResolveWithTTL returns a copy of files where each private file carries a freshly
// signed URL. A signing failure leaves the URL blank; the stored URL is never reused.
func (r *FileResolver) ResolveWithTTL(ctx context.Context, files []models.StoredFile, ttl time.Duration) []models.StoredFile {
	resolved := make([]models.StoredFile, 0, len(files))
	for _, file := range files {
		if !file.IsPrivate() {
			resolved = append(resolved, file)
			continue
		}

		file.URL = ""
		if r.storage != nil {
			signed, err := r.storage.SignedURL(ctx, file.Path, ttl)
			if err != nil {
				r.logger.Warn().Err(err).Str("path", file.Path).Msg("failed to sign file url")
			} else {
				file.URL = signed
			}
		}
		resolved = append(resolved, file)
	}

	return resolved
}
