package blob

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const placeholderPrefix = "/local-placeholder/"

// Placeholder is used when no storage backend is configured. Uploads succeed
// without persisting bytes and every link points at a local placeholder path.
type Placeholder struct {
	logger zerolog.Logger
}

// NewPlaceholder constructs the unconfigured backend.
func NewPlaceholder(logger zerolog.Logger) *Placeholder {
	return &Placeholder{logger: logger.With().Str("component", "blob_placeholder").Logger()}
}

// Upload discards the payload and returns a placeholder reference.
func (p *Placeholder) Upload(_ context.Context, data []byte, destination, _ string) (UploadResult, error) {
	if err := validateDestination(destination); err != nil {
		return UploadResult{}, err
	}

	p.logger.Warn().Str("path", destination).Int("size_bytes", len(data)).Msg("storage not configured; upload discarded")

	return UploadResult{
		PublicURL: placeholderPrefix + destination,
		Path:      destination,
	}, nil
}

// SignedURL returns the placeholder reference for the path.
func (p *Placeholder) SignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return placeholderPrefix + path, nil
}
