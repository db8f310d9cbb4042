// Package blob provides binary object storage backends that can hand out
// time-limited links for private objects.
package blob

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadResult describes where an object landed. PublicURL is empty for backends
// that only store private objects; Path is always set and never expires.
type UploadResult struct {
	PublicURL string
	Path      string
}

// Storage stores binary objects and signs links to private ones.
type Storage interface {
	Upload(ctx context.Context, data []byte, destination, contentType string) (UploadResult, error)
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// UniqueName returns a collision-free object name that keeps the original extension.
func UniqueName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}

// JoinPath builds an object path from segments, skipping empty ones.
func JoinPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		trimmed := strings.Trim(strings.TrimSpace(segment), "/")
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "/")
}

func validateDestination(destination string) error {
	if strings.TrimSpace(destination) == "" {
		return fmt.Errorf("destination path must not be empty")
	}
	return nil
}
