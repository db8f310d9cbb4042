package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// CloudinaryConfig contains credentials required to talk to Cloudinary.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Cloudinary stores files as authenticated raw assets and signs delivery URLs.
type Cloudinary struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// NewCloudinary constructs a Cloudinary backend.
func NewCloudinary(cfg CloudinaryConfig, logger zerolog.Logger) (*Cloudinary, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Cloudinary{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload sends the file to Cloudinary as an authenticated raw asset. The returned
// path is the asset public ID.
func (c *Cloudinary) Upload(ctx context.Context, data []byte, destination, _ string) (UploadResult, error) {
	if err := validateDestination(destination); err != nil {
		return UploadResult{}, err
	}

	params := uploader.UploadParams{
		PublicID:     JoinPath(c.folder, destination),
		ResourceType: "raw",
		Type:         api.Authenticated,
	}

	result, err := c.client.Upload.Upload(ctx, bytes.NewReader(data), params)
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to upload asset: %w", err)
	}
	if result.Error.Message != "" {
		return UploadResult{}, fmt.Errorf("failed to upload asset: %s", result.Error.Message)
	}

	c.logger.Info().Str("public_id", result.PublicID).Msg("file uploaded to cloudinary")

	return UploadResult{Path: result.PublicID}, nil
}

// SignedURL builds a signed delivery URL for an authenticated asset. Cloudinary URL
// signatures carry no expiry, so ttl is not applied.
func (c *Cloudinary) SignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	asset, err := c.client.File(path)
	if err != nil {
		return "", fmt.Errorf("failed to build asset %s: %w", path, err)
	}

	asset.DeliveryType = api.Authenticated
	asset.Config.URL.Secure = true
	asset.Config.URL.SignURL = true

	signed, err := asset.String()
	if err != nil {
		return "", fmt.Errorf("failed to sign %s: %w", path, err)
	}

	return signed, nil
}
