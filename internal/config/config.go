package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage provider identifiers accepted by storage.provider.
const (
	StorageProviderMinio      = "minio"
	StorageProviderCloudinary = "cloudinary"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                   string
	AppEnv                    string
	AppPort                   string
	LogLevel                  string
	DatabaseURL               string
	RedisURL                  string
	JWTSecret                 string
	StorageProvider           string
	MinioEndpoint             string
	MinioAccessKey            string
	MinioSecretKey            string
	MinioBucket               string
	MinioUseSSL               bool
	CloudinaryCloudName       string
	CloudinaryAPIKey          string
	CloudinaryAPISecret       string
	CloudinaryUploadFolder    string
	SignedURLTTL              time.Duration
	ReportSignedURLTTL        time.Duration
	UploadMaxSizeMB           int
	UploadConcurrency         int
	RosterCacheTTL            time.Duration
	OTelEndpoint              string
	SubmissionRateLimitPerMin int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Assessment API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("cloudinary.folder", "gema/assessments")
	v.SetDefault("minio.bucket", "assessments")
	v.SetDefault("storage.signed_url_ttl", "60m")
	v.SetDefault("report.signed_url_ttl", "24h")
	v.SetDefault("upload.max_size_mb", 20)
	v.SetDefault("upload.concurrency", 4)
	v.SetDefault("roster.cache_ttl", "2m")
	v.SetDefault("rate_limit.submissions_per_minute", 20)

	signedTTL, err := parseDuration(v, "storage.signed_url_ttl", "60m")
	if err != nil {
		return Config{}, err
	}

	reportTTL, err := parseDuration(v, "report.signed_url_ttl", "24h")
	if err != nil {
		return Config{}, err
	}

	rosterTTL, err := parseDuration(v, "roster.cache_ttl", "2m")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:                   v.GetString("app.name"),
		AppEnv:                    v.GetString("app.env"),
		AppPort:                   v.GetString("app.port"),
		LogLevel:                  strings.ToLower(v.GetString("log.level")),
		DatabaseURL:               v.GetString("database.url"),
		RedisURL:                  v.GetString("redis.url"),
		JWTSecret:                 v.GetString("jwt.secret"),
		StorageProvider:           strings.ToLower(strings.TrimSpace(v.GetString("storage.provider"))),
		MinioEndpoint:             v.GetString("minio.endpoint"),
		MinioAccessKey:            v.GetString("minio.access_key"),
		MinioSecretKey:            v.GetString("minio.secret_key"),
		MinioBucket:               v.GetString("minio.bucket"),
		MinioUseSSL:               v.GetBool("minio.use_ssl"),
		CloudinaryCloudName:       v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:          v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:       v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder:    v.GetString("cloudinary.folder"),
		SignedURLTTL:              signedTTL,
		ReportSignedURLTTL:        reportTTL,
		UploadMaxSizeMB:           v.GetInt("upload.max_size_mb"),
		UploadConcurrency:         v.GetInt("upload.concurrency"),
		RosterCacheTTL:            rosterTTL,
		OTelEndpoint:              v.GetString("otel.endpoint"),
		SubmissionRateLimitPerMin: v.GetInt("rate_limit.submissions_per_minute"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.StorageProvider {
	case "", StorageProviderMinio, StorageProviderCloudinary:
	default:
		return Config{}, fmt.Errorf("unsupported storage provider %q", cfg.StorageProvider)
	}

	if cfg.UploadMaxSizeMB <= 0 {
		cfg.UploadMaxSizeMB = 20
	}

	if cfg.UploadConcurrency <= 0 {
		cfg.UploadConcurrency = 4
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key, fallback string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		raw = fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return parsed, nil
}
