package media

import (
	"context"
	"fmt"

	"github.com/aagaur/studiocms/config"
)

// NewHost builds the media host selected by MEDIA_PROVIDER.
func NewHost(ctx context.Context, cfg config.AppConfig) (Host, error) {
	switch cfg.MediaProvider {
	case "cloudinary", "":
		return NewCloudinaryHost(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	case "s3", "r2":
		return NewS3Host(S3Config{
			Provider:  cfg.MediaProvider,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			BaseURL:   cfg.S3BaseURL,
		})
	case "azure":
		return NewAzureHost(ctx, cfg.AzureConnection, cfg.AzureContainer)
	case "local":
		return NewLocalHost(cfg.LocalMediaDir, cfg.LocalMediaBaseURL)
	default:
		return nil, fmt.Errorf("unknown media provider %q", cfg.MediaProvider)
	}
}

// LimitsFrom converts the upload settings to byte limits.
func LimitsFrom(cfg config.AppConfig) Limits {
	return Limits{
		MaxFileBytes: int64(cfg.UploadMaxFileMB) << 20,
		MaxFiles:     cfg.UploadMaxFiles,
	}
}
