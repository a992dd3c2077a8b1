package storage

import (
	"context"
	"fmt"

	"github.com/bwise1/reportnow/config"
)

// ImageStore persists a staged report photo and returns its public URL.
// image is the base64 data URL submitted with the report.
type ImageStore interface {
	UploadImage(ctx context.Context, image string, reportID string) (string, error)
}

// New builds the image store selected by STORAGE_PROVIDER.
func New(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.StorageProvider {
	case "", "cloudinary":
		if cfg.CloudinaryCloudName == "" {
			return nil, fmt.Errorf("CLOUDINARY_CLOUD_NAME is required for the cloudinary provider")
		}
		cld, err := NewCloudinary(cfg)
		if err != nil {
			return nil, err
		}
		return cld, nil
	case "minio":
		m, err := NewMinIO(ctx, MinIOConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("STORAGE_PROVIDER must be either 'cloudinary' or 'minio', got: %s", cfg.StorageProvider)
	}
}
