package storage

import (
	"context"
	"fmt"

	"github.com/bwise1/reportnow/config"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type Cloudinary struct {
	CLD    *cloudinary.Cloudinary
	Folder string
}

func NewCloudinary(cfg *config.Config) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &Cloudinary{CLD: cld, Folder: cfg.CloudinaryFolder}, nil
}

// UploadImage sends the data URL as is; Cloudinary accepts data URIs as the
// upload source.
func (c *Cloudinary) UploadImage(ctx context.Context, image string, reportID string) (string, error) {
	resp, err := c.CLD.Upload.Upload(ctx, image, uploader.UploadParams{
		Folder:   c.Folder,
		PublicID: reportID,
	})
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}
