package asset

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// cloudinaryUploader implements Uploader on Cloudinary, the host the public
// menu serves its dish images from.
type cloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// NewCloudinaryUploader creates a Cloudinary-backed image uploader.
func NewCloudinaryUploader(cloudName, apiKey, apiSecret, folder string, logger zerolog.Logger) (Uploader, error) {
	logger = logger.With().Str("component", "cloudinary-uploader").Logger()

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create cloudinary client")
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}

	logger.Info().
		Str("cloud", cloudName).
		Str("folder", folder).
		Msg("cloudinary uploader initialised")

	return &cloudinaryUploader{
		cld:    cld,
		folder: folder,
		logger: logger,
	}, nil
}

// Upload sends the image to Cloudinary and returns the secure delivery URL.
func (u *cloudinaryUploader) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, content, uploader.UploadParams{
		Folder: u.folder,
	})
	if err != nil {
		u.logger.Error().Err(err).Str("filename", filename).Msg("failed to upload image")
		return "", fmt.Errorf("failed to upload image to cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		u.logger.Error().Str("filename", filename).Str("error", resp.Error.Message).Msg("cloudinary rejected upload")
		return "", fmt.Errorf("cloudinary rejected upload: %s", resp.Error.Message)
	}

	u.logger.Info().
		Str("filename", filename).
		Str("url", resp.SecureURL).
		Msg("image uploaded")

	return resp.SecureURL, nil
}
