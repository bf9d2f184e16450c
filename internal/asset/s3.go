package asset

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// s3Uploader implements Uploader on an AWS S3 bucket. Objects are stored under
// a configurable prefix with a random key so re-uploads never clobber the
// image a live product still references.
type s3Uploader struct {
	client *s3.Client
	bucket string
	region string
	prefix string
	logger zerolog.Logger
}

// NewS3Uploader creates an S3-backed image uploader.
func NewS3Uploader(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Uploader, error) {
	logger = logger.With().Str("component", "s3-uploader").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 uploader initialised")

	return &s3Uploader{
		client: client,
		bucket: bucket,
		region: region,
		prefix: prefix,
		logger: logger,
	}, nil
}

// Upload puts the image into the bucket and returns its public object URL.
func (u *s3Uploader) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	key := objectKey(u.prefix, filename)

	contentType := mime.TypeByExtension(path.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        content,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		u.logger.Error().
			Err(err).
			Str("bucket", u.bucket).
			Str("key", key).
			Msg("failed to put object")
		return "", fmt.Errorf("failed to upload image to S3 (bucket=%s, key=%s): %w", u.bucket, key, err)
	}

	url := objectURL(u.bucket, u.region, key)

	u.logger.Info().
		Str("key", key).
		Str("url", url).
		Msg("image uploaded")

	return url, nil
}

func objectKey(prefix, filename string) string {
	return prefix + uuid.NewString() + path.Ext(filename)
}

func objectURL(bucket, region, key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}
