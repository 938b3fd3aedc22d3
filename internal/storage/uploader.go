package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Uploader stores review images and returns a URL clients can embed.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// s3Uploader implements Uploader against AWS S3.
type s3Uploader struct {
	client *s3.Client
	bucket string
	region string
	prefix string
	logger zerolog.Logger
}

// NewS3Uploader creates a new S3-based image uploader.
func NewS3Uploader(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Uploader, error) {
	logger = logger.With().Str("component", "s3-uploader").Logger()

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
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

// Upload writes the object to S3 and returns its public URL.
func (u *s3Uploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	fullKey := path.Join(u.prefix, key)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(fullKey),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		u.logger.Error().
			Err(err).
			Str("bucket", u.bucket).
			Str("key", fullKey).
			Msg("failed to upload object to S3")
		return "", fmt.Errorf("failed to upload object to S3 (bucket=%s, key=%s): %w", u.bucket, fullKey, err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, fullKey)

	u.logger.Debug().
		Str("key", fullKey).
		Str("url", url).
		Msg("object uploaded")

	return url, nil
}

// fileUploader implements Uploader on the local file system. Used in
// development when S3 is disabled, mirroring the S3-or-local fallback of the
// rest of the configuration.
type fileUploader struct {
	dir    string
	logger zerolog.Logger
}

// NewFileUploader creates an uploader that writes into a local directory.
func NewFileUploader(dir string, logger zerolog.Logger) Uploader {
	return &fileUploader{
		dir:    dir,
		logger: logger.With().Str("component", "file-uploader").Logger(),
	}
}

// Upload writes the object under the local directory and returns a file URL.
func (u *fileUploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	dest := filepath.Join(u.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.Create(dest)
	if err != nil {
		u.logger.Error().Err(err).Str("path", dest).Msg("failed to create upload file")
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		u.logger.Error().Err(err).Str("path", dest).Msg("failed to write upload file")
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return "file://" + dest, nil
}
