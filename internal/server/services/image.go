// This file implements ImageService, a thin wrapper around S3-compatible
// object storage for images embedded in notes. Objects are namespaced per
// owner so a caller can never delete another owner's object.
package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pradeep-dev/papertrail/internal/common"
	sc "github.com/pradeep-dev/papertrail/internal/server/config"
)

const urlExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ImageUpload is the result of a successful upload.
type ImageUpload struct {
	Key    string
	URL    string
	Format string
}

// ImageService stores and serves user images in an S3-compatible bucket.
type ImageService struct {
	config *sc.Config
}

// NewImageService constructs an ImageService from server config.
func NewImageService(config *sc.Config) *ImageService {
	return &ImageService{config: config}
}

// userFolder is the caller's object namespace. Every key the caller may
// touch lives under this prefix.
func userFolder(userID int64) string {
	return fmt.Sprintf("papertrail/user_%d", userID)
}

func (s *ImageService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3.RootUser,
			s.config.S3.RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3.BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// Upload stores an image in the caller's namespace and returns its key, a
// presigned URL and the detected format. Empty payloads and non-image
// content types are rejected with ErrValidation.
func (s *ImageService) Upload(ctx context.Context, callerID int64, data []byte, filename, contentType string) (*ImageUpload, error) {
	if len(data) == 0 {
		return nil, common.ErrValidation
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, common.ErrValidation
	}

	ext := path.Ext(filename)
	key := fmt.Sprintf("%s/%s%s", userFolder(callerID), uuid.New(), ext)

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	url, err := s.URL(ctx, key)
	if err != nil {
		return nil, err
	}

	format := strings.TrimPrefix(ext, ".")
	if format == "" {
		format = strings.TrimPrefix(contentType, "image/")
	}

	return &ImageUpload{Key: key, URL: url, Format: format}, nil
}

// Delete removes an object by key. Forbidden unless the key lies inside the
// caller's namespace.
func (s *ImageService) Delete(ctx context.Context, callerID int64, key string) error {
	if !strings.HasPrefix(key, userFolder(callerID)+"/") {
		return common.ErrForbidden
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return fmt.Errorf("init s3 client: %w", err)
	}

	_, err = deleteObject(client, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.S3.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	return nil
}

// URL returns a presigned GET URL for the given key.
func (s *ImageService) URL(ctx context.Context, key string) (string, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("init s3 client: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(urlExpiry))
	if err != nil {
		return "", fmt.Errorf("presign image url: %w", err)
	}

	return req.URL, nil
}
