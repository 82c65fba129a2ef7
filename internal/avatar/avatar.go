// Package avatar stores member profile pictures in S3-compatible storage.
// Each member owns a single stable object key, so a new upload overwrites
// the previous picture and the public URL stays valid.
package avatar

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/coinsiseek/nomad-spirit-app/internal/config"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

type Service struct {
	client  s3Client
	bucket  string
	baseURL string
}

// NewService builds the avatar service. The service stays disabled (uploads
// return an error) until a bucket, credentials, and a public base URL are
// configured.
func NewService(cfg config.S3, baseURL string) *Service {
	s := &Service{baseURL: strings.TrimRight(baseURL, "/")}
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" && s.baseURL != "" {
		opts := s3.Options{
			Region:       cfg.Region,
			Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
			UsePathStyle: true,
		}
		if cfg.Endpoint != "" {
			opts.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		s.client = s3.New(opts)
		s.bucket = cfg.Bucket
	}
	return s
}

// Enabled reports whether blob storage is configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// Key returns the stable object key for a member's picture.
func Key(memberID string) string {
	return "avatars/" + memberID
}

// Upload stores the image and returns its public URL.
func (s *Service) Upload(ctx context.Context, memberID, contentType string, data []byte) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("profile picture storage not configured")
	}
	if _, ok := allowedTypes[contentType]; !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}

	key := Key(memberID)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}

	return s.baseURL + "/" + key, nil
}
