package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aridlab/labsite/config"
)

// s3API is the subset of *s3.Client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps uploads in an S3-compatible bucket (AWS, MinIO) under keyPrefix.
type S3Store struct {
	client    s3API
	bucket    string
	keyPrefix string
	baseURL   string
}

// NewS3Store builds a client from static credentials; an endpoint enables path-style MinIO access.
func NewS3Store(ctx context.Context, cfg config.AppConfig) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("storage: S3 bucket is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(client, cfg.S3Bucket, cfg.UploadURLPrefix, cfg.S3PublicBaseURL), nil
}

func newS3Store(client s3API, bucket, urlPrefix, baseURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, keyPrefix: urlPrefix, baseURL: baseURL}
}

func (s *S3Store) key(name string) string {
	return publicPath(s.keyPrefix, name)[1:]
}

// Save uploads r as the object for name.
func (s *S3Store) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   r,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", name, err)
	}
	return publicPath(s.keyPrefix, name), nil
}

// Delete removes the object; S3 reports success for absent keys.
func (s *S3Store) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", name, err)
	}
	return nil
}

// URL prefixes publicPath with the bucket's public base URL.
func (s *S3Store) URL(publicPath string) string {
	return joinURL(s.baseURL, publicPath)
}
