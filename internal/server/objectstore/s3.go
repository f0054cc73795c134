package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// s3API is the subset of the S3 client used by S3Store. *s3.Client
// satisfies it; tests provide stubs.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// loadDefaultAWSConfig is a seam for testing config.LoadDefaultConfig.
var loadDefaultAWSConfig = config.LoadDefaultConfig

// S3Config holds the settings for an S3-compatible backend (MinIO works).
type S3Config struct {
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	BaseEndpoint  string
	PublicBaseURL string
}

// S3Store implements Store over an S3-compatible object storage backend.
type S3Store struct {
	client        s3API
	bucket        string
	publicBaseURL string
}

// NewS3Store builds an S3 client from static credentials and a base
// endpoint, matching the MinIO-style deployment used in development.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config error: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		// No-overwrite: the write fails with 412 if the key is occupied.
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return ErrKeyExists
		}
		return fmt.Errorf("s3 put error: %w", err)
	}
	return nil
}

func (s *S3Store) Remove(ctx context.Context, key string) error {
	// S3 DeleteObject on a missing key succeeds, which gives Remove the
	// idempotency the delete path relies on.
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete error: %w", err)
	}
	return nil
}

func (s *S3Store) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, key)
}

func (s *S3Store) KeyFromURL(url string) (string, error) {
	prefix := fmt.Sprintf("%s/%s/", s.publicBaseURL, s.bucket)
	if !strings.HasPrefix(url, prefix) {
		return "", fmt.Errorf("url %q does not belong to bucket %q", url, s.bucket)
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" {
		return "", fmt.Errorf("url %q has no object key", url)
	}
	return key, nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]Object, error) {
	var result []Object
	var continuation *string

	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 list error: %w", err)
		}

		for _, obj := range out.Contents {
			o := Object{Key: aws.ToString(obj.Key)}
			if obj.LastModified != nil {
				o.LastModified = *obj.LastModified
			}
			result = append(result, o)
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			return result, nil
		}
		continuation = out.NextContinuationToken
	}
}
