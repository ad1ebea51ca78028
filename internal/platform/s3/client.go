package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Environment variables read by NewClientFromEnv.
const (
	EnvEndpoint  = "OVHDCOS_S3_ENDPOINT"
	EnvRegion    = "OVHDCOS_S3_REGION"
	EnvAccessKey = "OVHDCOS_S3_ACCESS_KEY"
	EnvSecretKey = "OVHDCOS_S3_SECRET_KEY"
)

// ErrNotFound is returned when the bucket or object does not exist.
var ErrNotFound = errors.New("object not found")

// API is the subset of *s3.Client used here.
type API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Client reads objects from one S3-compatible service.
type Client struct {
	s3 API
}

// New wraps an existing S3 API.
func New(api API) *Client {
	return &Client{s3: api}
}

// NewClientFromEnv creates a client from the AWS configuration chain and the
// OVHDCOS_S3_* overrides.
func NewClientFromEnv(ctx context.Context) (*Client, error) {
	var opts []func(*config.LoadOptions) error
	if region := os.Getenv(EnvRegion); region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	accessKey, secretKey := os.Getenv(EnvAccessKey), os.Getenv(EnvSecretKey)
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := os.Getenv(EnvEndpoint)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &Client{s3: client}, nil
}

// ParseURL splits s3://bucket/key.
func ParseURL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid object URL %q: %w", raw, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("invalid object URL %q: scheme must be s3", raw)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("invalid object URL %q: expected s3://bucket/key", raw)
	}
	return u.Host, key, nil
}

// Size returns the object's length in bytes.
func (c *Client) Size(ctx context.Context, bucket, key string) (int64, error) {
	out, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return 0, fmt.Errorf("s3://%s/%s: %w", bucket, key, ErrNotFound)
		}
		return 0, fmt.Errorf("failed to head object %s in bucket %s: %w", key, bucket, err)
	}
	return aws.ToInt64(out.ContentLength), nil
}

// Open streams the object. The caller closes the returned body.
func (c *Client) Open(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, 0, fmt.Errorf("s3://%s/%s: %w", bucket, key, ErrNotFound)
		}
		return nil, 0, fmt.Errorf("failed to get object %s from bucket %s: %w", key, bucket, err)
	}
	return out.Body, aws.ToInt64(out.ContentLength), nil
}

// isNotFoundError checks if the error is a not found error.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	// Check for typed S3 errors first
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	// Fall back to API error code checking for S3-compatible services
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchBucket" || code == "NoSuchKey" || code == "404"
	}

	return false
}
