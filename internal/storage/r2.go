// Package storage keeps uploaded files in a Cloudflare R2 bucket through the
// S3 API.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ProviderName is recorded as the storage provider of every upload.
const ProviderName = "r2"

type R2Config struct {
	AccountID string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicBaseURL, when set, is used to build public object URLs.
	PublicBaseURL string
}

// R2 uploads and downloads objects of a single bucket.
type R2 struct {
	client *s3.Client
	cfg    R2Config
}

// NewR2 builds an S3 client pointed at the account's R2 endpoint.
func NewR2(ctx context.Context, cfg R2Config) (*R2, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating aws config: %w", err)
	}
	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(Endpoint(cfg.AccountID))
	})
	return &R2{client: client, cfg: cfg}, nil
}

// Endpoint returns the S3 endpoint of an R2 account.
func Endpoint(accountID string) string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
}

// ObjectKey builds the key a user's upload is stored under, keeping the
// original extension.
func ObjectKey(userID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("uploads/%s/%s%s", userID, uuid.NewString(), ext)
}

// URL returns where the object can be fetched from.
func (r *R2) URL(key string) string {
	return ObjectURL(r.cfg, key)
}

// ObjectURL is URL without a client.
func ObjectURL(cfg R2Config, key string) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("%s/%s/%s", Endpoint(cfg.AccountID), cfg.Bucket, key)
}

// Upload stores data under key.
func (r *R2) Upload(ctx context.Context, key, mime string, data []byte) error {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mime),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

// Download reads the whole object stored under key.
func (r *R2) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, out.Body); err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return buf.Bytes(), nil
}

// Delete removes the object stored under key.
func (r *R2) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
