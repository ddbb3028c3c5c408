package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/shopworks/go-commerce-backend/internal/aws"
)

// Storage is the "store file, get URL back / delete by identifier" contract
// the rest of the backend consumes.
type Storage interface {
	Store(ctx context.Context, filename, contentType string, body io.Reader) (url string, key string, err error)
	Delete(ctx context.Context, key string) error
}

// S3Storage stores media objects in an S3 bucket.
type S3Storage struct {
	client  aws.S3API
	bucket  string
	baseURL string
	newID   func() string
}

// NewS3Storage returns storage bound to a bucket. baseURL is the public
// prefix objects are served from (CDN or the bucket website endpoint).
func NewS3Storage(client aws.S3API, bucket, baseURL string) *S3Storage {
	return &S3Storage{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		newID:   uuid.NewString,
	}
}

// Store uploads the object under a generated key and returns its public URL.
func (s *S3Storage) Store(ctx context.Context, filename, contentType string, body io.Reader) (string, string, error) {
	key := fmt.Sprintf("media/%s%s", s.newID(), path.Ext(filename))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        body,
		ContentType: &contentType,
	})
	if err != nil {
		return "", "", fmt.Errorf("put object: %w", err)
	}
	return fmt.Sprintf("%s/%s", s.baseURL, key), key, nil
}

// Delete removes an object by its storage key.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
