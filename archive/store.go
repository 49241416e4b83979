// Package archive uploads result images to S3-compatible object storage.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"paintserver/vision"
)

// ErrNoBucket is returned when the bucket is missing and cannot be created.
var ErrNoBucket = errors.New("archive: bucket does not exist")

// Uploader is the subset of *minio.Client used for uploads.
type Uploader interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// BucketManager is implemented by clients that can create buckets.
type BucketManager interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

// Config describes the object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Secure    bool
}

// Store writes result PNGs under results/<task>/<job-id>.png.
type Store struct {
	client Uploader
	bucket string
}

// NewMinioStore connects to the store described by cfg.
func NewMinioStore(cfg Config) (*Store, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("archive: endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("archive: create client: %w", err)
	}
	return NewStore(client, cfg.Bucket), nil
}

// NewStore wraps an existing client.
func NewStore(client Uploader, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// Bucket returns the target bucket.
func (s *Store) Bucket() string {
	return s.bucket
}

// EnsureBucket creates the bucket when the client supports it and the bucket
// is missing.
func (s *Store) EnsureBucket(ctx context.Context) error {
	mgr, ok := s.client.(BucketManager)
	if !ok {
		return nil
	}
	exists, err := mgr.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("archive: check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := mgr.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNoBucket, s.bucket, err)
	}
	return nil
}

// Key returns the object name for a job result.
func Key(task, jobID string) string {
	return path.Join("results", task, jobID+".png")
}

// SaveResult encodes img as PNG and uploads it. It returns the object key.
func (s *Store) SaveResult(ctx context.Context, task, jobID string, img image.Image) (string, error) {
	data, err := vision.PNGBytes(img)
	if err != nil {
		return "", fmt.Errorf("archive: encode result: %w", err)
	}
	return s.SavePNG(ctx, Key(task, jobID), data)
}

// SavePNG uploads already-encoded PNG bytes under key.
func (s *Store) SavePNG(ctx context.Context, key string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: "image/png"})
	if err != nil {
		return "", fmt.Errorf("archive: upload %s: %w", key, err)
	}
	return key, nil
}
