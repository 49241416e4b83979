package archive

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
)

type upload struct {
	bucket, name, contentType string
	data                      []byte
}

type fakeClient struct {
	uploads []upload
	err     error

	exists  bool
	made    []string
	makeErr error
}

func (f *fakeClient) PutObject(ctx context.Context, bucket, name string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	data, _ := io.ReadAll(r)
	f.uploads = append(f.uploads, upload{bucket, name, opts.ContentType, data})
	return minio.UploadInfo{Bucket: bucket, Key: name, Size: size}, nil
}

func (f *fakeClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return f.exists, nil
}

func (f *fakeClient) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	if f.makeErr != nil {
		return f.makeErr
	}
	f.made = append(f.made, bucket)
	return nil
}

func TestKey(t *testing.T) {
	if got := Key("outpainting", "abc"); got != "results/outpainting/abc.png" {
		t.Errorf("Key() = %q", got)
	}
}

func TestSaveResult(t *testing.T) {
	client := &fakeClient{}
	store := NewStore(client, "paint-results")

	key, err := store.SaveResult(context.Background(), "inpainting", "job-1", image.NewRGBA(image.Rect(0, 0, 4, 3)))
	if err != nil {
		t.Fatalf("SaveResult() error: %v", err)
	}
	if key != "results/inpainting/job-1.png" {
		t.Errorf("key = %q", key)
	}
	if len(client.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(client.uploads))
	}
	up := client.uploads[0]
	if up.bucket != "paint-results" || up.contentType != "image/png" {
		t.Errorf("upload = %+v", up)
	}
	img, err := png.Decode(bytes.NewReader(up.data))
	if err != nil {
		t.Fatalf("uploaded bytes are not PNG: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Errorf("uploaded image = %v", img.Bounds())
	}
}

func TestSaveResultError(t *testing.T) {
	store := NewStore(&fakeClient{err: errors.New("access denied")}, "b")
	if _, err := store.SaveResult(context.Background(), "inpainting", "x", image.NewRGBA(image.Rect(0, 0, 1, 1))); err == nil {
		t.Error("expected upload error")
	}
}

func TestEnsureBucket(t *testing.T) {
	tests := []struct {
		name     string
		client   *fakeClient
		wantMade int
		wantErr  bool
	}{
		{"exists", &fakeClient{exists: true}, 0, false},
		{"created", &fakeClient{}, 1, false},
		{"create fails", &fakeClient{makeErr: errors.New("denied")}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewStore(tt.client, "paint-results").EnsureBucket(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("EnsureBucket() error = %v", err)
			}
			if err != nil && !errors.Is(err, ErrNoBucket) {
				t.Errorf("error should wrap ErrNoBucket: %v", err)
			}
			if len(tt.client.made) != tt.wantMade {
				t.Errorf("made %d buckets, want %d", len(tt.client.made), tt.wantMade)
			}
		})
	}
}

func TestNewMinioStore(t *testing.T) {
	if _, err := NewMinioStore(Config{}); err == nil {
		t.Error("expected error without endpoint")
	}
	store, err := NewMinioStore(Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "paint-results"})
	if err != nil {
		t.Fatalf("NewMinioStore() error: %v", err)
	}
	if store.Bucket() != "paint-results" {
		t.Errorf("Bucket() = %q", store.Bucket())
	}
}
