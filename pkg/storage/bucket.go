package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"cloud.google.com/go/storage"
)

// BlobStore uploads opaque byte payloads (documents, photos, exports) to the
// configured bucket and returns a download URL.
type BlobStore struct {
	bucket     *storage.BucketHandle
	bucketName string
	prefix     string
}

// NewBlobStore wraps a bucket handle. The prefix namespaces all object paths.
func NewBlobStore(bucket *storage.BucketHandle, bucketName, prefix string) *BlobStore {
	return &BlobStore{bucket: bucket, bucketName: bucketName, prefix: prefix}
}

// Upload writes data under the given relative path and returns its URL.
// There is no retry or resumable-upload handling; callers treat a failed
// upload as a failed operation.
func (s *BlobStore) Upload(ctx context.Context, relPath string, data []byte, contentType string) (string, error) {
	if s == nil || s.bucket == nil {
		return "", fmt.Errorf("blob store is not configured")
	}

	objectPath := path.Join(s.prefix, relPath)
	w := s.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload %s: %w", objectPath, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, url.PathEscape(objectPath)), nil
}

// SignedURL produces a time-limited download link for an uploaded object.
func (s *BlobStore) SignedURL(relPath string, ttl time.Duration) (string, error) {
	if s == nil || s.bucket == nil {
		return "", fmt.Errorf("blob store is not configured")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	objectPath := path.Join(s.prefix, relPath)
	signed, err := s.bucket.SignedURL(objectPath, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("sign url for %s: %w", objectPath, err)
	}
	return signed, nil
}

// Delete removes an uploaded object, tolerating objects that are already gone.
func (s *BlobStore) Delete(ctx context.Context, relPath string) error {
	if s == nil || s.bucket == nil {
		return nil
	}

	objectPath := path.Join(s.prefix, relPath)
	if err := s.bucket.Object(objectPath).Delete(ctx); err != nil && err != storage.ErrObjectNotExist {
		return fmt.Errorf("delete %s: %w", objectPath, err)
	}
	return nil
}
