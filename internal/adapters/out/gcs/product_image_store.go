// internal/adapters/out/gcs/product_image_store.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// ProductImageStore implements CatalogUsecase's ImageStore port using GCS.
type ProductImageStore struct {
	Client *storage.Client
	Bucket string
}

func NewProductImageStore(client *storage.Client, bucket string) *ProductImageStore {
	return &ProductImageStore{
		Client: client,
		Bucket: strings.TrimSpace(bucket),
	}
}

// Put uploads the image bytes and returns the public URL.
func (s *ProductImageStore) Put(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	if s == nil || s.Client == nil {
		return "", errors.New("product_image_store: GCS client is nil")
	}

	b := strings.TrimSpace(s.Bucket)
	if b == "" {
		return "", errors.New("product_image_store: bucket is empty")
	}

	obj := strings.TrimLeft(strings.TrimSpace(objectName), "/")
	if obj == "" {
		return "", errors.New("product_image_store: object name is empty")
	}
	if r == nil {
		return "", errors.New("product_image_store: reader is nil")
	}

	w := s.Client.Bucket(b).Object(obj).NewWriter(ctx)
	if ct := strings.TrimSpace(contentType); ct != "" {
		w.ContentType = ct
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("product_image_store: upload failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("product_image_store: upload close failed: %w", err)
	}

	return gcsPublicURL(b, obj), nil
}

func gcsPublicURL(bucket, object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, object)
}
