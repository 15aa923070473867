// Package gcs provides a Google Cloud Storage implementation of the blob
// store used for generated question workbooks.
package gcs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// uploadTimeout bounds a single artifact upload. The upload context is
// detached from the caller's so an already-finished task body cannot
// abandon a write midway.
const uploadTimeout = 5 * time.Minute

// ArtifactStore uploads local files to a GCS bucket and returns their
// public object URLs.
type ArtifactStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	logger *slog.Logger
}

// NewArtifactStore creates an ArtifactStore for the named bucket using
// application-default credentials.
func NewArtifactStore(ctx context.Context, bucketName string, logger *slog.Logger) (*ArtifactStore, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name cannot be empty")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &ArtifactStore{
		client: client,
		bucket: client.Bucket(bucketName),
		name:   bucketName,
		logger: logger.With(slog.String("component", "artifact_store")),
	}, nil
}

// Upload copies the file at localPath into the bucket under a unique
// object name and returns the object's URL.
func (s *ArtifactStore) Upload(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	object := fmt.Sprintf("artifacts/%s%s", uuid.New().String(), filepath.Ext(localPath))

	uploadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uploadTimeout)
	defer cancel()

	w := s.bucket.Object(object).NewWriter(uploadCtx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload artifact: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize artifact upload: %w", err)
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.name, object)
	s.logger.Info("artifact uploaded",
		slog.String("object", object),
		slog.String("url", url))
	return url, nil
}

// Close releases the underlying storage client.
func (s *ArtifactStore) Close() error {
	return s.client.Close()
}
