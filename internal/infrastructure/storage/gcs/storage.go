// Package gcs keeps private documents in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/simplycomply/compliance-api/internal/infrastructure/resilience"
)

type Storage struct {
	client   *storage.Client
	bucket   *storage.BucketHandle
	executor *resilience.Executor
}

// New uses credentialsJSON when set and Application Default Credentials otherwise.
func New(ctx context.Context, bucket, credentialsJSON string, executor *resilience.Executor) (*Storage, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("gcs bucket is required")
	}
	var opts []option.ClientOption
	if strings.TrimSpace(credentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &Storage{client: client, bucket: client.Bucket(bucket), executor: executor}, nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) Put(ctx context.Context, key string, body io.Reader, _ int64, contentType string) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close %s: %w", key, err)
	}
	return nil
}

func (s *Storage) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	url, err := s.bucket.SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("gcs sign %s: %w", key, err)
	}
	return url, nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := resilience.Call(ctx, s.executor, "gcs.delete", func(ctx context.Context) (struct{}, error) {
		err := s.bucket.Object(key).Delete(ctx)
		if errors.Is(err, storage.ErrObjectNotExist) {
			return struct{}{}, nil
		}
		return struct{}{}, err
	}, resilience.ClassifyHTTP)
	if err != nil {
		return fmt.Errorf("gcs delete %s: %w", key, err)
	}
	return nil
}
