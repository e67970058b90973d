// Package s3store keeps private documents in an S3-compatible bucket and
// hands out presigned download links.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/simplycomply/compliance-api/internal/infrastructure/resilience"
)

type Config struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type Storage struct {
	bucket    string
	client    *s3.Client
	presigner *s3.PresignClient
	executor  *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) (*Storage, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("s3 bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	awsCfg := aws.Config{Region: region}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		// The executor owns retries.
		o.RetryMaxAttempts = 1
	})
	return &Storage{
		bucket:    cfg.Bucket,
		client:    client,
		presigner: s3.NewPresignClient(client),
		executor:  executor,
	}, nil
}

func (s *Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read upload body: %w", err)
	}
	if size > 0 && int64(len(raw)) != size {
		return fmt.Errorf("upload body is %d bytes, declared %d", len(raw), size)
	}

	_, err = resilience.Call(ctx, s.executor, "s3.put", func(ctx context.Context) (*s3.PutObjectOutput, error) {
		return s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(raw),
			ContentLength: aws.Int64(int64(len(raw))),
			ContentType:   aws.String(contentType),
		})
	}, classifyS3Error)
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

func (s *Storage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := resilience.Call(ctx, s.executor, "s3.delete", func(ctx context.Context) (*s3.DeleteObjectOutput, error) {
		return s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
	}, classifyS3Error)
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

type statusCoder interface {
	HTTPStatusCode() int
}

func classifyS3Error(err error) resilience.ErrorClassification {
	var sc statusCoder
	if errors.As(err, &sc) {
		return resilience.ClassifyHTTP(&resilience.StatusError{Operation: "s3", StatusCode: sc.HTTPStatusCode()})
	}
	return resilience.ClassifyHTTP(err)
}
