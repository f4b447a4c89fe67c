// Package archive uploads product pages without a recognizable price to
// MinIO so the selectors can be debugged later.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tinchodeluca/scann-url/internal/domain"
	"github.com/tinchodeluca/scann-url/internal/logger"
)

// Page is an HTML document to archive.
type Page struct {
	RunID       string
	ProductName string
	URL         string
	StatusCode  int
	Reason      string
	HTML        []byte
	FetchedAt   time.Time
}

// Archiver stores pages.
type Archiver interface {
	Archive(ctx context.Context, page Page) error
}

// ObjectKey returns yyyy/mm/dd/<slug>-<run id>.html for the page.
func ObjectKey(page Page) string {
	return page.FetchedAt.UTC().Format("2006/01/02") + "/" + domain.Slug(page.ProductName) + "-" + page.RunID + ".html"
}

// MinioArchiver uploads pages synchronously.
type MinioArchiver struct {
	client *miniogo.Client
	bucket string
	logger logger.Logger
}

// NewMinioArchiver creates the MinIO client.
func NewMinioArchiver(cfg Config, log logger.Logger) (*MinioArchiver, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: miniogo.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	log.Info("MinIO archiver initialized",
		logger.String("endpoint", cfg.Endpoint),
		logger.String("bucket", cfg.Bucket),
	)

	return &MinioArchiver{client: client, bucket: cfg.Bucket, logger: log}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (a *MinioArchiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err = a.client.MakeBucket(ctx, a.bucket, miniogo.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", a.bucket, err)
	}
	a.logger.Info("Created archive bucket", logger.String("bucket", a.bucket))
	return nil
}

// Archive uploads the page HTML with its origin as object metadata.
func (a *MinioArchiver) Archive(ctx context.Context, page Page) error {
	if len(page.HTML) == 0 {
		return errors.New("page has no content")
	}

	key := ObjectKey(page)
	_, err := a.client.PutObject(
		ctx,
		a.bucket,
		key,
		bytes.NewReader(page.HTML),
		int64(len(page.HTML)),
		miniogo.PutObjectOptions{
			ContentType: "text/html; charset=utf-8",
			UserMetadata: map[string]string{
				"url":         page.URL,
				"product":     page.ProductName,
				"run-id":      page.RunID,
				"reason":      page.Reason,
				"fetched-at":  page.FetchedAt.UTC().Format(time.RFC3339),
				"status-code": strconv.Itoa(page.StatusCode),
			},
		},
	)
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	a.logger.Debug("Archived page",
		logger.String("object_key", key),
		logger.Int("size", len(page.HTML)),
		logger.String("url", page.URL),
	)
	return nil
}
