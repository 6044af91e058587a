// Package export archives dashboard snapshots to object storage.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"github.com/terminal-bench/reliefops/internal/config"
	"github.com/terminal-bench/reliefops/internal/services/dashboard"
)

// ObjectStore is the subset of *minio.Client used for archiving.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Viewer produces the dashboard view to archive.
type Viewer interface {
	View(ctx context.Context) (dashboard.View, error)
}

// Observer counts export outcomes.
type Observer interface {
	ExportSucceeded()
	ExportFailed()
}

// NewMinioClient connects to the configured object store.
func NewMinioClient(cfg *config.Config) (*minio.Client, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return client, nil
}

// Exporter uploads dashboard snapshots as JSON objects.
type Exporter struct {
	store    ObjectStore
	bucket   string
	viewer   Viewer
	observer Observer
	logger   *logrus.Logger
}

func NewExporter(store ObjectStore, bucket string, viewer Viewer, observer Observer, logger *logrus.Logger) *Exporter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Exporter{
		store:    store,
		bucket:   bucket,
		viewer:   viewer,
		observer: observer,
		logger:   logger,
	}
}

// ObjectKey is the archive key for a snapshot generated at t.
func ObjectKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("snapshots/%s/%s.json", t.Format("2006/01/02"), t.Format("20060102T150405Z"))
}

// EnsureBucket creates the archive bucket when it does not exist.
func (e *Exporter) EnsureBucket(ctx context.Context) error {
	exists, err := e.store.BucketExists(ctx, e.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := e.store.MakeBucket(ctx, e.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Export archives one snapshot and returns its object key.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	key, size, err := e.export(ctx)
	if err != nil {
		e.fail()
		e.logger.WithError(err).Error("snapshot export failed")
		return "", err
	}
	if e.observer != nil {
		e.observer.ExportSucceeded()
	}
	e.logger.WithFields(logrus.Fields{"bucket": e.bucket, "key": key, "bytes": size}).Info("snapshot exported")
	return key, nil
}

func (e *Exporter) export(ctx context.Context) (string, int, error) {
	view, err := e.viewer.View(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("failed to build snapshot: %w", err)
	}
	body, err := json.Marshal(view)
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := ObjectKey(view.GeneratedAt)
	_, err = e.store.PutObject(ctx, e.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to upload snapshot: %w", err)
	}
	return key, len(body), nil
}

func (e *Exporter) fail() {
	if e.observer != nil {
		e.observer.ExportFailed()
	}
}
