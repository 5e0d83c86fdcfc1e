package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archiver writes raw payloads to object storage. A nil *Archiver is valid
// and turns every method into a no-op, which is how the service runs when
// archiving is not configured.
type Archiver struct {
	client Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewArchiver creates an archiver and ensures the target bucket exists.
func NewArchiver(ctx context.Context, client Client, cfg Config, logger *zap.Logger) (*Archiver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check archive bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create archive bucket: %w", err)
		}
	}

	return &Archiver{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: logger,
	}, nil
}

// Store writes one payload under {prefix}/{shop}/{topic}/{ts}-{id}.json.
// Failures are logged and swallowed; the archive never fails ingestion.
func (a *Archiver) Store(ctx context.Context, shopDomain, topic string, payload []byte) {
	if a == nil {
		return
	}

	objectName := fmt.Sprintf("%s/%s/%s/%s-%s.json",
		a.prefix, shopDomain, topic,
		time.Now().UTC().Format("20060102T150405"), uuid.NewString())

	_, err := a.client.PutObject(ctx, a.bucket, objectName,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		a.logger.Warn("failed to archive payload",
			zap.String("shop", shopDomain),
			zap.String("topic", topic),
			zap.String("object", objectName),
			zap.Error(err),
		)
		return
	}

	a.logger.Debug("archived payload",
		zap.String("shop", shopDomain),
		zap.String("topic", topic),
		zap.String("object", objectName),
	)
}
