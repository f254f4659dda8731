// Package storage writes extraction payloads to an S3-compatible object store.
//
// Two drivers implement [ObjectStore]: [S3Store] on the AWS SDK and [MinioStore] on minio-go for self-hosted stores.
// Objects are write-once; nothing here reads, lists or deletes.
package storage

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotify-etl/internal/shared"
)

// ContentTypeJSON is sent with every uploaded payload.
const ContentTypeJSON = "application/json"

// ObjectStore captures the single write operation an extraction run needs.
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

// New builds the [ObjectStore] selected by cfg.Driver. An empty driver selects S3.
func New(ctx context.Context, cfg shared.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case shared.DriverS3, "":
		return NewS3Store(ctx, cfg)
	case shared.DriverMinio:
		return NewMinioStore(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}
