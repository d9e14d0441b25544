package repository

import (
	"context"

	"github.com/hszk-dev/vidhub/internal/domain/model"
)

// AssetStore uploads binary video content and returns stable references to it.
// Implementations should be provided by the infrastructure layer (e.g., MinIO, S3).
type AssetStore interface {
	// UploadAsset stores the payload and returns its public reference (URL).
	// Every upload gets a fresh key, so references are never overwritten.
	UploadAsset(ctx context.Context, asset *model.Asset) (string, error)

	// DeleteAsset removes the object behind a reference returned by UploadAsset.
	// Deleting a missing object returns ErrObjectNotFound.
	DeleteAsset(ctx context.Context, ref string) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
