package storage

import (
	"context"
	"fmt"

	"github.com/hszk-dev/vidhub/internal/config"
)

// Open connects to the backend selected by ASSET_BACKEND and wraps it in an AssetStore.
func Open(ctx context.Context, cfg *config.Config) (*AssetStore, error) {
	var (
		backend objectBackend
		err     error
	)

	switch cfg.Assets.Backend {
	case config.AssetBackendS3:
		backend, err = NewS3Client(ctx, S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to S3: %w", err)
		}
	case config.AssetBackendMinIO:
		backend, err = NewClient(ctx, ClientConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MinIO: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown asset backend %q", cfg.Assets.Backend)
	}

	return NewAssetStore(backend, cfg.Assets.PublicBaseURL), nil
}
