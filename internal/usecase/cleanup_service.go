package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hszk-dev/vidhub/internal/domain/repository"
	"github.com/hszk-dev/vidhub/internal/infrastructure/metrics"
)

const (
	// DefaultMaxCleanupRetries is the default number of attempts before a cleanup task is dropped.
	DefaultMaxCleanupRetries = 5
)

// CleanupServiceConfig holds configuration for CleanupService.
type CleanupServiceConfig struct {
	// MaxRetries is the number of failed attempts after which a task is dropped.
	MaxRetries int
}

// DefaultCleanupServiceConfig returns the default configuration.
func DefaultCleanupServiceConfig() CleanupServiceConfig {
	return CleanupServiceConfig{
		MaxRetries: DefaultMaxCleanupRetries,
	}
}

// CleanupService removes asset objects that no video record references anymore.
type CleanupService interface {
	// ProcessTask deletes every asset listed in the task.
	// Returns nil on success or when the task is dropped after MaxRetries.
	// Returns an error for transient failures that should trigger a retry.
	ProcessTask(ctx context.Context, task repository.AssetCleanupTask) error
}

type cleanupService struct {
	assets     repository.AssetStore
	maxRetries int
}

// NewCleanupService creates a new CleanupService instance.
func NewCleanupService(assets repository.AssetStore, cfg CleanupServiceConfig) CleanupService {
	return &cleanupService{
		assets:     assets,
		maxRetries: cfg.MaxRetries,
	}
}

// ProcessTask deletes the listed assets. An asset that is already gone counts
// as deleted, so replays of the same task are harmless.
func (s *cleanupService) ProcessTask(ctx context.Context, task repository.AssetCleanupTask) error {
	if task.RetryCount >= s.maxRetries {
		slog.Error("dropping asset cleanup task after max retries",
			"video_id", task.VideoID,
			"asset_urls", task.AssetURLs,
			"reason", task.Reason,
			"retry_count", task.RetryCount,
		)
		metrics.AssetCleanupsTotal.WithLabelValues(task.Reason, metrics.ResultError).Inc()
		return nil
	}

	var errs []error
	for _, ref := range task.AssetURLs {
		err := s.assets.DeleteAsset(ctx, ref)
		if err != nil && !errors.Is(err, repository.ErrObjectNotFound) {
			errs = append(errs, fmt.Errorf("delete %s: %w", ref, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	metrics.AssetCleanupsTotal.WithLabelValues(task.Reason, metrics.ResultSuccess).Inc()
	return nil
}
