package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hszk-dev/vidhub/internal/domain/model"
	"github.com/hszk-dev/vidhub/internal/infrastructure/cache"
	"github.com/hszk-dev/vidhub/internal/infrastructure/metrics"
	"golang.org/x/sync/singleflight"
)

// CachedVideoServiceConfig holds configuration for CachedVideoService.
type CachedVideoServiceConfig struct {
	// CacheTTL is the TTL for cached single-video lookups.
	CacheTTL time.Duration
}

// DefaultCachedVideoServiceConfig returns the default configuration.
func DefaultCachedVideoServiceConfig() CachedVideoServiceConfig {
	return CachedVideoServiceConfig{
		CacheTTL: 5 * time.Minute,
	}
}

// cachedVideoService wraps VideoService with read-through caching of GetVideo.
// Listings are never cached; every successful mutation evicts the entry.
type cachedVideoService struct {
	delegate VideoService
	cache    cache.VideoCache
	sfGroup  singleflight.Group

	cacheTTL time.Duration
}

// NewCachedVideoService creates a new CachedVideoService wrapping the provided VideoService.
func NewCachedVideoService(
	delegate VideoService,
	videoCache cache.VideoCache,
	cfg CachedVideoServiceConfig,
) VideoService {
	return &cachedVideoService{
		delegate: delegate,
		cache:    videoCache,
		cacheTTL: cfg.CacheTTL,
	}
}

// ListVideos delegates to the underlying service.
func (s *cachedVideoService) ListVideos(ctx context.Context, criteria model.ListCriteria) ([]*model.VideoWithOwner, error) {
	return s.delegate.ListVideos(ctx, criteria)
}

// PublishVideo delegates to the underlying service.
// A new video has no cache entry to invalidate.
func (s *cachedVideoService) PublishVideo(ctx context.Context, input PublishVideoInput) (*model.Video, error) {
	return s.delegate.PublishVideo(ctx, input)
}

// GetVideo retrieves a video through the cache.
// Uses singleflight to prevent cache stampede on concurrent requests for the same video.
func (s *cachedVideoService) GetVideo(ctx context.Context, videoID uuid.UUID) (*model.VideoWithOwner, error) {
	key := videoID.String()
	result, err, shared := s.sfGroup.Do(key, func() (any, error) {
		return s.getVideoWithCache(ctx, videoID)
	})

	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if err != nil {
		return nil, err
	}

	return result.(*model.VideoWithOwner), nil
}

func (s *cachedVideoService) getVideoWithCache(ctx context.Context, videoID uuid.UUID) (*model.VideoWithOwner, error) {
	video, err := s.cache.Get(ctx, videoID)
	if err != nil {
		slog.Warn("cache get failed, falling back to database",
			"video_id", videoID,
			"error", err,
		)
	}

	if video != nil {
		return video, nil
	}

	video, err = s.delegate.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, video, s.cacheTTL); err != nil {
		slog.Warn("failed to cache video",
			"video_id", videoID,
			"error", err,
		)
	}

	return video, nil
}

// UpdateVideo delegates and evicts the cached entry on success.
func (s *cachedVideoService) UpdateVideo(ctx context.Context, input UpdateVideoInput) (*model.Video, error) {
	video, err := s.delegate.UpdateVideo(ctx, input)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.VideoID)
	return video, nil
}

// DeleteVideo delegates and evicts the cached entry on success.
func (s *cachedVideoService) DeleteVideo(ctx context.Context, videoID, callerID uuid.UUID) error {
	if err := s.delegate.DeleteVideo(ctx, videoID, callerID); err != nil {
		return err
	}
	s.invalidate(ctx, videoID)
	return nil
}

// TogglePublish delegates and evicts the cached entry on success.
func (s *cachedVideoService) TogglePublish(ctx context.Context, videoID, callerID uuid.UUID) (*model.Video, error) {
	video, err := s.delegate.TogglePublish(ctx, videoID, callerID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, videoID)
	return video, nil
}

// invalidate removes a video from the cache. Failures are logged only;
// the entry then lives until its TTL.
func (s *cachedVideoService) invalidate(ctx context.Context, videoID uuid.UUID) {
	if err := s.cache.Delete(ctx, videoID); err != nil {
		slog.Warn("failed to invalidate cache",
			"video_id", videoID,
			"error", err,
		)
	}
}
