package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hszk-dev/vidhub/internal/domain/model"
)

// VideoCache defines the interface for caching single-video lookups.
// Entries carry the owner summary so a hit needs no further reads.
type VideoCache interface {
	// Get retrieves a video from cache by ID.
	// Returns nil, nil on cache miss.
	Get(ctx context.Context, videoID uuid.UUID) (*model.VideoWithOwner, error)

	// Set stores a video in cache with the specified TTL.
	Set(ctx context.Context, video *model.VideoWithOwner, ttl time.Duration) error

	// Delete removes a video from cache by ID.
	// Returns nil if the video was not in cache.
	Delete(ctx context.Context, videoID uuid.UUID) error

	// Ping verifies connectivity to the cache backend.
	Ping(ctx context.Context) error
}
