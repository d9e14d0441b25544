package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hszk-dev/vidhub/internal/domain/model"
)

// VideoRepository defines the interface for video persistence operations.
// Implementations should be provided by the infrastructure layer (e.g., PostgreSQL, MongoDB).
type VideoRepository interface {
	// Create persists a new video entity.
	// Returns ErrDuplicateVideo if the ID is already taken.
	Create(ctx context.Context, video *model.Video) error

	// GetByID retrieves a video by its unique identifier regardless of publication state.
	// Returns nil and ErrVideoNotFound if the video does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error)

	// ListPublished returns one page of published videos matching the criteria.
	// The criteria must already be normalized. Returns an empty slice when nothing matches.
	ListPublished(ctx context.Context, criteria model.ListCriteria) ([]*model.Video, error)

	// Update persists the mutable fields of an existing video
	// (title, description, thumbnail, publication flag).
	// Owner, video reference and creation time are never written.
	// Returns ErrVideoNotFound if the video does not exist.
	Update(ctx context.Context, video *model.Video) error

	// Delete permanently removes a video.
	// Returns ErrVideoNotFound if the video does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
