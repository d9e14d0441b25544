package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hszk-dev/vidhub/internal/domain/model"
)

// UserRepository resolves owner summaries. Users are managed elsewhere;
// this service only reads their public projection.
type UserRepository interface {
	// GetSummaries returns the summaries of the given users keyed by ID.
	// Unknown IDs are absent from the result.
	GetSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.OwnerSummary, error)
}
