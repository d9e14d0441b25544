package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidhub/internal/domain/model"
	"github.com/hszk-dev/vidhub/internal/domain/repository"
	"github.com/hszk-dev/vidhub/internal/infrastructure/metrics"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// GetSummaries looks up all requested users in a single query.
// Unknown IDs are absent from the result.
func (r *UserRepository) GetSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.OwnerSummary, error) {
	result := make(map[uuid.UUID]model.OwnerSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	const query = `SELECT id, username, avatar FROM users WHERE id = ANY($1)`

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableUsers).Inc()
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			summary model.OwnerSummary
			avatar  *string
		)
		if err := rows.Scan(&summary.ID, &summary.Username, &avatar); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if avatar != nil {
			summary.Avatar = *avatar
		}
		result[summary.ID] = summary
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
