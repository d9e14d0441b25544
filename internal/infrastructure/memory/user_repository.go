package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidhub/internal/domain/model"
	"github.com/hszk-dev/vidhub/internal/domain/repository"
)

// UserRepository implements repository.UserRepository over a map.
type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]model.OwnerSummary
}

// NewUserRepository creates a UserRepository seeded with users.
func NewUserRepository(users ...model.OwnerSummary) *UserRepository {
	r := &UserRepository{users: make(map[uuid.UUID]model.OwnerSummary, len(users))}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

// Put adds or replaces a user.
func (r *UserRepository) Put(user model.OwnerSummary) {
	r.mu.Lock()
	r.users[user.ID] = user
	r.mu.Unlock()
}

func (r *UserRepository) GetSummaries(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.OwnerSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[uuid.UUID]model.OwnerSummary, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
