// Package memory implements process-local repositories for development and tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidhub/internal/domain/model"
	"github.com/hszk-dev/vidhub/internal/domain/repository"
)

// VideoRepository implements repository.VideoRepository over a map.
// Stored values are copies; callers never share pointers with the store.
type VideoRepository struct {
	mu     sync.RWMutex
	videos map[uuid.UUID]model.Video
}

// NewVideoRepository creates an empty VideoRepository.
func NewVideoRepository() *VideoRepository {
	return &VideoRepository{videos: make(map[uuid.UUID]model.Video)}
}

func (r *VideoRepository) Create(_ context.Context, video *model.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.videos[video.ID]; ok {
		return repository.ErrDuplicateVideo
	}
	r.videos[video.ID] = *video
	return nil
}

func (r *VideoRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.videos[id]
	if !ok {
		return nil, repository.ErrVideoNotFound
	}
	return &v, nil
}

// ListPublished filters, sorts and pages in memory. Criteria must already be normalized.
func (r *VideoRepository) ListPublished(_ context.Context, criteria model.ListCriteria) ([]*model.Video, error) {
	cmpField, err := comparator(criteria.SortField)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(criteria.Search)

	r.mu.RLock()
	matched := make([]model.Video, 0, len(r.videos))
	for _, v := range r.videos {
		if !v.IsPublished {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(v.Title), search) {
			continue
		}
		if criteria.OwnerID != nil && v.OwnerID != *criteria.OwnerID {
			continue
		}
		matched = append(matched, v)
	}
	r.mu.RUnlock()

	desc := criteria.SortDirection == model.SortDesc
	slices.SortFunc(matched, func(a, b model.Video) int {
		c := cmpField(a, b)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	offset := criteria.Offset()
	if offset < 0 || offset >= len(matched) {
		return []*model.Video{}, nil
	}
	end := min(offset+criteria.Limit, len(matched))

	page := make([]*model.Video, 0, end-offset)
	for i := offset; i < end; i++ {
		v := matched[i]
		page = append(page, &v)
	}
	return page, nil
}

func (r *VideoRepository) Update(_ context.Context, video *model.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.videos[video.ID]
	if !ok {
		return repository.ErrVideoNotFound
	}
	stored.Title = video.Title
	stored.Description = video.Description
	stored.ThumbnailURL = video.ThumbnailURL
	stored.IsPublished = video.IsPublished
	stored.UpdatedAt = video.UpdatedAt
	r.videos[video.ID] = stored
	return nil
}

func (r *VideoRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.videos[id]; !ok {
		return repository.ErrVideoNotFound
	}
	delete(r.videos, id)
	return nil
}

func comparator(field model.SortField) (func(a, b model.Video) int, error) {
	switch field {
	case model.SortByCreatedAt:
		return func(a, b model.Video) int { return a.CreatedAt.Compare(b.CreatedAt) }, nil
	case model.SortByUpdatedAt:
		return func(a, b model.Video) int { return a.UpdatedAt.Compare(b.UpdatedAt) }, nil
	case model.SortByTitle:
		return func(a, b model.Video) int { return cmp.Compare(a.Title, b.Title) }, nil
	default:
		return nil, model.ErrInvalidSortField
	}
}

var _ repository.VideoRepository = (*VideoRepository)(nil)
