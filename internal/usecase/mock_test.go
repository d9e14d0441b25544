package usecase

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hszk-dev/vidhub/internal/domain/model"
	"github.com/hszk-dev/vidhub/internal/domain/repository"
)

// mockVideoRepository provides a configurable mock for VideoRepository.
type mockVideoRepository struct {
	createFn        func(ctx context.Context, video *model.Video) error
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*model.Video, error)
	listPublishedFn func(ctx context.Context, criteria model.ListCriteria) ([]*model.Video, error)
	updateFn        func(ctx context.Context, video *model.Video) error
	deleteFn        func(ctx context.Context, id uuid.UUID) error

	createCalls int
	updateCalls int
	deleteCalls int
}

func (m *mockVideoRepository) Create(ctx context.Context, video *model.Video) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, video)
	}
	return nil
}

func (m *mockVideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrVideoNotFound
}

func (m *mockVideoRepository) ListPublished(ctx context.Context, criteria model.ListCriteria) ([]*model.Video, error) {
	if m.listPublishedFn != nil {
		return m.listPublishedFn(ctx, criteria)
	}
	return nil, nil
}

func (m *mockVideoRepository) Update(ctx context.Context, video *model.Video) error {
	m.updateCalls++
	if m.updateFn != nil {
		return m.updateFn(ctx, video)
	}
	return nil
}

func (m *mockVideoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockUserRepository provides a configurable mock for UserRepository.
type mockUserRepository struct {
	getSummariesFn func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.OwnerSummary, error)
}

func (m *mockUserRepository) GetSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.OwnerSummary, error) {
	if m.getSummariesFn != nil {
		return m.getSummariesFn(ctx, ids)
	}
	out := make(map[uuid.UUID]model.OwnerSummary, len(ids))
	for _, id := range ids {
		out[id] = model.OwnerSummary{ID: id, Username: "user-" + id.String()[:8], Avatar: "http://cdn/avatar.png"}
	}
	return out, nil
}

// mockAssetStore provides a configurable mock for AssetStore.
// Uploads are recorded in order.
type mockAssetStore struct {
	uploadAssetFn func(ctx context.Context, asset *model.Asset) (string, error)
	deleteAssetFn func(ctx context.Context, ref string) error
	pingFn        func(ctx context.Context) error

	uploaded []model.AssetKind
}

func (m *mockAssetStore) UploadAsset(ctx context.Context, asset *model.Asset) (string, error) {
	m.uploaded = append(m.uploaded, asset.Kind)
	if m.uploadAssetFn != nil {
		return m.uploadAssetFn(ctx, asset)
	}
	return "http://cdn/" + asset.Kind.String() + "s/" + uuid.NewString() + "/" + asset.BaseName(), nil
}

func (m *mockAssetStore) DeleteAsset(ctx context.Context, ref string) error {
	if m.deleteAssetFn != nil {
		return m.deleteAssetFn(ctx, ref)
	}
	return nil
}

func (m *mockAssetStore) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

// mockMessageQueue provides a configurable mock for MessageQueue.
type mockMessageQueue struct {
	mu                   sync.Mutex
	published            []repository.AssetCleanupTask
	publishCleanupTaskFn func(ctx context.Context, task repository.AssetCleanupTask) error
	consumeCleanupFn     func(ctx context.Context, handler func(task repository.AssetCleanupTask) error) error
}

func (m *mockMessageQueue) PublishCleanupTask(ctx context.Context, task repository.AssetCleanupTask) error {
	m.mu.Lock()
	m.published = append(m.published, task)
	m.mu.Unlock()
	if m.publishCleanupTaskFn != nil {
		return m.publishCleanupTaskFn(ctx, task)
	}
	return nil
}

func (m *mockMessageQueue) ConsumeCleanupTasks(ctx context.Context, handler func(task repository.AssetCleanupTask) error) error {
	if m.consumeCleanupFn != nil {
		return m.consumeCleanupFn(ctx, handler)
	}
	return nil
}

func (m *mockMessageQueue) Close() error {
	return nil
}

func (m *mockMessageQueue) tasks() []repository.AssetCleanupTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repository.AssetCleanupTask(nil), m.published...)
}
