package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hszk-dev/vidhub/internal/domain/model"
	"github.com/hszk-dev/vidhub/internal/domain/repository"
	"github.com/hszk-dev/vidhub/internal/infrastructure/metrics"
)

var (
	// ErrUnauthenticated is returned when a mutating operation has no caller identity.
	ErrUnauthenticated = errors.New("caller identity is required")

	// ErrForbidden is returned when the caller does not own the video.
	ErrForbidden = errors.New("caller does not own this video")

	// ErrAssetsRequired is returned when publishing without both video and thumbnail payloads.
	ErrAssetsRequired = errors.New("video and thumbnail are required")

	// ErrUploadFailed is returned when the asset store does not yield a usable reference.
	ErrUploadFailed = errors.New("asset upload failed")
)

// PublishVideoInput contains the input parameters for publishing a video.
type PublishVideoInput struct {
	CallerID    uuid.UUID
	Title       string
	Description string
	Video       *model.Asset
	Thumbnail   *model.Asset
}

// UpdateVideoInput contains the input parameters for editing a video.
// Blank strings and a nil Thumbnail leave the corresponding attribute unchanged.
type UpdateVideoInput struct {
	VideoID     uuid.UUID
	CallerID    uuid.UUID
	Title       string
	Description string
	Thumbnail   *model.Asset
}

// VideoService defines the interface for video business logic operations.
type VideoService interface {
	// ListVideos returns one page of published videos with owner summaries.
	ListVideos(ctx context.Context, criteria model.ListCriteria) ([]*model.VideoWithOwner, error)

	// PublishVideo uploads both assets and persists a new published video owned by the caller.
	PublishVideo(ctx context.Context, input PublishVideoInput) (*model.Video, error)

	// GetVideo retrieves a video with its owner summary. No publication gate applies.
	GetVideo(ctx context.Context, videoID uuid.UUID) (*model.VideoWithOwner, error)

	// UpdateVideo applies a partial edit on behalf of the owner.
	UpdateVideo(ctx context.Context, input UpdateVideoInput) (*model.Video, error)

	// DeleteVideo permanently removes a video on behalf of the owner.
	DeleteVideo(ctx context.Context, videoID, callerID uuid.UUID) error

	// TogglePublish flips the publication flag on behalf of the owner.
	TogglePublish(ctx context.Context, videoID, callerID uuid.UUID) (*model.Video, error)
}

type videoService struct {
	repo   repository.VideoRepository
	users  repository.UserRepository
	assets repository.AssetStore
	// queue is nil when orphan cleanup is disabled.
	queue repository.MessageQueue
}

// NewVideoService creates a new VideoService instance.
// queue may be nil, in which case orphaned assets are left in the asset store.
func NewVideoService(
	repo repository.VideoRepository,
	users repository.UserRepository,
	assets repository.AssetStore,
	queue repository.MessageQueue,
) VideoService {
	return &videoService{
		repo:   repo,
		users:  users,
		assets: assets,
		queue:  queue,
	}
}

// ListVideos executes the listing criteria against published videos.
func (s *videoService) ListVideos(ctx context.Context, criteria model.ListCriteria) ([]*model.VideoWithOwner, error) {
	if err := criteria.Normalize(); err != nil {
		return nil, err
	}

	videos, err := s.repo.ListPublished(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	return s.withOwners(ctx, videos)
}

// PublishVideo uploads the video then the thumbnail, and persists the record
// only when both uploads produced a reference.
//
// The two uploads are not atomic: if the thumbnail fails after the video
// succeeded, the video object stays in the asset store. With a queue
// configured a cleanup task is enqueued for it.
func (s *videoService) PublishVideo(ctx context.Context, input PublishVideoInput) (*model.Video, error) {
	if input.CallerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if err := model.ValidateDetails(input.Title, input.Description); err != nil {
		return nil, err
	}
	if !input.Video.IsPresent() || !input.Thumbnail.IsPresent() {
		return nil, ErrAssetsRequired
	}

	videoURL, err := s.upload(ctx, input.Video)
	if err != nil {
		return nil, err
	}

	thumbnailURL, err := s.upload(ctx, input.Thumbnail)
	if err != nil {
		s.enqueueCleanup(ctx, uuid.Nil, repository.CleanupReasonPublishFailed, videoURL)
		return nil, err
	}

	video, err := model.NewVideo(input.CallerID, input.Title, input.Description, videoURL, thumbnailURL)
	if err != nil {
		s.enqueueCleanup(ctx, uuid.Nil, repository.CleanupReasonPublishFailed, videoURL, thumbnailURL)
		return nil, err
	}

	if err := s.repo.Create(ctx, video); err != nil {
		s.enqueueCleanup(ctx, video.ID, repository.CleanupReasonPublishFailed, videoURL, thumbnailURL)
		return nil, fmt.Errorf("create video: %w", err)
	}

	return video, nil
}

// GetVideo retrieves a video by ID with its owner summary.
func (s *videoService) GetVideo(ctx context.Context, videoID uuid.UUID) (*model.VideoWithOwner, error) {
	video, err := s.repo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	enriched, err := s.withOwners(ctx, []*model.Video{video})
	if err != nil {
		return nil, err
	}
	return enriched[0], nil
}

// UpdateVideo applies text edits and an optional thumbnail replacement in memory,
// then persists them in a single write. A failed upload persists nothing.
func (s *videoService) UpdateVideo(ctx context.Context, input UpdateVideoInput) (*model.Video, error) {
	video, err := s.authorize(ctx, input.VideoID, input.CallerID)
	if err != nil {
		return nil, err
	}

	if err := video.UpdateDetails(input.Title, input.Description); err != nil {
		return nil, err
	}

	previousThumbnail := video.ThumbnailURL
	replaced := false
	if input.Thumbnail.IsPresent() {
		thumbnailURL, err := s.upload(ctx, input.Thumbnail)
		if err != nil {
			return nil, err
		}
		video.SetThumbnailURL(thumbnailURL)
		replaced = true
	}

	if err := s.repo.Update(ctx, video); err != nil {
		if replaced {
			s.enqueueCleanup(ctx, video.ID, repository.CleanupReasonUpdateFailed, video.ThumbnailURL)
		}
		return nil, fmt.Errorf("update video: %w", err)
	}

	if replaced {
		s.enqueueCleanup(ctx, video.ID, repository.CleanupReasonThumbnailReplaced, previousThumbnail)
	}

	return video, nil
}

// DeleteVideo removes the record. Its assets are not deleted inline; with a
// queue configured a cleanup task is enqueued after the delete commits.
func (s *videoService) DeleteVideo(ctx context.Context, videoID, callerID uuid.UUID) error {
	video, err := s.authorize(ctx, videoID, callerID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, video.ID); err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	s.enqueueCleanup(ctx, video.ID, repository.CleanupReasonVideoDeleted, video.VideoURL, video.ThumbnailURL)
	return nil
}

// TogglePublish flips and persists the publication flag.
func (s *videoService) TogglePublish(ctx context.Context, videoID, callerID uuid.UUID) (*model.Video, error) {
	video, err := s.authorize(ctx, videoID, callerID)
	if err != nil {
		return nil, err
	}

	video.TogglePublished()

	if err := s.repo.Update(ctx, video); err != nil {
		return nil, fmt.Errorf("update video: %w", err)
	}

	return video, nil
}

// authorize is the gate applied before every mutation: identity, existence, ownership.
// It is evaluated per call; nothing is cached between operations.
func (s *videoService) authorize(ctx context.Context, videoID, callerID uuid.UUID) (*model.Video, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	video, err := s.repo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if !video.IsOwnedBy(callerID) {
		return nil, ErrForbidden
	}

	return video, nil
}

// upload sends one asset to the store and records the outcome.
func (s *videoService) upload(ctx context.Context, asset *model.Asset) (string, error) {
	ref, err := s.assets.UploadAsset(ctx, asset)
	if err == nil && ref == "" {
		err = errors.New("empty reference")
	}
	if err != nil {
		metrics.AssetUploadsTotal.WithLabelValues(asset.Kind.String(), metrics.ResultError).Inc()
		return "", fmt.Errorf("%w: %s: %w", ErrUploadFailed, asset.Kind, err)
	}

	metrics.AssetUploadsTotal.WithLabelValues(asset.Kind.String(), metrics.ResultSuccess).Inc()
	return ref, nil
}

// withOwners attaches owner summaries with one batch lookup.
func (s *videoService) withOwners(ctx context.Context, videos []*model.Video) ([]*model.VideoWithOwner, error) {
	result := make([]*model.VideoWithOwner, 0, len(videos))
	if len(videos) == 0 {
		return result, nil
	}

	seen := make(map[uuid.UUID]struct{}, len(videos))
	ids := make([]uuid.UUID, 0, len(videos))
	for _, v := range videos {
		if _, ok := seen[v.OwnerID]; !ok {
			seen[v.OwnerID] = struct{}{}
			ids = append(ids, v.OwnerID)
		}
	}

	owners, err := s.users.GetSummaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get owner summaries: %w", err)
	}

	for _, v := range videos {
		owner, ok := owners[v.OwnerID]
		if !ok {
			owner = model.OwnerSummary{ID: v.OwnerID}
		}
		result = append(result, &model.VideoWithOwner{Video: v, Owner: owner})
	}

	return result, nil
}

// enqueueCleanup hands orphaned asset references to the worker.
// The calling operation has already succeeded or failed on its own terms,
// so enqueue errors are logged and not returned.
func (s *videoService) enqueueCleanup(ctx context.Context, videoID uuid.UUID, reason string, urls ...string) {
	if s.queue == nil {
		return
	}

	refs := make([]string, 0, len(urls))
	for _, u := range urls {
		if u != "" {
			refs = append(refs, u)
		}
	}
	if len(refs) == 0 {
		return
	}

	task := repository.AssetCleanupTask{
		VideoID:   videoID,
		AssetURLs: refs,
		Reason:    reason,
	}
	if err := s.queue.PublishCleanupTask(context.WithoutCancel(ctx), task); err != nil {
		slog.Warn("failed to enqueue asset cleanup",
			"video_id", videoID,
			"reason", reason,
			"error", err,
		)
	}
}
