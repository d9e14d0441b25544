package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hszk-dev/vidhub/internal/domain/model"
	"github.com/hszk-dev/vidhub/internal/domain/repository"
	"github.com/hszk-dev/vidhub/internal/infrastructure/metrics"
)

// videoDocument is the stored shape of a video. IDs are kept as canonical UUID strings.
type videoDocument struct {
	ID           string    `bson:"_id"`
	OwnerID      string    `bson:"owner_id"`
	Title        string    `bson:"title"`
	Description  string    `bson:"description"`
	VideoURL     string    `bson:"video_url"`
	ThumbnailURL string    `bson:"thumbnail_url"`
	IsPublished  bool      `bson:"is_published"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

var sortFields = map[model.SortField]string{
	model.SortByCreatedAt: "created_at",
	model.SortByUpdatedAt: "updated_at",
	model.SortByTitle:     "title",
}

// VideoRepository implements repository.VideoRepository using MongoDB.
type VideoRepository struct {
	coll *mongo.Collection
}

// NewVideoRepository creates a new VideoRepository instance.
func NewVideoRepository(db *mongo.Database) *VideoRepository {
	return &VideoRepository{coll: db.Collection(videosCollection)}
}

// Create persists a new video entity.
func (r *VideoRepository) Create(ctx context.Context, video *model.Video) error {
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryInsert, metrics.TableVideos).Inc()
	if _, err := r.coll.InsertOne(ctx, toDocument(video)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateVideo
		}
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

// GetByID retrieves a video by its unique identifier regardless of publication state.
func (r *VideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableVideos).Inc()

	var doc videoDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video by ID: %w", err)
	}

	return fromDocument(doc)
}

// ListPublished returns one page of published videos matching the criteria.
// Criteria must already be normalized.
func (r *VideoRepository) ListPublished(ctx context.Context, criteria model.ListCriteria) ([]*model.Video, error) {
	filter, opts, err := buildListQuery(criteria)
	if err != nil {
		return nil, err
	}

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableVideos).Inc()
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer cursor.Close(ctx)

	videos := make([]*model.Video, 0, criteria.Limit)
	for cursor.Next(ctx) {
		var doc videoDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode video: %w", err)
		}
		video, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cursor: %w", err)
	}

	return videos, nil
}

// buildListQuery renders the listing filter and options. _id is the final sort
// key so that pages are disjoint even when the primary sort key has ties.
func buildListQuery(c model.ListCriteria) (bson.M, *options.FindOptions, error) {
	field, ok := sortFields[c.SortField]
	if !ok {
		return nil, nil, model.ErrInvalidSortField
	}
	direction := -1
	if c.SortDirection == model.SortAsc {
		direction = 1
	}

	filter := bson.M{"is_published": true}
	if c.Search != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(c.Search), Options: "i"}
	}
	if c.OwnerID != nil {
		filter["owner_id"] = c.OwnerID.String()
	}

	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: direction}, {Key: "_id", Value: 1}}).
		SetSkip(int64(c.Offset())).
		SetLimit(int64(c.Limit))

	return filter, opts, nil
}

// Update persists the mutable attributes of an existing video.
func (r *VideoRepository) Update(ctx context.Context, video *model.Video) error {
	update := bson.M{"$set": bson.M{
		"title":         video.Title,
		"description":   video.Description,
		"thumbnail_url": video.ThumbnailURL,
		"is_published":  video.IsPublished,
		"updated_at":    video.UpdatedAt,
	}}

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryUpdate, metrics.TableVideos).Inc()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": video.ID.String()}, update)
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrVideoNotFound
	}
	return nil
}

// Delete permanently removes a video.
func (r *VideoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryDelete, metrics.TableVideos).Inc()
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrVideoNotFound
	}
	return nil
}

func toDocument(v *model.Video) videoDocument {
	return videoDocument{
		ID:           v.ID.String(),
		OwnerID:      v.OwnerID.String(),
		Title:        v.Title,
		Description:  v.Description,
		VideoURL:     v.VideoURL,
		ThumbnailURL: v.ThumbnailURL,
		IsPublished:  v.IsPublished,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func fromDocument(d videoDocument) (*model.Video, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parse video ID: %w", err)
	}
	ownerID, err := uuid.Parse(d.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("parse owner ID: %w", err)
	}

	return &model.Video{
		ID:           id,
		OwnerID:      ownerID,
		Title:        d.Title,
		Description:  d.Description,
		VideoURL:     d.VideoURL,
		ThumbnailURL: d.ThumbnailURL,
		IsPublished:  d.IsPublished,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

var _ repository.VideoRepository = (*VideoRepository)(nil)
