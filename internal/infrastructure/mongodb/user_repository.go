package mongodb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hszk-dev/vidhub/internal/domain/model"
	"github.com/hszk-dev/vidhub/internal/domain/repository"
	"github.com/hszk-dev/vidhub/internal/infrastructure/metrics"
)

type userDocument struct {
	ID       string `bson:"_id"`
	Username string `bson:"username"`
	Avatar   string `bson:"avatar,omitempty"`
}

// UserRepository implements repository.UserRepository using MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

// GetSummaries looks up all requested users with one $in query.
// Unknown IDs are absent from the result.
func (r *UserRepository) GetSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.OwnerSummary, error) {
	result := make(map[uuid.UUID]model.OwnerSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableUsers).Inc()
	opts := options.Find().SetProjection(bson.M{"username": 1, "avatar": 1})
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": keys}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			continue
		}
		result[id] = model.OwnerSummary{ID: id, Username: doc.Username, Avatar: doc.Avatar}
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cursor: %w", err)
	}

	return result, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
