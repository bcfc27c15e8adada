package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"mindprint/internal/model"
)

// MessageRepo handles MongoDB operations for message analytics.
// Insert-only from the engine's point of view.
type MessageRepo interface {
	Create(ctx context.Context, msg *model.MessageRecord) error
	CountByUser(ctx context.Context, userID string) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type messageRepo struct {
	collection *mongo.Collection
}

// NewMessageRepo creates a new message repository.
func NewMessageRepo(db *mongo.Database) MessageRepo {
	return &messageRepo{collection: db.Collection("messages")}
}

func (r *messageRepo) Create(ctx context.Context, msg *model.MessageRecord) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	res, err := r.collection.InsertOne(ctx, msg)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid.Hex()
	}
	return nil
}

func (r *messageRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID})
}

func (r *messageRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}
