package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mindprint/internal/model"
)

// ResultRepo handles MongoDB operations for completed quiz results.
type ResultRepo interface {
	Create(ctx context.Context, result *model.TestResult) error
	GetLatestByUser(ctx context.Context, userID string) (*model.TestResult, error)
	ListRecent(ctx context.Context, limit int64) ([]*model.TestResult, error)
	EnsureIndexes(ctx context.Context) error
}

type resultRepo struct {
	collection *mongo.Collection
}

// NewResultRepo creates a new result repository.
func NewResultRepo(db *mongo.Database) ResultRepo {
	return &resultRepo{collection: db.Collection("test_results")}
}

func (r *resultRepo) Create(ctx context.Context, result *model.TestResult) error {
	if result.CompletedAt.IsZero() {
		result.CompletedAt = time.Now().UTC()
	}

	res, err := r.collection.InsertOne(ctx, result)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		result.ID = oid.Hex()
	}
	return nil
}

func (r *resultRepo) GetLatestByUser(ctx context.Context, userID string) (*model.TestResult, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "completedAt", Value: -1}})

	var result model.TestResult
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *resultRepo) ListRecent(ctx context.Context, limit int64) ([]*model.TestResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}}).SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []*model.TestResult
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *resultRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "completedAt", Value: -1}}},
		{Keys: bson.D{{Key: "typeCode", Value: 1}}},
	})
	return err
}
