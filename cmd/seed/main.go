// Command seed prepares the MongoDB collections: it validates the
// quiz definition files and creates the indexes the API queries rely
// on. Safe to run repeatedly.
package main

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"mindprint/internal/config"
	"mindprint/internal/registry"
	"mindprint/internal/repository"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	// Fail fast on broken definition files before touching the DB.
	if _, err := registry.Load(cfg.QuestionsPath, cfg.ProfilesPath); err != nil {
		logger.Fatal("quiz definitions invalid", zap.Error(err))
	}
	logger.Info("quiz definitions validated")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)

	if err := repository.NewResultRepo(db).EnsureIndexes(ctx); err != nil {
		logger.Fatal("failed to create result indexes", zap.Error(err))
	}
	if err := repository.NewMessageRepo(db).EnsureIndexes(ctx); err != nil {
		logger.Fatal("failed to create message indexes", zap.Error(err))
	}

	logger.Info("indexes created", zap.String("database", cfg.MongoDB))
}
