package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"mindprint/internal/cache"
	"mindprint/internal/config"
	"mindprint/internal/registry"
	"mindprint/internal/repository"
	"mindprint/internal/service"
	"mindprint/internal/session"
	"mindprint/internal/transport/rest"
	"mindprint/internal/transport/ws"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()
	ctx := context.Background()

	// Question and profile definitions, loaded once and validated.
	reg, err := registry.Load(cfg.QuestionsPath, cfg.ProfilesPath)
	if err != nil {
		logger.Fatal("failed to load quiz registry", zap.Error(err))
	}
	logger.Info("registry loaded",
		zap.String("questions", cfg.QuestionsPath),
		zap.String("profiles", cfg.ProfilesPath))

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		logger.Fatal("failed to ping MongoDB", zap.Error(err))
	}
	logger.Info("connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Fatal("failed to ping Redis", zap.Error(err))
	}
	logger.Info("connected to Redis")

	// WebSocket hub
	wsHub := ws.NewHub(logger)

	// Repositories and caches
	resultRepo := repository.NewResultRepo(db)
	messageRepo := repository.NewMessageRepo(db)
	statsCache := cache.NewStatsCache(rdb)

	// Session store and services
	store := session.NewStore(cfg.SessionTTL)
	authSvc := service.NewAuthService(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret)
	resultSvc := service.NewResultService(reg, resultRepo, statsCache, store, logger)
	quizSvc := service.NewQuizService(store, reg, resultSvc, cfg.SessionTTL, logger)
	analyticsSvc := service.NewAnalyticsService(messageRepo, logger)

	quizSvc.SetBroadcaster(wsHub)

	// Background eviction of idle sessions.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go quizSvc.RunSweeper(sweepCtx, cfg.SweepInterval)

	container := &rest.Container{
		AuthService:      authSvc,
		QuizService:      quizSvc,
		ResultService:    resultSvc,
		AnalyticsService: analyticsSvc,
		WSHub:            wsHub,
		Logger:           logger,
	}

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: rest.NewRouter(container),
	}

	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.HTTPPort),
			zap.Duration("sessionTTL", cfg.SessionTTL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen and serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
