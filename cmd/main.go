package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"chatlink/backend/internal/api/handler"
	"chatlink/backend/internal/bus"
	"chatlink/backend/internal/chat"
	"chatlink/backend/internal/chathub"
	"chatlink/backend/internal/config"
	"chatlink/backend/internal/logging"
	"chatlink/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config, logger *zap.SugaredLogger) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatalw("failed to connect PostgreSQL", "error", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		logger.Fatalw("failed to connect Redis", "error", err)
	}

	return db, rdb
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Development)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, rdb := setupDependencies(cfg, logger)

	store := storage.NewService(db, rdb, logger)
	if err := store.Migrate(); err != nil {
		logger.Fatalw("failed to run migrations", "error", err)
	}
	logger.Info("database and Redis connections established, migrations complete")

	b := bus.New(rdb, logger)
	chatSvc := chat.NewService(store, b, logger)
	hub := chathub.NewManager(b, logger)
	go hub.Run(context.Background())

	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	h := handler.NewHandler(chatSvc, store, hub, []byte(cfg.JWTSecret), logger)
	h.Routes(r)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	logger.Infow("chatlink backend listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}
