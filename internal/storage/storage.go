// Package storage is the persistence layer: Postgres (gorm) holds durable
// user accounts, Redis holds the per-conversation message logs (sorted
// sets scored by timestamp), the friend sets and the denormalized profile
// records the send path reads.
package storage

import (
	"context"

	"chatlink/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Storage is what the business-logic layer depends on.
type Storage interface {
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserProfile(ctx context.Context, id string) (*models.User, error)

	AddFriend(ctx context.Context, userID, friendID string) error
	IsFriend(ctx context.Context, userID, friendID string) (bool, error)
	GetFriends(ctx context.Context, userID string) ([]models.User, error)

	AppendMessage(ctx context.Context, conversationKey string, msg models.Message) error
	GetMessages(ctx context.Context, conversationKey string) ([]models.Message, error)
}

// Service implements Storage on top of gorm and go-redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Log   *zap.SugaredLogger
}

// NewService constructor.
func NewService(db *gorm.DB, rdb *redis.Client, log *zap.SugaredLogger) *Service {
	return &Service{DB: db, Redis: rdb, Log: log}
}

// Migrate creates the Postgres tables.
func (s *Service) Migrate() error {
	return s.DB.AutoMigrate(&models.User{})
}
