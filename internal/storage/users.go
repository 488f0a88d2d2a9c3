package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"chatlink/backend/internal/chatkey"
	"chatlink/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrUserNotFound is returned when neither store knows the user.
var ErrUserNotFound = errors.New("user not found")

// SaveUser upserts the durable account row and refreshes the denormalized
// profile record in Redis.
func (s *Service) SaveUser(ctx context.Context, user *models.User) error {
	if err := s.DB.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.ID, err)
	}
	return s.CacheUserProfile(ctx, user)
}

// CacheUserProfile writes the user:{id} JSON record the send path reads.
func (s *Service) CacheUserProfile(ctx context.Context, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal profile %s: %w", user.ID, err)
	}
	if err := s.Redis.Set(ctx, chatkey.UserKey(user.ID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to cache profile %s: %w", user.ID, err)
	}
	return nil
}

// GetUser reads the durable account row from Postgres.
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", id, err)
	}
	return &user, nil
}

// GetUserProfile reads the denormalized user:{id} record from Redis. A
// missing or unparsable record is a data-integrity fault: every account is
// cached at save time.
func (s *Service) GetUserProfile(ctx context.Context, id string) (*models.User, error) {
	raw, err := s.Redis.Get(ctx, chatkey.UserKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: no profile record for %s", ErrUserNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile %s: %w", id, err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("corrupt profile record for %s: %w", id, err)
	}
	return &user, nil
}
