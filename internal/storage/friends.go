package storage

import (
	"context"
	"fmt"

	"chatlink/backend/internal/chatkey"
	"chatlink/backend/internal/models"
)

// AddFriend records the relationship symmetrically: each user's friend set
// gains the other id.
func (s *Service) AddFriend(ctx context.Context, userID, friendID string) error {
	if err := s.Redis.SAdd(ctx, chatkey.FriendsKey(userID), friendID).Err(); err != nil {
		return fmt.Errorf("failed to add %s to friends of %s: %w", friendID, userID, err)
	}
	if err := s.Redis.SAdd(ctx, chatkey.FriendsKey(friendID), userID).Err(); err != nil {
		return fmt.Errorf("failed to add %s to friends of %s: %w", userID, friendID, err)
	}
	return nil
}

// IsFriend checks membership in the user's friend set. This is the
// authorization gate for the send path.
func (s *Service) IsFriend(ctx context.Context, userID, friendID string) (bool, error) {
	ok, err := s.Redis.SIsMember(ctx, chatkey.FriendsKey(userID), friendID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check friendship %s/%s: %w", userID, friendID, err)
	}
	return ok, nil
}

// GetFriends resolves the user's friend set to profile records. Friends
// whose profile record has gone missing are skipped with a warning rather
// than failing the whole listing.
func (s *Service) GetFriends(ctx context.Context, userID string) ([]models.User, error) {
	ids, err := s.Redis.SMembers(ctx, chatkey.FriendsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list friends of %s: %w", userID, err)
	}

	friends := make([]models.User, 0, len(ids))
	for _, id := range ids {
		friend, err := s.GetUserProfile(ctx, id)
		if err != nil {
			s.Log.Warnw("skipping friend with unreadable profile", "user", userID, "friend", id, "error", err)
			continue
		}
		friends = append(friends, *friend)
	}
	return friends, nil
}
