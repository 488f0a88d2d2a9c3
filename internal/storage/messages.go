package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"chatlink/backend/internal/chatkey"
	"chatlink/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// AppendMessage durably appends one message to the conversation log. The
// sorted-set score is the message timestamp, so range reads come back in
// log order; same-millisecond appends keep the store's stable insertion
// order. A single ZADD is atomic on the Redis side.
func (s *Service) AppendMessage(ctx context.Context, conversationKey string, msg models.Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message %s: %w", msg.ID, err)
	}
	err = s.Redis.ZAdd(ctx, chatkey.MessagesKey(conversationKey), redis.Z{
		Score:  float64(msg.Timestamp),
		Member: raw,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append message to %s: %w", conversationKey, err)
	}
	return nil
}

// GetMessages returns the conversation log newest-first, the order the
// reverse-rendered chat layout consumes. Entries that no longer decode are
// skipped with a warning; the log itself is append-only.
func (s *Service) GetMessages(ctx context.Context, conversationKey string) ([]models.Message, error) {
	members, err := s.Redis.ZRevRange(ctx, chatkey.MessagesKey(conversationKey), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch log %s: %w", conversationKey, err)
	}

	messages := make([]models.Message, 0, len(members))
	for _, member := range members {
		var msg models.Message
		if err := json.Unmarshal([]byte(member), &msg); err != nil {
			s.Log.Warnw("skipping corrupt log entry", "conversation", conversationKey, "error", err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
