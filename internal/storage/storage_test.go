package storage_test

import (
	"context"
	"encoding/json"
	"testing"

	"chatlink/backend/internal/models"
	"chatlink/backend/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*storage.Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	// No gorm handle: these tests only exercise the Redis-backed paths.
	return storage.NewService(nil, rdb, zap.NewNop().Sugar()), mr
}

func TestAppendAndGetMessagesRoundTrip(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	first := models.Message{ID: "m1", SenderID: "u1", Text: "hi", Timestamp: 1000}
	second := models.Message{ID: "m2", SenderID: "u2", Text: "hello", Timestamp: 2000}
	require.NoError(t, s.AppendMessage(ctx, "u1--u2", first))
	require.NoError(t, s.AppendMessage(ctx, "u1--u2", second))

	got, err := s.GetMessages(ctx, "u1--u2")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first.
	assert.Equal(t, second, got[0])
	assert.Equal(t, first, got[1])
}

func TestAppendMessageUsesTimestampAsScore(t *testing.T) {
	s, mr := newTestService(t)
	ctx := context.Background()

	msg := models.Message{ID: "m1", SenderID: "u1", Text: "hi", Timestamp: 1712345678901}
	require.NoError(t, s.AppendMessage(ctx, "u1--u2", msg))

	members, err := mr.ZMembers("chat:u1--u2:messages")
	require.NoError(t, err)
	require.Len(t, members, 1)

	score, err := mr.ZScore("chat:u1--u2:messages", members[0])
	require.NoError(t, err)
	assert.Equal(t, float64(msg.Timestamp), score)
}

func TestGetMessagesSkipsCorruptEntries(t *testing.T) {
	s, mr := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.AppendMessage(ctx, "u1--u2", models.Message{ID: "m1", SenderID: "u1", Text: "hi", Timestamp: 1000}))
	_, err := mr.ZAdd("chat:u1--u2:messages", 2000, "not-json")
	require.NoError(t, err)

	got, err := s.GetMessages(ctx, "u1--u2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].ID)
}

func TestAddFriendIsSymmetric(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.AddFriend(ctx, "u1", "u2"))

	forward, err := s.IsFriend(ctx, "u1", "u2")
	require.NoError(t, err)
	backward, err := s.IsFriend(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.True(t, forward)
	assert.True(t, backward)

	stranger, err := s.IsFriend(ctx, "u1", "u3")
	require.NoError(t, err)
	assert.False(t, stranger)
}

func TestGetUserProfile(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	user := &models.User{ID: "u1", Name: "Alice", Email: "alice@example.com", Image: "https://img/a.png"}
	require.NoError(t, s.CacheUserProfile(ctx, user))

	got, err := s.GetUserProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, user, got)

	_, err = s.GetUserProfile(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestGetUserProfileCorruptRecord(t *testing.T) {
	s, mr := newTestService(t)
	mr.Set("user:u1", "{not json")

	_, err := s.GetUserProfile(context.Background(), "u1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrUserNotFound)
}

func TestGetFriendsResolvesProfiles(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	alice := &models.User{ID: "u2", Name: "Alice"}
	require.NoError(t, s.CacheUserProfile(ctx, alice))
	require.NoError(t, s.AddFriend(ctx, "u1", "u2"))
	// u3 is a friend with no profile record; the listing should skip it.
	require.NoError(t, s.AddFriend(ctx, "u1", "u3"))

	friends, err := s.GetFriends(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "Alice", friends[0].Name)
}

func TestCachedProfileIsPlainJSON(t *testing.T) {
	s, mr := newTestService(t)
	require.NoError(t, s.CacheUserProfile(context.Background(), &models.User{ID: "u1", Name: "Alice"}))

	raw, err := mr.Get("user:u1")
	require.NoError(t, err)
	var decoded models.User
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "Alice", decoded.Name)
}
