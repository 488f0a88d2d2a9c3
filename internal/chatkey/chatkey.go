// Package chatkey derives the canonical identifiers shared by the storage
// layer, the pub/sub bus and the client components: the order-independent
// conversation key, the Redis keys built from it, and the topic names.
package chatkey

import (
	"errors"
	"fmt"
	"strings"
)

// Separator joins the two participant ids inside a conversation key.
const Separator = "--"

// ErrMalformed is returned when a chat id does not contain exactly two
// non-empty participant ids.
var ErrMalformed = errors.New("malformed chat id")

// Canonical returns the conversation key for the two participants. The ids
// are sorted lexicographically first, so Canonical(a, b) == Canonical(b, a)
// and both sides always compute the identical storage key and topic.
func Canonical(userA, userB string) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return userA + Separator + userB
}

// Parse splits a client-supplied chat id into its two participant ids.
// Callers must not trust the pair for authorization without checking the
// authenticated session id against it.
func Parse(chatID string) (string, string, error) {
	parts := strings.Split(chatID, Separator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformed, chatID)
	}
	return parts[0], parts[1], nil
}

// MessagesKey is the Redis sorted-set key holding one conversation log.
func MessagesKey(conversationKey string) string {
	return "chat:" + conversationKey + ":messages"
}

// FriendsKey is the Redis set key holding a user's friend ids.
func FriendsKey(userID string) string {
	return "user:" + userID + ":friends"
}

// UserKey is the Redis key holding a user's denormalized profile JSON.
func UserKey(userID string) string {
	return "user:" + userID
}

// ChatTopic names the pub/sub topic for one conversation.
func ChatTopic(conversationKey string) string {
	return "chat:" + conversationKey
}

// UserChatsTopic names a user's personal message-notification topic.
func UserChatsTopic(userID string) string {
	return "user:" + userID + ":chats"
}

// UserFriendsTopic names a user's friend-change notification topic.
func UserFriendsTopic(userID string) string {
	return "user:" + userID + ":friends"
}

// ChatRoute is the client route for a conversation between the session
// user and a peer. The sidebar matches it against the active route to
// decide whether a notification should be suppressed.
func ChatRoute(sessionID, peerID string) string {
	return "/dashboard/chat/" + Canonical(sessionID, peerID)
}
