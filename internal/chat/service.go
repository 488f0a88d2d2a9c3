// Package chat holds the message submission handler, the central
// business-logic component: it authorizes a send, durably appends the
// message to the conversation log, then fans out best-effort notifications.
package chat

import (
	"context"
	"fmt"
	"time"

	"chatlink/backend/internal/bus"
	"chatlink/backend/internal/chatkey"
	"chatlink/backend/internal/config"
	"chatlink/backend/internal/models"
	"chatlink/backend/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service validates, persists and fans out direct messages.
type Service struct {
	store    storage.Storage
	bus      bus.Publisher
	validate *validator.Validate
	log      *zap.SugaredLogger

	// Overridable in tests.
	now   func() time.Time
	newID func() string
}

// NewService constructor.
func NewService(store storage.Storage, publisher bus.Publisher, log *zap.SugaredLogger) *Service {
	return &Service{
		store:    store,
		bus:      publisher,
		validate: validator.New(),
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Send implements the two-phase send: phase 1 (authorize + durable append)
// must fully succeed or the call fails with no durable state change; phase
// 2 (the two notification publishes) is best-effort and never rolls back or
// fails a committed send.
//
// The canonical conversation key is re-derived from the session id and the
// counterparty; the client-supplied chat id is only parsed, never trusted
// verbatim for storage keys or topics.
func (s *Service) Send(ctx context.Context, sessionID, chatID, text string) (*models.Message, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: no session", ErrUnauthorized)
	}

	userA, userB, err := chatkey.Parse(chatID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if sessionID != userA && sessionID != userB {
		return nil, fmt.Errorf("%w: session %s is not a participant of %s", ErrUnauthorized, sessionID, chatID)
	}

	friendID := userA
	if sessionID == userA {
		friendID = userB
	}

	isFriend, err := s.store.IsFriend(ctx, sessionID, friendID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if !isFriend {
		return nil, fmt.Errorf("%w: %s is not a friend of %s", ErrUnauthorized, friendID, sessionID)
	}

	sender, err := s.store.GetUserProfile(ctx, sessionID)
	if err != nil {
		// A session always has a profile record; its absence is a
		// data-integrity fault, not a user error.
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	msg := models.Message{
		ID:        s.newID(),
		SenderID:  sessionID,
		Text:      text,
		Timestamp: s.now().UnixMilli(),
	}
	if len(text) > config.MaxMessageLength {
		return nil, fmt.Errorf("%w: text exceeds %d bytes", ErrValidation, config.MaxMessageLength)
	}
	if err := s.validate.Struct(msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	conversationKey := chatkey.Canonical(sessionID, friendID)
	if err := s.store.AppendMessage(ctx, conversationKey, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// Committed. Anything past this point is fan-out only: a failed
	// publish is logged and the message still surfaces on the next log
	// fetch.
	if err := s.bus.Publish(ctx, chatkey.ChatTopic(conversationKey), models.EventIncomingMessage, msg); err != nil {
		s.log.Warnw("incoming_message publish failed", "conversation", conversationKey, "message", msg.ID, "error", err)
	}

	notification := models.MessageNotification{
		Message:     msg,
		SenderName:  sender.Name,
		SenderImage: sender.Image,
	}
	if err := s.bus.Publish(ctx, chatkey.UserChatsTopic(friendID), models.EventNewMessage, notification); err != nil {
		s.log.Warnw("new_message publish failed", "recipient", friendID, "message", msg.ID, "error", err)
	}

	return &msg, nil
}

// History returns the newest-first initial page for a conversation the
// session belongs to.
func (s *Service) History(ctx context.Context, sessionID, chatID string) ([]models.Message, error) {
	userA, userB, err := chatkey.Parse(chatID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if sessionID != userA && sessionID != userB {
		return nil, fmt.Errorf("%w: session %s is not a participant of %s", ErrUnauthorized, sessionID, chatID)
	}

	friendID := userA
	if sessionID == userA {
		friendID = userB
	}

	messages, err := s.store.GetMessages(ctx, chatkey.Canonical(sessionID, friendID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return messages, nil
}

// Befriend makes the two users friends and notifies both friends topics so
// open sidebars refresh their lists.
func (s *Service) Befriend(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return fmt.Errorf("%w: cannot befriend yourself", ErrBadRequest)
	}
	if _, err := s.store.GetUserProfile(ctx, friendID); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if err := s.store.AddFriend(ctx, userID, friendID); err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	for _, id := range []string{userID, friendID} {
		if err := s.bus.Publish(ctx, chatkey.UserFriendsTopic(id), models.EventNewFriend, map[string]string{"userId": id}); err != nil {
			s.log.Warnw("new_friend publish failed", "user", id, "error", err)
		}
	}
	return nil
}
