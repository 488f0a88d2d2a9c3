// Package chatclient holds the client-side components of the messenger:
// the conversation view and the sidebar unseen tracker. Both own an
// explicit lifecycle (Mount/Unmount) and mutate their state only through
// the bus bindings plus navigation calls.
package chatclient

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"chatlink/backend/internal/bus"
	"chatlink/backend/internal/chatkey"
	"chatlink/backend/internal/models"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Row is one rendered message with its derived presentation metadata.
type Row struct {
	models.Message
	// FromSession marks the session user's own messages.
	FromSession bool
	// Continuation means the message immediately preceding this one in
	// display order has the same sender, so the avatar is hidden and the
	// bubble corner stays rounded.
	Continuation bool
	// DateSeparator means a day boundary sits between this message and
	// the one following it in display order, so a separator line renders
	// before this message's block.
	DateSeparator bool
}

// ConversationView renders the ordered log of one conversation and merges
// live-pushed messages into it. Messages are kept newest-first, the order
// the reverse-rendered chat layout consumes.
type ConversationView struct {
	sessionID string
	peerID    string
	stream    bus.Stream
	log       *zap.SugaredLogger

	// Loc decides calendar-day boundaries for date separators.
	Loc *time.Location

	binding *bus.Binding

	mu       sync.Mutex
	messages []models.Message
}

// NewConversationView constructor. The conversation key is derived from
// the session and peer ids, never taken from elsewhere.
func NewConversationView(stream bus.Stream, sessionID, peerID string, log *zap.SugaredLogger) *ConversationView {
	return &ConversationView{
		sessionID: sessionID,
		peerID:    peerID,
		stream:    stream,
		log:       log,
		Loc:       time.Local,
	}
}

// Topic is the conversation topic this view listens on.
func (v *ConversationView) Topic() string {
	return chatkey.ChatTopic(chatkey.Canonical(v.sessionID, v.peerID))
}

// Mount arms the subscription first and fetches the initial page after, so
// a message published between the two lands either in the page or on the
// live channel; the merge de-duplicates by id either way.
func (v *ConversationView) Mount(fetchInitial func() ([]models.Message, error)) error {
	if err := v.stream.Subscribe(v.Topic()); err != nil {
		return err
	}
	v.binding = v.stream.Bind(models.EventIncomingMessage, v.onIncoming)

	page, err := fetchInitial()
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, msg := range page {
		v.merge(msg)
	}
	return nil
}

// Unmount tears the subscription down. Events published in the gap before
// a remount are not redelivered; the next Mount's page fetch covers them.
func (v *ConversationView) Unmount() {
	v.stream.Unbind(v.binding)
	v.binding = nil
	if err := v.stream.Unsubscribe(v.Topic()); err != nil {
		v.log.Warnw("unsubscribe failed on view unmount", "topic", v.Topic(), "error", err)
	}
}

func (v *ConversationView) onIncoming(payload json.RawMessage) {
	var msg models.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		v.log.Warnw("dropping undecodable incoming message", "topic", v.Topic(), "error", err)
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.merge(msg)
}

// merge inserts one message, skipping ids already present, and keeps the
// list newest-first. Callers hold v.mu.
func (v *ConversationView) merge(msg models.Message) {
	duplicate := lo.ContainsBy(v.messages, func(m models.Message) bool {
		return m.ID == msg.ID
	})
	if duplicate {
		return
	}
	v.messages = append([]models.Message{msg}, v.messages...)
	sort.SliceStable(v.messages, func(i, j int) bool {
		return v.messages[i].Timestamp > v.messages[j].Timestamp
	})
}

// Messages returns a copy of the current display-order sequence.
func (v *ConversationView) Messages() []models.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]models.Message, len(v.messages))
	copy(out, v.messages)
	return out
}

// Rows derives the presentation metadata for the current sequence. It is a
// pure function of the sequence, recomputed on every call; nothing here is
// persisted.
func (v *ConversationView) Rows() []Row {
	messages := v.Messages()
	rows := make([]Row, len(messages))
	for i, msg := range messages {
		rows[i] = Row{
			Message:      msg,
			FromSession:  msg.SenderID == v.sessionID,
			Continuation: i > 0 && messages[i-1].SenderID == msg.SenderID,
			DateSeparator: i+1 < len(messages) &&
				!v.sameCalendarDay(messages[i+1].Timestamp, msg.Timestamp),
		}
	}
	return rows
}

func (v *ConversationView) sameCalendarDay(a, b int64) bool {
	ya, ma, da := time.UnixMilli(a).In(v.Loc).Date()
	yb, mb, db := time.UnixMilli(b).In(v.Loc).Date()
	return ya == yb && ma == mb && da == db
}
