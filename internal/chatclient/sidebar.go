package chatclient

import (
	"encoding/json"
	"sync"

	"chatlink/backend/internal/bus"
	"chatlink/backend/internal/chatkey"
	"chatlink/backend/internal/models"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Toast is the transient notification surfaced for an unseen message.
type Toast struct {
	SenderID    string
	SenderName  string
	SenderImage string
	Text        string
}

// Notifier surfaces toasts. Implementations must not block.
type Notifier interface {
	Notify(Toast)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

// Sidebar is the conversation list with its unseen tracker. It accumulates
// unseen messages across all conversations, suppresses notifications for
// the conversation currently open, and reconciles on navigation. All state
// is per-session and ephemeral.
type Sidebar struct {
	sessionID      string
	stream         bus.Stream
	notifier       Notifier
	refreshFriends func()
	log            *zap.SugaredLogger

	bindings []*bus.Binding

	mu     sync.Mutex
	route  string
	unseen []models.Message
}

// NewSidebar constructor. refreshFriends is invoked on new_friend events
// so the list re-fetches; it may be nil.
func NewSidebar(stream bus.Stream, sessionID string, notifier Notifier, refreshFriends func(), log *zap.SugaredLogger) *Sidebar {
	return &Sidebar{
		sessionID:      sessionID,
		stream:         stream,
		notifier:       notifier,
		refreshFriends: refreshFriends,
		log:            log,
	}
}

// Mount subscribes the session's personal topics and binds the handlers.
func (s *Sidebar) Mount() error {
	if err := s.stream.Subscribe(chatkey.UserChatsTopic(s.sessionID)); err != nil {
		return err
	}
	if err := s.stream.Subscribe(chatkey.UserFriendsTopic(s.sessionID)); err != nil {
		return err
	}
	s.bindings = []*bus.Binding{
		s.stream.Bind(models.EventNewMessage, s.onNewMessage),
		s.stream.Bind(models.EventNewFriend, s.onNewFriend),
	}
	return nil
}

// Unmount unbinds the handlers and detaches from both topics.
func (s *Sidebar) Unmount() {
	for _, b := range s.bindings {
		s.stream.Unbind(b)
	}
	s.bindings = nil
	for _, topic := range []string{chatkey.UserChatsTopic(s.sessionID), chatkey.UserFriendsTopic(s.sessionID)} {
		if err := s.stream.Unsubscribe(topic); err != nil {
			s.log.Warnw("unsubscribe failed on sidebar unmount", "topic", topic, "error", err)
		}
	}
}

// SetRoute records a navigation. Entering a conversation clears the unseen
// entries from that peer; this is the only read reconciliation, nothing
// is acknowledged to the server.
func (s *Sidebar) SetRoute(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.route = route
	s.unseen = lo.Filter(s.unseen, func(m models.Message, _ int) bool {
		return chatkey.ChatRoute(s.sessionID, m.SenderID) != route
	})
}

// onNewMessage decides, with the route current at this instant, whether
// the event surfaces as a toast and an unseen entry or is suppressed
// because that conversation is already open.
func (s *Sidebar) onNewMessage(payload json.RawMessage) {
	var n models.MessageNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		s.log.Warnw("dropping undecodable new_message event", "user", s.sessionID, "error", err)
		return
	}

	s.mu.Lock()
	viewing := s.route == chatkey.ChatRoute(s.sessionID, n.SenderID)
	if !viewing {
		s.unseen = append(s.unseen, n.Message)
	}
	s.mu.Unlock()

	if viewing {
		return
	}
	s.notifier.Notify(Toast{
		SenderID:    n.SenderID,
		SenderName:  n.SenderName,
		SenderImage: n.SenderImage,
		Text:        n.Text,
	})
}

func (s *Sidebar) onNewFriend(json.RawMessage) {
	if s.refreshFriends != nil {
		s.refreshFriends()
	}
}

// UnseenCount is the badge count for one friend.
func (s *Sidebar) UnseenCount(friendID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.CountBy(s.unseen, func(m models.Message) bool {
		return m.SenderID == friendID
	})
}
