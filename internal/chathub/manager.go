// Package chathub bridges the notification bus to browser websockets.
// Each connection owns one bus subscription; the hub tracks connections so
// shutdown can close them and per-user delivery stays observable.
package chathub

import (
	"context"
	"strings"

	"chatlink/backend/internal/bus"
	"chatlink/backend/internal/chatkey"

	"go.uber.org/zap"
)

// Manager registers and unregisters live websocket clients.
type Manager struct {
	Bus *bus.Bus
	Log *zap.SugaredLogger

	RegisterCh   chan *WebSocketClient
	UnregisterCh chan *WebSocketClient

	clients map[*WebSocketClient]struct{}
}

// NewManager constructor.
func NewManager(b *bus.Bus, log *zap.SugaredLogger) *Manager {
	return &Manager{
		Bus:          b,
		Log:          log,
		RegisterCh:   make(chan *WebSocketClient),
		UnregisterCh: make(chan *WebSocketClient),
		clients:      make(map[*WebSocketClient]struct{}),
	}
}

// Run is the hub dispatcher goroutine. It owns the clients map; all
// mutation goes through the channels.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case client := <-m.RegisterCh:
			m.clients[client] = struct{}{}
			m.Log.Infow("websocket client connected", "user", client.UserID)

		case client := <-m.UnregisterCh:
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				client.Close()
				m.Log.Infow("websocket client disconnected", "user", client.UserID)
			}

		case <-ctx.Done():
			for client := range m.clients {
				client.Close()
			}
			return
		}
	}
}

// CanSubscribe authorizes a topic subscription for a session: users may
// attach to their own personal topics and to conversation topics they are
// a participant of. Everything else is denied.
func CanSubscribe(userID, topic string) bool {
	switch topic {
	case chatkey.UserChatsTopic(userID), chatkey.UserFriendsTopic(userID):
		return true
	}
	if key, ok := strings.CutPrefix(topic, "chat:"); ok {
		a, b, err := chatkey.Parse(key)
		if err != nil {
			return false
		}
		return userID == a || userID == b
	}
	return false
}
