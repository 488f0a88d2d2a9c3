package chathub

import (
	"context"
	"encoding/json"
	"time"

	"chatlink/backend/internal/bus"
	"chatlink/backend/internal/config"

	"github.com/gorilla/websocket"
)

// Command is what the browser sends: topic management only. Messages are
// submitted over HTTP, never over the socket.
type Command struct {
	Action string `json:"action"` // "subscribe" or "unsubscribe"
	Topic  string `json:"topic"`
}

// Frame is what the browser receives: a bus envelope plus the topic it
// arrived on.
type Frame struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// WebSocketClient is one authenticated browser connection.
type WebSocketClient struct {
	UserID string
	Conn   *websocket.Conn
	Hub    *Manager

	sub  bus.Stream
	send chan Frame
}

// NewWebSocketClient wires a fresh connection to its own bus subscription.
func NewWebSocketClient(ctx context.Context, hub *Manager, userID string, conn *websocket.Conn) *WebSocketClient {
	c := &WebSocketClient{
		UserID: userID,
		Conn:   conn,
		Hub:    hub,
		sub:    hub.Bus.NewSubscriber(ctx),
		send:   make(chan Frame, config.SendBufferSize),
	}
	c.sub.BindAll(func(topic string, env bus.Envelope) {
		select {
		case c.send <- Frame{Topic: topic, Event: env.Event, Payload: env.Payload}:
		default:
			// Slow consumer: drop the frame rather than block dispatch.
			// The client recovers missed messages on its next log fetch.
			hub.Log.Warnw("dropping frame for slow websocket client", "user", c.UserID, "topic", topic)
		}
	})
	return c
}

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close tears down the bus subscription and the socket.
func (c *WebSocketClient) Close() {
	_ = c.sub.Close()
	_ = c.Conn.Close()
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
	}()

	c.Conn.SetReadLimit(config.MaxFrameSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.Log.Warnw("websocket read failed", "user", c.UserID, "error", err)
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.Hub.Log.Warnw("dropping undecodable websocket command", "user", c.UserID, "error", err)
			continue
		}
		c.handleCommand(cmd)
	}
}

func (c *WebSocketClient) handleCommand(cmd Command) {
	switch cmd.Action {
	case "subscribe":
		if !CanSubscribe(c.UserID, cmd.Topic) {
			c.Hub.Log.Warnw("denied topic subscription", "user", c.UserID, "topic", cmd.Topic)
			return
		}
		if err := c.sub.Subscribe(cmd.Topic); err != nil {
			c.Hub.Log.Errorw("topic subscribe failed", "user", c.UserID, "topic", cmd.Topic, "error", err)
		}
	case "unsubscribe":
		if err := c.sub.Unsubscribe(cmd.Topic); err != nil {
			c.Hub.Log.Errorw("topic unsubscribe failed", "user", c.UserID, "topic", cmd.Topic, "error", err)
		}
	default:
		c.Hub.Log.Warnw("unknown websocket command", "user", c.UserID, "action", cmd.Action)
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
