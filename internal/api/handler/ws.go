package handler

import (
	"context"
	"net/http"

	"chatlink/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and hands it to the hub. The
// browser then subscribes its topics with subscribe/unsubscribe commands.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to upgrade connection")
		return
	}

	client := chathub.NewWebSocketClient(context.Background(), h.Hub, sessionID(c), conn)
	h.Hub.RegisterCh <- client
	client.Run()
}
