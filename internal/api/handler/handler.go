// Package handler is the gin HTTP surface: the send endpoint, the initial
// page fetch, the friend endpoints, session tokens and the websocket
// upgrade.
package handler

import (
	"chatlink/backend/internal/chat"
	"chatlink/backend/internal/chathub"
	"chatlink/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler carries the wired dependencies for all routes.
type Handler struct {
	Chat      *chat.Service
	Store     storage.Storage
	Hub       *chathub.Manager
	JWTSecret []byte
	Log       *zap.SugaredLogger
}

func NewHandler(chatSvc *chat.Service, store storage.Storage, hub *chathub.Manager, jwtSecret []byte, log *zap.SugaredLogger) *Handler {
	return &Handler{
		Chat:      chatSvc,
		Store:     store,
		Hub:       hub,
		JWTSecret: jwtSecret,
		Log:       log,
	}
}

// Routes mounts everything on the engine.
func (h *Handler) Routes(r *gin.Engine) {
	r.GET("/token", h.GetToken)

	authed := r.Group("/", h.AuthRequired())
	authed.POST("/message/send", h.SendMessage)
	authed.GET("/chats/:chatID/messages", h.GetMessages)
	authed.POST("/friends/add", h.AddFriend)
	authed.GET("/friends", h.GetFriends)
	authed.GET("/ws", h.ServeWebSocket)
}
