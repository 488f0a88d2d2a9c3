package handler

import (
	"errors"
	"net/http"

	"chatlink/backend/internal/chat"

	"github.com/gin-gonic/gin"
)

type sendRequest struct {
	Text   string `json:"text" binding:"required"`
	ChatID string `json:"chatId" binding:"required"`
}

// SendMessage is POST /message/send. Success is a bare 200 "OK"; the
// client already has everything it needs and receives the persisted
// message over the conversation topic.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "invalid request body")
		return
	}

	_, err := h.Chat.Send(c.Request.Context(), sessionID(c), req.ChatID, req.Text)
	if err != nil {
		h.writeChatError(c, err)
		return
	}
	c.String(http.StatusOK, "OK")
}

// GetMessages is GET /chats/:chatID/messages: the initial page, newest
// first.
func (h *Handler) GetMessages(c *gin.Context) {
	messages, err := h.Chat.History(c.Request.Context(), sessionID(c), c.Param("chatID"))
	if err != nil {
		h.writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// writeChatError maps the chat error taxonomy onto the HTTP surface:
// authorization failures are an opaque 401, malformed chat ids a 400,
// everything else a 500 carrying the message.
func (h *Handler) writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrUnauthorized):
		c.String(http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, chat.ErrBadRequest):
		c.String(http.StatusBadRequest, err.Error())
	default:
		h.Log.Errorw("request failed", "path", c.FullPath(), "error", err)
		c.String(http.StatusInternalServerError, err.Error())
	}
}
