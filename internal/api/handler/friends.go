package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addFriendRequest struct {
	FriendID string `json:"friendId" binding:"required"`
}

// AddFriend is POST /friends/add. The relationship is symmetric; both
// users' sidebars get a new_friend event.
func (h *Handler) AddFriend(c *gin.Context) {
	var req addFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Chat.Befriend(c.Request.Context(), sessionID(c), req.FriendID); err != nil {
		h.writeChatError(c, err)
		return
	}
	c.String(http.StatusOK, "OK")
}

// GetFriends is GET /friends: the session user's friends with their
// profile records, for the sidebar listing.
func (h *Handler) GetFriends(c *gin.Context) {
	friends, err := h.Store.GetFriends(c.Request.Context(), sessionID(c))
	if err != nil {
		h.Log.Errorw("friend listing failed", "user", sessionID(c), "error", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}
