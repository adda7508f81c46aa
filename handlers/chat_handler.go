package handlers

import (
	"context"
	"errors"
	"net/http"

	"handbookbot-backend/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles HTTP requests for the conversation
type ChatHandler struct {
	conversation *service.ConversationService
	regulations  service.RegulationSource
}

// NewChatHandler creates a new chat handler
func NewChatHandler(conversation *service.ConversationService, regulations service.RegulationSource) *ChatHandler {
	return &ChatHandler{
		conversation: conversation,
		regulations:  regulations,
	}
}

// SendMessageRequest represents the request body for a user message
type SendMessageRequest struct {
	Text string `json:"text"`
}

// GetStatus handles GET /api/status
func (h *ChatHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"readiness":          h.regulations.Readiness(),
			"regulation_count":   len(h.regulations.List()),
			"conversation_state": h.conversation.State(),
		},
	})
}

// ListMessages handles GET /api/chat/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.conversation.Messages(),
	})
}

// SendMessage handles POST /api/chat/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	reply, err := h.conversation.Send(context.WithoutCancel(c.Request.Context()), req.Text)
	if err != nil {
		status, code := sendErrorStatus(err)
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    reply,
	})
}

// ResetMessages handles DELETE /api/chat/messages
func (h *ChatHandler) ResetMessages(c *gin.Context) {
	if err := h.conversation.Reset(); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TURN_IN_PROGRESS",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.conversation.Messages(),
	})
}

func sendErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrBlankInput):
		return http.StatusBadRequest, "BLANK_INPUT"
	case errors.Is(err, service.ErrStoreNotReady):
		return http.StatusServiceUnavailable, "STORE_NOT_READY"
	case errors.Is(err, service.ErrTurnInProgress):
		return http.StatusConflict, "TURN_IN_PROGRESS"
	default:
		return http.StatusInternalServerError, "SEND_FAILED"
	}
}
