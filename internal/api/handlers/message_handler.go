package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halcyonchat/halcyon/internal/models"
	"github.com/halcyonchat/halcyon/internal/services"
	"github.com/halcyonchat/halcyon/internal/utils"
)

type MessageHandler struct {
	svc services.MessageService
}

func NewMessageHandler(svc services.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// List returns a conversation's messages in canonical order (oldest first).
func (h *MessageHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rows, err := h.svc.List(c.Request.Context(), userID, c.Param("conversation_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

type CreateMessageRequest struct {
	ConversationID string        `json:"conversationId"`
	Content        string        `json:"content"`
	Sender         models.Sender `json:"sender"`
}

func (h *MessageHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "MessageHandler.Create", "invalid request body", err))
		return
	}
	if req.ConversationID == "" || req.Sender == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "MessageHandler.Create", "Missing required message fields", nil))
		return
	}

	msg, err := h.svc.Append(c.Request.Context(), userID, req.ConversationID, req.Content, req.Sender)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}
