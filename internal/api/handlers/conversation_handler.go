package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halcyonchat/halcyon/internal/services"
	"github.com/halcyonchat/halcyon/internal/utils"
)

type ConversationHandler struct {
	svc services.ConversationService
}

func NewConversationHandler(svc services.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// List returns the caller's conversations, newest first.
func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rows, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

type CreateConversationRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (h *ConversationHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ConversationHandler.Create", "invalid request body", err))
		return
	}
	if req.ID == "" || req.Title == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ConversationHandler.Create", "ID and title are required", nil))
		return
	}

	conv, err := h.svc.Create(c.Request.Context(), userID, req.ID, req.Title)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, conv)
}

func (h *ConversationHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conv, err := h.svc.Get(c.Request.Context(), userID, c.Param("conversation_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

type UpdateConversationRequest struct {
	Title *string `json:"title"`
}

// Update renames a conversation; with no title it only bumps updated_at.
func (h *ConversationHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ConversationHandler.Update", "invalid request body", err))
		return
	}

	if err := h.svc.Update(c.Request.Context(), userID, c.Param("conversation_id"), req.Title); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation updated successfully"})
}
