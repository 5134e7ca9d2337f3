package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/halcyonchat/halcyon/internal/services"
	"github.com/halcyonchat/halcyon/internal/utils"
)

// ErrorMarker is appended to the stream when the upstream provider fails
// mid-generation, so the caller sees an explicit failure instead of a
// silently truncated reply.
const ErrorMarker = "\n\n[generation error]"

type ChatHandler struct {
	svc services.ChatService
	log *logrus.Logger
}

func NewChatHandler(svc services.ChatService, log *logrus.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, log: log}
}

type GenerateResponseRequest struct {
	Messages []services.ChatTurn `json:"messages"`
}

// GenerateResponse relays the provider's token stream to the caller as
// text/plain, flushing each chunk as it arrives.
func (h *ChatHandler) GenerateResponse(c *gin.Context) {
	var req GenerateResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ChatHandler.GenerateResponse", "invalid request body", err))
		return
	}

	chunks, errs, err := h.svc.StreamReply(c.Request.Context(), req.Messages)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)

	for chunk := range chunks {
		if _, err := c.Writer.WriteString(chunk); err != nil {
			// caller went away; the provider goroutine stops via ctx
			return
		}
		c.Writer.Flush()
	}

	if err := <-errs; err != nil {
		h.log.WithError(err).Error("generation stream failed")
		_, _ = c.Writer.WriteString(ErrorMarker)
		c.Writer.Flush()
	}
}

type GenerateTitleRequest struct {
	FirstUserMessage string `json:"firstUserMessage"`
}

func (h *ChatHandler) GenerateTitle(c *gin.Context) {
	var req GenerateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ChatHandler.GenerateTitle", "invalid request body", err))
		return
	}

	title, err := h.svc.GenerateTitle(c.Request.Context(), req.FirstUserMessage)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"title": title})
}
