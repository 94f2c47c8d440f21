package handlers

import (
	"SmartClinic/assistant"
	"SmartClinic/middlewares"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Chatter answers a free-text message.
type Chatter interface {
	Chat(ctx context.Context, message string) (string, error)
}

type ChatHandler struct {
	assistant Chatter
	log       *zap.Logger
}

func NewChatHandler(assistant Chatter, log *zap.Logger) *ChatHandler {
	return &ChatHandler{assistant: assistant, log: log}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var body struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	response, err := h.assistant.Chat(c.Request.Context(), body.Message)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyMessage) {
			badRequest(c, "No message provided")
			return
		}
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"response": response})
}
