package handlers

import (
	"github.com/gin-gonic/gin"

	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/interfaces/http/response"
	"bridge-gate.backend/internal/usecases"
)

// MessageHandler exposes the cross-chain message outbox
type MessageHandler struct {
	messages *usecases.MessageUsecase
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messages *usecases.MessageUsecase) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// ListMessages lists outbox entries, optionally by status
// GET /api/v1/messages?status=PENDING
func (h *MessageHandler) ListMessages(c *gin.Context) {
	var status *entities.MessageStatus
	if raw := c.Query("status"); raw != "" {
		s := entities.MessageStatus(raw)
		switch s {
		case entities.MessageStatusPending, entities.MessageStatusRelayed, entities.MessageStatusFailed:
			status = &s
		default:
			response.Error(c, domainerrors.BadRequest("invalid status"))
			return
		}
	}
	pagination := paginationFromQuery(c)
	messages, total, err := h.messages.ListMessages(c.Request.Context(), status, pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, messages, total, pagination)
}
