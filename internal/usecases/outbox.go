package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/utils"
)

// enqueueMessage writes a cross-chain message inside the running operation
func enqueueMessage(ctx context.Context, repo repositories.MessageRepository, kind entities.MessageKind, chainTo crosschain.ChainID, reference string, payload interface{}) (*entities.CrossChainMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", kind, err)
	}
	msg := &entities.CrossChainMessage{
		Kind:      kind,
		ChainIDTo: chainTo,
		Reference: reference,
		Payload:   body,
		Status:    entities.MessageStatusPending,
	}
	if err := repo.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// MessageUsecase exposes the outbox for inspection
type MessageUsecase struct {
	messageRepo repositories.MessageRepository
}

// NewMessageUsecase creates a new outbox usecase
func NewMessageUsecase(messageRepo repositories.MessageRepository) *MessageUsecase {
	return &MessageUsecase{messageRepo: messageRepo}
}

// ListMessages returns outbox messages, optionally filtered by status
func (u *MessageUsecase) ListMessages(ctx context.Context, status *entities.MessageStatus, pagination utils.PaginationParams) ([]*entities.CrossChainMessage, int64, error) {
	return u.messageRepo.List(ctx, status, pagination)
}
