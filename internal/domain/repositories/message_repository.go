package repositories

import (
	"context"

	"github.com/google/uuid"
	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/pkg/utils"
)

// MessageRepository is the cross-chain outbox
type MessageRepository interface {
	Create(ctx context.Context, msg *entities.CrossChainMessage) error
	List(ctx context.Context, status *entities.MessageStatus, pagination utils.PaginationParams) ([]*entities.CrossChainMessage, int64, error)
	GetPending(ctx context.Context, limit int) ([]*entities.CrossChainMessage, error)
	MarkRelayed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, maxAttempts int) error
}
