package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/internal/infrastructure/models"
	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/utils"
)

type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepository creates the cross-chain outbox repository
func NewMessageRepository(db *gorm.DB) repositories.MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, msg *entities.CrossChainMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = utils.GenerateUUIDv7()
	}
	if msg.Status == "" {
		msg.Status = entities.MessageStatusPending
	}
	now := time.Now()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	m := &models.CrossChainMessage{
		ID:        msg.ID,
		Kind:      string(msg.Kind),
		ChainIDTo: uint64(msg.ChainIDTo),
		Reference: msg.Reference,
		Payload:   string(msg.Payload),
		Status:    string(msg.Status),
		Attempts:  msg.Attempts,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *messageRepo) List(ctx context.Context, status *entities.MessageStatus, pagination utils.PaginationParams) ([]*entities.CrossChainMessage, int64, error) {
	base := func() *gorm.DB {
		q := GetDB(ctx, r.db).Model(&models.CrossChainMessage{})
		if status != nil {
			q = q.Where("status = ?", string(*status))
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base().Order("created_at DESC")
	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.CalculateOffset())
	}
	var ms []models.CrossChainMessage
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	return messagesToEntities(ms), total, nil
}

func (r *messageRepo) GetPending(ctx context.Context, limit int) ([]*entities.CrossChainMessage, error) {
	var ms []models.CrossChainMessage
	if err := GetDB(ctx, r.db).
		Where("status = ?", string(entities.MessageStatusPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return messagesToEntities(ms), nil
}

func (r *messageRepo) MarkRelayed(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	res := GetDB(ctx, r.db).Model(&models.CrossChainMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(entities.MessageStatusRelayed),
			"attempts":   gorm.Expr("attempts + 1"),
			"relayed_at": now,
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// MarkFailed records a relay attempt; the message stays pending until maxAttempts is reached
func (r *messageRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string, maxAttempts int) error {
	db := GetDB(ctx, r.db)

	var m models.CrossChainMessage
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainerrors.ErrNotFound
		}
		return err
	}

	attempts := m.Attempts + 1
	status := entities.MessageStatusPending
	if maxAttempts > 0 && attempts >= maxAttempts {
		status = entities.MessageStatusFailed
	}
	return db.Model(&models.CrossChainMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"attempts":   attempts,
			"last_error": reason,
			"updated_at": time.Now(),
		}).Error
}

func messagesToEntities(ms []models.CrossChainMessage) []*entities.CrossChainMessage {
	out := make([]*entities.CrossChainMessage, 0, len(ms))
	for _, m := range ms {
		msg := &entities.CrossChainMessage{
			ID:        m.ID,
			Kind:      entities.MessageKind(m.Kind),
			ChainIDTo: crosschain.ChainID(m.ChainIDTo),
			Reference: m.Reference,
			Payload:   []byte(m.Payload),
			Status:    entities.MessageStatus(m.Status),
			Attempts:  m.Attempts,
			LastError: null.StringFromPtr(m.LastError),
			RelayedAt: null.TimeFromPtr(m.RelayedAt),
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		}
		out = append(out, msg)
	}
	return out
}
