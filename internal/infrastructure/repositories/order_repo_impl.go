package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/internal/infrastructure/models"
	"bridge-gate.backend/pkg/crosschain"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository creates the order take-state repository
func NewOrderRepository(db *gorm.DB) repositories.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) GetState(ctx context.Context, id common.Hash) (*entities.OrderTakeState, error) {
	var m models.OrderTakeState
	if err := GetDB(ctx, r.db).Where("order_id = ?", hashKey(id)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	state := &entities.OrderTakeState{
		OrderID:           common.HexToHash(m.OrderID),
		Status:            entities.OrderTakeStatus(m.Status),
		GiveChainID:       crosschain.ChainID(m.GiveChainID),
		UnlockAuthority:   parseAddressColumn(m.UnlockAuthority),
		Canceler:          parseAddressColumn(m.Canceler),
		CancelBeneficiary: parseAddressColumn(m.CancelBeneficiary),
		Unlocker:          parseAddressColumn(m.Unlocker),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.TakeAmount != "" {
		amount, err := parseAmountColumn(m.TakeAmount)
		if err != nil {
			return nil, err
		}
		state.TakeAmount = amount
	}
	return state, nil
}

func (r *orderRepo) CreateState(ctx context.Context, s *entities.OrderTakeState) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	return GetDB(ctx, r.db).Create(stateToModel(s)).Error
}

func (r *orderRepo) UpdateState(ctx context.Context, s *entities.OrderTakeState) error {
	s.UpdatedAt = time.Now()
	res := GetDB(ctx, r.db).Model(&models.OrderTakeState{}).
		Where("order_id = ?", hashKey(s.OrderID)).
		Updates(map[string]interface{}{
			"status":             string(s.Status),
			"unlock_authority":   addressKey(s.UnlockAuthority),
			"canceler":           addressKey(s.Canceler),
			"cancel_beneficiary": addressKey(s.CancelBeneficiary),
			"unlocker":           addressKey(s.Unlocker),
			"updated_at":         s.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *orderRepo) GetPatch(ctx context.Context, id common.Hash) (*entities.OrderTakePatch, error) {
	var m models.OrderTakePatch
	if err := GetDB(ctx, r.db).Where("order_id = ?", hashKey(id)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	sub, err := parseAmountColumn(m.Subtrahend)
	if err != nil {
		return nil, err
	}
	return &entities.OrderTakePatch{OrderID: id, Subtrahend: sub, UpdatedAt: m.UpdatedAt}, nil
}

func (r *orderRepo) SavePatch(ctx context.Context, p *entities.OrderTakePatch) error {
	p.UpdatedAt = time.Now()
	m := &models.OrderTakePatch{
		OrderID:    hashKey(p.OrderID),
		Subtrahend: amountColumn(p.Subtrahend),
		UpdatedAt:  p.UpdatedAt,
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"subtrahend", "updated_at"}),
	}).Create(m).Error
}

func (r *orderRepo) GetAuthorizedSrc(ctx context.Context, chainID crosschain.ChainID) (*entities.AuthorizedSrcContract, error) {
	var m models.AuthorizedSrcContract
	if err := GetDB(ctx, r.db).Where("chain_id = ?", uint64(chainID)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.AuthorizedSrcContract{
		ChainID:   chainID,
		Address:   parseAddressColumn(m.Address),
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func (r *orderRepo) SaveAuthorizedSrc(ctx context.Context, c *entities.AuthorizedSrcContract) error {
	c.UpdatedAt = time.Now()
	m := &models.AuthorizedSrcContract{
		ChainID:   uint64(c.ChainID),
		Address:   addressKey(c.Address),
		UpdatedAt: c.UpdatedAt,
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chain_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"address", "updated_at"}),
	}).Create(m).Error
}

func stateToModel(s *entities.OrderTakeState) *models.OrderTakeState {
	m := &models.OrderTakeState{
		OrderID:           hashKey(s.OrderID),
		Status:            string(s.Status),
		GiveChainID:       uint64(s.GiveChainID),
		UnlockAuthority:   addressKey(s.UnlockAuthority),
		Canceler:          addressKey(s.Canceler),
		CancelBeneficiary: addressKey(s.CancelBeneficiary),
		Unlocker:          addressKey(s.Unlocker),
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
	if s.TakeAmount != nil {
		m.TakeAmount = s.TakeAmount.Dec()
	}
	return m
}
