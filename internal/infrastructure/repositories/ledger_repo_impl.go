package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/holiman/uint256"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/internal/infrastructure/models"
	"bridge-gate.backend/pkg/crosschain"
)

type ledgerRepo struct {
	db *gorm.DB
}

// NewLedgerRepository creates the token balance repository
func NewLedgerRepository(db *gorm.DB) repositories.LedgerRepository {
	return &ledgerRepo{db: db}
}

func (r *ledgerRepo) BalanceOf(ctx context.Context, token, holder crosschain.Address) (*uint256.Int, error) {
	var m models.TokenBalance
	err := GetDB(ctx, r.db).
		Where("token = ? AND holder = ?", addressKey(token), addressKey(holder)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return new(uint256.Int), nil
		}
		return nil, err
	}
	return parseAmountColumn(m.Amount)
}

func (r *ledgerRepo) SetBalance(ctx context.Context, token, holder crosschain.Address, amount *uint256.Int) error {
	m := &models.TokenBalance{
		Token:     addressKey(token),
		Holder:    addressKey(holder),
		Amount:    amountColumn(amount),
		UpdatedAt: time.Now(),
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}, {Name: "holder"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(m).Error
}

func (r *ledgerRepo) ListByHolder(ctx context.Context, holder crosschain.Address) ([]*entities.TokenBalance, error) {
	var ms []models.TokenBalance
	if err := GetDB(ctx, r.db).Where("holder = ?", addressKey(holder)).Order("token ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.TokenBalance, 0, len(ms))
	for _, m := range ms {
		amount, err := parseAmountColumn(m.Amount)
		if err != nil {
			return nil, err
		}
		out = append(out, &entities.TokenBalance{
			Token:     parseAddressColumn(m.Token),
			Holder:    parseAddressColumn(m.Holder),
			Amount:    amount,
			UpdatedAt: m.UpdatedAt,
		})
	}
	return out, nil
}

type roleRepo struct {
	db *gorm.DB
}

// NewRoleRepository creates the protocol role repository
func NewRoleRepository(db *gorm.DB) repositories.RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) HasRole(ctx context.Context, addr crosschain.Address, role entities.Role) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&models.RoleAssignment{}).
		Where("address = ? AND role = ?", addressKey(addr), string(role)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *roleRepo) Grant(ctx context.Context, addr crosschain.Address, role entities.Role) error {
	m := &models.RoleAssignment{Address: addressKey(addr), Role: string(role), CreatedAt: time.Now()}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error
}

func (r *roleRepo) Revoke(ctx context.Context, addr crosschain.Address, role entities.Role) error {
	return GetDB(ctx, r.db).
		Where("address = ? AND role = ?", addressKey(addr), string(role)).
		Delete(&models.RoleAssignment{}).Error
}

func (r *roleRepo) ListByRole(ctx context.Context, role entities.Role) ([]crosschain.Address, error) {
	var ms []models.RoleAssignment
	if err := GetDB(ctx, r.db).Where("role = ?", string(role)).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]crosschain.Address, 0, len(ms))
	for _, m := range ms {
		out = append(out, parseAddressColumn(m.Address))
	}
	return out, nil
}
