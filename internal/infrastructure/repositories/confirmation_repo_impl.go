package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/internal/infrastructure/models"
)

type confirmationRepo struct {
	db *gorm.DB
}

// NewConfirmationRepository creates the oracle / confirmation repository
func NewConfirmationRepository(db *gorm.DB) repositories.ConfirmationRepository {
	return &confirmationRepo{db: db}
}

func oracleKey(a common.Address) string {
	return strings.ToLower(a.Hex())
}

func (r *confirmationRepo) Add(ctx context.Context, c *entities.Confirmation) (bool, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	m := &models.Confirmation{
		AggregatorVersion: c.AggregatorVersion,
		SubmissionID:      hashKey(c.SubmissionID),
		Oracle:            oracleKey(c.Oracle),
		CreatedAt:         c.CreatedAt,
	}
	res := GetDB(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *confirmationRepo) ListConfirmers(ctx context.Context, version uint64, id common.Hash) ([]common.Address, error) {
	var ms []models.Confirmation
	if err := GetDB(ctx, r.db).
		Where("aggregator_version = ? AND submission_id = ?", version, hashKey(id)).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]common.Address, 0, len(ms))
	for _, m := range ms {
		out = append(out, common.HexToAddress(m.Oracle))
	}
	return out, nil
}

func (r *confirmationRepo) GetOracle(ctx context.Context, addr common.Address) (*entities.Oracle, error) {
	var m models.Oracle
	if err := GetDB(ctx, r.db).Where("address = ?", oracleKey(addr)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return oracleToEntity(&m), nil
}

func (r *confirmationRepo) ListOracles(ctx context.Context) ([]*entities.Oracle, error) {
	var ms []models.Oracle
	if err := GetDB(ctx, r.db).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Oracle, 0, len(ms))
	for i := range ms {
		out = append(out, oracleToEntity(&ms[i]))
	}
	return out, nil
}

func (r *confirmationRepo) UpsertOracle(ctx context.Context, o *entities.Oracle) error {
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	m := &models.Oracle{
		Address:   oracleKey(o.Address),
		IsValid:   o.IsValid,
		Required:  o.Required,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_valid", "required", "updated_at"}),
	}).Create(m).Error
}

func (r *confirmationRepo) DeleteOracle(ctx context.Context, addr common.Address) error {
	res := GetDB(ctx, r.db).Where("address = ?", oracleKey(addr)).Delete(&models.Oracle{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *confirmationRepo) GetAggregator(ctx context.Context, version uint64) (*entities.AggregatorVersion, error) {
	var m models.AggregatorVersion
	if err := GetDB(ctx, r.db).Where("version = ?", version).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.AggregatorVersion{Version: m.Version, IsValid: m.IsValid, UpdatedAt: m.UpdatedAt}, nil
}

func (r *confirmationRepo) UpsertAggregator(ctx context.Context, v *entities.AggregatorVersion) error {
	v.UpdatedAt = time.Now()
	m := &models.AggregatorVersion{Version: v.Version, IsValid: v.IsValid, UpdatedAt: v.UpdatedAt}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "version"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_valid", "updated_at"}),
	}).Create(m).Error
}

func oracleToEntity(m *models.Oracle) *entities.Oracle {
	return &entities.Oracle{
		Address:   common.HexToAddress(m.Address),
		IsValid:   m.IsValid,
		Required:  m.Required,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
