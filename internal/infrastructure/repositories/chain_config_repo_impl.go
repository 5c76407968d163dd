package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/internal/infrastructure/models"
	"bridge-gate.backend/pkg/crosschain"
)

const settingsRowID = 1

type chainConfigRepo struct {
	db *gorm.DB
}

// NewChainConfigRepository creates a new remote chain configuration repository
func NewChainConfigRepository(db *gorm.DB) repositories.ChainConfigRepository {
	return &chainConfigRepo{db: db}
}

func (r *chainConfigRepo) Get(ctx context.Context, chainID crosschain.ChainID) (*entities.ChainConfig, error) {
	var m models.ChainConfig
	if err := GetDB(ctx, r.db).Where("chain_id = ?", uint64(chainID)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

func (r *chainConfigRepo) GetAll(ctx context.Context) ([]*entities.ChainConfig, error) {
	var ms []models.ChainConfig
	if err := GetDB(ctx, r.db).Order("chain_id ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.ChainConfig, 0, len(ms))
	for i := range ms {
		cfg, err := r.toEntity(&ms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, nil
}

func (r *chainConfigRepo) Upsert(ctx context.Context, cfg *entities.ChainConfig) error {
	now := time.Now()
	cfg.UpdatedAt = now
	m := &models.ChainConfig{
		ChainID:         uint64(cfg.ChainID),
		ChainType:       string(cfg.AddressType()),
		IsSupportedTo:   cfg.IsSupportedTo,
		IsSupportedFrom: cfg.IsSupportedFrom,
		FixedNativeFee:  amountColumn(cfg.FixedNativeFee),
		TransferFeeBps:  cfg.TransferFeeBps,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chain_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"chain_type", "is_supported_to", "is_supported_from",
			"fixed_native_fee", "transfer_fee_bps", "updated_at",
		}),
	}).Create(m).Error
}

func (r *chainConfigRepo) toEntity(m *models.ChainConfig) (*entities.ChainConfig, error) {
	fee, err := parseAmountColumn(m.FixedNativeFee)
	if err != nil {
		return nil, err
	}
	return &entities.ChainConfig{
		ChainID:         crosschain.ChainID(m.ChainID),
		ChainType:       crosschain.ChainType(m.ChainType),
		IsSupportedTo:   m.IsSupportedTo,
		IsSupportedFrom: m.IsSupportedFrom,
		FixedNativeFee:  fee,
		TransferFeeBps:  m.TransferFeeBps,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}

type settingsRepo struct {
	db *gorm.DB
}

// NewSettingsRepository creates the protocol settings repository
func NewSettingsRepository(db *gorm.DB) repositories.SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context) (*entities.ProtocolSettings, error) {
	var m models.ProtocolSettings
	if err := GetDB(ctx, r.db).Where("id = ?", settingsRowID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.DefaultProtocolSettings(), nil
		}
		return nil, err
	}
	fee, err := parseAmountColumn(m.GlobalFixedNativeFee)
	if err != nil {
		return nil, err
	}
	return &entities.ProtocolSettings{
		Version:               m.Version,
		GlobalFixedNativeFee:  fee,
		GlobalTransferFeeBps:  m.GlobalTransferFeeBps,
		FlashFeeBps:           m.FlashFeeBps,
		MinConfirmations:      m.MinConfirmations,
		ConfirmationThreshold: m.ConfirmationThreshold,
		RequiredOraclesCount:  m.RequiredOraclesCount,
		AggregatorVersion:     m.AggregatorVersion,
		Paused:                m.Paused,
		UpdatedAt:             m.UpdatedAt,
	}, nil
}

func (r *settingsRepo) Save(ctx context.Context, s *entities.ProtocolSettings) error {
	s.Version++
	s.UpdatedAt = time.Now()
	m := &models.ProtocolSettings{
		ID:                    settingsRowID,
		Version:               s.Version,
		GlobalFixedNativeFee:  amountColumn(s.GlobalFixedNativeFee),
		GlobalTransferFeeBps:  s.GlobalTransferFeeBps,
		FlashFeeBps:           s.FlashFeeBps,
		MinConfirmations:      s.MinConfirmations,
		ConfirmationThreshold: s.ConfirmationThreshold,
		RequiredOraclesCount:  s.RequiredOraclesCount,
		AggregatorVersion:     s.AggregatorVersion,
		Paused:                s.Paused,
		UpdatedAt:             s.UpdatedAt,
	}
	return GetDB(ctx, r.db).Save(m).Error
}
