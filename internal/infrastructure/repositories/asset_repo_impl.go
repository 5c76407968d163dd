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
	"bridge-gate.backend/pkg/utils"
)

type assetRepo struct {
	db *gorm.DB
}

// NewAssetRepository creates a new bridge asset repository
func NewAssetRepository(db *gorm.DB) repositories.AssetRepository {
	return &assetRepo{db: db}
}

func (r *assetRepo) GetByID(ctx context.Context, id common.Hash) (*entities.Asset, error) {
	var m models.Asset
	if err := GetDB(ctx, r.db).Where("debridge_id = ?", hashKey(id)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

// GetByLocalToken finds the asset whose token on this chain is localToken
func (r *assetRepo) GetByLocalToken(ctx context.Context, localToken crosschain.Address) (*entities.Asset, error) {
	var m models.Asset
	if err := GetDB(ctx, r.db).Where("local_token_address = ?", addressKey(localToken)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

func (r *assetRepo) List(ctx context.Context, pagination utils.PaginationParams) ([]*entities.Asset, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&models.Asset{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := db.Order("created_at ASC")
	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.CalculateOffset())
	}
	var ms []models.Asset
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	assets := make([]*entities.Asset, 0, len(ms))
	for i := range ms {
		a, err := r.toEntity(&ms[i])
		if err != nil {
			return nil, 0, err
		}
		assets = append(assets, a)
	}
	return assets, total, nil
}

func (r *assetRepo) Create(ctx context.Context, asset *entities.Asset) error {
	now := time.Now()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	m := r.toModel(asset)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *assetRepo) Update(ctx context.Context, asset *entities.Asset) error {
	asset.UpdatedAt = time.Now()
	res := GetDB(ctx, r.db).Model(&models.Asset{}).
		Where("debridge_id = ?", hashKey(asset.DebridgeID)).
		Updates(map[string]interface{}{
			"local_token_address": addressKey(asset.LocalTokenAddress),
			"name":                asset.Name,
			"symbol":              asset.Symbol,
			"decimals":            asset.Decimals,
			"max_amount":          amountColumn(asset.MaxAmount),
			"amount_threshold":    amountColumn(asset.AmountThreshold),
			"min_reserves_bps":    asset.MinReservesBps,
			"balance":             amountColumn(asset.Balance),
			"locked_in_strategy":  amountColumn(asset.LockedInStrategy),
			"collected_fees":      amountColumn(asset.CollectedFees),
			"withdrawn_fees":      amountColumn(asset.WithdrawnFees),
			"updated_at":          asset.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *assetRepo) GetChainFee(ctx context.Context, id common.Hash, chainID crosschain.ChainID) (*entities.AssetChainFee, error) {
	var m models.AssetChainFee
	err := GetDB(ctx, r.db).
		Where("debridge_id = ? AND chain_id = ?", hashKey(id), uint64(chainID)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	fee, err := parseAmountColumn(m.FixedFee)
	if err != nil {
		return nil, err
	}
	return &entities.AssetChainFee{DebridgeID: id, ChainID: chainID, FixedFee: fee}, nil
}

func (r *assetRepo) UpsertChainFee(ctx context.Context, fee *entities.AssetChainFee) error {
	m := &models.AssetChainFee{
		DebridgeID: hashKey(fee.DebridgeID),
		ChainID:    uint64(fee.ChainID),
		FixedFee:   amountColumn(fee.FixedFee),
		UpdatedAt:  time.Now(),
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "debridge_id"}, {Name: "chain_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"fixed_fee", "updated_at"}),
	}).Create(m).Error
}

func (r *assetRepo) toModel(a *entities.Asset) *models.Asset {
	return &models.Asset{
		DebridgeID:        hashKey(a.DebridgeID),
		ChainID:           uint64(a.ChainID),
		TokenAddress:      addressKey(a.TokenAddress),
		LocalTokenAddress: addressKey(a.LocalTokenAddress),
		IsNativeChain:     a.IsNativeChain,
		Name:              a.Name,
		Symbol:            a.Symbol,
		Decimals:          a.Decimals,
		MaxAmount:         amountColumn(a.MaxAmount),
		AmountThreshold:   amountColumn(a.AmountThreshold),
		MinReservesBps:    a.MinReservesBps,
		Balance:           amountColumn(a.Balance),
		LockedInStrategy:  amountColumn(a.LockedInStrategy),
		CollectedFees:     amountColumn(a.CollectedFees),
		WithdrawnFees:     amountColumn(a.WithdrawnFees),
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func (r *assetRepo) toEntity(m *models.Asset) (*entities.Asset, error) {
	a := &entities.Asset{
		DebridgeID:        common.HexToHash(m.DebridgeID),
		ChainID:           crosschain.ChainID(m.ChainID),
		TokenAddress:      parseAddressColumn(m.TokenAddress),
		LocalTokenAddress: parseAddressColumn(m.LocalTokenAddress),
		IsNativeChain:     m.IsNativeChain,
		Name:              m.Name,
		Symbol:            m.Symbol,
		Decimals:          m.Decimals,
		MinReservesBps:    m.MinReservesBps,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	var err error
	if a.MaxAmount, err = parseAmountColumn(m.MaxAmount); err != nil {
		return nil, err
	}
	if a.AmountThreshold, err = parseAmountColumn(m.AmountThreshold); err != nil {
		return nil, err
	}
	if a.Balance, err = parseAmountColumn(m.Balance); err != nil {
		return nil, err
	}
	if a.LockedInStrategy, err = parseAmountColumn(m.LockedInStrategy); err != nil {
		return nil, err
	}
	if a.CollectedFees, err = parseAmountColumn(m.CollectedFees); err != nil {
		return nil, err
	}
	if a.WithdrawnFees, err = parseAmountColumn(m.WithdrawnFees); err != nil {
		return nil, err
	}
	return a, nil
}
