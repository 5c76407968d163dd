package repositories

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/utils"
)

// AssetRepository defines bridge asset data operations
type AssetRepository interface {
	GetByID(ctx context.Context, id common.Hash) (*entities.Asset, error)
	GetByLocalToken(ctx context.Context, localToken crosschain.Address) (*entities.Asset, error)
	List(ctx context.Context, pagination utils.PaginationParams) ([]*entities.Asset, int64, error)
	Create(ctx context.Context, asset *entities.Asset) error
	Update(ctx context.Context, asset *entities.Asset) error
	GetChainFee(ctx context.Context, id common.Hash, chainID crosschain.ChainID) (*entities.AssetChainFee, error)
	UpsertChainFee(ctx context.Context, fee *entities.AssetChainFee) error
}
