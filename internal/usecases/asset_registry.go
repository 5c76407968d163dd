package usecases

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/logger"
	"bridge-gate.backend/pkg/utils"
)

// TokenMetadataReader reads token metadata from the token's origin chain
type TokenMetadataReader interface {
	ReadMetadata(ctx context.Context, chainID crosschain.ChainID, token crosschain.Address) (*entities.TokenMetadata, error)
}

// WrappedAssetDeployer deploys the local representation of a foreign asset
type WrappedAssetDeployer interface {
	Deploy(ctx context.Context, debridgeID common.Hash, meta entities.TokenMetadata) (crosschain.Address, error)
}

// AssetRegistry owns bridge asset records and the chain support tables
type AssetRegistry struct {
	gate      *Gate
	assetRepo repositories.AssetRepository
	chainRepo repositories.ChainConfigRepository
	access    *AccessControl
	metadata  TokenMetadataReader
	deployer  WrappedAssetDeployer
}

// NewAssetRegistry creates a new asset registry
func NewAssetRegistry(
	gate *Gate,
	assetRepo repositories.AssetRepository,
	chainRepo repositories.ChainConfigRepository,
	access *AccessControl,
	metadata TokenMetadataReader,
	deployer WrappedAssetDeployer,
) *AssetRegistry {
	return &AssetRegistry{
		gate:      gate,
		assetRepo: assetRepo,
		chainRepo: chainRepo,
		access:    access,
		metadata:  metadata,
		deployer:  deployer,
	}
}

// RegisterOrGetAsset returns the asset of (chainID, token), creating it on first use
func (r *AssetRegistry) RegisterOrGetAsset(ctx context.Context, chainID crosschain.ChainID, token crosschain.Address) (*entities.Asset, error) {
	var asset *entities.Asset
	err := r.gate.Execute(ctx, "register_asset", func(ctx context.Context) error {
		var err error
		asset, err = r.registerOrGet(ctx, chainID, token)
		return err
	})
	return asset, err
}

func (r *AssetRegistry) registerOrGet(ctx context.Context, chainID crosschain.ChainID, token crosschain.Address) (*entities.Asset, error) {
	id := crosschain.BridgeAssetID(chainID, token)
	asset, err := r.assetRepo.GetByID(ctx, id)
	if err == nil {
		return asset, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	local := r.gate.Config()
	if chainID == local.ChainID {
		if err := validateAddress(local.ChainType, token); err != nil {
			return nil, err
		}
		asset = entities.NewAsset(id, chainID, token, token, true)
	} else {
		if err := r.validateRemoteToken(ctx, chainID, token); err != nil {
			return nil, err
		}
		if r.metadata == nil || r.deployer == nil {
			return nil, domainerrors.ErrAssetNotFound.Wrapf("no deployer for chain %d", chainID)
		}
		meta, err := r.metadata.ReadMetadata(ctx, chainID, token)
		if err != nil {
			return nil, err
		}
		asset, err = r.deployWrapped(ctx, id, chainID, token, *meta)
		if err != nil {
			return nil, err
		}
		return asset, nil
	}

	if err := r.assetRepo.Create(ctx, asset); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Native asset registered",
		zap.String("debridge_id", id.Hex()),
		zap.String("token", token.String()),
	)
	return asset, nil
}

func (r *AssetRegistry) validateRemoteToken(ctx context.Context, chainID crosschain.ChainID, token crosschain.Address) error {
	chainType := crosschain.ChainTypeEVM
	cfg, err := r.chainRepo.Get(ctx, chainID)
	switch {
	case err == nil:
		chainType = cfg.AddressType()
	case !isNotFound(err):
		return err
	}
	return validateAddress(chainType, token)
}

func (r *AssetRegistry) deployWrapped(ctx context.Context, id common.Hash, chainID crosschain.ChainID, token crosschain.Address, meta entities.TokenMetadata) (*entities.Asset, error) {
	localToken, err := r.deployer.Deploy(ctx, id, meta)
	if err != nil {
		return nil, err
	}
	asset := entities.NewAsset(id, chainID, token, localToken, false)
	asset.Name = meta.Name
	asset.Symbol = meta.Symbol
	asset.Decimals = meta.Decimals
	if err := r.assetRepo.Create(ctx, asset); err != nil {
		if err == domainerrors.ErrAlreadyExists {
			return nil, domainerrors.ErrAssetAlreadyExists
		}
		return nil, err
	}
	logger.Info(ctx, "Wrapped asset deployed",
		zap.String("debridge_id", id.Hex()),
		zap.Uint64("origin_chain", uint64(chainID)),
		zap.String("local_token", localToken.String()),
	)
	return asset, nil
}

// DeployNewAsset registers a foreign asset with explicit metadata
func (r *AssetRegistry) DeployNewAsset(ctx context.Context, caller crosschain.Address, chainID crosschain.ChainID, token crosschain.Address, meta entities.TokenMetadata) (*entities.Asset, error) {
	var asset *entities.Asset
	err := r.gate.Execute(ctx, "deploy_asset", func(ctx context.Context) error {
		if err := r.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		if chainID == r.gate.Config().ChainID {
			return domainerrors.ErrNativeAsset
		}
		if err := r.validateRemoteToken(ctx, chainID, token); err != nil {
			return err
		}
		if r.deployer == nil {
			return domainerrors.ErrInvalidParams.Wrapf("no wrapped asset deployer configured")
		}
		id := crosschain.BridgeAssetID(chainID, token)
		if _, err := r.assetRepo.GetByID(ctx, id); err == nil {
			return domainerrors.ErrAssetAlreadyExists
		} else if !isNotFound(err) {
			return err
		}
		var err error
		asset, err = r.deployWrapped(ctx, id, chainID, token, meta)
		return err
	})
	return asset, err
}

// resolveLocalToken finds the asset a local token belongs to. Tokens never seen
// before are registered as native assets of this chain.
func (r *AssetRegistry) resolveLocalToken(ctx context.Context, token crosschain.Address) (*entities.Asset, error) {
	asset, err := r.assetRepo.GetByLocalToken(ctx, token)
	if err == nil {
		return asset, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	return r.registerOrGet(ctx, r.gate.Config().ChainID, token)
}

// IsNativeChain reports whether the asset originates on this chain
func (r *AssetRegistry) IsNativeChain(ctx context.Context, id common.Hash) (bool, error) {
	asset, err := r.GetAsset(ctx, id)
	if err != nil {
		return false, err
	}
	return asset.ChainID == r.gate.Config().ChainID, nil
}

// GetAsset returns an asset record
func (r *AssetRegistry) GetAsset(ctx context.Context, id common.Hash) (*entities.Asset, error) {
	asset, err := r.assetRepo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, domainerrors.ErrAssetNotFound
		}
		return nil, err
	}
	return asset, nil
}

// ListAssets returns a page of asset records
func (r *AssetRegistry) ListAssets(ctx context.Context, pagination utils.PaginationParams) ([]*entities.Asset, int64, error) {
	return r.assetRepo.List(ctx, pagination)
}

// ListChains returns every configured remote chain
func (r *AssetRegistry) ListChains(ctx context.Context) ([]*entities.ChainConfig, error) {
	return r.chainRepo.GetAll(ctx)
}

// UpdateChainSupportInput configures transfers towards one chain
type UpdateChainSupportInput struct {
	ChainID        crosschain.ChainID   `json:"chainId" binding:"required"`
	IsSupported    bool                 `json:"isSupported"`
	FixedNativeFee *uint256.Int         `json:"fixedNativeFee"`
	TransferFeeBps uint64               `json:"transferFeeBps"`
	ChainType      crosschain.ChainType `json:"chainType"`
}

// UpdateChainSupport sets the outbound support flag and fees of a chain
func (r *AssetRegistry) UpdateChainSupport(ctx context.Context, caller crosschain.Address, input UpdateChainSupportInput) (*entities.ChainConfig, error) {
	var cfg *entities.ChainConfig
	err := r.gate.Execute(ctx, "update_chain_support", func(ctx context.Context) error {
		if err := r.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		if input.ChainID == 0 || input.ChainID == r.gate.Config().ChainID {
			return domainerrors.ErrInvalidParams.Wrapf("chain %d cannot be a remote chain", input.ChainID)
		}
		if input.TransferFeeBps > entities.BpsDenominator {
			return domainerrors.ErrInvalidParams.Wrapf("transferFeeBps %d", input.TransferFeeBps)
		}
		if input.ChainType != "" && crosschain.AddressLength(input.ChainType) == 0 {
			return domainerrors.ErrInvalidParams.Wrapf("unknown chain type %q", input.ChainType)
		}

		var err error
		cfg, err = r.getOrNewChain(ctx, input.ChainID)
		if err != nil {
			return err
		}
		cfg.IsSupportedTo = input.IsSupported
		cfg.FixedNativeFee = orZero(input.FixedNativeFee)
		cfg.TransferFeeBps = input.TransferFeeBps
		if input.ChainType != "" {
			cfg.ChainType = input.ChainType
		}
		return r.chainRepo.Upsert(ctx, cfg)
	})
	return cfg, err
}

// SetChainIDSupport toggles one direction of a chain's support
func (r *AssetRegistry) SetChainIDSupport(ctx context.Context, caller crosschain.Address, chainID crosschain.ChainID, isSupported, isChainFrom bool) error {
	return r.gate.Execute(ctx, "set_chain_support", func(ctx context.Context) error {
		if err := r.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		if chainID == 0 || chainID == r.gate.Config().ChainID {
			return domainerrors.ErrInvalidParams.Wrapf("chain %d cannot be a remote chain", chainID)
		}
		cfg, err := r.getOrNewChain(ctx, chainID)
		if err != nil {
			return err
		}
		if isChainFrom {
			cfg.IsSupportedFrom = isSupported
		} else {
			cfg.IsSupportedTo = isSupported
		}
		return r.chainRepo.Upsert(ctx, cfg)
	})
}

func (r *AssetRegistry) getOrNewChain(ctx context.Context, chainID crosschain.ChainID) (*entities.ChainConfig, error) {
	cfg, err := r.chainRepo.Get(ctx, chainID)
	if err == nil {
		return cfg, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	return &entities.ChainConfig{
		ChainID:        chainID,
		ChainType:      crosschain.ChainTypeEVM,
		FixedNativeFee: new(uint256.Int),
	}, nil
}

// UpdateAssetFixedFees sets the fixed fee of an asset towards one chain
func (r *AssetRegistry) UpdateAssetFixedFees(ctx context.Context, caller crosschain.Address, id common.Hash, chainID crosschain.ChainID, fixedFee *uint256.Int) error {
	return r.gate.Execute(ctx, "update_asset_fixed_fee", func(ctx context.Context) error {
		if err := r.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		if _, err := r.GetAsset(ctx, id); err != nil {
			return err
		}
		return r.assetRepo.UpsertChainFee(ctx, &entities.AssetChainFee{DebridgeID: id, ChainID: chainID, FixedFee: orZero(fixedFee)})
	})
}

// UpdateAssetInput holds the per-asset limits
type UpdateAssetInput struct {
	MaxAmount       *uint256.Int `json:"maxAmount"`
	MinReservesBps  uint64       `json:"minReservesBps"`
	AmountThreshold *uint256.Int `json:"amountThreshold"`
}

// UpdateAsset sets transfer limit, reserve ratio and the high-amount threshold of an asset
func (r *AssetRegistry) UpdateAsset(ctx context.Context, caller crosschain.Address, id common.Hash, input UpdateAssetInput) (*entities.Asset, error) {
	var asset *entities.Asset
	err := r.gate.Execute(ctx, "update_asset", func(ctx context.Context) error {
		if err := r.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		if input.MinReservesBps > entities.BpsDenominator {
			return domainerrors.ErrInvalidParams.Wrapf("minReservesBps %d", input.MinReservesBps)
		}
		var err error
		if asset, err = r.GetAsset(ctx, id); err != nil {
			return err
		}
		asset.MaxAmount = orZero(input.MaxAmount)
		asset.MinReservesBps = input.MinReservesBps
		asset.AmountThreshold = orZero(input.AmountThreshold)
		return r.assetRepo.Update(ctx, asset)
	})
	return asset, err
}
