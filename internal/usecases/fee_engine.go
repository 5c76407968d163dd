package usecases

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/pkg/crosschain"
)

// FeeQuote is the fee breakdown of one outbound transfer.
// Amount = AmountAfterFees + AssetFee, and AssetFee = ProportionalFee (+ FixedFee when paid in the asset).
type FeeQuote struct {
	ConfigVersion   uint64       `json:"configVersion"`
	ProportionalFee *uint256.Int `json:"proportionalFee"`
	FixedFee        *uint256.Int `json:"fixedFee"`
	AssetFee        *uint256.Int `json:"assetFee"`
	NativeFeeOwed   *uint256.Int `json:"nativeFeeOwed"`
	AmountAfterFees *uint256.Int `json:"amountAfterFees"`
}

// FeeEngine computes transfer fees from an explicit configuration snapshot
type FeeEngine struct{}

// NewFeeEngine creates a fee engine
func NewFeeEngine() *FeeEngine {
	return &FeeEngine{}
}

// ComputeFees is pure: the same snapshot and inputs always produce the same quote.
func (e *FeeEngine) ComputeFees(cfg entities.ProtocolConfig, asset *entities.Asset, chainIDTo crosschain.ChainID, amount *uint256.Int, useAssetFee bool) (*FeeQuote, error) {
	if amount == nil || amount.IsZero() {
		return nil, domainerrors.ErrZeroAmount
	}
	chain, ok := cfg.Chains[chainIDTo]
	if !ok || chain == nil || !chain.IsSupportedTo {
		return nil, domainerrors.ErrWrongTargetChain.Wrapf("chain %d", chainIDTo)
	}

	bps := cfg.Settings.GlobalTransferFeeBps
	if chain.TransferFeeBps != 0 {
		bps = chain.TransferFeeBps
	}
	proportional, err := bpsOf(amount, bps)
	if err != nil {
		return nil, err
	}

	fixed := orZero(cfg.Settings.GlobalFixedNativeFee)
	if chain.FixedNativeFee != nil && !chain.FixedNativeFee.IsZero() {
		fixed = chain.FixedNativeFee
	}
	if assetFee, ok := cfg.AssetFixedFees[entities.AssetChainKey{DebridgeID: asset.DebridgeID, ChainID: chainIDTo}]; ok && assetFee != nil && !assetFee.IsZero() {
		fixed = assetFee
	}

	quote := &FeeQuote{
		ConfigVersion:   cfg.Version(),
		ProportionalFee: proportional,
		FixedFee:        new(uint256.Int).Set(fixed),
		AssetFee:        new(uint256.Int).Set(proportional),
		NativeFeeOwed:   new(uint256.Int),
	}
	if useAssetFee {
		if quote.AssetFee, err = checkedAdd(proportional, fixed); err != nil {
			return nil, err
		}
	} else {
		quote.NativeFeeOwed.Set(fixed)
	}

	if !amount.Gt(quote.AssetFee) {
		return nil, domainerrors.ErrAmountNotCoverFees.Wrapf("amount %s, fees %s", amount.Dec(), quote.AssetFee.Dec())
	}
	quote.AmountAfterFees = new(uint256.Int).Sub(amount, quote.AssetFee)
	return quote, nil
}

// ConfigLoader builds ProtocolConfig snapshots from the stores
type ConfigLoader struct {
	settingsRepo repositories.SettingsRepository
	chainRepo    repositories.ChainConfigRepository
	assetRepo    repositories.AssetRepository
}

// NewConfigLoader creates a snapshot loader
func NewConfigLoader(
	settingsRepo repositories.SettingsRepository,
	chainRepo repositories.ChainConfigRepository,
	assetRepo repositories.AssetRepository,
) *ConfigLoader {
	return &ConfigLoader{settingsRepo: settingsRepo, chainRepo: chainRepo, assetRepo: assetRepo}
}

// Load snapshots the settings, every chain, and the fixed fee of debridgeID towards chainIDTo
func (l *ConfigLoader) Load(ctx context.Context, debridgeID common.Hash, chainIDTo crosschain.ChainID) (entities.ProtocolConfig, error) {
	settings, err := l.settingsRepo.Get(ctx)
	if err != nil {
		return entities.ProtocolConfig{}, err
	}
	chains, err := l.chainRepo.GetAll(ctx)
	if err != nil {
		return entities.ProtocolConfig{}, err
	}
	cfg := entities.ProtocolConfig{
		Settings:       *settings,
		Chains:         make(map[crosschain.ChainID]*entities.ChainConfig, len(chains)),
		AssetFixedFees: make(map[entities.AssetChainKey]*uint256.Int),
	}
	for _, c := range chains {
		cfg.Chains[c.ChainID] = c
	}

	fee, err := l.assetRepo.GetChainFee(ctx, debridgeID, chainIDTo)
	switch {
	case err == nil:
		cfg.AssetFixedFees[entities.AssetChainKey{DebridgeID: debridgeID, ChainID: chainIDTo}] = fee.FixedFee
	case !isNotFound(err):
		return entities.ProtocolConfig{}, err
	}
	return cfg, nil
}
