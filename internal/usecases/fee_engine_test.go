package usecases

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/pkg/crosschain"
)

func feeConfig(global uint64, globalBps uint64, chain *entities.ChainConfig) entities.ProtocolConfig {
	settings := entities.DefaultProtocolSettings()
	settings.GlobalFixedNativeFee = uint256.NewInt(global)
	settings.GlobalTransferFeeBps = globalBps
	return entities.ProtocolConfig{
		Settings:       *settings,
		Chains:         map[crosschain.ChainID]*entities.ChainConfig{chain.ChainID: chain},
		AssetFixedFees: map[entities.AssetChainKey]*uint256.Int{},
	}
}

func TestComputeFees_Fallbacks(t *testing.T) {
	engine := NewFeeEngine()
	asset := entities.NewAsset(crosschain.BridgeAssetID(localChain, tokenUSD), localChain, tokenUSD, tokenUSD, true)

	t.Run("global values", func(t *testing.T) {
		cfg := feeConfig(7, 30, &entities.ChainConfig{ChainID: remoteChain, IsSupportedTo: true})
		q, err := engine.ComputeFees(cfg, asset, remoteChain, u256(10000), false)
		require.NoError(t, err)
		assert.Equal(t, uint64(30), q.ProportionalFee.Uint64())
		assert.Equal(t, uint64(7), q.NativeFeeOwed.Uint64())
		assert.Equal(t, uint64(9970), q.AmountAfterFees.Uint64())
		assert.Equal(t, cfg.Version(), q.ConfigVersion)
	})

	t.Run("chain overrides global", func(t *testing.T) {
		cfg := feeConfig(7, 30, &entities.ChainConfig{ChainID: remoteChain, IsSupportedTo: true, FixedNativeFee: u256(11), TransferFeeBps: 100})
		q, err := engine.ComputeFees(cfg, asset, remoteChain, u256(10000), false)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), q.ProportionalFee.Uint64())
		assert.Equal(t, uint64(11), q.NativeFeeOwed.Uint64())
	})

	t.Run("asset fee overrides chain", func(t *testing.T) {
		cfg := feeConfig(7, 30, &entities.ChainConfig{ChainID: remoteChain, IsSupportedTo: true, FixedNativeFee: u256(11)})
		cfg.AssetFixedFees[entities.AssetChainKey{DebridgeID: asset.DebridgeID, ChainID: remoteChain}] = u256(3)
		q, err := engine.ComputeFees(cfg, asset, remoteChain, u256(10000), true)
		require.NoError(t, err)
		assert.True(t, q.NativeFeeOwed.IsZero())
		assert.Equal(t, uint64(33), q.AssetFee.Uint64())
		assert.Equal(t, uint64(9967), q.AmountAfterFees.Uint64())
	})
}

func TestComputeFees_Errors(t *testing.T) {
	engine := NewFeeEngine()
	asset := entities.NewAsset(crosschain.BridgeAssetID(localChain, tokenUSD), localChain, tokenUSD, tokenUSD, true)
	cfg := feeConfig(50, 0, &entities.ChainConfig{ChainID: remoteChain, IsSupportedTo: true})

	_, err := engine.ComputeFees(cfg, asset, remoteChain, u256(0), false)
	assert.ErrorIs(t, err, domainerrors.ErrZeroAmount)

	_, err = engine.ComputeFees(cfg, asset, 137, u256(100), false)
	assert.ErrorIs(t, err, domainerrors.ErrWrongTargetChain)

	cfg.Chains[remoteChain].IsSupportedTo = false
	_, err = engine.ComputeFees(cfg, asset, remoteChain, u256(100), false)
	assert.ErrorIs(t, err, domainerrors.ErrWrongTargetChain)
	cfg.Chains[remoteChain].IsSupportedTo = true

	_, err = engine.ComputeFees(cfg, asset, remoteChain, u256(50), true)
	assert.ErrorIs(t, err, domainerrors.ErrAmountNotCoverFees)

	huge := new(uint256.Int).SetAllOne()
	cfg = feeConfig(0, 10, &entities.ChainConfig{ChainID: remoteChain, IsSupportedTo: true})
	_, err = engine.ComputeFees(cfg, asset, remoteChain, huge, false)
	assert.ErrorIs(t, err, domainerrors.ErrArithmeticOverflow)
}

func TestComputeFees_Conservation(t *testing.T) {
	engine := NewFeeEngine()
	asset := entities.NewAsset(crosschain.BridgeAssetID(localChain, tokenUSD), localChain, tokenUSD, tokenUSD, true)
	cfg := feeConfig(13, 37, &entities.ChainConfig{ChainID: remoteChain, IsSupportedTo: true})

	for _, amount := range []uint64{14, 100, 9999, 10000, 123456789, 1 << 60} {
		for _, useAssetFee := range []bool{false, true} {
			q, err := engine.ComputeFees(cfg, asset, remoteChain, u256(amount), useAssetFee)
			require.NoError(t, err)
			sum := new(uint256.Int).Add(q.AmountAfterFees, q.AssetFee)
			assert.Equal(t, amount, sum.Uint64(), "amount %d useAssetFee %v", amount, useAssetFee)
		}
	}
}

func TestConfigLoader_Snapshot(t *testing.T) {
	f := newGateFixture(t)
	f.supportChain(remoteChain, 5, 20)
	asset := deployRemote(t, f)
	require.NoError(t, f.registry.UpdateAssetFixedFees(f.ctx, adminAddr, asset.DebridgeID, remoteChain, u256(9)))

	loader := NewConfigLoader(f.settingsRepo, f.chainRepo, f.assetRepo)
	cfg, err := loader.Load(f.ctx, asset.DebridgeID, remoteChain)
	require.NoError(t, err)
	require.Contains(t, cfg.Chains, remoteChain)
	assert.Equal(t, uint64(20), cfg.Chains[remoteChain].TransferFeeBps)
	assert.Equal(t, uint64(9), cfg.AssetFixedFees[entities.AssetChainKey{DebridgeID: asset.DebridgeID, ChainID: remoteChain}].Uint64())

	_, err = f.admin.SetGlobalFees(f.ctx, adminAddr, u256(1), 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cfg.Settings.GlobalTransferFeeBps, "a loaded snapshot does not change")

	next, err := loader.Load(f.ctx, asset.DebridgeID, remoteChain)
	require.NoError(t, err)
	assert.Greater(t, next.Version(), cfg.Version())
}
