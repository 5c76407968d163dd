package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/utils"
)

func TestRegisterOrGetAsset(t *testing.T) {
	f := newGateFixture(t)

	native, err := f.registry.RegisterOrGetAsset(f.ctx, localChain, tokenUSD)
	require.NoError(t, err)
	assert.True(t, native.IsNativeChain)
	assert.True(t, native.LocalTokenAddress.Equal(tokenUSD))

	again, err := f.registry.RegisterOrGetAsset(f.ctx, localChain, tokenUSD)
	require.NoError(t, err)
	assert.Equal(t, native.DebridgeID, again.DebridgeID)

	wrapped, err := f.registry.RegisterOrGetAsset(f.ctx, remoteChain, remoteToken)
	require.NoError(t, err)
	assert.False(t, wrapped.IsNativeChain)
	assert.Equal(t, "RMT", wrapped.Symbol)
	assert.Equal(t, 1, f.deployer.calls)

	_, err = f.registry.RegisterOrGetAsset(f.ctx, remoteChain, remoteToken)
	require.NoError(t, err)
	assert.Equal(t, 1, f.deployer.calls, "a wrapped asset is deployed once")

	isNative, err := f.registry.IsNativeChain(f.ctx, wrapped.DebridgeID)
	require.NoError(t, err)
	assert.False(t, isNative)

	_, err = f.registry.RegisterOrGetAsset(f.ctx, localChain, crosschain.Address{1})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidAddressLength)

	assets, total, err := f.registry.ListAssets(f.ctx, utils.GetPaginationParams(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, assets, 2)
}

func TestDeployNewAsset(t *testing.T) {
	f := newGateFixture(t)
	meta := entities.TokenMetadata{Name: "Remote", Symbol: "RMT", Decimals: 6}

	_, err := f.registry.DeployNewAsset(f.ctx, aliceAddr, remoteChain, remoteToken, meta)
	assert.ErrorIs(t, err, domainerrors.ErrAdminBadRole)

	_, err = f.registry.DeployNewAsset(f.ctx, adminAddr, localChain, tokenUSD, meta)
	assert.ErrorIs(t, err, domainerrors.ErrNativeAsset)

	asset, err := f.registry.DeployNewAsset(f.ctx, adminAddr, remoteChain, remoteToken, meta)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), asset.Decimals)

	_, err = f.registry.DeployNewAsset(f.ctx, adminAddr, remoteChain, remoteToken, meta)
	assert.ErrorIs(t, err, domainerrors.ErrAssetAlreadyExists)

	_, err = f.registry.GetAsset(f.ctx, crosschain.BridgeAssetID(remoteChain, bobAddr))
	assert.ErrorIs(t, err, domainerrors.ErrAssetNotFound)
}

func TestChainSupportAdmin(t *testing.T) {
	f := newGateFixture(t)

	_, err := f.registry.UpdateChainSupport(f.ctx, adminAddr, UpdateChainSupportInput{ChainID: localChain, IsSupported: true})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidParams)
	_, err = f.registry.UpdateChainSupport(f.ctx, adminAddr, UpdateChainSupportInput{ChainID: remoteChain, TransferFeeBps: 10001})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidParams)
	_, err = f.registry.UpdateChainSupport(f.ctx, adminAddr, UpdateChainSupportInput{ChainID: remoteChain, ChainType: "MOVE"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidParams)

	cfg, err := f.registry.UpdateChainSupport(f.ctx, adminAddr, UpdateChainSupportInput{
		ChainID: 7565164, IsSupported: true, ChainType: crosschain.ChainTypeSVM, FixedNativeFee: u256(5),
	})
	require.NoError(t, err)
	assert.True(t, cfg.IsSupportedTo)
	assert.False(t, cfg.IsSupportedFrom)

	require.NoError(t, f.registry.SetChainIDSupport(f.ctx, adminAddr, 7565164, true, true))
	chains, err := f.registry.ListChains(f.ctx)
	require.NoError(t, err)
	require.Len(t, chains, 1)
	assert.True(t, chains[0].IsSupportedFrom)
	assert.Equal(t, crosschain.ChainTypeSVM, chains[0].ChainType)

	// receivers on an SVM chain are 32 bytes
	f.fund(tokenUSD, aliceAddr, u256(100))
	_, err = f.transfers.Send(f.ctx, aliceAddr, SendInput{Token: tokenUSD, Amount: u256(10), ChainIDTo: 7565164, Receiver: bobAddr, AttachedNative: u256(0)})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidAddressLength)
}
