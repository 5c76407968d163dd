package blockchain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/require"

	"bridge-gate.backend/pkg/crosschain"
)

func stubClient(chainID int64) *EVMClient {
	return NewEVMClientWithCall(big.NewInt(chainID), func(context.Context, ethereum.CallMsg) ([]byte, error) {
		return []byte{0x01}, nil
	})
}

func TestClientFactory_UnknownChain(t *testing.T) {
	f := NewClientFactory(nil)
	_, err := f.GetClient(56)
	require.ErrorContains(t, err, "no RPC endpoint configured for chain 56")
}

func TestClientFactory_InvalidURL(t *testing.T) {
	f := NewClientFactory(map[crosschain.ChainID]string{56: "://bad-url"})
	_, err := f.GetClient(56)
	require.ErrorContains(t, err, "failed to create EVM client")
}

func TestClientFactory_RegisterClient(t *testing.T) {
	f := NewClientFactory(nil)
	injected := stubClient(56)

	f.RegisterClient(56, injected)
	got, err := f.GetClient(56)
	require.NoError(t, err)
	require.Same(t, injected, got)
}

func TestClientFactory_DoubleCheckBranchViaHook(t *testing.T) {
	f := NewClientFactory(map[crosschain.ChainID]string{56: "mock://race"})
	injected := stubClient(56)

	origHook := beforeGetClientWriteLockHook
	t.Cleanup(func() { beforeGetClientWriteLockHook = origHook })
	beforeGetClientWriteLockHook = func(id crosschain.ChainID) {
		if id == 56 {
			f.RegisterClient(id, injected)
		}
	}

	got, err := f.GetClient(56)
	require.NoError(t, err)
	require.Same(t, injected, got)
}

func stubDial(t *testing.T, chainID int64) {
	t.Helper()
	origDial := dialEVMClient
	origChainID := getClientChainID
	t.Cleanup(func() {
		dialEVMClient = origDial
		getClientChainID = origChainID
	})

	dialEVMClient = func(string) (*ethclient.Client, error) {
		return &ethclient.Client{}, nil
	}
	getClientChainID = func(*ethclient.Client, context.Context) (*big.Int, error) {
		return big.NewInt(chainID), nil
	}
}

func TestClientFactory_DialsAndCaches(t *testing.T) {
	stubDial(t, 56)
	f := NewClientFactory(map[crosschain.ChainID]string{56: "mock://bsc"})

	first, err := f.GetClient(56)
	require.NoError(t, err)
	require.Equal(t, int64(56), first.ChainID().Int64())

	second, err := f.GetClient(56)
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestClientFactory_RejectsMismatchedChain(t *testing.T) {
	srv := newEVMRPCServer(t, nil)
	f := NewClientFactory(map[crosschain.ChainID]string{137: srv.URL})

	_, err := f.GetClient(137)
	require.ErrorContains(t, err, "reports chain 56")
}
