package blockchain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/pkg/crosschain"
)

var tokenAddr = crosschain.MustParseAddress("0x5555555555555555555555555555555555555555")

func erc20Responder(t *testing.T, name interface{}) CallFunc {
	t.Helper()
	return func(_ context.Context, msg ethereum.CallMsg) ([]byte, error) {
		method, err := erc20ABI.MethodById(msg.Data[:4])
		require.NoError(t, err)
		switch method.Name {
		case "name":
			if raw, ok := name.([]byte); ok {
				return raw, nil
			}
			return method.Outputs.Pack(name)
		case "symbol":
			return method.Outputs.Pack("RMT")
		case "decimals":
			return method.Outputs.Pack(uint8(6))
		}
		return nil, errors.New("unexpected method")
	}
}

func TestERC20MetadataReader_ReadMetadata(t *testing.T) {
	factory := NewClientFactory(nil)
	factory.RegisterClient(56, NewEVMClientWithCall(big.NewInt(56), erc20Responder(t, "Remote Token")))
	reader := NewERC20MetadataReader(factory)

	meta, err := reader.ReadMetadata(context.Background(), 56, tokenAddr)
	require.NoError(t, err)
	require.Equal(t, &entities.TokenMetadata{Name: "Remote Token", Symbol: "RMT", Decimals: 6}, meta)
}

func TestERC20MetadataReader_Bytes32Name(t *testing.T) {
	word := common.RightPadBytes([]byte("Maker"), 32)
	factory := NewClientFactory(nil)
	factory.RegisterClient(56, NewEVMClientWithCall(big.NewInt(56), erc20Responder(t, word)))

	meta, err := NewERC20MetadataReader(factory).ReadMetadata(context.Background(), 56, tokenAddr)
	require.NoError(t, err)
	require.Equal(t, "Maker", meta.Name)
}

func TestERC20MetadataReader_Errors(t *testing.T) {
	factory := NewClientFactory(nil)
	reader := NewERC20MetadataReader(factory)

	_, err := reader.ReadMetadata(context.Background(), 56, crosschain.Address(make([]byte, 32)))
	require.ErrorIs(t, err, crosschain.ErrInvalidAddressLength)

	_, err = reader.ReadMetadata(context.Background(), 56, tokenAddr)
	require.ErrorContains(t, err, "no RPC endpoint")

	factory.RegisterClient(56, NewEVMClientWithCall(big.NewInt(56), func(context.Context, ethereum.CallMsg) ([]byte, error) {
		return nil, errors.New("execution reverted")
	}))
	_, err = reader.ReadMetadata(context.Background(), 56, tokenAddr)
	require.ErrorContains(t, err, "call name")
}

func TestCallSimulator(t *testing.T) {
	var seen ethereum.CallMsg
	client := NewEVMClientWithCall(big.NewInt(1), func(_ context.Context, msg ethereum.CallMsg) ([]byte, error) {
		seen = msg
		if len(msg.Data) > 0 && msg.Data[0] == 0xff {
			return nil, errors.New("execution reverted")
		}
		return nil, nil
	})
	sim := NewCallSimulator(client)
	from := crosschain.MustParseAddress("0x1111111111111111111111111111111111111111")

	require.NoError(t, sim.SimulateCall(context.Background(), from, tokenAddr, []byte{0x01}))
	require.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), seen.From)
	require.Equal(t, common.HexToAddress("0x5555555555555555555555555555555555555555"), *seen.To)

	require.ErrorContains(t, sim.SimulateCall(context.Background(), from, tokenAddr, []byte{0xff}), "execution reverted")
	require.Error(t, sim.SimulateCall(context.Background(), crosschain.Address{1}, tokenAddr, nil))
}

func TestCreate2Deployer_Deploy(t *testing.T) {
	factoryAddr := crosschain.MustParseAddress("0x00000000000000000000000000000000000000de")
	initCode := []byte{0x60, 0x80, 0x60, 0x40}
	d, err := NewCreate2Deployer(factoryAddr, initCode)
	require.NoError(t, err)

	id := crypto.Keccak256Hash([]byte("asset"))
	meta := entities.TokenMetadata{Name: "Remote", Symbol: "RMT", Decimals: 18}

	got, err := d.Deploy(context.Background(), id, meta)
	require.NoError(t, err)
	want := crypto.CreateAddress2(common.HexToAddress("0x00000000000000000000000000000000000000de"), id, crypto.Keccak256(initCode))
	require.Equal(t, crosschain.FromEVM(want), got)

	again, err := d.Deploy(context.Background(), id, meta)
	require.NoError(t, err)
	require.Equal(t, got, again)

	other, err := d.Deploy(context.Background(), crypto.Keccak256Hash([]byte("other")), meta)
	require.NoError(t, err)
	require.NotEqual(t, got, other)

	_, err = d.Deploy(context.Background(), id, entities.TokenMetadata{})
	require.Error(t, err)

	_, err = NewCreate2Deployer(crosschain.Address{1}, initCode)
	require.Error(t, err)
}
