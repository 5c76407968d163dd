package blockchain

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/pkg/crosschain"
)

const erc20MetadataABI = `[
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

var erc20ABI = mustParseABI(erc20MetadataABI)

// ERC20MetadataReader reads name, symbol and decimals of a token on its origin chain
type ERC20MetadataReader struct {
	clients *ClientFactory
}

// NewERC20MetadataReader creates a metadata reader over the origin chain clients
func NewERC20MetadataReader(clients *ClientFactory) *ERC20MetadataReader {
	return &ERC20MetadataReader{clients: clients}
}

func (r *ERC20MetadataReader) ReadMetadata(ctx context.Context, chainID crosschain.ChainID, token crosschain.Address) (*entities.TokenMetadata, error) {
	addr, err := token.EVM()
	if err != nil {
		return nil, fmt.Errorf("read metadata of %s on chain %d: %w", token, chainID, err)
	}
	client, err := r.clients.GetClient(chainID)
	if err != nil {
		return nil, err
	}

	name, err := callText(ctx, client, addr, "name")
	if err != nil {
		return nil, err
	}
	symbol, err := callText(ctx, client, addr, "symbol")
	if err != nil {
		return nil, err
	}
	decimals, err := callTypedView[uint8](ctx, client, addr, erc20ABI, "decimals")
	if err != nil {
		return nil, err
	}
	return &entities.TokenMetadata{Name: name, Symbol: symbol, Decimals: decimals}, nil
}

// callText decodes a string getter, accepting the bytes32 form some older tokens return
func callText(ctx context.Context, client *EVMClient, token common.Address, method string) (string, error) {
	data, err := erc20ABI.Pack(method)
	if err != nil {
		return "", err
	}
	out, err := client.CallView(ctx, token, data)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", method, err)
	}
	if vals, err := erc20ABI.Unpack(method, out); err == nil && len(vals) == 1 {
		if s, ok := vals[0].(string); ok {
			return s, nil
		}
	}
	if len(out) == 32 {
		return string(bytes.TrimRight(out, "\x00")), nil
	}
	return "", fmt.Errorf("failed to decode %s", method)
}

func callTypedView[T any](ctx context.Context, client *EVMClient, contract common.Address, parsedABI abi.ABI, method string, args ...interface{}) (T, error) {
	var zero T

	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return zero, err
	}
	out, err := client.CallView(ctx, contract, data)
	if err != nil {
		return zero, fmt.Errorf("call %s: %w", method, err)
	}
	vals, err := parsedABI.Unpack(method, out)
	if err != nil || len(vals) == 0 {
		return zero, fmt.Errorf("failed to decode %s", method)
	}
	value, ok := vals[0].(T)
	if !ok {
		return zero, fmt.Errorf("invalid %s return type", method)
	}
	return value, nil
}

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
