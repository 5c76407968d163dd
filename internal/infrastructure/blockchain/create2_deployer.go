package blockchain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/pkg/crosschain"
)

// Create2Deployer derives wrapped asset addresses the way the token deployer
// contract does: CREATE2 from the deployer, salted with the debridge id.
type Create2Deployer struct {
	deployer     common.Address
	initCodeHash common.Hash
}

// NewCreate2Deployer creates a deployer for the given factory address and proxy creation code
func NewCreate2Deployer(deployer crosschain.Address, proxyInitCode []byte) (*Create2Deployer, error) {
	addr, err := deployer.EVM()
	if err != nil {
		return nil, fmt.Errorf("deployer address: %w", err)
	}
	return &Create2Deployer{
		deployer:     addr,
		initCodeHash: crypto.Keccak256Hash(proxyInitCode),
	}, nil
}

// Deploy returns the address of the wrapped token of debridgeID. The address only
// depends on the id, so a redeploy on another node yields the same token.
func (d *Create2Deployer) Deploy(ctx context.Context, debridgeID common.Hash, meta entities.TokenMetadata) (crosschain.Address, error) {
	if meta.Symbol == "" {
		return nil, fmt.Errorf("wrapped asset %s: symbol is required", debridgeID.Hex())
	}
	return crosschain.FromEVM(crypto.CreateAddress2(d.deployer, debridgeID, d.initCodeHash.Bytes())), nil
}
