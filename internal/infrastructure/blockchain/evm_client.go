package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	dialEVMClient    = ethclient.Dial
	getClientChainID = func(client *ethclient.Client, ctx context.Context) (*big.Int, error) {
		return client.ChainID(ctx)
	}
)

// CallFunc executes an eth_call. Tests inject one instead of dialing an RPC node.
type CallFunc func(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)

// EVMClient provides read-only EVM chain access
type EVMClient struct {
	client  *ethclient.Client
	chainID *big.Int
	rpcURL  string
	call    CallFunc
}

// NewEVMClient creates a new EVM client
func NewEVMClient(rpcURL string) (*EVMClient, error) {
	client, err := dialEVMClient(rpcURL)
	if err != nil {
		return nil, err
	}

	chainID, err := getClientChainID(client, context.Background())
	if err != nil {
		return nil, err
	}

	return &EVMClient{
		client:  client,
		chainID: chainID,
		rpcURL:  rpcURL,
	}, nil
}

// NewEVMClientWithCall creates an EVM client that uses an injected eth_call.
// This is intended for unit tests where RPC sockets are unavailable.
func NewEVMClientWithCall(chainID *big.Int, call CallFunc) *EVMClient {
	if chainID == nil {
		chainID = big.NewInt(1)
	}
	return &EVMClient{
		chainID: chainID,
		call:    call,
	}
}

// ChainID returns the chain ID
func (c *EVMClient) ChainID() *big.Int {
	return c.chainID
}

// GetBlockNumber gets the latest block number
func (c *EVMClient) GetBlockNumber(ctx context.Context) (uint64, error) {
	return c.client.BlockNumber(ctx)
}

// CallView executes a read-only contract call
func (c *EVMClient) CallView(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return c.callContract(ctx, ethereum.CallMsg{To: &to, Data: data})
}

// CallFrom executes a read-only call with msg.sender set to from
func (c *EVMClient) CallFrom(ctx context.Context, from, to common.Address, data []byte) ([]byte, error) {
	return c.callContract(ctx, ethereum.CallMsg{From: from, To: &to, Data: data})
}

func (c *EVMClient) callContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	if c.call != nil {
		return c.call(ctx, msg)
	}
	return c.client.CallContract(ctx, msg, nil)
}

// Close closes the client connection
func (c *EVMClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
