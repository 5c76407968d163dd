package blockchain

import (
	"fmt"
	"sync"

	"bridge-gate.backend/pkg/crosschain"
)

var beforeGetClientWriteLockHook = func(chainID crosschain.ChainID) {}

// ClientFactory dials one EVM client per origin chain, lazily
type ClientFactory struct {
	rpcURLs map[crosschain.ChainID]string
	clients map[crosschain.ChainID]*EVMClient
	mu      sync.RWMutex
}

// NewClientFactory creates a new client factory over the configured RPC endpoints
func NewClientFactory(rpcURLs map[crosschain.ChainID]string) *ClientFactory {
	urls := make(map[crosschain.ChainID]string, len(rpcURLs))
	for id, url := range rpcURLs {
		urls[id] = url
	}
	return &ClientFactory{
		rpcURLs: urls,
		clients: make(map[crosschain.ChainID]*EVMClient),
	}
}

// GetClient returns the EVM client of chainID.
// If a client already exists for the chain, it returns the cached client
func (f *ClientFactory) GetClient(chainID crosschain.ChainID) (*EVMClient, error) {
	f.mu.RLock()
	client, ok := f.clients[chainID]
	f.mu.RUnlock()
	if ok {
		return client, nil
	}

	beforeGetClientWriteLockHook(chainID)

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double check
	if client, ok := f.clients[chainID]; ok {
		return client, nil
	}

	url, ok := f.rpcURLs[chainID]
	if !ok || url == "" {
		return nil, fmt.Errorf("no RPC endpoint configured for chain %d", chainID)
	}
	newClient, err := NewEVMClient(url)
	if err != nil {
		return nil, fmt.Errorf("failed to create EVM client: %w", err)
	}
	if newClient.ChainID() != nil && newClient.ChainID().Uint64() != uint64(chainID) {
		newClient.Close()
		return nil, fmt.Errorf("RPC endpoint of chain %d reports chain %s", chainID, newClient.ChainID())
	}

	f.clients[chainID] = newClient
	return newClient, nil
}

// RegisterClient injects/overrides the cached client of a chain.
// Useful for deterministic unit tests.
func (f *ClientFactory) RegisterClient(chainID crosschain.ChainID, client *EVMClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clients[chainID] = client
}

// Close closes every dialed client
func (f *ClientFactory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, c := range f.clients {
		c.Close()
		delete(f.clients, id)
	}
}
