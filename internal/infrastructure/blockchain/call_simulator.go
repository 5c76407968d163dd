package blockchain

import (
	"context"
	"fmt"

	"bridge-gate.backend/pkg/crosschain"
)

// CallSimulator dry-runs external calls against the local chain with eth_call
type CallSimulator struct {
	client *EVMClient
}

// NewCallSimulator creates a call simulator on the local chain client
func NewCallSimulator(client *EVMClient) *CallSimulator {
	return &CallSimulator{client: client}
}

// SimulateCall fails when the target reverts for the given sender and calldata
func (s *CallSimulator) SimulateCall(ctx context.Context, from, to crosschain.Address, data []byte) error {
	sender, err := from.EVM()
	if err != nil {
		return fmt.Errorf("simulate call: sender: %w", err)
	}
	target, err := to.EVM()
	if err != nil {
		return fmt.Errorf("simulate call: target: %w", err)
	}
	if _, err := s.client.CallFrom(ctx, sender, target, data); err != nil {
		if reason, ok := DecodeRevert(err); ok {
			return fmt.Errorf("simulate call to %s reverted (%s): %w", target.Hex(), reason.Message, err)
		}
		return fmt.Errorf("simulate call to %s: %w", target.Hex(), err)
	}
	return nil
}
