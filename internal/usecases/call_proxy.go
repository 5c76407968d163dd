package usecases

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/pkg/crosschain"
)

// ExternalCall is the call a claim forwards to the call proxy together with the funds
type ExternalCall struct {
	SubmissionID    common.Hash
	ChainIDFrom     crosschain.ChainID
	Token           crosschain.Address
	Receiver        crosschain.Address
	Amount          *uint256.Int
	Data            []byte
	FallbackAddress crosschain.Address
	NativeSender    crosschain.Address
	Flags           uint64
}

// CallProxy executes external calls. The funds are already held by the proxy
// when Call runs; on error they stay there for the caller to route to the fallback.
type CallProxy interface {
	Call(ctx context.Context, call ExternalCall) error
}

// CallSimulator dry-runs a call against the target contract
type CallSimulator interface {
	SimulateCall(ctx context.Context, from, to crosschain.Address, data []byte) error
}

// LedgerCallProxy delivers proxied funds to the call target once the target accepts the call
type LedgerCallProxy struct {
	ledger    *tokenLedger
	holder    crosschain.Address
	simulator CallSimulator
}

// NewLedgerCallProxy creates a call proxy holding funds at holder. simulator may be nil.
func NewLedgerCallProxy(ledgerRepo repositories.LedgerRepository, holder crosschain.Address, simulator CallSimulator) *LedgerCallProxy {
	return &LedgerCallProxy{ledger: newTokenLedger(ledgerRepo), holder: holder, simulator: simulator}
}

func (p *LedgerCallProxy) Call(ctx context.Context, call ExternalCall) error {
	if p.simulator != nil {
		from := p.holder
		if entities.HasFlag(call.Flags, entities.FlagProxyWithSender) && !call.NativeSender.IsEmpty() {
			from = call.NativeSender
		}
		if err := p.simulator.SimulateCall(ctx, from, call.Receiver, call.Data); err != nil {
			return err
		}
	}
	return p.ledger.transfer(ctx, call.Token, p.holder, call.Receiver, call.Amount)
}
