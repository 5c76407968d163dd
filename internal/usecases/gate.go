package usecases

import (
	"context"
	"errors"
	"sync"

	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/internal/metrics"
	"bridge-gate.backend/pkg/crosschain"
)

// GateConfig identifies the chain this node represents and the
// well-known holders it moves funds between.
type GateConfig struct {
	ChainID            crosschain.ChainID
	ChainType          crosschain.ChainType
	GateAddress        crosschain.Address
	CallProxyAddress   crosschain.Address
	TreasuryAddress    crosschain.Address
	WrappedNativeToken crosschain.Address
	DeployerAddress    crosschain.Address
}

// NativeToken is the sentinel token address of the chain's native currency
func (c GateConfig) NativeToken() crosschain.Address {
	n := crosschain.AddressLength(c.ChainType)
	if n == 0 {
		n = crosschain.EVMAddressLength
	}
	return make(crosschain.Address, n)
}

type gateCtxKey struct{}

// Gate serializes protocol operations the way a chain executes transactions:
// one at a time, each fully committed or fully rolled back.
type Gate struct {
	mu  sync.Mutex
	uow repositories.UnitOfWork
	cfg GateConfig
}

// NewGate creates the execution gate for the local chain
func NewGate(uow repositories.UnitOfWork, cfg GateConfig) *Gate {
	if cfg.ChainType == "" {
		cfg.ChainType = crosschain.ChainTypeEVM
	}
	return &Gate{uow: uow, cfg: cfg}
}

// Config returns the local chain configuration
func (g *Gate) Config() GateConfig {
	return g.cfg
}

// Execute runs fn atomically. Calls nested inside a running operation join it.
func (g *Gate) Execute(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	if ctx.Value(gateCtxKey{}) != nil {
		return fn(ctx)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	err := g.uow.Do(context.WithValue(ctx, gateCtxKey{}, operation), fn)
	if err != nil {
		var perr *domainerrors.ProtocolError
		if errors.As(err, &perr) {
			metrics.ProtocolErrors.WithLabelValues(operation, string(perr.Category), perr.Code).Inc()
		}
	}
	return err
}

// validateAddress maps address format problems onto the protocol error
func validateAddress(chainType crosschain.ChainType, addr crosschain.Address) error {
	if err := crosschain.ValidateAddress(chainType, addr); err != nil {
		return domainerrors.ErrInvalidAddressLength.Wrapf("%v", err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domainerrors.ErrNotFound)
}
