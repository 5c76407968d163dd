package usecases

import (
	"context"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/logger"
)

// FeeProxy receives withdrawn protocol fees. What it does with them is opaque to the gate.
type FeeProxy interface {
	Swap(ctx context.Context, asset *entities.Asset, amount *uint256.Int) error
}

// TreasuryFeeProxy moves withdrawn fees from the gate to the treasury
type TreasuryFeeProxy struct {
	ledger   *tokenLedger
	gate     crosschain.Address
	treasury crosschain.Address
}

// NewTreasuryFeeProxy creates a fee proxy paying into treasury
func NewTreasuryFeeProxy(ledgerRepo repositories.LedgerRepository, gate, treasury crosschain.Address) *TreasuryFeeProxy {
	return &TreasuryFeeProxy{ledger: newTokenLedger(ledgerRepo), gate: gate, treasury: treasury}
}

func (p *TreasuryFeeProxy) Swap(ctx context.Context, asset *entities.Asset, amount *uint256.Int) error {
	if err := p.ledger.transfer(ctx, asset.LocalTokenAddress, p.gate, p.treasury, amount); err != nil {
		return err
	}
	logger.Info(ctx, "Fees moved to treasury",
		zap.String("debridge_id", asset.DebridgeID.Hex()),
		zap.String("amount", amount.Dec()),
	)
	return nil
}
