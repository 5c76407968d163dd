package usecases

import (
	"context"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/metrics"
	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/logger"
)

// FlashLoanReceiver is called with the borrowed funds already credited to Borrower.
// It must return Amount + Fee to the gate through loan.Repay before returning.
type FlashLoanReceiver interface {
	OnFlashLoan(ctx context.Context, loan *FlashLoan) error
}

// FlashLoan is the handle a receiver gets for one loan
type FlashLoan struct {
	Token    crosschain.Address
	Borrower crosschain.Address
	Amount   *uint256.Int
	Fee      *uint256.Int
	Data     []byte

	ledger *tokenLedger
	gate   crosschain.Address
}

// Repay moves amount of the loaned token from the borrower back to the gate
func (l *FlashLoan) Repay(ctx context.Context, amount *uint256.Int) error {
	return l.ledger.transfer(ctx, l.Token, l.Borrower, l.gate, amount)
}

// FlashLoan lends liquid funds for the duration of one receiver callback.
// Anything short of principal plus fee reverts the whole call.
func (u *TransferUsecase) FlashLoan(ctx context.Context, borrower crosschain.Address, token crosschain.Address, amount *uint256.Int, receiver FlashLoanReceiver, data []byte) (*uint256.Int, error) {
	var paid *uint256.Int
	err := u.gate.Execute(ctx, "flash_loan", func(ctx context.Context) error {
		settings, err := u.configs.settingsRepo.Get(ctx)
		if err != nil {
			return err
		}
		if amount == nil || amount.IsZero() {
			return domainerrors.ErrZeroAmount
		}
		asset, err := u.assetRepo.GetByLocalToken(ctx, token)
		if err != nil {
			if isNotFound(err) {
				return domainerrors.ErrAssetNotFound
			}
			return err
		}
		if asset.Liquid().Lt(amount) {
			return domainerrors.ErrInsufficientLiquidity.Wrapf("liquid %s, requested %s", asset.Liquid().Dec(), amount.Dec())
		}
		fee, err := bpsOf(amount, settings.FlashFeeBps)
		if err != nil {
			return err
		}

		gateAddr := u.gate.Config().GateAddress
		before, err := u.ledger.balanceOf(ctx, token, gateAddr)
		if err != nil {
			return err
		}
		if err := u.ledger.transfer(ctx, token, gateAddr, borrower, amount); err != nil {
			return err
		}

		loan := &FlashLoan{
			Token:    token,
			Borrower: borrower,
			Amount:   new(uint256.Int).Set(amount),
			Fee:      fee,
			Data:     data,
			ledger:   u.ledger,
			gate:     gateAddr,
		}
		if err := receiver.OnFlashLoan(ctx, loan); err != nil {
			return err
		}

		after, err := u.ledger.balanceOf(ctx, token, gateAddr)
		if err != nil {
			return err
		}
		required, err := checkedAdd(before, fee)
		if err != nil {
			return err
		}
		if after.Lt(required) {
			return domainerrors.ErrNotPaidFee.Wrapf("balance %s, expected at least %s", after.Dec(), required.Dec())
		}

		paid = new(uint256.Int).Sub(after, before)
		if asset.CollectedFees, err = checkedAdd(asset.CollectedFees, paid); err != nil {
			return err
		}
		if err := u.assetRepo.Update(ctx, asset); err != nil {
			return err
		}
		logger.Info(ctx, "Flash loan repaid",
			zap.String("debridge_id", asset.DebridgeID.Hex()),
			zap.String("amount", amount.Dec()),
			zap.String("fee", paid.Dec()),
		)
		return nil
	})
	outcome := "repaid"
	if err != nil {
		outcome = "reverted"
	}
	metrics.FlashLoans.WithLabelValues(outcome).Inc()
	if err != nil {
		return nil, err
	}
	return paid, nil
}
