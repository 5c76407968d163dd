package usecases

import (
	"context"

	"github.com/holiman/uint256"

	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/pkg/crosschain"
)

// tokenLedger moves token balances between holders on the local chain.
// It must run inside a Gate operation.
type tokenLedger struct {
	repo repositories.LedgerRepository
}

func newTokenLedger(repo repositories.LedgerRepository) *tokenLedger {
	return &tokenLedger{repo: repo}
}

func (l *tokenLedger) balanceOf(ctx context.Context, token, holder crosschain.Address) (*uint256.Int, error) {
	return l.repo.BalanceOf(ctx, token, holder)
}

func (l *tokenLedger) transfer(ctx context.Context, token, from, to crosschain.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() || from.Equal(to) {
		return nil
	}
	fromBal, err := l.repo.BalanceOf(ctx, token, from)
	if err != nil {
		return err
	}
	if fromBal.Lt(amount) {
		return domainerrors.ErrInsufficientBalance.Wrapf("%s holds %s of %s, needs %s", from, fromBal.Dec(), token, amount.Dec())
	}
	if err := l.repo.SetBalance(ctx, token, from, new(uint256.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	return l.mint(ctx, token, to, amount)
}

func (l *tokenLedger) mint(ctx context.Context, token, to crosschain.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	bal, err := l.repo.BalanceOf(ctx, token, to)
	if err != nil {
		return err
	}
	next, err := checkedAdd(bal, amount)
	if err != nil {
		return err
	}
	return l.repo.SetBalance(ctx, token, to, next)
}

func (l *tokenLedger) burn(ctx context.Context, token, from crosschain.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	bal, err := l.repo.BalanceOf(ctx, token, from)
	if err != nil {
		return err
	}
	if bal.Lt(amount) {
		return domainerrors.ErrInsufficientBalance.Wrapf("%s holds %s of %s, burning %s", from, bal.Dec(), token, amount.Dec())
	}
	return l.repo.SetBalance(ctx, token, from, new(uint256.Int).Sub(bal, amount))
}
