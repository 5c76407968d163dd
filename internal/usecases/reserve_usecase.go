package usecases

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/logger"
)

// ReserveUsecase moves liquidity between the gate and yield strategies, and
// withdraws collected fees.
type ReserveUsecase struct {
	gate      *Gate
	assetRepo repositories.AssetRepository
	access    *AccessControl
	ledger    *tokenLedger
	feeProxy  FeeProxy
}

// NewReserveUsecase creates a new reserve usecase
func NewReserveUsecase(
	gate *Gate,
	assetRepo repositories.AssetRepository,
	ledgerRepo repositories.LedgerRepository,
	access *AccessControl,
	feeProxy FeeProxy,
) *ReserveUsecase {
	return &ReserveUsecase{
		gate:      gate,
		assetRepo: assetRepo,
		access:    access,
		ledger:    newTokenLedger(ledgerRepo),
		feeProxy:  feeProxy,
	}
}

// CheckReserves verifies balance - locked >= minReservesBps * balance / 10000
func CheckReserves(asset *entities.Asset, locked *uint256.Int) error {
	balance := orZero(asset.Balance)
	if locked.Gt(balance) {
		return domainerrors.ErrNotEnoughReserves.Wrapf("locked %s exceeds balance %s", locked.Dec(), balance.Dec())
	}
	minReserve, err := bpsOf(balance, asset.MinReservesBps)
	if err != nil {
		return err
	}
	if new(uint256.Int).Sub(balance, locked).Lt(minReserve) {
		return domainerrors.ErrNotEnoughReserves.Wrapf("reserve below %s", minReserve.Dec())
	}
	return nil
}

func (u *ReserveUsecase) assetByToken(ctx context.Context, token crosschain.Address) (*entities.Asset, error) {
	asset, err := u.assetRepo.GetByLocalToken(ctx, token)
	if err != nil {
		if isNotFound(err) {
			return nil, domainerrors.ErrAssetNotFound
		}
		return nil, err
	}
	return asset, nil
}

// RequestReserves hands liquid funds to a DeFi controller strategy
func (u *ReserveUsecase) RequestReserves(ctx context.Context, caller, token crosschain.Address, amount *uint256.Int) (*entities.Asset, error) {
	var asset *entities.Asset
	err := u.gate.Execute(ctx, "request_reserves", func(ctx context.Context) error {
		if err := u.access.Require(ctx, caller, entities.RoleDefiController); err != nil {
			return err
		}
		if amount == nil || amount.IsZero() {
			return domainerrors.ErrZeroAmount
		}
		var err error
		if asset, err = u.assetByToken(ctx, token); err != nil {
			return err
		}
		locked, err := checkedAdd(asset.LockedInStrategy, amount)
		if err != nil {
			return err
		}
		if err := CheckReserves(asset, locked); err != nil {
			return err
		}
		asset.LockedInStrategy = locked
		if err := u.ledger.transfer(ctx, token, u.gate.Config().GateAddress, caller, amount); err != nil {
			return err
		}
		logger.Info(ctx, "Reserves requested",
			zap.String("debridge_id", asset.DebridgeID.Hex()),
			zap.String("amount", amount.Dec()),
		)
		return u.assetRepo.Update(ctx, asset)
	})
	return asset, err
}

// ReturnReserves brings strategy funds back into the gate
func (u *ReserveUsecase) ReturnReserves(ctx context.Context, caller, token crosschain.Address, amount *uint256.Int) (*entities.Asset, error) {
	var asset *entities.Asset
	err := u.gate.Execute(ctx, "return_reserves", func(ctx context.Context) error {
		if err := u.access.Require(ctx, caller, entities.RoleDefiController); err != nil {
			return err
		}
		if amount == nil || amount.IsZero() {
			return domainerrors.ErrZeroAmount
		}
		var err error
		if asset, err = u.assetByToken(ctx, token); err != nil {
			return err
		}
		if asset.LockedInStrategy, err = checkedSub(asset.LockedInStrategy, amount); err != nil {
			return err
		}
		if err := u.ledger.transfer(ctx, token, caller, u.gate.Config().GateAddress, amount); err != nil {
			return err
		}
		return u.assetRepo.Update(ctx, asset)
	})
	return asset, err
}

// WithdrawFee sends every not yet withdrawn fee of an asset to the fee proxy
func (u *ReserveUsecase) WithdrawFee(ctx context.Context, caller crosschain.Address, debridgeID common.Hash) (*uint256.Int, error) {
	var amount *uint256.Int
	err := u.gate.Execute(ctx, "withdraw_fee", func(ctx context.Context) error {
		if err := u.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		asset, err := u.assetRepo.GetByID(ctx, debridgeID)
		if err != nil {
			if isNotFound(err) {
				return domainerrors.ErrAssetNotFound
			}
			return err
		}
		if amount, err = checkedSub(asset.CollectedFees, asset.WithdrawnFees); err != nil {
			return err
		}
		if amount.IsZero() {
			return domainerrors.ErrNothingToWithdraw
		}
		asset.WithdrawnFees = new(uint256.Int).Set(asset.CollectedFees)
		if err := u.assetRepo.Update(ctx, asset); err != nil {
			return err
		}
		return u.feeProxy.Swap(ctx, asset, amount)
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}
