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

// AdminUsecase holds the role-gated protocol mutators that are not owned by
// a more specific usecase.
type AdminUsecase struct {
	gate         *Gate
	settingsRepo repositories.SettingsRepository
	subRepo      repositories.SubmissionRepository
	roleRepo     repositories.RoleRepository
	ledgerRepo   repositories.LedgerRepository
	access       *AccessControl
}

// NewAdminUsecase creates a new admin usecase
func NewAdminUsecase(
	gate *Gate,
	settingsRepo repositories.SettingsRepository,
	subRepo repositories.SubmissionRepository,
	roleRepo repositories.RoleRepository,
	ledgerRepo repositories.LedgerRepository,
	access *AccessControl,
) *AdminUsecase {
	return &AdminUsecase{
		gate:         gate,
		settingsRepo: settingsRepo,
		subRepo:      subRepo,
		roleRepo:     roleRepo,
		ledgerRepo:   ledgerRepo,
		access:       access,
	}
}

// GetSettings returns the current protocol settings
func (u *AdminUsecase) GetSettings(ctx context.Context) (*entities.ProtocolSettings, error) {
	return u.settingsRepo.Get(ctx)
}

func (u *AdminUsecase) updateSettings(ctx context.Context, operation string, caller crosschain.Address, mutate func(s *entities.ProtocolSettings) error) (*entities.ProtocolSettings, error) {
	var settings *entities.ProtocolSettings
	err := u.gate.Execute(ctx, operation, func(ctx context.Context) error {
		if err := u.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		var err error
		if settings, err = u.settingsRepo.Get(ctx); err != nil {
			return err
		}
		if err := mutate(settings); err != nil {
			return err
		}
		return u.settingsRepo.Save(ctx, settings)
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// SetPaused stops or resumes the outbound transfer path
func (u *AdminUsecase) SetPaused(ctx context.Context, caller crosschain.Address, paused bool) (*entities.ProtocolSettings, error) {
	return u.updateSettings(ctx, "set_paused", caller, func(s *entities.ProtocolSettings) error {
		s.Paused = paused
		logger.Warn(ctx, "Transfer pause changed", zap.Bool("paused", paused))
		return nil
	})
}

// SetFlashFee sets the flash loan fee in basis points
func (u *AdminUsecase) SetFlashFee(ctx context.Context, caller crosschain.Address, bps uint64) (*entities.ProtocolSettings, error) {
	return u.updateSettings(ctx, "set_flash_fee", caller, func(s *entities.ProtocolSettings) error {
		if bps > entities.BpsDenominator {
			return domainerrors.ErrInvalidParams.Wrapf("flashFeeBps %d", bps)
		}
		s.FlashFeeBps = bps
		return nil
	})
}

// SetGlobalFees sets the fallback fixed native fee and transfer fee
func (u *AdminUsecase) SetGlobalFees(ctx context.Context, caller crosschain.Address, fixedNativeFee *uint256.Int, transferFeeBps uint64) (*entities.ProtocolSettings, error) {
	return u.updateSettings(ctx, "set_global_fees", caller, func(s *entities.ProtocolSettings) error {
		if transferFeeBps > entities.BpsDenominator {
			return domainerrors.ErrInvalidParams.Wrapf("transferFeeBps %d", transferFeeBps)
		}
		s.GlobalFixedNativeFee = orZero(fixedNativeFee)
		s.GlobalTransferFeeBps = transferFeeBps
		return nil
	})
}

// BlockSubmission blocks or unblocks claims of one submission
func (u *AdminUsecase) BlockSubmission(ctx context.Context, caller crosschain.Address, id common.Hash, blocked bool) error {
	return u.gate.Execute(ctx, "block_submission", func(ctx context.Context) error {
		if err := u.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		logger.Warn(ctx, "Submission block changed",
			zap.String("submission_id", id.Hex()),
			zap.Bool("blocked", blocked),
		)
		return u.subRepo.SetBlocked(ctx, id, blocked)
	})
}

// TransferAdmin hands the admin role to newAdmin and drops it from caller
func (u *AdminUsecase) TransferAdmin(ctx context.Context, caller, newAdmin crosschain.Address) error {
	return u.gate.Execute(ctx, "transfer_admin", func(ctx context.Context) error {
		if err := u.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		if err := validateAddress(u.gate.Config().ChainType, newAdmin); err != nil {
			return err
		}
		if newAdmin.Equal(caller) {
			return nil
		}
		if err := u.roleRepo.Grant(ctx, newAdmin, entities.RoleAdmin); err != nil {
			return err
		}
		logger.Warn(ctx, "Admin role transferred",
			zap.String("from", caller.String()),
			zap.String("to", newAdmin.String()),
		)
		return u.roleRepo.Revoke(ctx, caller, entities.RoleAdmin)
	})
}

// SetDefiController grants or revokes the DeFi controller role
func (u *AdminUsecase) SetDefiController(ctx context.Context, caller, addr crosschain.Address, enabled bool) error {
	return u.gate.Execute(ctx, "set_defi_controller", func(ctx context.Context) error {
		if err := u.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		if err := validateAddress(u.gate.Config().ChainType, addr); err != nil {
			return err
		}
		if enabled {
			return u.roleRepo.Grant(ctx, addr, entities.RoleDefiController)
		}
		return u.roleRepo.Revoke(ctx, addr, entities.RoleDefiController)
	})
}

// SetTokenBalance reconciles the local ledger with the chain
func (u *AdminUsecase) SetTokenBalance(ctx context.Context, caller, token, holder crosschain.Address, amount *uint256.Int) error {
	return u.gate.Execute(ctx, "set_token_balance", func(ctx context.Context) error {
		if err := u.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		if token.IsEmpty() || holder.IsEmpty() {
			return domainerrors.ErrInvalidParams.Wrapf("token and holder are required")
		}
		logger.Info(ctx, "Ledger balance set",
			zap.String("token", token.String()),
			zap.String("holder", holder.String()),
			zap.String("amount", orZero(amount).Dec()),
		)
		return u.ledgerRepo.SetBalance(ctx, token, holder, orZero(amount))
	})
}

// Balances lists every token balance of holder
func (u *AdminUsecase) Balances(ctx context.Context, holder crosschain.Address) ([]*entities.TokenBalance, error) {
	return u.ledgerRepo.ListByHolder(ctx, holder)
}

// Roles lists the roles an address holds
func (u *AdminUsecase) Roles(ctx context.Context, addr crosschain.Address) ([]entities.Role, error) {
	return u.access.Roles(ctx, addr)
}
