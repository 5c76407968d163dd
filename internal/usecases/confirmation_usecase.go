package usecases

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/internal/metrics"
	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/logger"
)

// ConfirmationUsecase accumulates oracle confirmations and decides whether a
// submission has enough of them for its amount.
type ConfirmationUsecase struct {
	gate         *Gate
	confirmRepo  repositories.ConfirmationRepository
	settingsRepo repositories.SettingsRepository
	access       *AccessControl
}

// NewConfirmationUsecase creates a new confirmation usecase
func NewConfirmationUsecase(
	gate *Gate,
	confirmRepo repositories.ConfirmationRepository,
	settingsRepo repositories.SettingsRepository,
	access *AccessControl,
) *ConfirmationUsecase {
	return &ConfirmationUsecase{
		gate:         gate,
		confirmRepo:  confirmRepo,
		settingsRepo: settingsRepo,
		access:       access,
	}
}

// RecordConfirmation stores one oracle's attestation for the current aggregator.
// Repeating it is a no-op.
func (u *ConfirmationUsecase) RecordConfirmation(ctx context.Context, oracle common.Address, submissionID common.Hash) (*entities.ConfirmationTally, error) {
	var tally *entities.ConfirmationTally
	err := u.gate.Execute(ctx, "record_confirmation", func(ctx context.Context) error {
		o, err := u.confirmRepo.GetOracle(ctx, oracle)
		if err != nil {
			if isNotFound(err) {
				return domainerrors.ErrOracleBadRole
			}
			return err
		}
		if !o.IsValid {
			return domainerrors.ErrOracleBadRole
		}

		settings, err := u.settingsRepo.Get(ctx)
		if err != nil {
			return err
		}
		inserted, err := u.confirmRepo.Add(ctx, &entities.Confirmation{
			AggregatorVersion: settings.AggregatorVersion,
			SubmissionID:      submissionID,
			Oracle:            oracle,
		})
		if err != nil {
			return err
		}
		if inserted {
			metrics.ConfirmationsRecorded.Inc()
			logger.Debug(ctx, "Confirmation recorded",
				zap.String("submission_id", submissionID.Hex()),
				zap.String("oracle", oracle.Hex()),
			)
		}

		tally, err = u.tally(ctx, settings.AggregatorVersion, submissionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tally, nil
}

// Tally counts the distinct confirmations of submissionID under an aggregator version
func (u *ConfirmationUsecase) Tally(ctx context.Context, version uint64, submissionID common.Hash) (*entities.ConfirmationTally, error) {
	if version == 0 {
		settings, err := u.settingsRepo.Get(ctx)
		if err != nil {
			return nil, err
		}
		version = settings.AggregatorVersion
	}
	return u.tally(ctx, version, submissionID)
}

func (u *ConfirmationUsecase) tally(ctx context.Context, version uint64, submissionID common.Hash) (*entities.ConfirmationTally, error) {
	confirmers, err := u.confirmRepo.ListConfirmers(ctx, version, submissionID)
	if err != nil {
		return nil, err
	}
	return u.countSigners(ctx, confirmers)
}

// countSigners tallies distinct signers that are currently valid oracles. Stored
// confirmations and signature sets are judged against the same oracle list.
func (u *ConfirmationUsecase) countSigners(ctx context.Context, signers []common.Address) (*entities.ConfirmationTally, error) {
	oracles, err := u.confirmRepo.ListOracles(ctx)
	if err != nil {
		return nil, err
	}
	byAddr := make(map[common.Address]*entities.Oracle, len(oracles))
	for _, o := range oracles {
		byAddr[o.Address] = o
	}

	seen := make(map[common.Address]struct{}, len(signers))
	tally := &entities.ConfirmationTally{}
	for _, s := range signers {
		if _, dup := seen[s]; dup {
			continue
		}
		o, known := byAddr[s]
		if !known || !o.IsValid {
			continue
		}
		seen[s] = struct{}{}
		tally.Count++
		if o.Required {
			tally.RequiredConfirmed++
		}
	}
	return tally, nil
}

// EvaluateConfirmations applies the amount-tiered policy. A zero threshold disables the high tier.
func EvaluateConfirmations(params entities.ConfirmationParams, tally entities.ConfirmationTally, amount, amountThreshold *uint256.Int) error {
	highTier := amountThreshold != nil && !amountThreshold.IsZero() && amount != nil && !amount.Lt(amountThreshold)
	if highTier {
		if tally.Count < params.ConfirmationThreshold {
			return domainerrors.ErrAmountNotConfirmed.Wrapf("%d of %d confirmations", tally.Count, params.ConfirmationThreshold)
		}
		return nil
	}
	if tally.Count < params.MinConfirmations || tally.RequiredConfirmed < params.RequiredOraclesCount {
		return domainerrors.ErrNotConfirmed.Wrapf("%d of %d confirmations, %d of %d required oracles",
			tally.Count, params.MinConfirmations, tally.RequiredConfirmed, params.RequiredOraclesCount)
	}
	return nil
}

func isUnconfirmed(err error) bool {
	return errors.Is(err, domainerrors.ErrNotConfirmed) || errors.Is(err, domainerrors.ErrAmountNotConfirmed)
}

// IsConfirmed evaluates stored confirmations under an aggregator version (0 = current)
func (u *ConfirmationUsecase) IsConfirmed(ctx context.Context, version uint64, submissionID common.Hash, amount, amountThreshold *uint256.Int) (bool, error) {
	settings, err := u.settingsRepo.Get(ctx)
	if err != nil {
		return false, err
	}
	if version == 0 {
		version = settings.AggregatorVersion
	}
	tally, err := u.tally(ctx, version, submissionID)
	if err != nil {
		return false, err
	}
	if err := EvaluateConfirmations(settings.ConfirmationParams(), *tally, amount, amountThreshold); err != nil {
		if isUnconfirmed(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// VerifySignatures checks a concatenated signature set against the oracle list.
// Non-oracles are ignored and repeated signers count once.
func (u *ConfirmationUsecase) VerifySignatures(ctx context.Context, submissionID common.Hash, signatures []byte, amount, amountThreshold *uint256.Int) (uint64, bool, error) {
	tally, err := u.signatureTally(ctx, submissionID, signatures)
	if err != nil {
		return 0, false, err
	}
	settings, err := u.settingsRepo.Get(ctx)
	if err != nil {
		return 0, false, err
	}
	if err := EvaluateConfirmations(settings.ConfirmationParams(), *tally, amount, amountThreshold); err != nil {
		if isUnconfirmed(err) {
			return tally.Count, false, nil
		}
		return 0, false, err
	}
	return tally.Count, true, nil
}

func (u *ConfirmationUsecase) signatureTally(ctx context.Context, submissionID common.Hash, signatures []byte) (*entities.ConfirmationTally, error) {
	sigs, err := crosschain.SplitSignatures(signatures)
	if err != nil {
		return nil, domainerrors.ErrInvalidSignatures.Wrapf("%v", err)
	}
	signers := make([]common.Address, 0, len(sigs))
	for _, sig := range sigs {
		signer, err := crosschain.RecoverSigner(submissionID, sig)
		if err != nil {
			return nil, domainerrors.ErrInvalidSignatures.Wrapf("%v", err)
		}
		signers = append(signers, signer)
	}
	return u.countSigners(ctx, signers)
}

// Confirm resolves the confirmation source of a claim and fails unless it confirms amount
func (u *ConfirmationUsecase) Confirm(ctx context.Context, source entities.ConfirmationSource, submissionID common.Hash, amount, amountThreshold *uint256.Int) error {
	settings, err := u.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}

	var tally *entities.ConfirmationTally
	switch src := source.(type) {
	case nil:
		tally, err = u.tally(ctx, settings.AggregatorVersion, submissionID)
	case entities.AggregatorSource:
		version, verr := u.resolveAggregator(ctx, settings, src.Version)
		if verr != nil {
			return verr
		}
		tally, err = u.tally(ctx, version, submissionID)
	case entities.SignatureSource:
		tally, err = u.signatureTally(ctx, submissionID, src.Signatures)
	default:
		return domainerrors.ErrInvalidAggregator
	}
	if err != nil {
		return err
	}
	return EvaluateConfirmations(settings.ConfirmationParams(), *tally, amount, amountThreshold)
}

func (u *ConfirmationUsecase) resolveAggregator(ctx context.Context, settings *entities.ProtocolSettings, version uint64) (uint64, error) {
	if version == 0 || version == settings.AggregatorVersion {
		return settings.AggregatorVersion, nil
	}
	if version > settings.AggregatorVersion {
		return 0, domainerrors.ErrInvalidAggregator.Wrapf("version %d is not active", version)
	}
	agg, err := u.confirmRepo.GetAggregator(ctx, version)
	if err != nil {
		if isNotFound(err) {
			return 0, domainerrors.ErrInvalidAggregator.Wrapf("version %d is unknown", version)
		}
		return 0, err
	}
	if !agg.IsValid {
		return 0, domainerrors.ErrInvalidAggregator.Wrapf("version %d is disabled", version)
	}
	return version, nil
}

// GetParams returns the active confirmation parameters
func (u *ConfirmationUsecase) GetParams(ctx context.Context) (*entities.ConfirmationParams, error) {
	settings, err := u.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	params := settings.ConfirmationParams()
	return &params, nil
}

// SetConfirmationParams replaces the thresholds. The excess threshold may never be below the minimum.
func (u *ConfirmationUsecase) SetConfirmationParams(ctx context.Context, caller crosschain.Address, params entities.ConfirmationParams) error {
	return u.gate.Execute(ctx, "set_confirmation_params", func(ctx context.Context) error {
		if err := u.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		if params.MinConfirmations == 0 {
			return domainerrors.ErrInvalidParams.Wrapf("minConfirmations must be positive")
		}
		if params.ConfirmationThreshold < params.MinConfirmations {
			return domainerrors.ErrInvalidParams.Wrapf("confirmationThreshold %d below minConfirmations %d",
				params.ConfirmationThreshold, params.MinConfirmations)
		}
		settings, err := u.settingsRepo.Get(ctx)
		if err != nil {
			return err
		}
		settings.MinConfirmations = params.MinConfirmations
		settings.ConfirmationThreshold = params.ConfirmationThreshold
		settings.RequiredOraclesCount = params.RequiredOraclesCount
		return u.settingsRepo.Save(ctx, settings)
	})
}

// AddOracle registers a new valid oracle
func (u *ConfirmationUsecase) AddOracle(ctx context.Context, caller crosschain.Address, addr common.Address, required bool) error {
	return u.gate.Execute(ctx, "add_oracle", func(ctx context.Context) error {
		if err := u.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		if _, err := u.confirmRepo.GetOracle(ctx, addr); err == nil {
			return domainerrors.ErrInvalidParams.Wrapf("oracle %s already registered", addr.Hex())
		} else if !isNotFound(err) {
			return err
		}
		return u.confirmRepo.UpsertOracle(ctx, &entities.Oracle{Address: addr, IsValid: true, Required: required})
	})
}

// UpdateOracle changes the valid and required flags of an existing oracle
func (u *ConfirmationUsecase) UpdateOracle(ctx context.Context, caller crosschain.Address, addr common.Address, isValid, required bool) error {
	return u.gate.Execute(ctx, "update_oracle", func(ctx context.Context) error {
		if err := u.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		o, err := u.confirmRepo.GetOracle(ctx, addr)
		if err != nil {
			return err
		}
		o.IsValid = isValid
		o.Required = required
		return u.confirmRepo.UpsertOracle(ctx, o)
	})
}

// RemoveOracle deletes an oracle; its stored confirmations stop counting
func (u *ConfirmationUsecase) RemoveOracle(ctx context.Context, caller crosschain.Address, addr common.Address) error {
	return u.gate.Execute(ctx, "remove_oracle", func(ctx context.Context) error {
		if err := u.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		return u.confirmRepo.DeleteOracle(ctx, addr)
	})
}

// ListOracles returns every registered oracle
func (u *ConfirmationUsecase) ListOracles(ctx context.Context) ([]*entities.Oracle, error) {
	return u.confirmRepo.ListOracles(ctx)
}

// SetAggregator activates a new aggregator version; the previous one stays valid as legacy.
func (u *ConfirmationUsecase) SetAggregator(ctx context.Context, caller crosschain.Address) (uint64, error) {
	var version uint64
	err := u.gate.Execute(ctx, "set_aggregator", func(ctx context.Context) error {
		if err := u.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		settings, err := u.settingsRepo.Get(ctx)
		if err != nil {
			return err
		}
		if err := u.confirmRepo.UpsertAggregator(ctx, &entities.AggregatorVersion{Version: settings.AggregatorVersion, IsValid: true}); err != nil {
			return err
		}
		settings.AggregatorVersion++
		version = settings.AggregatorVersion
		if err := u.confirmRepo.UpsertAggregator(ctx, &entities.AggregatorVersion{Version: version, IsValid: true}); err != nil {
			return err
		}
		logger.Info(ctx, "Aggregator version activated", zap.Uint64("version", version))
		return u.settingsRepo.Save(ctx, settings)
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

// ManageOldAggregator enables or disables a legacy aggregator version
func (u *ConfirmationUsecase) ManageOldAggregator(ctx context.Context, caller crosschain.Address, version uint64, isValid bool) error {
	return u.gate.Execute(ctx, "manage_old_aggregator", func(ctx context.Context) error {
		if err := u.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		settings, err := u.settingsRepo.Get(ctx)
		if err != nil {
			return err
		}
		if version >= settings.AggregatorVersion {
			return domainerrors.ErrVersionTooHigh.Wrapf("version %d, current %d", version, settings.AggregatorVersion)
		}
		if version == 0 {
			return domainerrors.ErrInvalidParams.Wrapf("version must be positive")
		}
		return u.confirmRepo.UpsertAggregator(ctx, &entities.AggregatorVersion{Version: version, IsValid: isValid})
	})
}
