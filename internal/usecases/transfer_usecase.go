package usecases

import (
	"context"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/internal/metrics"
	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/logger"
	"bridge-gate.backend/pkg/utils"
)

// SignatureFetcher obtains oracle signatures for a submission from the oracle query API
type SignatureFetcher interface {
	FetchSignatures(ctx context.Context, submissionID common.Hash) ([]byte, error)
}

// Permit authorizes the gate to pull tokens on behalf of the signer until Deadline (unix seconds)
type Permit struct {
	Deadline  uint64 `json:"deadline"`
	Signature []byte `json:"signature"`
}

// SendInput describes an outbound transfer
type SendInput struct {
	Token          crosschain.Address
	Amount         *uint256.Int
	ChainIDTo      crosschain.ChainID
	Receiver       crosschain.Address
	UseAssetFee    bool
	ReferralCode   uint32
	AttachedNative *uint256.Int
	AutoParams     *crosschain.AutoParams
	Permit         *Permit
}

// SendResult is the outcome of Send and Burn
type SendResult struct {
	Submission *entities.Submission `json:"submission"`
	Fees       *FeeQuote            `json:"fees"`
}

// ClaimInput describes an inbound transfer
type ClaimInput struct {
	DebridgeID  common.Hash
	ChainIDFrom crosschain.ChainID
	Receiver    crosschain.Address
	Amount      *uint256.Int
	Nonce       uint64
	AutoParams  *crosschain.AutoParams
	Source      entities.ConfirmationSource
}

// ClaimResult is the outcome of a claim
type ClaimResult struct {
	SubmissionID       common.Hash  `json:"submissionId"`
	Minted             bool         `json:"minted"`
	AmountToReceiver   *uint256.Int `json:"amountToReceiver"`
	ExecutionFee       *uint256.Int `json:"executionFee"`
	ExternalCallFailed bool         `json:"externalCallFailed"`
	Unwrapped          bool         `json:"unwrapped"`
}

// TransferUsecase implements the submission state machine: send/burn on the
// source chain, claim/mint on the destination chain.
type TransferUsecase struct {
	gate          *Gate
	registry      *AssetRegistry
	assetRepo     repositories.AssetRepository
	subRepo       repositories.SubmissionRepository
	chainRepo     repositories.ChainConfigRepository
	messageRepo   repositories.MessageRepository
	confirmations *ConfirmationUsecase
	fees          *FeeEngine
	configs       *ConfigLoader
	ledger        *tokenLedger
	callProxy     CallProxy
	signatures    SignatureFetcher
	now           func() time.Time
}

// NewTransferUsecase creates a new transfer usecase
func NewTransferUsecase(
	gate *Gate,
	registry *AssetRegistry,
	assetRepo repositories.AssetRepository,
	subRepo repositories.SubmissionRepository,
	chainRepo repositories.ChainConfigRepository,
	messageRepo repositories.MessageRepository,
	ledgerRepo repositories.LedgerRepository,
	confirmations *ConfirmationUsecase,
	configs *ConfigLoader,
	callProxy CallProxy,
	signatures SignatureFetcher,
) *TransferUsecase {
	return &TransferUsecase{
		gate:          gate,
		registry:      registry,
		assetRepo:     assetRepo,
		subRepo:       subRepo,
		chainRepo:     chainRepo,
		messageRepo:   messageRepo,
		confirmations: confirmations,
		fees:          NewFeeEngine(),
		configs:       configs,
		ledger:        newTokenLedger(ledgerRepo),
		callProxy:     callProxy,
		signatures:    signatures,
		now:           time.Now,
	}
}

// Send locks (native asset) or burns (wrapped asset) tokens and emits a submission
func (u *TransferUsecase) Send(ctx context.Context, sender crosschain.Address, input SendInput) (*SendResult, error) {
	return u.send(ctx, "send", sender, input, false)
}

// Burn is Send restricted to wrapped assets, optionally authorized by a permit
func (u *TransferUsecase) Burn(ctx context.Context, sender crosschain.Address, input SendInput) (*SendResult, error) {
	return u.send(ctx, "burn", sender, input, true)
}

func (u *TransferUsecase) send(ctx context.Context, operation string, sender crosschain.Address, input SendInput, burnOnly bool) (*SendResult, error) {
	var result *SendResult
	err := u.gate.Execute(ctx, operation, func(ctx context.Context) error {
		local := u.gate.Config()

		settings, err := u.configs.settingsRepo.Get(ctx)
		if err != nil {
			return err
		}
		if settings.Paused {
			return domainerrors.ErrTransfersPaused
		}
		if err := validateAddress(local.ChainType, sender); err != nil {
			return err
		}
		if input.Amount == nil || input.Amount.IsZero() {
			return domainerrors.ErrZeroAmount
		}

		target, err := u.chainRepo.Get(ctx, input.ChainIDTo)
		if err != nil && !isNotFound(err) {
			return err
		}
		if target == nil || !target.IsSupportedTo || input.ChainIDTo == local.ChainID {
			return domainerrors.ErrWrongTargetChain.Wrapf("chain %d", input.ChainIDTo)
		}
		if err := validateAddress(target.AddressType(), input.Receiver); err != nil {
			return err
		}
		if input.AutoParams != nil && !input.AutoParams.FallbackAddress.IsEmpty() {
			if err := validateAddress(target.AddressType(), input.AutoParams.FallbackAddress); err != nil {
				return err
			}
		}

		asset, err := u.registry.resolveLocalToken(ctx, input.Token)
		if err != nil {
			return err
		}
		if burnOnly && asset.IsNativeChain {
			return domainerrors.ErrNativeAsset
		}
		nonce, err := u.subRepo.NextNonce(ctx, sender)
		if err != nil {
			return err
		}
		if input.Permit != nil {
			if err := u.verifyPermit(sender, input, nonce); err != nil {
				return err
			}
		}
		if asset.MaxAmount != nil && !asset.MaxAmount.IsZero() && input.Amount.Gt(asset.MaxAmount) {
			return domainerrors.ErrAmountTooHigh.Wrapf("max %s", asset.MaxAmount.Dec())
		}

		cfg, err := u.configs.Load(ctx, asset.DebridgeID, input.ChainIDTo)
		if err != nil {
			return err
		}
		quote, err := u.fees.ComputeFees(cfg, asset, input.ChainIDTo, input.Amount, input.UseAssetFee)
		if err != nil {
			return err
		}
		if orZero(input.AttachedNative).Lt(quote.NativeFeeOwed) {
			return domainerrors.ErrAmountNotCoverFees.Wrapf("native fee %s, attached %s",
				quote.NativeFeeOwed.Dec(), orZero(input.AttachedNative).Dec())
		}

		auto := normalizeAutoParams(input.AutoParams, sender)
		if auto != nil && orZero(auto.ExecutionFee).Gt(quote.AmountAfterFees) {
			return domainerrors.ErrAmountNotCoverFees.Wrapf("execution fee exceeds transferred amount")
		}

		if err := u.lock(ctx, sender, asset, input.Amount, quote); err != nil {
			return err
		}
		if err := u.collectNativeFee(ctx, sender, quote.NativeFeeOwed); err != nil {
			return err
		}

		id, err := crosschain.SubmissionID(crosschain.SubmissionParams{
			DebridgeID:  asset.DebridgeID,
			ChainIDFrom: local.ChainID,
			ChainIDTo:   input.ChainIDTo,
			Amount:      quote.AmountAfterFees,
			Receiver:    input.Receiver,
			Nonce:       nonce,
			AutoParams:  auto,
		})
		if err != nil {
			return domainerrors.ErrInvalidParams.Wrapf("%v", err)
		}

		sub := &entities.Submission{
			SubmissionID: id,
			DebridgeID:   asset.DebridgeID,
			ChainIDFrom:  local.ChainID,
			ChainIDTo:    input.ChainIDTo,
			Amount:       quote.AmountAfterFees,
			Receiver:     input.Receiver,
			Nonce:        nonce,
			Sender:       sender,
			ExecutionFee: new(uint256.Int),
			ReferralCode: input.ReferralCode,
			NativeFee:    quote.NativeFeeOwed,
			AssetFee:     quote.AssetFee,
		}
		if auto != nil {
			sub.ExecutionFee = orZero(auto.ExecutionFee)
			sub.Flags = auto.Flags
			sub.FallbackAddress = auto.FallbackAddress
			sub.Data = auto.Data
			sub.NativeSender = auto.NativeSender
		}
		if err := u.subRepo.CreateSent(ctx, sub); err != nil {
			return err
		}
		if _, err := enqueueMessage(ctx, u.messageRepo, entities.MessageKindSent, input.ChainIDTo, id.Hex(), sub); err != nil {
			return err
		}

		metrics.SubmissionsSent.WithLabelValues(strconv.FormatUint(uint64(input.ChainIDTo), 10), operation).Inc()
		logger.Info(ctx, "Submission sent",
			zap.String("submission_id", id.Hex()),
			zap.String("debridge_id", asset.DebridgeID.Hex()),
			zap.Uint64("chain_to", uint64(input.ChainIDTo)),
			zap.String("amount", quote.AmountAfterFees.Dec()),
			zap.Uint64("nonce", nonce),
		)
		result = &SendResult{Submission: sub, Fees: quote}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func normalizeAutoParams(p *crosschain.AutoParams, sender crosschain.Address) *crosschain.AutoParams {
	if p.IsEmpty() {
		return nil
	}
	out := *p
	out.ExecutionFee = orZero(p.ExecutionFee)
	out.NativeSender = sender
	return &out
}

// lock takes amount from the sender. Native assets stay in the gate's custody;
// for wrapped assets everything but the fees is burned.
func (u *TransferUsecase) lock(ctx context.Context, sender crosschain.Address, asset *entities.Asset, amount *uint256.Int, quote *FeeQuote) error {
	gateAddr := u.gate.Config().GateAddress
	if err := u.ledger.transfer(ctx, asset.LocalTokenAddress, sender, gateAddr, amount); err != nil {
		return err
	}

	var err error
	if asset.IsNativeChain {
		if asset.Balance, err = checkedAdd(asset.Balance, quote.AmountAfterFees); err != nil {
			return err
		}
	} else if err := u.ledger.burn(ctx, asset.LocalTokenAddress, gateAddr, quote.AmountAfterFees); err != nil {
		return err
	}
	if asset.CollectedFees, err = checkedAdd(asset.CollectedFees, quote.AssetFee); err != nil {
		return err
	}
	return u.assetRepo.Update(ctx, asset)
}

// collectNativeFee charges the fixed fee in native currency and books it on the native currency asset
func (u *TransferUsecase) collectNativeFee(ctx context.Context, sender crosschain.Address, fee *uint256.Int) error {
	if fee == nil || fee.IsZero() {
		return nil
	}
	local := u.gate.Config()
	nativeToken := local.NativeToken()
	if err := u.ledger.transfer(ctx, nativeToken, sender, local.GateAddress, fee); err != nil {
		return err
	}
	nativeAsset, err := u.registry.registerOrGet(ctx, local.ChainID, nativeToken)
	if err != nil {
		return err
	}
	if nativeAsset.CollectedFees, err = checkedAdd(nativeAsset.CollectedFees, fee); err != nil {
		return err
	}
	return u.assetRepo.Update(ctx, nativeAsset)
}

// verifyPermit checks the holder's signature over this exact debit. The nonce is the
// submission nonce being consumed, so a permit cannot be replayed.
func (u *TransferUsecase) verifyPermit(sender crosschain.Address, input SendInput, nonce uint64) error {
	if uint64(u.now().Unix()) > input.Permit.Deadline {
		return domainerrors.ErrPermitExpired
	}
	owner, err := sender.EVM()
	if err != nil {
		return domainerrors.ErrInvalidPermit.Wrapf("%v", err)
	}
	digest := crosschain.PermitHash(input.Token, u.gate.Config().GateAddress, input.Amount, nonce, input.Permit.Deadline)
	signer, err := crosschain.RecoverSigner(digest, input.Permit.Signature)
	if err != nil {
		return domainerrors.ErrInvalidPermit.Wrapf("%v", err)
	}
	if signer != owner {
		return domainerrors.ErrInvalidPermit.Wrapf("signed by %s", signer.Hex())
	}
	return nil
}

// Claim releases an inbound transfer once its confirmation source confirms it.
// Native assets are unlocked from custody, wrapped assets are minted.
func (u *TransferUsecase) Claim(ctx context.Context, submitter crosschain.Address, input ClaimInput) (*ClaimResult, error) {
	var result *ClaimResult
	err := u.gate.Execute(ctx, "claim", func(ctx context.Context) error {
		local := u.gate.Config()
		if input.Amount == nil || input.Amount.IsZero() {
			return domainerrors.ErrZeroAmount
		}
		if err := validateAddress(local.ChainType, input.Receiver); err != nil {
			return err
		}

		auto := input.AutoParams
		if auto.IsEmpty() {
			auto = nil
		}
		id, err := crosschain.SubmissionID(crosschain.SubmissionParams{
			DebridgeID:  input.DebridgeID,
			ChainIDFrom: input.ChainIDFrom,
			ChainIDTo:   local.ChainID,
			Amount:      input.Amount,
			Receiver:    input.Receiver,
			Nonce:       input.Nonce,
			AutoParams:  auto,
		})
		if err != nil {
			return domainerrors.ErrInvalidParams.Wrapf("%v", err)
		}

		used, err := u.subRepo.IsClaimed(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return domainerrors.ErrSubmissionUsed
		}
		blocked, err := u.subRepo.IsBlocked(ctx, id)
		if err != nil {
			return err
		}
		if blocked {
			return domainerrors.ErrSubmissionBlocked
		}

		from, err := u.chainRepo.Get(ctx, input.ChainIDFrom)
		if err != nil && !isNotFound(err) {
			return err
		}
		if from == nil || !from.IsSupportedFrom {
			return domainerrors.ErrWrongChainFrom.Wrapf("chain %d", input.ChainIDFrom)
		}
		asset, err := u.registry.GetAsset(ctx, input.DebridgeID)
		if err != nil {
			return err
		}

		if err := u.confirmations.Confirm(ctx, input.Source, id, input.Amount, asset.AmountThreshold); err != nil {
			return err
		}

		sub := &entities.Submission{
			SubmissionID: id,
			DebridgeID:   input.DebridgeID,
			ChainIDFrom:  input.ChainIDFrom,
			ChainIDTo:    local.ChainID,
			Amount:       input.Amount,
			Receiver:     input.Receiver,
			Nonce:        input.Nonce,
			ExecutionFee: new(uint256.Int),
			Submitter:    submitter,
		}
		if auto != nil {
			sub.ExecutionFee = orZero(auto.ExecutionFee)
			sub.Flags = auto.Flags
			sub.FallbackAddress = auto.FallbackAddress
			sub.Data = auto.Data
			sub.NativeSender = auto.NativeSender
		}
		if err := u.subRepo.MarkClaimed(ctx, sub); err != nil {
			if err == domainerrors.ErrAlreadyExists {
				return domainerrors.ErrSubmissionUsed
			}
			return err
		}

		result, err = u.release(ctx, submitter, asset, sub)
		if err != nil {
			return err
		}

		mode := "unlock"
		if result.Minted {
			mode = "mint"
		}
		metrics.SubmissionsClaimed.WithLabelValues(strconv.FormatUint(uint64(input.ChainIDFrom), 10), mode).Inc()
		logger.Info(ctx, "Submission claimed",
			zap.String("submission_id", id.Hex()),
			zap.String("mode", mode),
			zap.String("amount", input.Amount.Dec()),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// release pays out a claimed submission: execution fee to the submitter, the rest
// to the receiver directly, through the call proxy, or unwrapped to native currency.
func (u *TransferUsecase) release(ctx context.Context, submitter crosschain.Address, asset *entities.Asset, sub *entities.Submission) (*ClaimResult, error) {
	local := u.gate.Config()
	result := &ClaimResult{
		SubmissionID: sub.SubmissionID,
		Minted:       !asset.IsNativeChain,
		ExecutionFee: orZero(sub.ExecutionFee),
	}

	if asset.IsNativeChain {
		if asset.Liquid().Lt(sub.Amount) {
			return nil, domainerrors.ErrInsufficientLiquidity.Wrapf("liquid %s, claim %s", asset.Liquid().Dec(), sub.Amount.Dec())
		}
		var err error
		if asset.Balance, err = checkedSub(asset.Balance, sub.Amount); err != nil {
			return nil, err
		}
		if err := u.assetRepo.Update(ctx, asset); err != nil {
			return nil, err
		}
	}

	net, err := checkedSub(sub.Amount, result.ExecutionFee)
	if err != nil {
		return nil, domainerrors.ErrAmountNotCoverFees.Wrapf("execution fee exceeds amount")
	}
	if !result.ExecutionFee.IsZero() {
		if err := u.payout(ctx, asset, submitter, result.ExecutionFee); err != nil {
			return nil, err
		}
	}
	result.AmountToReceiver = net

	if len(sub.Data) > 0 && u.callProxy != nil {
		if err := u.payout(ctx, asset, local.CallProxyAddress, net); err != nil {
			return nil, err
		}
		callErr := u.callProxy.Call(ctx, ExternalCall{
			SubmissionID:    sub.SubmissionID,
			ChainIDFrom:     sub.ChainIDFrom,
			Token:           asset.LocalTokenAddress,
			Receiver:        sub.Receiver,
			Amount:          net,
			Data:            sub.Data,
			FallbackAddress: sub.FallbackAddress,
			NativeSender:    sub.NativeSender,
			Flags:           sub.Flags,
		})
		if callErr == nil {
			return result, nil
		}
		if entities.HasFlag(sub.Flags, entities.FlagRevertIfExternalFail) {
			return nil, domainerrors.ErrExternalCallFailed.Wrapf("%v", callErr)
		}
		logger.Warn(ctx, "External call failed, funds sent to fallback",
			zap.String("submission_id", sub.SubmissionID.Hex()),
			zap.Error(callErr),
		)
		fallback := sub.FallbackAddress
		if fallback.IsEmpty() {
			fallback = sub.Receiver
		}
		result.ExternalCallFailed = true
		return result, u.ledger.transfer(ctx, asset.LocalTokenAddress, local.CallProxyAddress, fallback, net)
	}

	if entities.HasFlag(sub.Flags, entities.FlagUnwrapETH) && !local.WrappedNativeToken.IsEmpty() && asset.LocalTokenAddress.Equal(local.WrappedNativeToken) {
		if err := u.payout(ctx, asset, local.GateAddress, net); err != nil {
			return nil, err
		}
		if err := u.ledger.burn(ctx, local.WrappedNativeToken, local.GateAddress, net); err != nil {
			return nil, err
		}
		if err := u.ledger.mint(ctx, local.NativeToken(), sub.Receiver, net); err != nil {
			return nil, err
		}
		result.Unwrapped = true
		return result, nil
	}

	return result, u.payout(ctx, asset, sub.Receiver, net)
}

// payout moves released funds to a holder: from custody for native assets, minted for wrapped ones
func (u *TransferUsecase) payout(ctx context.Context, asset *entities.Asset, to crosschain.Address, amount *uint256.Int) error {
	if asset.IsNativeChain {
		return u.ledger.transfer(ctx, asset.LocalTokenAddress, u.gate.Config().GateAddress, to, amount)
	}
	return u.ledger.mint(ctx, asset.LocalTokenAddress, to, amount)
}

// ClaimWithOracleSignatures fills in signatures from the oracle API when the claim carries none
func (u *TransferUsecase) ClaimWithOracleSignatures(ctx context.Context, submitter crosschain.Address, input ClaimInput) (*ClaimResult, error) {
	src, ok := input.Source.(entities.SignatureSource)
	if !ok || len(src.Signatures) == 0 {
		if u.signatures == nil {
			return nil, domainerrors.ErrInvalidSignatures.Wrapf("no oracle signature source configured")
		}
		id, err := crosschain.SubmissionID(crosschain.SubmissionParams{
			DebridgeID:  input.DebridgeID,
			ChainIDFrom: input.ChainIDFrom,
			ChainIDTo:   u.gate.Config().ChainID,
			Amount:      input.Amount,
			Receiver:    input.Receiver,
			Nonce:       input.Nonce,
			AutoParams:  input.AutoParams,
		})
		if err != nil {
			return nil, domainerrors.ErrInvalidParams.Wrapf("%v", err)
		}
		sigs, err := u.signatures.FetchSignatures(ctx, id)
		if err != nil {
			return nil, err
		}
		input.Source = entities.SignatureSource{Signatures: sigs}
	}
	return u.Claim(ctx, submitter, input)
}

// GetSubmissionState reports where a submission is in its lifecycle on this chain
func (u *TransferUsecase) GetSubmissionState(ctx context.Context, id common.Hash) (*entities.SubmissionState, error) {
	state := &entities.SubmissionState{SubmissionID: id, Status: entities.SubmissionStatusUninitiated}

	blocked, err := u.subRepo.IsBlocked(ctx, id)
	if err != nil {
		return nil, err
	}
	state.Blocked = blocked

	claimed, err := u.subRepo.GetClaimed(ctx, id)
	switch {
	case err == nil:
		state.Status = entities.SubmissionStatusClaimed
		state.Claimed = claimed
		return state, nil
	case !isNotFound(err):
		return nil, err
	}

	sent, err := u.subRepo.GetSent(ctx, id)
	switch {
	case err == nil:
		state.Sent = sent
		state.Status = entities.SubmissionStatusPending
	case !isNotFound(err):
		return nil, err
	}

	tally, err := u.confirmations.Tally(ctx, 0, id)
	if err != nil {
		return nil, err
	}
	state.Confirmations = tally.Count
	if tally.Count == 0 {
		return state, nil
	}
	state.Status = entities.SubmissionStatusPending

	params, err := u.confirmations.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	var amount, threshold *uint256.Int
	if sent != nil {
		amount = sent.Amount
		if asset, err := u.assetRepo.GetByID(ctx, sent.DebridgeID); err == nil {
			threshold = asset.AmountThreshold
		}
	}
	if EvaluateConfirmations(*params, *tally, amount, threshold) == nil {
		state.Status = entities.SubmissionStatusClaimable
	}
	return state, nil
}

// ListSent returns outbound submissions, optionally of one sender
func (u *TransferUsecase) ListSent(ctx context.Context, sender crosschain.Address, pagination utils.PaginationParams) ([]*entities.Submission, int64, error) {
	return u.subRepo.ListSent(ctx, sender, pagination)
}
