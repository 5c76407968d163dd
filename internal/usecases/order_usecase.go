package usecases

import (
	"context"

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

// OrderUsecase is the destination-chain side of the order protocol: takers
// fulfill orders here and unlock or cancel notifications go back to the give chain.
type OrderUsecase struct {
	gate        *Gate
	orderRepo   repositories.OrderRepository
	messageRepo repositories.MessageRepository
	access      *AccessControl
	ledger      *tokenLedger
}

// NewOrderUsecase creates a new order usecase
func NewOrderUsecase(
	gate *Gate,
	orderRepo repositories.OrderRepository,
	messageRepo repositories.MessageRepository,
	ledgerRepo repositories.LedgerRepository,
	access *AccessControl,
) *OrderUsecase {
	return &OrderUsecase{
		gate:        gate,
		orderRepo:   orderRepo,
		messageRepo: messageRepo,
		access:      access,
		ledger:      newTokenLedger(ledgerRepo),
	}
}

func (u *OrderUsecase) orderID(order *crosschain.Order) (common.Hash, error) {
	id, err := crosschain.OrderID(order)
	if err != nil {
		return common.Hash{}, domainerrors.ErrInvalidOrder.Wrapf("%v", err)
	}
	if order.Take.ChainID != u.gate.Config().ChainID {
		return common.Hash{}, domainerrors.ErrWrongTakeChain.Wrapf("take chain %d", order.Take.ChainID)
	}
	return id, nil
}

// loadState returns the take state of an order, NOT_SET when none was stored
func (u *OrderUsecase) loadState(ctx context.Context, id common.Hash) (*entities.OrderTakeState, error) {
	state, err := u.orderRepo.GetState(ctx, id)
	if err == nil {
		return state, nil
	}
	if isNotFound(err) {
		return &entities.OrderTakeState{OrderID: id, Status: entities.OrderStatusNotSet}, nil
	}
	return nil, err
}

func requireUnset(state *entities.OrderTakeState) error {
	switch state.Status {
	case entities.OrderStatusNotSet:
		return nil
	case entities.OrderStatusFulfilled, entities.OrderStatusSentUnlock:
		return domainerrors.ErrOrderAlreadyFulfilled
	case entities.OrderStatusCancelled, entities.OrderStatusSentCancel:
		return domainerrors.ErrOrderAlreadyCancelled
	}
	return domainerrors.ErrIncorrectOrderState
}

func (u *OrderUsecase) takeAmount(ctx context.Context, id common.Hash, order *crosschain.Order) (*uint256.Int, error) {
	patch, err := u.orderRepo.GetPatch(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return new(uint256.Int).Set(order.Take.Amount), nil
		}
		return nil, err
	}
	amount, err := checkedSub(order.Take.Amount, patch.Subtrahend)
	if err != nil {
		return nil, domainerrors.ErrOverflowWhileApplyTakeOrderPatch
	}
	return amount, nil
}

func (u *OrderUsecase) saveState(ctx context.Context, state *entities.OrderTakeState, create bool) error {
	var err error
	if create {
		err = u.orderRepo.CreateState(ctx, state)
	} else {
		err = u.orderRepo.UpdateState(ctx, state)
	}
	if err != nil {
		return err
	}
	metrics.OrderTransitions.WithLabelValues(string(state.Status)).Inc()
	logger.Info(ctx, "Order state changed",
		zap.String("order_id", state.OrderID.Hex()),
		zap.String("status", string(state.Status)),
	)
	return nil
}

// FulfillOrder delivers the take amount to the order's receiver and records the unlock authority
func (u *OrderUsecase) FulfillOrder(ctx context.Context, taker crosschain.Address, order *crosschain.Order, fulfillAmount *uint256.Int, unlockAuthority crosschain.Address) (*entities.OrderTakeState, error) {
	var state *entities.OrderTakeState
	err := u.gate.Execute(ctx, "fulfill_order", func(ctx context.Context) error {
		id, err := u.orderID(order)
		if err != nil {
			return err
		}
		if state, err = u.loadState(ctx, id); err != nil {
			return err
		}
		if err := requireUnset(state); err != nil {
			return err
		}
		if !order.AllowedTakerDst.IsEmpty() && !order.AllowedTakerDst.Equal(taker) {
			return domainerrors.ErrNotAllowedTaker
		}
		expected, err := u.takeAmount(ctx, id, order)
		if err != nil {
			return err
		}
		if fulfillAmount == nil || !fulfillAmount.Eq(expected) {
			return domainerrors.ErrWrongTakeAmount.Wrapf("expected %s", expected.Dec())
		}
		if unlockAuthority.IsEmpty() {
			unlockAuthority = taker
		}

		to := order.ReceiverDst
		if len(order.ExternalCall) > 0 {
			to = u.gate.Config().CallProxyAddress
		}
		if err := u.ledger.transfer(ctx, order.Take.TokenAddress, taker, to, expected); err != nil {
			return err
		}

		state = &entities.OrderTakeState{
			OrderID:         id,
			Status:          entities.OrderStatusFulfilled,
			GiveChainID:     order.Give.ChainID,
			TakeAmount:      expected,
			UnlockAuthority: unlockAuthority,
		}
		return u.saveState(ctx, state, true)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// CancelOrder marks an unfulfilled order cancelled; only the order authority may do it
func (u *OrderUsecase) CancelOrder(ctx context.Context, caller crosschain.Address, order *crosschain.Order, cancelBeneficiary crosschain.Address) (*entities.OrderTakeState, error) {
	var state *entities.OrderTakeState
	err := u.gate.Execute(ctx, "cancel_order", func(ctx context.Context) error {
		id, err := u.orderID(order)
		if err != nil {
			return err
		}
		if !order.OrderAuthorityAddressDst.Equal(caller) {
			return domainerrors.ErrNotOrderAuthority
		}
		if state, err = u.loadState(ctx, id); err != nil {
			return err
		}
		if err := requireUnset(state); err != nil {
			return err
		}

		beneficiary := cancelBeneficiary
		if !order.AllowedCancelBeneficiarySrc.IsEmpty() {
			if !beneficiary.IsEmpty() && !beneficiary.Equal(order.AllowedCancelBeneficiarySrc) {
				return domainerrors.ErrWrongCancelBeneficiary
			}
			beneficiary = order.AllowedCancelBeneficiarySrc
		}
		if beneficiary.IsEmpty() {
			beneficiary = order.MakerSrc
		}

		state = &entities.OrderTakeState{
			OrderID:           id,
			Status:            entities.OrderStatusCancelled,
			GiveChainID:       order.Give.ChainID,
			Canceler:          caller,
			CancelBeneficiary: beneficiary,
		}
		return u.saveState(ctx, state, true)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// SendUnlock tells the give chain to release the maker's funds to beneficiary
func (u *OrderUsecase) SendUnlock(ctx context.Context, caller crosschain.Address, orderID common.Hash, beneficiary crosschain.Address, executionFee *uint256.Int) (*entities.CrossChainMessage, error) {
	return u.SendBatchUnlock(ctx, caller, []common.Hash{orderID}, beneficiary, executionFee)
}

// SendBatchUnlock unlocks several orders with one message. All orders must share the give chain.
func (u *OrderUsecase) SendBatchUnlock(ctx context.Context, caller crosschain.Address, orderIDs []common.Hash, beneficiary crosschain.Address, executionFee *uint256.Int) (*entities.CrossChainMessage, error) {
	var msg *entities.CrossChainMessage
	err := u.gate.Execute(ctx, "send_unlock", func(ctx context.Context) error {
		if len(orderIDs) == 0 {
			return domainerrors.ErrNotAllowedEmptyBatch
		}
		if beneficiary.IsEmpty() {
			return domainerrors.ErrInvalidParams.Wrapf("beneficiary is required")
		}

		states := make([]*entities.OrderTakeState, 0, len(orderIDs))
		seen := make(map[common.Hash]struct{}, len(orderIDs))
		for _, id := range orderIDs {
			if _, dup := seen[id]; dup {
				return domainerrors.ErrInvalidParams.Wrapf("order %s listed twice", id.Hex())
			}
			seen[id] = struct{}{}
			state, err := u.loadState(ctx, id)
			if err != nil {
				return err
			}
			if state.Status != entities.OrderStatusFulfilled {
				return domainerrors.ErrIncorrectOrderState.Wrapf("order %s is %s", id.Hex(), state.Status)
			}
			if !state.UnlockAuthority.Equal(caller) {
				return domainerrors.ErrNotUnlockAuthority
			}
			if len(states) > 0 && states[0].GiveChainID != state.GiveChainID {
				return domainerrors.ErrMixedGiveChains
			}
			states = append(states, state)
		}

		payload := entities.UnlockMessage{
			Beneficiary:  beneficiary,
			ExecutionFee: orZero(executionFee).Dec(),
			Unlocker:     caller,
		}
		for _, state := range states {
			state.Status = entities.OrderStatusSentUnlock
			state.Unlocker = caller
			if err := u.saveState(ctx, state, false); err != nil {
				return err
			}
			payload.OrderIDs = append(payload.OrderIDs, state.OrderID.Hex())
		}

		var err error
		msg, err = enqueueMessage(ctx, u.messageRepo, entities.MessageKindUnlock, states[0].GiveChainID, orderIDs[0].Hex(), payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// SendOrderCancel tells the give chain to refund a cancelled order to its cancel beneficiary
func (u *OrderUsecase) SendOrderCancel(ctx context.Context, caller crosschain.Address, orderID common.Hash, executionFee *uint256.Int) (*entities.CrossChainMessage, error) {
	var msg *entities.CrossChainMessage
	err := u.gate.Execute(ctx, "send_order_cancel", func(ctx context.Context) error {
		state, err := u.loadState(ctx, orderID)
		if err != nil {
			return err
		}
		if state.Status != entities.OrderStatusCancelled {
			return domainerrors.ErrIncorrectOrderState.Wrapf("order %s is %s", orderID.Hex(), state.Status)
		}
		if !state.Canceler.Equal(caller) {
			return domainerrors.ErrNotOrderAuthority
		}
		state.Status = entities.OrderStatusSentCancel
		if err := u.saveState(ctx, state, false); err != nil {
			return err
		}
		msg, err = enqueueMessage(ctx, u.messageRepo, entities.MessageKindCancel, state.GiveChainID, orderID.Hex(), entities.CancelMessage{
			OrderID:      orderID.Hex(),
			Beneficiary:  state.CancelBeneficiary,
			ExecutionFee: orZero(executionFee).Dec(),
			Canceler:     caller,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// PatchTakeOrder lowers the take amount of an unfulfilled order. The new
// subtrahend must exceed the stored one and cannot exceed the take amount.
func (u *OrderUsecase) PatchTakeOrder(ctx context.Context, caller crosschain.Address, order *crosschain.Order, newSubtrahend *uint256.Int) (*entities.OrderTakePatch, error) {
	var patch *entities.OrderTakePatch
	err := u.gate.Execute(ctx, "patch_take_order", func(ctx context.Context) error {
		id, err := u.orderID(order)
		if err != nil {
			return err
		}
		if err := u.requirePatchAuthority(ctx, caller, order); err != nil {
			return err
		}
		state, err := u.loadState(ctx, id)
		if err != nil {
			return err
		}
		if state.Status != entities.OrderStatusNotSet {
			return domainerrors.ErrIncorrectOrderState.Wrapf("order %s is %s", id.Hex(), state.Status)
		}

		current := new(uint256.Int)
		if stored, err := u.orderRepo.GetPatch(ctx, id); err == nil {
			current = stored.Subtrahend
		} else if !isNotFound(err) {
			return err
		}
		newSubtrahend = orZero(newSubtrahend)
		if !newSubtrahend.Gt(current) {
			return domainerrors.ErrInvalidPatch.Wrapf("subtrahend %s must exceed %s", newSubtrahend.Dec(), current.Dec())
		}
		if newSubtrahend.Gt(order.Take.Amount) {
			return domainerrors.ErrOverflowWhileApplyTakeOrderPatch
		}

		patch = &entities.OrderTakePatch{OrderID: id, Subtrahend: newSubtrahend}
		return u.orderRepo.SavePatch(ctx, patch)
	})
	if err != nil {
		return nil, err
	}
	return patch, nil
}

func (u *OrderUsecase) requirePatchAuthority(ctx context.Context, caller crosschain.Address, order *crosschain.Order) error {
	if order.OrderAuthorityAddressDst.Equal(caller) {
		return nil
	}
	src, err := u.orderRepo.GetAuthorizedSrc(ctx, order.Give.ChainID)
	if err != nil {
		if isNotFound(err) {
			return domainerrors.ErrNotOrderAuthority
		}
		return err
	}
	if !src.Address.Equal(caller) {
		return domainerrors.ErrNotOrderAuthority
	}
	return nil
}

// SetAuthorizedSrcContract registers the source-chain contract trusted to relay patches
func (u *OrderUsecase) SetAuthorizedSrcContract(ctx context.Context, caller crosschain.Address, chainID crosschain.ChainID, address crosschain.Address) error {
	return u.gate.Execute(ctx, "set_authorized_src", func(ctx context.Context) error {
		if err := u.access.Require(ctx, caller, entities.RoleAdmin); err != nil {
			return err
		}
		if address.IsEmpty() {
			return domainerrors.ErrInvalidParams.Wrapf("address is required")
		}
		return u.orderRepo.SaveAuthorizedSrc(ctx, &entities.AuthorizedSrcContract{ChainID: chainID, Address: address})
	})
}

// GetOrderState returns the take state of an order
func (u *OrderUsecase) GetOrderState(ctx context.Context, id common.Hash) (*entities.OrderTakeState, error) {
	return u.loadState(ctx, id)
}

// OrderID computes the id of an order
func (u *OrderUsecase) OrderID(order *crosschain.Order) (common.Hash, error) {
	id, err := crosschain.OrderID(order)
	if err != nil {
		return common.Hash{}, domainerrors.ErrInvalidOrder.Wrapf("%v", err)
	}
	return id, nil
}
