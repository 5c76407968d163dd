package usecases

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/utils"
)

var (
	makerAddr     = crosschain.MustParseAddress("0x000000000000000000000000000000000000face")
	authorityAddr = crosschain.MustParseAddress("0x000000000000000000000000000000000000a070")
	srcContract   = crosschain.MustParseAddress("0x000000000000000000000000000000000000c0de")
)

func testOrder(nonce uint64, giveChain crosschain.ChainID) *crosschain.Order {
	return &crosschain.Order{
		MakerOrderNonce:          nonce,
		MakerSrc:                 makerAddr,
		Give:                     crosschain.Offer{ChainID: giveChain, TokenAddress: remoteToken, Amount: u256(1000)},
		Take:                     crosschain.Offer{ChainID: localChain, TokenAddress: tokenUSD, Amount: u256(990)},
		ReceiverDst:              aliceAddr,
		GivePatchAuthoritySrc:    makerAddr,
		OrderAuthorityAddressDst: authorityAddr,
	}
}

func TestFulfillOrder_Lifecycle(t *testing.T) {
	f := newGateFixture(t)
	f.fund(tokenUSD, bobAddr, u256(5000))
	order := testOrder(1, remoteChain)

	_, err := f.orders.FulfillOrder(f.ctx, bobAddr, order, u256(989), nil)
	assert.ErrorIs(t, err, domainerrors.ErrWrongTakeAmount)

	state, err := f.orders.FulfillOrder(f.ctx, bobAddr, order, u256(990), nil)
	require.NoError(t, err)
	assert.Equal(t, entities.OrderStatusFulfilled, state.Status)
	assert.True(t, state.UnlockAuthority.Equal(bobAddr))
	assert.Equal(t, uint64(990), f.balance(tokenUSD, aliceAddr).Uint64())
	assert.Equal(t, uint64(4010), f.balance(tokenUSD, bobAddr).Uint64())

	_, err = f.orders.FulfillOrder(f.ctx, bobAddr, order, u256(990), nil)
	assert.ErrorIs(t, err, domainerrors.ErrOrderAlreadyFulfilled)

	_, err = f.orders.SendUnlock(f.ctx, aliceAddr, state.OrderID, aliceAddr, nil)
	assert.ErrorIs(t, err, domainerrors.ErrNotUnlockAuthority)

	msg, err := f.orders.SendUnlock(f.ctx, bobAddr, state.OrderID, bobAddr, u256(3))
	require.NoError(t, err)
	assert.Equal(t, entities.MessageKindUnlock, msg.Kind)
	assert.Equal(t, remoteChain, msg.ChainIDTo)

	var payload entities.UnlockMessage
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, []string{state.OrderID.Hex()}, payload.OrderIDs)
	assert.Equal(t, "3", payload.ExecutionFee)

	got, err := f.orders.GetOrderState(f.ctx, state.OrderID)
	require.NoError(t, err)
	assert.Equal(t, entities.OrderStatusSentUnlock, got.Status)

	_, err = f.orders.SendUnlock(f.ctx, bobAddr, state.OrderID, bobAddr, nil)
	assert.ErrorIs(t, err, domainerrors.ErrIncorrectOrderState)

	_, err = f.orders.CancelOrder(f.ctx, authorityAddr, order, nil)
	assert.ErrorIs(t, err, domainerrors.ErrOrderAlreadyFulfilled)
}

func TestFulfillOrder_Restrictions(t *testing.T) {
	f := newGateFixture(t)
	f.fund(tokenUSD, bobAddr, u256(5000))

	wrongChain := testOrder(1, remoteChain)
	wrongChain.Take.ChainID = 137
	_, err := f.orders.FulfillOrder(f.ctx, bobAddr, wrongChain, u256(990), nil)
	assert.ErrorIs(t, err, domainerrors.ErrWrongTakeChain)

	restricted := testOrder(2, remoteChain)
	restricted.AllowedTakerDst = relayerAddr
	_, err = f.orders.FulfillOrder(f.ctx, bobAddr, restricted, u256(990), nil)
	assert.ErrorIs(t, err, domainerrors.ErrNotAllowedTaker)

	invalid := testOrder(3, remoteChain)
	invalid.ReceiverDst = nil
	_, err = f.orders.FulfillOrder(f.ctx, bobAddr, invalid, u256(990), nil)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidOrder)

	withCall := testOrder(4, remoteChain)
	withCall.ExternalCall = []byte{0xab}
	_, err = f.orders.FulfillOrder(f.ctx, bobAddr, withCall, u256(990), authorityAddr)
	require.NoError(t, err)
	assert.Equal(t, uint64(990), f.balance(tokenUSD, callProxy).Uint64())
}

func TestCancelOrder(t *testing.T) {
	f := newGateFixture(t)
	order := testOrder(1, remoteChain)

	_, err := f.orders.CancelOrder(f.ctx, bobAddr, order, nil)
	assert.ErrorIs(t, err, domainerrors.ErrNotOrderAuthority)

	state, err := f.orders.CancelOrder(f.ctx, authorityAddr, order, nil)
	require.NoError(t, err)
	assert.Equal(t, entities.OrderStatusCancelled, state.Status)
	assert.True(t, state.CancelBeneficiary.Equal(makerAddr))

	_, err = f.orders.FulfillOrder(f.ctx, bobAddr, order, u256(990), nil)
	assert.ErrorIs(t, err, domainerrors.ErrOrderAlreadyCancelled)

	_, err = f.orders.SendOrderCancel(f.ctx, bobAddr, state.OrderID, nil)
	assert.ErrorIs(t, err, domainerrors.ErrNotOrderAuthority)

	msg, err := f.orders.SendOrderCancel(f.ctx, authorityAddr, state.OrderID, nil)
	require.NoError(t, err)
	assert.Equal(t, entities.MessageKindCancel, msg.Kind)

	var payload entities.CancelMessage
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.True(t, payload.Beneficiary.Equal(makerAddr))

	limited := testOrder(2, remoteChain)
	limited.AllowedCancelBeneficiarySrc = relayerAddr
	_, err = f.orders.CancelOrder(f.ctx, authorityAddr, limited, bobAddr)
	assert.ErrorIs(t, err, domainerrors.ErrWrongCancelBeneficiary)
}

func TestSendBatchUnlock(t *testing.T) {
	f := newGateFixture(t)
	f.fund(tokenUSD, bobAddr, u256(5000))

	var ids []common.Hash
	for nonce := uint64(1); nonce <= 2; nonce++ {
		state, err := f.orders.FulfillOrder(f.ctx, bobAddr, testOrder(nonce, remoteChain), u256(990), nil)
		require.NoError(t, err)
		ids = append(ids, state.OrderID)
	}
	other, err := f.orders.FulfillOrder(f.ctx, bobAddr, testOrder(3, 137), u256(990), nil)
	require.NoError(t, err)

	_, err = f.orders.SendBatchUnlock(f.ctx, bobAddr, nil, bobAddr, nil)
	assert.ErrorIs(t, err, domainerrors.ErrNotAllowedEmptyBatch)

	_, err = f.orders.SendBatchUnlock(f.ctx, bobAddr, append(append([]common.Hash{}, ids...), other.OrderID), bobAddr, nil)
	assert.ErrorIs(t, err, domainerrors.ErrMixedGiveChains)

	_, err = f.orders.SendBatchUnlock(f.ctx, bobAddr, []common.Hash{ids[0], ids[0]}, bobAddr, nil)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidParams)

	msg, err := f.orders.SendBatchUnlock(f.ctx, bobAddr, ids, aliceAddr, nil)
	require.NoError(t, err)
	var payload entities.UnlockMessage
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Len(t, payload.OrderIDs, 2)
	assert.True(t, payload.Unlocker.Equal(bobAddr))
	assert.True(t, payload.Beneficiary.Equal(aliceAddr))

	for _, id := range ids {
		state, err := f.orders.GetOrderState(f.ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entities.OrderStatusSentUnlock, state.Status)
		assert.True(t, state.Unlocker.Equal(bobAddr), "the unlocker is the caller, not the beneficiary")
	}

	pending := entities.MessageStatusPending
	_, total, err := f.messages.ListMessages(f.ctx, &pending, utils.GetPaginationParams(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "rejected batches write no messages")
}

func TestPatchTakeOrder(t *testing.T) {
	f := newGateFixture(t)
	f.fund(tokenUSD, bobAddr, u256(5000))
	order := testOrder(1, remoteChain)

	_, err := f.orders.PatchTakeOrder(f.ctx, bobAddr, order, u256(10))
	assert.ErrorIs(t, err, domainerrors.ErrNotOrderAuthority)

	_, err = f.orders.PatchTakeOrder(f.ctx, authorityAddr, order, u256(991))
	assert.ErrorIs(t, err, domainerrors.ErrOverflowWhileApplyTakeOrderPatch)

	patch, err := f.orders.PatchTakeOrder(f.ctx, authorityAddr, order, u256(40))
	require.NoError(t, err)
	assert.Equal(t, uint64(40), patch.Subtrahend.Uint64())

	_, err = f.orders.PatchTakeOrder(f.ctx, authorityAddr, order, u256(40))
	assert.ErrorIs(t, err, domainerrors.ErrInvalidPatch)
	_, err = f.orders.PatchTakeOrder(f.ctx, authorityAddr, order, u256(30))
	assert.ErrorIs(t, err, domainerrors.ErrInvalidPatch)

	require.NoError(t, f.orders.SetAuthorizedSrcContract(f.ctx, adminAddr, remoteChain, srcContract))
	_, err = f.orders.PatchTakeOrder(f.ctx, srcContract, order, u256(50))
	require.NoError(t, err)

	_, err = f.orders.FulfillOrder(f.ctx, bobAddr, order, u256(990), nil)
	assert.ErrorIs(t, err, domainerrors.ErrWrongTakeAmount)
	state, err := f.orders.FulfillOrder(f.ctx, bobAddr, order, u256(940), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(940), state.TakeAmount.Uint64())

	_, err = f.orders.PatchTakeOrder(f.ctx, authorityAddr, order, u256(60))
	assert.ErrorIs(t, err, domainerrors.ErrIncorrectOrderState)

	assert.ErrorIs(t, f.orders.SetAuthorizedSrcContract(f.ctx, bobAddr, remoteChain, srcContract), domainerrors.ErrAdminBadRole)
}
