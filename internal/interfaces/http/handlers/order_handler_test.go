package handlers

import (
	"net/http"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge-gate.backend/pkg/crosschain"
)

var (
	makerAddr     = crosschain.MustParseAddress("0x000000000000000000000000000000000000face")
	authorityAddr = crosschain.MustParseAddress("0x000000000000000000000000000000000000a070")
)

func handlerOrder(nonce uint64) *crosschain.Order {
	return &crosschain.Order{
		MakerOrderNonce:          nonce,
		MakerSrc:                 makerAddr,
		Give:                     crosschain.Offer{ChainID: remoteChain, TokenAddress: remoteToken, Amount: uint256.NewInt(1000)},
		Take:                     crosschain.Offer{ChainID: localChain, TokenAddress: tokenUSD, Amount: uint256.NewInt(990)},
		ReceiverDst:              aliceAddr,
		GivePatchAuthoritySrc:    makerAddr,
		OrderAuthorityAddressDst: authorityAddr,
	}
}

func TestOrderHandler_FulfillAndUnlock(t *testing.T) {
	f := newHandlerFixture(t)
	f.fund(tokenUSD, bobAddr, 5000)
	order := handlerOrder(1)
	expectedID, err := crosschain.OrderID(order)
	require.NoError(t, err)

	w := f.do(http.MethodPost, "/api/v1/orders/id", nil, order)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, expectedID.Hex(), decode(t, w)["orderId"])

	w = f.do(http.MethodPost, "/api/v1/orders/fulfill", bobAddr, map[string]interface{}{"order": order, "fulfillAmount": "989"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "WRONG_TAKE_AMOUNT")

	w = f.do(http.MethodPost, "/api/v1/orders/fulfill", bobAddr, map[string]interface{}{"order": order, "fulfillAmount": "990"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "FULFILLED", decode(t, w)["status"])

	w = f.do(http.MethodPost, "/api/v1/orders/fulfill", bobAddr, map[string]interface{}{"order": order, "fulfillAmount": "990"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ORDER_ALREADY_FULFILLED")

	w = f.do(http.MethodGet, "/api/v1/balances/"+aliceAddr.String(), nil, nil)
	assert.Contains(t, w.Body.String(), "990")

	unlock := map[string]interface{}{"orderIds": []string{expectedID.Hex()}, "beneficiary": bobAddr.String(), "executionFee": "3"}
	w = f.do(http.MethodPost, "/api/v1/orders/unlock", aliceAddr, unlock)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_UNLOCK_AUTHORITY")

	w = f.do(http.MethodPost, "/api/v1/orders/unlock", bobAddr, unlock)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, "UNLOCK", decode(t, w)["kind"])

	w = f.do(http.MethodGet, "/api/v1/orders/"+expectedID.Hex(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SENT_UNLOCK", decode(t, w)["status"])

	w = f.do(http.MethodPost, "/api/v1/orders/unlock", bobAddr, map[string]interface{}{"orderIds": []string{"0x01"}, "beneficiary": bobAddr.String()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/v1/orders/unlock", bobAddr, map[string]interface{}{"orderIds": []string{}, "beneficiary": bobAddr.String()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_CancelAndPatch(t *testing.T) {
	f := newHandlerFixture(t)
	f.fund(tokenUSD, bobAddr, 5000)

	cancelled := handlerOrder(2)
	w := f.do(http.MethodPost, "/api/v1/orders/cancel", bobAddr, map[string]interface{}{"order": cancelled})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_ORDER_AUTHORITY")

	w = f.do(http.MethodPost, "/api/v1/orders/cancel", authorityAddr, map[string]interface{}{"order": cancelled})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "CANCELLED", body["status"])
	assert.Equal(t, makerAddr.String(), body["cancelBeneficiary"])

	patched := handlerOrder(3)
	w = f.do(http.MethodPost, "/api/v1/orders/patch", authorityAddr, map[string]interface{}{"order": patched, "newSubtrahend": "40"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(http.MethodPost, "/api/v1/orders/fulfill", bobAddr, map[string]interface{}{"order": patched, "fulfillAmount": "950"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(http.MethodPost, "/api/v1/orders/patch", authorityAddr, map[string]interface{}{"order": handlerOrder(4), "newSubtrahend": "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPut, "/api/v1/admin/order-sources/56", bobAddr, map[string]interface{}{"address": makerAddr.String()})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = f.do(http.MethodPut, "/api/v1/admin/order-sources/56", adminAddr, map[string]interface{}{"address": makerAddr.String()})
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/v1/orders/0x12", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
