package handlers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"bridge-gate.backend/internal/interfaces/http/response"
	"bridge-gate.backend/internal/usecases"
	"bridge-gate.backend/pkg/crosschain"
)

// OrderHandler handles order fulfillment endpoints on the take chain
type OrderHandler struct {
	orders *usecases.OrderUsecase
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *usecases.OrderUsecase) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// ComputeOrderID returns the id of an order without touching state
// POST /api/v1/orders/id
func (h *OrderHandler) ComputeOrderID(c *gin.Context) {
	var order crosschain.Order
	if !bindJSON(c, &order) {
		return
	}
	id, err := h.orders.OrderID(&order)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"orderId": id})
}

// GetOrder returns the take state of an order
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := parseHash("order id", c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	state, err := h.orders.GetOrderState(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// FulfillOrder pays the order's take amount to its receiver
// POST /api/v1/orders/fulfill
func (h *OrderHandler) FulfillOrder(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req struct {
		Order           crosschain.Order `json:"order"`
		FulfillAmount   string           `json:"fulfillAmount" binding:"required"`
		UnlockAuthority string           `json:"unlockAuthority"`
	}
	if !bindJSON(c, &req) {
		return
	}
	amount, err := requireAmount("fulfillAmount", req.FulfillAmount)
	if err != nil {
		response.Error(c, err)
		return
	}
	authority, err := parseAddress("unlockAuthority", req.UnlockAuthority)
	if err != nil {
		response.Error(c, err)
		return
	}
	state, err := h.orders.FulfillOrder(c.Request.Context(), caller, &req.Order, amount, authority)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// CancelOrder cancels an unfilled order on the take chain
// POST /api/v1/orders/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req struct {
		Order             crosschain.Order `json:"order"`
		CancelBeneficiary string           `json:"cancelBeneficiary"`
	}
	if !bindJSON(c, &req) {
		return
	}
	beneficiary, err := parseAddress("cancelBeneficiary", req.CancelBeneficiary)
	if err != nil {
		response.Error(c, err)
		return
	}
	state, err := h.orders.CancelOrder(c.Request.Context(), caller, &req.Order, beneficiary)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

type unlockRequest struct {
	OrderIDs     []string `json:"orderIds" binding:"required"`
	Beneficiary  string   `json:"beneficiary" binding:"required"`
	ExecutionFee string   `json:"executionFee"`
}

// SendUnlock emits unlock messages for fulfilled orders. One id goes out as a single
// unlock, several as a batch.
// POST /api/v1/orders/unlock
func (h *OrderHandler) SendUnlock(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req unlockRequest
	if !bindJSON(c, &req) {
		return
	}
	ids := make([]common.Hash, 0, len(req.OrderIDs))
	for _, raw := range req.OrderIDs {
		id, err := parseHash("order id", raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		ids = append(ids, id)
	}
	beneficiary, err := parseAddress("beneficiary", req.Beneficiary)
	if err != nil {
		response.Error(c, err)
		return
	}
	fee, err := parseAmount("executionFee", req.ExecutionFee)
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	if len(ids) == 1 {
		msg, err := h.orders.SendUnlock(ctx, caller, ids[0], beneficiary, fee)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusAccepted, msg)
		return
	}
	msg, err := h.orders.SendBatchUnlock(ctx, caller, ids, beneficiary, fee)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, msg)
}

// SendOrderCancel emits the cancel message of a cancelled order
// POST /api/v1/orders/:id/cancel-message
func (h *OrderHandler) SendOrderCancel(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, err := parseHash("order id", c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var req struct {
		ExecutionFee string `json:"executionFee"`
	}
	if !bindJSON(c, &req) {
		return
	}
	fee, err := parseAmount("executionFee", req.ExecutionFee)
	if err != nil {
		response.Error(c, err)
		return
	}
	msg, err := h.orders.SendOrderCancel(c.Request.Context(), caller, id, fee)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, msg)
}

// PatchTakeOrder lowers the take amount of an unfilled order
// POST /api/v1/orders/patch
func (h *OrderHandler) PatchTakeOrder(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req struct {
		Order         crosschain.Order `json:"order"`
		NewSubtrahend string           `json:"newSubtrahend" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	subtrahend, err := requireAmount("newSubtrahend", req.NewSubtrahend)
	if err != nil {
		response.Error(c, err)
		return
	}
	patch, err := h.orders.PatchTakeOrder(c.Request.Context(), caller, &req.Order, subtrahend)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, patch)
}

// SetAuthorizedSrcContract trusts a source-chain order contract to relay patches (Admin only)
// PUT /api/v1/admin/order-sources/:chainId
func (h *OrderHandler) SetAuthorizedSrcContract(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	chainID, err := parseChainID("chainId", c.Param("chainId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	addr, err := parseAddress("address", req.Address)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.orders.SetAuthorizedSrcContract(c.Request.Context(), caller, chainID, addr); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"chainId": chainID, "address": addr})
}
