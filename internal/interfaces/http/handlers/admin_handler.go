package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/internal/interfaces/http/response"
	"bridge-gate.backend/internal/usecases"
)

// AdminHandler handles protocol settings, roles and the token ledger
type AdminHandler struct {
	admin *usecases.AdminUsecase
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *usecases.AdminUsecase) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// GetSettings returns the protocol settings
// GET /api/v1/settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.admin.GetSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, settings)
}

// SetPaused pauses or resumes transfers
// PUT /api/v1/admin/pause
func (h *AdminHandler) SetPaused(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req struct {
		Paused bool `json:"paused"`
	}
	if !bindJSON(c, &req) {
		return
	}
	settings, err := h.admin.SetPaused(c.Request.Context(), caller, req.Paused)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, settings)
}

// SetFlashFee sets the flash loan fee
// PUT /api/v1/admin/flash-fee
func (h *AdminHandler) SetFlashFee(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req struct {
		FlashFeeBps uint64 `json:"flashFeeBps"`
	}
	if !bindJSON(c, &req) {
		return
	}
	settings, err := h.admin.SetFlashFee(c.Request.Context(), caller, req.FlashFeeBps)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, settings)
}

// SetGlobalFees sets the fallback fees of chains without their own
// PUT /api/v1/admin/global-fees
func (h *AdminHandler) SetGlobalFees(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req struct {
		FixedNativeFee string `json:"fixedNativeFee"`
		TransferFeeBps uint64 `json:"transferFeeBps"`
	}
	if !bindJSON(c, &req) {
		return
	}
	fee, err := parseAmount("fixedNativeFee", req.FixedNativeFee)
	if err != nil {
		response.Error(c, err)
		return
	}
	settings, err := h.admin.SetGlobalFees(c.Request.Context(), caller, fee, req.TransferFeeBps)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, settings)
}

// BlockSubmission freezes or unfreezes a submission
// PUT /api/v1/admin/submissions/:id/block
func (h *AdminHandler) BlockSubmission(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, err := parseHash("submission id", c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var req struct {
		Blocked bool `json:"blocked"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.admin.BlockSubmission(c.Request.Context(), caller, id, req.Blocked); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"submissionId": id, "blocked": req.Blocked})
}

// TransferAdmin hands the admin role to another address
// POST /api/v1/admin/transfer
func (h *AdminHandler) TransferAdmin(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req struct {
		NewAdmin string `json:"newAdmin" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	newAdmin, err := parseAddress("newAdmin", req.NewAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.admin.TransferAdmin(c.Request.Context(), caller, newAdmin); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"admin": newAdmin})
}

// SetDefiController grants or revokes the DefiController role
// PUT /api/v1/admin/defi-controllers
func (h *AdminHandler) SetDefiController(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req struct {
		Address string `json:"address" binding:"required"`
		Enabled bool   `json:"enabled"`
	}
	if !bindJSON(c, &req) {
		return
	}
	addr, err := parseAddress("address", req.Address)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.admin.SetDefiController(c.Request.Context(), caller, addr, req.Enabled); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"address": addr, "enabled": req.Enabled})
}

// SetTokenBalance overwrites a ledger balance for reconciliation with the chain
// PUT /api/v1/admin/balances
func (h *AdminHandler) SetTokenBalance(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req struct {
		Token  string `json:"token" binding:"required"`
		Holder string `json:"holder" binding:"required"`
		Amount string `json:"amount" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	token, err := parseAddress("token", req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}
	holder, err := parseAddress("holder", req.Holder)
	if err != nil {
		response.Error(c, err)
		return
	}
	amount, err := requireAmount("amount", req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.admin.SetTokenBalance(c.Request.Context(), caller, token, holder, amount); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token, "holder": holder, "amount": amount})
}

// GetBalances lists the ledger balances of a holder
// GET /api/v1/balances/:holder
func (h *AdminHandler) GetBalances(c *gin.Context) {
	holder, err := parseAddress("holder", c.Param("holder"))
	if err != nil {
		response.Error(c, err)
		return
	}
	balances, err := h.admin.Balances(c.Request.Context(), holder)
	if err != nil {
		response.Error(c, err)
		return
	}
	if balances == nil {
		balances = []*entities.TokenBalance{}
	}
	response.Success(c, http.StatusOK, gin.H{"holder": holder, "balances": balances})
}

// GetRoles lists the roles of an address
// GET /api/v1/roles/:address
func (h *AdminHandler) GetRoles(c *gin.Context) {
	addr, err := parseAddress("address", c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	roles, err := h.admin.Roles(c.Request.Context(), addr)
	if err != nil {
		response.Error(c, err)
		return
	}
	if roles == nil {
		roles = []entities.Role{}
	}
	response.Success(c, http.StatusOK, gin.H{"address": addr, "roles": roles})
}
