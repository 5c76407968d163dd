package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/interfaces/http/response"
	"bridge-gate.backend/internal/usecases"
)

// ConfirmationHandler handles oracle confirmation endpoints
type ConfirmationHandler struct {
	confirmations *usecases.ConfirmationUsecase
}

// NewConfirmationHandler creates a new confirmation handler
func NewConfirmationHandler(confirmations *usecases.ConfirmationUsecase) *ConfirmationHandler {
	return &ConfirmationHandler{confirmations: confirmations}
}

// Confirm records the calling oracle's attestation of a submission
// POST /api/v1/confirmations/:id
func (h *ConfirmationHandler) Confirm(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	oracle, err := caller.EVM()
	if err != nil {
		response.Error(c, domainerrors.ErrOracleBadRole.Wrapf("%v", err))
		return
	}
	id, err := parseHash("submission id", c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	tally, err := h.confirmations.RecordConfirmation(c.Request.Context(), oracle, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"submissionId": id, "tally": tally})
}

// GetTally returns the confirmation count of a submission. version=0 is the current aggregator.
// GET /api/v1/confirmations/:id?version=
func (h *ConfirmationHandler) GetTally(c *gin.Context) {
	id, err := parseHash("submission id", c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	version, err := strconv.ParseUint(c.DefaultQuery("version", "0"), 10, 64)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid version"))
		return
	}
	tally, err := h.confirmations.Tally(c.Request.Context(), version, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"submissionId": id, "tally": tally})
}

// GetParams returns the confirmation policy
// GET /api/v1/confirmations/params
func (h *ConfirmationHandler) GetParams(c *gin.Context) {
	params, err := h.confirmations.GetParams(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, params)
}

// SetParams replaces the confirmation policy (Admin only)
// PUT /api/v1/admin/confirmations/params
func (h *ConfirmationHandler) SetParams(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var params entities.ConfirmationParams
	if !bindJSON(c, &params) {
		return
	}
	if err := h.confirmations.SetConfirmationParams(c.Request.Context(), caller, params); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, params)
}

// ListOracles lists registered oracles
// GET /api/v1/oracles
func (h *ConfirmationHandler) ListOracles(c *gin.Context) {
	oracles, err := h.confirmations.ListOracles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if oracles == nil {
		oracles = []*entities.Oracle{}
	}
	response.Success(c, http.StatusOK, gin.H{"oracles": oracles})
}

type oracleRequest struct {
	Address  string `json:"address" binding:"required"`
	Required bool   `json:"required"`
}

// AddOracle registers an oracle (Admin only)
// POST /api/v1/admin/oracles
func (h *ConfirmationHandler) AddOracle(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req oracleRequest
	if !bindJSON(c, &req) {
		return
	}
	addr, err := parseEVMAddress("address", req.Address)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.confirmations.AddOracle(c.Request.Context(), caller, addr, req.Required); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"address": addr, "required": req.Required})
}

// UpdateOracle changes the valid/required flags of an oracle (Admin only)
// PUT /api/v1/admin/oracles/:address
func (h *ConfirmationHandler) UpdateOracle(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	addr, err := parseEVMAddress("address", c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var req struct {
		IsValid  bool `json:"isValid"`
		Required bool `json:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.confirmations.UpdateOracle(c.Request.Context(), caller, addr, req.IsValid, req.Required); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"address": addr, "isValid": req.IsValid, "required": req.Required})
}

// RemoveOracle deletes an oracle (Admin only)
// DELETE /api/v1/admin/oracles/:address
func (h *ConfirmationHandler) RemoveOracle(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	addr, err := parseEVMAddress("address", c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.confirmations.RemoveOracle(c.Request.Context(), caller, addr); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Oracle removed"})
}

// SetAggregator starts a new aggregator version (Admin only)
// POST /api/v1/admin/aggregators
func (h *ConfirmationHandler) SetAggregator(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	version, err := h.confirmations.SetAggregator(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"version": version})
}

// ManageOldAggregator toggles whether a legacy aggregator version may confirm claims (Admin only)
// PUT /api/v1/admin/aggregators/:version
func (h *ConfirmationHandler) ManageOldAggregator(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	version, err := strconv.ParseUint(c.Param("version"), 10, 64)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid version"))
		return
	}
	var req struct {
		IsValid bool `json:"isValid"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.confirmations.ManageOldAggregator(c.Request.Context(), caller, version, req.IsValid); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"version": version, "isValid": req.IsValid})
}
