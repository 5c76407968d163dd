package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/internal/interfaces/http/response"
	"bridge-gate.backend/internal/usecases"
	"bridge-gate.backend/pkg/crosschain"
)

// AssetHandler handles asset and chain registry endpoints
type AssetHandler struct {
	registry *usecases.AssetRegistry
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(registry *usecases.AssetRegistry) *AssetHandler {
	return &AssetHandler{registry: registry}
}

// ListAssets lists registered assets
// GET /api/v1/assets
func (h *AssetHandler) ListAssets(c *gin.Context) {
	pagination := paginationFromQuery(c)
	assets, total, err := h.registry.ListAssets(c.Request.Context(), pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, assets, total, pagination)
}

// GetAsset returns one asset by debridge id
// GET /api/v1/assets/:id
func (h *AssetHandler) GetAsset(c *gin.Context) {
	id, err := parseHash("asset id", c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	asset, err := h.registry.GetAsset(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, asset)
}

type registerAssetRequest struct {
	ChainID uint64 `json:"chainId" binding:"required"`
	Token   string `json:"token" binding:"required"`
}

// RegisterAsset returns the asset of a (chain, token) pair, registering it on first use
// POST /api/v1/assets
func (h *AssetHandler) RegisterAsset(c *gin.Context) {
	var req registerAssetRequest
	if !bindJSON(c, &req) {
		return
	}
	token, err := parseAddress("token", req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}
	asset, err := h.registry.RegisterOrGetAsset(c.Request.Context(), crosschain.ChainID(req.ChainID), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, asset)
}

// DeployAsset deploys the wrapped representation of a remote token (Admin only)
// POST /api/v1/admin/assets
func (h *AssetHandler) DeployAsset(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req struct {
		registerAssetRequest
		Name     string `json:"name" binding:"required"`
		Symbol   string `json:"symbol" binding:"required"`
		Decimals uint8  `json:"decimals"`
	}
	if !bindJSON(c, &req) {
		return
	}
	token, err := parseAddress("token", req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}
	asset, err := h.registry.DeployNewAsset(c.Request.Context(), caller, crosschain.ChainID(req.ChainID), token,
		entities.TokenMetadata{Name: req.Name, Symbol: req.Symbol, Decimals: req.Decimals})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, asset)
}

// UpdateAsset sets the limits of an asset (Admin only)
// PUT /api/v1/admin/assets/:id
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, err := parseHash("asset id", c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var req struct {
		MaxAmount       string `json:"maxAmount"`
		MinReservesBps  uint64 `json:"minReservesBps"`
		AmountThreshold string `json:"amountThreshold"`
	}
	if !bindJSON(c, &req) {
		return
	}
	input := usecases.UpdateAssetInput{MinReservesBps: req.MinReservesBps}
	if input.MaxAmount, err = parseAmount("maxAmount", req.MaxAmount); err != nil {
		response.Error(c, err)
		return
	}
	if input.AmountThreshold, err = parseAmount("amountThreshold", req.AmountThreshold); err != nil {
		response.Error(c, err)
		return
	}
	asset, err := h.registry.UpdateAsset(c.Request.Context(), caller, id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, asset)
}

// UpdateAssetFixedFee sets the fixed fee of an asset towards one chain (Admin only)
// PUT /api/v1/admin/assets/:id/fees/:chainId
func (h *AssetHandler) UpdateAssetFixedFee(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, err := parseHash("asset id", c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	chainID, err := parseChainID("chainId", c.Param("chainId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var req struct {
		FixedFee string `json:"fixedFee"`
	}
	if !bindJSON(c, &req) {
		return
	}
	fee, err := parseAmount("fixedFee", req.FixedFee)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.registry.UpdateAssetFixedFees(c.Request.Context(), caller, id, chainID, fee); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"debridgeId": id, "chainId": chainID, "fixedFee": fee})
}

// ListChains lists configured remote chains
// GET /api/v1/chains
func (h *AssetHandler) ListChains(c *gin.Context) {
	chains, err := h.registry.ListChains(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if chains == nil {
		chains = []*entities.ChainConfig{}
	}
	response.Success(c, http.StatusOK, gin.H{"chains": chains})
}

// UpdateChainSupport configures outbound support and fees of a chain (Admin only)
// PUT /api/v1/admin/chains/:chainId
func (h *AssetHandler) UpdateChainSupport(c *gin.Context) {
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
		IsSupported    bool   `json:"isSupported"`
		FixedNativeFee string `json:"fixedNativeFee"`
		TransferFeeBps uint64 `json:"transferFeeBps"`
		ChainType      string `json:"chainType"`
	}
	if !bindJSON(c, &req) {
		return
	}
	fee, err := parseAmount("fixedNativeFee", req.FixedNativeFee)
	if err != nil {
		response.Error(c, err)
		return
	}
	cfg, err := h.registry.UpdateChainSupport(c.Request.Context(), caller, usecases.UpdateChainSupportInput{
		ChainID:        chainID,
		IsSupported:    req.IsSupported,
		FixedNativeFee: fee,
		TransferFeeBps: req.TransferFeeBps,
		ChainType:      crosschain.ChainType(req.ChainType),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, cfg)
}

// SetChainDirection toggles inbound or outbound support of a chain (Admin only)
// PUT /api/v1/admin/chains/:chainId/direction
func (h *AssetHandler) SetChainDirection(c *gin.Context) {
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
		IsSupported bool `json:"isSupported"`
		IsChainFrom bool `json:"isChainFrom"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.registry.SetChainIDSupport(c.Request.Context(), caller, chainID, req.IsSupported, req.IsChainFrom); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"chainId": chainID, "isSupported": req.IsSupported, "isChainFrom": req.IsChainFrom})
}
