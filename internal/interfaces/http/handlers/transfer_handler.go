package handlers

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/interfaces/http/response"
	"bridge-gate.backend/internal/usecases"
	"bridge-gate.backend/pkg/crosschain"
)

// TransferHandler handles submission endpoints
type TransferHandler struct {
	transfers *usecases.TransferUsecase
	reserves  *usecases.ReserveUsecase
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(transfers *usecases.TransferUsecase, reserves *usecases.ReserveUsecase) *TransferHandler {
	return &TransferHandler{transfers: transfers, reserves: reserves}
}

// AutoParamsRequest is the external-call extension of a transfer
type AutoParamsRequest struct {
	ExecutionFee    string `json:"executionFee"`
	Flags           uint64 `json:"flags"`
	FallbackAddress string `json:"fallbackAddress"`
	Data            string `json:"data"`
	NativeSender    string `json:"nativeSender"`
}

func (r *AutoParamsRequest) toDomain() (*crosschain.AutoParams, error) {
	if r == nil {
		return nil, nil
	}
	fee, err := parseAmount("autoParams.executionFee", r.ExecutionFee)
	if err != nil {
		return nil, err
	}
	fallback, err := parseAddress("autoParams.fallbackAddress", r.FallbackAddress)
	if err != nil {
		return nil, err
	}
	nativeSender, err := parseAddress("autoParams.nativeSender", r.NativeSender)
	if err != nil {
		return nil, err
	}
	var data []byte
	if r.Data != "" {
		if data, err = hexutil.Decode(r.Data); err != nil {
			return nil, domainerrors.BadRequest("invalid autoParams.data")
		}
	}
	return &crosschain.AutoParams{
		ExecutionFee:    fee,
		Flags:           r.Flags,
		FallbackAddress: fallback,
		Data:            data,
		NativeSender:    nativeSender,
	}, nil
}

// SendRequest is the body of send and burn
type SendRequest struct {
	Token          string             `json:"token" binding:"required"`
	Amount         string             `json:"amount" binding:"required"`
	ChainIDTo      uint64             `json:"chainIdTo" binding:"required"`
	Receiver       string             `json:"receiver" binding:"required"`
	UseAssetFee    bool               `json:"useAssetFee"`
	ReferralCode   uint32             `json:"referralCode"`
	AttachedNative string             `json:"attachedNative"`
	AutoParams     *AutoParamsRequest `json:"autoParams"`
	Permit         *struct {
		Deadline  uint64 `json:"deadline"`
		Signature string `json:"signature"`
	} `json:"permit"`
}

func (r *SendRequest) toInput() (usecases.SendInput, error) {
	var in usecases.SendInput
	var err error
	if in.Token, err = parseAddress("token", r.Token); err != nil {
		return in, err
	}
	if in.Amount, err = requireAmount("amount", r.Amount); err != nil {
		return in, err
	}
	if in.Receiver, err = parseAddress("receiver", r.Receiver); err != nil {
		return in, err
	}
	if in.AttachedNative, err = parseAmount("attachedNative", r.AttachedNative); err != nil {
		return in, err
	}
	if in.AutoParams, err = r.AutoParams.toDomain(); err != nil {
		return in, err
	}
	if r.Permit != nil {
		sig, decErr := hexutil.Decode(r.Permit.Signature)
		if decErr != nil {
			return in, domainerrors.BadRequest("invalid permit.signature")
		}
		in.Permit = &usecases.Permit{Deadline: r.Permit.Deadline, Signature: sig}
	}
	in.ChainIDTo = crosschain.ChainID(r.ChainIDTo)
	in.UseAssetFee = r.UseAssetFee
	in.ReferralCode = r.ReferralCode
	return in, nil
}

// Send locks or burns tokens towards another chain
// POST /api/v1/transfers/send
func (h *TransferHandler) Send(c *gin.Context) {
	h.send(c, h.transfers.Send)
}

// Burn burns wrapped tokens towards their native chain
// POST /api/v1/transfers/burn
func (h *TransferHandler) Burn(c *gin.Context) {
	h.send(c, h.transfers.Burn)
}

func (h *TransferHandler) send(c *gin.Context, fn func(context.Context, crosschain.Address, usecases.SendInput) (*usecases.SendResult, error)) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req SendRequest
	if !bindJSON(c, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := fn(c.Request.Context(), caller, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// ClaimRequest is the body of a claim. Signatures, when present, are the concatenated
// 65-byte oracle signatures; otherwise stored confirmations of AggregatorVersion are
// used, or the oracle API is queried when FetchSignatures is set.
type ClaimRequest struct {
	DebridgeID        string             `json:"debridgeId" binding:"required"`
	ChainIDFrom       uint64             `json:"chainIdFrom" binding:"required"`
	Receiver          string             `json:"receiver" binding:"required"`
	Amount            string             `json:"amount" binding:"required"`
	Nonce             uint64             `json:"nonce"`
	AutoParams        *AutoParamsRequest `json:"autoParams"`
	Signatures        string             `json:"signatures"`
	AggregatorVersion uint64             `json:"aggregatorVersion"`
	FetchSignatures   bool               `json:"fetchSignatures"`
}

func (r *ClaimRequest) toInput() (usecases.ClaimInput, error) {
	var in usecases.ClaimInput
	var err error
	if in.DebridgeID, err = parseHash("debridgeId", r.DebridgeID); err != nil {
		return in, err
	}
	if in.Receiver, err = parseAddress("receiver", r.Receiver); err != nil {
		return in, err
	}
	if in.Amount, err = requireAmount("amount", r.Amount); err != nil {
		return in, err
	}
	if in.AutoParams, err = r.AutoParams.toDomain(); err != nil {
		return in, err
	}
	in.ChainIDFrom = crosschain.ChainID(r.ChainIDFrom)
	in.Nonce = r.Nonce

	if r.Signatures != "" {
		sigs, decErr := hexutil.Decode(r.Signatures)
		if decErr != nil {
			return in, domainerrors.ErrInvalidSignatures.Wrapf("%v", decErr)
		}
		in.Source = entities.SignatureSource{Signatures: sigs}
	} else if !r.FetchSignatures {
		in.Source = entities.AggregatorSource{Version: r.AggregatorVersion}
	}
	return in, nil
}

// Claim releases or mints a confirmed inbound transfer
// POST /api/v1/transfers/claim
func (h *TransferHandler) Claim(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req ClaimRequest
	if !bindJSON(c, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		response.Error(c, err)
		return
	}

	var result *usecases.ClaimResult
	if req.FetchSignatures && req.Signatures == "" {
		result, err = h.transfers.ClaimWithOracleSignatures(c.Request.Context(), caller, input)
	} else {
		result, err = h.transfers.Claim(c.Request.Context(), caller, input)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// GetSubmission reports the lifecycle state of a submission
// GET /api/v1/submissions/:id
func (h *TransferHandler) GetSubmission(c *gin.Context) {
	id, err := parseHash("submission id", c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	state, err := h.transfers.GetSubmissionState(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// ListSubmissions lists outbound submissions, optionally of one sender
// GET /api/v1/submissions?sender=0x...
func (h *TransferHandler) ListSubmissions(c *gin.Context) {
	sender, err := parseAddress("sender", c.Query("sender"))
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := paginationFromQuery(c)
	subs, total, err := h.transfers.ListSent(c.Request.Context(), sender, pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, subs, total, pagination)
}

type reserveRequest struct {
	Token  string `json:"token" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// RequestReserves moves liquid reserves to the calling DefiController
// POST /api/v1/reserves/request
func (h *TransferHandler) RequestReserves(c *gin.Context) {
	h.moveReserves(c, h.reserves.RequestReserves)
}

// ReturnReserves returns strategy funds to the gate
// POST /api/v1/reserves/return
func (h *TransferHandler) ReturnReserves(c *gin.Context) {
	h.moveReserves(c, h.reserves.ReturnReserves)
}

func (h *TransferHandler) moveReserves(c *gin.Context, fn func(context.Context, crosschain.Address, crosschain.Address, *uint256.Int) (*entities.Asset, error)) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req reserveRequest
	if !bindJSON(c, &req) {
		return
	}
	token, err := parseAddress("token", req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}
	amount, err := requireAmount("amount", req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	asset, err := fn(c.Request.Context(), caller, token, amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, asset)
}

// WithdrawFee sends the collected fees of an asset to the treasury
// POST /api/v1/admin/assets/:id/withdraw-fee
func (h *TransferHandler) WithdrawFee(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, err := parseHash("asset id", c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	amount, err := h.reserves.WithdrawFee(c.Request.Context(), caller, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"debridgeId": id, "withdrawn": amount})
}
