package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/interfaces/http/middleware"
	"bridge-gate.backend/internal/interfaces/http/response"
	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/utils"
)

// requireCaller returns the authenticated address or writes a 401
func requireCaller(c *gin.Context) (crosschain.Address, bool) {
	caller, ok := middleware.GetCallerAddress(c)
	if !ok {
		response.ErrorWithError(c, http.StatusUnauthorized, domainerrors.CodeUnauthorized, "caller address not found")
		return nil, false
	}
	return caller, true
}

// bindJSON binds the request body or writes a 400
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return false
	}
	return true
}

// parseAmount accepts a decimal or 0x-prefixed hex integer. Empty means nil.
func parseAmount(field, s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var (
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = uint256.FromHex(s)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return nil, domainerrors.BadRequest(fmt.Sprintf("invalid %s: %v", field, err))
	}
	return v, nil
}

func requireAmount(field, s string) (*uint256.Int, error) {
	v, err := parseAmount(field, s)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domainerrors.BadRequest(field + " is required")
	}
	return v, nil
}

func parseAddress(field, s string) (crosschain.Address, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	addr, err := crosschain.ParseAddress(s)
	if err != nil {
		return nil, domainerrors.BadRequest(fmt.Sprintf("invalid %s: %v", field, err))
	}
	return addr, nil
}

func parseEVMAddress(field, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, domainerrors.BadRequest("invalid " + field)
	}
	return common.HexToAddress(s), nil
}

func parseHash(field, s string) (common.Hash, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") || len(s) != 66 {
		return common.Hash{}, domainerrors.BadRequest("invalid " + field)
	}
	b := common.FromHex(s)
	if len(b) != common.HashLength {
		return common.Hash{}, domainerrors.BadRequest("invalid " + field)
	}
	return common.BytesToHash(b), nil
}

func parseChainID(field, s string) (crosschain.ChainID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, domainerrors.BadRequest("invalid " + field)
	}
	return crosschain.ChainID(v), nil
}

func paginationFromQuery(c *gin.Context) utils.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return utils.GetPaginationParams(page, limit)
}
