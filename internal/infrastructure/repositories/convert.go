package repositories

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"bridge-gate.backend/pkg/crosschain"
)

func hashKey(h common.Hash) string {
	return h.Hex()
}

func addressKey(a crosschain.Address) string {
	if a.IsEmpty() {
		return ""
	}
	return a.String()
}

func parseAddressColumn(s string) crosschain.Address {
	if s == "" {
		return nil
	}
	a, err := crosschain.ParseAddress(s)
	if err != nil {
		return nil
	}
	return a
}

func amountColumn(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

func parseAmountColumn(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount column %q: %w", s, err)
	}
	return v, nil
}
