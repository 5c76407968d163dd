package usecases

import (
	"github.com/holiman/uint256"

	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
)

// Protocol arithmetic never wraps: overflow and underflow surface as named errors.

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

func checkedAdd(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(orZero(a), orZero(b))
	if overflow {
		return nil, domainerrors.ErrArithmeticOverflow
	}
	return sum, nil
}

func checkedSub(a, b *uint256.Int) (*uint256.Int, error) {
	diff, underflow := new(uint256.Int).SubOverflow(orZero(a), orZero(b))
	if underflow {
		return nil, domainerrors.ErrArithmeticUnderflow
	}
	return diff, nil
}

// bpsOf returns amount * bps / 10000, truncated toward zero
func bpsOf(amount *uint256.Int, bps uint64) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(orZero(amount), uint256.NewInt(bps))
	if overflow {
		return nil, domainerrors.ErrArithmeticOverflow
	}
	return product.Div(product, uint256.NewInt(entities.BpsDenominator)), nil
}
