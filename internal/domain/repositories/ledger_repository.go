package repositories

import (
	"context"

	"github.com/holiman/uint256"
	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/pkg/crosschain"
)

// LedgerRepository stores token balances held on this chain
type LedgerRepository interface {
	BalanceOf(ctx context.Context, token, holder crosschain.Address) (*uint256.Int, error)
	SetBalance(ctx context.Context, token, holder crosschain.Address, amount *uint256.Int) error
	ListByHolder(ctx context.Context, holder crosschain.Address) ([]*entities.TokenBalance, error)
}

// RoleRepository stores protocol role assignments
type RoleRepository interface {
	HasRole(ctx context.Context, addr crosschain.Address, role entities.Role) (bool, error)
	Grant(ctx context.Context, addr crosschain.Address, role entities.Role) error
	Revoke(ctx context.Context, addr crosschain.Address, role entities.Role) error
	ListByRole(ctx context.Context, role entities.Role) ([]crosschain.Address, error)
}
