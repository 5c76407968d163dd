package entities

import (
	"time"

	"github.com/holiman/uint256"

	"bridge-gate.backend/pkg/crosschain"
)

// Role is a protocol capability held by an address
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleDefiController Role = "DEFI_CONTROLLER"
)

// RoleAssignment grants a role to an address
type RoleAssignment struct {
	Address   crosschain.Address `json:"address"`
	Role      Role               `json:"role"`
	CreatedAt time.Time          `json:"createdAt"`
}

// TokenBalance is a holder's balance in the gate's token ledger
type TokenBalance struct {
	Token     crosschain.Address `json:"token"`
	Holder    crosschain.Address `json:"holder"`
	Amount    *uint256.Int       `json:"amount"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
