package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"bridge-gate.backend/pkg/crosschain"
)

// OrderTakeStatus is the destination-side state of an order
type OrderTakeStatus string

const (
	OrderStatusNotSet     OrderTakeStatus = "NOT_SET"
	OrderStatusFulfilled  OrderTakeStatus = "FULFILLED"
	OrderStatusSentUnlock OrderTakeStatus = "SENT_UNLOCK"
	OrderStatusCancelled  OrderTakeStatus = "CANCELLED"
	OrderStatusSentCancel OrderTakeStatus = "SENT_CANCEL"
)

// OrderTakeState is created on first fulfillment or cancellation and only moves forward
type OrderTakeState struct {
	OrderID           common.Hash        `json:"orderId"`
	Status            OrderTakeStatus    `json:"status"`
	GiveChainID       crosschain.ChainID `json:"giveChainId"`
	TakeAmount        *uint256.Int       `json:"takeAmount,omitempty"`
	UnlockAuthority   crosschain.Address `json:"unlockAuthority,omitempty"`
	Canceler          crosschain.Address `json:"canceler,omitempty"`
	CancelBeneficiary crosschain.Address `json:"cancelBeneficiary,omitempty"`
	Unlocker          crosschain.Address `json:"unlocker,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// OrderTakePatch is the accumulated discount on an order's take amount
type OrderTakePatch struct {
	OrderID    common.Hash  `json:"orderId"`
	Subtrahend *uint256.Int `json:"subtrahend"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// AuthorizedSrcContract is the source-chain order contract trusted to relay patches
type AuthorizedSrcContract struct {
	ChainID   crosschain.ChainID `json:"chainId"`
	Address   crosschain.Address `json:"address"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
