package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"bridge-gate.backend/pkg/crosschain"
)

// MessageKind identifies the outbound cross-chain message type
type MessageKind string

const (
	MessageKindSent   MessageKind = "SENT"
	MessageKindUnlock MessageKind = "UNLOCK"
	MessageKindCancel MessageKind = "CANCEL"
)

// MessageStatus tracks relay progress
type MessageStatus string

const (
	MessageStatusPending MessageStatus = "PENDING"
	MessageStatusRelayed MessageStatus = "RELAYED"
	MessageStatusFailed  MessageStatus = "FAILED"
)

// CrossChainMessage is an outbox entry written in the same transaction as the state
// change that produced it.
type CrossChainMessage struct {
	ID        uuid.UUID          `json:"id"`
	Kind      MessageKind        `json:"kind"`
	ChainIDTo crosschain.ChainID `json:"chainIdTo"`
	Reference string             `json:"reference"`
	Payload   json.RawMessage    `json:"payload"`
	Status    MessageStatus      `json:"status"`
	Attempts  int                `json:"attempts"`
	LastError null.String        `json:"lastError"`
	RelayedAt null.Time          `json:"relayedAt"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// UnlockMessage asks the give chain to release the maker's funds
type UnlockMessage struct {
	OrderIDs     []string           `json:"orderIds"`
	Beneficiary  crosschain.Address `json:"beneficiary"`
	ExecutionFee string             `json:"executionFee"`
	Unlocker     crosschain.Address `json:"unlocker"`
}

// CancelMessage asks the give chain to refund a cancelled order
type CancelMessage struct {
	OrderID      string             `json:"orderId"`
	Beneficiary  crosschain.Address `json:"beneficiary"`
	ExecutionFee string             `json:"executionFee"`
	Canceler     crosschain.Address `json:"canceler"`
}
