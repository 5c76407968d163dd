package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"bridge-gate.backend/pkg/crosschain"
)

// ChainConfig is the support and fee configuration for a remote chain.
// Zero fee values fall back to the global settings.
type ChainConfig struct {
	ChainID         crosschain.ChainID   `json:"chainId"`
	ChainType       crosschain.ChainType `json:"chainType"`
	IsSupportedTo   bool                 `json:"isSupportedTo"`
	IsSupportedFrom bool                 `json:"isSupportedFrom"`
	FixedNativeFee  *uint256.Int         `json:"fixedNativeFee"`
	TransferFeeBps  uint64               `json:"transferFeeBps"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// AddressType returns the chain's address family, EVM when unset
func (c *ChainConfig) AddressType() crosschain.ChainType {
	if c == nil || c.ChainType == "" {
		return crosschain.ChainTypeEVM
	}
	return c.ChainType
}

// ProtocolSettings holds the global, admin-set parameters. Version increases on
// every write so callers can tell which snapshot a computation used.
type ProtocolSettings struct {
	Version               uint64       `json:"version"`
	GlobalFixedNativeFee  *uint256.Int `json:"globalFixedNativeFee"`
	GlobalTransferFeeBps  uint64       `json:"globalTransferFeeBps"`
	FlashFeeBps           uint64       `json:"flashFeeBps"`
	MinConfirmations      uint64       `json:"minConfirmations"`
	ConfirmationThreshold uint64       `json:"confirmationThreshold"`
	RequiredOraclesCount  uint64       `json:"requiredOraclesCount"`
	AggregatorVersion     uint64       `json:"aggregatorVersion"`
	Paused                bool         `json:"paused"`
	UpdatedAt             time.Time    `json:"updatedAt"`
}

// DefaultProtocolSettings is what a fresh gate starts with
func DefaultProtocolSettings() *ProtocolSettings {
	return &ProtocolSettings{
		Version:               1,
		GlobalFixedNativeFee:  new(uint256.Int),
		MinConfirmations:      1,
		ConfirmationThreshold: 1,
		AggregatorVersion:     1,
	}
}

// AssetChainKey addresses a fixed fee by asset and destination
type AssetChainKey struct {
	DebridgeID common.Hash
	ChainID    crosschain.ChainID
}

// ProtocolConfig is an immutable snapshot of everything fee computation reads.
// It is built per operation and passed explicitly.
type ProtocolConfig struct {
	Settings       ProtocolSettings
	Chains         map[crosschain.ChainID]*ChainConfig
	AssetFixedFees map[AssetChainKey]*uint256.Int
}

// Version identifies the settings snapshot
func (c *ProtocolConfig) Version() uint64 {
	return c.Settings.Version
}
