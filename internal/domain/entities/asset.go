package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"bridge-gate.backend/pkg/crosschain"
)

// BpsDenominator is the basis-points scale used by every fee and reserve ratio
const BpsDenominator = 10000

// Asset is the per-chain record of one bridge asset, keyed by its BridgeAssetID.
// Balance includes LockedInStrategy; only the difference is liquid.
type Asset struct {
	DebridgeID        common.Hash        `json:"debridgeId"`
	ChainID           crosschain.ChainID `json:"chainId"`
	TokenAddress      crosschain.Address `json:"tokenAddress"`
	LocalTokenAddress crosschain.Address `json:"localTokenAddress"`
	IsNativeChain     bool               `json:"isNativeChain"`
	Name              string             `json:"name"`
	Symbol            string             `json:"symbol"`
	Decimals          uint8              `json:"decimals"`
	MaxAmount         *uint256.Int       `json:"maxAmount"`
	AmountThreshold   *uint256.Int       `json:"amountThreshold"`
	MinReservesBps    uint64             `json:"minReservesBps"`
	Balance           *uint256.Int       `json:"balance"`
	LockedInStrategy  *uint256.Int       `json:"lockedInStrategy"`
	CollectedFees     *uint256.Int       `json:"collectedFees"`
	WithdrawnFees     *uint256.Int       `json:"withdrawnFees"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// NewAsset returns a record with every counter initialised to zero
func NewAsset(id common.Hash, chainID crosschain.ChainID, token, localToken crosschain.Address, native bool) *Asset {
	return &Asset{
		DebridgeID:        id,
		ChainID:           chainID,
		TokenAddress:      token,
		LocalTokenAddress: localToken,
		IsNativeChain:     native,
		MaxAmount:         new(uint256.Int),
		AmountThreshold:   new(uint256.Int),
		Balance:           new(uint256.Int),
		LockedInStrategy:  new(uint256.Int),
		CollectedFees:     new(uint256.Int),
		WithdrawnFees:     new(uint256.Int),
	}
}

// Liquid is the part of the balance not deployed to strategies. Zero when the
// record is inconsistent rather than wrapping.
func (a *Asset) Liquid() *uint256.Int {
	liquid, underflow := new(uint256.Int).SubOverflow(a.Balance, a.LockedInStrategy)
	if underflow {
		return new(uint256.Int)
	}
	return liquid
}

// AssetChainFee is the fixed fee of an asset towards one destination chain
type AssetChainFee struct {
	DebridgeID common.Hash        `json:"debridgeId"`
	ChainID    crosschain.ChainID `json:"chainId"`
	FixedFee   *uint256.Int       `json:"fixedFee"`
}

// TokenMetadata describes an ERC-20 style token
type TokenMetadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}
