package models

import "time"

// Asset amounts are stored as base-10 strings of uint256 values
type Asset struct {
	DebridgeID        string `gorm:"type:varchar(66);primaryKey"`
	ChainID           uint64 `gorm:"not null;index"`
	TokenAddress      string `gorm:"type:varchar(512);not null"`
	LocalTokenAddress string `gorm:"type:varchar(512);not null;index"`
	IsNativeChain     bool   `gorm:"not null"`
	Name              string `gorm:"type:varchar(255)"`
	Symbol            string `gorm:"type:varchar(64)"`
	Decimals          uint8
	MaxAmount         string `gorm:"type:varchar(78);not null;default:'0'"`
	AmountThreshold   string `gorm:"type:varchar(78);not null;default:'0'"`
	MinReservesBps    uint64 `gorm:"not null;default:0"`
	Balance           string `gorm:"type:varchar(78);not null;default:'0'"`
	LockedInStrategy  string `gorm:"type:varchar(78);not null;default:'0'"`
	CollectedFees     string `gorm:"type:varchar(78);not null;default:'0'"`
	WithdrawnFees     string `gorm:"type:varchar(78);not null;default:'0'"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Asset) TableName() string {
	return "bridge_assets"
}

type AssetChainFee struct {
	DebridgeID string `gorm:"type:varchar(66);primaryKey"`
	ChainID    uint64 `gorm:"primaryKey;autoIncrement:false"`
	FixedFee   string `gorm:"type:varchar(78);not null;default:'0'"`
	UpdatedAt  time.Time
}

func (AssetChainFee) TableName() string {
	return "asset_chain_fees"
}
