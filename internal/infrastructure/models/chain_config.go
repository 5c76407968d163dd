package models

import "time"

type ChainConfig struct {
	ChainID         uint64 `gorm:"primaryKey;autoIncrement:false"`
	ChainType       string `gorm:"type:varchar(50);not null;default:'EVM'"`
	IsSupportedTo   bool   `gorm:"not null;default:false"`
	IsSupportedFrom bool   `gorm:"not null;default:false"`
	FixedNativeFee  string `gorm:"type:varchar(78);not null;default:'0'"`
	TransferFeeBps  uint64 `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ChainConfig) TableName() string {
	return "chain_configs"
}

// ProtocolSettings is a single-row table (ID = 1)
type ProtocolSettings struct {
	ID                    uint   `gorm:"primaryKey;autoIncrement:false"`
	Version               uint64 `gorm:"not null"`
	GlobalFixedNativeFee  string `gorm:"type:varchar(78);not null;default:'0'"`
	GlobalTransferFeeBps  uint64 `gorm:"not null;default:0"`
	FlashFeeBps           uint64 `gorm:"not null;default:0"`
	MinConfirmations      uint64 `gorm:"not null"`
	ConfirmationThreshold uint64 `gorm:"not null"`
	RequiredOraclesCount  uint64 `gorm:"not null;default:0"`
	AggregatorVersion     uint64 `gorm:"not null"`
	Paused                bool   `gorm:"not null;default:false"`
	UpdatedAt             time.Time
}

func (ProtocolSettings) TableName() string {
	return "protocol_settings"
}
