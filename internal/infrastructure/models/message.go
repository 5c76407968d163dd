package models

import (
	"time"

	"github.com/google/uuid"
)

type CrossChainMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind      string    `gorm:"type:varchar(20);not null"`
	ChainIDTo uint64    `gorm:"not null"`
	Reference string    `gorm:"type:varchar(66);index"`
	Payload   string    `gorm:"type:text;not null"`
	Status    string    `gorm:"type:varchar(20);not null;index"`
	Attempts  int       `gorm:"not null;default:0"`
	LastError *string   `gorm:"type:text"`
	RelayedAt *time.Time
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (CrossChainMessage) TableName() string {
	return "cross_chain_messages"
}
