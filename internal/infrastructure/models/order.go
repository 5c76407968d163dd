package models

import "time"

type OrderTakeState struct {
	OrderID           string `gorm:"type:varchar(66);primaryKey"`
	Status            string `gorm:"type:varchar(20);not null;index"`
	GiveChainID       uint64 `gorm:"not null"`
	TakeAmount        string `gorm:"type:varchar(78)"`
	UnlockAuthority   string `gorm:"type:varchar(512)"`
	Canceler          string `gorm:"type:varchar(512)"`
	CancelBeneficiary string `gorm:"type:varchar(512)"`
	Unlocker          string `gorm:"type:varchar(512)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (OrderTakeState) TableName() string {
	return "order_take_states"
}

type OrderTakePatch struct {
	OrderID    string `gorm:"type:varchar(66);primaryKey"`
	Subtrahend string `gorm:"type:varchar(78);not null"`
	UpdatedAt  time.Time
}

func (OrderTakePatch) TableName() string {
	return "order_take_patches"
}

type AuthorizedSrcContract struct {
	ChainID   uint64 `gorm:"primaryKey;autoIncrement:false"`
	Address   string `gorm:"type:varchar(512);not null"`
	UpdatedAt time.Time
}

func (AuthorizedSrcContract) TableName() string {
	return "authorized_src_contracts"
}
