package models

import "time"

type TokenBalance struct {
	Token     string `gorm:"type:varchar(512);primaryKey"`
	Holder    string `gorm:"type:varchar(512);primaryKey"`
	Amount    string `gorm:"type:varchar(78);not null;default:'0'"`
	UpdatedAt time.Time
}

func (TokenBalance) TableName() string {
	return "token_balances"
}

type RoleAssignment struct {
	Address   string `gorm:"type:varchar(512);primaryKey"`
	Role      string `gorm:"type:varchar(32);primaryKey"`
	CreatedAt time.Time
}

func (RoleAssignment) TableName() string {
	return "role_assignments"
}
