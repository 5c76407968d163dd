package models

import "time"

type Oracle struct {
	Address   string `gorm:"type:varchar(42);primaryKey"`
	IsValid   bool   `gorm:"not null"`
	Required  bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Oracle) TableName() string {
	return "oracles"
}

// Confirmation rows are unique per (aggregator version, submission, oracle)
type Confirmation struct {
	AggregatorVersion uint64 `gorm:"primaryKey;autoIncrement:false"`
	SubmissionID      string `gorm:"type:varchar(66);primaryKey"`
	Oracle            string `gorm:"type:varchar(42);primaryKey"`
	CreatedAt         time.Time
}

func (Confirmation) TableName() string {
	return "confirmations"
}

type AggregatorVersion struct {
	Version   uint64 `gorm:"primaryKey;autoIncrement:false"`
	IsValid   bool   `gorm:"not null"`
	UpdatedAt time.Time
}

func (AggregatorVersion) TableName() string {
	return "aggregator_versions"
}
