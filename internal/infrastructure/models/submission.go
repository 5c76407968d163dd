package models

import "time"

// SentSubmission is an outbound transfer initiated on this chain
type SentSubmission struct {
	SubmissionID    string `gorm:"type:varchar(66);primaryKey"`
	DebridgeID      string `gorm:"type:varchar(66);not null;index"`
	ChainIDFrom     uint64 `gorm:"not null"`
	ChainIDTo       uint64 `gorm:"not null;index"`
	Amount          string `gorm:"type:varchar(78);not null"`
	Receiver        string `gorm:"type:varchar(512);not null"`
	Nonce           uint64 `gorm:"not null"`
	Sender          string `gorm:"type:varchar(512);not null;index"`
	ExecutionFee    string `gorm:"type:varchar(78);not null;default:'0'"`
	Flags           uint64 `gorm:"not null;default:0"`
	FallbackAddress string `gorm:"type:varchar(512)"`
	Data            []byte
	NativeSender    string `gorm:"type:varchar(512)"`
	ReferralCode    uint32
	NativeFee       string `gorm:"type:varchar(78);not null;default:'0'"`
	AssetFee        string `gorm:"type:varchar(78);not null;default:'0'"`
	CreatedAt       time.Time
}

func (SentSubmission) TableName() string {
	return "sent_submissions"
}

// ClaimedSubmission is the append-only used set of inbound transfers
type ClaimedSubmission struct {
	SubmissionID    string `gorm:"type:varchar(66);primaryKey"`
	DebridgeID      string `gorm:"type:varchar(66);not null;index"`
	ChainIDFrom     uint64 `gorm:"not null"`
	ChainIDTo       uint64 `gorm:"not null"`
	Amount          string `gorm:"type:varchar(78);not null"`
	Receiver        string `gorm:"type:varchar(512);not null;index"`
	Nonce           uint64 `gorm:"not null"`
	ExecutionFee    string `gorm:"type:varchar(78);not null;default:'0'"`
	Flags           uint64 `gorm:"not null;default:0"`
	FallbackAddress string `gorm:"type:varchar(512)"`
	Data            []byte
	NativeSender    string `gorm:"type:varchar(512)"`
	Submitter       string `gorm:"type:varchar(512)"`
	CreatedAt       time.Time
}

func (ClaimedSubmission) TableName() string {
	return "claimed_submissions"
}

type BlockedSubmission struct {
	SubmissionID string `gorm:"type:varchar(66);primaryKey"`
	IsBlocked    bool   `gorm:"not null"`
	UpdatedAt    time.Time
}

func (BlockedSubmission) TableName() string {
	return "blocked_submissions"
}

type SenderNonce struct {
	Sender    string `gorm:"type:varchar(512);primaryKey"`
	Nonce     uint64 `gorm:"not null"`
	UpdatedAt time.Time
}

func (SenderNonce) TableName() string {
	return "sender_nonces"
}
