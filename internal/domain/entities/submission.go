package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"bridge-gate.backend/pkg/crosschain"
)

// Submission flags
const (
	FlagUnwrapETH            uint64 = 1 << 0
	FlagRevertIfExternalFail uint64 = 1 << 1
	FlagProxyWithSender      uint64 = 1 << 2
)

// HasFlag reports whether bit is set in flags
func HasFlag(flags, bit uint64) bool {
	return flags&bit != 0
}

// SubmissionStatus is the lifecycle state of a submission on this chain
type SubmissionStatus string

const (
	SubmissionStatusUninitiated SubmissionStatus = "UNINITIATED"
	SubmissionStatusPending     SubmissionStatus = "PENDING"
	SubmissionStatusClaimable   SubmissionStatus = "CLAIMABLE"
	SubmissionStatusClaimed     SubmissionStatus = "CLAIMED"
)

// Submission is the canonical transfer record correlated across chains.
type Submission struct {
	SubmissionID    common.Hash        `json:"submissionId"`
	DebridgeID      common.Hash        `json:"debridgeId"`
	ChainIDFrom     crosschain.ChainID `json:"chainIdFrom"`
	ChainIDTo       crosschain.ChainID `json:"chainIdTo"`
	Amount          *uint256.Int       `json:"amount"`
	Receiver        crosschain.Address `json:"receiver"`
	Nonce           uint64             `json:"nonce"`
	Sender          crosschain.Address `json:"sender,omitempty"`
	ExecutionFee    *uint256.Int       `json:"executionFee"`
	Flags           uint64             `json:"flags"`
	FallbackAddress crosschain.Address `json:"fallbackAddress,omitempty"`
	Data            []byte             `json:"externalCallData,omitempty"`
	NativeSender    crosschain.Address `json:"nativeSender,omitempty"`
	ReferralCode    uint32             `json:"referralCode,omitempty"`
	NativeFee       *uint256.Int       `json:"nativeFee,omitempty"`
	AssetFee        *uint256.Int       `json:"assetFee,omitempty"`
	Submitter       crosschain.Address `json:"submitter,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// AutoParams rebuilds the external-call extension used in the submission id
func (s *Submission) AutoParams() *crosschain.AutoParams {
	p := &crosschain.AutoParams{
		ExecutionFee:    s.ExecutionFee,
		Flags:           s.Flags,
		FallbackAddress: s.FallbackAddress,
		Data:            s.Data,
		NativeSender:    s.NativeSender,
	}
	if p.IsEmpty() {
		return nil
	}
	return p
}

// SubmissionState is the aggregated view of one submission id on this gate
type SubmissionState struct {
	SubmissionID  common.Hash      `json:"submissionId"`
	Status        SubmissionStatus `json:"status"`
	Blocked       bool             `json:"blocked"`
	Confirmations uint64           `json:"confirmations"`
	Sent          *Submission      `json:"sent,omitempty"`
	Claimed       *Submission      `json:"claimed,omitempty"`
}

// BlockedSubmission is the admin freeze flag of a submission
type BlockedSubmission struct {
	SubmissionID common.Hash `json:"submissionId"`
	IsBlocked    bool        `json:"isBlocked"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}
