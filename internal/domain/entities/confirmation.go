package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Oracle is a registered attester
type Oracle struct {
	Address   common.Address `json:"address"`
	IsValid   bool           `json:"isValid"`
	Required  bool           `json:"required"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Confirmation is one oracle's attestation of a submission under an aggregator version
type Confirmation struct {
	AggregatorVersion uint64         `json:"aggregatorVersion"`
	SubmissionID      common.Hash    `json:"submissionId"`
	Oracle            common.Address `json:"oracle"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// AggregatorVersion is a legacy aggregator activation record
type AggregatorVersion struct {
	Version   uint64    `json:"version"`
	IsValid   bool      `json:"isValid"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ConfirmationParams is the amount-tiered confirmation policy
type ConfirmationParams struct {
	MinConfirmations      uint64 `json:"minConfirmations"`
	ConfirmationThreshold uint64 `json:"confirmationThreshold"`
	RequiredOraclesCount  uint64 `json:"requiredOraclesCount"`
}

// ConfirmationParams returns the confirmation policy part of the settings
func (s *ProtocolSettings) ConfirmationParams() ConfirmationParams {
	return ConfirmationParams{
		MinConfirmations:      s.MinConfirmations,
		ConfirmationThreshold: s.ConfirmationThreshold,
		RequiredOraclesCount:  s.RequiredOraclesCount,
	}
}

// ConfirmationTally is what the policy is evaluated against
type ConfirmationTally struct {
	Count             uint64 `json:"count"`
	RequiredConfirmed uint64 `json:"requiredConfirmed"`
}

// ConfirmationSource selects where a claim takes its confirmation decision from.
type ConfirmationSource interface {
	isConfirmationSource()
}

// AggregatorSource reads stored confirmations of an aggregator version.
// Version 0 means the current one.
type AggregatorSource struct {
	Version uint64
}

// SignatureSource verifies a concatenated set of oracle signatures
type SignatureSource struct {
	Signatures []byte
}

func (AggregatorSource) isConfirmationSource() {}
func (SignatureSource) isConfirmationSource()  {}
