package crosschain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// ChainID identifies a chain. Encoded as uint256 wherever it is hashed.
type ChainID uint64

var (
	bytes32Type, _ = abi.NewType("bytes32", "", nil)
	uint256Type, _ = abi.NewType("uint256", "", nil)
	bytesType, _   = abi.NewType("bytes", "", nil)

	submissionArgs = abi.Arguments{
		{Type: bytes32Type}, // debridgeId
		{Type: uint256Type}, // chainIdFrom
		{Type: uint256Type}, // chainIdTo
		{Type: uint256Type}, // amount
		{Type: bytesType},   // receiver
		{Type: uint256Type}, // nonce
	}
	submissionWithAutoArgs = append(append(abi.Arguments{}, submissionArgs...), abi.Argument{Type: bytes32Type})

	autoParamsArgs = abi.Arguments{
		{Type: uint256Type}, // executionFee
		{Type: uint256Type}, // flags
		{Type: bytesType},   // fallbackAddress
		{Type: bytesType},   // data
		{Type: bytesType},   // nativeSender
	}
)

var ErrNilAmount = errors.New("amount is required")

// AutoParams carries the optional external-call extension of a submission
type AutoParams struct {
	ExecutionFee    *uint256.Int
	Flags           uint64
	FallbackAddress Address
	Data            []byte
	NativeSender    Address
}

// IsEmpty reports whether the submission carries no auto params at all.
func (p *AutoParams) IsEmpty() bool {
	if p == nil {
		return true
	}
	return (p.ExecutionFee == nil || p.ExecutionFee.IsZero()) &&
		p.Flags == 0 && len(p.FallbackAddress) == 0 && len(p.Data) == 0 && len(p.NativeSender) == 0
}

// Hash binds the auto params into the submission id.
func (p *AutoParams) Hash() (common.Hash, error) {
	fee := new(big.Int)
	if p.ExecutionFee != nil {
		fee = p.ExecutionFee.ToBig()
	}
	packed, err := autoParamsArgs.Pack(
		fee,
		new(big.Int).SetUint64(p.Flags),
		[]byte(p.FallbackAddress),
		p.Data,
		[]byte(p.NativeSender),
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack auto params: %w", err)
	}
	return crypto.Keccak256Hash(packed), nil
}

// SubmissionParams are the fields that identify one cross-chain transfer
type SubmissionParams struct {
	DebridgeID  common.Hash
	ChainIDFrom ChainID
	ChainIDTo   ChainID
	Amount      *uint256.Int
	Receiver    Address
	Nonce       uint64
	AutoParams  *AutoParams
}

// SubmissionID derives the globally unique transfer identifier.
// The same params produce the same id on the sending and the receiving chain.
func SubmissionID(p SubmissionParams) (common.Hash, error) {
	if p.Amount == nil {
		return common.Hash{}, ErrNilAmount
	}
	if p.Receiver.IsEmpty() {
		return common.Hash{}, ErrEmptyAddress
	}
	if len(p.Receiver) > MaxAddressLength {
		return common.Hash{}, ErrInvalidAddressLength
	}

	values := []interface{}{
		[32]byte(p.DebridgeID),
		new(big.Int).SetUint64(uint64(p.ChainIDFrom)),
		new(big.Int).SetUint64(uint64(p.ChainIDTo)),
		p.Amount.ToBig(),
		[]byte(p.Receiver),
		new(big.Int).SetUint64(p.Nonce),
	}
	args := submissionArgs
	if !p.AutoParams.IsEmpty() {
		autoHash, err := p.AutoParams.Hash()
		if err != nil {
			return common.Hash{}, err
		}
		values = append(values, [32]byte(autoHash))
		args = submissionWithAutoArgs
	}

	packed, err := args.Pack(values...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack submission: %w", err)
	}
	return crypto.Keccak256Hash(packed), nil
}

// BridgeAssetID derives the cross-chain asset identifier:
// keccak256(abi.encodePacked(uint256 chainId, bytes tokenAddress))
func BridgeAssetID(chainID ChainID, tokenAddress Address) common.Hash {
	chainWord := uint256.NewInt(uint64(chainID)).Bytes32()
	return crypto.Keccak256Hash(chainWord[:], tokenAddress)
}
