package crosschain

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ChainType represents the address family of a chain
type ChainType string

const (
	ChainTypeEVM ChainType = "EVM"
	ChainTypeSVM ChainType = "SVM"
)

const (
	EVMAddressLength = 20
	SVMAddressLength = 32
	// MaxAddressLength bounds generic chain addresses (1-byte length prefix in order encoding).
	MaxAddressLength = 255
)

var (
	ErrEmptyAddress         = errors.New("empty address")
	ErrInvalidAddressLength = errors.New("invalid address length")
	ErrInvalidAddressHex    = errors.New("invalid address hex")
)

// Address is a chain-agnostic, variable-length address.
type Address []byte

// ParseAddress decodes a 0x-prefixed (or bare) hex string
func ParseAddress(s string) (Address, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if raw == "" {
		return nil, ErrEmptyAddress
	}
	if len(raw)%2 != 0 {
		raw = "0" + raw
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddressHex, err)
	}
	return Address(b), nil
}

// MustParseAddress is ParseAddress for constants and tests
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromEVM converts a go-ethereum address
func FromEVM(a common.Address) Address {
	return Address(a.Bytes())
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a)
}

// Equal compares two addresses byte-wise; EVM addresses are case-insensitive by construction.
func (a Address) Equal(b Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (a Address) IsEmpty() bool {
	return len(a) == 0
}

// EVM returns the fixed 20-byte view. Only valid for EVM-format addresses.
func (a Address) EVM() (common.Address, error) {
	if len(a) != EVMAddressLength {
		return common.Address{}, fmt.Errorf("%w: want %d got %d", ErrInvalidAddressLength, EVMAddressLength, len(a))
	}
	return common.BytesToAddress(a), nil
}

// SVM returns the fixed 32-byte view of a Solana-style public key.
func (a Address) SVM() ([32]byte, error) {
	var out [32]byte
	if len(a) != SVMAddressLength {
		return out, fmt.Errorf("%w: want %d got %d", ErrInvalidAddressLength, SVMAddressLength, len(a))
	}
	copy(out[:], a)
	return out, nil
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*a = nil
		return nil
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// AddressLength returns the fixed address length of a chain type, 0 when variable.
func AddressLength(chainType ChainType) int {
	switch chainType {
	case ChainTypeEVM:
		return EVMAddressLength
	case ChainTypeSVM:
		return SVMAddressLength
	}
	return 0
}

// ValidateAddress checks that addr is well formed for the given chain type
func ValidateAddress(chainType ChainType, addr Address) error {
	if addr.IsEmpty() {
		return ErrEmptyAddress
	}
	if len(addr) > MaxAddressLength {
		return fmt.Errorf("%w: %d exceeds %d", ErrInvalidAddressLength, len(addr), MaxAddressLength)
	}
	if want := AddressLength(chainType); want != 0 && len(addr) != want {
		return fmt.Errorf("%w: %s address must be %d bytes, got %d", ErrInvalidAddressLength, chainType, want, len(addr))
	}
	return nil
}
