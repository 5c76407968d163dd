package crosschain

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// Offer is one leg of an order: an amount of a token on a chain
type Offer struct {
	ChainID      ChainID      `json:"chainId"`
	TokenAddress Address      `json:"tokenAddress"`
	Amount       *uint256.Int `json:"amount"`
}

// Order is a cross-chain intent: the maker gives `Give` on the source chain in exchange
// for `Take` delivered to ReceiverDst on the destination chain.
type Order struct {
	MakerOrderNonce             uint64  `json:"makerOrderNonce"`
	MakerSrc                    Address `json:"makerSrc"`
	Give                        Offer   `json:"give"`
	Take                        Offer   `json:"take"`
	ReceiverDst                 Address `json:"receiverDst"`
	GivePatchAuthoritySrc       Address `json:"givePatchAuthoritySrc"`
	OrderAuthorityAddressDst    Address `json:"orderAuthorityAddressDst"`
	AllowedTakerDst             Address `json:"allowedTakerDst,omitempty"`
	AllowedCancelBeneficiarySrc Address `json:"allowedCancelBeneficiarySrc,omitempty"`
	ExternalCall                []byte  `json:"externalCall,omitempty"`
}

var ErrInvalidOrder = errors.New("invalid order")

// Validate checks the structural constraints of the canonical encoding
func (o *Order) Validate() error {
	if o.Give.Amount == nil || o.Take.Amount == nil {
		return fmt.Errorf("%w: give and take amounts are required", ErrInvalidOrder)
	}
	required := map[string]Address{
		"makerSrc":                 o.MakerSrc,
		"give.tokenAddress":        o.Give.TokenAddress,
		"take.tokenAddress":        o.Take.TokenAddress,
		"receiverDst":              o.ReceiverDst,
		"givePatchAuthoritySrc":    o.GivePatchAuthoritySrc,
		"orderAuthorityAddressDst": o.OrderAuthorityAddressDst,
	}
	for name, addr := range required {
		if addr.IsEmpty() {
			return fmt.Errorf("%w: %s is empty", ErrInvalidOrder, name)
		}
		if len(addr) > MaxAddressLength {
			return fmt.Errorf("%w: %s too long", ErrInvalidOrder, name)
		}
	}
	if len(o.AllowedTakerDst) > MaxAddressLength || len(o.AllowedCancelBeneficiarySrc) > MaxAddressLength {
		return fmt.Errorf("%w: optional address too long", ErrInvalidOrder)
	}
	return nil
}

// OrderID hashes the canonical order encoding with keccak256.
func OrderID(o *Order) (common.Hash, error) {
	if err := o.Validate(); err != nil {
		return common.Hash{}, err
	}

	h := sha3.NewLegacyKeccak256()
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], o.MakerOrderNonce)
	h.Write(nonce[:])
	writeBytes(h, o.MakerSrc)
	writeOffer(h, o.Give)
	writeOffer(h, o.Take)
	writeBytes(h, o.ReceiverDst)
	writeBytes(h, o.GivePatchAuthoritySrc)
	writeBytes(h, o.OrderAuthorityAddressDst)
	writeOptionalBytes(h, o.AllowedTakerDst)
	writeOptionalBytes(h, o.AllowedCancelBeneficiarySrc)
	if len(o.ExternalCall) == 0 {
		h.Write([]byte{0})
	} else {
		h.Write([]byte{1})
		callHash := sha3.NewLegacyKeccak256()
		callHash.Write(o.ExternalCall)
		h.Write(callHash.Sum(nil))
	}

	var id common.Hash
	copy(id[:], h.Sum(nil))
	return id, nil
}

type byteWriter interface {
	Write(p []byte) (int, error)
}

func writeBytes(w byteWriter, b []byte) {
	w.Write([]byte{byte(len(b))})
	w.Write(b)
}

func writeOptionalBytes(w byteWriter, b []byte) {
	if len(b) == 0 {
		w.Write([]byte{0})
		return
	}
	w.Write([]byte{1})
	writeBytes(w, b)
}

func writeOffer(w byteWriter, offer Offer) {
	chain := uint256.NewInt(uint64(offer.ChainID)).Bytes32()
	w.Write(chain[:])
	writeBytes(w, offer.TokenAddress)
	amount := offer.Amount.Bytes32()
	w.Write(amount[:])
}
