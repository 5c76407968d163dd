package crosschain

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// SignatureLength is the size of one r||s||v secp256k1 signature.
const SignatureLength = 65

var ErrInvalidSignatureLength = errors.New("signatures length must be a multiple of 65")

// SignedHash returns the EIP-191 personal-message digest oracles sign for an id.
func SignedHash(id common.Hash) common.Hash {
	return common.BytesToHash(accounts.TextHash(id.Bytes()))
}

// SplitSignatures cuts a concatenated signature blob into 65-byte signatures.
func SplitSignatures(blob []byte) ([][]byte, error) {
	if len(blob)%SignatureLength != 0 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidSignatureLength, len(blob))
	}
	out := make([][]byte, 0, len(blob)/SignatureLength)
	for i := 0; i < len(blob); i += SignatureLength {
		sig := make([]byte, SignatureLength)
		copy(sig, blob[i:i+SignatureLength])
		out = append(out, sig)
	}
	return out, nil
}

// RecoverSigner returns the address that produced sig over the EIP-191 digest of id.
// v may be 0/1 or 27/28.
func RecoverSigner(id common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, ErrInvalidSignatureLength
	}
	normalized := make([]byte, SignatureLength)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	pub, err := crypto.SigToPub(SignedHash(id).Bytes(), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Sign produces an oracle-style signature (v = 27/28) over id.
func Sign(id common.Hash, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(SignedHash(id).Bytes(), key)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

// PermitHash is the digest a token holder signs to let spender pull amount once,
// with the holder's submission nonce, until deadline.
func PermitHash(token, spender Address, amount *uint256.Int, nonce, deadline uint64) common.Hash {
	amountWord := amount.Bytes32()
	nonceWord := uint256.NewInt(nonce).Bytes32()
	deadlineWord := uint256.NewInt(deadline).Bytes32()
	return crypto.Keccak256Hash(token, spender, amountWord[:], nonceWord[:], deadlineWord[:])
}
