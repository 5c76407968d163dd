package crosschain

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	id, err := SubmissionID(sampleParams())
	require.NoError(t, err)

	sig, err := Sign(id, key)
	require.NoError(t, err)
	require.Len(t, sig, SignatureLength)

	signer, err := RecoverSigner(id, sig)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), signer)

	// raw 0/1 recovery id is accepted too
	sig[64] -= 27
	signer, err = RecoverSigner(id, sig)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), signer)
}

func TestSplitSignatures(t *testing.T) {
	k1, _ := crypto.GenerateKey()
	k2, _ := crypto.GenerateKey()
	id, err := SubmissionID(sampleParams())
	require.NoError(t, err)

	s1, err := Sign(id, k1)
	require.NoError(t, err)
	s2, err := Sign(id, k2)
	require.NoError(t, err)

	parts, err := SplitSignatures(append(append([]byte{}, s1...), s2...))
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, s1, parts[0])
	assert.Equal(t, s2, parts[1])

	_, err = SplitSignatures(make([]byte, 64))
	assert.ErrorIs(t, err, ErrInvalidSignatureLength)
}

func TestPermitHash_BindsEveryField(t *testing.T) {
	token := MustParseAddress("0x00000000000000000000000000000000000000aa")
	spender := MustParseAddress("0x00000000000000000000000000000000000000bb")
	base := PermitHash(token, spender, uint256.NewInt(10), 0, 100)

	require.Equal(t, base, PermitHash(token, spender, uint256.NewInt(10), 0, 100))
	require.NotEqual(t, base, PermitHash(spender, token, uint256.NewInt(10), 0, 100))
	require.NotEqual(t, base, PermitHash(token, spender, uint256.NewInt(11), 0, 100))
	require.NotEqual(t, base, PermitHash(token, spender, uint256.NewInt(10), 1, 100))
	require.NotEqual(t, base, PermitHash(token, spender, uint256.NewInt(10), 0, 101))
}
