package keys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	msg := []byte("hello ledger")
	sig, err := Sign(msg, kp.PrivateKey)
	require.NoError(t, err)
	require.True(t, Verify(msg, sig, kp.PublicKey))
}

func TestVerifyRejectsBitFlip(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	msg := []byte("hello ledger")
	sig, err := Sign(msg, kp.PrivateKey)
	require.NoError(t, err)

	flipped := append([]byte(nil), msg...)
	flipped[0] ^= 0x01
	require.False(t, Verify(flipped, sig, kp.PublicKey))

	sigBytes := []byte(sig)
	sigBytes[0] ^= 0x01
	require.False(t, Verify(msg, string(sigBytes), kp.PublicKey))
}

func TestVerifyNeverRaises(t *testing.T) {
	require.False(t, Verify([]byte("x"), "not-base64!!", "not-pem"))
	require.False(t, Verify([]byte("x"), "", ""))
}

func TestSignObjectVerifyObject(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	record := map[string]any{"b": 2, "a": 1}
	sig, err := SignObject(record, kp.PrivateKey)
	require.NoError(t, err)
	require.True(t, VerifyObject(record, sig, kp.PublicKey))

	reordered := map[string]any{"a": 1, "b": 2}
	require.True(t, VerifyObject(reordered, sig, kp.PublicKey))
}

func TestKeyPairFromSeedDeterministic(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	a, err := KeyPairFromSeed(seed)
	require.NoError(t, err)
	b, err := KeyPairFromSeed(seed)
	require.NoError(t, err)
	require.Equal(t, a.PublicKey, b.PublicKey)
	require.Equal(t, a.PrivateKey, b.PrivateKey)
}
