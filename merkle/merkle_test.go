package merkle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func leavesOf(ss ...string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

func TestEmptyRoot(t *testing.T) {
	require.Equal(t, Root(nil), Root(leavesOf()[:0]))
	require.NotEmpty(t, Root(nil))
}

func TestRoundTripAllIndices(t *testing.T) {
	for n := 1; n <= 9; n++ {
		leaves := make([][]byte, n)
		for i := range leaves {
			leaves[i] = []byte{byte(i)}
		}
		root := Root(leaves)
		for i := range leaves {
			proof, err := GenerateProof(leaves, i)
			require.NoError(t, err)
			require.True(t, VerifyProof(proof), "n=%d i=%d", n, i)
			require.Equal(t, root, proof.Root)
		}
	}
}

func TestGenerateProofOutOfRange(t *testing.T) {
	_, err := GenerateProof(leavesOf("a", "b"), 5)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestVerifyProofRejectsTamperedSibling(t *testing.T) {
	leaves := leavesOf("a", "b", "c", "d")
	proof, err := GenerateProof(leaves, 2)
	require.NoError(t, err)
	require.True(t, VerifyProof(proof))

	proof.Siblings[0].Hash = "00"
	require.False(t, VerifyProof(proof))
}

func TestOddLevelDuplication(t *testing.T) {
	leaves := leavesOf("a", "b", "c")
	root := Root(leaves)
	proof, err := GenerateProof(leaves, 2)
	require.NoError(t, err)
	require.Equal(t, root, proof.Root)
	require.True(t, VerifyProof(proof))
}
