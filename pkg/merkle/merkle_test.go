package merkle_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/breeze/pkg/merkle"
)

func leaves(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte{byte(i), byte(i >> 8)}
	}
	return out
}

func TestRoundTripAllLeafCounts(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 7, 8, 16, 17} {
		ls := leaves(n)
		tree := merkle.New(ls)
		root := tree.Root()
		for i, l := range ls {
			proof, ok := tree.GenerateProof(i)
			require.True(t, ok, "n=%d i=%d", n, i)
			require.True(t, merkle.VerifyProof(l, proof, root), "n=%d i=%d", n, i)
		}
	}
}

func TestVerifyProofRejectsWrongLeaf(t *testing.T) {
	ls := leaves(5)
	tree := merkle.New(ls)
	root := tree.Root()
	proof, ok := tree.GenerateProof(2)
	require.True(t, ok)
	require.False(t, merkle.VerifyProof([]byte("not-a-leaf"), proof, root))
}

func TestVerifyProofRejectsWrongRoot(t *testing.T) {
	ls := leaves(4)
	tree := merkle.New(ls)
	proof, ok := tree.GenerateProof(0)
	require.True(t, ok)
	var bogus merkle.Root
	require.False(t, merkle.VerifyProof(ls[0], proof, bogus))
}

func TestEmptyTreeHasStableRoot(t *testing.T) {
	a := merkle.New(nil).Root()
	b := merkle.New([][]byte{}).Root()
	require.Equal(t, a, b)
}

func TestGenerateProofOutOfRange(t *testing.T) {
	tree := merkle.New(leaves(3))
	_, ok := tree.GenerateProof(-1)
	require.False(t, ok)
	_, ok = tree.GenerateProof(3)
	require.False(t, ok)
}
