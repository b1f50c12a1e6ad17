package lattice_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/breeze/pkg/crs"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/protocols/pvss"
	"github.com/luxfi/breeze/protocols/pvss/lattice"
)

// mersenne61 is prime, giving ReconstructPoint's modular inverses a
// well-defined field to work in.
var mersenne61, _ = new(big.Int).SetString("2305843009213693951", 10)

const (
	testLogQ = 61
	testN    = 8
)

func setup(t *testing.T, threshold int) *crs.CRS {
	t.Helper()
	return setupDepth(t, threshold, 1)
}

// setupDepth builds a lattice CRS with an explicit recursion depth, so
// tests can exercise the fold across more than one level.
func setupDepth(t *testing.T, threshold, depth int) *crs.CRS {
	t.Helper()
	lat, err := crs.GenerateLattice(crs.LatticeParams{
		Q: mersenne61, LogQ: testLogQ, G: 1, N: testN,
		M: (threshold + 1) * testLogQ, Kappa: 4, R: 2, L: depth,
	})
	require.NoError(t, err)
	return &crs.CRS{Variant: crs.VariantLattice, Lattice: lat}
}

func TestLatticeDealProducesVerifiableShares(t *testing.T) {
	const threshold = 1 // n=4, f=1
	c := setup(t, threshold)
	ids := []party.ID{1, 2, 3, 4}
	k := lattice.New(nil)

	shares, commitment, roots, err := k.Deal(c, 1, ids, 2, threshold)
	require.NoError(t, err)
	require.NotNil(t, roots)
	require.Len(t, roots.Roots, 2)
	require.Len(t, shares, len(ids))

	for _, s := range shares {
		require.Equal(t, commitment, s.Commitment)
		require.True(t, k.Verify(c, s.Recipient, threshold, s), "share for party %d must verify", s.Recipient)
	}
}

func TestLatticeDealRecursesAcrossMultipleDepths(t *testing.T) {
	const threshold = 1 // n=4, f=1
	c := setupDepth(t, threshold, 3)
	ids := []party.ID{1, 2, 3, 4}
	k := lattice.New(nil)

	shares, commitment, roots, err := k.Deal(c, 1, ids, 2, threshold)
	require.NoError(t, err)
	require.NotNil(t, roots)
	require.Len(t, roots.Roots, 2)

	for _, s := range shares {
		require.Equal(t, commitment, s.Commitment)
		require.True(t, k.Verify(c, s.Recipient, threshold, s), "share for party %d must verify at depth 3", s.Recipient)
	}
}

func TestLatticeVerifyRejectsWrongParty(t *testing.T) {
	const threshold = 1
	c := setup(t, threshold)
	ids := []party.ID{1, 2, 3, 4}
	k := lattice.New(nil)

	shares, _, _, err := k.Deal(c, 1, ids, 2, threshold)
	require.NoError(t, err)

	// Party 2's share, verified under party 3's identity, must fail: the
	// evaluation point and the share-tree inclusion index both disagree.
	require.False(t, k.Verify(c, 3, threshold, shares[1]))
}

func TestLatticeVerifyRejectsTamperedValue(t *testing.T) {
	const threshold = 1
	c := setup(t, threshold)
	ids := []party.ID{1, 2, 3, 4}
	k := lattice.New(nil)

	shares, _, _, err := k.Deal(c, 1, ids, 2, threshold)
	require.NoError(t, err)

	tampered := shares[0]
	tampered.Values = append([]pvss.Value(nil), tampered.Values...)
	tampered.Values[0] = append([]byte(nil), tampered.Values[0]...)
	tampered.Values[0] = append(tampered.Values[0], 0xff)

	require.False(t, k.Verify(c, tampered.Recipient, threshold, tampered))
}

func TestLatticeReconstructAgreesAcrossDistinctQuorums(t *testing.T) {
	const threshold = 1
	c := setup(t, threshold)
	ids := []party.ID{1, 2, 3, 4}
	k := lattice.New(nil)

	shares, _, _, err := k.Deal(c, 1, ids, 3, threshold)
	require.NoError(t, err)
	for _, s := range shares {
		require.True(t, k.Verify(c, s.Recipient, threshold, s))
	}

	const index = 0
	recA, err := k.ReconstructPoint(
		[]party.ID{shares[0].Recipient, shares[1].Recipient},
		[]pvss.Value{shares[0].Values[index], shares[1].Values[index]},
		mersenne61,
	)
	require.NoError(t, err)
	recB, err := k.ReconstructPoint(
		[]party.ID{shares[2].Recipient, shares[3].Recipient},
		[]pvss.Value{shares[2].Values[index], shares[3].Values[index]},
		mersenne61,
	)
	require.NoError(t, err)

	require.Equal(t, new(big.Int).SetBytes(recA).Mod(new(big.Int).SetBytes(recA), mersenne61),
		new(big.Int).SetBytes(recB).Mod(new(big.Int).SetBytes(recB), mersenne61))
	require.Equal(t, k.SecretToRandom(recA), k.SecretToRandom(recB))
}

func TestReconstructPointRequiresModulus(t *testing.T) {
	k := lattice.New(nil)
	_, err := k.ReconstructPoint([]party.ID{1, 2}, []pvss.Value{{1}, {2}}, nil)
	require.Error(t, err)
}
