package dl_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/breeze/pkg/crs"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/protocols/pvss"
	"github.com/luxfi/breeze/protocols/pvss/dl"
)

func setup(t *testing.T, threshold int) *crs.CRS {
	t.Helper()
	dlCRS, err := crs.GenerateDL(threshold)
	require.NoError(t, err)
	return &crs.CRS{Variant: crs.VariantDL, DL: dlCRS}
}

func TestDealProducesVerifiableShares(t *testing.T) {
	const threshold = 1 // n=4, f=1
	c := setup(t, threshold)
	ids := []party.ID{1, 2, 3, 4}
	k := dl.New(nil)

	shares, commitment, roots, err := k.Deal(c, 1, ids, 2, threshold)
	require.NoError(t, err)
	require.Nil(t, roots)
	require.Len(t, shares, len(ids))

	for _, s := range shares {
		require.Equal(t, commitment, s.Commitment)
		require.True(t, k.Verify(c, s.Recipient, threshold, s), "share for party %d must verify", s.Recipient)
	}
}

func TestVerifyRejectsTamperedShare(t *testing.T) {
	const threshold = 1
	c := setup(t, threshold)
	ids := []party.ID{1, 2, 3, 4}
	k := dl.New(nil)

	shares, _, _, err := k.Deal(c, 1, ids, 2, threshold)
	require.NoError(t, err)

	tampered := shares[0]
	tampered.Values = append([]pvss.Value(nil), tampered.Values...)
	badValue := make([]byte, len(tampered.Values[0]))
	copy(badValue, tampered.Values[0])
	badValue[0] ^= 0xff
	tampered.Values[0] = badValue

	require.False(t, k.Verify(c, tampered.Recipient, threshold, tampered))
	// the other, untouched shares are unaffected.
	require.True(t, k.Verify(c, shares[1].Recipient, threshold, shares[1]))
}

func TestReconstructAgreesAcrossDistinctQuorums(t *testing.T) {
	const threshold = 1 // f+1 = 2 honest replies suffice
	c := setup(t, threshold)
	ids := []party.ID{1, 2, 3, 4}
	k := dl.New(nil)

	shares, _, _, err := k.Deal(c, 1, ids, 3, threshold)
	require.NoError(t, err)
	for _, s := range shares {
		require.True(t, k.Verify(c, s.Recipient, threshold, s))
	}

	const index = 0
	quorumA := []int{0, 1}
	quorumB := []int{2, 3}

	recA, err := k.ReconstructPoint(
		[]party.ID{shares[quorumA[0]].Recipient, shares[quorumA[1]].Recipient},
		[]pvss.Value{shares[quorumA[0]].Values[index], shares[quorumA[1]].Values[index]},
		nil,
	)
	require.NoError(t, err)
	recB, err := k.ReconstructPoint(
		[]party.ID{shares[quorumB[0]].Recipient, shares[quorumB[1]].Recipient},
		[]pvss.Value{shares[quorumB[0]].Values[index], shares[quorumB[1]].Values[index]},
		nil,
	)
	require.NoError(t, err)

	require.Equal(t, []byte(recA), []byte(recB))
	require.Equal(t, k.SecretToRandom(recA), k.SecretToRandom(recB))
}
