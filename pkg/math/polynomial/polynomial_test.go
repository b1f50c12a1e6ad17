package polynomial_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/breeze/pkg/math/curve"
	"github.com/luxfi/breeze/pkg/math/polynomial"
	"github.com/luxfi/breeze/pkg/party"
)

func TestEvaluateMatchesSecretAtZero(t *testing.T) {
	secret, err := curve.RandomScalar()
	require.NoError(t, err)
	poly, err := polynomial.New(3, secret)
	require.NoError(t, err)

	require.True(t, poly.Evaluate(curve.ScalarFromUint64(0)).Equal(secret))
}

func TestLagrangeReconstructsSecret(t *testing.T) {
	secret, err := curve.RandomScalar()
	require.NoError(t, err)
	const threshold = 2 // degree; needs threshold+1 shares
	poly, err := polynomial.New(threshold, secret)
	require.NoError(t, err)

	ids := []party.ID{1, 2, 3, 4}
	xs := polynomial.IDsToScalars(ids)[:threshold+1]
	ys := make([]*curve.Scalar, len(xs))
	for i, x := range xs {
		ys[i] = poly.Evaluate(x)
	}

	got, err := polynomial.ReconstructSecret(xs, ys)
	require.NoError(t, err)
	require.True(t, got.Equal(secret))
}

func TestLagrangeIdempotent(t *testing.T) {
	secret, err := curve.RandomScalar()
	require.NoError(t, err)
	poly, err := polynomial.New(1, secret)
	require.NoError(t, err)

	xs := polynomial.IDsToScalars([]party.ID{1, 2})
	ys := []*curve.Scalar{poly.Evaluate(xs[0]), poly.Evaluate(xs[1])}

	a, err := polynomial.ReconstructSecret(xs, ys)
	require.NoError(t, err)
	b, err := polynomial.ReconstructSecret(xs, ys)
	require.NoError(t, err)
	require.True(t, a.Equal(b))
}

func TestReconstructAnyThresholdSubsetAgrees(t *testing.T) {
	secret, err := curve.RandomScalar()
	require.NoError(t, err)
	const threshold = 1 // f=1, n=4
	poly, err := polynomial.New(threshold, secret)
	require.NoError(t, err)

	ids := []party.ID{1, 2, 3, 4}
	xs := polynomial.IDsToScalars(ids)
	ys := make([]*curve.Scalar, len(xs))
	for i, x := range xs {
		ys[i] = poly.Evaluate(x)
	}

	subsetA, err := polynomial.ReconstructSecret(xs[0:2], ys[0:2])
	require.NoError(t, err)
	subsetB, err := polynomial.ReconstructSecret(xs[2:4], ys[2:4])
	require.NoError(t, err)
	require.True(t, subsetA.Equal(secret))
	require.True(t, subsetB.Equal(secret))
}

func TestCommitCoefficientsErrorsOnShortCRS(t *testing.T) {
	poly, err := polynomial.NewRandom(3)
	require.NoError(t, err)
	_, err = poly.CommitCoefficients(nil)
	require.Error(t, err)
}
