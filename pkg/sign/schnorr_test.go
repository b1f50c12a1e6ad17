package sign_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/breeze/pkg/math/curve"
	"github.com/luxfi/breeze/pkg/sign"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	secret, err := curve.RandomScalar()
	require.NoError(t, err)
	public := secret.ActOnBase()

	sig, err := sign.Sign(secret, []byte("epoch-7-commitment"))
	require.NoError(t, err)
	require.True(t, sign.Verify(public, []byte("epoch-7-commitment"), sig))
}

func TestVerifyRejectsWrongMessage(t *testing.T) {
	secret, err := curve.RandomScalar()
	require.NoError(t, err)
	public := secret.ActOnBase()

	sig, err := sign.Sign(secret, []byte("msg-a"))
	require.NoError(t, err)
	require.False(t, sign.Verify(public, []byte("msg-b"), sig))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	secret, err := curve.RandomScalar()
	require.NoError(t, err)
	other, err := curve.RandomScalar()
	require.NoError(t, err)

	sig, err := sign.Sign(secret, []byte("msg"))
	require.NoError(t, err)
	require.False(t, sign.Verify(other.ActOnBase(), []byte("msg"), sig))
}

func TestSignatureBytesRoundTrip(t *testing.T) {
	secret, err := curve.RandomScalar()
	require.NoError(t, err)
	sig, err := sign.Sign(secret, []byte("msg"))
	require.NoError(t, err)

	decoded, err := sign.FromBytes(sig.Bytes())
	require.NoError(t, err)
	require.True(t, sign.Verify(secret.ActOnBase(), []byte("msg"), decoded))
}
