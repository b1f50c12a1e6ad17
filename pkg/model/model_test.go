package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/party"
)

func TestRandomNumFromBytesTruncatesLow16(t *testing.T) {
	canonical := make([]byte, 32)
	for i := range canonical {
		canonical[i] = byte(i + 1)
	}
	got := model.RandomNumFromBytes(canonical)
	require.Equal(t, canonical[:16], got[:])
}

func TestRandomNumFromBytesShortInput(t *testing.T) {
	got := model.RandomNumFromBytes([]byte{0xaa, 0xbb})
	require.Equal(t, byte(0xaa), got[0])
	require.Equal(t, byte(0xbb), got[1])
	require.Equal(t, byte(0), got[2])
}

func TestBreezeCertificateValidCountsDistinctSigners(t *testing.T) {
	cert := model.BreezeCertificate{
		Epoch:  1,
		Dealer: 2,
		Signatures: []model.Signature{
			{Signer: 1, Sig: []byte("a")},
			{Signer: 2, Sig: []byte("b")},
			{Signer: 2, Sig: []byte("b-dup")}, // duplicate signer must not count twice
			{Signer: 3, Sig: []byte("c")},
		},
	}
	require.True(t, cert.Valid(3))
	require.False(t, cert.Valid(4))
}

func TestCommonCoreDigestSetSortedByDealer(t *testing.T) {
	cc := model.NewCommonCore(5)
	cc.Add(model.BreezeCertificate{Epoch: 5, Dealer: 3})
	cc.Add(model.BreezeCertificate{Epoch: 5, Dealer: 1})
	cc.Add(model.BreezeCertificate{Epoch: 5, Dealer: 2})
	require.Equal(t, 3, cc.Len())

	set := cc.DigestSet()
	require.Len(t, set, 3)
	require.Equal(t, party.ID(1), set[0].Dealer)
	require.Equal(t, party.ID(2), set[1].Dealer)
	require.Equal(t, party.ID(3), set[2].Dealer)
}
