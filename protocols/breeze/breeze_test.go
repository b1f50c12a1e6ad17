package breeze_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/pkg/wire"
	"github.com/luxfi/breeze/protocols/pvss"
	"github.com/luxfi/breeze/protocols/pvss/dl"
)

// testShareMsg mirrors breeze's unexported shareMsg field-for-field so a
// test can hand-craft a Share wire payload without reaching into the
// package's internals.
type testShareMsg struct {
	Epoch  party.Epoch
	Dealer party.ID
	Share  pvss.Share
}

var _ = Describe("Breeze share/reply/confirm pipeline", func() {
	It("four honest dealers each produce a certificate with a quorum of signers", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		net := newTestNetwork(ctx, 4, 2)

		for _, id := range net.ids {
			net.wirings[id].BeginEpoch(1)
		}
		for _, id := range net.ids {
			Eventually(net.wirings[id].Certificates(), 2*time.Second, 10*time.Millisecond).Should(Receive(
				WithTransform(func(c model.BreezeCertificate) int { return len(c.Signatures) }, BeNumerically(">=", 3)),
			))
		}
	})

	It("rejects a malformed share from a Byzantine dealer while honest dealers still certify", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		net := newTestNetwork(ctx, 4, 2)

		byzantine := party.ID(1)
		honest := []party.ID{2, 3, 4}

		kernel := dl.New(nil)
		shares, _, _, err := kernel.Deal(net.crs, 1, net.ids, net.batchSize, net.threshold)
		Expect(err).NotTo(HaveOccurred())

		selfPub := net.secrets[byzantine].ActOnBase().Bytes()
		for _, share := range shares {
			if share.Recipient == byzantine {
				continue
			}
			tampered := share
			tampered.Values = append([]pvss.Value(nil), share.Values...)
			tampered.Values[0] = append([]byte(nil), share.Values[0]...)
			tampered.Values[0][0] ^= 0xff

			payload, err := wire.EncodeBreeze(selfPub, wire.TagShare, testShareMsg{
				Epoch: 1, Dealer: byzantine, Share: tampered,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(net.wirings[tampered.Recipient].Dispatch(payload)).To(Succeed())
		}

		for _, id := range honest {
			net.wirings[id].BeginEpoch(1)
		}
		for _, id := range honest {
			Eventually(net.wirings[id].Certificates(), 2*time.Second, 10*time.Millisecond).Should(Receive(
				WithTransform(func(c model.BreezeCertificate) int { return len(c.Signatures) }, BeNumerically(">=", 3)),
			))
		}
		Consistently(net.wirings[byzantine].Certificates(), 200*time.Millisecond, 20*time.Millisecond).ShouldNot(Receive())
	})
})
