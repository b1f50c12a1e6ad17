package breeze_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/protocols/breeze"
)

var _ = Describe("Breeze reconstruction", func() {
	It("every verifier reconstructs the same beacon value for (epoch, index)", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		net := newTestNetwork(ctx, 4, 2)

		for _, id := range net.ids {
			net.wirings[id].BeginEpoch(1)
		}
		digestSet := make([]model.DealerCommitment, 0, len(net.ids))
		for _, id := range net.ids {
			var cert model.BreezeCertificate
			Eventually(net.wirings[id].Certificates(), 2*time.Second, 10*time.Millisecond).Should(Receive(&cert))
			digestSet = append(digestSet, model.DealerCommitment{Dealer: id, Commitment: cert.Commitment})
		}

		req := model.ReconRequest{Epoch: 1, Index: party.Index(1), DigestSet: digestSet}
		for _, id := range net.ids {
			net.wirings[id].Reconstruct(req)
		}

		var first model.RandomNum
		for i, id := range net.ids {
			var got struct{ Epoch party.Epoch; Index party.Index; Value model.RandomNum }
			Eventually(net.wirings[id].Reconstructed(), 2*time.Second, 10*time.Millisecond).Should(Receive(&got))
			Expect(got.Epoch).To(Equal(party.Epoch(1)))
			Expect(got.Index).To(Equal(party.Index(1)))
			if i == 0 {
				first = got.Value
			} else {
				Expect(got.Value).To(Equal(first))
			}
		}
	})
})
