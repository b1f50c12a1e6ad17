package initbft_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/protocols/initbft"
)

var _ = Describe("Init-BFT genesis agreement", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		fx     *fourPartyFixture
		sender *captureSender
		actor  *initbft.Actor
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		fx = newFourPartyFixture()
		sender = newCaptureSender()
		cfg := fx.config(party.ID(1), sender)
		actor = initbft.New(cfg)
		go actor.Run(ctx)
	})

	AfterEach(func() {
		cancel()
	})

	// Two proposed sets disagree, but one has >= f+1 occurrences among the
	// votes this node observed, so the conflict-resolution rule re-votes it
	// rather than the minority set.
	It("re-votes the majority-occurrence set when votes disagree 2-to-1", func() {
		setA := []model.DealerCommitment{{Dealer: 1}, {Dealer: 2}}
		setB := []model.DealerCommitment{{Dealer: 3}, {Dealer: 4}}

		Expect(actor.Dispatch(fx.encodeVote(2, setA))).To(Succeed())
		Expect(actor.Dispatch(fx.encodeVote(3, setB))).To(Succeed())
		Expect(actor.Dispatch(fx.encodeVote(1, setA))).To(Succeed())

		var rebroadcast []byte
		Eventually(sender.broadcasts, time.Second, 10*time.Millisecond).Should(Receive(&rebroadcast))
		msg, err := decodeVote(rebroadcast)
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Set).To(ConsistOf(setA))

		Expect(actor.Dispatch(fx.encodeVote(4, setA))).To(Succeed())

		Expect(actor.Dispatch(fx.encodeCertificate(dummyCertificate(0, 1, 3)))).To(Succeed())
		Expect(actor.Dispatch(fx.encodeCertificate(dummyCertificate(0, 2, 3)))).To(Succeed())

		var core model.CommonCore
		Eventually(actor.Decided(), time.Second, 10*time.Millisecond).Should(Receive(&core))
		Expect(core.Len()).To(Equal(2))
		_, hasDealer1 := core.Certificates[1]
		_, hasDealer2 := core.Certificates[2]
		Expect(hasDealer1).To(BeTrue())
		Expect(hasDealer2).To(BeTrue())
	})

	// No set has >= f+1 occurrences among the three observed votes (each
	// distinct), so the rule falls back to the lowest-ID sender's set —
	// here, party 1's own proposal.
	It("falls back to the lowest-ID sender's set when no majority occurrence exists", func() {
		setA := []model.DealerCommitment{{Dealer: 1}, {Dealer: 2}}
		setB := []model.DealerCommitment{{Dealer: 3}, {Dealer: 4}}
		setC := []model.DealerCommitment{{Dealer: 1}, {Dealer: 3}}

		Expect(actor.Dispatch(fx.encodeVote(2, setA))).To(Succeed())
		Expect(actor.Dispatch(fx.encodeVote(3, setB))).To(Succeed())
		Expect(actor.Dispatch(fx.encodeVote(1, setC))).To(Succeed())

		var rebroadcast []byte
		Eventually(sender.broadcasts, time.Second, 10*time.Millisecond).Should(Receive(&rebroadcast))
		msg, err := decodeVote(rebroadcast)
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Set).To(ConsistOf(setC))
	})
})
