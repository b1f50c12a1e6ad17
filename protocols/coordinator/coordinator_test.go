package coordinator_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/protocols/coordinator"
)

var _ = Describe("DRB Coordinator", func() {
	It("returns InvalidIndex for an out-of-range index and NoCommonCore while genesis is undecided", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		h := newSingleNodeHarness(ctx, 1, 2)

		h.coord.RequestCoin(2) // round 2 -> epoch 0, index 2, but L=1
		var invalid coordinator.CoinResult
		Eventually(h.coord.CoinResults(), time.Second, 10*time.Millisecond).Should(Receive(&invalid))
		Expect(invalid.Round).To(Equal(uint64(2)))
		Expect(invalid.Err).To(MatchError(coordinator.ErrInvalidIndex))

		h.coord.RequestBeacon(0, 2) // beaconsPerEpoch is 1, so index 2 is out of range
		var invalidBeacon coordinator.BeaconResult
		Eventually(h.coord.BeaconResults(), time.Second, 10*time.Millisecond).Should(Receive(&invalidBeacon))
		Expect(invalidBeacon.Err).To(MatchError(coordinator.ErrInvalidIndex))

		// Round 1 -> epoch 0, index 1: a valid request, but this node never
		// observes enough peer certificates to cross Init-BFT's weak quorum,
		// so epoch 0 never decides and every poll keeps returning NoCommonCore.
		for i := 0; i < 5; i++ {
			h.coord.RequestCoin(1)
			var r coordinator.CoinResult
			Eventually(h.coord.CoinResults(), time.Second, 10*time.Millisecond).Should(Receive(&r))
			Expect(r.Err).To(MatchError(coordinator.ErrNoCommonCore))
		}
	})

	It("decides epoch 0 across a four-node committee, answers the same coin on every node, and answers a beacon request", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		net := newTestNetwork(ctx, 4, 1, 2)

		pollCoin := func(coord *coordinator.Coordinator, round uint64) model.RandomNum {
			var value model.RandomNum
			Eventually(func() error {
				coord.RequestCoin(round)
				select {
				case r := <-coord.CoinResults():
					if r.Err != nil {
						return r.Err
					}
					value = r.Value
					return nil
				case <-time.After(50 * time.Millisecond):
					return errors.New("awaiting common core")
				}
			}, 5*time.Second, 50*time.Millisecond).Should(Succeed())
			return value
		}

		var first model.RandomNum
		for i, id := range net.ids {
			v := pollCoin(net.coordinators[id], 1)
			if i == 0 {
				first = v
			} else {
				Expect(v).To(Equal(first))
			}
		}

		coord := net.coordinators[net.ids[0]]
		var beaconValue model.RandomNum
		Eventually(func() error {
			coord.RequestBeacon(0, 1)
			select {
			case r := <-coord.BeaconResults():
				if r.Err != nil {
					return r.Err
				}
				beaconValue = r.Value
				return nil
			case <-time.After(50 * time.Millisecond):
				return errors.New("awaiting beacon")
			}
		}, 5*time.Second, 50*time.Millisecond).Should(Succeed())
		_ = beaconValue
	})
})
