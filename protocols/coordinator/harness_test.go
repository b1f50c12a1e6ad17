package coordinator_test

import (
	"context"
	"fmt"

	"github.com/luxfi/breeze/pkg/crs"
	"github.com/luxfi/breeze/pkg/math/curve"
	"github.com/luxfi/breeze/pkg/network"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/pkg/pool"
	"github.com/luxfi/breeze/protocols/breeze"
	"github.com/luxfi/breeze/protocols/coordinator"
	"github.com/luxfi/breeze/protocols/initbft"
	"github.com/luxfi/breeze/protocols/pvss/dl"
)

// testNetwork wires n full nodes (Breeze actors + Init-BFT + Coordinator)
// over an in-memory registry. Breeze and Init-BFT gossip over distinct
// address namespaces in the same registry, mirroring how a real deployment
// would run them as separate topics on the same transport.
type testNetwork struct {
	ids          []party.ID
	wirings      map[party.ID]*breeze.Wiring
	initBFTs     map[party.ID]*initbft.Actor
	coordinators map[party.ID]*coordinator.Coordinator
	leaders      int
	batchSize    int
}

func newTestNetwork(ctx context.Context, n, leadersPerEpoch, batchSize int) *testNetwork {
	f, _ := party.FaultTolerance(n)
	dlCRS, err := crs.GenerateDL(f)
	if err != nil {
		panic(err)
	}
	c := &crs.CRS{Variant: crs.VariantDL, DL: dlCRS}

	net := &testNetwork{
		wirings:      make(map[party.ID]*breeze.Wiring, n),
		initBFTs:     make(map[party.ID]*initbft.Actor, n),
		coordinators: make(map[party.ID]*coordinator.Coordinator, n),
		leaders:      leadersPerEpoch,
		batchSize:    batchSize,
	}

	breezeAddrs := make(map[party.ID]string, n)
	bftAddrs := make(map[party.ID]string, n)
	secrets := make(map[party.ID]*curve.Scalar, n)
	publics := make(map[party.ID]*curve.Point, n)
	for i := 1; i <= n; i++ {
		id := party.ID(i)
		net.ids = append(net.ids, id)
		breezeAddrs[id] = fmt.Sprintf("party-%d-breeze", i)
		bftAddrs[id] = fmt.Sprintf("party-%d-bft", i)
		s, err := curve.RandomScalar()
		if err != nil {
			panic(err)
		}
		secrets[id] = s
		publics[id] = s.ActOnBase()
	}

	registry := network.NewRegistry()
	for _, id := range net.ids {
		id := id
		bCfg := breeze.Config{
			Self:       id,
			IDs:        net.ids,
			Addrs:      breezeAddrs,
			Threshold:  f,
			BatchSize:  batchSize,
			CRS:        c,
			Kernel:     dl.New(pool.New(2)),
			Secret:     secrets[id],
			PublicKeys: publics,
			Pool:       pool.New(2),
			Sender:     registry.Sender(breezeAddrs[id]),
		}
		w := breeze.Spawn(ctx, bCfg)
		net.wirings[id] = w
		registry.Register(breezeAddrs[id], func(from string, payload []byte) {
			_ = w.Dispatch(payload)
		})

		bftCfg := initbft.Config{
			Self:       id,
			IDs:        net.ids,
			Addrs:      bftAddrs,
			Secret:     secrets[id],
			PublicKeys: publics,
			Sender:     registry.Sender(bftAddrs[id]),
		}
		actor := initbft.New(bftCfg)
		net.initBFTs[id] = actor
		registry.Register(bftAddrs[id], func(from string, payload []byte) {
			_ = actor.Dispatch(payload)
		})
		go actor.Run(ctx)

		coord := coordinator.New(coordinator.Config{
			Self:               id,
			IDs:                net.ids,
			MaxLeadersPerEpoch: leadersPerEpoch,
			BatchSize:          batchSize,
			Breeze:             w,
			InitBFT:            actor,
		})
		net.coordinators[id] = coord
		go coord.Run(ctx)
	}

	// Simulate the DAG consensus engine: every node's own newly-proposed
	// epoch >= 1 certificate is treated as immediately committed and fed
	// back into every node's Coordinator, the same fan-out a real DAG
	// commit would produce.
	for _, id := range net.ids {
		id := id
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case cert := <-net.coordinators[id].NewCertificates():
					for _, recipient := range net.ids {
						net.coordinators[recipient].Commit(cert)
					}
				}
			}
		}()
	}

	return net
}

// singleNodeHarness spawns one node (party 1) of a notional four-party
// committee without ever spawning or connecting its peers, so party 1
// never observes enough distinct dealer certificates to cross Init-BFT's
// weak quorum: epoch 0 never decides. Used to exercise the NoCommonCore
// and InvalidIndex paths deterministically, without racing a real quorum.
type singleNodeHarness struct {
	coord *coordinator.Coordinator
}

func newSingleNodeHarness(ctx context.Context, leadersPerEpoch, batchSize int) *singleNodeHarness {
	ids := []party.ID{1, 2, 3, 4}
	f, _ := party.FaultTolerance(len(ids))
	dlCRS, err := crs.GenerateDL(f)
	if err != nil {
		panic(err)
	}
	c := &crs.CRS{Variant: crs.VariantDL, DL: dlCRS}

	secrets := make(map[party.ID]*curve.Scalar, len(ids))
	publics := make(map[party.ID]*curve.Point, len(ids))
	for _, id := range ids {
		s, err := curve.RandomScalar()
		if err != nil {
			panic(err)
		}
		secrets[id] = s
		publics[id] = s.ActOnBase()
	}

	self := party.ID(1)
	breezeAddrs := map[party.ID]string{self: "solo-breeze"}
	bftAddrs := map[party.ID]string{self: "solo-bft"}

	registry := network.NewRegistry()
	bCfg := breeze.Config{
		Self:       self,
		IDs:        ids,
		Addrs:      breezeAddrs,
		Threshold:  f,
		BatchSize:  batchSize,
		CRS:        c,
		Kernel:     dl.New(pool.New(2)),
		Secret:     secrets[self],
		PublicKeys: publics,
		Pool:       pool.New(2),
		Sender:     registry.Sender(breezeAddrs[self]),
	}
	w := breeze.Spawn(ctx, bCfg)
	registry.Register(breezeAddrs[self], func(from string, payload []byte) { _ = w.Dispatch(payload) })

	bftCfg := initbft.Config{
		Self:       self,
		IDs:        ids,
		Addrs:      bftAddrs,
		Secret:     secrets[self],
		PublicKeys: publics,
		Sender:     registry.Sender(bftAddrs[self]),
	}
	actor := initbft.New(bftCfg)
	registry.Register(bftAddrs[self], func(from string, payload []byte) { _ = actor.Dispatch(payload) })
	go actor.Run(ctx)

	coord := coordinator.New(coordinator.Config{
		Self:               self,
		IDs:                ids,
		MaxLeadersPerEpoch: leadersPerEpoch,
		BatchSize:          batchSize,
		Breeze:             w,
		InitBFT:            actor,
	})
	go coord.Run(ctx)

	return &singleNodeHarness{coord: coord}
}
