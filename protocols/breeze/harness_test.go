package breeze_test

import (
	"context"
	"fmt"

	"github.com/luxfi/breeze/pkg/crs"
	"github.com/luxfi/breeze/pkg/math/curve"
	"github.com/luxfi/breeze/pkg/network"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/pkg/pool"
	"github.com/luxfi/breeze/protocols/breeze"
	"github.com/luxfi/breeze/protocols/pvss/dl"
)

// testNetwork wires n nodes over an in-memory registry, all sharing one
// DL-variant CRS, mirroring a typical four-party committee.
type testNetwork struct {
	ids      []party.ID
	addrs    map[party.ID]string
	wirings  map[party.ID]*breeze.Wiring
	secrets  map[party.ID]*curve.Scalar
	crs      *crs.CRS
	threshold int
	batchSize int
}

func newTestNetwork(ctx context.Context, n, batchSize int) *testNetwork {
	f, _ := party.FaultTolerance(n)
	dlCRS, err := crs.GenerateDL(f)
	if err != nil {
		panic(err)
	}
	c := &crs.CRS{Variant: crs.VariantDL, DL: dlCRS}

	net := &testNetwork{
		addrs:     make(map[party.ID]string, n),
		wirings:   make(map[party.ID]*breeze.Wiring, n),
		secrets:   make(map[party.ID]*curve.Scalar, n),
		crs:       c,
		threshold: f,
		batchSize: batchSize,
	}
	publics := make(map[party.ID]*curve.Point, n)
	for i := 1; i <= n; i++ {
		id := party.ID(i)
		net.ids = append(net.ids, id)
		net.addrs[id] = fmt.Sprintf("party-%d", i)
		s, err := curve.RandomScalar()
		if err != nil {
			panic(err)
		}
		net.secrets[id] = s
		publics[id] = s.ActOnBase()
	}

	registry := network.NewRegistry()
	for _, id := range net.ids {
		id := id
		cfg := breeze.Config{
			Self:       id,
			IDs:        net.ids,
			Addrs:      net.addrs,
			Threshold:  f,
			BatchSize:  batchSize,
			CRS:        c,
			Kernel:     dl.New(pool.New(2)),
			Secret:     net.secrets[id],
			PublicKeys: publics,
			Pool:       pool.New(2),
			Sender:     registry.Sender(net.addrs[id]),
		}
		w := breeze.Spawn(ctx, cfg)
		net.wirings[id] = w
		registry.Register(net.addrs[id], func(from string, payload []byte) {
			_ = w.Dispatch(payload)
		})
	}
	return net
}
