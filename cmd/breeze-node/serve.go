package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luxfi/breeze/pkg/config"
	"github.com/luxfi/breeze/pkg/crs"
	"github.com/luxfi/breeze/pkg/logging"
	"github.com/luxfi/breeze/pkg/math/curve"
	"github.com/luxfi/breeze/pkg/network"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/pkg/pool"
	"github.com/luxfi/breeze/protocols/breeze"
	"github.com/luxfi/breeze/protocols/coordinator"
	"github.com/luxfi/breeze/protocols/initbft"
	"github.com/luxfi/breeze/protocols/pvss"
	"github.com/luxfi/breeze/protocols/pvss/dl"
	"github.com/luxfi/breeze/protocols/pvss/lattice"
)

var (
	keyDir          string
	leadersPerEpoch int
	batchSize       int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local committee and print beacon/coin outputs",
	Long: `serve spawns every committee member's Breeze, Init-BFT, and DRB
Coordinator actors in this one process, wired over the in-memory network
façade (this module ships no real socket transport — spec's
reliable-broadcast layer is a black box assumed to live elsewhere). It
is a local devnet for exercising a committee and CRS file end to end,
not a participant in a multi-process deployment.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&keyDir, "key-dir", "", "directory of per-member key-pair files, named <id>.json (required)")
	serveCmd.Flags().IntVar(&leadersPerEpoch, "leaders-per-epoch", 1, "coin-producing leader slots per epoch (L)")
	serveCmd.Flags().IntVar(&batchSize, "batch-size", 2, "PVSS secrets dealt per epoch (B)")
	serveCmd.MarkFlagRequired("key-dir")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(debugLog)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	committee, err := config.LoadCommittee(defaultPath(committeeFile, "committee.json"))
	if err != nil {
		return err
	}
	c, err := crs.Load(defaultPath(crsFile, "crs.json"))
	if err != nil {
		return err
	}
	if leadersPerEpoch >= batchSize {
		return fmt.Errorf("leaders-per-epoch (%d) must be less than batch-size (%d)", leadersPerEpoch, batchSize)
	}

	f, _ := party.FaultTolerance(committee.N())
	ids := committee.IDs()

	breezeAddrs := make(map[party.ID]string, len(ids))
	bftAddrs := make(map[party.ID]string, len(ids))
	publics := make(map[party.ID]*curve.Point, len(ids))
	for _, m := range committee.Members {
		breezeAddrs[m.ID] = m.Address + "#breeze"
		bftAddrs[m.ID] = m.Address + "#bft"
		p, err := config.PublicKeyToCurvePoint(m.PublicKey)
		if err != nil {
			return fmt.Errorf("member %d public key: %w", m.ID, err)
		}
		publics[m.ID] = p
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	registry := network.NewRegistry()
	coords := make(map[party.ID]*coordinator.Coordinator, len(ids))

	for _, m := range committee.Members {
		kp, err := config.LoadKeyPair(filepath.Join(keyDir, fmt.Sprintf("%d.json", m.ID)))
		if err != nil {
			return fmt.Errorf("member %d key pair: %w", m.ID, err)
		}
		secret, _, err := kp.Curve()
		if err != nil {
			return fmt.Errorf("member %d key pair: %w", m.ID, err)
		}

		nodeLogger := logger.With(zap.Uint32("party", uint32(m.ID)))

		bCfg := breeze.Config{
			Self:       m.ID,
			IDs:        ids,
			Addrs:      breezeAddrs,
			Threshold:  f,
			BatchSize:  batchSize,
			CRS:        c,
			Kernel:     kernelFor(c, pool.New(0)),
			Secret:     secret,
			PublicKeys: publics,
			Pool:       pool.New(0),
			Sender:     registry.Sender(breezeAddrs[m.ID]),
			Logger:     nodeLogger,
		}
		w := breeze.Spawn(ctx, bCfg)
		registry.Register(breezeAddrs[m.ID], func(from string, payload []byte) { _ = w.Dispatch(payload) })

		bftCfg := initbft.Config{
			Self:       m.ID,
			IDs:        ids,
			Addrs:      bftAddrs,
			Secret:     secret,
			PublicKeys: publics,
			Sender:     registry.Sender(bftAddrs[m.ID]),
			Logger:     nodeLogger,
		}
		actor := initbft.New(bftCfg)
		registry.Register(bftAddrs[m.ID], func(from string, payload []byte) { _ = actor.Dispatch(payload) })
		go actor.Run(ctx)

		coord := coordinator.New(coordinator.Config{
			Self:               m.ID,
			IDs:                ids,
			MaxLeadersPerEpoch: leadersPerEpoch,
			BatchSize:          batchSize,
			Breeze:             w,
			InitBFT:            actor,
			Logger:             nodeLogger,
		})
		coords[m.ID] = coord
		go coord.Run(ctx)
	}

	// A real deployment commits Breeze certificates through a DAG-BFT
	// engine out of scope here; this devnet treats every emitted
	// certificate as immediately committed and fans it out to every
	// member's coordinator, the same shape of event a DAG commit would
	// produce.
	for _, m := range committee.Members {
		go func(self party.ID) {
			for {
				select {
				case <-ctx.Done():
					return
				case cert := <-coords[self].NewCertificates():
					for _, id := range ids {
						coords[id].Commit(cert)
					}
				}
			}
		}(m.ID)
	}

	leader := coords[ids[0]]
	logger.Info("serving local committee", zap.Int("members", len(ids)), zap.Int("fault_tolerance", f))
	round := uint64(1)
	for {
		leader.RequestCoin(round)
		select {
		case r := <-leader.CoinResults():
			if r.Err == nil {
				fmt.Printf("round %d coin: %x\n", r.Round, r.Value)
				round++
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func kernelFor(c *crs.CRS, p *pool.Pool) pvss.Kernel {
	if c.Variant == crs.VariantLattice {
		return lattice.New(p)
	}
	return dl.New(p)
}
