// Package breeze implements the five per-epoch protocol actors: Share,
// Reply, Confirm, Reconstruct, Result. Each runs as its own goroutine
// over private state, communicating through bounded channels and the
// pkg/network reliable-sender façade — the same one-round-per-goroutine
// session shape pkg/protocol/threshold.go's MPC round machinery uses,
// generalized here from a fixed sequence of rounds to five long-lived,
// epoch-repeating roles.
package breeze

import (
	"math/big"

	"go.uber.org/zap"

	"github.com/luxfi/breeze/pkg/crs"
	"github.com/luxfi/breeze/pkg/math/curve"
	"github.com/luxfi/breeze/pkg/network"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/pkg/pool"
	"github.com/luxfi/breeze/protocols/pvss"
)

// inboxCapacity is the default bounded in-memory channel capacity for
// inter-actor communication.
const inboxCapacity = 1000

// Config is everything a node's breeze actors need, resolved once at
// startup from the committee file, key-pair file, and CRS file.
type Config struct {
	Self      party.ID
	IDs       []party.ID       // every committee member, ascending
	Addrs     map[party.ID]string
	Threshold int              // fault tolerance f
	BatchSize int              // B

	CRS    *crs.CRS
	Kernel pvss.Kernel

	Secret     *curve.Scalar          // this node's Schnorr signing secret
	PublicKeys map[party.ID]*curve.Point // every member's verification key

	Pool   *pool.Pool
	Sender network.Sender
	Logger *zap.Logger
}

func (c Config) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func (c Config) faultTolerance() int { return c.Threshold }

func (c Config) quorum() int {
	_, q := party.FaultTolerance(len(c.IDs))
	return q
}

func (c Config) weakQuorum() int {
	return party.WeakQuorum(len(c.IDs))
}

// latticeModulus returns the ring modulus Q for a lattice-variant CRS, or
// nil for the DL variant (whose reconstruct_point ignores modulus).
func (c Config) latticeModulus() *big.Int {
	if c.CRS != nil && c.CRS.Variant == crs.VariantLattice && c.CRS.Lattice != nil {
		return c.CRS.Lattice.Q
	}
	return nil
}

func (c Config) isLattice() bool {
	return c.CRS != nil && c.CRS.Variant == crs.VariantLattice
}
