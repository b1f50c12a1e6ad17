// Package coordinator implements the DRB Coordinator: the single task
// that schedules dealer rounds, routes coin and beacon
// reconstruction requests, memoizes results, and bridges the Breeze
// protocol actors and the Init-BFT genesis agreement to the (externally
// owned) DAG consensus engine. Like protocols/breeze and
// protocols/initbft, it owns all its bookkeeping privately inside one
// goroutine's select loop and touches it only there.
package coordinator

import (
	"go.uber.org/zap"

	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/protocols/breeze"
	"github.com/luxfi/breeze/protocols/initbft"
)

// requestCapacity bounds the coin/beacon/commit/gc request channels,
// matching the bounded-channel convention protocols/breeze and
// protocols/initbft already use.
const requestCapacity = 1000

// Config wires a Coordinator to the already-running Breeze actors and
// Init-BFT agreement for one node, plus the per-committee constants the
// coin/beacon index mapping needs.
type Config struct {
	Self party.ID
	IDs  []party.ID

	// MaxLeadersPerEpoch is L: indices 1..=L of each epoch's dealt batch
	// produce per-consensus-round coins.
	MaxLeadersPerEpoch int
	// BatchSize is B = L + beacons_per_epoch.
	BatchSize int

	Breeze  *breeze.Wiring
	InitBFT *initbft.Actor

	Logger *zap.Logger
}

func (c Config) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func (c Config) weakQuorum() int {
	return party.WeakQuorum(len(c.IDs))
}

func (c Config) beaconsPerEpoch() int {
	return c.BatchSize - c.MaxLeadersPerEpoch
}
