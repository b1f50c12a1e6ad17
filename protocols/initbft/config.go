// Package initbft implements the one-shot Certificate/Vote/Decided
// agreement used exclusively at epoch 0 to fix the genesis common core.
// It runs once per node, as a single actor goroutine owning its own
// state, following the same "bounded channel, single-owner state" shape
// protocols/breeze uses — the same round machinery pkg/protocol/threshold.go
// runs for MPC rounds, generalized here to a three-message terminating
// protocol instead of a fixed round sequence.
package initbft

import (
	"go.uber.org/zap"

	"github.com/luxfi/breeze/pkg/math/curve"
	"github.com/luxfi/breeze/pkg/network"
	"github.com/luxfi/breeze/pkg/party"
)

// inboxCapacity matches protocols/breeze's bounded-channel convention.
const inboxCapacity = 1000

// Config is everything one node's Init-BFT actor needs.
type Config struct {
	Self  party.ID
	IDs   []party.ID
	Addrs map[party.ID]string

	Secret     *curve.Scalar
	PublicKeys map[party.ID]*curve.Point

	Sender network.Sender
	Logger *zap.Logger
}

func (c Config) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func (c Config) quorum() int {
	_, q := party.FaultTolerance(len(c.IDs))
	return q
}

func (c Config) weakQuorum() int {
	return party.WeakQuorum(len(c.IDs))
}

func (c Config) allAddrsExceptSelf() []string {
	out := make([]string, 0, len(c.Addrs))
	for id, addr := range c.Addrs {
		if id != c.Self {
			out = append(out, addr)
		}
	}
	return out
}
