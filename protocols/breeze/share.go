package breeze

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/luxfi/breeze/pkg/network"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/pkg/wire"
)

// shareActor is the dealer role: on "begin epoch e" it deals a fresh
// batch, sends one per-party share, and (lattice only) broadcasts the
// per-index Merkle roots.
type shareActor struct {
	cfg     Config
	state   *SharedState
	begin   chan party.Epoch
	cancels *network.CancelBucket
}

func newShareActor(cfg Config, state *SharedState) *shareActor {
	return &shareActor{
		cfg:     cfg,
		state:   state,
		begin:   make(chan party.Epoch, inboxCapacity),
		cancels: &network.CancelBucket{},
	}
}

// BeginEpoch signals the Share actor to deal a fresh batch for e.
func (a *shareActor) BeginEpoch(e party.Epoch) {
	a.begin <- e
}

func (a *shareActor) run(ctx context.Context) {
	log := a.cfg.logger().With(zap.String("actor", "share"))
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-a.begin:
			if err := a.deal(ctx, e); err != nil {
				log.Error("deal failed", zap.Uint64("epoch", uint64(e)), zap.Error(err))
			}
		}
	}
}

func (a *shareActor) deal(ctx context.Context, e party.Epoch) error {
	shares, commitment, roots, err := a.cfg.Kernel.Deal(a.cfg.CRS, e, a.cfg.IDs, a.cfg.BatchSize, a.cfg.Threshold)
	if err != nil {
		return fmt.Errorf("breeze: deal epoch %d: %w", e, err)
	}
	a.state.StoreDealerCommitment(e, commitment)

	selfPub := a.cfg.Secret.ActOnBase().Bytes()
	for _, share := range shares {
		addr, ok := a.cfg.Addrs[share.Recipient]
		if !ok {
			continue
		}
		data, err := wire.EncodeBreeze(selfPub, wire.TagShare, shareMsg{Epoch: e, Dealer: a.cfg.Self, Share: share})
		if err != nil {
			return fmt.Errorf("breeze: encode share for %d: %w", share.Recipient, err)
		}
		a.cancels.Add(a.cfg.Sender.Send(ctx, addr, data))
	}

	if roots != nil {
		data, err := wire.EncodeBreeze(selfPub, wire.TagMerkleRoots, merkleMsg{Epoch: e, Dealer: a.cfg.Self, Roots: *roots})
		if err != nil {
			return fmt.Errorf("breeze: encode merkle roots: %w", err)
		}
		a.cancels.Add(a.cfg.Sender.Broadcast(ctx, a.allAddrsExceptSelf(), data))
	}
	return nil
}

func (a *shareActor) allAddrsExceptSelf() []string {
	out := make([]string, 0, len(a.cfg.Addrs))
	for id, addr := range a.cfg.Addrs {
		if id != a.cfg.Self {
			out = append(out, addr)
		}
	}
	return out
}
