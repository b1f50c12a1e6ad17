package breeze

import (
	"context"

	"go.uber.org/zap"

	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/network"
	"github.com/luxfi/breeze/pkg/wire"
)

// reconstructActor is the verifier role that answers a coordinator
// ReconRequest by broadcasting its own stored shares for the requested
// digest-set.
type reconstructActor struct {
	cfg     Config
	state   *SharedState
	requests chan model.ReconRequest
	expect   chan model.ReconRequest // forwarded to resultActor verbatim
	cancels  *network.CancelBucket
}

func newReconstructActor(cfg Config, state *SharedState) *reconstructActor {
	return &reconstructActor{
		cfg:      cfg,
		state:    state,
		requests: make(chan model.ReconRequest, inboxCapacity),
		expect:   make(chan model.ReconRequest, inboxCapacity),
		cancels:  &network.CancelBucket{},
	}
}

// Request asks Reconstruct to answer a ReconRequest from the coordinator.
func (a *reconstructActor) Request(req model.ReconRequest) {
	a.requests <- req
}

func (a *reconstructActor) run(ctx context.Context) {
	log := a.cfg.logger().With(zap.String("actor", "reconstruct"))
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-a.requests:
			a.handle(ctx, log, req)
		}
	}
}

func (a *reconstructActor) handle(ctx context.Context, log *zap.Logger, req model.ReconRequest) {
	contributions := make([]contribution, 0, len(req.DigestSet))
	for _, dc := range req.DigestSet {
		share, ok := a.state.Share(req.Epoch, dc.Dealer)
		if !ok {
			continue // honest parties collect enough from the rest of the quorum
		}
		contributions = append(contributions, contribution{Dealer: dc.Dealer, Share: share})
	}

	a.expect <- req

	if len(contributions) == 0 {
		return
	}
	selfPub := a.cfg.Secret.ActOnBase().Bytes()
	data, err := wire.EncodeBreeze(selfPub, wire.TagReconstruct, reconstructMsg{
		Epoch: req.Epoch, Index: req.Index, Contributions: contributions,
	})
	if err != nil {
		log.Error("encode reconstruct failed", zap.Error(err))
		return
	}
	a.cancels.Add(a.cfg.Sender.Broadcast(ctx, a.allAddrsExceptSelf(), data))
}

func (a *reconstructActor) allAddrsExceptSelf() []string {
	out := make([]string, 0, len(a.cfg.Addrs))
	for id, addr := range a.cfg.Addrs {
		if id != a.cfg.Self {
			out = append(out, addr)
		}
	}
	return out
}
