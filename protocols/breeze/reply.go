package breeze

import (
	"context"

	"go.uber.org/zap"

	"github.com/luxfi/breeze/pkg/network"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/pkg/sign"
	"github.com/luxfi/breeze/pkg/wire"
)

// pendingKey identifies a share awaiting its dealer's lattice Merkle
// roots before Reply will accept it.
type pendingKey struct {
	epoch  party.Epoch
	dealer party.ID
}

// replyActor is the verifier role: verifies inbound shares and signs the
// dealer's commitment once satisfied.
type replyActor struct {
	cfg     Config
	state   *SharedState
	inbox   chan shareMsg
	cancels *network.CancelBucket

	pending map[pendingKey]shareMsg // lattice: shares awaiting roots
}

func newReplyActor(cfg Config, state *SharedState) *replyActor {
	return &replyActor{
		cfg:     cfg,
		state:   state,
		inbox:   make(chan shareMsg, inboxCapacity),
		cancels: &network.CancelBucket{},
		pending: make(map[pendingKey]shareMsg),
	}
}

func (a *replyActor) deliver(msg shareMsg) {
	select {
	case a.inbox <- msg:
	default:
	}
}

func (a *replyActor) run(ctx context.Context) {
	log := a.cfg.logger().With(zap.String("actor", "reply"))
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-a.inbox:
			a.handle(ctx, log, msg)
		case <-a.state.RootsChanged():
			a.retryPending(ctx, log)
		}
	}
}

func (a *replyActor) handle(ctx context.Context, log *zap.Logger, msg shareMsg) {
	if a.state.HasShare(msg.Epoch, msg.Dealer) {
		log.Warn("duplicate share dropped", zap.Uint64("epoch", uint64(msg.Epoch)), zap.Uint32("dealer", uint32(msg.Dealer)))
		return
	}
	if a.cfg.isLattice() {
		if _, ok := a.state.MerkleRoots(msg.Epoch, msg.Dealer); !ok {
			a.pending[pendingKey{msg.Epoch, msg.Dealer}] = msg
			return
		}
	}
	a.acceptIfValid(ctx, log, msg)
}

func (a *replyActor) retryPending(ctx context.Context, log *zap.Logger) {
	for key, msg := range a.pending {
		if _, ok := a.state.MerkleRoots(key.epoch, key.dealer); ok {
			delete(a.pending, key)
			if !a.state.HasShare(key.epoch, key.dealer) {
				a.acceptIfValid(ctx, log, msg)
			}
		}
	}
}

func (a *replyActor) acceptIfValid(ctx context.Context, log *zap.Logger, msg shareMsg) {
	if !a.cfg.Kernel.Verify(a.cfg.CRS, a.cfg.Self, a.cfg.Threshold, msg.Share) {
		log.Warn("share failed verification, dropped", zap.Uint64("epoch", uint64(msg.Epoch)), zap.Uint32("dealer", uint32(msg.Dealer)))
		return
	}
	if !a.state.StoreShare(msg.Epoch, msg.Dealer, msg.Share) {
		return
	}

	sig, err := sign.Sign(a.cfg.Secret, msg.Share.Commitment[:])
	if err != nil {
		log.Error("sign reply failed", zap.Error(err))
		return
	}
	selfPub := a.cfg.Secret.ActOnBase().Bytes()
	data, err := wire.EncodeBreeze(selfPub, wire.TagReply, replyMsg{
		Epoch: msg.Epoch, Dealer: msg.Dealer, Signer: a.cfg.Self, Sig: sig.Bytes(),
	})
	if err != nil {
		log.Error("encode reply failed", zap.Error(err))
		return
	}
	addr, ok := a.cfg.Addrs[msg.Dealer]
	if !ok {
		return
	}
	a.cancels.Add(a.cfg.Sender.Send(ctx, addr, data))
}
