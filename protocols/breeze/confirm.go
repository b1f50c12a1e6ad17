package breeze

import (
	"context"

	"go.uber.org/zap"

	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/pkg/sign"
)

// confirmActor is the dealer role that accumulates Reply signatures into
// a BreezeCertificate.
type confirmActor struct {
	cfg   Config
	state *SharedState
	inbox chan replyMsg
	out   chan model.BreezeCertificate
	gc    chan party.Epoch

	// signers accumulates distinct (epoch -> signer -> sig) until quorum;
	// emitted certificates are deleted to guarantee at-most-once delivery.
	signers map[party.Epoch]map[party.ID][]byte
	emitted map[party.Epoch]bool
}

func newConfirmActor(cfg Config, state *SharedState) *confirmActor {
	return &confirmActor{
		cfg:     cfg,
		state:   state,
		inbox:   make(chan replyMsg, inboxCapacity),
		out:     make(chan model.BreezeCertificate, inboxCapacity),
		gc:      make(chan party.Epoch, inboxCapacity),
		signers: make(map[party.Epoch]map[party.ID][]byte),
		emitted: make(map[party.Epoch]bool),
	}
}

func (a *confirmActor) deliver(msg replyMsg) {
	select {
	case a.inbox <- msg:
	default:
	}
}

func (a *confirmActor) run(ctx context.Context) {
	log := a.cfg.logger().With(zap.String("actor", "confirm"))
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-a.inbox:
			a.handle(log, msg)
		case watermark := <-a.gc:
			a.garbageCollect(watermark)
		}
	}
}

func (a *confirmActor) handle(log *zap.Logger, msg replyMsg) {
	if a.emitted[msg.Epoch] {
		return
	}
	commitment, ok := a.state.DealerCommitment(msg.Epoch)
	if !ok {
		log.Warn("reply for epoch this node never dealt", zap.Uint64("epoch", uint64(msg.Epoch)))
		return
	}
	public, ok := a.cfg.PublicKeys[msg.Signer]
	if !ok {
		return
	}
	sig, err := sign.FromBytes(msg.Sig)
	if err != nil || !sign.Verify(public, commitment[:], sig) {
		log.Warn("reply signature failed verification, dropped", zap.Uint32("signer", uint32(msg.Signer)))
		return
	}

	bySigner, exists := a.signers[msg.Epoch]
	if !exists {
		bySigner = make(map[party.ID][]byte)
		a.signers[msg.Epoch] = bySigner
	}
	bySigner[msg.Signer] = msg.Sig

	if len(bySigner) < a.cfg.quorum() {
		return
	}

	cert := model.BreezeCertificate{Epoch: msg.Epoch, Dealer: a.cfg.Self, Commitment: commitment}
	for signer, sigBytes := range bySigner {
		cert.Signatures = append(cert.Signatures, model.Signature{Signer: signer, Sig: sigBytes})
	}
	a.emitted[msg.Epoch] = true
	delete(a.signers, msg.Epoch)
	a.out <- cert
}

// GarbageCollect drops accumulator state for epochs at or below
// watermark.
func (a *confirmActor) garbageCollect(watermark party.Epoch) {
	for e := range a.signers {
		if e <= watermark {
			delete(a.signers, e)
		}
	}
	for e := range a.emitted {
		if e <= watermark {
			delete(a.emitted, e)
		}
	}
}
