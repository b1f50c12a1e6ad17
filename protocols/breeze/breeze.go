package breeze

import (
	"context"
	"fmt"

	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/pkg/wire"
)

// Wiring holds one node's five running actors and the channels the
// coordinator drives them through.
type Wiring struct {
	cfg   Config
	state *SharedState

	share       *shareActor
	reply       *replyActor
	confirm     *confirmActor
	reconstruct *reconstructActor
	result      *resultActor
}

// Spawn starts a node's five Breeze actors over ctx and returns the
// Wiring the coordinator and network dispatch interact with. Every actor
// exits when ctx is cancelled.
func Spawn(ctx context.Context, cfg Config) *Wiring {
	state := NewSharedState()
	w := &Wiring{
		cfg:         cfg,
		state:       state,
		share:       newShareActor(cfg, state),
		reply:       newReplyActor(cfg, state),
		confirm:     newConfirmActor(cfg, state),
		reconstruct: newReconstructActor(cfg, state),
		result:      newResultActor(cfg),
	}

	go w.share.run(ctx)
	go w.reply.run(ctx)
	go w.confirm.run(ctx)
	go w.reconstruct.run(ctx)
	go w.result.run(ctx)

	// Reconstruct's local notification of which (epoch, index, digest-set)
	// to await is forwarded straight to Result.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case req := <-w.reconstruct.expect:
				select {
				case w.result.expect <- req:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return w
}

// BeginEpoch signals the Share actor to deal a fresh batch for e.
func (w *Wiring) BeginEpoch(e party.Epoch) {
	w.share.BeginEpoch(e)
}

// Reconstruct asks the Reconstruct actor to answer a coordinator
// ReconRequest.
func (w *Wiring) Reconstruct(req model.ReconRequest) {
	w.reconstruct.Request(req)
}

// Certificates returns the channel Confirm emits newly-certified
// BreezeCertificate values on, exactly once per (epoch, dealer).
func (w *Wiring) Certificates() <-chan model.BreezeCertificate {
	return w.confirm.out
}

// Reconstructed returns the channel Result emits fully-reconstructed
// (epoch, index) values on.
func (w *Wiring) Reconstructed() <-chan Reconstructed {
	return w.result.out
}

// GarbageCollect drops shared-state and Confirm-actor bookkeeping at or
// below watermark. Reply's pending-share buffer and Result's per-request
// buffers are not collected.
func (w *Wiring) GarbageCollect(watermark party.Epoch) {
	w.state.GarbageCollect(watermark)
	select {
	case w.confirm.gc <- watermark:
	default:
	}
}

// Dispatch decodes one framed inbound message and routes it to the
// appropriate actor. It never blocks for long: actor
// inboxes are bounded and Dispatch drops a message rather than stall the
// network-read goroutine if an inbox is saturated.
func (w *Wiring) Dispatch(payload []byte) error {
	envelope, err := wire.DecodeBreeze(payload)
	if err != nil {
		return fmt.Errorf("breeze: decode envelope: %w", err)
	}
	switch envelope.Tag {
	case wire.TagShare:
		var msg shareMsg
		if err := envelope.Decode(&msg); err != nil {
			return fmt.Errorf("breeze: decode share: %w", err)
		}
		w.reply.deliver(msg)
	case wire.TagReply:
		var msg replyMsg
		if err := envelope.Decode(&msg); err != nil {
			return fmt.Errorf("breeze: decode reply: %w", err)
		}
		w.confirm.deliver(msg)
	case wire.TagMerkleRoots:
		var msg merkleMsg
		if err := envelope.Decode(&msg); err != nil {
			return fmt.Errorf("breeze: decode merkle roots: %w", err)
		}
		w.state.StoreMerkleRoots(msg.Epoch, msg.Dealer, &msg.Roots)
	case wire.TagReconstruct:
		var msg reconstructMsg
		if err := envelope.Decode(&msg); err != nil {
			return fmt.Errorf("breeze: decode reconstruct: %w", err)
		}
		w.result.deliver(msg)
	case wire.TagConfirm:
		// Reserved: certificates are never re-broadcast over this layer —
		// propagating committed certificates is the DAG engine's job, not
		// Breeze's — so there is nothing to route.
	default:
		return fmt.Errorf("breeze: unknown tag %v", envelope.Tag)
	}
	return nil
}
