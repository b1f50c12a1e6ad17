package breeze

import (
	"context"

	"go.uber.org/zap"

	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/protocols/pvss"
)

type reconKey struct {
	epoch party.Epoch
	index party.Index
}

// resultActor aggregates reconstruction contributions until every dealer
// in the expected digest-set has a weak quorum of verified values, then
// Lagrange-interpolates and sums across dealers.
type resultActor struct {
	cfg    Config
	inbox  chan reconstructMsg
	expect chan model.ReconRequest
	out    chan Reconstructed

	expected map[reconKey]model.ReconRequest
	verified map[reconKey]map[party.ID]map[party.ID]pvss.Value // dealer -> sender -> value
	done     map[reconKey]bool
}

func newResultActor(cfg Config) *resultActor {
	return &resultActor{
		cfg:      cfg,
		inbox:    make(chan reconstructMsg, inboxCapacity),
		expect:   make(chan model.ReconRequest, inboxCapacity),
		out:      make(chan Reconstructed, inboxCapacity),
		expected: make(map[reconKey]model.ReconRequest),
		verified: make(map[reconKey]map[party.ID]map[party.ID]pvss.Value),
		done:     make(map[reconKey]bool),
	}
}

func (a *resultActor) deliver(msg reconstructMsg) {
	select {
	case a.inbox <- msg:
	default:
	}
}

func (a *resultActor) run(ctx context.Context) {
	log := a.cfg.logger().With(zap.String("actor", "result"))
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-a.expect:
			a.expected[reconKey{req.Epoch, req.Index}] = req
			a.tryFinish(log, reconKey{req.Epoch, req.Index})
		case msg := <-a.inbox:
			a.handle(log, msg)
		}
	}
}

func (a *resultActor) handle(log *zap.Logger, msg reconstructMsg) {
	key := reconKey{msg.Epoch, msg.Index}
	if a.done[key] {
		return
	}
	for _, contrib := range msg.Contributions {
		if int(msg.Index) < 1 || int(msg.Index) > len(contrib.Share.Values) {
			continue
		}
		if !a.cfg.Kernel.Verify(a.cfg.CRS, contrib.Share.Recipient, a.cfg.Threshold, contrib.Share) {
			log.Warn("reconstruct contribution failed verification, dropped",
				zap.Uint32("dealer", uint32(contrib.Dealer)))
			continue
		}
		byDealer, ok := a.verified[key]
		if !ok {
			byDealer = make(map[party.ID]map[party.ID]pvss.Value)
			a.verified[key] = byDealer
		}
		bySender, ok := byDealer[contrib.Dealer]
		if !ok {
			bySender = make(map[party.ID]pvss.Value)
			byDealer[contrib.Dealer] = bySender
		}
		bySender[contrib.Share.Recipient] = contrib.Share.Values[msg.Index-1]
	}
	a.tryFinish(log, key)
}

func (a *resultActor) tryFinish(log *zap.Logger, key reconKey) {
	if a.done[key] {
		return
	}
	req, ok := a.expected[key]
	if !ok || len(req.DigestSet) == 0 {
		return
	}
	weak := a.cfg.weakQuorum()
	byDealer := a.verified[key]
	secrets := make([]pvss.Secret, 0, len(req.DigestSet))
	for _, dc := range req.DigestSet {
		bySender, ok := byDealer[dc.Dealer]
		if !ok || len(bySender) < weak {
			return
		}
		ids := make([]party.ID, 0, weak)
		values := make([]pvss.Value, 0, weak)
		for id, v := range bySender {
			ids = append(ids, id)
			values = append(values, v)
			if len(ids) == weak {
				break
			}
		}
		secret, err := a.cfg.Kernel.ReconstructPoint(ids, values, a.cfg.latticeModulus())
		if err != nil {
			log.Warn("reconstruct point failed", zap.Uint32("dealer", uint32(dc.Dealer)), zap.Error(err))
			return
		}
		secrets = append(secrets, secret)
	}

	combined, err := combineSecrets(a.cfg.CRS.Variant, a.cfg.latticeModulus(), secrets)
	if err != nil {
		log.Warn("combine secrets failed", zap.Error(err))
		return
	}
	a.done[key] = true
	delete(a.verified, key)
	delete(a.expected, key)
	a.out <- Reconstructed{Epoch: key.epoch, Index: key.index, Value: a.cfg.Kernel.SecretToRandom(combined)}
}
