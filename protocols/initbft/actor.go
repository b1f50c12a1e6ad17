package initbft

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/network"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/pkg/sign"
	"github.com/luxfi/breeze/pkg/wire"
)

// Actor runs the genesis common-core agreement. It is started once, fed
// the node's own epoch-0 certificate via Start, and delivers the agreed
// CommonCore exactly once on Decided().
type Actor struct {
	cfg Config

	start    chan model.BreezeCertificate
	inCert   chan certMsg
	inVote   chan voteMsg
	inDecide chan decidedMsg

	out     chan model.CommonCore
	cancels *network.CancelBucket
}

// New constructs an Actor; call Run to start its goroutine.
func New(cfg Config) *Actor {
	return &Actor{
		cfg:      cfg,
		start:    make(chan model.BreezeCertificate, 1),
		inCert:   make(chan certMsg, inboxCapacity),
		inVote:   make(chan voteMsg, inboxCapacity),
		inDecide: make(chan decidedMsg, inboxCapacity),
		out:      make(chan model.CommonCore, 1),
		cancels:  &network.CancelBucket{},
	}
}

// Start kicks off the agreement with this node's own epoch-0 certificate:
// the coordinator calls this once Confirm emits a certificate for epoch 0.
func (a *Actor) Start(cert model.BreezeCertificate) {
	select {
	case a.start <- cert:
	default:
	}
}

// Decided returns the channel the agreed CommonCore is delivered on,
// exactly once.
func (a *Actor) Decided() <-chan model.CommonCore {
	return a.out
}

// Dispatch decodes one framed DumboMessage and routes it to the matching
// inbox, the same decode-and-route shape protocols/breeze's Dispatch
// uses, generalized to the Init-BFT wire envelope.
func (a *Actor) Dispatch(payload []byte) error {
	envelope, err := wire.DecodeDumbo(payload)
	if err != nil {
		return fmt.Errorf("initbft: decode envelope: %w", err)
	}
	switch envelope.Tag {
	case wire.TagCertificate:
		var msg certMsg
		if err := envelope.Decode(&msg); err != nil {
			return fmt.Errorf("initbft: decode certificate: %w", err)
		}
		select {
		case a.inCert <- msg:
		default:
		}
	case wire.TagVote:
		var msg voteMsg
		if err := envelope.Decode(&msg); err != nil {
			return fmt.Errorf("initbft: decode vote: %w", err)
		}
		select {
		case a.inVote <- msg:
		default:
		}
	case wire.TagDecided:
		var msg decidedMsg
		if err := envelope.Decode(&msg); err != nil {
			return fmt.Errorf("initbft: decode decided: %w", err)
		}
		select {
		case a.inDecide <- msg:
		default:
		}
	default:
		return fmt.Errorf("initbft: unknown tag %v", envelope.Tag)
	}
	return nil
}

// state is every piece of mutable bookkeeping Run owns. It is touched
// only from inside Run's select loop, so it needs no lock (the same
// single-owner-state discipline protocols/breeze's actors follow).
type state struct {
	certs map[party.ID]model.BreezeCertificate // collected epoch-0 certs, by dealer

	voted   bool
	decided bool
	emitted bool

	// votesBySet accumulates distinct signers per proposed-set hash.
	votesBySet map[[32]byte]map[party.ID][]byte
	setByHash  map[[32]byte][]model.DealerCommitment
	// voterChoice is every voter's most recent proposed-set hash, used by
	// the lowest-ID tiebreak when no set reaches f+1 occurrences.
	voterChoice map[party.ID][32]byte
	tiebroken   bool

	decidedSet []model.DealerCommitment
}

func newState() *state {
	return &state{
		certs:       make(map[party.ID]model.BreezeCertificate),
		votesBySet:  make(map[[32]byte]map[party.ID][]byte),
		setByHash:   make(map[[32]byte][]model.DealerCommitment),
		voterChoice: make(map[party.ID][32]byte),
	}
}

// Run drives the actor until ctx is cancelled.
func (a *Actor) Run(ctx context.Context) {
	log := a.cfg.logger().With(zap.String("actor", "initbft"))
	s := newState()
	for {
		select {
		case <-ctx.Done():
			return
		case cert := <-a.start:
			a.onOwnCertificate(ctx, log, s, cert)
		case msg := <-a.inCert:
			a.onCertificate(ctx, log, s, msg)
		case msg := <-a.inVote:
			a.onVote(ctx, log, s, msg)
		case msg := <-a.inDecide:
			a.onDecided(ctx, log, s, msg)
		}
	}
}

func (a *Actor) onOwnCertificate(ctx context.Context, log *zap.Logger, s *state, cert model.BreezeCertificate) {
	s.certs[cert.Dealer] = cert
	a.broadcastCertificate(ctx, log, cert)
	a.maybeVote(ctx, log, s)
	a.maybeEmit(log, s)
}

func (a *Actor) onCertificate(ctx context.Context, log *zap.Logger, s *state, msg certMsg) {
	if !msg.Cert.Valid(a.cfg.quorum()) {
		log.Warn("certificate with too few signers dropped", zap.Uint32("dealer", uint32(msg.Cert.Dealer)))
		return
	}
	if _, exists := s.certs[msg.Cert.Dealer]; exists {
		return
	}
	s.certs[msg.Cert.Dealer] = msg.Cert
	a.maybeVote(ctx, log, s)
	a.maybeEmit(log, s)
}

// maybeVote proposes the current certificate set once a node has
// collected f+1 valid distinct-dealer certificates, reaching weak quorum.
func (a *Actor) maybeVote(ctx context.Context, log *zap.Logger, s *state) {
	if s.voted || s.decided || len(s.certs) < a.cfg.weakQuorum() {
		return
	}
	set := certSet(s.certs, a.cfg.weakQuorum())
	s.voted = true
	a.broadcastVote(ctx, log, s, set)
}

func certSet(certs map[party.ID]model.BreezeCertificate, n int) []model.DealerCommitment {
	out := make([]model.DealerCommitment, 0, n)
	for dealer, cert := range certs {
		out = append(out, model.DealerCommitment{Dealer: dealer, Commitment: cert.Commitment})
		if len(out) == n {
			break
		}
	}
	return sortedSet(out)
}

func (a *Actor) broadcastCertificate(ctx context.Context, log *zap.Logger, cert model.BreezeCertificate) {
	selfPub := a.cfg.Secret.ActOnBase().Bytes()
	data, err := wire.EncodeDumbo(selfPub, wire.TagCertificate, certMsg{Cert: cert})
	if err != nil {
		log.Error("encode certificate failed", zap.Error(err))
		return
	}
	a.cancels.Add(a.cfg.Sender.Broadcast(ctx, a.cfg.allAddrsExceptSelf(), data))
}

func (a *Actor) broadcastVote(ctx context.Context, log *zap.Logger, s *state, set []model.DealerCommitment) {
	hash := digestSetHash(set)
	sig, err := sign.Sign(a.cfg.Secret, hash[:])
	if err != nil {
		log.Error("sign vote failed", zap.Error(err))
		return
	}
	s.setByHash[hash] = set
	a.recordVote(s, a.cfg.Self, set, sig.Bytes())

	selfPub := a.cfg.Secret.ActOnBase().Bytes()
	data, err := wire.EncodeDumbo(selfPub, wire.TagVote, voteMsg{Set: set, Signer: a.cfg.Self, Sig: sig.Bytes()})
	if err != nil {
		log.Error("encode vote failed", zap.Error(err))
		return
	}
	a.cancels.Add(a.cfg.Sender.Broadcast(ctx, a.cfg.allAddrsExceptSelf(), data))
	a.checkQuorum(ctx, log, s, hash)
}

func (a *Actor) onVote(ctx context.Context, log *zap.Logger, s *state, msg voteMsg) {
	if s.decided {
		return
	}
	public, ok := a.cfg.PublicKeys[msg.Signer]
	if !ok {
		return
	}
	hash := digestSetHash(msg.Set)
	sig, err := sign.FromBytes(msg.Sig)
	if err != nil || !sign.Verify(public, hash[:], sig) {
		log.Warn("vote signature failed verification, dropped", zap.Uint32("signer", uint32(msg.Signer)))
		return
	}
	s.setByHash[hash] = msg.Set
	a.recordVote(s, msg.Signer, msg.Set, msg.Sig)
	a.checkQuorum(ctx, log, s, hash)
	a.maybeTiebreak(ctx, log, s)
}

func (a *Actor) recordVote(s *state, signer party.ID, set []model.DealerCommitment, sig []byte) {
	hash := digestSetHash(set)
	bySigner, exists := s.votesBySet[hash]
	if !exists {
		bySigner = make(map[party.ID][]byte)
		s.votesBySet[hash] = bySigner
	}
	bySigner[signer] = sig
	s.voterChoice[signer] = hash
}

func (a *Actor) checkQuorum(ctx context.Context, log *zap.Logger, s *state, hash [32]byte) {
	if s.decided {
		return
	}
	bySigner := s.votesBySet[hash]
	if len(bySigner) < a.cfg.quorum() {
		return
	}
	set, ok := s.setByHash[hash]
	if !ok {
		return
	}
	sigs := make([]model.Signature, 0, len(bySigner))
	for signer, sig := range bySigner {
		sigs = append(sigs, model.Signature{Signer: signer, Sig: sig})
	}
	s.decided = true
	s.decidedSet = set
	a.cancels.CancelAll()
	log.Info("common core decided", zap.Int("dealers", len(set)))
	a.broadcastDecided(ctx, log, set, sigs)
	a.maybeEmit(log, s)
}

// maybeTiebreak applies the conflict-resolution rule once this node has
// observed votes from at least quorum distinct signers without any single
// proposed set reaching quorum on its own. It triggers at most once: this
// small, bootstrap-only protocol expects one re-vote round to converge,
// and applying the rule repeatedly without fresh information would just
// re-select the same outcome.
func (a *Actor) maybeTiebreak(ctx context.Context, log *zap.Logger, s *state) {
	if s.decided || s.tiebroken || len(s.voterChoice) < a.cfg.quorum() {
		return
	}
	s.tiebroken = true

	counts := make(map[[32]byte]int)
	for _, hash := range s.voterChoice {
		counts[hash]++
	}
	var chosen [32]byte
	found := false
	for hash, n := range counts {
		if n >= a.cfg.weakQuorum() {
			chosen = hash
			found = true
			break
		}
	}
	if !found {
		var lowest party.ID
		first := true
		for signer := range s.voterChoice {
			if first || signer.Less(lowest) {
				lowest = signer
				first = false
			}
		}
		chosen = s.voterChoice[lowest]
	}

	set, ok := s.setByHash[chosen]
	if !ok {
		return
	}
	log.Warn("init-bft votes disagreed, re-voting tiebreak set")
	a.broadcastVote(ctx, log, s, set)
}

func (a *Actor) onDecided(ctx context.Context, log *zap.Logger, s *state, msg decidedMsg) {
	if s.decided {
		return
	}
	hash := digestSetHash(msg.Set)
	seen := make(map[party.ID]struct{}, len(msg.Sigs))
	for _, sig := range msg.Sigs {
		public, ok := a.cfg.PublicKeys[sig.Signer]
		if !ok {
			return
		}
		parsed, err := sign.FromBytes(sig.Sig)
		if err != nil || !sign.Verify(public, hash[:], parsed) {
			log.Warn("decided message carries an invalid signature, dropped")
			return
		}
		seen[sig.Signer] = struct{}{}
	}
	if len(seen) < a.cfg.quorum() {
		log.Warn("decided message below quorum, dropped")
		return
	}
	s.decided = true
	s.decidedSet = msg.Set
	a.cancels.CancelAll()
	a.broadcastDecided(ctx, log, msg.Set, msg.Sigs)
	a.maybeEmit(log, s)
}

func (a *Actor) broadcastDecided(ctx context.Context, log *zap.Logger, set []model.DealerCommitment, sigs []model.Signature) {
	selfPub := a.cfg.Secret.ActOnBase().Bytes()
	data, err := wire.EncodeDumbo(selfPub, wire.TagDecided, decidedMsg{Set: set, Sigs: sigs})
	if err != nil {
		log.Error("encode decided failed", zap.Error(err))
		return
	}
	a.cfg.Sender.Broadcast(ctx, a.cfg.allAddrsExceptSelf(), data)
}

// maybeEmit builds and delivers the CommonCore once this node has both
// decided on a set and collected every dealer's certificate it names. A
// Decided set may name a dealer whose certificate hasn't arrived at this
// node yet; maybeEmit is re-checked on every subsequent certificate
// arrival until it is.
func (a *Actor) maybeEmit(log *zap.Logger, s *state) {
	if !s.decided || s.emitted {
		return
	}
	core := model.NewCommonCore(0)
	for _, dc := range s.decidedSet {
		cert, ok := s.certs[dc.Dealer]
		if !ok {
			return
		}
		core.Add(cert)
	}
	s.emitted = true
	log.Info("genesis common core assembled", zap.Int("dealers", core.Len()))
	a.out <- *core
}
