package coordinator

import (
	"context"

	"go.uber.org/zap"

	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/party"
)

// Coordinator is the single task that schedules dealer rounds on agreed
// epochs, routes reconstruction requests from DAG consensus and external
// consumers, memoizes reconstructed values, and fans out coin/beacon
// results. All state below belongs to the goroutine running Run and is
// touched nowhere else.
type Coordinator struct {
	cfg Config

	commitIn    chan model.BreezeCertificate
	coinReqIn   chan uint64
	beaconReqIn chan beaconRequest
	gcIn        chan party.Epoch

	newCert    chan model.BreezeCertificate
	coinOut    chan CoinResult
	beaconOut  chan BeaconResult
}

type beaconRequest struct {
	epoch party.Epoch
	index party.Index
}

// New builds a Coordinator wired to an already-Spawn'd breeze.Wiring and a
// running initbft.Actor. Run must be started before the Coordinator does
// anything.
func New(cfg Config) *Coordinator {
	return &Coordinator{
		cfg:         cfg,
		commitIn:    make(chan model.BreezeCertificate, requestCapacity),
		coinReqIn:   make(chan uint64, requestCapacity),
		beaconReqIn: make(chan beaconRequest, requestCapacity),
		gcIn:        make(chan party.Epoch, requestCapacity),
		newCert:     make(chan model.BreezeCertificate, requestCapacity),
		coinOut:     make(chan CoinResult, requestCapacity),
		beaconOut:   make(chan BeaconResult, requestCapacity),
	}
}

// Commit feeds in a BreezeCertificate the DAG engine has committed for
// epoch >= 1.
func (c *Coordinator) Commit(cert model.BreezeCertificate) {
	select {
	case c.commitIn <- cert:
	default:
	}
}

// RequestCoin asks for the global coin bound to consensus round r. The
// answer, or a retryable NoCommonCore/terminal InvalidIndex error, arrives
// on CoinResults.
func (c *Coordinator) RequestCoin(round uint64) {
	select {
	case c.coinReqIn <- round:
	default:
	}
}

// RequestBeacon asks for beacon value (epoch, index). The answer arrives
// on BeaconResults.
func (c *Coordinator) RequestBeacon(epoch party.Epoch, index party.Index) {
	select {
	case c.beaconReqIn <- beaconRequest{epoch: epoch, index: index}:
	default:
	}
}

// GarbageCollect drops buffered certificates, decided markers, memoized
// values, and in-flight reconstruction bookkeeping at or below watermark,
// and propagates the watermark to the owned Breeze wiring.
func (c *Coordinator) GarbageCollect(watermark party.Epoch) {
	select {
	case c.gcIn <- watermark:
	default:
	}
}

// NewCertificates returns the channel this node's own epoch >= 1
// certificates are emitted on for proposal to the DAG engine.
func (c *Coordinator) NewCertificates() <-chan model.BreezeCertificate { return c.newCert }

// CoinResults returns the channel coin_request answers are delivered on.
func (c *Coordinator) CoinResults() <-chan CoinResult { return c.coinOut }

// BeaconResults returns the channel beacon request answers are delivered
// on.
func (c *Coordinator) BeaconResults() <-chan BeaconResult { return c.beaconOut }

// state holds every piece of mutable bookkeeping the coordinator owns.
type state struct {
	certBuffer map[party.Epoch]map[party.ID]model.BreezeCertificate
	decided    map[party.Epoch]bool
	memo       map[reconKey]model.RandomNum
	requested  map[reconKey]bool
}

func newState() *state {
	return &state{
		certBuffer: make(map[party.Epoch]map[party.ID]model.BreezeCertificate),
		decided:    make(map[party.Epoch]bool),
		memo:       make(map[reconKey]model.RandomNum),
		requested:  make(map[reconKey]bool),
	}
}

// Run drives the coordinator's select loop until ctx is cancelled. It
// pulls directly from the owned Breeze and Init-BFT components as well as
// its own externally-fed request channels.
func (c *Coordinator) Run(ctx context.Context) {
	log := c.cfg.logger()
	s := newState()

	c.cfg.Breeze.BeginEpoch(0)

	for {
		select {
		case <-ctx.Done():
			return
		case cert := <-c.cfg.Breeze.Certificates():
			c.onBreezeCertificate(log, cert)
		case cc := <-c.cfg.InitBFT.Decided():
			c.onCommonCore(log, s, cc)
		case cert := <-c.commitIn:
			c.onDAGCommit(log, s, cert)
		case round := <-c.coinReqIn:
			c.onCoinRequest(log, s, round)
		case req := <-c.beaconReqIn:
			c.onBeaconRequest(log, s, req)
		case rec := <-c.cfg.Breeze.Reconstructed():
			c.onReconstructed(s, rec.Epoch, rec.Index, rec.Value)
		case watermark := <-c.gcIn:
			c.garbageCollect(s, watermark)
		}
	}
}

// onBreezeCertificate routes a certificate this node's own Confirm actor
// just emitted: epoch 0 goes to Init-BFT's genesis agreement, everything
// else is proposed to the DAG engine.
func (c *Coordinator) onBreezeCertificate(log *zap.Logger, cert model.BreezeCertificate) {
	if cert.Epoch == 0 {
		c.cfg.InitBFT.Start(cert)
		return
	}
	select {
	case c.newCert <- cert:
	default:
		log.Warn("new certificate dropped, output channel saturated", zap.Uint64("epoch", uint64(cert.Epoch)))
	}
}

// onCommonCore installs Init-BFT's decided genesis core as epoch 0's
// buffer, marks it decided, and starts epoch 1's dealer round.
func (c *Coordinator) onCommonCore(log *zap.Logger, s *state, cc model.CommonCore) {
	byDealer := make(map[party.ID]model.BreezeCertificate, len(cc.Certificates))
	for dealer, cert := range cc.Certificates {
		byDealer[dealer] = cert
	}
	s.certBuffer[0] = byDealer
	s.decided[0] = true
	log.Info("epoch 0 common core decided", zap.Int("dealers", len(byDealer)))
	c.cfg.Breeze.BeginEpoch(1)
}

// onDAGCommit buffers a DAG-committed certificate for epoch >= 1 and, once
// f+1 distinct dealers are present, marks the epoch decided and starts the
// next one.
func (c *Coordinator) onDAGCommit(log *zap.Logger, s *state, cert model.BreezeCertificate) {
	e := cert.Epoch
	if s.decided[e] {
		return
	}
	byDealer, ok := s.certBuffer[e]
	if !ok {
		byDealer = make(map[party.ID]model.BreezeCertificate)
		s.certBuffer[e] = byDealer
	}
	byDealer[cert.Dealer] = cert

	if len(byDealer) >= c.cfg.weakQuorum() {
		s.decided[e] = true
		log.Info("epoch decided", zap.Uint64("epoch", uint64(e)), zap.Int("dealers", len(byDealer)))
		c.cfg.Breeze.BeginEpoch(e + 1)
	}
}

// onCoinRequest answers or defers a consensus round's coin request.
func (c *Coordinator) onCoinRequest(log *zap.Logger, s *state, round uint64) {
	e, index := roundToEpochIndex(round, c.cfg.MaxLeadersPerEpoch)
	if int(index) > c.cfg.MaxLeadersPerEpoch {
		c.pushCoin(CoinResult{Round: round, Err: ErrInvalidIndex})
		return
	}
	if !s.decided[e] {
		c.pushCoin(CoinResult{Round: round, Err: ErrNoCommonCore})
		return
	}
	key := reconKey{epoch: e, index: index}
	if v, ok := s.memo[key]; ok {
		c.pushCoin(CoinResult{Round: round, Value: v})
		return
	}
	c.requestReconstruction(log, s, key)
}

// onBeaconRequest answers or defers an external beacon request. Its index
// range is shifted by MaxLeadersPerEpoch before it shares the same
// reconstruction path a coin request uses.
func (c *Coordinator) onBeaconRequest(log *zap.Logger, s *state, req beaconRequest) {
	if req.index == 0 || int(req.index) > c.cfg.beaconsPerEpoch() {
		c.pushBeacon(BeaconResult{Epoch: req.epoch, Index: req.index, Err: ErrInvalidIndex})
		return
	}
	if !s.decided[req.epoch] {
		c.pushBeacon(BeaconResult{Epoch: req.epoch, Index: req.index, Err: ErrNoCommonCore})
		return
	}
	shifted := party.Index(int(req.index) + c.cfg.MaxLeadersPerEpoch)
	key := reconKey{epoch: req.epoch, index: shifted}
	if v, ok := s.memo[key]; ok {
		c.pushBeacon(BeaconResult{Epoch: req.epoch, Index: req.index, Value: v})
		return
	}
	c.requestReconstruction(log, s, key)
}

// requestReconstruction issues a ReconRequest to Breeze for key's epoch
// and index, built over the exact digest-set buffered for that epoch, at
// most once per key.
func (c *Coordinator) requestReconstruction(log *zap.Logger, s *state, key reconKey) {
	if s.requested[key] {
		return
	}
	byDealer := s.certBuffer[key.epoch]
	digestSet := make([]model.DealerCommitment, 0, len(byDealer))
	for dealer, cert := range byDealer {
		digestSet = append(digestSet, model.DealerCommitment{Dealer: dealer, Commitment: cert.Commitment})
	}
	s.requested[key] = true
	log.Debug("reconstruction requested", zap.Uint64("epoch", uint64(key.epoch)), zap.Uint32("index", uint32(key.index)))
	c.cfg.Breeze.Reconstruct(model.ReconRequest{Epoch: key.epoch, Index: key.index, DigestSet: digestSet})
}

// onReconstructed memoizes a value Breeze finished reconstructing and
// delivers it to the coin channel (index <= L) or the beacon channel
// (index > L), mapping the index back on output exactly as it was shifted
// on input.
func (c *Coordinator) onReconstructed(s *state, epoch party.Epoch, index party.Index, value model.RandomNum) {
	key := reconKey{epoch: epoch, index: index}
	s.memo[key] = value
	delete(s.requested, key)

	if int(index) <= c.cfg.MaxLeadersPerEpoch {
		round := epochIndexToRound(epoch, index, c.cfg.MaxLeadersPerEpoch)
		c.pushCoin(CoinResult{Round: round, Value: value})
		return
	}
	c.pushBeacon(BeaconResult{Epoch: epoch, Index: index - party.Index(c.cfg.MaxLeadersPerEpoch), Value: value})
}

// garbageCollect drops every buffered, decided, memoized, or in-flight
// entry at or below watermark, answering any request still awaiting
// reconstruction for one of those epochs with ErrGarbageCollected before
// discarding it.
func (c *Coordinator) garbageCollect(s *state, watermark party.Epoch) {
	for key := range s.requested {
		if key.epoch > watermark {
			continue
		}
		if _, done := s.memo[key]; done {
			continue
		}
		if int(key.index) <= c.cfg.MaxLeadersPerEpoch {
			round := epochIndexToRound(key.epoch, key.index, c.cfg.MaxLeadersPerEpoch)
			c.pushCoin(CoinResult{Round: round, Err: ErrGarbageCollected})
		} else {
			c.pushBeacon(BeaconResult{
				Epoch: key.epoch,
				Index: key.index - party.Index(c.cfg.MaxLeadersPerEpoch),
				Err:   ErrGarbageCollected,
			})
		}
		delete(s.requested, key)
	}
	for e := range s.certBuffer {
		if e <= watermark {
			delete(s.certBuffer, e)
		}
	}
	for e := range s.decided {
		if e <= watermark {
			delete(s.decided, e)
		}
	}
	for key := range s.memo {
		if key.epoch <= watermark {
			delete(s.memo, key)
		}
	}
	c.cfg.Breeze.GarbageCollect(watermark)
}

func (c *Coordinator) pushCoin(r CoinResult) {
	select {
	case c.coinOut <- r:
	default:
	}
}

func (c *Coordinator) pushBeacon(r BeaconResult) {
	select {
	case c.beaconOut <- r:
	default:
	}
}
