package breeze

import (
	"sync"

	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/pkg/watch"
	"github.com/luxfi/breeze/protocols/pvss"
)

// SharedState holds the three multiple-reader/single-writer maps the
// actors share:
//  1. validShares: Epoch -> Dealer -> Share, read by Reconstruct, written
//     by Reply.
//  2. dealerCommitments: Epoch -> Commitment, written by Share, read by
//     Confirm.
//  3. merkleRoots: Epoch -> Dealer -> Roots (lattice only), written on
//     inbound MerkleRoots, read by Reply.
//
// A *SharedState is a plain pointer passed to every actor.
type SharedState struct {
	mu sync.RWMutex

	validShares       map[party.Epoch]map[party.ID]pvss.Share
	dealerCommitments map[party.Epoch]model.Commitment
	merkleRoots       map[party.Epoch]map[party.ID]*pvss.MerkleRoots

	// rootsChanged is bumped every time a MerkleRoots broadcast is stored,
	// the watch-channel Reply selects on instead of polling.
	rootsChanged *watch.Value[uint64]
}

// NewSharedState returns an empty SharedState.
func NewSharedState() *SharedState {
	return &SharedState{
		validShares:       make(map[party.Epoch]map[party.ID]pvss.Share),
		dealerCommitments: make(map[party.Epoch]model.Commitment),
		merkleRoots:       make(map[party.Epoch]map[party.ID]*pvss.MerkleRoots),
		rootsChanged:      watch.New[uint64](),
	}
}

// RootsChanged returns a channel that closes the next time any dealer's
// Merkle roots are stored, for use in a select alongside other
// suspension points.
func (s *SharedState) RootsChanged() <-chan struct{} {
	return s.rootsChanged.Changed()
}

// HasShare reports whether a share for (epoch, dealer) is already stored,
// used by Reply to drop duplicate share messages.
func (s *SharedState) HasShare(epoch party.Epoch, dealer party.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.validShares[epoch][dealer]
	return ok
}

// StoreShare records a verified share, keyed by (epoch, dealer). Returns
// false without overwriting if one is already stored.
func (s *SharedState) StoreShare(epoch party.Epoch, dealer party.ID, share pvss.Share) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDealer, ok := s.validShares[epoch]
	if !ok {
		byDealer = make(map[party.ID]pvss.Share)
		s.validShares[epoch] = byDealer
	}
	if _, exists := byDealer[dealer]; exists {
		return false
	}
	byDealer[dealer] = share
	return true
}

// Share returns the stored share for (epoch, dealer), if any.
func (s *SharedState) Share(epoch party.Epoch, dealer party.ID) (pvss.Share, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	share, ok := s.validShares[epoch][dealer]
	return share, ok
}

// StoreDealerCommitment records this node's own dealt commitment for
// epoch, so Confirm can later match inbound Reply signatures back to it.
func (s *SharedState) StoreDealerCommitment(epoch party.Epoch, commitment model.Commitment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dealerCommitments[epoch] = commitment
}

// DealerCommitment returns this node's own dealt commitment for epoch, if
// it dealt one.
func (s *SharedState) DealerCommitment(epoch party.Epoch) (model.Commitment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.dealerCommitments[epoch]
	return c, ok
}

// StoreMerkleRoots records a dealer's lattice share-tree roots for epoch.
func (s *SharedState) StoreMerkleRoots(epoch party.Epoch, dealer party.ID, roots *pvss.MerkleRoots) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDealer, ok := s.merkleRoots[epoch]
	if !ok {
		byDealer = make(map[party.ID]*pvss.MerkleRoots)
		s.merkleRoots[epoch] = byDealer
	}
	byDealer[dealer] = roots
	_, gen := s.rootsChanged.Get()
	s.rootsChanged.Set(gen + 1)
}

// MerkleRoots returns a dealer's lattice share-tree roots for epoch, if
// they have arrived yet.
func (s *SharedState) MerkleRoots(epoch party.Epoch, dealer party.ID) (*pvss.MerkleRoots, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roots, ok := s.merkleRoots[epoch][dealer]
	return roots, ok
}

// GarbageCollect drops every epoch-keyed entry at or below watermark, on
// a trigger the coordinator calls once an epoch is no longer needed.
func (s *SharedState) GarbageCollect(watermark party.Epoch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for e := range s.validShares {
		if e <= watermark {
			delete(s.validShares, e)
		}
	}
	for e := range s.dealerCommitments {
		if e <= watermark {
			delete(s.dealerCommitments, e)
		}
	}
	for e := range s.merkleRoots {
		if e <= watermark {
			delete(s.merkleRoots, e)
		}
	}
}
