// Package party defines committee member identities shared across the
// PVSS kernel, the Breeze actors, Init-BFT, and the coordinator.
package party

import (
	"sort"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ID is a 1-based committee member index, derived by sorted public-key
// position.
type ID uint32

// Epoch is a monotone epoch counter, starting at 0.
type Epoch uint64

// Index identifies a per-epoch secret inside a batch; 1-based like ID.
type Index uint32

// Less gives the total order over IDs used for Init-BFT's lowest-ID
// tie-break.
func (i ID) Less(other ID) bool { return i < other }

// Scalar maps a party ID onto its evaluation point x_i = i in the scalar
// field used by a polynomial commitment scheme. Callers that need a
// curve-specific scalar pass the result to curve.ScalarFromUint64; this helper only
// fixes the convention that x_i is the ID itself, never ID-1 or ID+1.
func (i ID) Scalar() uint64 { return uint64(i) }

// Member pairs a committee ID with its public key.
type Member struct {
	ID        ID
	PublicKey *secp256k1.PublicKey
}

// SortMembers assigns IDs 1..n by ascending compressed public-key bytes.
func SortMembers(keys []*secp256k1.PublicKey) []Member {
	sorted := make([]*secp256k1.PublicKey, len(keys))
	copy(sorted, keys)
	sort.Slice(sorted, func(a, b int) bool {
		ab := sorted[a].SerializeCompressed()
		bb := sorted[b].SerializeCompressed()
		for k := range ab {
			if ab[k] != bb[k] {
				return ab[k] < bb[k]
			}
		}
		return false
	})
	members := make([]Member, len(sorted))
	for idx, pk := range sorted {
		members[idx] = Member{ID: ID(idx + 1), PublicKey: pk}
	}
	return members
}

// FaultTolerance returns f = (n-1)/3 and the quorum threshold 2f+1.
func FaultTolerance(n int) (f, quorum int) {
	f = (n - 1) / 3
	return f, 2*f + 1
}

// WeakQuorum returns f+1, the threshold used for CommonCore agreement.
func WeakQuorum(n int) int {
	f, _ := FaultTolerance(n)
	return f + 1
}
