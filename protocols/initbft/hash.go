package initbft

import (
	"encoding/binary"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/luxfi/breeze/pkg/model"
)

// sortedSet returns set sorted ascending by dealer, the canonical order
// both the hash and equality checks below rely on.
func sortedSet(set []model.DealerCommitment) []model.DealerCommitment {
	out := append([]model.DealerCommitment(nil), set...)
	sort.Slice(out, func(i, j int) bool { return out[i].Dealer < out[j].Dealer })
	return out
}

// digestSetHash derives the digest a Vote signs over from a proposed
// common-core set: an unkeyed blake3 hash of every (dealer ID, commitment)
// pair in ascending dealer order.
func digestSetHash(set []model.DealerCommitment) [32]byte {
	sorted := sortedSet(set)
	h := blake3.New()
	for _, dc := range sorted {
		var idBuf [4]byte
		binary.BigEndian.PutUint32(idBuf[:], uint32(dc.Dealer))
		h.Write(idBuf[:])
		h.Write(dc.Commitment[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// sameSet reports whether a and b contain the same (dealer, commitment)
// pairs, ignoring order.
func sameSet(a, b []model.DealerCommitment) bool {
	return digestSetHash(a) == digestSetHash(b)
}
