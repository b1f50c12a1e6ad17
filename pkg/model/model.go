// Package model holds the wire-level data types shared across the PVSS
// kernel, the Breeze actors, Init-BFT, and the coordinator: RandomNum,
// BreezeCertificate, CommonCore, and ReconRequest.
// None of these types belong to any single component, so they live apart
// from protocols/pvss and protocols/coordinator to avoid an import cycle
// between the two.
package model

import (
	"math/big"

	"github.com/luxfi/breeze/pkg/merkle"
	"github.com/luxfi/breeze/pkg/party"
)

// RandomNum is the beacon's 128-bit output. Go has no native u128, so the
// value is carried as 16 bytes, little-endian, matching the canonical
// encoding convention the rest of the module uses for scalars.
type RandomNum [16]byte

// Big returns n's value as an unsigned big.Int.
func (n RandomNum) Big() *big.Int {
	be := make([]byte, 16)
	for i := 0; i < 16; i++ {
		be[i] = n[15-i]
	}
	return new(big.Int).SetBytes(be)
}

// RandomNumFromBytes truncates a canonical little-endian secret encoding to
// its low 16 bytes.
func RandomNumFromBytes(canonical []byte) RandomNum {
	var out RandomNum
	n := len(canonical)
	if n > 16 {
		n = 16
	}
	copy(out[:n], canonical[:n])
	return out
}

// Commitment is the dealer's per-epoch commitment digest c: a Merkle root
// over per-index polynomial commitments (DL) or over the gadget-committed
// vector t (lattice).
type Commitment = merkle.Root

// Signature is one committee member's signature over a Commitment.
type Signature struct {
	Signer party.ID
	Sig    []byte
}

// BreezeCertificate is the tuple (c, epoch, {(pk, sig)}) a dealer's
// Confirm actor emits once at least 2f+1 distinct signatures on c have been
// collected.
type BreezeCertificate struct {
	Epoch      party.Epoch
	Dealer     party.ID
	Commitment Commitment
	Signatures []Signature
}

// Valid reports whether the certificate carries at least quorum distinct
// signer IDs. It does not itself verify the signatures; callers check each
// Signature against the dealer's stored commitment before counting it.
func (c *BreezeCertificate) Valid(quorum int) bool {
	seen := make(map[party.ID]struct{}, len(c.Signatures))
	for _, sig := range c.Signatures {
		seen[sig.Signer] = struct{}{}
	}
	return len(seen) >= quorum
}

// CommonCore is the set of >= f+1 BreezeCertificate values agreed for one
// epoch, keyed by dealer ID so lookups and the ReconRequest digest-set
// derivation stay O(1) per dealer.
type CommonCore struct {
	Epoch        party.Epoch
	Certificates map[party.ID]BreezeCertificate
}

// NewCommonCore creates an empty CommonCore for epoch e.
func NewCommonCore(e party.Epoch) *CommonCore {
	return &CommonCore{Epoch: e, Certificates: make(map[party.ID]BreezeCertificate)}
}

// Add inserts cert, keyed by its dealer.
func (cc *CommonCore) Add(cert BreezeCertificate) {
	cc.Certificates[cert.Dealer] = cert
}

// Len returns the number of distinct dealer certificates in the core.
func (cc *CommonCore) Len() int { return len(cc.Certificates) }

// DealerCommitment pairs a dealer with the commitment a ReconRequest asks
// verifiers to reconstruct shares against.
type DealerCommitment struct {
	Dealer     party.ID
	Commitment Commitment
}

// DigestSet returns the core's (dealer, commitment) pairs in ascending
// dealer-ID order, the fixed digest-set a ReconRequest for this epoch
// reconstructs over. The set is fixed for an epoch once the common core
// is known.
func (cc *CommonCore) DigestSet() []DealerCommitment {
	out := make([]DealerCommitment, 0, len(cc.Certificates))
	for dealer, cert := range cc.Certificates {
		out = append(out, DealerCommitment{Dealer: dealer, Commitment: cert.Commitment})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Dealer < out[j-1].Dealer; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// ReconRequest asks every verifier to reply with the index-th secret from
// each certificate in DigestSet, summed.
type ReconRequest struct {
	Epoch     party.Epoch
	Index     party.Index
	DigestSet []DealerCommitment
}
