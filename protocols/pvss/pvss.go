// Package pvss defines the capability contract both PVSS kernel variants
// satisfy: deal, verify, reconstruct_point, secret_to_random. The two
// implementations, protocols/pvss/dl and protocols/pvss/lattice, are
// selected at process boot from the loaded CRS's variant tag, never by
// reflection on the hot path.
package pvss

import (
	"math/big"

	"github.com/luxfi/breeze/pkg/crs"
	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/party"
)

// Value is one variant-encoded evaluation point: a DL scalar or a lattice
// ring vector, each in its own canonical byte encoding. Values only ever
// travel between a Kernel and its own ReconstructPoint; the pvss package
// itself never interprets their contents.
type Value []byte

// Secret is the variant-encoded reconstructed secret, ready for
// SecretToRandom: a 32-byte little-endian scalar for the DL variant, the
// minimal big-endian bytes of the value mod q for the lattice variant.
type Secret []byte

// Share is what a dealer hands one verifier for one epoch: the dealer's
// commitment, the verifier's evaluation of every batched polynomial, and
// an opaque variant-specific evaluation proof.
type Share struct {
	Epoch      party.Epoch
	Dealer     party.ID
	Recipient  party.ID
	N          int // total party count, carried so Verify needs no side channel
	Commitment model.Commitment
	Values     []Value // one per batch index, len == BatchSize
	Proof      []byte  // variant-specific verifiable evaluation proof
}

// MerkleRoots is the lattice variant's per-index share-tree broadcast; the
// DL variant never produces one, so Deal returns nil for it.
type MerkleRoots struct {
	Epoch  party.Epoch
	Dealer party.ID
	Roots  []model.Commitment // one root per batch index
}

// Kernel is the capability set a dealing/verifying/reconstructing party
// uses without caring which cryptographic variant backs it.
type Kernel interface {
	// Deal produces one Share per id plus the dealer's public Commitment,
	// and, for variants that need it, a per-index MerkleRoots broadcast.
	Deal(c *crs.CRS, epoch party.Epoch, ids []party.ID, batchSize, threshold int) ([]Share, model.Commitment, *MerkleRoots, error)

	// Verify is a pure function: it returns false on any mismatch and has
	// no side effects.
	Verify(c *crs.CRS, id party.ID, threshold int, share Share) bool

	// ReconstructPoint interpolates one dealer's secret at x=0 from a
	// threshold-sized set of (id, value) pairs for a single batch index.
	// modulus is the ring modulus q for the lattice variant and is ignored
	// by the DL variant, whose scalar field modulus is fixed by the curve
	// group.
	ReconstructPoint(ids []party.ID, values []Value, modulus *big.Int) (Secret, error)

	// SecretToRandom deterministically extracts a RandomNum from a
	// reconstructed secret.
	SecretToRandom(secret Secret) model.RandomNum
}
