package breeze

import (
	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/protocols/pvss"
)

// shareMsg is the wire payload under wire.TagShare: dealer d hands
// verifier i its Share for epoch e.
type shareMsg struct {
	Epoch  party.Epoch
	Dealer party.ID
	Share  pvss.Share
}

// replyMsg is the wire payload under wire.TagReply: a verifier's
// signature over the dealer's commitment.
type replyMsg struct {
	Epoch  party.Epoch
	Dealer party.ID
	Signer party.ID
	Sig    []byte
}

// merkleMsg is the wire payload under wire.TagMerkleRoots (lattice
// variant only): the dealer's per-index cross-party share-tree roots,
// needed by Reply before it will accept a share.
type merkleMsg struct {
	Epoch  party.Epoch
	Dealer party.ID
	Roots  pvss.MerkleRoots
}

// contribution is one verifier's reconstruction contribution for a single
// dealer: its whole stored Share for that dealer, re-verified by Result
// via Kernel.Verify before any of its per-index values are trusted (see
// DESIGN.md — Result re-verifies full shares rather than per-index
// sub-proofs, since Kernel.Verify's contract operates over whole Share
// values, not a single extracted point).
type contribution struct {
	Dealer party.ID
	Share  pvss.Share
}

// reconstructMsg is the wire payload under wire.TagReconstruct: one
// verifier's bundle of per-dealer contributions for (epoch, index).
type reconstructMsg struct {
	Epoch         party.Epoch
	Index         party.Index
	Contributions []contribution
}

// Reconstructed is delivered on Wiring.Reconstructed once (epoch, index)
// has been fully reconstructed.
type Reconstructed struct {
	Epoch party.Epoch
	Index party.Index
	Value model.RandomNum
}
