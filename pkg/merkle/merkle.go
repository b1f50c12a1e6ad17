// Package merkle implements the SHA-256 Merkle trees used as commit-trees
// over dealer polynomial commitments, as the lattice variant's per-index
// share-trees, and as the Fiat-Shamir transcript hash for both PVSS
// variants.
//
// Leaf and internal hashing follow the RFC-6962 domain separation
// convention (leaves and internal nodes hash under distinct prefixes) so
// that a leaf value can never be mistaken for an internal node during
// verification.
package merkle

import "crypto/sha256"

const (
	leafPrefix = 0x00
	nodePrefix = 0x01
)

// Root is a 32-byte Merkle tree root digest.
type Root [32]byte

// Tree is a complete, in-memory binary Merkle tree over an ordered list of
// leaves. It is built once and never mutated.
type Tree struct {
	levels [][][32]byte // levels[0] = leaf hashes, levels[len-1] = {root}
}

// leafHash hashes one input under the leaf domain tag.
func leafHash(data []byte) [32]byte {
	h := sha256.New()
	h.Write([]byte{leafPrefix})
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func nodeHash(left, right [32]byte) [32]byte {
	h := sha256.New()
	h.Write([]byte{nodePrefix})
	h.Write(left[:])
	h.Write(right[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// New builds a Merkle tree over leaves, each hashed with the leaf domain
// tag. An empty leaf set produces a tree whose root is the hash of the
// empty string under the leaf tag, so Root is always well-defined.
func New(leaves [][]byte) *Tree {
	if len(leaves) == 0 {
		return &Tree{levels: [][][32]byte{{leafHash(nil)}}}
	}
	level := make([][32]byte, len(leaves))
	for i, l := range leaves {
		level[i] = leafHash(l)
	}
	levels := [][][32]byte{level}
	for len(level) > 1 {
		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, nodeHash(level[i], level[i+1]))
			} else {
				// Odd tail: promote unchanged, per RFC-6962.
				next = append(next, level[i])
			}
		}
		levels = append(levels, next)
		level = next
	}
	return &Tree{levels: levels}
}

// Root returns the tree's root digest.
func (t *Tree) Root() Root {
	top := t.levels[len(t.levels)-1]
	return Root(top[0])
}

// Proof is an inclusion proof for one leaf: the sibling hash at each level
// from the leaf up to the root, and whether that sibling was on the right.
type Proof struct {
	LeafIndex int
	Siblings  [][32]byte
	// RightSibling[i] is true if Siblings[i] sits to the right of the
	// running hash at level i.
	RightSibling []bool
}

// GenerateProof builds an O(log n) inclusion proof for leaf index idx.
func (t *Tree) GenerateProof(idx int) (*Proof, bool) {
	if idx < 0 || idx >= len(t.levels[0]) {
		return nil, false
	}
	p := &Proof{LeafIndex: idx}
	pos := idx
	for level := 0; level < len(t.levels)-1; level++ {
		nodes := t.levels[level]
		var siblingPos int
		var right bool
		if pos%2 == 0 {
			siblingPos = pos + 1
			right = true
		} else {
			siblingPos = pos - 1
			right = false
		}
		if siblingPos < len(nodes) {
			p.Siblings = append(p.Siblings, nodes[siblingPos])
			p.RightSibling = append(p.RightSibling, right)
		}
		// Odd-tail promotion: if this node had no sibling, it is carried
		// unchanged to the next level at the same relative position.
		pos /= 2
	}
	return p, true
}

// VerifyProof recomputes the root from leaf and proof and checks it
// against root. It never panics on malformed input.
func VerifyProof(leaf []byte, proof *Proof, root Root) bool {
	if proof == nil || len(proof.RightSibling) != len(proof.Siblings) {
		return false
	}
	running := leafHash(leaf)
	for i, sib := range proof.Siblings {
		if proof.RightSibling[i] {
			running = nodeHash(running, sib)
		} else {
			running = nodeHash(sib, running)
		}
	}
	return Root(running) == root
}
