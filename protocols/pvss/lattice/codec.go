package lattice

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/luxfi/breeze/pkg/math/lattice"
	"github.com/luxfi/breeze/pkg/merkle"
)

// encodeProof serializes the per-index (y, v) fold chains, the bundled
// share-tree roots, and this recipient's inclusion proof into Share.Proof's
// opaque byte string.
func encodeProof(yChains, vChains [][]lattice.Vec, roots []merkle.Root, inclusion []*merkle.Proof) []byte {
	var out []byte
	putU32 := func(n int) {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(n))
		out = append(out, b[:]...)
	}
	putBytes := func(b []byte) {
		putU32(len(b))
		out = append(out, b...)
	}
	putChains := func(chains [][]lattice.Vec) {
		putU32(len(chains))
		for _, chain := range chains {
			putU32(len(chain))
			for _, w := range chain {
				putU32(len(w))
				for _, x := range w {
					putBytes(x.Bytes())
				}
			}
		}
	}

	putChains(yChains)
	putChains(vChains)
	putU32(len(roots))
	for _, r := range roots {
		out = append(out, r[:]...)
	}
	putU32(len(inclusion))
	for _, p := range inclusion {
		putU32(p.LeafIndex)
		putU32(len(p.Siblings))
		for i, sib := range p.Siblings {
			out = append(out, sib[:]...)
			if p.RightSibling[i] {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	}
	return out
}

type reader struct {
	data []byte
	pos  int
}

func (r *reader) u32() (int, error) {
	if r.pos+4 > len(r.data) {
		return 0, errors.New("lattice: truncated proof")
	}
	n := binary.BigEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return int(n), nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, errors.New("lattice: truncated proof")
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) lenPrefixedBytes() ([]byte, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	return r.bytes(n)
}

func (r *reader) chains() ([][]lattice.Vec, error) {
	numChains, err := r.u32()
	if err != nil {
		return nil, err
	}
	chains := make([][]lattice.Vec, numChains)
	for c := range chains {
		depth, err := r.u32()
		if err != nil {
			return nil, err
		}
		chain := make([]lattice.Vec, depth)
		for d := range chain {
			length, err := r.u32()
			if err != nil {
				return nil, err
			}
			vec := make(lattice.Vec, length)
			for k := range vec {
				b, err := r.lenPrefixedBytes()
				if err != nil {
					return nil, err
				}
				vec[k] = new(big.Int).SetBytes(b)
			}
			chain[d] = vec
		}
		chains[c] = chain
	}
	return chains, nil
}

// decodeProof is encodeProof's inverse. expectedIndices is a hint only used
// for a cheap sanity bound, not trusted for correctness.
func decodeProof(data []byte, expectedIndices int) (yChains, vChains [][]lattice.Vec, roots []merkle.Root, inclusion []*merkle.Proof, err error) {
	r := &reader{data: data}

	yChains, err = r.chains()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	vChains, err = r.chains()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	numR, err := r.u32()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	roots = make([]merkle.Root, numR)
	for i := range roots {
		b, err := r.bytes(32)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		copy(roots[i][:], b)
	}

	numP, err := r.u32()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	inclusion = make([]*merkle.Proof, numP)
	for i := range inclusion {
		leafIndex, err := r.u32()
		if err != nil {
			return nil, nil, nil, nil, err
		}
		numSib, err := r.u32()
		if err != nil {
			return nil, nil, nil, nil, err
		}
		p := &merkle.Proof{LeafIndex: leafIndex}
		for s := 0; s < numSib; s++ {
			sib, err := r.bytes(32)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			var sibArr [32]byte
			copy(sibArr[:], sib)
			flag, err := r.bytes(1)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			p.Siblings = append(p.Siblings, sibArr)
			p.RightSibling = append(p.RightSibling, flag[0] == 1)
		}
		inclusion[i] = p
	}

	return yChains, vChains, roots, inclusion, nil
}
