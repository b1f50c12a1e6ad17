// Package lattice implements the module-SIS PVSS kernel variant:
// gadget-decomposed commitments, a recursive depth-ℓ Kronecker-product
// tensor fold over both the opening witness and the coefficient vector,
// per-party tensor evaluation, and a per-secret-index Merkle share-tree
// across parties.
//
// Dealing samples the secret coefficient vector and gadget-decomposes it
// into a base witness y_0. From y_0 (and, in parallel, the coefficient
// vector itself as v_0) the dealer folds forward through L depths: at each
// depth i it partitions the current vector into blocks of r*κ ring
// elements and left-multiplies each block by a κ×(r·κ) challenge matrix
// with {0,1} entries, derived deterministically from the share's root
// commitment so the verifier can rederive the same matrices. The folded
// (y_i, v_i) pair at every depth is bundled into the proof, together with
// the per-index Merkle share-tree and this recipient's inclusion proof.
// Verify recomputes the fold forward from (y_0, v_0), checking the chain
// matches at every depth and that y_i's centered infinity norm never
// exceeds (r·κ)^i — the gadget bits at depth 0 already satisfy this with
// bound 1, and each fold step can only grow the bound by the block width.
package lattice

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/luxfi/breeze/pkg/crs"
	"github.com/luxfi/breeze/pkg/math/lattice"
	"github.com/luxfi/breeze/pkg/merkle"
	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/pkg/pool"
	"github.com/luxfi/breeze/protocols/pvss"
)

// Kernel implements pvss.Kernel for the module-SIS variant.
type Kernel struct {
	pool *pool.Pool
}

var _ pvss.Kernel = (*Kernel)(nil)

// New returns a lattice kernel, parallelizing per-party work like the DL
// variant. A nil pool runs serially.
func New(workers *pool.Pool) *Kernel {
	return &Kernel{pool: workers}
}

func toMatrix(a [][]*big.Int) lattice.Matrix {
	out := make(lattice.Matrix, len(a))
	for i, row := range a {
		out[i] = lattice.Vec(row)
	}
	return out
}

// latticeFoldParams normalizes a CRS's recursion-depth, fold-factor, and
// statistical-security parameters, defaulting to a single unfolded level
// (L=0) for CRS files predating the recursive fold.
func latticeFoldParams(lp *crs.Lattice) (depth, foldFactor, kappa int) {
	depth = lp.L
	if depth < 0 {
		depth = 0
	}
	foldFactor = lp.R
	if foldFactor < 1 {
		foldFactor = 1
	}
	kappa = lp.Kappa
	if kappa < 1 {
		kappa = 1
	}
	return depth, foldFactor, kappa
}

// deriveFoldChallenge derives the depth-i κ×width {0,1} challenge matrix
// for one batch index's fold step, binding it to the share's overall
// commitment root so dealer and verifier compute identical matrices
// without exchanging them.
func deriveFoldChallenge(root merkle.Root, batchIdx, depth, kappa, width int) lattice.Matrix {
	need := kappa * width
	bits := make([]byte, 0, need)
	var counter uint32
	for len(bits) < need {
		var hdr [12]byte
		binary.BigEndian.PutUint32(hdr[0:4], uint32(batchIdx))
		binary.BigEndian.PutUint32(hdr[4:8], uint32(depth))
		binary.BigEndian.PutUint32(hdr[8:12], counter)
		leaves := [][]byte{
			[]byte("breeze-pvss-lattice/fold-challenge"),
			root[:],
			hdr[:],
		}
		digest := merkle.New(leaves).Root()
		for _, b := range digest[:] {
			for bit := 0; bit < 8 && len(bits) < need; bit++ {
				bits = append(bits, (b>>uint(bit))&1)
			}
		}
		counter++
	}
	out := make(lattice.Matrix, kappa)
	idx := 0
	for i := 0; i < kappa; i++ {
		row := make(lattice.Vec, width)
		for j := 0; j < width; j++ {
			row[j] = big.NewInt(int64(bits[idx]))
			idx++
		}
		out[i] = row
	}
	return out
}

// foldOnce applies the Kronecker fold (I_numBlocks ⊗ challenge) to vec:
// vec is partitioned into zero-padded blocks of width ring elements, and
// each block is left-multiplied by challenge, a κ×width {0,1} matrix.
func foldOnce(ring *lattice.Ring, vec lattice.Vec, challenge lattice.Matrix, width int) (lattice.Vec, error) {
	kappa := len(challenge)
	numBlocks := (len(vec) + width - 1) / width
	if numBlocks == 0 {
		numBlocks = 1
	}
	padded := make(lattice.Vec, numBlocks*width)
	for i := range padded {
		if i < len(vec) {
			padded[i] = vec[i]
		} else {
			padded[i] = big.NewInt(0)
		}
	}
	out := make(lattice.Vec, 0, numBlocks*kappa)
	for b := 0; b < numBlocks; b++ {
		block := padded[b*width : (b+1)*width]
		folded, err := ring.MulVec(challenge, block)
		if err != nil {
			return nil, err
		}
		out = append(out, folded...)
	}
	return out, nil
}

// foldChain recursively folds base through depth levels, returning
// [base, fold_1(base), fold_2(...), ..., fold_depth(...)] — the full
// (y_0..y_ell) or (v_0..v_ell) sequence bundled into the proof.
func foldChain(ring *lattice.Ring, root merkle.Root, batchIdx int, base lattice.Vec, kappa, foldFactor, depth int) ([]lattice.Vec, error) {
	width := foldFactor * kappa
	chain := make([]lattice.Vec, depth+1)
	chain[0] = base
	for i := 1; i <= depth; i++ {
		challenge := deriveFoldChallenge(root, batchIdx, i, kappa, width)
		folded, err := foldOnce(ring, chain[i-1], challenge, width)
		if err != nil {
			return nil, err
		}
		chain[i] = folded
	}
	return chain, nil
}

// verifyFoldChain recomputes chain[1:] from chain[0] using the same
// derived challenge matrices Deal used, reporting whether every depth
// matches the proof's claimed values.
func verifyFoldChain(ring *lattice.Ring, root merkle.Root, batchIdx int, chain []lattice.Vec, kappa, foldFactor int) bool {
	width := foldFactor * kappa
	for i := 1; i < len(chain); i++ {
		challenge := deriveFoldChallenge(root, batchIdx, i, kappa, width)
		folded, err := foldOnce(ring, chain[i-1], challenge, width)
		if err != nil || len(folded) != len(chain[i]) {
			return false
		}
		for k := range folded {
			if ring.Reduce(folded[k]).Cmp(ring.Reduce(chain[i][k])) != 0 {
				return false
			}
		}
	}
	return true
}

// foldBound returns (r*κ)^i, the maximum centered infinity norm a
// correctly-folded depth-i vector may have.
func foldBound(foldFactor, kappa, i int) *big.Int {
	base := big.NewInt(int64(foldFactor * kappa))
	return new(big.Int).Exp(base, big.NewInt(int64(i)), nil)
}

// checkWitnessFoldNorms verifies the y-chain's norm bound holds at every
// depth, including the depth-0 gadget bits (bound 1).
func checkWitnessFoldNorms(ring *lattice.Ring, chain []lattice.Vec, foldFactor, kappa int) bool {
	for i, y := range chain {
		if ring.NormInf(y).Cmp(foldBound(foldFactor, kappa, i)) > 0 {
			return false
		}
	}
	return true
}

// Deal implements pvss.Kernel.
func (k *Kernel) Deal(c *crs.CRS, epoch party.Epoch, ids []party.ID, batchSize, threshold int) ([]pvss.Share, model.Commitment, *pvss.MerkleRoots, error) {
	if c == nil || c.Variant != crs.VariantLattice || c.Lattice == nil {
		return nil, model.Commitment{}, nil, errors.New("lattice: crs is not a lattice-variant crs")
	}
	lp := c.Lattice
	a := toMatrix(lp.A)
	if len(a) == 0 {
		return nil, model.Commitment{}, nil, errors.New("lattice: crs matrix A is empty")
	}
	m := len(a[0])
	gadgetLen := (threshold + 1) * lp.LogQ
	if m != gadgetLen {
		return nil, model.Commitment{}, nil, fmt.Errorf("lattice: crs matrix A has %d columns, need (t+1)*log_q = %d", m, gadgetLen)
	}
	ring := lattice.NewRing(lp.Q)
	depth, foldFactor, kappa := latticeFoldParams(lp)

	coeffs := make([]lattice.Vec, batchSize)
	baseWitness := make([]lattice.Vec, batchSize)
	commits := make([]lattice.Vec, batchSize)
	for j := 0; j < batchSize; j++ {
		cv := lattice.NewVec(threshold + 1)
		for deg := range cv {
			v, err := ring.Random()
			if err != nil {
				return nil, model.Commitment{}, nil, fmt.Errorf("lattice: sample coefficient: %w", err)
			}
			cv[deg] = v
		}
		coeffs[j] = cv
		baseWitness[j] = lattice.GadgetDecompose(cv, lp.LogQ)
		tj, err := ring.MulVec(a, baseWitness[j])
		if err != nil {
			return nil, model.Commitment{}, nil, err
		}
		commits[j] = tj
	}

	// Per-party evaluations, used both for Share.Values and to build the
	// cross-party share-tree per secret index.
	byParty := make([][]lattice.Vec, batchSize) // byParty[j][i] is party i's ring element for index j, wrapped as Vec{value}
	for j := range byParty {
		byParty[j] = make([]lattice.Vec, len(ids))
	}
	for i, id := range ids {
		x := tensorBase(ring, id, foldFactor, depth)
		for j, cv := range coeffs {
			y := hornerEval(ring, cv, x)
			byParty[j][i] = lattice.Vec{y}
		}
	}

	shareTreeRoots := make([]merkle.Root, batchSize)
	inclusionProofs := make([][]*merkle.Proof, batchSize)
	for j := 0; j < batchSize; j++ {
		leaves := make([][]byte, len(ids))
		for i := range ids {
			leaves[i] = byParty[j][i][0].Bytes()
		}
		tree := merkle.New(leaves)
		shareTreeRoots[j] = tree.Root()
		inclusionProofs[j] = make([]*merkle.Proof, len(ids))
		for i := range ids {
			proof, ok := tree.GenerateProof(i)
			if !ok {
				return nil, model.Commitment{}, nil, fmt.Errorf("lattice: inclusion proof for index %d party %d", j, i)
			}
			inclusionProofs[j][i] = proof
		}
	}

	// The overall commitment transitively binds both the gadget commitment
	// vectors and the per-index share-tree roots, so Kernel.Verify (which
	// receives neither the CRS matrix witness nor the roots out of band)
	// can check both from the single Commitment digest.
	leaves := make([][]byte, 0, 2*batchSize)
	for j := 0; j < batchSize; j++ {
		leaves = append(leaves, encodeVec(commits[j]))
	}
	for j := 0; j < batchSize; j++ {
		leaves = append(leaves, shareTreeRoots[j][:])
	}
	root := merkle.New(leaves).Root()
	commitment := model.Commitment(root)

	// Fold both the gadget witness and the raw coefficient vector forward
	// through depth levels, using challenge matrices bound to the
	// now-known commitment root. Every (y_i, v_i) pair is carried in the
	// proof so Verify can rederive the same chain and check the norm
	// bound at each depth.
	yChains := make([][]lattice.Vec, batchSize)
	vChains := make([][]lattice.Vec, batchSize)
	for j := 0; j < batchSize; j++ {
		yChain, err := foldChain(ring, root, j, baseWitness[j], kappa, foldFactor, depth)
		if err != nil {
			return nil, model.Commitment{}, nil, fmt.Errorf("lattice: fold witness for index %d: %w", j, err)
		}
		vChain, err := foldChain(ring, root, j, coeffs[j], kappa, foldFactor, depth)
		if err != nil {
			return nil, model.Commitment{}, nil, fmt.Errorf("lattice: fold opening for index %d: %w", j, err)
		}
		yChains[j] = yChain
		vChains[j] = vChain
	}

	shares := make([]pvss.Share, len(ids))
	build := func(i int) error {
		id := ids[i]
		values := make([]pvss.Value, batchSize)
		for j := 0; j < batchSize; j++ {
			values[j] = pvss.Value(byParty[j][i][0].Bytes())
		}
		shares[i] = pvss.Share{
			Epoch:      epoch,
			Recipient:  id,
			N:          len(ids),
			Commitment: commitment,
			Values:     values,
			Proof:      encodeProof(yChains, vChains, shareTreeRoots, collectAt(inclusionProofs, i)),
		}
		return nil
	}
	if k.pool != nil {
		if err := k.pool.RunIndexed(context.Background(), len(ids), build); err != nil {
			return nil, model.Commitment{}, nil, err
		}
	} else {
		for i := range ids {
			_ = build(i)
		}
	}

	return shares, commitment, &pvss.MerkleRoots{Epoch: epoch, Roots: toCommitments(shareTreeRoots)}, nil
}

func collectAt(proofs [][]*merkle.Proof, i int) []*merkle.Proof {
	out := make([]*merkle.Proof, len(proofs))
	for j := range proofs {
		out[j] = proofs[j][i]
	}
	return out
}

func toCommitments(roots []merkle.Root) []model.Commitment {
	out := make([]model.Commitment, len(roots))
	for i, r := range roots {
		out[i] = model.Commitment(r)
	}
	return out
}

// tensorBase derives x(p)'s base coordinate x^{r^0} = x, the Horner
// evaluation point used to turn a party's coefficient vector into its
// per-index share value. The higher tensor powers x^{r^1}..x^{r^ell} are
// party-specific and so cannot drive the witness's recursive fold, which
// is computed once per batch index and shared identically across every
// recipient's proof; that fold instead derives its per-depth challenge
// matrices from the commitment root (see deriveFoldChallenge).
func tensorBase(ring *lattice.Ring, id party.ID, fold, depth int) *big.Int {
	x := big.NewInt(int64(id.Scalar()))
	seq := ring.TensorEvaluationVector(x, fold, depth)
	return seq[0]
}

func hornerEval(ring *lattice.Ring, coeffs lattice.Vec, x *big.Int) *big.Int {
	acc := big.NewInt(0)
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = ring.Add(ring.Mul(acc, x), coeffs[i])
	}
	return acc
}

// Verify implements pvss.Kernel: recomputes the gadget commitment from the
// revealed base witness, rederives the recursive tensor fold forward
// through every depth and checks it against the proof's carried chain and
// norm bound, recomputes the claimed per-party evaluation from the base
// opening vector, and checks the per-index share-tree inclusion proof
// against the root bundled in the same proof.
func (k *Kernel) Verify(c *crs.CRS, id party.ID, threshold int, share pvss.Share) bool {
	if c == nil || c.Variant != crs.VariantLattice || c.Lattice == nil {
		return false
	}
	lp := c.Lattice
	a := toMatrix(lp.A)
	ring := lattice.NewRing(lp.Q)
	depth, foldFactor, kappa := latticeFoldParams(lp)

	yChains, vChains, roots, inclusion, err := decodeProof(share.Proof, len(share.Values))
	if err != nil || len(yChains) != len(share.Values) || len(vChains) != len(share.Values) ||
		len(roots) != len(share.Values) || len(inclusion) != len(share.Values) {
		return false
	}

	commits := make([]lattice.Vec, len(yChains))
	for j, chain := range yChains {
		if len(chain) != depth+1 || len(vChains[j]) != depth+1 {
			return false
		}
		base := chain[0]
		if len(base) != (threshold+1)*lp.LogQ {
			return false
		}
		if !checkWitnessFoldNorms(ring, chain, foldFactor, kappa) {
			return false
		}
		tj, err := ring.MulVec(a, base)
		if err != nil {
			return false
		}
		commits[j] = tj
	}

	leaves := make([][]byte, 0, 2*len(yChains))
	for _, tj := range commits {
		leaves = append(leaves, encodeVec(tj))
	}
	for _, r := range roots {
		leaves = append(leaves, r[:])
	}
	root := merkle.New(leaves).Root()
	if model.Commitment(root) != share.Commitment {
		return false
	}

	for j := range yChains {
		if !verifyFoldChain(ring, root, j, yChains[j], kappa, foldFactor) {
			return false
		}
		if !verifyFoldChain(ring, root, j, vChains[j], kappa, foldFactor) {
			return false
		}
	}

	x := tensorBase(ring, id, foldFactor, depth)
	for j, chain := range vChains {
		cv := chain[0]
		y := hornerEval(ring, cv, x)
		claimed := new(big.Int).SetBytes(share.Values[j])
		if ring.Reduce(y).Cmp(ring.Reduce(claimed)) != 0 {
			return false
		}
		if !merkle.VerifyProof(claimed.Bytes(), inclusion[j], roots[j]) {
			return false
		}
	}
	return true
}

// ReconstructPoint implements pvss.Kernel: Lagrange interpolation at x=0 in
// Z_modulus over a threshold-sized set of per-party evaluations.
func (k *Kernel) ReconstructPoint(ids []party.ID, values []pvss.Value, modulus *big.Int) (pvss.Secret, error) {
	if modulus == nil {
		return nil, errors.New("lattice: reconstruct requires the ring modulus")
	}
	if len(ids) != len(values) || len(ids) == 0 {
		return nil, errors.New("lattice: mismatched or empty reconstruction set")
	}
	ring := lattice.NewRing(modulus)
	xs := make([]*big.Int, len(ids))
	for i, id := range ids {
		xs[i] = big.NewInt(int64(id.Scalar()))
	}
	ys := make([]*big.Int, len(values))
	for i, v := range values {
		ys[i] = new(big.Int).SetBytes(v)
	}

	acc := big.NewInt(0)
	for i := range xs {
		num := big.NewInt(1)
		den := big.NewInt(1)
		for j, xj := range xs {
			if j == i {
				continue
			}
			num = ring.Mul(num, ring.Sub(big.NewInt(0), xj))
			diff := ring.Sub(xs[i], xj)
			if diff.Sign() == 0 {
				return nil, errors.New("lattice: duplicate evaluation point")
			}
			den = ring.Mul(den, diff)
		}
		inv := new(big.Int).ModInverse(den, modulus)
		if inv == nil {
			return nil, errors.New("lattice: non-invertible denominator")
		}
		li := ring.Mul(num, inv)
		acc = ring.Add(acc, ring.Mul(li, ys[i]))
	}
	return pvss.Secret(acc.Bytes()), nil
}

// SecretToRandom implements pvss.Kernel.
func (k *Kernel) SecretToRandom(secret pvss.Secret) model.RandomNum {
	return model.RandomNumFromBytes(secret)
}

func encodeVec(v lattice.Vec) []byte {
	var out []byte
	for _, x := range v {
		b := x.Bytes()
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
		out = append(out, lenBuf[:]...)
		out = append(out, b...)
	}
	return out
}
