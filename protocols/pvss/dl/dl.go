// Package dl implements the discrete-log PVSS kernel variant:
// per-polynomial Pedersen-style commitments, a batched
// Bulletproofs-style inner-product argument over a Merkle-hashed
// Fiat-Shamir transcript, and Lagrange reconstruction at x=0.
//
// Grounded on pkg/math/curve (the prime-order group), pkg/math/polynomial
// (coefficient sampling, evaluation, Lagrange interpolation) and
// pkg/merkle (the Fiat-Shamir transcript hash and the commitment tree).
package dl

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/luxfi/breeze/pkg/crs"
	"github.com/luxfi/breeze/pkg/math/curve"
	"github.com/luxfi/breeze/pkg/math/polynomial"
	"github.com/luxfi/breeze/pkg/merkle"
	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/pkg/pool"
	"github.com/luxfi/breeze/protocols/pvss"
)

// Kernel implements pvss.Kernel for the discrete-log variant.
type Kernel struct {
	pool *pool.Pool
}

var _ pvss.Kernel = (*Kernel)(nil)

// New returns a DL kernel that parallelizes per-party work across workers
// chunks of roughly n/10. A nil pool runs serially.
func New(workers *pool.Pool) *Kernel {
	return &Kernel{pool: workers}
}

// Deal implements pvss.Kernel.
func (k *Kernel) Deal(c *crs.CRS, epoch party.Epoch, ids []party.ID, batchSize, threshold int) ([]pvss.Share, model.Commitment, *pvss.MerkleRoots, error) {
	if c == nil || c.Variant != crs.VariantDL || c.DL == nil {
		return nil, model.Commitment{}, nil, errors.New("dl: crs is not a dl-variant crs")
	}
	gens := c.DL.G
	if len(gens) < threshold+1 {
		return nil, model.Commitment{}, nil, fmt.Errorf("dl: crs has %d generators, need >= %d", len(gens), threshold+1)
	}
	gens = gens[:threshold+1]

	polys := make([]*polynomial.Polynomial, batchSize)
	commits := make([]*curve.Point, batchSize)
	for j := 0; j < batchSize; j++ {
		p, err := polynomial.NewRandom(threshold)
		if err != nil {
			return nil, model.Commitment{}, nil, fmt.Errorf("dl: sample polynomial %d: %w", j, err)
		}
		cj, err := p.CommitCoefficients(gens)
		if err != nil {
			return nil, model.Commitment{}, nil, fmt.Errorf("dl: commit polynomial %d: %w", j, err)
		}
		polys[j] = p
		commits[j] = cj
	}

	leaves := make([][]byte, batchSize)
	for j, cj := range commits {
		leaves[j] = cj.Bytes()
	}
	root := merkle.New(leaves).Root()
	commitment := model.Commitment(root)

	rho := curve.HashToScalar("breeze-pvss-dl/rho", root[:])
	rhoPowers := powersOf(rho, batchSize)

	combinedCoeffs := make([]*curve.Scalar, threshold+1)
	for deg := 0; deg <= threshold; deg++ {
		acc := curve.NewScalar()
		for j, p := range polys {
			acc = acc.Add(rhoPowers[j].Mul(p.Coefficients()[deg]))
		}
		combinedCoeffs[deg] = acc
	}

	shares := make([]pvss.Share, len(ids))
	build := func(i int) error {
		id := ids[i]
		x := curve.ScalarFromUint64(id.Scalar())
		xPowers := powersOf(x, threshold+1)

		values := make([]pvss.Value, batchSize)
		combinedY := curve.NewScalar()
		for j, p := range polys {
			y := p.Evaluate(x)
			values[j] = pvss.Value(y.Bytes())
			combinedY = combinedY.Add(rhoPowers[j].Mul(y))
		}

		proof := proveIPA(combinedCoeffs, gens, xPowers, c.DL.H, root)
		shares[i] = pvss.Share{
			Epoch:      epoch,
			Recipient:  id,
			N:          len(ids),
			Commitment: commitment,
			Values:     values,
			Proof:      encodeProof(commits, proof),
		}
		return nil
	}
	if k.pool != nil {
		if err := k.pool.RunIndexed(context.Background(), len(ids), build); err != nil {
			return nil, model.Commitment{}, nil, err
		}
	} else {
		for i := range ids {
			if err := build(i); err != nil {
				return nil, model.Commitment{}, nil, err
			}
		}
	}
	return shares, commitment, nil, nil
}

// Verify implements pvss.Kernel.
func (k *Kernel) Verify(c *crs.CRS, id party.ID, threshold int, share pvss.Share) bool {
	if c == nil || c.Variant != crs.VariantDL || c.DL == nil {
		return false
	}
	gens := c.DL.G
	if len(gens) < threshold+1 {
		return false
	}
	gens = gens[:threshold+1]

	commits, proof, err := decodeProof(share.Proof)
	if err != nil || len(commits) != len(share.Values) {
		return false
	}

	leaves := make([][]byte, len(commits))
	for j, cj := range commits {
		leaves[j] = cj.Bytes()
	}
	root := merkle.New(leaves).Root()
	if model.Commitment(root) != share.Commitment {
		return false
	}

	rho := curve.HashToScalar("breeze-pvss-dl/rho", root[:])
	rhoPowers := powersOf(rho, len(commits))

	combinedC := curve.NewPoint()
	combinedY := curve.NewScalar()
	for j, cj := range commits {
		combinedC = combinedC.Add(rhoPowers[j].Act(cj))
		y, err := curve.ScalarFromBytes(share.Values[j])
		if err != nil {
			return false
		}
		combinedY = combinedY.Add(rhoPowers[j].Mul(y))
	}

	x := curve.ScalarFromUint64(id.Scalar())
	xPowers := powersOf(x, threshold+1)

	return verifyIPA(combinedC, combinedY, gens, xPowers, c.DL.H, root, proof)
}

// ReconstructPoint implements pvss.Kernel: Lagrange interpolation at x=0
// over a threshold-sized set of per-party evaluations for one batch index.
// modulus is unused: the scalar field modulus is fixed by the curve group.
func (k *Kernel) ReconstructPoint(ids []party.ID, values []pvss.Value, modulus *big.Int) (pvss.Secret, error) {
	if len(ids) != len(values) || len(ids) == 0 {
		return nil, errors.New("dl: mismatched or empty reconstruction set")
	}
	xs := polynomial.IDsToScalars(ids)
	ys := make([]*curve.Scalar, len(values))
	for i, v := range values {
		y, err := curve.ScalarFromBytes(v)
		if err != nil {
			return nil, fmt.Errorf("dl: value %d: %w", i, err)
		}
		ys[i] = y
	}
	secret, err := polynomial.ReconstructSecret(xs, ys)
	if err != nil {
		return nil, err
	}
	return pvss.Secret(secret.Bytes()), nil
}

// SecretToRandom implements pvss.Kernel.
func (k *Kernel) SecretToRandom(secret pvss.Secret) model.RandomNum {
	return model.RandomNumFromBytes(secret)
}

// powersOf returns [x^0, x^1, ..., x^(n-1)].
func powersOf(x *curve.Scalar, n int) []*curve.Scalar {
	out := make([]*curve.Scalar, n)
	if n == 0 {
		return out
	}
	out[0] = curve.ScalarFromUint64(1)
	for i := 1; i < n; i++ {
		out[i] = out[i-1].Mul(x)
	}
	return out
}
