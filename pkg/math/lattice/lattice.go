// Package lattice implements the module-SIS ring arithmetic, gadget
// decomposition, and tensor-fold evaluation machinery the lattice PVSS
// variant is built on. Ring elements are canonicalized big.Int residues
// mod q; conversion to/from cronokirby/saferith.Nat happens only at
// serialization boundaries, the same big.Int<->saferith.Nat bridging idiom
// protocols/lss/sign/sign.go uses.
package lattice

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/cronokirby/saferith"
)

// Ring is Z_q for a fixed modulus q.
type Ring struct {
	Q *big.Int
}

// NewRing constructs the ring Z_q.
func NewRing(q *big.Int) *Ring {
	return &Ring{Q: new(big.Int).Set(q)}
}

// Reduce canonicalizes x into [0, q).
func (r *Ring) Reduce(x *big.Int) *big.Int {
	out := new(big.Int).Mod(x, r.Q)
	if out.Sign() < 0 {
		out.Add(out, r.Q)
	}
	return out
}

// Add returns a+b mod q.
func (r *Ring) Add(a, b *big.Int) *big.Int {
	return r.Reduce(new(big.Int).Add(a, b))
}

// Sub returns a-b mod q.
func (r *Ring) Sub(a, b *big.Int) *big.Int {
	return r.Reduce(new(big.Int).Sub(a, b))
}

// Mul returns a*b mod q.
func (r *Ring) Mul(a, b *big.Int) *big.Int {
	return r.Reduce(new(big.Int).Mul(a, b))
}

// Random samples a uniform element of Z_q.
func (r *Ring) Random() (*big.Int, error) {
	return rand.Int(rand.Reader, r.Q)
}

// CenteredAbs returns the infinity-norm magnitude of x: min(x, q-x) viewed
// as a centered residue, used by the per-depth norm-bound checks on
// folded opening vectors.
func (r *Ring) CenteredAbs(x *big.Int) *big.Int {
	v := r.Reduce(x)
	other := new(big.Int).Sub(r.Q, v)
	if other.Cmp(v) < 0 {
		return other
	}
	return v
}

// Vec is a vector of ring elements.
type Vec []*big.Int

// NewVec allocates a zero vector of length n.
func NewVec(n int) Vec {
	v := make(Vec, n)
	for i := range v {
		v[i] = big.NewInt(0)
	}
	return v
}

// Dot computes the ring inner product of a and b.
func (r *Ring) Dot(a, b Vec) (*big.Int, error) {
	if len(a) != len(b) {
		return nil, errors.New("lattice: vector length mismatch")
	}
	acc := big.NewInt(0)
	for i := range a {
		acc = r.Add(acc, r.Mul(a[i], b[i]))
	}
	return acc, nil
}

// AddVec returns a+b componentwise.
func (r *Ring) AddVec(a, b Vec) Vec {
	out := make(Vec, len(a))
	for i := range a {
		out[i] = r.Add(a[i], b[i])
	}
	return out
}

// ScaleVec returns s*a componentwise.
func (r *Ring) ScaleVec(s *big.Int, a Vec) Vec {
	out := make(Vec, len(a))
	for i := range a {
		out[i] = r.Mul(s, a[i])
	}
	return out
}

// NormInf returns the maximum centered magnitude over v's entries.
func (r *Ring) NormInf(v Vec) *big.Int {
	max := big.NewInt(0)
	for _, x := range v {
		a := r.CenteredAbs(x)
		if a.Cmp(max) > 0 {
			max = a
		}
	}
	return max
}

// Matrix is a dense matrix of ring elements, rows first.
type Matrix []Vec

// RandomMatrix samples an n x m matrix uniformly over Z_q — the CRS
// matrix A.
func (r *Ring) RandomMatrix(n, m int) (Matrix, error) {
	out := make(Matrix, n)
	for i := range out {
		row := make(Vec, m)
		for j := range row {
			x, err := r.Random()
			if err != nil {
				return nil, err
			}
			row[j] = x
		}
		out[i] = row
	}
	return out, nil
}

// MulVec computes A*v.
func (r *Ring) MulVec(a Matrix, v Vec) (Vec, error) {
	out := make(Vec, len(a))
	for i, row := range a {
		d, err := r.Dot(row, v)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// GadgetDecompose bit-decomposes every entry of x into logQ base-2 digits,
// producing a vector of length len(x)*logQ. The inverse relation is
// GadgetRecompose.
func GadgetDecompose(x Vec, logQ int) Vec {
	out := make(Vec, 0, len(x)*logQ)
	for _, e := range x {
		v := new(big.Int).Set(e)
		for b := 0; b < logQ; b++ {
			bit := new(big.Int).And(v, big.NewInt(1))
			out = append(out, bit)
			v = new(big.Int).Rsh(v, 1)
		}
	}
	return out
}

// GadgetRecompose inverts GadgetDecompose: it recombines groups of logQ
// bits back into ring elements, used to check the gadget relation
// t_{i-1} = (I⊗A)·s_i is self-consistent during testing.
func (r *Ring) GadgetRecompose(bits Vec, logQ int) Vec {
	n := len(bits) / logQ
	out := make(Vec, n)
	for i := 0; i < n; i++ {
		acc := big.NewInt(0)
		pow := big.NewInt(1)
		for b := 0; b < logQ; b++ {
			term := new(big.Int).Mul(bits[i*logQ+b], pow)
			acc.Add(acc, term)
			pow = new(big.Int).Lsh(pow, 1)
		}
		out[i] = r.Reduce(acc)
	}
	return out
}

// TensorEvaluationVector builds x(p) = (x^{r^0}, x^{r^1}, ..., x^{r^ell}),
// the nested-Kronecker evaluation sequence a party's index folds against
// at each recursion depth.
func (r *Ring) TensorEvaluationVector(x *big.Int, fold, depth int) []*big.Int {
	out := make([]*big.Int, depth+1)
	exp := big.NewInt(1)
	for i := 0; i <= depth; i++ {
		out[i] = new(big.Int).Exp(x, exp, r.Q)
		exp = new(big.Int).Mul(exp, big.NewInt(int64(fold)))
	}
	return out
}

// NatFromBig converts a ring element to a saferith.Nat for serialization,
// the same direction protocols/lss/sign/sign.go converts in when emitting
// wire bytes (`rNat := new(saferith.Nat).SetBytes(rBig.Bytes())`).
func NatFromBig(x *big.Int) *saferith.Nat {
	return new(saferith.Nat).SetBytes(x.Bytes())
}

// BigFromNat converts a saferith.Nat back to a big.Int ring element.
func BigFromNat(n *saferith.Nat) *big.Int {
	return new(big.Int).SetBytes(n.Bytes())
}
