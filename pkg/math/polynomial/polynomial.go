// Package polynomial implements the scalar-field polynomials the PVSS
// dealer commits to, and the Lagrange interpolation at zero that
// reconstruction uses to recover a secret from a threshold of shares.
package polynomial

import (
	"errors"

	"github.com/luxfi/breeze/pkg/math/curve"
	"github.com/luxfi/breeze/pkg/party"
)

// Polynomial is a degree-t polynomial over the scalar field, stored as its
// t+1 coefficients, lowest degree first.
type Polynomial struct {
	coeffs []*curve.Scalar
}

// New creates a random polynomial of degree t whose constant term is the
// given secret.
func New(t int, secret *curve.Scalar) (*Polynomial, error) {
	if t < 0 {
		return nil, errors.New("polynomial: negative degree")
	}
	coeffs := make([]*curve.Scalar, t+1)
	coeffs[0] = secret
	for i := 1; i <= t; i++ {
		s, err := curve.RandomScalar()
		if err != nil {
			return nil, err
		}
		coeffs[i] = s
	}
	return &Polynomial{coeffs: coeffs}, nil
}

// NewRandom creates a polynomial of degree t with a fresh random secret.
func NewRandom(t int) (*Polynomial, error) {
	secret, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}
	return New(t, secret)
}

// Degree returns t.
func (p *Polynomial) Degree() int { return len(p.coeffs) - 1 }

// Secret returns the constant term, p(0).
func (p *Polynomial) Secret() *curve.Scalar { return p.coeffs[0] }

// Coefficients returns the t+1 coefficients, lowest degree first.
func (p *Polynomial) Coefficients() []*curve.Scalar { return p.coeffs }

// Evaluate computes p(x) by Horner's method.
func (p *Polynomial) Evaluate(x *curve.Scalar) *curve.Scalar {
	acc := curve.NewScalar()
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		acc = acc.Mul(x).Add(p.coeffs[i])
	}
	return acc
}

// EvaluateAt evaluates p at a committee member's canonical point x_i = i.
func (p *Polynomial) EvaluateAt(id party.ID) *curve.Scalar {
	return p.Evaluate(curve.ScalarFromUint64(id.Scalar()))
}

// CommitCoefficients returns the single point Σ_k a_k·g_k, committing to
// every coefficient against the provided generator vector. len(gens) must
// be >= degree+1.
func (p *Polynomial) CommitCoefficients(gens []*curve.Point) (*curve.Point, error) {
	if len(gens) < len(p.coeffs) {
		return nil, errors.New("polynomial: not enough CRS generators")
	}
	acc := curve.NewPoint()
	for i, c := range p.coeffs {
		acc = acc.Add(c.Act(gens[i]))
	}
	return acc, nil
}

// LagrangeCoefficient computes the Lagrange basis coefficient L_i(0) for
// reconstructing a secret from the point set xs, at index i.
func LagrangeCoefficient(xs []*curve.Scalar, i int) (*curve.Scalar, error) {
	if i < 0 || i >= len(xs) {
		return nil, errors.New("polynomial: index out of range")
	}
	num := curve.ScalarFromUint64(1)
	den := curve.ScalarFromUint64(1)
	zero := curve.ScalarFromUint64(0)
	for j, xj := range xs {
		if j == i {
			continue
		}
		// num *= (0 - x_j) = -x_j
		num = num.Mul(zero.Sub(xj))
		// den *= (x_i - x_j)
		diff := xs[i].Sub(xj)
		if diff.IsZero() {
			return nil, errors.New("polynomial: duplicate evaluation point")
		}
		den = den.Mul(diff)
	}
	return num.Mul(den.Inverse()), nil
}

// ReconstructSecret performs Lagrange interpolation at x=0 given a
// threshold-sized set of (x_i, y_i) pairs.
func ReconstructSecret(xs []*curve.Scalar, ys []*curve.Scalar) (*curve.Scalar, error) {
	if len(xs) != len(ys) || len(xs) == 0 {
		return nil, errors.New("polynomial: mismatched or empty point set")
	}
	acc := curve.NewScalar()
	for i := range xs {
		li, err := LagrangeCoefficient(xs, i)
		if err != nil {
			return nil, err
		}
		acc = acc.Add(li.Mul(ys[i]))
	}
	return acc, nil
}

// IDsToScalars maps committee IDs to their canonical evaluation points.
func IDsToScalars(ids []party.ID) []*curve.Scalar {
	out := make([]*curve.Scalar, len(ids))
	for i, id := range ids {
		out[i] = curve.ScalarFromUint64(id.Scalar())
	}
	return out
}

// RandomNonZeroScalar is a small sampling helper for random non-zero
// scalars. Neither PVSS variant calls it; the IPA prover adds no masking
// terms.
func RandomNonZeroScalar() (*curve.Scalar, error) {
	for {
		s, err := curve.RandomScalar()
		if err != nil {
			return nil, err
		}
		if !s.IsZero() {
			return s, nil
		}
	}
}
