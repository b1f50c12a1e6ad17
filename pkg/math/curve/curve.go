// Package curve wraps the secp256k1 prime-order group as the DL variant's
// cryptographic group: a CRS of t+1 random generators g[0..=t] plus one
// blinding generator h, over a (G, scalar field) interface any prime-order
// group could satisfy. This module uses decred/dcrd/dcrec/secp256k1/v4
// rather than a Ristretto implementation, since it's the group already in
// reach from the example corpus's own dependencies.
package curve

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Scalar is an element of the secp256k1 scalar field (mod the group
// order), used for polynomial coefficients and evaluations.
type Scalar struct {
	v secp256k1.ModNScalar
}

// Point is a group element, used for polynomial commitments and the CRS
// generators.
type Point struct {
	v secp256k1.JacobianPoint
}

// ScalarSize and PointSize fix the canonical, fixed-endian encoding
// lengths used on the wire and on disk.
const (
	ScalarSize = 32
	PointSize  = 33 // compressed SEC1
)

// NewScalar returns the zero scalar.
func NewScalar() *Scalar { return &Scalar{} }

// RandomScalar samples a uniformly random nonzero scalar.
func RandomScalar() (*Scalar, error) {
	var buf [32]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return nil, err
		}
		s := &Scalar{}
		overflow := s.v.SetBytes(&buf)
		if overflow == 0 && !s.v.IsZero() {
			return s, nil
		}
	}
}

// ScalarFromUint64 returns the scalar representing n.
func ScalarFromUint64(n uint64) *Scalar {
	s := &Scalar{}
	hi := uint32(n >> 32)
	lo := uint32(n)
	var hiS, loS secp256k1.ModNScalar
	hiS.SetInt(hi)
	loS.SetInt(lo)
	// s = hi * 2^32 + lo
	var shift secp256k1.ModNScalar
	shift.SetInt(1)
	for i := 0; i < 32; i++ {
		shift.Add(&shift)
	}
	hiS.Mul(&shift)
	s.v.Add2(&hiS, &loS)
	return s
}

// ScalarFromBytes decodes a canonical 32-byte little-endian scalar.
func ScalarFromBytes(b []byte) (*Scalar, error) {
	if len(b) != ScalarSize {
		return nil, errors.New("curve: scalar must be 32 bytes")
	}
	var be [32]byte
	for i := 0; i < 32; i++ {
		be[i] = b[31-i]
	}
	s := &Scalar{}
	s.v.SetBytes(&be)
	return s, nil
}

// Bytes encodes the scalar as 32 bytes little-endian, the canonical wire
// encoding.
func (s *Scalar) Bytes() []byte {
	be := s.v.Bytes()
	out := make([]byte, ScalarSize)
	for i := 0; i < ScalarSize; i++ {
		out[i] = be[ScalarSize-1-i]
	}
	return out
}

// Add returns s + o.
func (s *Scalar) Add(o *Scalar) *Scalar {
	r := &Scalar{}
	r.v.Add2(&s.v, &o.v)
	return r
}

// Mul returns s * o.
func (s *Scalar) Mul(o *Scalar) *Scalar {
	r := &Scalar{}
	r.v.Mul2(&s.v, &o.v)
	return r
}

// Sub returns s - o.
func (s *Scalar) Sub(o *Scalar) *Scalar {
	neg := o.Negate()
	return s.Add(neg)
}

// Negate returns -s.
func (s *Scalar) Negate() *Scalar {
	r := s.v
	r.Negate()
	return &Scalar{v: r}
}

// Inverse returns s^-1; callers must not call this on the zero scalar.
func (s *Scalar) Inverse() *Scalar {
	r := s.v
	r.InverseNonConst()
	return &Scalar{v: r}
}

// IsZero reports whether s is the additive identity.
func (s *Scalar) IsZero() bool { return s.v.IsZero() }

// Equal reports whether s == o.
func (s *Scalar) Equal(o *Scalar) bool { return s.v.Equals(&o.v) }

// ActOnBase returns s*G, where G is the group's standard base point.
func (s *Scalar) ActOnBase() *Point {
	var j secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&s.v, &j)
	return &Point{v: j}
}

// Act returns s*p.
func (s *Scalar) Act(p *Point) *Point {
	var j secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&s.v, &p.v, &j)
	return &Point{v: j}
}

// NewPoint returns the identity point.
func NewPoint() *Point { return &Point{} }

// Add returns p + o.
func (p *Point) Add(o *Point) *Point {
	var j secp256k1.JacobianPoint
	secp256k1.AddNonConst(&p.v, &o.v, &j)
	return &Point{v: j}
}

// IsIdentity reports whether p is the group identity.
func (p *Point) IsIdentity() bool {
	affine := p.v
	affine.ToAffine()
	return affine.X.IsZero() && affine.Y.IsZero()
}

// Equal reports whether p == o.
func (p *Point) Equal(o *Point) bool {
	a, b := p.v, o.v
	a.ToAffine()
	b.ToAffine()
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y)
}

// Bytes encodes p as 33-byte compressed SEC1, the canonical wire encoding.
func (p *Point) Bytes() []byte {
	affine := p.v
	affine.ToAffine()
	pub := secp256k1.NewPublicKey(&affine.X, &affine.Y)
	return pub.SerializeCompressed()
}

// PointFromBytes decodes a canonical compressed point.
func PointFromBytes(b []byte) (*Point, error) {
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, err
	}
	var j secp256k1.JacobianPoint
	pub.AsJacobian(&j)
	return &Point{v: j}, nil
}

// HashToScalar derives a scalar deterministically from transcript bytes,
// the Fiat-Shamir primitive both PVSS variants use: the input is expected
// to already be a Merkle root or other 32-byte digest.
func HashToScalar(domain string, data ...[]byte) *Scalar {
	h := sha256.New()
	h.Write([]byte(domain))
	for _, d := range data {
		var lenBuf [4]byte
		lenBuf[0] = byte(len(d) >> 24)
		lenBuf[1] = byte(len(d) >> 16)
		lenBuf[2] = byte(len(d) >> 8)
		lenBuf[3] = byte(len(d))
		h.Write(lenBuf[:])
		h.Write(d)
	}
	digest := h.Sum(nil)
	s := &Scalar{}
	s.v.SetByteSlice(digest)
	return s
}
