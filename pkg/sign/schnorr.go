// Package sign implements the single-party Schnorr signature scheme used
// for Reply, Init-BFT Vote/Decided, and certificate signatures: a
// Schnorr-style signature over the same curve as the DL kernel, produced
// from one party's own secret scalar rather than jointly by a quorum.
package sign

import (
	"errors"

	"github.com/luxfi/breeze/pkg/math/curve"
)

// Signature is a Schnorr signature (R, s) over the secp256k1 group.
type Signature struct {
	R *curve.Point
	S *curve.Scalar
}

// Bytes encodes sig as the concatenation of its canonical point and scalar
// encodings (33 + 32 bytes).
func (sig Signature) Bytes() []byte {
	return append(sig.R.Bytes(), sig.S.Bytes()...)
}

// FromBytes decodes a Signature produced by Bytes.
func FromBytes(b []byte) (Signature, error) {
	if len(b) != curve.PointSize+curve.ScalarSize {
		return Signature{}, errors.New("sign: signature has wrong length")
	}
	r, err := curve.PointFromBytes(b[:curve.PointSize])
	if err != nil {
		return Signature{}, err
	}
	s, err := curve.ScalarFromBytes(b[curve.PointSize:])
	if err != nil {
		return Signature{}, err
	}
	return Signature{R: r, S: s}, nil
}

// Sign produces a Schnorr signature over msg under secret.
func Sign(secret *curve.Scalar, msg []byte) (Signature, error) {
	k, err := curve.RandomScalar()
	if err != nil {
		return Signature{}, err
	}
	r := k.ActOnBase()
	e := challenge(r, msg)
	s := k.Add(e.Mul(secret))
	return Signature{R: r, S: s}, nil
}

// Verify checks sig against msg under public.
func Verify(public *curve.Point, msg []byte, sig Signature) bool {
	if public == nil || sig.R == nil || sig.S == nil {
		return false
	}
	e := challenge(sig.R, msg)
	lhs := sig.S.ActOnBase()
	rhs := sig.R.Add(e.Act(public))
	return lhs.Equal(rhs)
}

func challenge(r *curve.Point, msg []byte) *curve.Scalar {
	return curve.HashToScalar("breeze-sign/schnorr", r.Bytes(), msg)
}
