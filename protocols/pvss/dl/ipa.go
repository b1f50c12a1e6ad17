package dl

import (
	"encoding/binary"
	"errors"

	"github.com/luxfi/breeze/pkg/math/curve"
	"github.com/luxfi/breeze/pkg/merkle"
)

// roundProof is one recursive-halving round of the batched inner-product
// argument. Peeled/Peel carry the single-term adjustment a round takes
// when entering with an odd-length vector.
type roundProof struct {
	Peeled bool
	Peel   *curve.Point
	L, R   *curve.Point
}

// ipaProof is the full batched evaluation proof for one party's share:
// zero or more halving rounds followed by a single revealed final scalar.
type ipaProof struct {
	Rounds []roundProof
	FinalA *curve.Scalar
}

func negatePoint(p *curve.Point) *curve.Point {
	negOne := curve.ScalarFromUint64(1).Negate()
	return negOne.Act(p)
}

func innerProduct(a []*curve.Scalar, b []*curve.Scalar) *curve.Scalar {
	acc := curve.NewScalar()
	for i := range a {
		acc = acc.Add(a[i].Mul(b[i]))
	}
	return acc
}

func vecCommit(a []*curve.Scalar, g []*curve.Point) *curve.Point {
	acc := curve.NewPoint()
	for i := range a {
		acc = acc.Add(a[i].Act(g[i]))
	}
	return acc
}

// deriveChallenge computes the Fiat-Shamir challenge for one IPA round: a
// Merkle tree over (L, R, the dealer commitment root, the current claimed
// point), whose root is hashed to a scalar.
func deriveChallenge(l, r *curve.Point, root merkle.Root, p *curve.Point) *curve.Scalar {
	leaves := [][]byte{l.Bytes(), r.Bytes(), root[:], p.Bytes()}
	z := merkle.New(leaves).Root()
	return curve.HashToScalar("breeze-pvss-dl/ipa-challenge", z[:])
}

// proveIPA proves knowledge of a such that P0 = <a,G> + <a,b>*h without
// revealing a except for the single folded scalar at the end of the
// recursion.
func proveIPA(aIn []*curve.Scalar, gIn []*curve.Point, bIn []*curve.Scalar, h *curve.Point, root merkle.Root) *ipaProof {
	a := append([]*curve.Scalar(nil), aIn...)
	g := append([]*curve.Point(nil), gIn...)
	b := append([]*curve.Scalar(nil), bIn...)

	proof := &ipaProof{}
	for len(a) > 1 {
		var rnd roundProof
		m := len(a)
		if m%2 == 1 {
			last := m - 1
			rnd.Peeled = true
			rnd.Peel = a[last].Act(g[last]).Add(a[last].Mul(b[last]).Act(h))
			a, g, b = a[:last], g[:last], b[:last]
			m--
		}

		half := m / 2
		aL, aR := a[:half], a[half:]
		gL, gR := g[:half], g[half:]
		bL, bR := b[:half], b[half:]

		cL := innerProduct(aL, bR)
		cR := innerProduct(aR, bL)
		rnd.L = vecCommit(aL, gR).Add(cL.Act(h))
		rnd.R = vecCommit(aR, gL).Add(cR.Act(h))

		p := vecCommit(a, g).Add(innerProduct(a, b).Act(h))
		challenge := deriveChallenge(rnd.L, rnd.R, root, p)
		uInv := challenge.Inverse()

		newA := make([]*curve.Scalar, half)
		newG := make([]*curve.Point, half)
		newB := make([]*curve.Scalar, half)
		for i := 0; i < half; i++ {
			newA[i] = challenge.Mul(aL[i]).Add(uInv.Mul(aR[i]))
			newG[i] = uInv.Act(gL[i]).Add(challenge.Act(gR[i]))
			newB[i] = uInv.Mul(bL[i]).Add(challenge.Mul(bR[i]))
		}
		a, g, b = newA, newG, newB
		proof.Rounds = append(proof.Rounds, rnd)
	}
	proof.FinalA = a[0]
	return proof
}

// verifyIPA reproduces every challenge from the transcript and checks the
// final single-element equation.
func verifyIPA(combinedC *curve.Point, combinedY *curve.Scalar, gIn []*curve.Point, bIn []*curve.Scalar, h *curve.Point, root merkle.Root, proof *ipaProof) bool {
	if proof == nil || proof.FinalA == nil {
		return false
	}
	g := append([]*curve.Point(nil), gIn...)
	b := append([]*curve.Scalar(nil), bIn...)
	p := combinedC.Add(combinedY.Act(h))

	for _, rnd := range proof.Rounds {
		m := len(g)
		if rnd.Peeled {
			if m%2 != 1 || rnd.Peel == nil {
				return false
			}
			last := m - 1
			p = p.Add(negatePoint(rnd.Peel))
			g, b = g[:last], b[:last]
			m--
		}
		if m%2 != 0 || m == 0 {
			return false
		}
		half := m / 2
		gL, gR := g[:half], g[half:]
		bL, bR := b[:half], b[half:]

		challenge := deriveChallenge(rnd.L, rnd.R, root, p)
		if challenge.IsZero() {
			return false
		}
		uInv := challenge.Inverse()

		newG := make([]*curve.Point, half)
		newB := make([]*curve.Scalar, half)
		for i := 0; i < half; i++ {
			newG[i] = uInv.Act(gL[i]).Add(challenge.Act(gR[i]))
			newB[i] = uInv.Mul(bL[i]).Add(challenge.Mul(bR[i]))
		}

		x2 := challenge.Mul(challenge)
		xInv2 := uInv.Mul(uInv)
		p = p.Add(x2.Act(rnd.L)).Add(xInv2.Act(rnd.R))
		g, b = newG, newB
	}

	if len(g) != 1 {
		return false
	}
	lhs := proof.FinalA.Act(g[0]).Add(proof.FinalA.Mul(b[0]).Act(h))
	return lhs.Equal(p)
}

// encodeProof serializes the per-polynomial commitments and the IPA proof
// into Share.Proof's opaque byte string.
func encodeProof(commits []*curve.Point, proof *ipaProof) []byte {
	var out []byte
	putU32 := func(n int) {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(n))
		out = append(out, b[:]...)
	}
	putU32(len(commits))
	for _, c := range commits {
		out = append(out, c.Bytes()...)
	}
	putU32(len(proof.Rounds))
	for _, rnd := range proof.Rounds {
		if rnd.Peeled {
			out = append(out, 1)
			out = append(out, rnd.Peel.Bytes()...)
		} else {
			out = append(out, 0)
		}
		out = append(out, rnd.L.Bytes()...)
		out = append(out, rnd.R.Bytes()...)
	}
	out = append(out, proof.FinalA.Bytes()...)
	return out
}

// decodeProof is encodeProof's inverse.
func decodeProof(data []byte) ([]*curve.Point, *ipaProof, error) {
	pos := 0
	readU32 := func() (int, error) {
		if pos+4 > len(data) {
			return 0, errors.New("dl: truncated proof")
		}
		n := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4
		return int(n), nil
	}
	readPoint := func() (*curve.Point, error) {
		if pos+curve.PointSize > len(data) {
			return nil, errors.New("dl: truncated proof")
		}
		p, err := curve.PointFromBytes(data[pos : pos+curve.PointSize])
		if err != nil {
			return nil, err
		}
		pos += curve.PointSize
		return p, nil
	}
	readScalar := func() (*curve.Scalar, error) {
		if pos+curve.ScalarSize > len(data) {
			return nil, errors.New("dl: truncated proof")
		}
		s, err := curve.ScalarFromBytes(data[pos : pos+curve.ScalarSize])
		if err != nil {
			return nil, err
		}
		pos += curve.ScalarSize
		return s, nil
	}

	n, err := readU32()
	if err != nil {
		return nil, nil, err
	}
	commits := make([]*curve.Point, n)
	for i := range commits {
		commits[i], err = readPoint()
		if err != nil {
			return nil, nil, err
		}
	}

	numRounds, err := readU32()
	if err != nil {
		return nil, nil, err
	}
	proof := &ipaProof{Rounds: make([]roundProof, numRounds)}
	for i := range proof.Rounds {
		if pos >= len(data) {
			return nil, nil, errors.New("dl: truncated proof")
		}
		flag := data[pos]
		pos++
		var rnd roundProof
		if flag == 1 {
			rnd.Peeled = true
			rnd.Peel, err = readPoint()
			if err != nil {
				return nil, nil, err
			}
		}
		rnd.L, err = readPoint()
		if err != nil {
			return nil, nil, err
		}
		rnd.R, err = readPoint()
		if err != nil {
			return nil, nil, err
		}
		proof.Rounds[i] = rnd
	}
	proof.FinalA, err = readScalar()
	if err != nil {
		return nil, nil, err
	}
	return commits, proof, nil
}
