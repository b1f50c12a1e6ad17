// Package crs loads the process-wide Common Reference String from its
// on-disk JSON form. A CRS is constructed once at boot and never mutated
// afterward; every caller holds it as a read-only shared handle.
package crs

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/luxfi/breeze/pkg/math/curve"
)

// Variant tags which PVSS kernel a CRS belongs to.
type Variant string

const (
	VariantDL      Variant = "dl"
	VariantLattice Variant = "lattice"
)

// DL holds the discrete-log variant's CRS: g[0..=t], h.
type DL struct {
	G []*curve.Point
	H *curve.Point
}

// Lattice holds the module-SIS variant's CRS: (A, q, log_q, g, n, κ, r, ℓ).
type Lattice struct {
	A    [][]*big.Int // n x m
	Q    *big.Int
	LogQ int
	G    int // secrets aggregated per output
	N    int
	Kappa int // statistical security
	R    int // tensor fold factor
	L    int // recursion depth
}

// CRS is the tagged union persisted to / loaded from disk.
type CRS struct {
	Variant Variant
	DL      *DL
	Lattice *Lattice
}

// jsonDL/jsonLattice/jsonCRS are the on-disk encodings: DL group elements
// are hex strings of their compressed bytes, while the lattice matrix
// entries and modulus q are base-10 decimal strings.
type jsonDL struct {
	G []string `json:"g"`
	H string   `json:"h"`
}

type jsonLattice struct {
	A     [][]string `json:"a"`
	Q     string     `json:"q"`
	LogQ  int        `json:"log_q"`
	G     int        `json:"g"`
	N     int        `json:"n"`
	Kappa int        `json:"kappa"`
	R     int        `json:"r"`
	L     int        `json:"l"`
}

type jsonCRS struct {
	Variant Variant      `json:"variant"`
	DL      *jsonDL      `json:"dl,omitempty"`
	Lattice *jsonLattice `json:"lattice,omitempty"`
}

// Load reads and parses a CRS file.
func Load(path string) (*CRS, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("crs: read %s: %w", path, err)
	}
	var doc jsonCRS
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("crs: parse %s: %w", path, err)
	}
	switch doc.Variant {
	case VariantDL:
		if doc.DL == nil {
			return nil, errors.New("crs: dl variant missing dl section")
		}
		dl, err := decodeDL(doc.DL)
		if err != nil {
			return nil, err
		}
		return &CRS{Variant: VariantDL, DL: dl}, nil
	case VariantLattice:
		if doc.Lattice == nil {
			return nil, errors.New("crs: lattice variant missing lattice section")
		}
		lat, err := decodeLattice(doc.Lattice)
		if err != nil {
			return nil, err
		}
		return &CRS{Variant: VariantLattice, Lattice: lat}, nil
	default:
		return nil, fmt.Errorf("crs: unknown variant %q", doc.Variant)
	}
}

func decodeDL(j *jsonDL) (*DL, error) {
	g := make([]*curve.Point, len(j.G))
	for i, hexStr := range j.G {
		b, err := decodeHex(hexStr)
		if err != nil {
			return nil, err
		}
		p, err := curve.PointFromBytes(b)
		if err != nil {
			return nil, fmt.Errorf("crs: g[%d]: %w", i, err)
		}
		g[i] = p
	}
	hb, err := decodeHex(j.H)
	if err != nil {
		return nil, err
	}
	h, err := curve.PointFromBytes(hb)
	if err != nil {
		return nil, fmt.Errorf("crs: h: %w", err)
	}
	return &DL{G: g, H: h}, nil
}

func decodeLattice(j *jsonLattice) (*Lattice, error) {
	q, ok := new(big.Int).SetString(j.Q, 10)
	if !ok {
		return nil, errors.New("crs: invalid q")
	}
	a := make([][]*big.Int, len(j.A))
	for i, row := range j.A {
		a[i] = make([]*big.Int, len(row))
		for k, s := range row {
			v, ok := new(big.Int).SetString(s, 10)
			if !ok {
				return nil, fmt.Errorf("crs: invalid a[%d][%d]", i, k)
			}
			a[i][k] = v
		}
	}
	return &Lattice{
		A: a, Q: q, LogQ: j.LogQ, G: j.G, N: j.N, Kappa: j.Kappa, R: j.R, L: j.L,
	}, nil
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

// Save writes a CRS to path in the same JSON form Load reads back.
func Save(path string, c *CRS) error {
	doc := jsonCRS{Variant: c.Variant}
	switch c.Variant {
	case VariantDL:
		if c.DL == nil {
			return errors.New("crs: dl variant missing dl section")
		}
		doc.DL = encodeDL(c.DL)
	case VariantLattice:
		if c.Lattice == nil {
			return errors.New("crs: lattice variant missing lattice section")
		}
		doc.Lattice = encodeLattice(c.Lattice)
	default:
		return fmt.Errorf("crs: unknown variant %q", c.Variant)
	}
	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("crs: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("crs: write %s: %w", path, err)
	}
	return nil
}

func encodeDL(d *DL) *jsonDL {
	g := make([]string, len(d.G))
	for i, p := range d.G {
		g[i] = hex.EncodeToString(p.Bytes())
	}
	return &jsonDL{G: g, H: hex.EncodeToString(d.H.Bytes())}
}

func encodeLattice(l *Lattice) *jsonLattice {
	a := make([][]string, len(l.A))
	for i, row := range l.A {
		a[i] = make([]string, len(row))
		for k, v := range row {
			a[i][k] = v.String()
		}
	}
	return &jsonLattice{
		A: a, Q: l.Q.String(), LogQ: l.LogQ, G: l.G, N: l.N,
		Kappa: l.Kappa, R: l.R, L: l.L,
	}
}

// GenerateDL samples a fresh random DL CRS with t+1 generators g and one
// blinding generator h. Used at genesis bootstrap and by tests.
func GenerateDL(t int) (*DL, error) {
	g := make([]*curve.Point, t+1)
	for i := range g {
		s, err := curve.RandomScalar()
		if err != nil {
			return nil, err
		}
		g[i] = s.ActOnBase()
	}
	hs, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}
	return &DL{G: g, H: hs.ActOnBase()}, nil
}

// LatticeParams is the public shape of a lattice CRS, everything except
// the sampled matrix A.
type LatticeParams struct {
	Q     *big.Int
	LogQ  int
	G     int
	N     int
	M     int
	Kappa int
	R     int
	L     int
}

// GenerateLattice samples a fresh random lattice CRS matrix A for the
// given parameters.
func GenerateLattice(p LatticeParams) (*Lattice, error) {
	a := make([][]*big.Int, p.N)
	for i := range a {
		row := make([]*big.Int, p.M)
		for j := range row {
			v, err := randBelow(p.Q)
			if err != nil {
				return nil, err
			}
			row[j] = v
		}
		a[i] = row
	}
	return &Lattice{
		A: a, Q: p.Q, LogQ: p.LogQ, G: p.G, N: p.N,
		Kappa: p.Kappa, R: p.R, L: p.L,
	}, nil
}

func randBelow(n *big.Int) (*big.Int, error) {
	return rand.Int(rand.Reader, n)
}
