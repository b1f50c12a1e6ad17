// Package config loads the node's persisted, process-boundary state: the
// key-pair file and the committee file. Both are read-mostly JSON, never
// rewritten while a node is running. The package has no loader for
// runtime parameters.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/hkdf"

	"github.com/luxfi/breeze/pkg/math/curve"
)

const hkdfInfo = "breeze-drb/node-signing-key/v1"

// jsonKeyPair is the on-disk shape of the key-pair file: a sensitive JSON
// document holding only the master seed.
type jsonKeyPair struct {
	Seed string `json:"seed"` // hex-encoded master seed
}

// KeyPair holds a node's derived signing key material. The on-disk seed is
// expanded via HKDF-SHA256 rather than used directly, so that the same
// seed file can also derive the lattice CRS-binding tag without key reuse
// across purposes (enriched from Layr-Labs/eigenx-kms-go's HKDF-based key
// derivation).
type KeyPair struct {
	Private *secp256k1.PrivateKey
	Public  *secp256k1.PublicKey
}

// LoadKeyPair reads a key-pair file and derives the node's signing key.
func LoadKeyPair(path string) (*KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read keypair %s: %w", path, err)
	}
	var doc jsonKeyPair
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse keypair %s: %w", path, err)
	}
	seed, err := hex.DecodeString(doc.Seed)
	if err != nil {
		return nil, fmt.Errorf("config: decode seed: %w", err)
	}
	return DeriveKeyPair(seed)
}

// DeriveKeyPair expands a master seed into a secp256k1 key pair via HKDF.
func DeriveKeyPair(seed []byte) (*KeyPair, error) {
	kdf := hkdf.New(sha256.New, seed, nil, []byte(hkdfInfo))
	var raw [32]byte
	if _, err := io.ReadFull(kdf, raw[:]); err != nil {
		return nil, fmt.Errorf("config: derive key: %w", err)
	}
	priv := secp256k1.PrivKeyFromBytes(raw[:])
	return &KeyPair{Private: priv, Public: priv.PubKey()}, nil
}

// Curve converts kp into the pkg/math/curve scalar/point pair the breeze
// and init-BFT signing code operates on, bridging secp256k1's own key
// types to this module's group wrapper.
func (kp *KeyPair) Curve() (*curve.Scalar, *curve.Point, error) {
	raw := kp.Private.Serialize() // big-endian
	little := make([]byte, len(raw))
	for i, b := range raw {
		little[len(raw)-1-i] = b
	}
	secret, err := curve.ScalarFromBytes(little)
	if err != nil {
		return nil, nil, fmt.Errorf("config: convert private key: %w", err)
	}
	public, err := curve.PointFromBytes(kp.Public.SerializeCompressed())
	if err != nil {
		return nil, nil, fmt.Errorf("config: convert public key: %w", err)
	}
	return secret, public, nil
}

// PublicKeyToCurvePoint converts a committee member's secp256k1 public key
// into the curve.Point representation signature verification uses.
func PublicKeyToCurvePoint(pk *secp256k1.PublicKey) (*curve.Point, error) {
	return curve.PointFromBytes(pk.SerializeCompressed())
}

// SaveSeed writes a master seed to path in the key-pair file's on-disk
// form. The seed itself, not the derived key, is what's persisted: a
// node's signing key and lattice-binding tag are both re-derived from it
// on every load.
func SaveSeed(path string, seed []byte) error {
	data, err := json.MarshalIndent(jsonKeyPair{Seed: hex.EncodeToString(seed)}, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encode keypair: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// DeriveLatticeBindingTag expands the same seed into a domain-separated
// tag used to bind a node's lattice-variant shares to its identity,
// without reusing the signing key's HKDF output.
func DeriveLatticeBindingTag(seed []byte) ([]byte, error) {
	kdf := hkdf.New(sha256.New, seed, nil, []byte("breeze-drb/lattice-binding-tag/v1"))
	out := make([]byte, 32)
	if _, err := io.ReadFull(kdf, out); err != nil {
		return nil, fmt.Errorf("config: derive lattice tag: %w", err)
	}
	return out, nil
}
