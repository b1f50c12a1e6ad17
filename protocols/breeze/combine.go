package breeze

import (
	"math/big"

	"github.com/luxfi/breeze/pkg/crs"
	"github.com/luxfi/breeze/pkg/math/curve"
	"github.com/luxfi/breeze/protocols/pvss"
)

// combineSecrets sums per-dealer reconstructed secrets into the combined
// value Result extracts a RandomNum from. DL secrets are canonical
// little-endian scalar encodings and
// are summed in the scalar field; lattice secrets are big-endian
// unsigned integers and are summed mod the CRS ring modulus.
func combineSecrets(variant crs.Variant, modulus *big.Int, secrets []pvss.Secret) (pvss.Secret, error) {
	switch variant {
	case crs.VariantDL:
		acc := curve.NewScalar()
		for _, s := range secrets {
			v, err := curve.ScalarFromBytes(s)
			if err != nil {
				return nil, err
			}
			acc = acc.Add(v)
		}
		return pvss.Secret(acc.Bytes()), nil
	default:
		acc := big.NewInt(0)
		for _, s := range secrets {
			acc = new(big.Int).Add(acc, new(big.Int).SetBytes(s))
		}
		if modulus != nil {
			acc = new(big.Int).Mod(acc, modulus)
		}
		return pvss.Secret(acc.Bytes()), nil
	}
}
