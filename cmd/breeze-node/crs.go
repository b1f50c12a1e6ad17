package main

import (
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/breeze/pkg/crs"
)

var crsCmd = &cobra.Command{
	Use:   "crs",
	Short: "Generate a Common Reference String",
}

var (
	crsVariant   string
	crsThreshold int
	crsN         int
	crsLogQ      int
	crsKappa     int
	crsR         int
	crsL         int
)

// mersenne61 is prime, giving the lattice kernel's modular inverses a
// well-defined field to work in. Matches the modulus the lattice kernel
// is exercised against elsewhere in this module.
var mersenne61, _ = new(big.Int).SetString("2305843009213693951", 10)

var crsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Sample a fresh CRS and write it to the CRS file",
	RunE:  runCRSGenerate,
}

func init() {
	crsGenerateCmd.Flags().StringVar(&crsVariant, "variant", "dl", "PVSS kernel variant: dl, lattice")
	crsGenerateCmd.Flags().IntVarP(&crsThreshold, "threshold", "t", 1, "fault tolerance f (dl: t+1 generators; lattice: sizes the gadget width)")
	crsGenerateCmd.Flags().IntVar(&crsN, "n", 8, "lattice ring dimension")
	crsGenerateCmd.Flags().IntVar(&crsLogQ, "log-q", 61, "lattice modulus bit length")
	crsGenerateCmd.Flags().IntVar(&crsKappa, "kappa", 4, "lattice statistical security parameter")
	crsGenerateCmd.Flags().IntVar(&crsR, "r", 2, "lattice tensor fold factor")
	crsGenerateCmd.Flags().IntVar(&crsL, "l", 1, "lattice recursion depth")

	crsCmd.AddCommand(crsGenerateCmd)
}

func runCRSGenerate(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	var out *crs.CRS
	switch crsVariant {
	case "dl":
		dl, err := crs.GenerateDL(crsThreshold)
		if err != nil {
			return fmt.Errorf("generate dl crs: %w", err)
		}
		out = &crs.CRS{Variant: crs.VariantDL, DL: dl}
	case "lattice":
		lat, err := crs.GenerateLattice(crs.LatticeParams{
			Q:     mersenne61,
			LogQ:  crsLogQ,
			G:     1,
			N:     crsN,
			M:     (crsThreshold + 1) * crsLogQ,
			Kappa: crsKappa,
			R:     crsR,
			L:     crsL,
		})
		if err != nil {
			return fmt.Errorf("generate lattice crs: %w", err)
		}
		out = &crs.CRS{Variant: crs.VariantLattice, Lattice: lat}
	default:
		return fmt.Errorf("unknown crs variant %q (want dl or lattice)", crsVariant)
	}

	path := defaultPath(crsFile, "crs.json")
	if err := crs.Save(path, out); err != nil {
		return err
	}
	fmt.Printf("wrote %s crs: %s\n", crsVariant, path)
	return nil
}
