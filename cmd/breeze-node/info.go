package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/breeze/pkg/config"
	"github.com/luxfi/breeze/pkg/crs"
	"github.com/luxfi/breeze/pkg/party"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display committee and CRS information",
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	fmt.Println("breeze-node")
	fmt.Println()
	fmt.Println("A distributed-randomness-beacon node: per-epoch PVSS dealing over a")
	fmt.Println("discrete-log or module-SIS lattice kernel, genesis agreement via a")
	fmt.Println("minimal BFT round, and a DRB coordinator that answers coin and beacon")
	fmt.Println("reconstruction requests.")
	fmt.Println()

	committeePath := defaultPath(committeeFile, "committee.json")
	committee, err := config.LoadCommittee(committeePath)
	if err != nil {
		fmt.Printf("committee file: %s (not readable: %v)\n", committeePath, err)
	} else {
		f, q := party.FaultTolerance(committee.N())
		fmt.Printf("committee file: %s\n", committeePath)
		fmt.Printf("  members: %d, fault tolerance f=%d, quorum=%d\n", committee.N(), f, q)
		for _, m := range committee.Members {
			fmt.Printf("  party %d: %s (stake %d)\n", m.ID, m.Address, m.Stake)
		}
	}

	crsPath := defaultPath(crsFile, "crs.json")
	c, err := crs.Load(crsPath)
	if err != nil {
		fmt.Printf("crs file: %s (not readable: %v)\n", crsPath, err)
		return nil
	}
	fmt.Printf("crs file: %s (variant: %s)\n", crsPath, c.Variant)
	if c.Variant == crs.VariantDL && c.DL != nil {
		fmt.Printf("  generators: %d\n", len(c.DL.G))
	}
	if c.Variant == crs.VariantLattice && c.Lattice != nil {
		fmt.Printf("  ring dimension n=%d, log_q=%d, kappa=%d\n", c.Lattice.N, c.Lattice.LogQ, c.Lattice.Kappa)
	}
	return nil
}
