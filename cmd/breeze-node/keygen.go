package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/breeze/pkg/config"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a node's signing-key seed",
	Long: `Samples a fresh 32-byte master seed and writes it to the key-pair
file. The signing key and lattice-binding tag are both derived from this
seed at load time, never stored directly.`,
	RunE: runKeygen,
}

func runKeygen(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return fmt.Errorf("sample seed: %w", err)
	}

	path := defaultPath(keyFile, "keypair.json")
	if err := config.SaveSeed(path, seed); err != nil {
		return err
	}

	kp, err := config.DeriveKeyPair(seed)
	if err != nil {
		return fmt.Errorf("derive key pair: %w", err)
	}

	fmt.Printf("wrote key-pair file: %s\n", path)
	fmt.Printf("public key: %s\n", hex.EncodeToString(kp.Public.SerializeCompressed()))
	fmt.Println("add this public key to the committee file before running `serve`.")
	return nil
}
