// Command breeze-node is the operator-facing entry point for a Breeze DRB
// node: generating a node's signing key, generating or inspecting a
// Common Reference String, and running every committee member in one
// process as a local devnet, with one cobra RunE per subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dataDir    string
	debugLog   bool
	keyFile    string
	committeeFile string
	crsFile    string
)

var rootCmd = &cobra.Command{
	Use:   "breeze-node",
	Short: "Operate a Breeze distributed-randomness-beacon node",
	Long: `breeze-node generates key material and Common Reference Strings and
runs the Breeze, Init-BFT, and DRB Coordinator actors of every member of a
committee file in one process, as a local devnet.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "./breeze-data", "directory for generated key/committee/CRS files")
	rootCmd.PersistentFlags().BoolVarP(&debugLog, "debug", "v", false, "verbose (development-mode) logging")
	rootCmd.PersistentFlags().StringVarP(&keyFile, "key-file", "k", "", "key-pair file (default <data-dir>/keypair.json)")
	rootCmd.PersistentFlags().StringVarP(&committeeFile, "committee-file", "c", "", "committee file (default <data-dir>/committee.json)")
	rootCmd.PersistentFlags().StringVar(&crsFile, "crs-file", "", "CRS file (default <data-dir>/crs.json)")

	rootCmd.AddCommand(keygenCmd, crsCmd, serveCmd, infoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "breeze-node: %v\n", err)
		os.Exit(1)
	}
}

func defaultPath(explicit, name string) string {
	if explicit != "" {
		return explicit
	}
	return dataDir + "/" + name
}
