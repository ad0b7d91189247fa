// Package cli implements the chainlog command-line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chainlog-project/chainlog/pkg/color"
)

var (
	jsonOutput  bool
	noColor     bool
	journalName string

	rootCmd = &cobra.Command{
		Use:   "chainlog",
		Short: "chainlog - tamper-evident append-only event ledger",
		Long: `chainlog is a local, single-authority integrity ledger. Every recorded
event is cryptographically linked to its predecessor, and daily
manifests commit to a whole day's events with a single Merkle root.
An independent verifier rebuilds the chain from raw log contents and
detects any tampering, reordering, or loss.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			color.Init(noColor)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&journalName, "journal", "main", "journal to operate on")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// outputJSON prints v as indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
