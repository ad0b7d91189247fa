package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chainlog-project/chainlog/internal/journal"
	"github.com/chainlog-project/chainlog/internal/repo"
	"github.com/chainlog-project/chainlog/pkg/color"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a new chainlog ledger",
	Long: `Initialize a new chainlog ledger in the given directory (default: the
current directory).

This creates:
  - .chainlog/ with format_version, ledger_id and a default config
  - the 'main' journal with empty logs/, snapshots/ and state/`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			fmtErr("resolve path: %v", err)
			os.Exit(exitFailure)
		}
		if err := os.MkdirAll(abs, 0755); err != nil {
			fmtErr("create directory: %v", err)
			os.Exit(exitFailure)
		}

		l, err := repo.Init(abs)
		if err != nil {
			fmtErr("initialize ledger: %v", err)
			os.Exit(exitFailure)
		}

		if _, err := journal.NewManager(l).Create(repo.DefaultJournal); err != nil {
			fmtErr("create default journal: %v", err)
			os.Exit(exitFailure)
		}

		if jsonOutput {
			outputJSON(map[string]any{
				"ledger_root":    l.Root,
				"format_version": l.FormatVersion,
				"ledger_id":      l.LedgerID,
			})
		} else {
			fmt.Printf("Initialized chainlog ledger in %s\n", color.Success(abs))
			fmt.Printf("  Default journal: %s\n", color.Highlight(repo.DefaultJournal))
		}
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
