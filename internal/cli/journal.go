package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chainlog-project/chainlog/internal/journal"
	"github.com/chainlog-project/chainlog/pkg/color"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Manage journals (independent hash chains)",
}

var journalCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new journal with an empty chain",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		l, _ := requireLedger()

		j, err := journal.NewManager(l).Create(args[0])
		if err != nil {
			fmtErr("create journal: %v", err)
			os.Exit(exitFailure)
		}

		if jsonOutput {
			outputJSON(map[string]any{"journal": j.Name})
		} else {
			fmt.Printf("Created journal %s\n", color.Success(j.Name))
		}
	},
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all journals",
	Run: func(cmd *cobra.Command, args []string) {
		l, _ := requireLedger()

		names, err := journal.NewManager(l).List()
		if err != nil {
			fmtErr("list journals: %v", err)
			os.Exit(exitFailure)
		}

		if jsonOutput {
			outputJSON(names)
			return
		}
		for _, name := range names {
			fmt.Println(name)
		}
	},
}

func init() {
	journalCmd.AddCommand(journalCreateCmd)
	journalCmd.AddCommand(journalListCmd)
	rootCmd.AddCommand(journalCmd)
}
