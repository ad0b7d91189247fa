package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chainlog-project/chainlog/internal/ledger"
	"github.com/chainlog-project/chainlog/pkg/color"
	"github.com/chainlog-project/chainlog/pkg/model"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [day]",
	Short: "Show a day's events in chain order",
	Long: `Show the events recorded on a day (default: today, UTC) in append
order, newest last.

Examples:
  chainlog history                 # today's events
  chainlog history 2026-08-29      # a past day
  chainlog history -n 10           # only the last 10 events`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, _, j := requireJournal()

		day := model.Today()
		if len(args) > 0 {
			var err error
			day, err = model.ParseDay(args[0])
			if err != nil {
				fmtErr("%v", err)
				os.Exit(exitFailure)
			}
		}

		events, _, err := ledger.ReadDay(j, day)
		if err != nil {
			fmtErr("read day %s: %v", day, err)
			os.Exit(exitCode(err))
		}

		if historyLimit > 0 && len(events) > historyLimit {
			events = events[len(events)-historyLimit:]
		}

		if jsonOutput {
			outputJSON(events)
			return
		}

		if len(events) == 0 {
			fmt.Println("No events recorded.")
			return
		}

		for _, ev := range events {
			preview := string(ev.Content)
			if len(preview) > 60 {
				preview = preview[:57] + "..."
			}
			fmt.Printf("%s  %s  %s\n",
				color.Hash(shortHash(ev.ChainHash)),
				color.Dim(ev.Timestamp),
				preview,
			)
		}
	},
}

func shortHash(h model.HashValue) string {
	s := string(h)
	if len(s) >= 12 {
		return s[:12]
	}
	return s
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "limit number of entries (0 = all)")
	rootCmd.AddCommand(historyCmd)
}
