package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chainlog-project/chainlog/internal/snapshot"
	"github.com/chainlog-project/chainlog/pkg/color"
	"github.com/chainlog-project/chainlog/pkg/metrics"
	"github.com/chainlog-project/chainlog/pkg/model"
	"github.com/chainlog-project/chainlog/pkg/webhook"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [day]",
	Short: "Write the Merkle manifest for a day",
	Long: `Fold the day's chain hashes into a Merkle root and persist the
manifest (default day: today, UTC).

Snapshotting the same unchanged day twice yields the same merkle_root
and entry count. A day with no events is valid and commits to the
genesis root.

Examples:
  chainlog snapshot                # checkpoint today
  chainlog snapshot 2026-08-29     # checkpoint a past day`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		l, cfg, j := requireJournal()

		day := model.Today()
		if len(args) > 0 {
			var err error
			day, err = model.ParseDay(args[0])
			if err != nil {
				fmtErr("%v", err)
				os.Exit(exitFailure)
			}
		}

		manifest, path, err := snapshot.NewCreator(j).Snapshot(day)
		metrics.Default().RecordSnapshot(j.Name, err == nil, entriesOf(manifest), string(day))
		if err != nil {
			fmtErr("snapshot %s: %v", day, err)
			os.Exit(exitCode(err))
		}

		webhook.NewNotifier(cfg.Webhook).Send(webhook.Event{
			Event:    webhook.EventSnapshotCreate,
			LedgerID: l.LedgerID,
			Journal:  j.Name,
			Day:      string(day),
			Metadata: map[string]any{
				"entries":     manifest.Entries,
				"merkle_root": string(manifest.MerkleRoot),
			},
		})

		if jsonOutput {
			outputJSON(map[string]any{
				"manifest": manifest,
				"path":     path,
			})
		} else {
			fmt.Println(path)
			fmt.Printf("  %s %s\n", color.Dim("entries:"), fmt.Sprint(manifest.Entries))
			fmt.Printf("  %s %s\n", color.Dim("root:   "), color.Hash(string(manifest.MerkleRoot)))
		}
	},
}

func entriesOf(m *model.Manifest) int {
	if m == nil {
		return 0
	}
	return m.Entries
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}
