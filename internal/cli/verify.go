package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chainlog-project/chainlog/internal/verify"
	"github.com/chainlog-project/chainlog/pkg/color"
	"github.com/chainlog-project/chainlog/pkg/metrics"
	"github.com/chainlog-project/chainlog/pkg/model"
	"github.com/chainlog-project/chainlog/pkg/webhook"
)

var verifyAll bool

var verifyCmd = &cobra.Command{
	Use:   "verify [day]",
	Short: "Verify ledger integrity against manifests",
	Long: `Rebuild the hash chain from raw log contents and cross-check it
against the day's manifest.

Verification succeeds only if every record's content is unaltered, the
prev_hash/chain_hash links are intact and correctly ordered, and the
manifest's Merkle root matches the recomputation.

Exit codes: 0 verified, 1 integrity failure, 2 missing log or manifest.

Examples:
  chainlog verify 2026-08-29    # verify one day
  chainlog verify --all         # verify the whole chain from genesis`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		l, cfg, j := requireJournal()
		verifier := verify.NewVerifier(j)
		notifier := webhook.NewNotifier(cfg.Webhook)

		if verifyAll {
			start := time.Now()
			results, err := verifier.VerifyAll()
			metrics.Default().RecordVerify(j.Name, err == nil, time.Since(start))

			if jsonOutput {
				outputJSON(results)
			} else {
				for _, res := range results {
					status := color.Success("OK")
					if res.Error != "" {
						status = color.Error("FAILED") + "  " + res.Error
					}
					fmt.Printf("%s  %s\n", res.Day, status)
				}
			}

			if err != nil {
				notifier.Send(webhook.Event{
					Event:    webhook.EventVerifyFailed,
					LedgerID: l.LedgerID,
					Journal:  j.Name,
					Error:    err.Error(),
				})
				if !jsonOutput {
					fmt.Println(color.Error("FAILED"))
				}
				os.Exit(exitCode(err))
			}

			notifier.Send(webhook.Event{
				Event:    webhook.EventVerifyComplete,
				LedgerID: l.LedgerID,
				Journal:  j.Name,
			})
			if !jsonOutput {
				fmt.Println(color.Success("VERIFIED"))
			}
			return
		}

		if len(args) == 0 {
			fmtErr("a day is required unless --all is given")
			os.Exit(exitFailure)
		}
		day, err := model.ParseDay(args[0])
		if err != nil {
			fmtErr("%v", err)
			os.Exit(exitFailure)
		}

		start := time.Now()
		result, err := verifier.VerifyDay(day)
		metrics.Default().RecordVerify(j.Name, err == nil, time.Since(start))

		if jsonOutput {
			outputJSON(result)
		}

		if err != nil {
			notifier.Send(webhook.Event{
				Event:    webhook.EventVerifyFailed,
				LedgerID: l.LedgerID,
				Journal:  j.Name,
				Day:      string(day),
				Error:    err.Error(),
			})
			if !jsonOutput {
				fmt.Printf("%s %s\n", color.Error("FAILED:"), err.Error())
			}
			os.Exit(exitCode(err))
		}

		notifier.Send(webhook.Event{
			Event:    webhook.EventVerifyComplete,
			LedgerID: l.LedgerID,
			Journal:  j.Name,
			Day:      string(day),
		})
		if !jsonOutput {
			fmt.Println(color.Success("VERIFIED"))
		}
	},
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyAll, "all", false, "verify every day from genesis with cross-day continuity")
	rootCmd.AddCommand(verifyCmd)
}
