package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chainlog-project/chainlog/internal/ledger"
	"github.com/chainlog-project/chainlog/internal/lock"
	"github.com/chainlog-project/chainlog/pkg/canonical"
	"github.com/chainlog-project/chainlog/pkg/errclass"
	"github.com/chainlog-project/chainlog/pkg/metrics"
	"github.com/chainlog-project/chainlog/pkg/model"
	"github.com/chainlog-project/chainlog/pkg/webhook"
)

var writeCmd = &cobra.Command{
	Use:   "write <content>",
	Short: "Append an event to the ledger",
	Long: `Append an event to the journal's hash chain and print the resulting
chain hash.

Content that parses as JSON is stored as-is; anything else is wrapped
as {"text": <content>}.

Examples:
  chainlog write '{"action":"deploy","version":"1.4.2"}'
  chainlog write "rotated signing keys"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		l, cfg, j := requireJournal()

		content, err := canonical.NormalizeContent(args[0])
		if err != nil {
			fmtErr("%v", err)
			os.Exit(exitFailure)
		}

		locks := lock.NewManager(j, model.LockPolicy{DefaultLeaseTTL: cfg.LeaseTTL()})
		appender := ledger.NewAppender(j, locks)

		start := time.Now()
		event, err := appender.Append(content)
		metrics.Default().RecordAppend(j.Name, err == nil, time.Since(start))
		if err != nil {
			fmtErr("append event: %v", err)
			if errors.Is(err, errclass.ErrEncoding) {
				os.Exit(exitFailure)
			}
			os.Exit(exitCode(err))
		}

		webhook.NewNotifier(cfg.Webhook).Send(webhook.Event{
			Event:     webhook.EventAppended,
			LedgerID:  l.LedgerID,
			Journal:   j.Name,
			Day:       string(event.Day()),
			ChainHash: string(event.ChainHash),
		})

		if jsonOutput {
			outputJSON(event)
		} else {
			fmt.Println(event.ChainHash)
		}
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
}
