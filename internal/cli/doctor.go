package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chainlog-project/chainlog/internal/doctor"
	"github.com/chainlog-project/chainlog/pkg/color"
)

var doctorStrict bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check ledger health",
	Long: `Doctor runs read-only diagnostics over every journal: torn appends,
expired writer locks, stale or missing manifests, and leftover temp
files. With --strict it also re-verifies every chain from genesis.`,
	Run: func(cmd *cobra.Command, args []string) {
		l, _ := requireLedger()

		result, err := doctor.NewDoctor(l).Check(doctorStrict)
		if err != nil {
			fmtErr("doctor: %v", err)
			os.Exit(exitFailure)
		}

		if jsonOutput {
			outputJSON(result)
			if !result.Healthy {
				os.Exit(exitFailure)
			}
			return
		}

		for _, f := range result.Findings {
			badge := severityBadge(f.Severity)
			loc := f.Journal
			if f.Path != "" {
				loc = f.Path
			}
			if loc != "" {
				fmt.Printf("%s [%s] %s (%s)\n", badge, f.Category, f.Description, color.Dim(loc))
			} else {
				fmt.Printf("%s [%s] %s\n", badge, f.Category, f.Description)
			}
		}

		if result.Healthy {
			fmt.Println(color.Success("ledger is healthy"))
		} else {
			fmt.Println(color.Error("ledger has problems"))
			os.Exit(exitFailure)
		}
	},
}

func severityBadge(severity string) string {
	switch severity {
	case "critical", "error":
		return color.Error(severity)
	case "warning":
		return color.Warning(severity)
	default:
		return severity
	}
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorStrict, "strict", false, "verify every chain from genesis")
	rootCmd.AddCommand(doctorCmd)
}
