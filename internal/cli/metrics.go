package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chainlog-project/chainlog/pkg/metrics"
)

var metricsAddr string

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Serve Prometheus metrics over HTTP",
	Long: `Metrics starts an HTTP server exposing chainlog operation metrics in
Prometheus text format on /metrics. The server blocks until killed.`,
	Run: func(cmd *cobra.Command, args []string) {
		requireLedger()

		fmt.Printf("Serving metrics on %s/metrics\n", metricsAddr)
		if err := metrics.StartServer(metricsAddr); err != nil {
			fmtErr("metrics server: %v", err)
			os.Exit(exitFailure)
		}
	},
}

func init() {
	metricsCmd.Flags().StringVar(&metricsAddr, "addr", ":2112", "listen address")
	rootCmd.AddCommand(metricsCmd)
}
