package commands

import (
	"context"
	"fmt"
	"os"

	"icaiscrape/lib/restyutil"
	"icaiscrape/lib/scrapers/batchlist"
	"icaiscrape/lib/telemetry"

	"github.com/spf13/cobra"
)

var verbose *bool

var rootCmd = &cobra.Command{
	Use:   "icai-cli",
	Short: "icai-cli scrapes the batch listings of the ICAI online registration portal.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
		if *verbose {
			batchlist.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/batchlist"))
		}
	},
}

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging and request/response dumps.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
