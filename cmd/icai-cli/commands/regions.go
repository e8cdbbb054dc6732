package commands

import (
	"os"

	"icaiscrape/lib/scrapers/batchlist"
	"icaiscrape/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(regionsCmd)
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Prints the regions offered by the portal's entry page.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		regions, _, err := batchlist.FetchRegions(cmd.Context(), targetFromConfig(cfg))
		if err != nil {
			serviceutil.Fatal("failed to discover regions", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Value", "Region"})

		for _, r := range regions {
			t.AppendRow(table.Row{r.Value, r.Label})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
