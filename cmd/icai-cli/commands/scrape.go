package commands

import (
	"log/slog"
	"os"
	"time"

	"icaiscrape/lib/configutil"
	"icaiscrape/lib/scrapers/batchlist"
	"icaiscrape/lib/serviceutil"
	"icaiscrape/lib/sqliteutil"
	"icaiscrape/services/batchstore"
	"icaiscrape/services/batchstore/db"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

const defaultTargetUrl = "https://www.icaionlineregistration.org/LaunchBatchDetail.aspx"
const defaultCsvOutput = "icai_batches.csv"

type OutputConfig struct {
	Sqlite string `json:"sqlite"`
	Csv    string `json:"csv"`
}

type Config struct {
	TargetUrl      string            `json:"target_url"`
	Headers        map[string]string `json:"headers"`
	Concurrency    int64             `json:"concurrency"`
	SubmitLabel    string            `json:"submit_label"`
	Placeholder    string            `json:"placeholder"`
	TimeoutSeconds int               `json:"timeout_seconds"`
	Output         OutputConfig      `json:"output"`
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func targetFromConfig(cfg Config) batchlist.Target {
	link := cfg.TargetUrl
	if link == "" {
		link = defaultTargetUrl
	}
	return batchlist.Target{
		URL:         link,
		Headers:     cfg.Headers,
		SubmitLabel: cfg.SubmitLabel,
		Placeholder: cfg.Placeholder,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

func sinkFromConfig(cfg Config) batchlist.Sink {
	var sinks []batchlist.Sink

	if cfg.Output.Sqlite != "" {
		database, err := sqliteutil.OpenDB(db.Schema, cfg.Output.Sqlite)
		if err != nil {
			serviceutil.Fatal("failed to open output db", err)
		}
		sinks = append(sinks, batchstore.New(database))
	}

	csvPath := cfg.Output.Csv
	if csvPath == "" && cfg.Output.Sqlite == "" {
		csvPath = defaultCsvOutput
	}
	if csvPath != "" {
		csvSink, err := batchstore.NewCsvSink(csvPath)
		if err != nil {
			serviceutil.Fatal("failed to create output csv", err)
		}
		sinks = append(sinks, csvSink)
	}

	return batchstore.Multi(sinks...)
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes every region/unit/course batch listing and writes it to the configured outputs.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()
		target := targetFromConfig(cfg)
		sink := sinkFromConfig(cfg)

		t1 := time.Now()

		regions, fields, err := batchlist.FetchRegions(ctx, target)
		if err != nil {
			serviceutil.Fatal("failed to discover regions", err)
		}
		if len(regions) == 0 {
			slog.Info("no regions found, nothing to scrape")
			return
		}

		combos := batchlist.ResolveCombinations(ctx, target, fields, regions, cfg.Concurrency)
		slog.Info("combinations resolved", "count", len(combos))

		total := batchlist.NewScheduler(target, fields, cfg.Concurrency, sink).Run(ctx, combos)
		err = sink.Flush(ctx)
		if err != nil {
			serviceutil.Fatal("failed to flush records", err)
		}

		if total == 0 {
			slog.Info("no data found")
			return
		}
		slog.Info("scrape complete", "records", total, "seconds", time.Since(t1).Seconds())
	},
}
