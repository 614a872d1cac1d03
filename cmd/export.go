package cmd

import (
	"fmt"
	"sort"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/internal/parquet"
	"github.com/devpulse/devpulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// exportCmd writes stored rows to a Parquet file.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored rows to Parquet for BI tools and analytics",
	Long: `Export stored data to Parquet format for use with analytics tools.

Datasets:
  metrics  - daily DORA metric rows for every repository (default)
  insights - daily summaries and risk flags

Parquet enables fast querying with DuckDB, pandas and Spark, and direct
import into BI tools.

Requires: --output-file parameter

Examples:
  # Export all metric rows
  devpulse export --output-file metrics.parquet

  # Query with DuckDB
  duckdb -c "SELECT * FROM read_parquet('metrics.parquet') LIMIT 10"

  # Export insights for one quarter
  devpulse export --dataset insights --start 2024-01-01 --end 2024-03-31 \
    --output-file insights.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.OutputFile == "" {
			contract.LogFatal("Cannot export", fmt.Errorf("--output-file is required"))
		}

		perRepo, err := metricStore.GetAllDailyMetrics(cfg.Window())
		if err != nil {
			contract.LogFatal("Cannot load metrics", err)
		}
		repositories := make([]string, 0, len(perRepo))
		for repoID := range perRepo {
			repositories = append(repositories, repoID)
		}
		sort.Strings(repositories)

		switch dataset := viper.GetString("dataset"); dataset {
		case "metrics":
			var rows []schema.DailyMetric
			for _, repoID := range repositories {
				rows = append(rows, perRepo[repoID]...)
			}
			records := parquet.ConvertDailyMetricRecords(rows)
			if err := parquet.WriteDailyMetricsParquet(records, cfg.OutputFile); err != nil {
				contract.LogFatal("Cannot export metrics", err)
			}
			fmt.Printf("Exported %d metric rows to %s\n", len(records), cfg.OutputFile)

		case "insights":
			var insights []schema.DailyInsight
			for _, repoID := range repositories {
				repoInsights, err := metricStore.GetDailyInsights(repoID, cfg.Window())
				if err != nil {
					contract.LogFatal("Cannot load insights", err)
				}
				insights = append(insights, repoInsights...)
			}
			records := parquet.ConvertDailyInsightRecords(insights)
			if err := parquet.WriteDailyInsightsParquet(records, cfg.OutputFile); err != nil {
				contract.LogFatal("Cannot export insights", err)
			}
			fmt.Printf("Exported %d insight rows to %s\n", len(records), cfg.OutputFile)

		default:
			contract.LogFatal("Cannot export", fmt.Errorf("invalid dataset '%s', must be metrics or insights", dataset))
		}
	},
}
