// Package cmd defines the command-line interface for devpulse.
package cmd

import (
	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(orgCmd)
	rootCmd.AddCommand(levelCmd)
	rootCmd.AddCommand(correlateCmd)
	rootCmd.AddCommand(businessCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the business subcommands to the parent business command
	businessCmd.AddCommand(businessRecordCmd)
	businessCmd.AddCommand(businessImpactCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("org", "", "Organization identifier for rollups and business metrics")
	rootCmd.PersistentFlags().String("repos", "", "Comma-separated list of owner/name repositories")
	rootCmd.PersistentFlags().String("start", "", "Window start in ISO8601 or time ago")
	rootCmd.PersistentFlags().String("end", "", "Window end in ISO8601 or time ago")
	rootCmd.PersistentFlags().String("lookback", "", "Time duration to look back from the window end (overrides --start)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Metric store backend: sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in output headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("incident-link-window", "", "How long after a merge an incident still marks it failed (e.g., 48h)")
	rootCmd.PersistentFlags().String("failure-labels", "", "Comma-separated labels that mark a pull request as failed")
	rootCmd.PersistentFlags().String("incident-labels", "", "Comma-separated labels that mark an issue as an incident")
	rootCmd.PersistentFlags().Float64("bus-factor-share", 0, "Top-author commit share that raises a bus factor risk")
	rootCmd.PersistentFlags().Int("bus-factor-min-commits", 0, "Minimum commits before the bus factor heuristic applies")
	rootCmd.PersistentFlags().Int("correlation-min-points", 0, "Minimum paired data points for a correlation coefficient")
	rootCmd.PersistentFlags().Float64("correlation-strong-r", 0, "Absolute coefficient that emits a correlation insight")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of showCmd to Viper
	showCmd.Flags().String("date", "", "Drill into one day's merged pull requests (YYYY-MM-DD)")
	if err := viper.BindPFlags(showCmd.Flags()); err != nil {
		contract.LogFatal("Error binding show flags", err)
	}

	// Bind all flags of insightsCmd to Viper
	insightsCmd.Flags().Bool("contributors", false, "Show contributor commit concentration instead of daily summaries")
	if err := viper.BindPFlags(insightsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding insights flags", err)
	}

	// Bind all flags of exportCmd to Viper
	exportCmd.Flags().String("dataset", "metrics", "Dataset to export: metrics or insights")
	if err := viper.BindPFlags(exportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding export flags", err)
	}

	// Bind all flags of migrateCmd to Viper
	migrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(migrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding migrate flags", err)
	}

	// Business record flags are read directly from Cobra so that only flags
	// the user actually set become part of the partial upsert.
	businessRecordCmd.Flags().String("date", "", "Day the figures describe (YYYY-MM-DD, default today)")
	businessRecordCmd.Flags().Float64("revenue", 0, "Revenue for the day")
	businessRecordCmd.Flags().Int("new-customers", 0, "New customers acquired")
	businessRecordCmd.Flags().Float64("churn-rate", 0, "Customer churn rate (0..1)")
	businessRecordCmd.Flags().Float64("satisfaction", 0, "Customer satisfaction score")
	businessRecordCmd.Flags().Int("support-tickets", 0, "Support tickets opened")
	businessRecordCmd.Flags().Float64("resolution-hours", 0, "Average support resolution time in hours")
	businessRecordCmd.Flags().Int("incidents", 0, "Production incidents")
	businessRecordCmd.Flags().Float64("severity-avg", 0, "Average incident severity")
	businessRecordCmd.Flags().Float64("uptime", 0, "Uptime percentage")
	businessRecordCmd.Flags().Int("features-shipped", 0, "Features shipped")
	businessRecordCmd.Flags().Int("bug-reports", 0, "Bug reports filed")
	businessRecordCmd.Flags().StringToString("custom", nil, "Custom metrics as name=value pairs")

	// Impact flags compare two windows under a financial context.
	businessImpactCmd.Flags().String("before-start", "", "Baseline window start (YYYY-MM-DD)")
	businessImpactCmd.Flags().String("before-end", "", "Baseline window end (YYYY-MM-DD)")
	businessImpactCmd.Flags().String("after-start", "", "Comparison window start (YYYY-MM-DD)")
	businessImpactCmd.Flags().String("after-end", "", "Comparison window end (YYYY-MM-DD)")
	businessImpactCmd.Flags().Float64("annual-revenue", 10_000_000, "Annual revenue in USD")
	businessImpactCmd.Flags().Float64("hourly-rate", 100, "Engineering hourly rate in USD")
	businessImpactCmd.Flags().Float64("incident-cost", 25_000, "Average incident cost in USD")
}
