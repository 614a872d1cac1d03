package cmd

import (
	"github.com/devpulse/devpulse/core"
	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
	"github.com/spf13/cobra"
)

// levelCmd classifies performance against the DORA benchmark tiers.
var levelCmd = &cobra.Command{
	Use:   "level [owner/name]",
	Short: "Classify performance against DORA benchmark tiers.",
	Long: `Grade the window's metrics against the DORA benchmark bands.

Each axis is graded independently (Elite, High, Medium, Low) and the overall
tier is the worst axis. Axes below Elite get an improvement recommendation.

With a repository argument, grades that repository; without one, grades the
organization rollup.

Examples:
  # Where does the org stand?
  devpulse level

  # Grade one repository over a quarter
  devpulse level acme/api --start 2024-01-01 --end 2024-03-31`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		window := cfg.Window()

		var summary schema.MetricSummary
		if len(args) == 1 {
			rows, err := metricStore.GetDailyMetrics(args[0], window)
			if err != nil {
				contract.LogFatal("Cannot load metrics", err)
			}
			summary = core.Summarize(rows, window)
		} else {
			perRepo, err := metricStore.GetAllDailyMetrics(window)
			if err != nil {
				contract.LogFatal("Cannot load metrics", err)
			}
			summary = core.SummarizeOrg(core.Rollup(perRepo), window)
		}

		level := core.Classify(summary)
		report := schema.LevelReport{
			Level:           level,
			Summary:         summary,
			Recommendations: core.Recommendations(level),
		}
		if err := outWriter.WriteLevel(report, cfg); err != nil {
			contract.LogFatal("Cannot write level", err)
		}
	},
}
