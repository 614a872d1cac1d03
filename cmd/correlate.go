package cmd

import (
	"github.com/devpulse/devpulse/core"
	"github.com/devpulse/devpulse/internal/contract"
	"github.com/spf13/cobra"
)

// correlateCmd connects DORA metrics to business outcomes.
var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Correlate DORA metrics with recorded business metrics.",
	Long: `Compute Pearson correlations between the organization's daily DORA
rollup and its recorded business metrics over the window.

Eight fixed pairings are evaluated (deployment frequency vs revenue, lead time
vs satisfaction, change failure rate vs incidents, and so on). A pairing needs
enough shared dates to produce a coefficient; strong coefficients emit an
insight with a recommendation. The report is cached in the metric store.

Record business figures first with 'devpulse business record'.

Examples:
  # Correlate the last 30 days
  devpulse correlate --org acme

  # A specific quarter, as JSON
  devpulse correlate --org acme --start 2024-01-01 --end 2024-03-31 --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		window := cfg.Window()

		perRepo, err := metricStore.GetAllDailyMetrics(window)
		if err != nil {
			contract.LogFatal("Cannot load metrics", err)
		}
		business, err := metricStore.GetBusinessMetrics(cfg.OrgID, window)
		if err != nil {
			contract.LogFatal("Cannot load business metrics", err)
		}

		report := core.Correlate(core.Rollup(perRepo), business, cfg)
		if err := metricStore.PutCorrelationReport(report); err != nil {
			contract.LogWarn("Cannot cache correlation report", err)
		}

		if err := outWriter.WriteCorrelation(report, cfg); err != nil {
			contract.LogFatal("Cannot write correlations", err)
		}
	},
}
