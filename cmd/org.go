package cmd

import (
	"github.com/devpulse/devpulse/core"
	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
	"github.com/spf13/cobra"
)

// orgCmd prints the organization-wide rollup.
var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Show the organization rollup across all repositories.",
	Long: `Roll the stored per-repository daily metrics up to the organization level.

Deployment frequency sums across repositories; lead time, change failure rate
and recovery time are deployment-weighted averages, so a repository that ships
nothing on a date cannot drag the averages around.

Examples:
  # Last 30 days across everything ingested
  devpulse org

  # JSON for dashboards
  devpulse org --output json --output-file org.json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		perRepo, err := metricStore.GetAllDailyMetrics(cfg.Window())
		if err != nil {
			contract.LogFatal("Cannot load metrics", err)
		}

		orgRows := core.Rollup(perRepo)
		report := schema.OrgReport{
			OrgID:   cfg.OrgID,
			Rows:    orgRows,
			Summary: core.SummarizeOrg(orgRows, cfg.Window()),
		}
		if err := outWriter.WriteOrgMetrics(report, cfg); err != nil {
			contract.LogFatal("Cannot write rollup", err)
		}
	},
}
