package cmd

import (
	"time"

	"github.com/devpulse/devpulse/core"
	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// showCmd prints one repository's daily DORA metrics.
var showCmd = &cobra.Command{
	Use:   "show <owner/name>",
	Short: "Show daily DORA metrics for one repository.",
	Long: `Print the stored daily deployment frequency, lead time, change failure
rate and recovery time for one repository, with a window summary.

With --date, drill into a single day and list the merged pull requests behind
its deployment count, fetched live from GitHub.

Examples:
  # Last 30 days as a table
  devpulse show acme/api

  # Export a quarter as CSV
  devpulse show acme/api --start 2024-01-01 --end 2024-03-31 --output csv

  # What shipped on March 5th?
  devpulse show acme/api --date 2024-03-05`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		repoID := args[0]

		if dateStr := viper.GetString("date"); dateStr != "" {
			if err := showDrilldown(repoID, dateStr); err != nil {
				contract.LogFatal("Cannot run drilldown", err)
			}
			return
		}

		rows, err := metricStore.GetDailyMetrics(repoID, cfg.Window())
		if err != nil {
			contract.LogFatal("Cannot load metrics", err)
		}

		report := schema.MetricsReport{
			RepoID:  repoID,
			Rows:    rows,
			Summary: core.Summarize(rows, cfg.Window()),
		}
		if err := outWriter.WriteDailyMetrics(report, cfg); err != nil {
			contract.LogFatal("Cannot write metrics", err)
		}
	},
}

// showDrilldown lists the merged pull requests behind one day's deployments.
func showDrilldown(repoID, dateStr string) error {
	day, err := time.Parse(contract.DateFormat, dateStr)
	if err != nil {
		return err
	}
	day = schema.DayUTC(day)

	fetcher, err := newFetcher()
	if err != nil {
		return err
	}

	window := schema.Window{Start: day, End: day}
	prs, err := fetcher.FetchPullRequests(rootCtx, repoID, window)
	if err != nil {
		return err
	}

	events, _ := core.Normalize(schema.RawBatch{RepoID: repoID, PullRequests: prs}, cfg)

	var details []schema.DeploymentDetail
	for _, ev := range events {
		if ev.Kind != schema.DeploymentEvent || ev.MergedAt == nil {
			continue
		}
		if !schema.DayUTC(*ev.MergedAt).Equal(day) {
			continue
		}
		first := ev.OccurredAt
		if ev.FirstCommitAt != nil {
			first = *ev.FirstCommitAt
		}
		details = append(details, schema.DeploymentDetail{
			RepoID:          repoID,
			Number:          ev.Number,
			Title:           ev.Title,
			Author:          ev.Author,
			MergedAt:        ev.MergedAt.UTC(),
			LeadTimeMinutes: ev.MergedAt.Sub(first).Minutes(),
			Failed:          ev.Failed,
		})
	}

	return outWriter.WriteDeployments(details, cfg)
}
