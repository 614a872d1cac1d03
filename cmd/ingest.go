package cmd

import (
	"fmt"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/internal/ingest"
	"github.com/spf13/cobra"
)

// ingestCmd fetches GitHub activity and recomputes daily metrics.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch GitHub activity and derive daily DORA metrics.",
	Long: `Fetch commits, pull requests and issues for every configured repository,
normalize them into delivery events and write the derived daily metrics and
insights to the metric store.

Repositories run in parallel up to --workers; rerunning over the same window
replaces the previous rows, so ingestion is safe to repeat.

Examples:
  # Ingest the default 30-day window
  devpulse ingest --repos acme/api,acme/web

  # Recompute one quarter
  devpulse ingest --repos acme/api --start 2024-01-01 --end 2024-03-31

  # Natural-language lookback
  devpulse ingest --repos acme/api --lookback "2 weeks ago"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if len(cfg.Repositories) == 0 {
			contract.LogFatal("Cannot ingest", fmt.Errorf("no repositories configured, use --repos or the config file"))
		}

		fetcher, err := newFetcher()
		if err != nil {
			contract.LogFatal("Cannot build GitHub client", err)
		}

		runner := ingest.NewRunner(fetcher, metricStore, cfg)
		results, err := runner.Run(rootCtx)
		if err != nil {
			contract.LogFatal("Ingestion failed", err)
		}

		for _, res := range results {
			fmt.Printf("%s: %d events (%d skipped), %d days written\n",
				res.RepoID, res.EventsSeen, res.EventsSkipped, res.DaysWritten)
			for _, skip := range res.Skipped {
				contract.LogWarn("Skipped malformed record", skip)
			}
		}
	},
}
