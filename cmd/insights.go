package cmd

import (
	"fmt"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// insightsCmd prints daily summaries and risk flags.
var insightsCmd = &cobra.Command{
	Use:   "insights <owner/name>",
	Short: "Show daily delivery summaries and risk flags.",
	Long: `Print the generated daily summaries for one repository, with any detected
risk flags (bus factor concentration, low activity).

With --contributors, show the latest contributor ranking instead, revealing
how concentrated commit activity is.

Examples:
  # What happened recently?
  devpulse insights acme/api

  # Who carries the repository?
  devpulse insights acme/api --contributors`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		repoID := args[0]

		insights, err := metricStore.GetDailyInsights(repoID, cfg.Window())
		if err != nil {
			contract.LogFatal("Cannot load insights", err)
		}
		if len(insights) == 0 {
			fmt.Printf("No insights stored for %s in this window. Run 'devpulse ingest' first.\n", repoID)
			return
		}

		if viper.GetBool("contributors") {
			latest := insights[len(insights)-1]
			if err := outWriter.WriteContributors(latest.TopContributors, cfg); err != nil {
				contract.LogFatal("Cannot write contributors", err)
			}
			return
		}

		if err := outWriter.WriteInsights(insights, cfg); err != nil {
			contract.LogFatal("Cannot write insights", err)
		}
	},
}
