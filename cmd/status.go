package cmd

import (
	"fmt"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/spf13/cobra"
)

// statusCmd shows metric store statistics.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display metric store statistics and connection details",
	Long: `Show what the metric store currently holds.

Displays:
- Backend type and location
- Derived daily metric row count
- Daily insight row count
- Business metric row count
- Ingestion run count

Use this to verify ingestion is accumulating data and to check the
connection before pointing dashboards at the store.

Examples:
  devpulse status
  devpulse status --store-backend postgresql --store-db-connect "host=db dbname=devpulse"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := metricStore.GetStatus()
		if err != nil {
			contract.LogFatal("Cannot get store status", err)
		}

		fmt.Printf("Backend:         %s\n", status.Backend)
		fmt.Printf("Location:        %s\n", status.Location)
		fmt.Printf("Metric rows:     %d\n", status.MetricRows)
		fmt.Printf("Insight rows:    %d\n", status.InsightRows)
		fmt.Printf("Business rows:   %d\n", status.BusinessRows)
		fmt.Printf("Ingestion runs:  %d\n", status.IngestionRuns)
	},
}
