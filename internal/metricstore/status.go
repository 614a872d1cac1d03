package metricstore

import (
	"fmt"

	"github.com/devpulse/devpulse/schema"
)

// GetStatus reports row counts for the store's tables.
func (s *Store) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{Backend: s.backend, Location: s.location}

	counts := []struct {
		table string
		dest  *int64
	}{
		{dailyMetricsTable, &status.MetricRows},
		{dailyInsightsTable, &status.InsightRows},
		{businessTable, &status.BusinessRows},
		{ingestionRunsTable, &status.IngestionRuns},
	}

	for _, c := range counts {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(c.table, s.backend))
		if err := s.db.QueryRow(query).Scan(c.dest); err != nil {
			return schema.StoreStatus{}, fmt.Errorf("failed to count rows in %s: %w", c.table, err)
		}
	}
	return status, nil
}
