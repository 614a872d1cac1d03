package metricstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devpulse/devpulse/schema"
)

// PutCorrelationReport stores the report as a JSON payload keyed by
// organization and analysis period.
func (s *Store) PutCorrelationReport(report schema.CorrelationReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal correlation report: %w", err)
	}

	quoted := quoteTableName(correlationsTable, s.backend)
	var query string
	switch s.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (org_id, period_start, period_end, payload)
			VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE payload = new.payload`, quoted)
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (org_id, period_start, period_end, payload)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (org_id, period_start, period_end) DO UPDATE SET payload = EXCLUDED.payload`, quoted)
	default: // SQLite
		query = fmt.Sprintf(`INSERT OR REPLACE INTO %s (org_id, period_start, period_end, payload)
			VALUES (?, ?, ?, ?)`, quoted)
	}

	_, err = s.db.Exec(query, report.OrgID, formatDate(report.PeriodStart), formatDate(report.PeriodEnd), string(payload))
	if err != nil {
		return fmt.Errorf("failed to store correlation report for %s: %w", report.OrgID, err)
	}
	return nil
}

// GetCorrelationReport returns the stored report for the exact period, or
// nil when none has been computed.
func (s *Store) GetCorrelationReport(orgID string, window schema.Window) (*schema.CorrelationReport, error) {
	quoted := quoteTableName(correlationsTable, s.backend)
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE org_id = %s AND period_start = %s AND period_end = %s`,
		quoted, s.ph(1), s.ph(2), s.ph(3))

	var payload string
	err := s.db.QueryRow(query, orgID, formatDate(window.Start), formatDate(window.End)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query correlation report: %w", err)
	}

	var report schema.CorrelationReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("failed to decode correlation report: %w", err)
	}
	return &report, nil
}
