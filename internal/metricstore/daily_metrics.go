package metricstore

import (
	"fmt"

	"github.com/devpulse/devpulse/core"
	"github.com/devpulse/devpulse/schema"
)

// UpsertDailyMetrics replaces the given daily rows in a single transaction.
// The batch is validated first: two rows for the same (repo, date) key with
// different values are an invariant violation and nothing is written.
// Identical duplicates collapse silently, which keeps recomputation
// idempotent.
func (s *Store) UpsertDailyMetrics(runID string, rows []schema.DailyMetric) error {
	seen := make(map[string]schema.DailyMetric, len(rows))
	deduped := make([]schema.DailyMetric, 0, len(rows))
	for _, row := range rows {
		key := row.RepoID + "|" + formatDate(row.Date)
		if prev, ok := seen[key]; ok {
			if prev != row {
				return &core.InvariantViolationError{RepoID: row.RepoID, Date: formatDate(row.Date)}
			}
			continue
		}
		seen[key] = row
		deduped = append(deduped, row)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin metrics transaction: %w", err)
	}

	query := s.getMetricsUpsertQuery()
	for _, row := range deduped {
		args := []any{
			row.RepoID, formatDate(row.Date), row.DeploymentFrequency,
			row.AvgLeadTimeMinutes, row.ChangeFailureRate, row.MTTRMinutes,
		}
		if _, err := tx.Exec(query, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to upsert metrics for %s on %s (run %s): %w", row.RepoID, formatDate(row.Date), runID, err)
		}
	}

	return tx.Commit()
}

// getMetricsUpsertQuery returns the UPSERT query for the backend.
func (s *Store) getMetricsUpsertQuery() string {
	quoted := quoteTableName(dailyMetricsTable, s.backend)
	switch s.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (repo_id, date, deployment_frequency, avg_lead_time_minutes, change_failure_rate, mttr_minutes)
			VALUES (?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE deployment_frequency = new.deployment_frequency, avg_lead_time_minutes = new.avg_lead_time_minutes,
			change_failure_rate = new.change_failure_rate, mttr_minutes = new.mttr_minutes`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (repo_id, date, deployment_frequency, avg_lead_time_minutes, change_failure_rate, mttr_minutes)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (repo_id, date) DO UPDATE SET deployment_frequency = EXCLUDED.deployment_frequency,
			avg_lead_time_minutes = EXCLUDED.avg_lead_time_minutes, change_failure_rate = EXCLUDED.change_failure_rate,
			mttr_minutes = EXCLUDED.mttr_minutes`, quoted)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (repo_id, date, deployment_frequency, avg_lead_time_minutes, change_failure_rate, mttr_minutes)
			VALUES (?, ?, ?, ?, ?, ?)`, quoted)
	}
}

// GetDailyMetrics returns one repository's rows inside the window, date
// ascending.
func (s *Store) GetDailyMetrics(repoID string, window schema.Window) ([]schema.DailyMetric, error) {
	quoted := quoteTableName(dailyMetricsTable, s.backend)
	query := fmt.Sprintf(`SELECT repo_id, date, deployment_frequency, avg_lead_time_minutes, change_failure_rate, mttr_minutes
		FROM %s WHERE repo_id = %s AND date >= %s AND date <= %s ORDER BY date`,
		quoted, s.ph(1), s.ph(2), s.ph(3))

	rows, err := s.db.Query(query, repoID, formatDate(window.Start), formatDate(window.End))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanDailyMetrics(rows)
}

// GetAllDailyMetrics returns every repository's rows inside the window,
// keyed by repository.
func (s *Store) GetAllDailyMetrics(window schema.Window) (map[string][]schema.DailyMetric, error) {
	quoted := quoteTableName(dailyMetricsTable, s.backend)
	query := fmt.Sprintf(`SELECT repo_id, date, deployment_frequency, avg_lead_time_minutes, change_failure_rate, mttr_minutes
		FROM %s WHERE date >= %s AND date <= %s ORDER BY repo_id, date`,
		quoted, s.ph(1), s.ph(2))

	rows, err := s.db.Query(query, formatDate(window.Start), formatDate(window.End))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	flat, err := scanDailyMetrics(rows)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]schema.DailyMetric)
	for _, row := range flat {
		out[row.RepoID] = append(out[row.RepoID], row)
	}
	return out, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanDailyMetrics(rows rowScanner) ([]schema.DailyMetric, error) {
	var out []schema.DailyMetric
	for rows.Next() {
		var row schema.DailyMetric
		var dateStr string
		if err := rows.Scan(&row.RepoID, &dateStr, &row.DeploymentFrequency,
			&row.AvgLeadTimeMinutes, &row.ChangeFailureRate, &row.MTTRMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan daily metric: %w", err)
		}
		date, err := parseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse metric date %q: %w", dateStr, err)
		}
		row.Date = date
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily metrics: %w", err)
	}
	return out, nil
}
