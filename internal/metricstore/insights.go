package metricstore

import (
	"encoding/json"
	"fmt"

	"github.com/devpulse/devpulse/schema"
)

// UpsertDailyInsight replaces the insight row for (repo, date). Risk flags
// and contributors are stored as JSON text.
func (s *Store) UpsertDailyInsight(insight schema.DailyInsight) error {
	flags, err := json.Marshal(insight.RiskFlags)
	if err != nil {
		return fmt.Errorf("failed to marshal risk flags: %w", err)
	}
	contributors, err := json.Marshal(insight.TopContributors)
	if err != nil {
		return fmt.Errorf("failed to marshal contributors: %w", err)
	}

	quoted := quoteTableName(dailyInsightsTable, s.backend)
	var query string
	switch s.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (repo_id, date, summary_text, risk_flags, top_contributors)
			VALUES (?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE summary_text = new.summary_text, risk_flags = new.risk_flags, top_contributors = new.top_contributors`, quoted)
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (repo_id, date, summary_text, risk_flags, top_contributors)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (repo_id, date) DO UPDATE SET summary_text = EXCLUDED.summary_text,
			risk_flags = EXCLUDED.risk_flags, top_contributors = EXCLUDED.top_contributors`, quoted)
	default: // SQLite
		query = fmt.Sprintf(`INSERT OR REPLACE INTO %s (repo_id, date, summary_text, risk_flags, top_contributors)
			VALUES (?, ?, ?, ?, ?)`, quoted)
	}

	_, err = s.db.Exec(query, insight.RepoID, formatDate(insight.Date), insight.Summary, string(flags), string(contributors))
	if err != nil {
		return fmt.Errorf("failed to upsert insight for %s: %w", insight.RepoID, err)
	}
	return nil
}

// GetDailyInsights returns one repository's insights inside the window,
// date ascending.
func (s *Store) GetDailyInsights(repoID string, window schema.Window) ([]schema.DailyInsight, error) {
	quoted := quoteTableName(dailyInsightsTable, s.backend)
	query := fmt.Sprintf(`SELECT repo_id, date, summary_text, risk_flags, top_contributors
		FROM %s WHERE repo_id = %s AND date >= %s AND date <= %s ORDER BY date`,
		quoted, s.ph(1), s.ph(2), s.ph(3))

	rows, err := s.db.Query(query, repoID, formatDate(window.Start), formatDate(window.End))
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.DailyInsight
	for rows.Next() {
		var insight schema.DailyInsight
		var dateStr, flags, contributors string
		if err := rows.Scan(&insight.RepoID, &dateStr, &insight.Summary, &flags, &contributors); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		date, err := parseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse insight date %q: %w", dateStr, err)
		}
		insight.Date = date
		if err := json.Unmarshal([]byte(flags), &insight.RiskFlags); err != nil {
			return nil, fmt.Errorf("failed to decode risk flags: %w", err)
		}
		if err := json.Unmarshal([]byte(contributors), &insight.TopContributors); err != nil {
			return nil, fmt.Errorf("failed to decode contributors: %w", err)
		}
		out = append(out, insight)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating insights: %w", err)
	}
	return out, nil
}
