package metricstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/devpulse/devpulse/schema"
)

// businessColumns are the nullable value columns, in insert order.
var businessColumns = []string{
	"revenue", "new_customers", "customer_churn_rate", "customer_satisfaction_score",
	"support_tickets", "avg_resolution_time_hours", "incidents", "incident_severity_avg",
	"uptime_percentage", "features_shipped", "bug_reports", "custom_metrics",
}

// UpsertBusinessMetric merges one day of business figures. Nil fields keep
// whatever is already stored, so teams can report revenue and satisfaction
// from different systems at different times of day.
func (s *Store) UpsertBusinessMetric(m schema.BusinessMetric) error {
	var custom any
	if m.CustomMetrics != nil {
		blob, err := json.Marshal(m.CustomMetrics)
		if err != nil {
			return fmt.Errorf("failed to marshal custom metrics: %w", err)
		}
		custom = string(blob)
	}

	args := []any{
		m.OrgID, formatDate(m.Date),
		m.Revenue, m.NewCustomers, m.CustomerChurnRate, m.CustomerSatisfactionScore,
		m.SupportTickets, m.AvgResolutionTimeHours, m.Incidents, m.IncidentSeverityAvg,
		m.UptimePercentage, m.FeaturesShipped, m.BugReports, custom,
	}

	if _, err := s.db.Exec(s.getBusinessUpsertQuery(), args...); err != nil {
		return fmt.Errorf("failed to upsert business metrics for %s on %s: %w", m.OrgID, formatDate(m.Date), err)
	}
	return nil
}

// getBusinessUpsertQuery builds the COALESCE-merging upsert for the backend.
func (s *Store) getBusinessUpsertQuery() string {
	quoted := quoteTableName(businessTable, s.backend)
	cols := "org_id, date, " + strings.Join(businessColumns, ", ")

	var placeholders []string
	for i := 1; i <= len(businessColumns)+2; i++ {
		placeholders = append(placeholders, s.ph(i))
	}
	values := strings.Join(placeholders, ", ")

	var sets []string
	switch s.backend {
	case schema.MySQLBackend:
		for _, c := range businessColumns {
			sets = append(sets, fmt.Sprintf("%s = COALESCE(new.%s, %s.%s)", c, c, businessTable, c))
		}
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) AS new ON DUPLICATE KEY UPDATE %s",
			quoted, cols, values, strings.Join(sets, ", "))
	default: // SQLite and PostgreSQL share the ON CONFLICT syntax
		for _, c := range businessColumns {
			sets = append(sets, fmt.Sprintf("%s = COALESCE(EXCLUDED.%s, %s.%s)", c, c, quoted, c))
		}
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (org_id, date) DO UPDATE SET %s",
			quoted, cols, values, strings.Join(sets, ", "))
	}
}

// GetBusinessMetrics returns the organization's business rows inside the
// window, date ascending.
func (s *Store) GetBusinessMetrics(orgID string, window schema.Window) ([]schema.BusinessMetric, error) {
	quoted := quoteTableName(businessTable, s.backend)
	query := fmt.Sprintf(`SELECT org_id, date, %s FROM %s WHERE org_id = %s AND date >= %s AND date <= %s ORDER BY date`,
		strings.Join(businessColumns, ", "), quoted, s.ph(1), s.ph(2), s.ph(3))

	rows, err := s.db.Query(query, orgID, formatDate(window.Start), formatDate(window.End))
	if err != nil {
		return nil, fmt.Errorf("failed to query business metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.BusinessMetric
	for rows.Next() {
		var m schema.BusinessMetric
		var dateStr string
		var newCustomers, supportTickets, incidents, featuresShipped, bugReports sql.NullInt64
		var revenue, churn, csat, resolution, severity, uptime sql.NullFloat64
		var custom sql.NullString

		if err := rows.Scan(&m.OrgID, &dateStr,
			&revenue, &newCustomers, &churn, &csat,
			&supportTickets, &resolution, &incidents, &severity,
			&uptime, &featuresShipped, &bugReports, &custom); err != nil {
			return nil, fmt.Errorf("failed to scan business metric: %w", err)
		}

		date, err := parseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse business date %q: %w", dateStr, err)
		}
		m.Date = date
		m.Revenue = nullFloat(revenue)
		m.NewCustomers = nullInt(newCustomers)
		m.CustomerChurnRate = nullFloat(churn)
		m.CustomerSatisfactionScore = nullFloat(csat)
		m.SupportTickets = nullInt(supportTickets)
		m.AvgResolutionTimeHours = nullFloat(resolution)
		m.Incidents = nullInt(incidents)
		m.IncidentSeverityAvg = nullFloat(severity)
		m.UptimePercentage = nullFloat(uptime)
		m.FeaturesShipped = nullInt(featuresShipped)
		m.BugReports = nullInt(bugReports)
		if custom.Valid && custom.String != "" {
			if err := json.Unmarshal([]byte(custom.String), &m.CustomMetrics); err != nil {
				return nil, fmt.Errorf("failed to decode custom metrics: %w", err)
			}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating business metrics: %w", err)
	}
	return out, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
