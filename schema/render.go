package schema

import "time"

// MetricsReport is the render model for one repository's daily metrics.
type MetricsReport struct {
	RepoID  string        `json:"repo_id"`
	Rows    []DailyMetric `json:"rows"`
	Summary MetricSummary `json:"summary"`
}

// OrgReport is the render model for the organization rollup.
type OrgReport struct {
	OrgID   string           `json:"org_id"`
	Rows    []OrgDailyMetric `json:"rows"`
	Summary MetricSummary    `json:"summary"`
}

// LevelReport is the render model for DORA benchmark classification.
type LevelReport struct {
	Level           PerformanceLevel `json:"level"`
	Summary         MetricSummary    `json:"summary"`
	Recommendations []string         `json:"recommendations"`
}

// DeploymentDetail is the render model for one merged pull request in a
// single-day drilldown.
type DeploymentDetail struct {
	RepoID          string    `json:"repo_id"`
	Number          int       `json:"number"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	MergedAt        time.Time `json:"merged_at"`
	LeadTimeMinutes float64   `json:"lead_time_minutes"`
	Failed          bool      `json:"failed"`
}
