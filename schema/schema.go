// Package schema has configs, models and global variables for all parts of devpulse.
package schema

import "time"

// Event is a normalized unit of repository activity. The normalizer maps raw
// GitHub records into these; the aggregator consumes nothing else.
type Event struct {
	Kind          EventKind  // Commit, Change, Deployment or Incident
	RepoID        string     // "owner/name" identifier
	Author        string     // GitHub login of the actor
	OccurredAt    time.Time  // UTC anchor timestamp (commit time, PR creation, issue open)
	FirstCommitAt *time.Time // Earliest commit on a PR, when known
	MergedAt      *time.Time // PR merge time; nil for non-deployment events
	ResolvedAt    *time.Time // Incident close time; nil while open
	Failed        bool       // Change linked to a production failure
	Title         string     // PR or issue title, used for drilldown output
	Number        int        // PR or issue number
}

// DailyMetric is one row of derived DORA metrics for a repository and UTC day.
type DailyMetric struct {
	RepoID              string    `json:"repo_id" parquet:"repo_id"`
	Date                time.Time `json:"date" parquet:"date"`
	DeploymentFrequency int       `json:"deployment_frequency" parquet:"deployment_frequency"`
	AvgLeadTimeMinutes  float64   `json:"avg_lead_time_minutes" parquet:"avg_lead_time_minutes"`
	ChangeFailureRate   float64   `json:"change_failure_rate" parquet:"change_failure_rate"`
	MTTRMinutes         float64   `json:"mttr_minutes" parquet:"mttr_minutes"`
}

// OrgDailyMetric is the organization-level rollup of DailyMetric rows sharing
// a date. DeploymentFrequency sums across repositories; the remaining axes
// are deployment-weighted averages.
type OrgDailyMetric struct {
	Date                time.Time `json:"date"`
	DeploymentFrequency int       `json:"deployment_frequency"`
	AvgLeadTimeMinutes  float64   `json:"avg_lead_time_minutes"`
	ChangeFailureRate   float64   `json:"change_failure_rate"`
	MTTRMinutes         float64   `json:"mttr_minutes"`
	RepoCount           int       `json:"repo_count"`
}

// MetricSummary condenses a window of daily rows into the four axes used for
// benchmark classification. DeploymentsPerDay is averaged over the whole
// window, not just days with activity.
type MetricSummary struct {
	DeploymentsPerDay  float64 `json:"deployments_per_day"`
	AvgLeadTimeMinutes float64 `json:"avg_lead_time_minutes"`
	ChangeFailureRate  float64 `json:"change_failure_rate"`
	MTTRMinutes        float64 `json:"mttr_minutes"`
	WindowDays         int     `json:"window_days"`
	TotalDeployments   int     `json:"total_deployments"`
}

// PerformanceLevel is the result of classifying a MetricSummary against the
// DORA benchmark tiers. Overall is the worst of the four axis tiers.
type PerformanceLevel struct {
	DeployFrequency Tier `json:"deploy_frequency"`
	LeadTime        Tier `json:"lead_time"`
	ChangeFailure   Tier `json:"change_failure"`
	Recovery        Tier `json:"recovery"`
	Overall         Tier `json:"overall"`
}

// ContributorStat describes one author's commit activity inside a window.
type ContributorStat struct {
	Author        string    `json:"author"`
	Commits       int       `json:"commits"`
	FirstCommitAt time.Time `json:"first_commit_at"`
}

// DailyInsight is the derived risk summary for a repository and day.
type DailyInsight struct {
	RepoID          string            `json:"repo_id"`
	Date            time.Time         `json:"date"`
	Summary         string            `json:"summary"`
	RiskFlags       []RiskFlag        `json:"risk_flags"`
	TopContributors []ContributorStat `json:"top_contributors"`
}

// Window is a closed UTC date range. Both bounds are midnight-normalized.
type Window struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days the window covers, inclusive.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// Contains reports whether the given day falls inside the window.
func (w Window) Contains(day time.Time) bool {
	return !day.Before(w.Start) && !day.After(w.End)
}

// IngestionRun records one ingestion pass over a repository.
type IngestionRun struct {
	RunID         string     `json:"run_id"`
	RepoID        string     `json:"repo_id"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	EventsSeen    int        `json:"events_seen"`
	EventsSkipped int        `json:"events_skipped"`
	DaysWritten   int        `json:"days_written"`
	Params        string     `json:"params,omitempty"`
}

// DayUTC truncates t to its UTC calendar day.
func DayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
