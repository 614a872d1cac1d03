package schema

import "time"

// BusinessMetric is one day of organization business outcomes. Pointer fields
// distinguish "not reported" from zero; partial upserts keep stored values
// for nil inputs.
type BusinessMetric struct {
	OrgID                     string             `json:"org_id"`
	Date                      time.Time          `json:"date"`
	Revenue                   *float64           `json:"revenue,omitempty"`
	NewCustomers              *int               `json:"new_customers,omitempty"`
	CustomerChurnRate         *float64           `json:"customer_churn_rate,omitempty"`
	CustomerSatisfactionScore *float64           `json:"customer_satisfaction_score,omitempty"`
	SupportTickets            *int               `json:"support_tickets,omitempty"`
	AvgResolutionTimeHours    *float64           `json:"avg_resolution_time_hours,omitempty"`
	Incidents                 *int               `json:"incidents,omitempty"`
	IncidentSeverityAvg       *float64           `json:"incident_severity_avg,omitempty"`
	UptimePercentage          *float64           `json:"uptime_percentage,omitempty"`
	FeaturesShipped           *int               `json:"features_shipped,omitempty"`
	BugReports                *int               `json:"bug_reports,omitempty"`
	CustomMetrics             map[string]float64 `json:"custom_metrics,omitempty"`
}

// CorrelationInsight is a human-readable finding emitted for one pair whose
// coefficient cleared the strength threshold.
type CorrelationInsight struct {
	Pair           CorrelationPair `json:"pair"`
	Type           InsightType     `json:"type"`
	Coefficient    float64         `json:"coefficient"`
	Finding        string          `json:"finding"`
	Recommendation string          `json:"recommendation"`
}

// PairResult holds the coefficient for one metric pairing. Coefficient is nil
// when fewer paired points exist than the configured minimum.
type PairResult struct {
	Coefficient *float64 `json:"coefficient"`
	SampleSize  int      `json:"sample_size"`
}

// CorrelationReport is the full output of the business correlation analysis.
type CorrelationReport struct {
	OrgID       string                         `json:"org_id"`
	PeriodStart time.Time                      `json:"period_start"`
	PeriodEnd   time.Time                      `json:"period_end"`
	Pairs       map[CorrelationPair]PairResult `json:"pairs"`
	Insights    []CorrelationInsight           `json:"insights"`
}

// BusinessContext carries the financial assumptions for impact estimation.
type BusinessContext struct {
	AnnualRevenue         float64 `json:"annual_revenue"`
	EngineeringHourlyRate float64 `json:"engineering_hourly_rate"`
	AvgIncidentCost       float64 `json:"avg_incident_cost"`
}

// ImpactEstimate is one axis of projected business impact.
type ImpactEstimate struct {
	Axis           string  `json:"axis"`
	Before         float64 `json:"before"`
	After          float64 `json:"after"`
	AnnualValueUSD float64 `json:"annual_value_usd"`
	Explanation    string  `json:"explanation"`
}

// ImpactReport aggregates the per-axis estimates for a before/after pair of
// metric summaries.
type ImpactReport struct {
	Estimates      []ImpactEstimate `json:"estimates"`
	TotalAnnualUSD float64          `json:"total_annual_usd"`
}
