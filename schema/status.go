package schema

// StoreStatus reports the health and row counts of the metric store.
type StoreStatus struct {
	Backend       DatabaseBackend `json:"backend"`
	Location      string          `json:"location"`
	MetricRows    int64           `json:"metric_rows"`
	InsightRows   int64           `json:"insight_rows"`
	BusinessRows  int64           `json:"business_rows"`
	IngestionRuns int64           `json:"ingestion_runs"`
}

// ChatDigest is the metric context handed to a text generator alongside the
// user's question.
type ChatDigest struct {
	OrgID        string           `json:"org_id"`
	Window       Window           `json:"window"`
	Repositories []string         `json:"repositories"`
	Summary      MetricSummary    `json:"summary"`
	Level        PerformanceLevel `json:"level"`
}
