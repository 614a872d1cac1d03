package metricstore

import (
	"testing"
	"time"

	"github.com/devpulse/devpulse/core"
	"github.com/devpulse/devpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func f64p(v float64) *float64 { return &v }

func intp(v int) *int { return &v }

func TestStore_UnsupportedBackend(t *testing.T) {
	store, err := NewStore(schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestStore_DailyMetricsRoundtrip(t *testing.T) {
	store := newTestStore(t)

	rows := []schema.DailyMetric{
		{RepoID: "acme/api", Date: day(2024, 3, 2), DeploymentFrequency: 1, AvgLeadTimeMinutes: 45, ChangeFailureRate: 0, MTTRMinutes: 0},
		{RepoID: "acme/api", Date: day(2024, 3, 1), DeploymentFrequency: 3, AvgLeadTimeMinutes: 60, ChangeFailureRate: 0.5, MTTRMinutes: 120},
		{RepoID: "acme/web", Date: day(2024, 3, 1), DeploymentFrequency: 2, AvgLeadTimeMinutes: 30, ChangeFailureRate: 0, MTTRMinutes: 0},
	}
	require.NoError(t, store.UpsertDailyMetrics("run-1", rows))

	window := schema.Window{Start: day(2024, 3, 1), End: day(2024, 3, 31)}
	got, err := store.GetDailyMetrics("acme/api", window)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Date ascending regardless of insert order
	assert.Equal(t, day(2024, 3, 1), got[0].Date)
	assert.Equal(t, 3, got[0].DeploymentFrequency)
	assert.InDelta(t, 0.5, got[0].ChangeFailureRate, 1e-9)
	assert.Equal(t, day(2024, 3, 2), got[1].Date)

	all, err := store.GetAllDailyMetrics(window)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Len(t, all["acme/api"], 2)
	assert.Len(t, all["acme/web"], 1)
}

func TestStore_DailyMetricsWindowFilter(t *testing.T) {
	store := newTestStore(t)

	rows := []schema.DailyMetric{
		{RepoID: "acme/api", Date: day(2024, 2, 28), DeploymentFrequency: 1},
		{RepoID: "acme/api", Date: day(2024, 3, 15), DeploymentFrequency: 2},
		{RepoID: "acme/api", Date: day(2024, 4, 1), DeploymentFrequency: 3},
	}
	require.NoError(t, store.UpsertDailyMetrics("run-1", rows))

	window := schema.Window{Start: day(2024, 3, 1), End: day(2024, 3, 31)}
	got, err := store.GetDailyMetrics("acme/api", window)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, day(2024, 3, 15), got[0].Date)
}

func TestStore_DailyMetricsRecomputeReplaces(t *testing.T) {
	store := newTestStore(t)
	window := schema.Window{Start: day(2024, 3, 1), End: day(2024, 3, 31)}

	first := []schema.DailyMetric{{RepoID: "acme/api", Date: day(2024, 3, 1), DeploymentFrequency: 1, AvgLeadTimeMinutes: 90}}
	require.NoError(t, store.UpsertDailyMetrics("run-1", first))

	second := []schema.DailyMetric{{RepoID: "acme/api", Date: day(2024, 3, 1), DeploymentFrequency: 4, AvgLeadTimeMinutes: 20}}
	require.NoError(t, store.UpsertDailyMetrics("run-2", second))

	got, err := store.GetDailyMetrics("acme/api", window)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].DeploymentFrequency)
	assert.InDelta(t, 20, got[0].AvgLeadTimeMinutes, 1e-9)
}

func TestStore_DailyMetricsConflictingBatchRejected(t *testing.T) {
	store := newTestStore(t)

	rows := []schema.DailyMetric{
		{RepoID: "acme/api", Date: day(2024, 3, 1), DeploymentFrequency: 1},
		{RepoID: "acme/api", Date: day(2024, 3, 1), DeploymentFrequency: 2},
	}
	err := store.UpsertDailyMetrics("run-1", rows)
	require.Error(t, err)

	var violation *core.InvariantViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "acme/api", violation.RepoID)
	assert.Equal(t, "2024-03-01", violation.Date)

	// Nothing was written
	got, err := store.GetDailyMetrics("acme/api", schema.Window{Start: day(2024, 3, 1), End: day(2024, 3, 31)})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_DailyMetricsIdenticalDuplicatesCollapse(t *testing.T) {
	store := newTestStore(t)

	row := schema.DailyMetric{RepoID: "acme/api", Date: day(2024, 3, 1), DeploymentFrequency: 2, AvgLeadTimeMinutes: 30}
	require.NoError(t, store.UpsertDailyMetrics("run-1", []schema.DailyMetric{row, row}))

	got, err := store.GetDailyMetrics("acme/api", schema.Window{Start: day(2024, 3, 1), End: day(2024, 3, 31)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].DeploymentFrequency)
}

func TestStore_BusinessPartialUpsert(t *testing.T) {
	store := newTestStore(t)
	window := schema.Window{Start: day(2024, 3, 1), End: day(2024, 3, 31)}

	// Revenue lands first, from the finance export
	require.NoError(t, store.UpsertBusinessMetric(schema.BusinessMetric{
		OrgID:   "acme",
		Date:    day(2024, 3, 1),
		Revenue: f64p(25_000),
	}))

	// Satisfaction lands later from a different system; revenue must survive
	require.NoError(t, store.UpsertBusinessMetric(schema.BusinessMetric{
		OrgID:                     "acme",
		Date:                      day(2024, 3, 1),
		CustomerSatisfactionScore: f64p(4.4),
		Incidents:                 intp(2),
	}))

	got, err := store.GetBusinessMetrics("acme", window)
	require.NoError(t, err)
	require.Len(t, got, 1)

	m := got[0]
	require.NotNil(t, m.Revenue)
	assert.InDelta(t, 25_000, *m.Revenue, 1e-9)
	require.NotNil(t, m.CustomerSatisfactionScore)
	assert.InDelta(t, 4.4, *m.CustomerSatisfactionScore, 1e-9)
	require.NotNil(t, m.Incidents)
	assert.Equal(t, 2, *m.Incidents)
	assert.Nil(t, m.UptimePercentage)
}

func TestStore_BusinessCustomMetrics(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.UpsertBusinessMetric(schema.BusinessMetric{
		OrgID:         "acme",
		Date:          day(2024, 3, 5),
		CustomMetrics: map[string]float64{"nps": 42, "trial_signups": 17},
	}))

	got, err := store.GetBusinessMetrics("acme", schema.Window{Start: day(2024, 3, 1), End: day(2024, 3, 31)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 42, got[0].CustomMetrics["nps"], 1e-9)
	assert.InDelta(t, 17, got[0].CustomMetrics["trial_signups"], 1e-9)
}

func TestStore_InsightRoundtrip(t *testing.T) {
	store := newTestStore(t)

	insight := schema.DailyInsight{
		RepoID:    "acme/api",
		Date:      day(2024, 3, 1),
		Summary:   "acme/api on 2024-03-01: 2 deployment(s), avg lead time 45 min.",
		RiskFlags: []schema.RiskFlag{schema.RiskBusFactor},
		TopContributors: []schema.ContributorStat{
			{Author: "dana", Commits: 8, FirstCommitAt: day(2024, 3, 1).Add(9 * time.Hour)},
			{Author: "rex", Commits: 2, FirstCommitAt: day(2024, 3, 1).Add(11 * time.Hour)},
		},
	}
	require.NoError(t, store.UpsertDailyInsight(insight))

	// Recomputation replaces the row
	insight.Summary = "acme/api on 2024-03-01: 3 deployment(s)."
	require.NoError(t, store.UpsertDailyInsight(insight))

	got, err := store.GetDailyInsights("acme/api", schema.Window{Start: day(2024, 3, 1), End: day(2024, 3, 31)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, insight.Summary, got[0].Summary)
	assert.Equal(t, []schema.RiskFlag{schema.RiskBusFactor}, got[0].RiskFlags)
	require.Len(t, got[0].TopContributors, 2)
	assert.Equal(t, "dana", got[0].TopContributors[0].Author)
	assert.Equal(t, 8, got[0].TopContributors[0].Commits)
}

func TestStore_CorrelationReportRoundtrip(t *testing.T) {
	store := newTestStore(t)
	window := schema.Window{Start: day(2024, 3, 1), End: day(2024, 3, 31)}

	report := schema.CorrelationReport{
		OrgID:       "acme",
		PeriodStart: day(2024, 3, 1),
		PeriodEnd:   day(2024, 3, 31),
		Pairs: map[schema.CorrelationPair]schema.PairResult{
			schema.PairDeployRevenue:    {Coefficient: f64p(0.82), SampleSize: 14},
			schema.PairLeadSatisfaction: {SampleSize: 3},
		},
		Insights: []schema.CorrelationInsight{
			{Pair: schema.PairDeployRevenue, Type: schema.PositiveInsight, Coefficient: 0.82, Finding: "deployment frequency is strongly positively correlated with revenue (r=0.82)"},
		},
	}
	require.NoError(t, store.PutCorrelationReport(report))

	got, err := store.GetCorrelationReport("acme", window)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "acme", got.OrgID)
	require.NotNil(t, got.Pairs[schema.PairDeployRevenue].Coefficient)
	assert.InDelta(t, 0.82, *got.Pairs[schema.PairDeployRevenue].Coefficient, 1e-9)
	assert.Nil(t, got.Pairs[schema.PairLeadSatisfaction].Coefficient)
	require.Len(t, got.Insights, 1)
	assert.Equal(t, schema.PositiveInsight, got.Insights[0].Type)
}

func TestStore_CorrelationReportMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetCorrelationReport("acme", schema.Window{Start: day(2024, 3, 1), End: day(2024, 3, 31)})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_RunsAndStatus(t *testing.T) {
	store := newTestStore(t)

	started := time.Now()
	run := schema.IngestionRun{
		RunID:     "0f9d7a1c-1111-2222-3333-444455556666",
		RepoID:    "acme/api",
		StartedAt: started,
		Params:    `{"lookback":30}`,
	}
	require.NoError(t, store.BeginRun(run))

	finished := started.Add(2 * time.Second)
	run.FinishedAt = &finished
	run.EventsSeen = 40
	run.EventsSkipped = 3
	run.DaysWritten = 12
	require.NoError(t, store.EndRun(run))

	require.NoError(t, store.UpsertDailyMetrics(run.RunID, []schema.DailyMetric{
		{RepoID: "acme/api", Date: day(2024, 3, 1), DeploymentFrequency: 1},
	}))
	require.NoError(t, store.UpsertBusinessMetric(schema.BusinessMetric{OrgID: "acme", Date: day(2024, 3, 1)}))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, schema.SQLiteBackend, status.Backend)
	assert.Equal(t, int64(1), status.MetricRows)
	assert.Equal(t, int64(0), status.InsightRows)
	assert.Equal(t, int64(1), status.BusinessRows)
	assert.Equal(t, int64(1), status.IngestionRuns)
}

func TestStore_EndRunWithoutBegin(t *testing.T) {
	store := newTestStore(t)

	finished := time.Now()
	err := store.EndRun(schema.IngestionRun{
		RunID:      "missing",
		RepoID:     "acme/api",
		FinishedAt: &finished,
	})
	assert.Error(t, err)
}

func TestStore_EndRunRequiresFinishTime(t *testing.T) {
	store := newTestStore(t)

	err := store.EndRun(schema.IngestionRun{RunID: "run", RepoID: "acme/api"})
	assert.Error(t, err)
}
