package outwriter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *contract.Config {
	return &contract.Config{
		Precision: 1,
		Output:    schema.TextOut,
		Width:     120,
	}
}

func testRows() []schema.DailyMetric {
	return []schema.DailyMetric{
		{RepoID: "acme/api", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			DeploymentFrequency: 3, AvgLeadTimeMinutes: 60, ChangeFailureRate: 0.5, MTTRMinutes: 120},
		{RepoID: "acme/api", Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			DeploymentFrequency: 0, AvgLeadTimeMinutes: 0, ChangeFailureRate: 0, MTTRMinutes: 0},
	}
}

func TestWriteCSVDailyMetrics(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat := createFormatter(2)

	require.NoError(t, writeCSVDailyMetrics(&buf, testRows(), fmtFloat))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "repo_id,date,deployment_frequency,avg_lead_time_minutes,change_failure_rate,mttr_minutes", lines[0])
	assert.Equal(t, "acme/api,2024-03-01,3,60.00,0.50,120.00", lines[1])
	assert.Equal(t, "acme/api,2024-03-02,0,0.00,0.00,0.00", lines[2])
}

func TestWriteDailyMetricsTable(t *testing.T) {
	var buf bytes.Buffer
	report := schema.MetricsReport{
		RepoID: "acme/api",
		Rows:   testRows(),
		Summary: schema.MetricSummary{
			DeploymentsPerDay: 1.5, AvgLeadTimeMinutes: 60, ChangeFailureRate: 0.5,
			MTTRMinutes: 120, WindowDays: 2, TotalDeployments: 3,
		},
	}

	require.NoError(t, writeDailyMetricsTable(&buf, report, testConfig(), createFormatter(1)))

	out := buf.String()
	assert.Contains(t, out, "Daily DORA metrics for acme/api")
	assert.Contains(t, out, "2024-03-01")
	assert.Contains(t, out, "Window: 2 days, 3 deployments")
	// Emojis are off by default
	assert.NotContains(t, out, "📊")
}

func TestWriteDailyMetricsTableWithEmoji(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.UseEmojis = true

	report := schema.MetricsReport{RepoID: "acme/api"}
	require.NoError(t, writeDailyMetricsTable(&buf, report, cfg, createFormatter(1)))
	assert.Contains(t, buf.String(), "📊")
}

func TestWriteJSONOrgReport(t *testing.T) {
	var buf bytes.Buffer
	report := schema.OrgReport{
		OrgID: "acme",
		Rows: []schema.OrgDailyMetric{
			{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), DeploymentFrequency: 4,
				AvgLeadTimeMinutes: 40, RepoCount: 2},
		},
		Summary: schema.MetricSummary{DeploymentsPerDay: 4, WindowDays: 1, TotalDeployments: 4},
	}

	require.NoError(t, writeJSON(&buf, report))

	var decoded schema.OrgReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "acme", decoded.OrgID)
	require.Len(t, decoded.Rows, 1)
	assert.Equal(t, 2, decoded.Rows[0].RepoCount)
}

func TestWriteCSVLevel(t *testing.T) {
	var buf bytes.Buffer
	report := schema.LevelReport{
		Level: schema.PerformanceLevel{
			DeployFrequency: schema.EliteTier,
			LeadTime:        schema.HighTier,
			ChangeFailure:   schema.EliteTier,
			Recovery:        schema.MediumTier,
			Overall:         schema.MediumTier,
		},
		Summary: schema.MetricSummary{DeploymentsPerDay: 1.2, AvgLeadTimeMinutes: 300, ChangeFailureRate: 0.1, MTTRMinutes: 2000},
	}

	require.NoError(t, writeCSVLevel(&buf, report, createFormatter(1)))

	out := buf.String()
	assert.Contains(t, out, "deployment_frequency,1.2,elite")
	assert.Contains(t, out, "mttr_minutes,2000.0,medium")
	assert.Contains(t, out, "overall,,medium")
}

func TestWriteLevelTable(t *testing.T) {
	var buf bytes.Buffer
	report := schema.LevelReport{
		Level: schema.PerformanceLevel{
			DeployFrequency: schema.EliteTier, LeadTime: schema.EliteTier,
			ChangeFailure: schema.EliteTier, Recovery: schema.LowTier, Overall: schema.LowTier,
		},
		Recommendations: []string{"Reduce recovery time with faster rollback automation."},
	}

	require.NoError(t, writeLevelTable(&buf, report, testConfig(), createFormatter(1)))

	out := buf.String()
	assert.Contains(t, out, "Overall: Low")
	assert.Contains(t, out, "Recommendations:")
	assert.Contains(t, out, "rollback automation")
}

func TestWriteCorrelationTable(t *testing.T) {
	var buf bytes.Buffer
	coeff := 0.82
	report := schema.CorrelationReport{
		OrgID:       "acme",
		PeriodStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Pairs: map[schema.CorrelationPair]schema.PairResult{
			schema.PairDeployRevenue: {Coefficient: &coeff, SampleSize: 14},
			schema.PairCFRChurn:      {SampleSize: 3},
		},
		Insights: []schema.CorrelationInsight{
			{Pair: schema.PairDeployRevenue, Type: schema.PositiveInsight,
				Finding:        "deployment frequency is strongly positively correlated with revenue (r=0.82)",
				Recommendation: "Keep shipping in small batches."},
		},
	}

	require.NoError(t, writeCorrelationTable(&buf, report, testConfig()))

	out := buf.String()
	assert.Contains(t, out, "0.82")
	assert.Contains(t, out, "insufficient data")
	assert.Contains(t, out, "[positive]")
	assert.Contains(t, out, "small batches")
}

func TestWriteCorrelationTableNoInsights(t *testing.T) {
	var buf bytes.Buffer
	report := schema.CorrelationReport{
		Pairs: map[schema.CorrelationPair]schema.PairResult{
			schema.PairDeployRevenue: {SampleSize: 2},
		},
	}

	require.NoError(t, writeCorrelationTable(&buf, report, testConfig()))
	assert.Contains(t, buf.String(), "No strong correlations found.")
}

func TestWriteCSVInsights(t *testing.T) {
	var buf bytes.Buffer
	insights := []schema.DailyInsight{
		{RepoID: "acme/api", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Summary: "3 deployment(s)", RiskFlags: []schema.RiskFlag{schema.RiskBusFactor}},
		{RepoID: "acme/api", Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			Summary: "quiet"},
	}

	require.NoError(t, writeCSVInsights(&buf, insights))

	out := buf.String()
	assert.Contains(t, out, "acme/api,2024-03-01,3 deployment(s),bus-factor-risk")
	assert.Contains(t, out, "acme/api,2024-03-02,quiet,none")
}

func TestWriteContributorsTable(t *testing.T) {
	var buf bytes.Buffer
	stats := []schema.ContributorStat{
		{Author: "dana", Commits: 9},
		{Author: "rex", Commits: 2},
	}

	require.NoError(t, writeContributorsTable(&buf, stats, testConfig()))

	out := buf.String()
	assert.Contains(t, out, "dana")
	assert.Contains(t, out, "9")
}

func TestWriteCSVDeployments(t *testing.T) {
	var buf bytes.Buffer
	details := []schema.DeploymentDetail{
		{RepoID: "acme/api", Number: 7, Title: "Add cache layer", Author: "dana",
			MergedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), LeadTimeMinutes: 95, Failed: true},
	}

	require.NoError(t, writeCSVDeployments(&buf, details, createFormatter(1)))

	out := buf.String()
	assert.Contains(t, out, "repo_id,number,title,author,merged_at,lead_time_minutes,failed")
	assert.Contains(t, out, "acme/api,7,Add cache layer,dana,2024-03-01T10:00:00Z,95.0,true")
}

func TestWriteDeploymentsTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDeploymentsTable(&buf, nil, testConfig(), createFormatter(1)))
	assert.Contains(t, buf.String(), "No merged pull requests on that day.")
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 20))
	assert.Equal(t, "exactly-ten", truncateText("exactly-ten", 11))
	assert.Equal(t, "long te...", truncateText("long text that keeps going", 10))
	assert.Equal(t, "lo", truncateText("long", 2))
}

func TestGetMaxSummaryWidth(t *testing.T) {
	cfg := testConfig()
	cfg.Width = 120
	assert.Equal(t, 80, getMaxSummaryWidth(cfg))

	cfg.Width = 50
	assert.Equal(t, 20, getMaxSummaryWidth(cfg))

	cfg.Width = 500
	assert.Equal(t, 100, getMaxSummaryWidth(cfg))
}

func TestParquetRejectedByReportPrinters(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.ParquetOut
	ow := NewOutWriter()

	assert.Error(t, ow.WriteDailyMetrics(schema.MetricsReport{}, cfg))
	assert.Error(t, ow.WriteOrgMetrics(schema.OrgReport{}, cfg))
	assert.Error(t, ow.WriteLevel(schema.LevelReport{}, cfg))
	assert.Error(t, ow.WriteCorrelation(schema.CorrelationReport{}, cfg))
	assert.Error(t, ow.WriteInsights(nil, cfg))
	assert.Error(t, ow.WriteContributors(nil, cfg))
	assert.Error(t, ow.WriteImpact(schema.ImpactReport{}, cfg))
	assert.Error(t, ow.WriteDeployments(nil, cfg))
}
