package core

import (
	"testing"

	"github.com/devpulse/devpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollupWeightsByDeployments(t *testing.T) {
	// Repo A ships 10 times with 10 minute lead; repo B ships nothing.
	// The org lead time must stay 10, not get averaged toward zero.
	date := ts("2024-03-05T00:00:00Z")
	perRepo := map[string][]schema.DailyMetric{
		"acme/api": {{RepoID: "acme/api", Date: date, DeploymentFrequency: 10, AvgLeadTimeMinutes: 10}},
		"acme/web": {{RepoID: "acme/web", Date: date, DeploymentFrequency: 0, AvgLeadTimeMinutes: 0}},
	}

	rows := Rollup(perRepo)
	require.Len(t, rows, 1)
	assert.Equal(t, 10, rows[0].DeploymentFrequency)
	assert.Equal(t, 10.0, rows[0].AvgLeadTimeMinutes)
	assert.Equal(t, 2, rows[0].RepoCount)
}

func TestRollupWeightedAverages(t *testing.T) {
	date := ts("2024-03-05T00:00:00Z")
	perRepo := map[string][]schema.DailyMetric{
		"acme/api": {{RepoID: "acme/api", Date: date, DeploymentFrequency: 3, AvgLeadTimeMinutes: 30, ChangeFailureRate: 0.0, MTTRMinutes: 60}},
		"acme/web": {{RepoID: "acme/web", Date: date, DeploymentFrequency: 1, AvgLeadTimeMinutes: 70, ChangeFailureRate: 1.0, MTTRMinutes: 100}},
	}

	rows := Rollup(perRepo)
	require.Len(t, rows, 1)
	assert.Equal(t, 4, rows[0].DeploymentFrequency)
	assert.Equal(t, 40.0, rows[0].AvgLeadTimeMinutes) // (3*30 + 1*70) / 4
	assert.Equal(t, 0.25, rows[0].ChangeFailureRate)  // (3*0 + 1*1) / 4
	assert.Equal(t, 70.0, rows[0].MTTRMinutes)        // (3*60 + 1*100) / 4
}

func TestRollupZeroWeightDay(t *testing.T) {
	// Both repos present but nobody deployed: the row exists with zeroed
	// weighted axes rather than being dropped or NaN.
	date := ts("2024-03-05T00:00:00Z")
	perRepo := map[string][]schema.DailyMetric{
		"acme/api": {{RepoID: "acme/api", Date: date}},
		"acme/web": {{RepoID: "acme/web", Date: date}},
	}

	rows := Rollup(perRepo)
	require.Len(t, rows, 1)
	assert.Equal(t, schema.OrgDailyMetric{Date: date, RepoCount: 2}, rows[0])
}

func TestRollupOmitsEmptyDatesAndSorts(t *testing.T) {
	perRepo := map[string][]schema.DailyMetric{
		"acme/api": {
			{RepoID: "acme/api", Date: ts("2024-03-09T00:00:00Z"), DeploymentFrequency: 1},
			{RepoID: "acme/api", Date: ts("2024-03-03T00:00:00Z"), DeploymentFrequency: 2},
		},
	}

	rows := Rollup(perRepo)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Date.Before(rows[1].Date))
}

func TestRollupEmptyInput(t *testing.T) {
	assert.Empty(t, Rollup(nil))
	assert.Empty(t, Rollup(map[string][]schema.DailyMetric{}))
}
