package core

import (
	"testing"
	"time"

	"github.com/devpulse/devpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitEvent(author, at string) schema.Event {
	return schema.Event{Kind: schema.CommitEvent, RepoID: "acme/api", Author: author, OccurredAt: ts(at)}
}

func TestContributorStatsOrdering(t *testing.T) {
	var events []schema.Event
	// dana: 3 commits, earliest March 2. rex: 3 commits, earliest March 1.
	// kim: 1 commit. Ties break by earliest first commit.
	for _, at := range []string{"2024-03-02T08:00:00Z", "2024-03-03T08:00:00Z", "2024-03-04T08:00:00Z"} {
		events = append(events, commitEvent("dana", at))
	}
	for _, at := range []string{"2024-03-01T08:00:00Z", "2024-03-05T08:00:00Z", "2024-03-06T08:00:00Z"} {
		events = append(events, commitEvent("rex", at))
	}
	events = append(events, commitEvent("kim", "2024-03-01T09:00:00Z"))
	// Non-commit events are ignored.
	events = append(events, mergedPR("acme/api", "2024-03-01T08:00:00Z", "", 30, false)...)

	stats := ContributorStats(events)
	require.Len(t, stats, 3)
	assert.Equal(t, "rex", stats[0].Author)
	assert.Equal(t, "dana", stats[1].Author)
	assert.Equal(t, "kim", stats[2].Author)
	assert.Equal(t, 3, stats[0].Commits)
}

func TestSummarizeDayBusFactor(t *testing.T) {
	// One author with 8 of 10 commits crosses the 0.60 share threshold.
	var events []schema.Event
	for d := 0; d < 8; d++ {
		events = append(events, commitEvent("dana", time.Date(2024, 3, 1+d, 8, 0, 0, 0, time.UTC).Format(time.RFC3339)))
	}
	events = append(events, commitEvent("rex", "2024-03-01T09:00:00Z"), commitEvent("kim", "2024-03-02T09:00:00Z"))

	contributors := ContributorStats(events)
	insight := SummarizeDay("acme/api", ts("2024-03-05T00:00:00Z"), nil, contributors, testConfig())

	assert.Contains(t, insight.RiskFlags, schema.RiskBusFactor)
	assert.Contains(t, insight.RiskFlags, schema.RiskLowActivity)
	require.NotEmpty(t, insight.TopContributors)
	assert.Equal(t, "dana", insight.TopContributors[0].Author)
	assert.NotEmpty(t, insight.Summary)
}

func TestSummarizeDayNoBusFactorBelowMinCommits(t *testing.T) {
	// Three commits total, all by one author: dominant share, but below
	// the five-commit floor.
	var events []schema.Event
	for _, at := range []string{"2024-03-01T08:00:00Z", "2024-03-02T08:00:00Z", "2024-03-03T08:00:00Z"} {
		events = append(events, commitEvent("dana", at))
	}

	contributors := ContributorStats(events)
	insight := SummarizeDay("acme/api", ts("2024-03-05T00:00:00Z"), nil, contributors, testConfig())
	assert.NotContains(t, insight.RiskFlags, schema.RiskBusFactor)
}

func TestSummarizeDayActiveRepo(t *testing.T) {
	rows := []schema.DailyMetric{
		{RepoID: "acme/api", Date: ts("2024-03-05T00:00:00Z"), DeploymentFrequency: 2, AvgLeadTimeMinutes: 45, ChangeFailureRate: 0.5},
	}
	var events []schema.Event
	for d := 0; d < 3; d++ {
		events = append(events, commitEvent("dana", time.Date(2024, 3, 1+d, 8, 0, 0, 0, time.UTC).Format(time.RFC3339)))
		events = append(events, commitEvent("rex", time.Date(2024, 3, 1+d, 9, 0, 0, 0, time.UTC).Format(time.RFC3339)))
	}

	insight := SummarizeDay("acme/api", ts("2024-03-05T00:00:00Z"), rows, ContributorStats(events), testConfig())

	assert.Empty(t, insight.RiskFlags)
	assert.Contains(t, insight.Summary, "2 deployment(s)")
	assert.Contains(t, insight.Summary, "50% of changes failed")
	assert.Len(t, insight.TopContributors, 2)
}

func TestSummarizeDayTopFiveCap(t *testing.T) {
	var events []schema.Event
	authors := []string{"a", "b", "c", "d", "e", "f", "g"}
	for idx, author := range authors {
		for d := 0; d <= idx; d++ {
			events = append(events, commitEvent(author, time.Date(2024, 3, 1+d, 8, 0, 0, 0, time.UTC).Format(time.RFC3339)))
		}
	}

	insight := SummarizeDay("acme/api", ts("2024-03-05T00:00:00Z"), nil, ContributorStats(events), testConfig())
	assert.Len(t, insight.TopContributors, 5)
	assert.Equal(t, "g", insight.TopContributors[0].Author)
}
