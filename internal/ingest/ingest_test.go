package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/internal/metricstore"
	"github.com/devpulse/devpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned raw activity keyed by repository.
type fakeFetcher struct {
	batches map[string]schema.RawBatch
	err     error
}

func (f *fakeFetcher) FetchCommits(_ context.Context, repoID string, _ schema.Window) ([]schema.RawCommit, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.batches[repoID].Commits, nil
}

func (f *fakeFetcher) FetchPullRequests(_ context.Context, repoID string, _ schema.Window) ([]schema.RawPullRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.batches[repoID].PullRequests, nil
}

func (f *fakeFetcher) FetchIssues(_ context.Context, repoID string, _ schema.Window) ([]schema.RawIssue, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.batches[repoID].Issues, nil
}

func testConfig(repos ...string) *contract.Config {
	return &contract.Config{
		OrgID:               "acme",
		Repositories:        repos,
		StartTime:           time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndTime:             time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		IncidentLinkWindow:  48 * time.Hour,
		FailureLabels:       schema.DefaultFailureLabels,
		IncidentLabels:      schema.DefaultIncidentLabels,
		BusFactorShare:      0.60,
		BusFactorMinCommits: 5,
		Workers:             2,
	}
}

func ts(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
}

func tsPtr(day, hour int) *time.Time {
	t := ts(day, hour)
	return &t
}

func testBatch(repoID string) schema.RawBatch {
	return schema.RawBatch{
		RepoID: repoID,
		Commits: []schema.RawCommit{
			{SHA: "a1", Author: "dana", CommittedAt: tsPtr(1, 9)},
			{SHA: "a2", Author: "dana", CommittedAt: tsPtr(2, 9)},
			{SHA: "bad", Author: "rex"}, // no timestamp, skipped
		},
		PullRequests: []schema.RawPullRequest{
			{Number: 1, Title: "Add search", Author: "dana", CreatedAt: tsPtr(1, 9), MergedAt: tsPtr(2, 15)},
			{Number: 2, Title: "WIP", Author: "rex", CreatedAt: tsPtr(3, 9)}, // unmerged, ignored
		},
		Issues: []schema.RawIssue{
			{Number: 9, Title: "API down", Author: "oncall", Labels: []string{"incident"},
				CreatedAt: tsPtr(2, 20), ClosedAt: tsPtr(2, 22)},
		},
	}
}

func newRunner(t *testing.T, fetcher contract.Fetcher, cfg *contract.Config) (*Runner, contract.MetricStore) {
	t.Helper()
	store, err := metricstore.NewStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewRunner(fetcher, store, cfg), store
}

func TestRunnerSingleRepo(t *testing.T) {
	cfg := testConfig("acme/api")
	fetcher := &fakeFetcher{batches: map[string]schema.RawBatch{"acme/api": testBatch("acme/api")}}
	runner, store := newRunner(t, fetcher, cfg)

	results, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, "acme/api", res.RepoID)
	assert.NotEmpty(t, res.RunID)
	// 2 commits + deployment/change pair + incident open and resolution
	assert.Equal(t, 5, res.EventsSeen)
	assert.Equal(t, 1, res.EventsSkipped)
	assert.Equal(t, 2, res.DaysWritten)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "bad", res.Skipped[0].Ref)

	rows, err := store.GetDailyMetrics("acme/api", cfg.Window())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Day 1 has a commit but no deployments; day 2 has the merged PR
	assert.Equal(t, 0, rows[0].DeploymentFrequency)
	assert.Equal(t, 1, rows[1].DeploymentFrequency)

	insights, err := store.GetDailyInsights("acme/api", cfg.Window())
	require.NoError(t, err)
	require.Len(t, insights, 2)
	assert.NotEmpty(t, insights[0].Summary)
	assert.NotEmpty(t, insights[0].TopContributors)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.IngestionRuns)
}

func TestRunnerMultipleReposSorted(t *testing.T) {
	cfg := testConfig("acme/web", "acme/api")
	fetcher := &fakeFetcher{batches: map[string]schema.RawBatch{
		"acme/api": testBatch("acme/api"),
		"acme/web": testBatch("acme/web"),
	}}
	runner, store := newRunner(t, fetcher, cfg)

	results, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "acme/api", results[0].RepoID)
	assert.Equal(t, "acme/web", results[1].RepoID)

	// Both repos share one run identifier
	assert.Equal(t, results[0].RunID, results[1].RunID)

	all, err := store.GetAllDailyMetrics(cfg.Window())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.IngestionRuns)
}

func TestRunnerRecomputeIsIdempotent(t *testing.T) {
	cfg := testConfig("acme/api")
	fetcher := &fakeFetcher{batches: map[string]schema.RawBatch{"acme/api": testBatch("acme/api")}}
	runner, store := newRunner(t, fetcher, cfg)

	_, err := runner.Run(context.Background())
	require.NoError(t, err)
	_, err = runner.Run(context.Background())
	require.NoError(t, err)

	rows, err := store.GetDailyMetrics("acme/api", cfg.Window())
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	insights, err := store.GetDailyInsights("acme/api", cfg.Window())
	require.NoError(t, err)
	assert.Len(t, insights, 2)
}

func TestRunnerFetchErrorPropagates(t *testing.T) {
	cfg := testConfig("acme/api")
	fetcher := &fakeFetcher{err: errors.New("boom")}
	runner, _ := newRunner(t, fetcher, cfg)

	_, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acme/api")
	assert.Contains(t, err.Error(), "boom")
}

func TestRunnerEmptyActivity(t *testing.T) {
	cfg := testConfig("acme/quiet")
	fetcher := &fakeFetcher{batches: map[string]schema.RawBatch{}}
	runner, store := newRunner(t, fetcher, cfg)

	results, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Zero(t, results[0].EventsSeen)
	assert.Zero(t, results[0].DaysWritten)

	rows, err := store.GetDailyMetrics("acme/quiet", cfg.Window())
	require.NoError(t, err)
	assert.Empty(t, rows)
}
