// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/devpulse/devpulse/schema"
)

// Fetcher defines the retrieval operations against a GitHub-shaped source.
// This allows ingestion logic to be tested without network access.
type Fetcher interface {
	// FetchCommits returns default-branch commits inside the window.
	FetchCommits(ctx context.Context, repoID string, window schema.Window) ([]schema.RawCommit, error)

	// FetchPullRequests returns pull requests updated inside the window,
	// merged or not.
	FetchPullRequests(ctx context.Context, repoID string, window schema.Window) ([]schema.RawPullRequest, error)

	// FetchIssues returns issues opened inside the window, including an
	// extra IncidentLinkWindow tail so post-merge incidents are visible.
	FetchIssues(ctx context.Context, repoID string, window schema.Window) ([]schema.RawIssue, error)
}

// MetricStore defines the persistence operations for derived metrics,
// insights, business figures and run bookkeeping.
type MetricStore interface {
	// UpsertDailyMetrics replaces the daily rows in one transaction. A
	// conflicting duplicate (repo, date) inside the batch is rejected
	// before any write.
	UpsertDailyMetrics(runID string, rows []schema.DailyMetric) error

	// GetDailyMetrics returns one repository's rows inside the window,
	// date ascending.
	GetDailyMetrics(repoID string, window schema.Window) ([]schema.DailyMetric, error)

	// GetAllDailyMetrics returns every repository's rows inside the
	// window, keyed by repository.
	GetAllDailyMetrics(window schema.Window) (map[string][]schema.DailyMetric, error)

	UpsertDailyInsight(insight schema.DailyInsight) error
	GetDailyInsights(repoID string, window schema.Window) ([]schema.DailyInsight, error)

	// UpsertBusinessMetric merges one day of business figures. Nil fields
	// keep whatever is already stored.
	UpsertBusinessMetric(m schema.BusinessMetric) error
	GetBusinessMetrics(orgID string, window schema.Window) ([]schema.BusinessMetric, error)

	PutCorrelationReport(report schema.CorrelationReport) error
	GetCorrelationReport(orgID string, window schema.Window) (*schema.CorrelationReport, error)

	BeginRun(run schema.IngestionRun) error
	EndRun(run schema.IngestionRun) error

	GetStatus() (schema.StoreStatus, error)
	Close() error
}

// TextGenerator produces a natural-language answer about delivery metrics.
type TextGenerator interface {
	Generate(ctx context.Context, question string, digest schema.ChatDigest) (string, error)
}
