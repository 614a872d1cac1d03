// Package ingest orchestrates one derivation pass: fetch raw activity,
// normalize it into events, aggregate daily metrics and write everything to
// the metric store.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/devpulse/devpulse/core"
	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// RepoResult reports what one repository's pass produced.
type RepoResult struct {
	RepoID        string                      `json:"repo_id"`
	RunID         string                      `json:"run_id"`
	EventsSeen    int                         `json:"events_seen"`
	EventsSkipped int                         `json:"events_skipped"`
	DaysWritten   int                         `json:"days_written"`
	Skipped       []*core.MalformedInputError `json:"-"`
}

// Runner coordinates ingestion across repositories. Repositories run in
// parallel up to the worker limit; passes over the same repository are
// serialized by a per-repository lock.
type Runner struct {
	fetcher contract.Fetcher
	store   contract.MetricStore
	cfg     *contract.Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRunner builds a Runner over the given fetcher and store.
func NewRunner(fetcher contract.Fetcher, store contract.MetricStore, cfg *contract.Config) *Runner {
	return &Runner{
		fetcher: fetcher,
		store:   store,
		cfg:     cfg,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Run ingests every configured repository and returns per-repository
// results sorted by repository.
func (r *Runner) Run(ctx context.Context) ([]RepoResult, error) {
	runID := uuid.NewString()
	window := r.cfg.Window()

	results := make([]RepoResult, len(r.cfg.Repositories))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for idx, repoID := range r.cfg.Repositories {
		g.Go(func() error {
			result, err := r.runRepo(gctx, runID, repoID, window)
			if err != nil {
				return fmt.Errorf("ingestion failed for %s: %w", repoID, err)
			}
			results[idx] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].RepoID < results[j].RepoID })
	return results, nil
}

// runRepo executes the fetch, derive and store pipeline for one repository.
func (r *Runner) runRepo(ctx context.Context, runID, repoID string, window schema.Window) (RepoResult, error) {
	lock := r.repoLock(repoID)
	lock.Lock()
	defer lock.Unlock()

	run := schema.IngestionRun{
		RunID:     runID,
		RepoID:    repoID,
		StartedAt: time.Now(),
		Params:    r.runParams(window),
	}
	if err := r.store.BeginRun(run); err != nil {
		return RepoResult{}, err
	}

	batch, err := r.fetch(ctx, repoID, window)
	if err != nil {
		return RepoResult{}, err
	}

	events, skipped := core.Normalize(batch, r.cfg)
	rows := core.Aggregate(events, window)

	if err := r.store.UpsertDailyMetrics(runID, rows); err != nil {
		return RepoResult{}, err
	}

	contributors := core.ContributorStats(events)
	for _, row := range rows {
		insight := core.SummarizeDay(repoID, row.Date, rows, contributors, r.cfg)
		if err := r.store.UpsertDailyInsight(insight); err != nil {
			return RepoResult{}, err
		}
	}

	finished := time.Now()
	run.FinishedAt = &finished
	run.EventsSeen = len(events)
	run.EventsSkipped = len(skipped)
	run.DaysWritten = len(rows)
	if err := r.store.EndRun(run); err != nil {
		return RepoResult{}, err
	}

	return RepoResult{
		RepoID:        repoID,
		RunID:         runID,
		EventsSeen:    len(events),
		EventsSkipped: len(skipped),
		DaysWritten:   len(rows),
		Skipped:       skipped,
	}, nil
}

// fetch pulls the three raw activity feeds for one repository.
func (r *Runner) fetch(ctx context.Context, repoID string, window schema.Window) (schema.RawBatch, error) {
	commits, err := r.fetcher.FetchCommits(ctx, repoID, window)
	if err != nil {
		return schema.RawBatch{}, err
	}
	prs, err := r.fetcher.FetchPullRequests(ctx, repoID, window)
	if err != nil {
		return schema.RawBatch{}, err
	}
	issues, err := r.fetcher.FetchIssues(ctx, repoID, window)
	if err != nil {
		return schema.RawBatch{}, err
	}
	return schema.RawBatch{RepoID: repoID, Commits: commits, PullRequests: prs, Issues: issues}, nil
}

// repoLock returns the mutex guarding one repository.
func (r *Runner) repoLock(repoID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[repoID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[repoID] = lock
	}
	return lock
}

// runParams captures the derivation knobs in effect, for run bookkeeping.
func (r *Runner) runParams(window schema.Window) string {
	params := map[string]any{
		"start":                window.Start.Format(contract.DateFormat),
		"end":                  window.End.Format(contract.DateFormat),
		"incident_link_window": r.cfg.IncidentLinkWindow.String(),
		"failure_labels":       r.cfg.FailureLabels,
		"incident_labels":      r.cfg.IncidentLabels,
	}
	blob, err := json.Marshal(params)
	if err != nil {
		return ""
	}
	return string(blob)
}
