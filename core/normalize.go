package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
)

// Normalize maps one repository's raw GitHub records into events. Records
// missing required timestamps are returned as skips, never as a failure of
// the whole batch. Unmerged pull requests and non-incident issues produce no
// events and no skips.
func Normalize(batch schema.RawBatch, cfg *contract.Config) ([]schema.Event, []*MalformedInputError) {
	var events []schema.Event
	var skipped []*MalformedInputError

	for _, c := range batch.Commits {
		if c.CommittedAt == nil {
			skipped = append(skipped, &MalformedInputError{
				RepoID: batch.RepoID, Kind: "commit", Ref: c.SHA, Reason: "missing commit timestamp",
			})
			continue
		}
		events = append(events, schema.Event{
			Kind:       schema.CommitEvent,
			RepoID:     batch.RepoID,
			Author:     authorOrUnknown(c.Author),
			OccurredAt: c.CommittedAt.UTC(),
			Title:      c.Message,
		})
	}

	incidents, incidentSkips := normalizeIncidents(batch, cfg)
	skipped = append(skipped, incidentSkips...)

	for _, pr := range batch.PullRequests {
		if pr.MergedAt == nil {
			continue // open or closed-unmerged, nothing deployed
		}
		if pr.CreatedAt == nil {
			skipped = append(skipped, &MalformedInputError{
				RepoID: batch.RepoID, Kind: "pull_request", Ref: fmt.Sprintf("#%d", pr.Number),
				Reason: "merged without creation timestamp",
			})
			continue
		}

		first := pr.CreatedAt
		if pr.FirstCommitAt != nil {
			first = pr.FirstCommitAt
		}
		failed := isFailedChange(pr, incidents, cfg)

		base := schema.Event{
			RepoID:        batch.RepoID,
			Author:        authorOrUnknown(pr.Author),
			OccurredAt:    pr.CreatedAt.UTC(),
			FirstCommitAt: utcPtr(first),
			MergedAt:      utcPtr(pr.MergedAt),
			Failed:        failed,
			Title:         pr.Title,
			Number:        pr.Number,
		}

		deployment := base
		deployment.Kind = schema.DeploymentEvent
		change := base
		change.Kind = schema.ChangeEvent
		events = append(events, deployment, change)
	}

	events = append(events, incidents...)
	return events, skipped
}

// normalizeIncidents extracts incident events from issues carrying any of
// the configured incident labels.
func normalizeIncidents(batch schema.RawBatch, cfg *contract.Config) ([]schema.Event, []*MalformedInputError) {
	var events []schema.Event
	var skipped []*MalformedInputError

	for _, issue := range batch.Issues {
		if !hasAnyLabel(issue.Labels, cfg.IncidentLabels) {
			continue
		}
		if issue.CreatedAt == nil {
			skipped = append(skipped, &MalformedInputError{
				RepoID: batch.RepoID, Kind: "issue", Ref: fmt.Sprintf("#%d", issue.Number),
				Reason: "missing creation timestamp",
			})
			continue
		}
		events = append(events, schema.Event{
			Kind:       schema.IncidentEvent,
			RepoID:     batch.RepoID,
			Author:     authorOrUnknown(issue.Author),
			OccurredAt: issue.CreatedAt.UTC(),
			ResolvedAt: utcPtr(issue.ClosedAt),
			Title:      issue.Title,
			Number:     issue.Number,
		})
	}
	return events, skipped
}

// isFailedChange applies the failure heuristic to a merged pull request:
// a revert/rollback title, a failure label, or an incident opened within the
// link window after the merge.
func isFailedChange(pr schema.RawPullRequest, incidents []schema.Event, cfg *contract.Config) bool {
	title := strings.ToLower(pr.Title)
	if strings.Contains(title, "revert") || strings.Contains(title, "rollback") {
		return true
	}
	if hasAnyLabel(pr.Labels, cfg.FailureLabels) {
		return true
	}

	merged := pr.MergedAt.UTC()
	deadline := merged.Add(cfg.IncidentLinkWindow)
	for _, inc := range incidents {
		if inc.OccurredAt.After(merged) && !inc.OccurredAt.After(deadline) {
			return true
		}
	}
	return false
}

func hasAnyLabel(labels, wanted []string) bool {
	for _, l := range labels {
		for _, w := range wanted {
			if strings.EqualFold(strings.TrimSpace(l), w) {
				return true
			}
		}
	}
	return false
}

func authorOrUnknown(author string) string {
	if strings.TrimSpace(author) == "" {
		return "unknown"
	}
	return author
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
