package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
)

// ContributorStats folds commit events into per-author totals, ordered by
// commit count descending with ties broken by earliest first commit.
func ContributorStats(events []schema.Event) []schema.ContributorStat {
	byAuthor := make(map[string]*schema.ContributorStat)
	for _, ev := range events {
		if ev.Kind != schema.CommitEvent {
			continue
		}
		s, ok := byAuthor[ev.Author]
		if !ok {
			s = &schema.ContributorStat{Author: ev.Author, FirstCommitAt: ev.OccurredAt}
			byAuthor[ev.Author] = s
		}
		s.Commits++
		if ev.OccurredAt.Before(s.FirstCommitAt) {
			s.FirstCommitAt = ev.OccurredAt
		}
	}

	out := make([]schema.ContributorStat, 0, len(byAuthor))
	for _, s := range byAuthor {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Commits != out[j].Commits {
			return out[i].Commits > out[j].Commits
		}
		return out[i].FirstCommitAt.Before(out[j].FirstCommitAt)
	})
	return out
}

// SummarizeDay derives the daily insight for one repository: a template
// summary sentence, risk flags, and the top contributors for the window.
func SummarizeDay(repoID string, date time.Time, rows []schema.DailyMetric, contributors []schema.ContributorStat, cfg *contract.Config) schema.DailyInsight {
	insight := schema.DailyInsight{
		RepoID: repoID,
		Date:   schema.DayUTC(date),
	}

	totalDeployments := 0
	var dayRow *schema.DailyMetric
	for i, r := range rows {
		totalDeployments += r.DeploymentFrequency
		if r.Date.Equal(insight.Date) {
			dayRow = &rows[i]
		}
	}

	if totalDeployments == 0 {
		insight.RiskFlags = append(insight.RiskFlags, schema.RiskLowActivity)
	}
	if flagBusFactor(contributors, cfg) {
		insight.RiskFlags = append(insight.RiskFlags, schema.RiskBusFactor)
	}

	limit := 5
	if len(contributors) < limit {
		limit = len(contributors)
	}
	insight.TopContributors = contributors[:limit]

	insight.Summary = buildSummary(repoID, dayRow, insight.RiskFlags)
	return insight
}

// flagBusFactor reports whether one author dominates the commit history:
// their share exceeds cfg.BusFactorShare with at least
// cfg.BusFactorMinCommits total commits to avoid flagging tiny samples.
func flagBusFactor(contributors []schema.ContributorStat, cfg *contract.Config) bool {
	total := 0
	top := 0
	for _, c := range contributors {
		total += c.Commits
		if c.Commits > top {
			top = c.Commits
		}
	}
	if total < cfg.BusFactorMinCommits {
		return false
	}
	return float64(top)/float64(total) > cfg.BusFactorShare
}

func buildSummary(repoID string, dayRow *schema.DailyMetric, flags []schema.RiskFlag) string {
	if dayRow == nil || dayRow.DeploymentFrequency == 0 {
		if hasFlag(flags, schema.RiskLowActivity) {
			return fmt.Sprintf("%s shipped nothing today and has no deployments in the window", repoID)
		}
		return fmt.Sprintf("%s shipped nothing today", repoID)
	}

	s := fmt.Sprintf("%s shipped %d deployment(s) with %.0f min average lead time",
		repoID, dayRow.DeploymentFrequency, dayRow.AvgLeadTimeMinutes)
	if dayRow.ChangeFailureRate > 0 {
		s += fmt.Sprintf("; %.0f%% of changes failed", dayRow.ChangeFailureRate*100)
	}
	if hasFlag(flags, schema.RiskBusFactor) {
		s += "; commit activity is concentrated in a single author"
	}
	return s
}

func hasFlag(flags []schema.RiskFlag, want schema.RiskFlag) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}
