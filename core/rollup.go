package core

import (
	"sort"
	"time"

	"github.com/devpulse/devpulse/schema"
)

// Rollup folds per-repository daily rows into organization-level rows.
// Deployment counts sum across repositories; lead time, failure rate and
// recovery time are averaged weighted by each repository's deployments that
// day, so a repository that shipped nothing cannot drag the averages. Dates
// with no input rows are omitted; dates whose total weight is zero report
// zero on the weighted axes.
func Rollup(perRepo map[string][]schema.DailyMetric) []schema.OrgDailyMetric {
	type orgBucket struct {
		deployments int
		leadSum     float64
		cfrSum      float64
		mttrSum     float64
		weight      float64
		repos       int
	}
	buckets := make(map[time.Time]*orgBucket)

	for _, rows := range perRepo {
		for _, row := range rows {
			b, ok := buckets[row.Date]
			if !ok {
				b = &orgBucket{}
				buckets[row.Date] = b
			}
			b.repos++
			b.deployments += row.DeploymentFrequency

			w := float64(row.DeploymentFrequency)
			if w == 0 {
				continue
			}
			b.weight += w
			b.leadSum += row.AvgLeadTimeMinutes * w
			b.cfrSum += row.ChangeFailureRate * w
			b.mttrSum += row.MTTRMinutes * w
		}
	}

	out := make([]schema.OrgDailyMetric, 0, len(buckets))
	for date, b := range buckets {
		row := schema.OrgDailyMetric{
			Date:                date,
			DeploymentFrequency: b.deployments,
			RepoCount:           b.repos,
		}
		if b.weight > 0 {
			row.AvgLeadTimeMinutes = b.leadSum / b.weight
			row.ChangeFailureRate = b.cfrSum / b.weight
			row.MTTRMinutes = b.mttrSum / b.weight
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// SummarizeOrg condenses org-level rows the same way Summarize does for one
// repository, for window-level classification of the whole organization.
func SummarizeOrg(rows []schema.OrgDailyMetric, window schema.Window) schema.MetricSummary {
	daily := make([]schema.DailyMetric, len(rows))
	for i, r := range rows {
		daily[i] = schema.DailyMetric{
			Date:                r.Date,
			DeploymentFrequency: r.DeploymentFrequency,
			AvgLeadTimeMinutes:  r.AvgLeadTimeMinutes,
			ChangeFailureRate:   r.ChangeFailureRate,
			MTTRMinutes:         r.MTTRMinutes,
		}
	}
	return Summarize(daily, window)
}
