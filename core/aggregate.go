package core

import (
	"sort"
	"time"

	"github.com/devpulse/devpulse/schema"
)

// dayBucket accumulates one repository-day of activity before it is reduced
// to a DailyMetric row.
type dayBucket struct {
	deployments int
	leads       []float64
	changes     int
	failed      int
	recoveries  []float64
}

// Aggregate derives one DailyMetric row per UTC calendar day that saw at
// least one event inside the window. Days without events produce no row;
// days with events but no deployments produce an explicit zero row. The
// result is sorted by repository then date and is a pure function of its
// inputs: rerunning over the same events yields identical rows.
func Aggregate(events []schema.Event, window schema.Window) []schema.DailyMetric {
	type key struct {
		repo string
		day  time.Time
	}
	buckets := make(map[key]*dayBucket)

	touch := func(repo string, day time.Time) *dayBucket {
		k := key{repo, day}
		b, ok := buckets[k]
		if !ok {
			b = &dayBucket{}
			buckets[k] = b
		}
		return b
	}

	for _, ev := range events {
		switch ev.Kind {
		case schema.CommitEvent:
			day := schema.DayUTC(ev.OccurredAt)
			if window.Contains(day) {
				touch(ev.RepoID, day)
			}

		case schema.DeploymentEvent:
			if ev.MergedAt == nil {
				continue
			}
			day := schema.DayUTC(*ev.MergedAt)
			if window.Contains(day) {
				touch(ev.RepoID, day).deployments++
			}

		case schema.ChangeEvent:
			if ev.MergedAt == nil {
				continue
			}
			day := schema.DayUTC(*ev.MergedAt)
			if !window.Contains(day) {
				continue
			}
			b := touch(ev.RepoID, day)
			b.changes++
			if ev.Failed {
				b.failed++
			}
			if ev.FirstCommitAt != nil {
				b.leads = append(b.leads, minutesBetween(*ev.FirstCommitAt, *ev.MergedAt))
			} else {
				b.leads = append(b.leads, minutesBetween(ev.OccurredAt, *ev.MergedAt))
			}

		case schema.IncidentEvent:
			openDay := schema.DayUTC(ev.OccurredAt)
			if window.Contains(openDay) {
				touch(ev.RepoID, openDay)
			}
			if ev.ResolvedAt == nil {
				continue
			}
			closeDay := schema.DayUTC(*ev.ResolvedAt)
			if window.Contains(closeDay) {
				b := touch(ev.RepoID, closeDay)
				b.recoveries = append(b.recoveries, minutesBetween(ev.OccurredAt, *ev.ResolvedAt))
			}
		}
	}

	rows := make([]schema.DailyMetric, 0, len(buckets))
	for k, b := range buckets {
		row := schema.DailyMetric{
			RepoID:              k.repo,
			Date:                k.day,
			DeploymentFrequency: b.deployments,
			AvgLeadTimeMinutes:  mean(b.leads),
			MTTRMinutes:         mean(b.recoveries),
		}
		if b.changes > 0 {
			row.ChangeFailureRate = float64(b.failed) / float64(b.changes)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].RepoID != rows[j].RepoID {
			return rows[i].RepoID < rows[j].RepoID
		}
		return rows[i].Date.Before(rows[j].Date)
	})
	return rows
}

// Summarize condenses daily rows into the window-level axes used for
// classification and impact estimation. Lead time and failure rate are
// averaged weighted by each day's deployments, the same weighting Rollup
// applies across repositories, so the window failure rate equals total
// failed changes over total changes and a clean shipping day counts.
// Recovery time averages over days that resolved an incident; deployment
// frequency divides by the full window length.
func Summarize(rows []schema.DailyMetric, window schema.Window) schema.MetricSummary {
	s := schema.MetricSummary{WindowDays: window.Days()}

	var leadSum, cfrSum, weight float64
	var recoveries []float64
	for _, r := range rows {
		s.TotalDeployments += r.DeploymentFrequency
		if w := float64(r.DeploymentFrequency); w > 0 {
			weight += w
			leadSum += r.AvgLeadTimeMinutes * w
			cfrSum += r.ChangeFailureRate * w
		}
		if r.MTTRMinutes > 0 {
			recoveries = append(recoveries, r.MTTRMinutes)
		}
	}

	if s.WindowDays > 0 {
		s.DeploymentsPerDay = float64(s.TotalDeployments) / float64(s.WindowDays)
	}
	if weight > 0 {
		s.AvgLeadTimeMinutes = leadSum / weight
		s.ChangeFailureRate = cfrSum / weight
	}
	s.MTTRMinutes = mean(recoveries)
	return s
}
