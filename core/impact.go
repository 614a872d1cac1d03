package core

import (
	"fmt"

	"github.com/devpulse/devpulse/schema"
)

// EstimateImpact projects the annual dollar value of moving from one metric
// summary to another, given the organization's financial context. Each axis
// contributes an estimate only when it improved; the math is deliberately
// coarse and meant for prioritization conversations, not accounting.
func EstimateImpact(before, after schema.MetricSummary, bctx schema.BusinessContext) schema.ImpactReport {
	var report schema.ImpactReport

	deploysPerYear := after.DeploymentsPerDay * 365

	// More deployments: each additional ten releases a year is credited
	// with half a percent of annual revenue.
	if delta := after.DeploymentsPerDay - before.DeploymentsPerDay; delta > 0 {
		extraPerYear := delta * 365
		value := bctx.AnnualRevenue * (extraPerYear / 10) * 0.005
		report.Estimates = append(report.Estimates, schema.ImpactEstimate{
			Axis:           "deployment_frequency",
			Before:         before.DeploymentsPerDay,
			After:          after.DeploymentsPerDay,
			AnnualValueUSD: value,
			Explanation:    fmt.Sprintf("%.0f additional deployments per year at ~0.5%% revenue per ten", extraPerYear),
		})
	}

	// Shorter lead time: engineering hours recovered across a year of
	// deployments.
	if delta := before.AvgLeadTimeMinutes - after.AvgLeadTimeMinutes; delta > 0 {
		hoursSaved := (delta / 60) * deploysPerYear
		value := hoursSaved * bctx.EngineeringHourlyRate
		report.Estimates = append(report.Estimates, schema.ImpactEstimate{
			Axis:           "lead_time",
			Before:         before.AvgLeadTimeMinutes,
			After:          after.AvgLeadTimeMinutes,
			AnnualValueUSD: value,
			Explanation:    fmt.Sprintf("%.0f engineering hours saved per year", hoursSaved),
		})
	}

	// Lower failure rate: incidents prevented, priced at the average
	// incident cost.
	if delta := before.ChangeFailureRate - after.ChangeFailureRate; delta > 0 {
		prevented := delta * deploysPerYear
		value := prevented * bctx.AvgIncidentCost
		report.Estimates = append(report.Estimates, schema.ImpactEstimate{
			Axis:           "change_failure_rate",
			Before:         before.ChangeFailureRate,
			After:          after.ChangeFailureRate,
			AnnualValueUSD: value,
			Explanation:    fmt.Sprintf("~%.1f incidents prevented per year", prevented),
		})
	}

	// Faster recovery: downtime hours avoided, priced at revenue per hour.
	if delta := before.MTTRMinutes - after.MTTRMinutes; delta > 0 {
		incidentsPerYear := after.ChangeFailureRate * deploysPerYear
		downtimeSaved := (delta / 60) * incidentsPerYear
		revenuePerHour := bctx.AnnualRevenue / (365 * 24)
		value := downtimeSaved * revenuePerHour
		report.Estimates = append(report.Estimates, schema.ImpactEstimate{
			Axis:           "mttr",
			Before:         before.MTTRMinutes,
			After:          after.MTTRMinutes,
			AnnualValueUSD: value,
			Explanation:    fmt.Sprintf("%.1f downtime hours avoided per year", downtimeSaved),
		})
	}

	for _, e := range report.Estimates {
		report.TotalAnnualUSD += e.AnnualValueUSD
	}
	return report
}
