package core

import (
	"fmt"
	"math"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
	"github.com/montanaflynn/stats"
)

// pairSpec fixes how one DORA/business pairing is extracted and interpreted.
// expectedSign is the correlation sign the pairing predicts; confirmType and
// opposeType pick the insight type when a strong coefficient confirms or
// contradicts that prediction.
type pairSpec struct {
	pair         schema.CorrelationPair
	doraName     string
	bizName      string
	doraValue    func(schema.OrgDailyMetric) (float64, bool)
	bizValue     func(schema.BusinessMetric) (float64, bool)
	expectedSign int
	confirmType  schema.InsightType
	opposeType   schema.InsightType
	confirmRec   string
	opposeRec    string
}

// The eight fixed pairings. Lead time and MTTR predict negative correlation
// with good outcomes (shorter is better); change failure rate predicts
// positive correlation with bad outcomes, so its confirmation is a warning.
var pairSpecs = []pairSpec{
	{
		pair: schema.PairDeployRevenue, doraName: "deployment frequency", bizName: "revenue",
		doraValue: doraDeployments, bizValue: bizFloat(func(m schema.BusinessMetric) *float64 { return m.Revenue }),
		expectedSign: 1, confirmType: schema.PositiveInsight, opposeType: schema.WarningInsight,
		confirmRec: "Keep investing in deployment automation; release cadence is tracking revenue",
		opposeRec:  "Review release quality; shipping more is tracking revenue down",
	},
	{
		pair: schema.PairDeploySatisfaction, doraName: "deployment frequency", bizName: "customer satisfaction",
		doraValue: doraDeployments, bizValue: bizFloat(func(m schema.BusinessMetric) *float64 { return m.CustomerSatisfactionScore }),
		expectedSign: 1, confirmType: schema.PositiveInsight, opposeType: schema.WarningInsight,
		confirmRec: "Sustain the release cadence; customers respond well to frequent improvements",
		opposeRec:  "Slow down and stabilize; release churn is tracking satisfaction down",
	},
	{
		pair: schema.PairLeadRevenue, doraName: "lead time", bizName: "revenue",
		doraValue: doraLeadTime, bizValue: bizFloat(func(m schema.BusinessMetric) *float64 { return m.Revenue }),
		expectedSign: -1, confirmType: schema.PositiveInsight, opposeType: schema.WarningInsight,
		confirmRec: "Keep cycle times short; faster delivery is tracking revenue gains",
		opposeRec:  "Investigate whether rushed delivery is hurting revenue-generating work",
	},
	{
		pair: schema.PairLeadSatisfaction, doraName: "lead time", bizName: "customer satisfaction",
		doraValue: doraLeadTime, bizValue: bizFloat(func(m schema.BusinessMetric) *float64 { return m.CustomerSatisfactionScore }),
		expectedSign: -1, confirmType: schema.PositiveInsight, opposeType: schema.WarningInsight,
		confirmRec: "Focus on reducing cycle time through smaller batches and automation",
		opposeRec:  "Check whether speed is coming at the cost of customer-facing quality",
	},
	{
		pair: schema.PairCFRIncidents, doraName: "change failure rate", bizName: "production incidents",
		doraValue: doraFailureRate, bizValue: bizInt(func(m schema.BusinessMetric) *int { return m.Incidents }),
		expectedSign: 1, confirmType: schema.WarningInsight, opposeType: schema.NeutralInsight,
		confirmRec: "Improve testing and code review; failed changes are driving incidents",
		opposeRec:  "Incident volume moves independently of change failures; review incident sources",
	},
	{
		pair: schema.PairCFRChurn, doraName: "change failure rate", bizName: "customer churn",
		doraValue: doraFailureRate, bizValue: bizFloat(func(m schema.BusinessMetric) *float64 { return m.CustomerChurnRate }),
		expectedSign: 1, confirmType: schema.WarningInsight, opposeType: schema.NeutralInsight,
		confirmRec: "Reduce failed changes; delivery instability is tracking customer churn",
		opposeRec:  "Churn moves independently of change failures; look for other churn drivers",
	},
	{
		pair: schema.PairMTTRSatisfaction, doraName: "recovery time", bizName: "customer satisfaction",
		doraValue: doraRecovery, bizValue: bizFloat(func(m schema.BusinessMetric) *float64 { return m.CustomerSatisfactionScore }),
		expectedSign: -1, confirmType: schema.PositiveInsight, opposeType: schema.WarningInsight,
		confirmRec: "Keep recovery fast; quick incident resolution is tracking satisfaction",
		opposeRec:  "Shorten incident recovery; slow restores are tracking satisfaction down",
	},
	{
		pair: schema.PairMTTRUptime, doraName: "recovery time", bizName: "uptime",
		doraValue: doraRecovery, bizValue: bizFloat(func(m schema.BusinessMetric) *float64 { return m.UptimePercentage }),
		expectedSign: -1, confirmType: schema.PositiveInsight, opposeType: schema.WarningInsight,
		confirmRec: "Fast recovery is protecting uptime; keep runbooks and rollbacks sharp",
		opposeRec:  "Slow recovery is eroding uptime; invest in detection and rollback speed",
	},
}

// Correlate computes Pearson coefficients for the fixed DORA/business
// pairings over dates both series report. A pairing with fewer than
// cfg.CorrelationMinPoints paired points carries a nil coefficient and emits
// no insight; a coefficient never degrades to NaN or a silent zero.
func Correlate(orgRows []schema.OrgDailyMetric, business []schema.BusinessMetric, cfg *contract.Config) schema.CorrelationReport {
	report := schema.CorrelationReport{
		OrgID:       cfg.OrgID,
		PeriodStart: schema.DayUTC(cfg.StartTime),
		PeriodEnd:   schema.DayUTC(cfg.EndTime),
		Pairs:       make(map[schema.CorrelationPair]schema.PairResult, len(pairSpecs)),
	}

	bizByDate := make(map[int64]schema.BusinessMetric, len(business))
	for _, m := range business {
		bizByDate[schema.DayUTC(m.Date).Unix()] = m
	}

	for _, spec := range pairSpecs {
		var xs, ys []float64
		for _, row := range orgRows {
			biz, ok := bizByDate[schema.DayUTC(row.Date).Unix()]
			if !ok {
				continue
			}
			x, ok := spec.doraValue(row)
			if !ok {
				continue
			}
			y, ok := spec.bizValue(biz)
			if !ok {
				continue
			}
			xs = append(xs, x)
			ys = append(ys, y)
		}

		result := schema.PairResult{SampleSize: len(xs)}
		if len(xs) >= cfg.CorrelationMinPoints {
			r, err := stats.Pearson(xs, ys)
			if err == nil && !math.IsNaN(r) {
				result.Coefficient = &r
				if insight, ok := buildInsight(spec, r, cfg.CorrelationStrongR); ok {
					report.Insights = append(report.Insights, insight)
				}
			}
		}
		report.Pairs[spec.pair] = result
	}

	return report
}

// buildInsight emits an insight when the coefficient clears the strength
// threshold. Confirmation of the pairing's expected sign and contradiction
// of it map to different insight types.
func buildInsight(spec pairSpec, r, strongR float64) (schema.CorrelationInsight, bool) {
	if math.Abs(r) < strongR {
		return schema.CorrelationInsight{}, false
	}

	confirmed := (r > 0) == (spec.expectedSign > 0)
	insight := schema.CorrelationInsight{
		Pair:        spec.pair,
		Coefficient: r,
		Finding: fmt.Sprintf("%s is %s %s correlated with %s (r=%.2f)",
			spec.doraName, strengthWord(r), directionWord(r), spec.bizName, r),
	}
	if confirmed {
		insight.Type = spec.confirmType
		insight.Recommendation = spec.confirmRec
	} else {
		insight.Type = spec.opposeType
		insight.Recommendation = spec.opposeRec
	}
	return insight, true
}

// strengthWord mirrors the conventional interpretation bands for |r|.
func strengthWord(r float64) string {
	abs := math.Abs(r)
	switch {
	case abs >= 0.7:
		return "strongly"
	case abs >= 0.4:
		return "moderately"
	default:
		return "weakly"
	}
}

func directionWord(r float64) string {
	if r >= 0 {
		return "positively"
	}
	return "negatively"
}

// DORA-side extractors. Lead time and failure rate only exist on days with
// deployments; recovery only on days that resolved an incident.
func doraDeployments(row schema.OrgDailyMetric) (float64, bool) {
	return float64(row.DeploymentFrequency), true
}

func doraLeadTime(row schema.OrgDailyMetric) (float64, bool) {
	return row.AvgLeadTimeMinutes, row.DeploymentFrequency > 0
}

func doraFailureRate(row schema.OrgDailyMetric) (float64, bool) {
	return row.ChangeFailureRate, row.DeploymentFrequency > 0
}

func doraRecovery(row schema.OrgDailyMetric) (float64, bool) {
	return row.MTTRMinutes, row.MTTRMinutes > 0
}

// Business-side extractors treat nil as "not reported that day".
func bizFloat(get func(schema.BusinessMetric) *float64) func(schema.BusinessMetric) (float64, bool) {
	return func(m schema.BusinessMetric) (float64, bool) {
		if v := get(m); v != nil {
			return *v, true
		}
		return 0, false
	}
}

func bizInt(get func(schema.BusinessMetric) *int) func(schema.BusinessMetric) (float64, bool) {
	return func(m schema.BusinessMetric) (float64, bool) {
		if v := get(m); v != nil {
			return float64(*v), true
		}
		return 0, false
	}
}
