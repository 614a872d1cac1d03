package core

import "github.com/devpulse/devpulse/schema"

// Classify grades a window summary against the DORA benchmark bands. Each
// axis is graded independently; the overall tier is the worst axis, so a
// single weak axis cannot hide behind three strong ones.
func Classify(summary schema.MetricSummary) schema.PerformanceLevel {
	level := schema.PerformanceLevel{
		DeployFrequency: classifyDeployFrequency(summary.DeploymentsPerDay),
		LeadTime:        classifyDurationMinutes(summary.AvgLeadTimeMinutes),
		ChangeFailure:   classifyFailureRate(summary.ChangeFailureRate),
		Recovery:        classifyDurationMinutes(summary.MTTRMinutes),
	}
	level.Overall = schema.WorstTier(level.DeployFrequency, level.LeadTime, level.ChangeFailure, level.Recovery)
	return level
}

func classifyDeployFrequency(perDay float64) schema.Tier {
	switch {
	case perDay >= schema.DeploysPerDayElite:
		return schema.EliteTier
	case perDay >= schema.DeploysPerDayHigh:
		return schema.HighTier
	case perDay >= schema.DeploysPerDayMedium:
		return schema.MediumTier
	default:
		return schema.LowTier
	}
}

// classifyDurationMinutes grades lead time and recovery time, which share
// the same benchmark boundaries.
func classifyDurationMinutes(minutes float64) schema.Tier {
	switch {
	case minutes < schema.LeadMinutesElite:
		return schema.EliteTier
	case minutes < schema.LeadMinutesHigh:
		return schema.HighTier
	case minutes < schema.LeadMinutesMedium:
		return schema.MediumTier
	default:
		return schema.LowTier
	}
}

func classifyFailureRate(rate float64) schema.Tier {
	switch {
	case rate <= schema.FailureRateElite:
		return schema.EliteTier
	case rate <= schema.FailureRateHigh:
		return schema.HighTier
	case rate <= schema.FailureRateMedium:
		return schema.MediumTier
	default:
		return schema.LowTier
	}
}

// Recommendations returns improvement guidance for every axis graded below
// Elite, in a fixed axis order.
func Recommendations(level schema.PerformanceLevel) []string {
	var recs []string
	if level.DeployFrequency != schema.EliteTier {
		recs = append(recs, "Increase deployment frequency with smaller batches and automated release pipelines")
	}
	if level.LeadTime != schema.EliteTier {
		recs = append(recs, "Reduce lead time by trimming review queues and automating the path from commit to deploy")
	}
	if level.ChangeFailure != schema.EliteTier {
		recs = append(recs, "Lower change failure rate with stronger pre-merge testing and progressive rollouts")
	}
	if level.Recovery != schema.EliteTier {
		recs = append(recs, "Shorten recovery time with better alerting, runbooks and one-step rollback tooling")
	}
	return recs
}
