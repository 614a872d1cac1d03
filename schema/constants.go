package schema

// Custom string types for type safety.
type (
	// EventKind classifies a normalized activity event.
	EventKind string

	// Tier is a DORA benchmark performance tier.
	Tier string

	// RiskFlag marks a detected delivery risk in a daily insight.
	RiskFlag string

	// InsightType classifies a correlation insight.
	InsightType string

	// CorrelationPair names one of the fixed DORA/business metric pairings.
	CorrelationPair string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for metric storage.
	DatabaseBackend string
)

// All event kinds produced by the normalizer.
const (
	CommitEvent     EventKind = "commit"
	ChangeEvent     EventKind = "change"     // merged pull request, CFR denominator
	DeploymentEvent EventKind = "deployment" // merged pull request, DF numerator
	IncidentEvent   EventKind = "incident"   // incident-labeled issue
)

// DORA benchmark tiers, best to worst.
const (
	EliteTier  Tier = "elite"
	HighTier   Tier = "high"
	MediumTier Tier = "medium"
	LowTier    Tier = "low"
)

// Risk flags attached to daily insights.
const (
	RiskLowActivity RiskFlag = "low-activity"    // zero deployments across the window
	RiskBusFactor   RiskFlag = "bus-factor-risk" // one author dominates commits
)

// Correlation insight types.
const (
	PositiveInsight InsightType = "positive"
	WarningInsight  InsightType = "warning"
	NeutralInsight  InsightType = "neutral"
)

// The eight fixed correlation pairings.
const (
	PairDeployRevenue      CorrelationPair = "deployment_frequency_vs_revenue"
	PairDeploySatisfaction CorrelationPair = "deployment_frequency_vs_satisfaction"
	PairLeadRevenue        CorrelationPair = "lead_time_vs_revenue"
	PairLeadSatisfaction   CorrelationPair = "lead_time_vs_satisfaction"
	PairCFRIncidents       CorrelationPair = "change_failure_rate_vs_incidents"
	PairCFRChurn           CorrelationPair = "change_failure_rate_vs_churn"
	PairMTTRSatisfaction   CorrelationPair = "mttr_vs_satisfaction"
	PairMTTRUptime         CorrelationPair = "mttr_vs_uptime"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
)

// Benchmark thresholds per axis. Deployment frequency is a per-day mean;
// lead time and recovery share minute boundaries; change failure rate is a
// ratio. Sources: DORA State of DevOps benchmark bands.
const (
	DeploysPerDayElite  = 1.0
	DeploysPerDayHigh   = 1.0 / 7.0
	DeploysPerDayMedium = 1.0 / 30.0

	LeadMinutesElite  = 60.0    // under an hour
	LeadMinutesHigh   = 1440.0  // under a day
	LeadMinutesMedium = 10080.0 // under a week

	FailureRateElite  = 0.15
	FailureRateHigh   = 0.30
	FailureRateMedium = 0.45
)

// AllTiers lists the tiers from best to worst.
var AllTiers = []Tier{EliteTier, HighTier, MediumTier, LowTier}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidStoreBackends lists all valid storage backends.
var ValidStoreBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
}

// tierRank orders tiers for worst-of comparisons. Higher is worse.
var tierRank = map[Tier]int{
	EliteTier:  0,
	HighTier:   1,
	MediumTier: 2,
	LowTier:    3,
}

// WorstTier returns the worst tier among the given tiers. An empty input
// yields LowTier.
func WorstTier(tiers ...Tier) Tier {
	worst := EliteTier
	if len(tiers) == 0 {
		return LowTier
	}
	for _, t := range tiers {
		if tierRank[t] > tierRank[worst] {
			worst = t
		}
	}
	return worst
}

// DefaultFailureLabels mark a merged pull request as a failed change.
var DefaultFailureLabels = []string{"bug", "incident", "revert", "rollback", "hotfix"}

// DefaultIncidentLabels mark an issue as a production incident.
var DefaultIncidentLabels = []string{"incident", "outage", "production-bug", "p0", "sev1"}
