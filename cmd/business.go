package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/devpulse/devpulse/core"
	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
	"github.com/spf13/cobra"
)

// businessCmd groups business-metric operations.
var businessCmd = &cobra.Command{
	Use:   "business",
	Short: "Record business metrics and estimate delivery impact",
	Long: `Record daily business outcomes (revenue, churn, satisfaction, incidents)
and connect them to delivery performance.

Subcommands:
  record - store one day of business figures for the organization
  impact - estimate the annual dollar value of a metrics improvement

Examples:
  # Record today's figures
  devpulse business record --org acme --revenue 41250 --new-customers 12

  # What did the Q1 improvement buy us?
  devpulse business impact --org acme \
    --before-start 2024-01-01 --before-end 2024-01-31 \
    --after-start 2024-03-01 --after-end 2024-03-31`,
}

// businessRecordCmd stores one day of business figures.
var businessRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Store one day of business figures for the organization",
	Long: `Store business figures for one organization and day.

Only the flags you pass are written; figures already stored for that day keep
their values, so different systems can report their slice of the picture
independently.

Examples:
  # Finance reports revenue
  devpulse business record --org acme --date 2024-03-05 --revenue 41250

  # Support reports tickets later the same day
  devpulse business record --org acme --date 2024-03-05 --support-tickets 18

  # Anything else goes into custom metrics
  devpulse business record --org acme --custom trial_signups=87`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		if cfg.OrgID == "" {
			contract.LogFatal("Cannot record business metrics", fmt.Errorf("--org is required"))
		}

		metric, err := businessMetricFromFlags(cmd)
		if err != nil {
			contract.LogFatal("Cannot parse business metrics", err)
		}

		if err := metricStore.UpsertBusinessMetric(metric); err != nil {
			contract.LogFatal("Cannot store business metrics", err)
		}
		fmt.Printf("Recorded business metrics for %s on %s\n",
			metric.OrgID, metric.Date.Format(contract.DateFormat))
	},
}

// businessImpactCmd estimates the dollar value of a metrics improvement.
var businessImpactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Estimate the annual dollar value of a metrics improvement",
	Long: `Compare the organization rollup of two windows and project the annual
dollar value of the improvement.

Each DORA axis that improved contributes an estimate: extra deployments are
credited against revenue, shorter lead times against engineering hours, fewer
failures against incident cost, and faster recovery against downtime revenue.
The math is deliberately coarse; use it for prioritization, not accounting.

Examples:
  devpulse business impact \
    --before-start 2024-01-01 --before-end 2024-01-31 \
    --after-start 2024-03-01 --after-end 2024-03-31 \
    --annual-revenue 12000000 --hourly-rate 120 --incident-cost 30000`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		before, err := windowSummary(cmd, "before-start", "before-end")
		if err != nil {
			contract.LogFatal("Cannot load baseline window", err)
		}
		after, err := windowSummary(cmd, "after-start", "after-end")
		if err != nil {
			contract.LogFatal("Cannot load comparison window", err)
		}

		bctx := schema.BusinessContext{
			AnnualRevenue:         mustFloat(cmd, "annual-revenue"),
			EngineeringHourlyRate: mustFloat(cmd, "hourly-rate"),
			AvgIncidentCost:       mustFloat(cmd, "incident-cost"),
		}

		report := core.EstimateImpact(before, after, bctx)
		if err := outWriter.WriteImpact(report, cfg); err != nil {
			contract.LogFatal("Cannot write impact", err)
		}
	},
}

// businessMetricFromFlags builds a partial BusinessMetric from the flags the
// user actually set.
func businessMetricFromFlags(cmd *cobra.Command) (schema.BusinessMetric, error) {
	metric := schema.BusinessMetric{OrgID: cfg.OrgID, Date: schema.DayUTC(time.Now())}

	if dateStr, _ := cmd.Flags().GetString("date"); dateStr != "" {
		day, err := time.Parse(contract.DateFormat, dateStr)
		if err != nil {
			return metric, fmt.Errorf("invalid --date: %w", err)
		}
		metric.Date = schema.DayUTC(day)
	}

	setFloat := func(name string, dst **float64) {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetFloat64(name)
			*dst = &v
		}
	}
	setInt := func(name string, dst **int) {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetInt(name)
			*dst = &v
		}
	}

	setFloat("revenue", &metric.Revenue)
	setInt("new-customers", &metric.NewCustomers)
	setFloat("churn-rate", &metric.CustomerChurnRate)
	setFloat("satisfaction", &metric.CustomerSatisfactionScore)
	setInt("support-tickets", &metric.SupportTickets)
	setFloat("resolution-hours", &metric.AvgResolutionTimeHours)
	setInt("incidents", &metric.Incidents)
	setFloat("severity-avg", &metric.IncidentSeverityAvg)
	setFloat("uptime", &metric.UptimePercentage)
	setInt("features-shipped", &metric.FeaturesShipped)
	setInt("bug-reports", &metric.BugReports)

	if custom, _ := cmd.Flags().GetStringToString("custom"); len(custom) > 0 {
		metric.CustomMetrics = make(map[string]float64, len(custom))
		for name, raw := range custom {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return metric, fmt.Errorf("invalid --custom value %s=%s: %w", name, raw, err)
			}
			metric.CustomMetrics[name] = v
		}
	}

	return metric, nil
}

// windowSummary loads the organization rollup summary for one flag-defined window.
func windowSummary(cmd *cobra.Command, startFlag, endFlag string) (schema.MetricSummary, error) {
	startStr, _ := cmd.Flags().GetString(startFlag)
	endStr, _ := cmd.Flags().GetString(endFlag)
	if startStr == "" || endStr == "" {
		return schema.MetricSummary{}, fmt.Errorf("--%s and --%s are required", startFlag, endFlag)
	}

	now := time.Now().UTC()
	start, err := contract.ParseTimeInput(startStr, now)
	if err != nil {
		return schema.MetricSummary{}, fmt.Errorf("invalid --%s: %w", startFlag, err)
	}
	end, err := contract.ParseTimeInput(endStr, now)
	if err != nil {
		return schema.MetricSummary{}, fmt.Errorf("invalid --%s: %w", endFlag, err)
	}

	window := schema.Window{Start: schema.DayUTC(start), End: schema.DayUTC(end)}
	perRepo, err := metricStore.GetAllDailyMetrics(window)
	if err != nil {
		return schema.MetricSummary{}, err
	}
	return core.SummarizeOrg(core.Rollup(perRepo), window), nil
}

func mustFloat(cmd *cobra.Command, name string) float64 {
	v, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		contract.LogFatal("Cannot read flag "+name, err)
	}
	return v
}
