// Package parquet provides data structures and functions for exporting
// derived delivery metrics to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"

	"github.com/devpulse/devpulse/schema"
	"github.com/parquet-go/parquet-go"
)

// DailyMetricRecord maps one row of the dora_daily_metrics table.
type DailyMetricRecord struct {
	// RepoID is the "owner/name" repository identifier
	RepoID string `parquet:"repo_id,snappy"`

	// Date is the UTC calendar day as ISO text
	Date string `parquet:"date,snappy"`

	// DeploymentFrequency is the count of merged pull requests that day
	DeploymentFrequency int32 `parquet:"deployment_frequency,snappy"`

	// AvgLeadTimeMinutes is the mean first-commit-to-merge time
	AvgLeadTimeMinutes float64 `parquet:"avg_lead_time_minutes,snappy"`

	// ChangeFailureRate is the failed share of that day's changes
	ChangeFailureRate float64 `parquet:"change_failure_rate,snappy"`

	// MTTRMinutes is the mean open-to-close time of incidents resolved that day
	MTTRMinutes float64 `parquet:"mttr_minutes,snappy"`
}

// DailyInsightRecord maps one row of the daily_insights table.
type DailyInsightRecord struct {
	// RepoID is the "owner/name" repository identifier
	RepoID string `parquet:"repo_id,snappy"`

	// Date is the UTC calendar day as ISO text
	Date string `parquet:"date,snappy"`

	// Summary is the generated plain-text digest
	Summary string `parquet:"summary,snappy"`

	// RiskFlags is the pipe-joined list of detected risks
	RiskFlags string `parquet:"risk_flags,snappy"`
}

// ConvertDailyMetricRecords converts store rows into parquet records.
func ConvertDailyMetricRecords(rows []schema.DailyMetric) []DailyMetricRecord {
	out := make([]DailyMetricRecord, len(rows))
	for i, row := range rows {
		out[i] = DailyMetricRecord{
			RepoID:              row.RepoID,
			Date:                row.Date.Format("2006-01-02"),
			DeploymentFrequency: int32(row.DeploymentFrequency),
			AvgLeadTimeMinutes:  row.AvgLeadTimeMinutes,
			ChangeFailureRate:   row.ChangeFailureRate,
			MTTRMinutes:         row.MTTRMinutes,
		}
	}
	return out
}

// ConvertDailyInsightRecords converts store rows into parquet records.
func ConvertDailyInsightRecords(insights []schema.DailyInsight) []DailyInsightRecord {
	out := make([]DailyInsightRecord, len(insights))
	for i, insight := range insights {
		flags := ""
		for j, flag := range insight.RiskFlags {
			if j > 0 {
				flags += "|"
			}
			flags += string(flag)
		}
		out[i] = DailyInsightRecord{
			RepoID:    insight.RepoID,
			Date:      insight.Date.Format("2006-01-02"),
			Summary:   insight.Summary,
			RiskFlags: flags,
		}
	}
	return out
}

// WriteDailyMetricsParquet writes metric records to a Parquet file.
func WriteDailyMetricsParquet(data []DailyMetricRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteDailyInsightsParquet writes insight records to a Parquet file.
func WriteDailyInsightsParquet(data []DailyInsightRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes records with a schema inferred from struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}
