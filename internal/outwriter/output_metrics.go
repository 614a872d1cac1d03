package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteDailyMetrics prints one repository's daily rows and window summary
// using the configured output format.
func (ow *OutWriter) WriteDailyMetrics(report schema.MetricsReport, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON daily metrics")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVDailyMetrics(w, report.Rows, fmtFloat)
		}, "Wrote CSV daily metrics")
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDailyMetricsTable(w, report, cfg, fmtFloat)
		}, "Wrote daily metrics")
	}
}

// WriteOrgMetrics prints the organization rollup using the configured
// output format.
func (ow *OutWriter) WriteOrgMetrics(report schema.OrgReport, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON org metrics")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVOrgMetrics(w, report.Rows, fmtFloat)
		}, "Wrote CSV org metrics")
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeOrgMetricsTable(w, report, cfg, fmtFloat)
		}, "Wrote org metrics")
	}
}

// writeCSVDailyMetrics writes daily rows in CSV format.
func writeCSVDailyMetrics(w io.Writer, rows []schema.DailyMetric, fmtFloat func(float64) string) error {
	header := []string{"repo_id", "date", "deployment_frequency", "avg_lead_time_minutes", "change_failure_rate", "mttr_minutes"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, row := range rows {
			record := []string{
				row.RepoID,
				row.Date.Format(contract.DateFormat),
				strconv.Itoa(row.DeploymentFrequency),
				fmtFloat(row.AvgLeadTimeMinutes),
				fmtFloat(row.ChangeFailureRate),
				fmtFloat(row.MTTRMinutes),
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeCSVOrgMetrics writes org rollup rows in CSV format.
func writeCSVOrgMetrics(w io.Writer, rows []schema.OrgDailyMetric, fmtFloat func(float64) string) error {
	header := []string{"date", "repo_count", "deployment_frequency", "avg_lead_time_minutes", "change_failure_rate", "mttr_minutes"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, row := range rows {
			record := []string{
				row.Date.Format(contract.DateFormat),
				strconv.Itoa(row.RepoCount),
				strconv.Itoa(row.DeploymentFrequency),
				fmtFloat(row.AvgLeadTimeMinutes),
				fmtFloat(row.ChangeFailureRate),
				fmtFloat(row.MTTRMinutes),
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeDailyMetricsTable prints daily rows in a five-column table followed
// by the window summary.
func writeDailyMetricsTable(w io.Writer, report schema.MetricsReport, cfg *contract.Config, fmtFloat func(float64) string) error {
	fmt.Fprintln(w, sectionTitle("📊", fmt.Sprintf("Daily DORA metrics for %s", report.RepoID), cfg))

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "Deploys", "Lead (min)", "CFR", "MTTR (min)"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, row := range report.Rows {
		data = append(data, []string{
			row.Date.Format(contract.DateFormat),
			strconv.Itoa(row.DeploymentFrequency),
			fmtFloat(row.AvgLeadTimeMinutes),
			fmtFloat(row.ChangeFailureRate),
			fmtFloat(row.MTTRMinutes),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	writeSummaryLine(w, report.Summary, fmtFloat)
	return nil
}

// writeOrgMetricsTable prints the rollup in a six-column table followed by
// the window summary.
func writeOrgMetricsTable(w io.Writer, report schema.OrgReport, cfg *contract.Config, fmtFloat func(float64) string) error {
	fmt.Fprintln(w, sectionTitle("🏢", fmt.Sprintf("Organization rollup for %s", report.OrgID), cfg))

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "Repos", "Deploys", "Lead (min)", "CFR", "MTTR (min)"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, row := range report.Rows {
		data = append(data, []string{
			row.Date.Format(contract.DateFormat),
			strconv.Itoa(row.RepoCount),
			strconv.Itoa(row.DeploymentFrequency),
			fmtFloat(row.AvgLeadTimeMinutes),
			fmtFloat(row.ChangeFailureRate),
			fmtFloat(row.MTTRMinutes),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	writeSummaryLine(w, report.Summary, fmtFloat)
	return nil
}

// writeSummaryLine prints the window means under a table.
func writeSummaryLine(w io.Writer, summary schema.MetricSummary, fmtFloat func(float64) string) {
	fmt.Fprintf(w, "Window: %d days, %d deployments. Means: %s deploys/day, %s min lead, %s CFR, %s min MTTR.\n",
		summary.WindowDays, summary.TotalDeployments,
		fmtFloat(summary.DeploymentsPerDay), fmtFloat(summary.AvgLeadTimeMinutes),
		fmtFloat(summary.ChangeFailureRate), fmtFloat(summary.MTTRMinutes))
}
