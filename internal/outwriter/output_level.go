package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteLevel prints the DORA benchmark classification using the configured
// output format.
func (ow *OutWriter) WriteLevel(report schema.LevelReport, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON performance level")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVLevel(w, report, fmtFloat)
		}, "Wrote CSV performance level")
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLevelTable(w, report, cfg, fmtFloat)
		}, "Wrote performance level")
	}
}

// WriteImpact prints the business impact estimate using the configured
// output format.
func (ow *OutWriter) WriteImpact(report schema.ImpactReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON impact estimate")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVImpact(w, report)
		}, "Wrote CSV impact estimate")
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeImpactText(w, report, cfg)
		}, "Wrote impact estimate")
	}
}

// writeCSVLevel writes one row per DORA axis.
func writeCSVLevel(w io.Writer, report schema.LevelReport, fmtFloat func(float64) string) error {
	header := []string{"axis", "value", "tier"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		records := [][]string{
			{"deployment_frequency", fmtFloat(report.Summary.DeploymentsPerDay), string(report.Level.DeployFrequency)},
			{"lead_time_minutes", fmtFloat(report.Summary.AvgLeadTimeMinutes), string(report.Level.LeadTime)},
			{"change_failure_rate", fmtFloat(report.Summary.ChangeFailureRate), string(report.Level.ChangeFailure)},
			{"mttr_minutes", fmtFloat(report.Summary.MTTRMinutes), string(report.Level.Recovery)},
			{"overall", "", string(report.Level.Overall)},
		}
		for _, record := range records {
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeLevelTable prints the per-axis tiers and the recommendations list.
func writeLevelTable(w io.Writer, report schema.LevelReport, cfg *contract.Config, fmtFloat func(float64) string) error {
	fmt.Fprintln(w, sectionTitle("🎯", "DORA performance level", cfg))

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Axis", "Value", "Tier"})

	data := [][]string{
		{"Deployment frequency", fmtFloat(report.Summary.DeploymentsPerDay) + "/day", tierLabel(report.Level.DeployFrequency, cfg)},
		{"Lead time", fmtFloat(report.Summary.AvgLeadTimeMinutes) + " min", tierLabel(report.Level.LeadTime, cfg)},
		{"Change failure rate", fmtFloat(report.Summary.ChangeFailureRate), tierLabel(report.Level.ChangeFailure, cfg)},
		{"Recovery time", fmtFloat(report.Summary.MTTRMinutes) + " min", tierLabel(report.Level.Recovery, cfg)},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "Overall: %s\n", tierLabel(report.Level.Overall, cfg))
	if len(report.Recommendations) > 0 {
		fmt.Fprintln(w, sectionTitle("💡", "Recommendations:", cfg))
		for _, rec := range report.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}
	return nil
}

// writeCSVImpact writes one row per improved axis.
func writeCSVImpact(w io.Writer, report schema.ImpactReport) error {
	header := []string{"axis", "before", "after", "annual_value_usd"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, e := range report.Estimates {
			record := []string{
				e.Axis,
				fmt.Sprintf("%.2f", e.Before),
				fmt.Sprintf("%.2f", e.After),
				fmt.Sprintf("%.2f", e.AnnualValueUSD),
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeImpactText prints the improvement estimates with explanations.
func writeImpactText(w io.Writer, report schema.ImpactReport, cfg *contract.Config) error {
	fmt.Fprintln(w, sectionTitle("💰", "Estimated business impact", cfg))
	if len(report.Estimates) == 0 {
		fmt.Fprintln(w, "No axis improved between the two periods.")
		return nil
	}
	for _, e := range report.Estimates {
		fmt.Fprintf(w, "  %s: $%.0f/year (%s)\n", e.Axis, e.AnnualValueUSD, e.Explanation)
	}
	fmt.Fprintf(w, "Total estimated annual value: $%.0f\n", report.TotalAnnualUSD)
	return nil
}
