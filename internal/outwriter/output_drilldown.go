package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteDeployments prints the merged pull requests behind one day's
// deployment count.
func (ow *OutWriter) WriteDeployments(details []schema.DeploymentDetail, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, details)
		}, "Wrote JSON deployments")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVDeployments(w, details, createFormatter(cfg.Precision))
		}, "Wrote CSV deployments")
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDeploymentsTable(w, details, cfg, createFormatter(cfg.Precision))
		}, "Wrote deployments")
	}
}

// writeCSVDeployments writes one row per merged pull request.
func writeCSVDeployments(w io.Writer, details []schema.DeploymentDetail, fmtFloat func(float64) string) error {
	header := []string{"repo_id", "number", "title", "author", "merged_at", "lead_time_minutes", "failed"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, d := range details {
			record := []string{
				d.RepoID,
				strconv.Itoa(d.Number),
				d.Title,
				d.Author,
				d.MergedAt.Format(contract.DateTimeFormat),
				fmtFloat(d.LeadTimeMinutes),
				strconv.FormatBool(d.Failed),
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeDeploymentsTable prints the drilldown rows with truncated titles.
func writeDeploymentsTable(w io.Writer, details []schema.DeploymentDetail, cfg *contract.Config, fmtFloat func(float64) string) error {
	fmt.Fprintln(w, sectionTitle("🚀", "Deployments", cfg))

	if len(details) == 0 {
		fmt.Fprintln(w, "No merged pull requests on that day.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"PR", "Title", "Author", "Merged", "Lead min", "Failed"})

	maxWidth := getMaxSummaryWidth(cfg)
	var data [][]string
	for _, d := range details {
		failed := ""
		if d.Failed {
			failed = "yes"
		}
		data = append(data, []string{
			"#" + strconv.Itoa(d.Number),
			truncateText(d.Title, maxWidth),
			d.Author,
			d.MergedAt.Format(contract.DateTimeFormat),
			fmtFloat(d.LeadTimeMinutes),
			failed,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
