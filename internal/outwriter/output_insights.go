package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteInsights prints daily insight rows using the configured output format.
func (ow *OutWriter) WriteInsights(insights []schema.DailyInsight, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, insights)
		}, "Wrote JSON insights")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVInsights(w, insights)
		}, "Wrote CSV insights")
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeInsightsTable(w, insights, cfg)
		}, "Wrote insights")
	}
}

// WriteContributors prints contributor statistics using the configured
// output format.
func (ow *OutWriter) WriteContributors(stats []schema.ContributorStat, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, stats)
		}, "Wrote JSON contributors")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVContributors(w, stats)
		}, "Wrote CSV contributors")
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeContributorsTable(w, stats, cfg)
		}, "Wrote contributors")
	}
}

func riskFlagsCell(flags []schema.RiskFlag) string {
	if len(flags) == 0 {
		return "none"
	}
	parts := make([]string, len(flags))
	for i, flag := range flags {
		parts[i] = string(flag)
	}
	return strings.Join(parts, "|")
}

// writeCSVInsights writes one row per repo-day insight.
func writeCSVInsights(w io.Writer, insights []schema.DailyInsight) error {
	header := []string{"repo_id", "date", "summary", "risk_flags"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, insight := range insights {
			record := []string{
				insight.RepoID,
				insight.Date.Format(contract.DateFormat),
				insight.Summary,
				riskFlagsCell(insight.RiskFlags),
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeInsightsTable prints insights with summaries truncated to the
// terminal width.
func writeInsightsTable(w io.Writer, insights []schema.DailyInsight, cfg *contract.Config) error {
	fmt.Fprintln(w, sectionTitle("📝", "Daily insights", cfg))

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "Summary", "Risks"})

	maxWidth := getMaxSummaryWidth(cfg)
	var data [][]string
	for _, insight := range insights {
		data = append(data, []string{
			insight.Date.Format(contract.DateFormat),
			truncateText(insight.Summary, maxWidth),
			riskFlagsCell(insight.RiskFlags),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeCSVContributors writes one row per author.
func writeCSVContributors(w io.Writer, stats []schema.ContributorStat) error {
	header := []string{"author", "commits", "first_commit_at"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, s := range stats {
			record := []string{s.Author, strconv.Itoa(s.Commits), s.FirstCommitAt.Format(contract.DateTimeFormat)}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeContributorsTable prints authors ranked by commits.
func writeContributorsTable(w io.Writer, stats []schema.ContributorStat, cfg *contract.Config) error {
	fmt.Fprintln(w, sectionTitle("👥", "Top contributors", cfg))

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Author", "Commits"})

	var data [][]string
	for i, s := range stats {
		data = append(data, []string{strconv.Itoa(i + 1), s.Author, strconv.Itoa(s.Commits)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
