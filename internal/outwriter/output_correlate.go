package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteCorrelation prints the DORA/business correlation report using the
// configured output format.
func (ow *OutWriter) WriteCorrelation(report schema.CorrelationReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON correlation report")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVCorrelation(w, report)
		}, "Wrote CSV correlation report")
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCorrelationTable(w, report, cfg)
		}, "Wrote correlation report")
	}
}

// sortedPairs returns the pair keys in a stable order.
func sortedPairs(pairs map[schema.CorrelationPair]schema.PairResult) []schema.CorrelationPair {
	keys := make([]schema.CorrelationPair, 0, len(pairs))
	for pair := range pairs {
		keys = append(keys, pair)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// writeCSVCorrelation writes one row per metric pairing.
func writeCSVCorrelation(w io.Writer, report schema.CorrelationReport) error {
	header := []string{"pair", "coefficient", "sample_size"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, pair := range sortedPairs(report.Pairs) {
			result := report.Pairs[pair]
			coeff := ""
			if result.Coefficient != nil {
				coeff = fmt.Sprintf("%.4f", *result.Coefficient)
			}
			record := []string{string(pair), coeff, strconv.Itoa(result.SampleSize)}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeCorrelationTable prints the pair table and the generated insights.
func writeCorrelationTable(w io.Writer, report schema.CorrelationReport, cfg *contract.Config) error {
	fmt.Fprintln(w, sectionTitle("🔗", fmt.Sprintf("DORA/business correlations for %s (%s to %s)",
		report.OrgID, report.PeriodStart.Format(contract.DateFormat), report.PeriodEnd.Format(contract.DateFormat)), cfg))

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Pair", "Coefficient", "Samples"})

	var data [][]string
	for _, pair := range sortedPairs(report.Pairs) {
		result := report.Pairs[pair]
		coeff := "insufficient data"
		if result.Coefficient != nil {
			coeff = fmt.Sprintf("%.2f", *result.Coefficient)
		}
		data = append(data, []string{string(pair), coeff, strconv.Itoa(result.SampleSize)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(report.Insights) == 0 {
		fmt.Fprintln(w, "No strong correlations found.")
		return nil
	}
	fmt.Fprintln(w, sectionTitle("💡", "Insights:", cfg))
	for _, insight := range report.Insights {
		fmt.Fprintf(w, "  [%s] %s\n", insight.Type, insight.Finding)
		if insight.Recommendation != "" {
			fmt.Fprintf(w, "      %s\n", insight.Recommendation)
		}
	}
	return nil
}
