// Package outwriter has output and writer logic for every report the CLI
// produces: text tables, CSV, JSON and parquet export.
package outwriter

import (
	"errors"
	"os"

	"github.com/devpulse/devpulse/internal/contract"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// errParquetUnsupported signals that a report printer cannot stream parquet.
var errParquetUnsupported = errors.New("parquet output is only supported by the export command")

// getMaxSummaryWidth calculates the width available for free-text columns
// based on terminal width, leaving room for the fixed columns.
func getMaxSummaryWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Conservative default for narrow terminals and CI
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the date and flag columns with borders/padding
	available := termWidth - 40
	if available < 20 {
		return 20
	}
	if available > 100 {
		return 100
	}
	return available
}

// truncateText shortens free text to the given width.
func truncateText(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
