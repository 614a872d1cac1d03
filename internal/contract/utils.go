package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devpulse/devpulse/schema"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	naturaldate "github.com/tj/go-naturaldate"
)

// Color variables for console output.
var (
	EliteColor  = color.New(color.FgGreen, color.Bold) // eliteColor marks top-tier performance.
	HighColor   = color.New(color.FgCyan)              // highColor marks healthy performance.
	MediumColor = color.New(color.FgYellow)            // mediumColor marks standard caution, not bold.
	LowColor    = color.New(color.FgRed, color.Bold)   // lowColor marks performance needing attention.
)

// GetPlainTierLabel returns the display text for a benchmark tier. This is
// the core logic used for CSV, JSON, and table printing.
func GetPlainTierLabel(t schema.Tier) string {
	switch t {
	case schema.EliteTier:
		return "Elite"
	case schema.HighTier:
		return "High"
	case schema.MediumTier:
		return "Medium"
	default:
		return "Low"
	}
}

// GetColorTierLabel returns a colored tier label for console output (table).
// It uses GetPlainTierLabel to determine the string, and then applies the
// appropriate color.
func GetColorTierLabel(t schema.Tier) string {
	text := GetPlainTierLabel(t)

	switch t {
	case schema.EliteTier:
		return EliteColor.Sprint(text)
	case schema.HighTier:
		return HighColor.Sprint(text)
	case schema.MediumTier:
		return MediumColor.Sprint(text)
	default: // "Low"
		return LowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetDBFilePath returns the path to the SQLite DB file for metric storage.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".devpulse_metrics.db"
	}
	return filepath.Join(homeDir, ".devpulse_metrics.db")
}

// LoadDotEnv loads a .env file from the working directory when present.
// Missing files are not an error; a malformed file is.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}

// ParseTimeInput parses a user-supplied time value. It accepts a calendar
// day ("2024-03-01"), an RFC3339 timestamp, or a natural phrase relative to
// now ("2 weeks ago", "last month").
func ParseTimeInput(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateFormat, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t, nil
	}
	t, err := naturaldate.Parse(s, now, naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		return time.Time{}, fmt.Errorf("expected %s, RFC3339 or a phrase like '2 weeks ago'", DateFormat)
	}
	return t, nil
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
