package contract

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/devpulse/devpulse/schema"
)

// Default values for configuration.
const (
	DefaultLookbackDays        = 30
	DefaultResultLimit         = 25
	MaxResultLimit             = 1000
	DefaultPrecision           = 1
	DefaultIncidentLinkWindow  = 48 * time.Hour
	DefaultBusFactorShare      = 0.60
	DefaultBusFactorMinCommits = 5
	DefaultCorrelationMinPts   = 7
	DefaultCorrelationStrongR  = 0.5
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateFormat is the calendar-day representation used on flags and storage.
const DateFormat = "2006-01-02"

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for metric derivation.
// This struct remains the "final, validated" config.
type Config struct {
	OrgID        string
	Repositories []string // "owner/name" entries
	StartTime    time.Time
	EndTime      time.Time

	IncidentLinkWindow  time.Duration
	FailureLabels       []string
	IncidentLabels      []string
	BusFactorShare      float64
	BusFactorMinCommits int

	CorrelationMinPoints int
	CorrelationStrongR   float64

	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	GitHubToken   string
	GitHubBaseURL string // Override for GitHub Enterprise hosts

	OpenAIKey   string
	OpenAIModel string
	OpenAIURL   string

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Org            string `mapstructure:"org"`
	Repos          string `mapstructure:"repos"`
	Start          string `mapstructure:"start"`
	End            string `mapstructure:"end"`
	Lookback       string `mapstructure:"lookback"`
	Limit          int    `mapstructure:"limit"`
	Workers        int    `mapstructure:"workers"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	Emoji          string `mapstructure:"emoji"`
	Color          string `mapstructure:"color"`

	// --- Derivation tuning, usually from the config file ---
	IncidentLinkWindow  string  `mapstructure:"incident-link-window"`
	FailureLabels       string  `mapstructure:"failure-labels"`
	IncidentLabels      string  `mapstructure:"incident-labels"`
	BusFactorShare      float64 `mapstructure:"bus-factor-share"`
	BusFactorMinCommits int     `mapstructure:"bus-factor-min-commits"`
	CorrelationMinPts   int     `mapstructure:"correlation-min-points"`
	CorrelationStrongR  float64 `mapstructure:"correlation-strong-r"`

	// --- Credentials, env only ---
	GitHubToken   string `mapstructure:"github-token"`
	GitHubBaseURL string `mapstructure:"github-base-url"`
	OpenAIKey     string `mapstructure:"openai-api-key"`
	OpenAIModel   string `mapstructure:"openai-model"`
	OpenAIURL     string `mapstructure:"openai-base-url"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Repositories != nil {
		clone.Repositories = make([]string, len(c.Repositories))
		copy(clone.Repositories, c.Repositories)
	}
	if c.FailureLabels != nil {
		clone.FailureLabels = make([]string, len(c.FailureLabels))
		copy(clone.FailureLabels, c.FailureLabels)
	}
	if c.IncidentLabels != nil {
		clone.IncidentLabels = make([]string, len(c.IncidentLabels))
		copy(clone.IncidentLabels, c.IncidentLabels)
	}
	return &clone
}

// Window returns the configured time range as a midnight-normalized window.
func (c *Config) Window() schema.Window {
	return schema.Window{Start: schema.DayUTC(c.StartTime), End: schema.DayUTC(c.EndTime)}
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input); err != nil {
		return err
	}
	if err := processDerivationKnobs(cfg, input); err != nil {
		return err
	}
	processCredentials(cfg, input)
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-time related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OrgID = strings.TrimSpace(input.Org)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	cfg.Repositories = splitCSV(input.Repos)
	for _, r := range cfg.Repositories {
		if strings.Count(r, "/") != 1 {
			return fmt.Errorf("invalid repository %q, expected owner/name", r)
		}
	}

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}

	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidStoreBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	return nil
}

// processTimeRange handles date parsing and time range validation. Flags
// accept calendar days ("2024-03-01"), RFC3339 timestamps, or natural
// phrases ("2 weeks ago"). --lookback overrides --start when given.
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	now := time.Now().UTC()
	cfg.EndTime = now
	cfg.StartTime = now.AddDate(0, 0, -DefaultLookbackDays+1)

	if input.Start != "" {
		t, err := ParseTimeInput(input.Start, now)
		if err != nil {
			return fmt.Errorf("invalid start date '%s': %w", input.Start, err)
		}
		cfg.StartTime = t
	}

	if input.End != "" {
		t, err := ParseTimeInput(input.End, now)
		if err != nil {
			return fmt.Errorf("invalid end date '%s': %w", input.End, err)
		}
		cfg.EndTime = t
	}

	if input.Lookback != "" {
		t, err := ParseTimeInput(input.Lookback, cfg.EndTime)
		if err != nil {
			return fmt.Errorf("invalid lookback '%s': %w", input.Lookback, err)
		}
		cfg.StartTime = t
	}

	if cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)",
			cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}

	return nil
}

// processDerivationKnobs fills the tunable heuristics with defaults when the
// raw inputs leave them unset.
func processDerivationKnobs(cfg *Config, input *ConfigRawInput) error {
	cfg.IncidentLinkWindow = DefaultIncidentLinkWindow
	if input.IncidentLinkWindow != "" {
		d, err := time.ParseDuration(input.IncidentLinkWindow)
		if err != nil {
			return fmt.Errorf("invalid incident-link-window: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("incident-link-window cannot be negative (received %s)", d)
		}
		cfg.IncidentLinkWindow = d
	}

	cfg.FailureLabels = append([]string(nil), schema.DefaultFailureLabels...)
	if labels := splitCSV(input.FailureLabels); len(labels) > 0 {
		cfg.FailureLabels = labels
	}
	cfg.IncidentLabels = append([]string(nil), schema.DefaultIncidentLabels...)
	if labels := splitCSV(input.IncidentLabels); len(labels) > 0 {
		cfg.IncidentLabels = labels
	}

	cfg.BusFactorShare = DefaultBusFactorShare
	if input.BusFactorShare != 0 {
		if input.BusFactorShare <= 0 || input.BusFactorShare >= 1 {
			return fmt.Errorf("bus-factor-share must be between 0 and 1 exclusive (received %.2f)", input.BusFactorShare)
		}
		cfg.BusFactorShare = input.BusFactorShare
	}
	cfg.BusFactorMinCommits = DefaultBusFactorMinCommits
	if input.BusFactorMinCommits != 0 {
		if input.BusFactorMinCommits < 1 {
			return fmt.Errorf("bus-factor-min-commits must be at least 1 (received %d)", input.BusFactorMinCommits)
		}
		cfg.BusFactorMinCommits = input.BusFactorMinCommits
	}

	cfg.CorrelationMinPoints = DefaultCorrelationMinPts
	if input.CorrelationMinPts != 0 {
		if input.CorrelationMinPts < 3 {
			return fmt.Errorf("correlation-min-points must be at least 3 (received %d)", input.CorrelationMinPts)
		}
		cfg.CorrelationMinPoints = input.CorrelationMinPts
	}
	cfg.CorrelationStrongR = DefaultCorrelationStrongR
	if input.CorrelationStrongR != 0 {
		if input.CorrelationStrongR <= 0 || input.CorrelationStrongR > 1 {
			return fmt.Errorf("correlation-strong-r must be between 0 and 1 (received %.2f)", input.CorrelationStrongR)
		}
		cfg.CorrelationStrongR = input.CorrelationStrongR
	}

	return nil
}

// processCredentials transfers token material. Validation happens at the
// point of use so offline commands keep working without a token.
func processCredentials(cfg *Config, input *ConfigRawInput) {
	cfg.GitHubToken = strings.TrimSpace(input.GitHubToken)
	cfg.GitHubBaseURL = strings.TrimSpace(input.GitHubBaseURL)
	cfg.OpenAIKey = strings.TrimSpace(input.OpenAIKey)
	cfg.OpenAIModel = input.OpenAIModel
	cfg.OpenAIURL = input.OpenAIURL
}

// splitCSV splits a comma-separated flag value, dropping empty entries.
func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
