package contract

import (
	"testing"
	"time"

	"github.com/devpulse/devpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRawInput() *ConfigRawInput {
	return &ConfigRawInput{
		Org:          "acme",
		Repos:        "acme/api, acme/web",
		Limit:        25,
		Workers:      4,
		Precision:    1,
		Output:       "text",
		StoreBackend: "sqlite",
		Emoji:        "no",
		Color:        "yes",
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validRawInput()))

	assert.Equal(t, "acme", cfg.OrgID)
	assert.Equal(t, []string{"acme/api", "acme/web"}, cfg.Repositories)
	assert.Equal(t, schema.SQLiteBackend, cfg.StoreBackend)
	assert.Equal(t, DefaultIncidentLinkWindow, cfg.IncidentLinkWindow)
	assert.Equal(t, DefaultBusFactorShare, cfg.BusFactorShare)
	assert.Equal(t, DefaultBusFactorMinCommits, cfg.BusFactorMinCommits)
	assert.Equal(t, DefaultCorrelationMinPts, cfg.CorrelationMinPoints)
	assert.Equal(t, DefaultCorrelationStrongR, cfg.CorrelationStrongR)
	assert.Equal(t, schema.DefaultFailureLabels, cfg.FailureLabels)
	assert.Equal(t, schema.DefaultIncidentLabels, cfg.IncidentLabels)
	assert.True(t, cfg.UseColors)
	assert.False(t, cfg.UseEmojis)

	// Default window is the trailing lookback period ending today.
	assert.Equal(t, DefaultLookbackDays, cfg.Window().Days())
}

func TestProcessAndValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConfigRawInput)
	}{
		{"bad repo format", func(in *ConfigRawInput) { in.Repos = "just-a-name" }},
		{"zero limit", func(in *ConfigRawInput) { in.Limit = 0 }},
		{"excess limit", func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 }},
		{"zero workers", func(in *ConfigRawInput) { in.Workers = 0 }},
		{"bad precision", func(in *ConfigRawInput) { in.Precision = 3 }},
		{"bad output", func(in *ConfigRawInput) { in.Output = "xml" }},
		{"bad backend", func(in *ConfigRawInput) { in.StoreBackend = "oracle" }},
		{"mysql without dsn", func(in *ConfigRawInput) { in.StoreBackend = "mysql" }},
		{"postgres bad dsn", func(in *ConfigRawInput) {
			in.StoreBackend = "postgresql"
			in.StoreDBConnect = "not-a-dsn"
		}},
		{"start after end", func(in *ConfigRawInput) {
			in.Start = "2024-06-01"
			in.End = "2024-01-01"
		}},
		{"bad bus factor share", func(in *ConfigRawInput) { in.BusFactorShare = 1.5 }},
		{"bad incident window", func(in *ConfigRawInput) { in.IncidentLinkWindow = "two days" }},
		{"tiny correlation sample", func(in *ConfigRawInput) { in.CorrelationMinPts = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRawInput()
			tt.mutate(input)
			assert.Error(t, ProcessAndValidate(&Config{}, input))
		})
	}
}

func TestProcessTimeRangeAbsolute(t *testing.T) {
	input := validRawInput()
	input.Start = "2024-03-01"
	input.End = "2024-03-30"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), cfg.StartTime)
	assert.Equal(t, 30, cfg.Window().Days())
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validRawInput()))

	clone := cfg.Clone()
	clone.Repositories[0] = "other/repo"
	clone.FailureLabels[0] = "changed"

	assert.Equal(t, "acme/api", cfg.Repositories[0])
	assert.NotEqual(t, cfg.FailureLabels[0], clone.FailureLabels[0])
}
