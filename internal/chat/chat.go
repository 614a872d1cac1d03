// Package chat answers natural-language questions about delivery metrics.
// The default generator is deterministic and template-based; an
// OpenAI-compatible variant is used when an API key is configured.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
)

// TemplateGenerator produces deterministic answers without any network
// dependency.
type TemplateGenerator struct{}

var _ contract.TextGenerator = &TemplateGenerator{} // Compile-time check

// NewTemplateGenerator builds the fallback generator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

// Generate matches the question against the four DORA axes and answers with
// the measured value; anything else gets the full digest.
func (g *TemplateGenerator) Generate(_ context.Context, question string, digest schema.ChatDigest) (string, error) {
	q := strings.ToLower(question)

	switch {
	case strings.Contains(q, "deployment frequency") || strings.Contains(q, "how often"):
		return fmt.Sprintf(
			"Deployment frequency measures how often code reaches production. "+
				"Over the last %d days %s averaged %.2f deployments per day (%d total), which is %s tier.",
			digest.Summary.WindowDays, orgLabel(digest), digest.Summary.DeploymentsPerDay,
			digest.Summary.TotalDeployments, digest.Level.DeployFrequency), nil

	case strings.Contains(q, "lead time"):
		return fmt.Sprintf(
			"Lead time for changes is the time from first commit to merge. "+
				"Over the last %d days %s averaged %.0f minutes, which is %s tier.",
			digest.Summary.WindowDays, orgLabel(digest), digest.Summary.AvgLeadTimeMinutes,
			digest.Level.LeadTime), nil

	case strings.Contains(q, "change failure") || strings.Contains(q, "failure rate"):
		return fmt.Sprintf(
			"Change failure rate is the share of deployments that cause a failure. "+
				"Over the last %d days %s sat at %.0f%%, which is %s tier.",
			digest.Summary.WindowDays, orgLabel(digest), digest.Summary.ChangeFailureRate*100,
			digest.Level.ChangeFailure), nil

	case strings.Contains(q, "mttr") || strings.Contains(q, "recover") || strings.Contains(q, "restore"):
		return fmt.Sprintf(
			"Mean time to recovery is how long production incidents stay open. "+
				"Over the last %d days %s averaged %.0f minutes, which is %s tier.",
			digest.Summary.WindowDays, orgLabel(digest), digest.Summary.MTTRMinutes,
			digest.Level.Recovery), nil

	default:
		return fmt.Sprintf(
			"%s over the last %d days: %.2f deployments/day, %.0f min lead time, "+
				"%.0f%% change failure rate, %.0f min recovery. Overall DORA tier: %s.",
			orgLabel(digest), digest.Summary.WindowDays, digest.Summary.DeploymentsPerDay,
			digest.Summary.AvgLeadTimeMinutes, digest.Summary.ChangeFailureRate*100,
			digest.Summary.MTTRMinutes, digest.Level.Overall), nil
	}
}

func orgLabel(digest schema.ChatDigest) string {
	if digest.OrgID != "" {
		return digest.OrgID
	}
	return "the organization"
}
