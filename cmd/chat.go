package cmd

import (
	"fmt"
	"strings"

	"github.com/devpulse/devpulse/core"
	"github.com/devpulse/devpulse/internal/chat"
	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
	"github.com/spf13/cobra"
)

// chatCmd answers a natural-language question about the metrics.
var chatCmd = &cobra.Command{
	Use:   "chat <question>",
	Short: "Ask a natural-language question about delivery metrics.",
	Long: `Answer a question about the organization's delivery metrics.

The default generator is deterministic and template-based, so it works offline
and in CI. When DEVPULSE_OPENAI_API_KEY is set, the question and a metrics
digest go to an OpenAI-compatible endpoint instead.

Examples:
  devpulse chat "how often do we deploy?"
  devpulse chat "what is our lead time?"
  devpulse chat "give me the overall picture"`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		question := strings.Join(args, " ")
		window := cfg.Window()

		perRepo, err := metricStore.GetAllDailyMetrics(window)
		if err != nil {
			contract.LogFatal("Cannot load metrics", err)
		}

		repositories := make([]string, 0, len(perRepo))
		for repoID := range perRepo {
			repositories = append(repositories, repoID)
		}
		summary := core.SummarizeOrg(core.Rollup(perRepo), window)

		digest := schema.ChatDigest{
			OrgID:        cfg.OrgID,
			Window:       window,
			Repositories: repositories,
			Summary:      summary,
			Level:        core.Classify(summary),
		}

		var generator contract.TextGenerator = chat.NewTemplateGenerator()
		if cfg.OpenAIKey != "" {
			generator = chat.NewOpenAIGenerator(cfg)
		}

		answer, err := generator.Generate(rootCtx, question, digest)
		if err != nil {
			contract.LogFatal("Cannot generate answer", err)
		}
		fmt.Println(answer)
	},
}
