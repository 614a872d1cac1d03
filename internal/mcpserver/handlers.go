package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/devpulse/devpulse/core"
	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/internal/ingest"
	"github.com/devpulse/devpulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds the base configuration and collaborators shared by all
// MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	store   contract.MetricStore
	fetcher contract.Fetcher
}

// requestConfig clones the base configuration and applies the optional
// start/end window parameters from the request.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()

	if start := request.GetString("start", ""); start != "" {
		t, err := contract.ParseTimeInput(start, time.Now().UTC())
		if err != nil {
			return nil, fmt.Errorf("invalid start: %w", err)
		}
		cfg.StartTime = t
	}
	if end := request.GetString("end", ""); end != "" {
		t, err := contract.ParseTimeInput(end, time.Now().UTC())
		if err != nil {
			return nil, fmt.Errorf("invalid end: %w", err)
		}
		cfg.EndTime = t
	}
	return cfg, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleGetDoraMetrics returns one repository's daily rows plus the window
// summary.
func (h *toolHandler) handleGetDoraMetrics(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repoID := request.GetString("repo", "")
	if repoID == "" {
		return mcp.NewToolResultError("repo is required"), nil
	}

	window := cfg.Window()
	rows, err := h.store.GetDailyMetrics(repoID, window)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load metrics: %v", err)), nil
	}

	report := schema.MetricsReport{
		RepoID:  repoID,
		Rows:    rows,
		Summary: core.Summarize(rows, window),
	}
	return jsonResult(report)
}

// handleGetOrgMetrics returns the organization rollup across every
// ingested repository.
func (h *toolHandler) handleGetOrgMetrics(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	window := cfg.Window()
	perRepo, err := h.store.GetAllDailyMetrics(window)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load metrics: %v", err)), nil
	}

	orgRows := core.Rollup(perRepo)
	report := schema.OrgReport{
		OrgID:   cfg.OrgID,
		Rows:    orgRows,
		Summary: core.SummarizeOrg(orgRows, window),
	}
	return jsonResult(report)
}

// handleGetPerformanceLevel classifies a repository, or the whole
// organization when no repo is given, against the DORA benchmark tiers.
func (h *toolHandler) handleGetPerformanceLevel(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	window := cfg.Window()
	var summary schema.MetricSummary
	if repoID := request.GetString("repo", ""); repoID != "" {
		rows, err := h.store.GetDailyMetrics(repoID, window)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load metrics: %v", err)), nil
		}
		summary = core.Summarize(rows, window)
	} else {
		perRepo, err := h.store.GetAllDailyMetrics(window)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load metrics: %v", err)), nil
		}
		summary = core.SummarizeOrg(core.Rollup(perRepo), window)
	}

	level := core.Classify(summary)
	report := schema.LevelReport{
		Level:           level,
		Summary:         summary,
		Recommendations: core.Recommendations(level),
	}
	return jsonResult(report)
}

// handleGetBusinessCorrelations returns the stored correlation report for
// the window, computing and persisting a fresh one when none exists.
func (h *toolHandler) handleGetBusinessCorrelations(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	window := cfg.Window()
	report, err := h.store.GetCorrelationReport(cfg.OrgID, window)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load correlation report: %v", err)), nil
	}
	if report == nil {
		perRepo, err := h.store.GetAllDailyMetrics(window)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load metrics: %v", err)), nil
		}
		business, err := h.store.GetBusinessMetrics(cfg.OrgID, window)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load business metrics: %v", err)), nil
		}
		computed := core.Correlate(core.Rollup(perRepo), business, cfg)
		if err := h.store.PutCorrelationReport(computed); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to persist correlation report: %v", err)), nil
		}
		report = &computed
	}
	return jsonResult(report)
}

// handleGetDailyInsights returns one repository's generated summaries and
// risk flags.
func (h *toolHandler) handleGetDailyInsights(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repoID := request.GetString("repo", "")
	if repoID == "" {
		return mcp.NewToolResultError("repo is required"), nil
	}

	insights, err := h.store.GetDailyInsights(repoID, cfg.Window())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load insights: %v", err)), nil
	}
	return jsonResult(insights)
}

// handleRunIngestion fetches activity for the requested repositories and
// recomputes their daily metrics and insights.
func (h *toolHandler) handleRunIngestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if repos := request.GetString("repos", ""); repos != "" {
		cfg.Repositories = nil
		for _, repo := range strings.Split(repos, ",") {
			if repo = strings.TrimSpace(repo); repo != "" {
				cfg.Repositories = append(cfg.Repositories, repo)
			}
		}
	}
	if len(cfg.Repositories) == 0 {
		return mcp.NewToolResultError("no repositories configured"), nil
	}

	runner := ingest.NewRunner(h.fetcher, h.store, cfg)
	results, err := runner.Run(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Ingestion failed: %v", err)), nil
	}
	return jsonResult(results)
}
