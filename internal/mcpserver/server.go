// Package mcpserver provides the Model Context Protocol (MCP) server
// exposing the delivery-metrics query surface as tools.
package mcpserver

import (
	"context"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the DevPulse MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, store contract.MetricStore, fetcher contract.Fetcher) *server.MCPServer {
	s := server.NewMCPServer(
		"DevPulse Delivery Metrics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		store:   store,
		fetcher: fetcher,
	}

	// --- 1. Tool: get_dora_metrics ---
	s.AddTool(mcp.NewTool("get_dora_metrics",
		mcp.WithDescription("Get daily DORA metrics (deployment frequency, lead time, change failure rate, MTTR) for one repository."),
		mcp.WithString("repo", mcp.Description("Repository identifier as owner/name."), mcp.Required()),
		mcp.WithString("start", mcp.Description("Window start (YYYY-MM-DD or a phrase like '2 weeks ago'). Defaults to the configured lookback.")),
		mcp.WithString("end", mcp.Description("Window end (YYYY-MM-DD). Defaults to today.")),
	), h.handleGetDoraMetrics)

	// --- 2. Tool: get_org_metrics ---
	s.AddTool(mcp.NewTool("get_org_metrics",
		mcp.WithDescription("Get the organization-wide daily rollup across every ingested repository."),
		mcp.WithString("start", mcp.Description("Window start (YYYY-MM-DD).")),
		mcp.WithString("end", mcp.Description("Window end (YYYY-MM-DD).")),
	), h.handleGetOrgMetrics)

	// --- 3. Tool: get_performance_level ---
	s.AddTool(mcp.NewTool("get_performance_level",
		mcp.WithDescription("Classify performance against DORA benchmark tiers, with improvement recommendations."),
		mcp.WithString("repo", mcp.Description("Repository identifier as owner/name. Omit for the organization level.")),
		mcp.WithString("start", mcp.Description("Window start (YYYY-MM-DD).")),
		mcp.WithString("end", mcp.Description("Window end (YYYY-MM-DD).")),
	), h.handleGetPerformanceLevel)

	// --- 4. Tool: get_business_correlations ---
	s.AddTool(mcp.NewTool("get_business_correlations",
		mcp.WithDescription("Correlate DORA metrics with recorded business metrics over the window."),
		mcp.WithString("start", mcp.Description("Window start (YYYY-MM-DD).")),
		mcp.WithString("end", mcp.Description("Window end (YYYY-MM-DD).")),
	), h.handleGetBusinessCorrelations)

	// --- 5. Tool: get_daily_insights ---
	s.AddTool(mcp.NewTool("get_daily_insights",
		mcp.WithDescription("Get the generated daily summaries and risk flags for one repository."),
		mcp.WithString("repo", mcp.Description("Repository identifier as owner/name."), mcp.Required()),
		mcp.WithString("start", mcp.Description("Window start (YYYY-MM-DD).")),
		mcp.WithString("end", mcp.Description("Window end (YYYY-MM-DD).")),
	), h.handleGetDailyInsights)

	// --- 6. Tool: run_ingestion ---
	s.AddTool(mcp.NewTool("run_ingestion",
		mcp.WithDescription("Fetch GitHub activity and recompute daily metrics and insights."),
		mcp.WithString("repos", mcp.Description("Comma-separated owner/name list. Defaults to the configured repositories.")),
		mcp.WithString("start", mcp.Description("Window start (YYYY-MM-DD).")),
		mcp.WithString("end", mcp.Description("Window end (YYYY-MM-DD).")),
	), h.handleRunIngestion)

	return s
}

// StartMCPServer starts the DevPulse MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, store contract.MetricStore, fetcher contract.Fetcher) error {
	s := NewMCPServer(baseCfg, store, fetcher)
	return server.ServeStdio(s)
}
