// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/healthmerge/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the healthmerge MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.HistoryManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Healthmerge Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: merge_health_data ---
	s.AddTool(mcp.NewTool("merge_health_data",
		mcp.WithDescription("Merge sleep and workout exports into per-user daily summaries and report average calories on low-sleep days."),
		mcp.WithString("sleep_path", mcp.Description("Path to the sleep JSON export."), mcp.Required()),
		mcp.WithString("workout_path", mcp.Description("Path to the workout JSON export."), mcp.Required()),
		mcp.WithString("reference_zone", mcp.Description("IANA zone used to attribute events to calendar days (defaults to UTC).")),
		mcp.WithString("sleep_threshold", mcp.Description("Days with total sleep strictly below this count as low-sleep (e.g. '6h', '360 minutes').")),
		mcp.WithString("user", mcp.Description("Only merge records belonging to this user id.")),
	), h.handleMergeHealthData)

	// --- 2. Tool: normalize_timestamp ---
	s.AddTool(mcp.NewTool("normalize_timestamp",
		mcp.WithDescription("Explain how a timestamp is normalized to UTC and which calendar day it is attributed to."),
		mcp.WithString("timestamp", mcp.Description("ISO 8601 text or epoch seconds."), mcp.Required()),
		mcp.WithString("zone", mcp.Description("IANA zone of a wall-clock timestamp. Omit for absolute instants.")),
		mcp.WithString("reference_zone", mcp.Description("IANA zone used for day attribution (defaults to UTC).")),
	), h.handleNormalizeTimestamp)

	return s
}

// StartMCPServer starts the healthmerge MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.HistoryManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
