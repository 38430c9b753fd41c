package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/healthmerge/core"
	"github.com/huangsam/healthmerge/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.HistoryManager
}

func (h *toolHandler) handleMergeHealthData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.SleepPath = request.GetString("sleep_path", "")
	cfg.WorkoutPath = request.GetString("workout_path", "")
	if cfg.SleepPath == "" || cfg.WorkoutPath == "" {
		return mcp.NewToolResultError("sleep_path and workout_path are required"), nil
	}
	if z := request.GetString("reference_zone", ""); z != "" {
		cfg.ReferenceZone = z
	}
	if s := request.GetString("sleep_threshold", ""); s != "" {
		threshold, err := contract.ParseSleepThreshold(s)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		cfg.SleepThreshold = threshold
	}
	if u := request.GetString("user", ""); u != "" {
		cfg.UserFilter = strings.TrimSpace(u)
	}

	result, err := core.MergeFiles(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("merge failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result.Report(), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleNormalizeTimestamp(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	raw := request.GetString("timestamp", "")
	if strings.TrimSpace(raw) == "" {
		return mcp.NewToolResultError("timestamp is required"), nil
	}
	if z := request.GetString("reference_zone", ""); z != "" {
		cfg.ReferenceZone = z
	}

	out, err := core.NormalizeTimestamp(cfg, raw, request.GetString("zone", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	jsonData, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
