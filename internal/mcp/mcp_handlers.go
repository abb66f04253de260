package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/repotrend/core"
	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/internal/snapshot"
	"github.com/huangsam/repotrend/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
	store   contract.SnapshotStore
	now     func() time.Time
}

func (h *toolHandler) lookup() core.MetadataLookup {
	return core.NewMetadataLookup(h.mgr, h.baseCfg.MetadataTTL)
}

// parseRepo reads the required repo argument.
func parseRepo(request mcp.CallToolRequest) (schema.RepositoryRef, error) {
	raw := request.GetString("repo", "")
	if raw == "" {
		return schema.RepositoryRef{}, fmt.Errorf("repo is required (owner/name or GitHub URL)")
	}
	return schema.ParseRepositoryRef(raw)
}

func jsonResult(data any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetRankings(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := h.baseCfg.ResultLimit
	if l := request.GetInt("limit", 0); l > 0 {
		limit = min(l, contract.MaxResultLimit)
	}

	refs, err := h.store.List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list snapshots: %v", err)), nil
	}
	ranked := core.BuildRankings(h.store, refs, h.lookup(), limit, h.now())
	return jsonResult(ranked)
}

func (h *toolHandler) handleGetSnapshot(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := parseRepo(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid repository: %v", err)), nil
	}
	snap, err := h.store.Load(ref)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load snapshot: %v", err)), nil
	}
	if snap == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no snapshot for %s: run init first", ref)), nil
	}
	data, err := snapshot.Encode(snap)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode snapshot: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (h *toolHandler) handleGetHistory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := parseRepo(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid repository: %v", err)), nil
	}
	histories := core.BuildHistories(h.store, []schema.RepositoryRef{ref}, h.lookup(), h.now())
	project, ok := histories.Projects[ref.Name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no complete snapshot for %s: run init first", ref)), nil
	}
	return jsonResult(project)
}
