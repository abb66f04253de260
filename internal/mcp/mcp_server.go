// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"
	"time"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/internal/snapshot"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the repotrend MCP server without starting it.
// Tools read snapshots from baseCfg.DataDir and never call GitHub.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) (*server.MCPServer, error) {
	store, err := newCachedStore(snapshot.NewStore(baseCfg.DataDir), DefaultSnapshotCacheSize, DefaultSnapshotCacheTTL)
	if err != nil {
		return nil, err
	}

	s := server.NewMCPServer(
		"Repotrend Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		store:   store,
		now:     time.Now,
	}

	s.AddTool(mcp.NewTool("get_rankings",
		mcp.WithDescription("Rank tracked GitHub repositories by stars, with recent growth and totals."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleGetRankings)

	s.AddTool(mcp.NewTool("get_snapshot",
		mcp.WithDescription("Return the stored snapshot of one repository: totals and daily counts per kind."),
		mcp.WithString("repo", mcp.Description("Repository as owner/name or GitHub URL."), mcp.Required()),
	), h.handleGetSnapshot)

	s.AddTool(mcp.NewTool("get_history",
		mcp.WithDescription("Return the cumulative daily history of one repository."),
		mcp.WithString("repo", mcp.Description("Repository as owner/name or GitHub URL."), mcp.Required()),
	), h.handleGetHistory)

	return s, nil
}

// StartMCPServer starts the repotrend MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s, err := NewMCPServer(baseCfg, mgr)
	if err != nil {
		return err
	}
	return server.ServeStdio(s)
}
