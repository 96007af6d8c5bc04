// Package mcp provides the Model Context Protocol (MCP) server exposing the
// robustness analyses as tools over problem files.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/deatools/deascope/core"
)

// NewMCPServer initializes and configures the deascope MCP server without
// starting it. Exposed for unit testing.
func NewMCPServer(opts *core.Options) *server.MCPServer {
	s := server.NewMCPServer(
		"Deascope Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{opts: opts}

	// --- 1. Tool: dea_extreme_efficiency ---
	s.AddTool(mcp.NewTool("dea_extreme_efficiency",
		mcp.WithDescription("Compute the minimal and maximal efficiency of every unit over all admissible weights."),
		mcp.WithString("problem_file", mcp.Description("Path to the JSON problem file."), mcp.Required()),
		mcp.WithString("node", mcp.Description("Hierarchy node to analyze (hierarchical model only).")),
		mcp.WithBoolean("super", mcp.Description("Also compute super-efficiencies (ratio models).")),
	), h.handleExtremeEfficiency)

	// --- 2. Tool: dea_extreme_ranks ---
	s.AddTool(mcp.NewTool("dea_extreme_ranks",
		mcp.WithDescription("Compute the best and worst efficiency rank of every unit."),
		mcp.WithString("problem_file", mcp.Description("Path to the JSON problem file."), mcp.Required()),
		mcp.WithString("node", mcp.Description("Hierarchy node to analyze.")),
	), h.handleExtremeRanks)

	// --- 3. Tool: dea_preference_relations ---
	s.AddTool(mcp.NewTool("dea_preference_relations",
		mcp.WithDescription("Check necessary and possible pairwise efficiency preference relations."),
		mcp.WithString("problem_file", mcp.Description("Path to the JSON problem file."), mcp.Required()),
		mcp.WithString("node", mcp.Description("Hierarchy node to analyze.")),
	), h.handlePreferenceRelations)

	// --- 4. Tool: dea_smaa ---
	s.AddTool(mcp.NewTool("dea_smaa",
		mcp.WithDescription("Estimate the distribution of an efficiency indicator by uniform sampling."),
		mcp.WithString("problem_file", mcp.Description("Path to the JSON problem file."), mcp.Required()),
		mcp.WithString("indicator", mcp.Description("Indicator to sample."), mcp.Enum("efficiency", "distance", "rank")),
		mcp.WithNumber("samples", mcp.Description("Sample count.")),
		mcp.WithNumber("bins", mcp.Description("Histogram bin count.")),
		mcp.WithNumber("seed", mcp.Description("Random seed.")),
		mcp.WithString("node", mcp.Description("Hierarchy node to analyze.")),
	), h.handleSmaa)

	// --- 5. Tool: dea_peoi ---
	s.AddTool(mcp.NewTool("dea_peoi",
		mcp.WithDescription("Estimate pairwise efficiency outranking indices by uniform sampling."),
		mcp.WithString("problem_file", mcp.Description("Path to the JSON problem file."), mcp.Required()),
		mcp.WithNumber("samples", mcp.Description("Sample count.")),
		mcp.WithNumber("seed", mcp.Description("Random seed.")),
		mcp.WithString("node", mcp.Description("Hierarchy node to analyze.")),
	), h.handlePEOI)

	return s
}

// StartMCPServer starts the deascope MCP server on stdio.
func StartMCPServer(_ context.Context, opts *core.Options) error {
	s := NewMCPServer(opts)
	return server.ServeStdio(s)
}
