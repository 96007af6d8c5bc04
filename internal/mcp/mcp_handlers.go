package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/deatools/deascope/core"
	"github.com/deatools/deascope/internal/problemfile"
	"github.com/deatools/deascope/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	opts *core.Options
}

// load reads the problem referenced by the request.
func (h *toolHandler) load(request mcp.CallToolRequest) (*problemfile.Problem, error) {
	path := request.GetString("problem_file", "")
	if path == "" {
		return nil, fmt.Errorf("problem_file is required")
	}
	return problemfile.Load(path)
}

// options clones the base options with per-request overrides.
func (h *toolHandler) options(request mcp.CallToolRequest) *core.Options {
	opts := *h.opts
	if v := request.GetInt("samples", 0); v > 0 {
		opts.Samples = v
	}
	if v := request.GetInt("bins", 0); v > 0 {
		opts.Bins = v
	}
	if v := request.GetInt("seed", 0); v > 0 {
		opts.Seed = uint64(v)
	}
	opts.SuperEfficiency = request.GetBool("super", false)
	return &opts
}

// respond renders any result as indented JSON.
func respond(data any) (*mcp.CallToolResult, error) {
	encoded, _ := json.MarshalIndent(data, "", "  ")
	return mcp.NewToolResultText(string(encoded)), nil
}

func (h *toolHandler) handleExtremeEfficiency(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.load(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := h.options(request)
	node := request.GetString("node", "")

	var res *schema.ExtremesResult
	switch p.Model {
	case schema.CCRModel:
		res, err = core.CCRExtremeEfficiencies(ctx, p.CCR, opts)
	case schema.VDEAModel:
		res, err = core.VDEAExtremeEfficiencies(ctx, p.VDEA, opts)
	case schema.HierarchicalVDEAModel:
		res, err = core.HierarchicalVDEAExtremeEfficiencies(ctx, p.Hierarchical, node, opts)
	case schema.ImpreciseVDEAModel:
		res, err = core.ImpreciseVDEAExtremeEfficiencies(ctx, p.ImpreciseVDEA, opts)
	case schema.ImpreciseCCRModel:
		res, err = core.ImpreciseCCRExtremeEfficiencies(ctx, p.ImpreciseCCR, opts)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return respond(map[string]any{"units": p.UnitNames(), "min": res.Min, "max": res.Max, "super": res.Super})
}

func (h *toolHandler) handleExtremeRanks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.load(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := h.options(request)
	node := request.GetString("node", "")

	var res *schema.RanksResult
	switch p.Model {
	case schema.CCRModel:
		res, err = core.CCRExtremeRanks(ctx, p.CCR, opts)
	case schema.VDEAModel:
		res, err = core.VDEAExtremeRanks(ctx, p.VDEA, opts)
	case schema.HierarchicalVDEAModel:
		res, err = core.HierarchicalVDEAExtremeRanks(ctx, p.Hierarchical, node, opts)
	case schema.ImpreciseVDEAModel:
		res, err = core.ImpreciseVDEAExtremeRanks(ctx, p.ImpreciseVDEA, opts)
	case schema.ImpreciseCCRModel:
		res, err = core.ImpreciseCCRExtremeRanks(ctx, p.ImpreciseCCR, opts)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return respond(map[string]any{"units": p.UnitNames(), "min": res.Min, "max": res.Max})
}

func (h *toolHandler) handlePreferenceRelations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.load(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := h.options(request)
	node := request.GetString("node", "")

	var res *schema.PreferenceResult
	switch p.Model {
	case schema.CCRModel:
		res, err = core.CCRPreferenceRelations(ctx, p.CCR, opts)
	case schema.VDEAModel:
		res, err = core.VDEAPreferenceRelations(ctx, p.VDEA, opts)
	case schema.HierarchicalVDEAModel:
		res, err = core.HierarchicalVDEAPreferenceRelations(ctx, p.Hierarchical, node, opts)
	case schema.ImpreciseVDEAModel:
		res, err = core.ImpreciseVDEAPreferenceRelations(ctx, p.ImpreciseVDEA, opts)
	case schema.ImpreciseCCRModel:
		res, err = core.ImpreciseCCRPreferenceRelations(ctx, p.ImpreciseCCR, opts)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return respond(map[string]any{"units": p.UnitNames(), "necessary": res.Necessary, "possible": res.Possible})
}

func (h *toolHandler) handleSmaa(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.load(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := h.options(request)
	indicator := schema.Indicator(request.GetString("indicator", string(schema.EfficiencyIndicator)))

	res, err := runSmaaForModel(ctx, p, indicator, request.GetString("node", ""), opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return respond(map[string]any{"units": p.UnitNames(), "histogram": res.Histogram, "expected": res.Expected})
}

func (h *toolHandler) handlePEOI(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.load(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := h.options(request)
	node := request.GetString("node", "")

	var res *schema.PEOIResult
	switch p.Model {
	case schema.CCRModel:
		res, err = core.CCRSmaaPreferenceRelations(ctx, p.CCR, opts)
	case schema.VDEAModel:
		res, err = core.VDEASmaaPreferenceRelations(ctx, p.VDEA, opts)
	case schema.HierarchicalVDEAModel:
		res, err = core.HierarchicalVDEASmaaPreferenceRelations(ctx, p.Hierarchical, node, opts)
	case schema.ImpreciseVDEAModel:
		res, err = core.ImpreciseVDEASmaaPreferenceRelations(ctx, p.ImpreciseVDEA, opts)
	case schema.ImpreciseCCRModel:
		res, err = core.ImpreciseCCRSmaaPreferenceRelations(ctx, p.ImpreciseCCR, opts)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return respond(map[string]any{"units": p.UnitNames(), "peoi": res.Matrix})
}

// runSmaaForModel dispatches the sampled analysis over model and indicator.
func runSmaaForModel(ctx context.Context, p *problemfile.Problem, indicator schema.Indicator, node string, opts *core.Options) (*schema.DistributionResult, error) {
	switch p.Model {
	case schema.CCRModel:
		switch indicator {
		case schema.EfficiencyIndicator:
			return core.CCRSmaaEfficiency(ctx, p.CCR, opts)
		case schema.RankIndicator:
			return core.CCRSmaaRanks(ctx, p.CCR, opts)
		}
	case schema.VDEAModel:
		switch indicator {
		case schema.EfficiencyIndicator:
			return core.VDEASmaaEfficiency(ctx, p.VDEA, opts)
		case schema.DistanceIndicator:
			return core.VDEASmaaDistance(ctx, p.VDEA, opts)
		case schema.RankIndicator:
			return core.VDEASmaaRanks(ctx, p.VDEA, opts)
		}
	case schema.HierarchicalVDEAModel:
		switch indicator {
		case schema.EfficiencyIndicator:
			return core.HierarchicalVDEASmaaEfficiency(ctx, p.Hierarchical, node, opts)
		case schema.DistanceIndicator:
			return core.HierarchicalVDEASmaaDistance(ctx, p.Hierarchical, node, opts)
		case schema.RankIndicator:
			return core.HierarchicalVDEASmaaRanks(ctx, p.Hierarchical, node, opts)
		}
	case schema.ImpreciseVDEAModel:
		switch indicator {
		case schema.EfficiencyIndicator:
			return core.ImpreciseVDEASmaaEfficiency(ctx, p.ImpreciseVDEA, opts)
		case schema.DistanceIndicator:
			return core.ImpreciseVDEASmaaDistance(ctx, p.ImpreciseVDEA, opts)
		case schema.RankIndicator:
			return core.ImpreciseVDEASmaaRanks(ctx, p.ImpreciseVDEA, opts)
		}
	case schema.ImpreciseCCRModel:
		switch indicator {
		case schema.EfficiencyIndicator:
			return core.ImpreciseCCRSmaaEfficiency(ctx, p.ImpreciseCCR, opts)
		case schema.RankIndicator:
			return core.ImpreciseCCRSmaaRanks(ctx, p.ImpreciseCCR, opts)
		}
	}
	return nil, fmt.Errorf("indicator %s is not supported for model %s", indicator, p.Model)
}
