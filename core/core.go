// Package core has the analysis drivers of deascope: extreme efficiencies,
// extreme distances to the best unit, extreme ranks, necessary/possible
// preference relations, SMAA distributions and pairwise efficiency
// outranking indices, each across the supported efficiency models.
//
// Drivers fan work out across DMUs (and across samples for the SMAA
// family) with a bounded worker pool; results always come back in DMU
// index order, and sampling results are deterministic for a fixed seed and
// worker count. Problem data is read-only during analysis.
package core

import (
	"context"

	"github.com/deatools/deascope/internal/solver"
	"github.com/deatools/deascope/schema"
)

// oracle returns the LP/MILP engine used by all drivers.
func oracle() *solver.Simplex {
	return solver.New()
}

// classify maps a solver status onto the driver error model: infeasible and
// unbounded models abort the whole driver call, numerical trouble stays
// local to one DMU.
func classify(status solver.Status) error {
	switch status {
	case solver.Optimal:
		return nil
	case solver.Infeasible:
		return schema.ErrInfeasible
	case solver.Unbounded:
		return schema.ErrUnbounded
	default:
		return schema.ErrNumerical
	}
}

// solveValue runs one model and returns its optimum; errNumerical is
// reported as-is so callers can isolate the DMU instead of failing.
func solveValue(ctx context.Context, sx *solver.Simplex, spec *solver.Spec) (float64, error) {
	res, err := sx.Solve(ctx, spec)
	if err != nil {
		return 0, err
	}
	if err := classify(res.Status); err != nil {
		return 0, err
	}
	return res.Objective, nil
}
