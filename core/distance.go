package core

import (
	"context"
	"errors"
	"math"

	"github.com/deatools/deascope/core/model"
	"github.com/deatools/deascope/internal/solver"
	"github.com/deatools/deascope/schema"
)

// distanceBuilders wires one value model into the shared distance runner.
// The maximum distance scans candidate best units; candidates that can
// never be on top come back infeasible and are skipped.
type distanceBuilders struct {
	n       int
	min     func(s int) *solver.Spec
	maxScan func(s, best int) *solver.Spec
}

// runDistances computes the extreme distances to the best unit for all
// DMUs.
func runDistances(ctx context.Context, o Options, db distanceBuilders) (*schema.ExtremesResult, error) {
	n := db.n
	res := &schema.ExtremesResult{Min: schema.NaNSlice(n), Max: schema.NaNSlice(n)}
	sx := oracle()
	var failed failures

	err := forEachDMU(ctx, n, o.Workers, func(ctx context.Context, s int) error {
		numerical := false

		v, err := solveValue(ctx, sx, db.min(s))
		switch {
		case errors.Is(err, schema.ErrNumerical):
			numerical = true
		case err != nil:
			return err
		default:
			res.Min[s] = v
		}

		best := math.Inf(-1)
		feasible := false
		for b := 0; b < n; b++ {
			v, err := solveValue(ctx, sx, db.maxScan(s, b))
			switch {
			case errors.Is(err, schema.ErrInfeasible):
				continue
			case errors.Is(err, schema.ErrNumerical):
				numerical = true
				continue
			case err != nil:
				return err
			}
			feasible = true
			if v > best {
				best = v
			}
		}
		if feasible {
			// The gap of the subject to itself never goes below zero.
			res.Max[s] = math.Max(best, 0)
		} else if !numerical {
			return schema.ErrInfeasible
		}

		if numerical {
			failed.add(s)
		}
		return nil
	})
	res.Failed = failed.list()
	if err != nil {
		var pe *schema.PartialError
		if errors.As(err, &pe) {
			return res, err
		}
		return nil, err
	}
	return res, nil
}

// VDEAExtremeDistances computes, for every DMU, the range of its distance
// to the best unit, max_k E(k) - E(s), over the admissible weights.
func VDEAExtremeDistances(ctx context.Context, data *schema.VDEAProblemData, opts *Options) (*schema.ExtremesResult, error) {
	o := opts.normalized()
	values := data.ValueMatrix()
	order := data.FactorNames()
	return runDistances(ctx, o, distanceBuilders{
		n: data.NumDMUs(),
		min: func(s int) *solver.Spec {
			return model.BuildVDEAMinDistance(values, data.Constraints, order, s)
		},
		maxScan: func(s, b int) *solver.Spec {
			return model.BuildVDEAMaxDistance(values, data.Constraints, order, s, b)
		},
	})
}

// HierarchicalVDEAExtremeDistances computes the extreme distances at the
// named hierarchy node.
func HierarchicalVDEAExtremeDistances(ctx context.Context, data *schema.HierarchicalVDEAProblemData, node string, opts *Options) (*schema.ExtremesResult, error) {
	o := opts.normalized()
	hc, err := model.NewHierarchyContext(data, node)
	if err != nil {
		return nil, err
	}
	values := data.ValueMatrix()
	return runDistances(ctx, o, distanceBuilders{
		n: data.NumDMUs(),
		min: func(s int) *solver.Spec {
			return model.BuildHierarchicalMinDistance(values, hc, s)
		},
		maxScan: func(s, b int) *solver.Spec {
			return model.BuildHierarchicalMaxDistance(values, hc, s, b)
		},
	})
}

// ImpreciseVDEAExtremeDistances computes the extreme distances over weights
// and admissible realizations jointly.
func ImpreciseVDEAExtremeDistances(ctx context.Context, data *schema.ImpreciseVDEAProblemData, opts *Options) (*schema.ExtremesResult, error) {
	o := opts.normalized()
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return runDistances(ctx, o, distanceBuilders{
		n: data.NumDMUs(),
		min: func(s int) *solver.Spec {
			return model.BuildImpreciseVDEAMinDistance(data, s)
		},
		maxScan: func(s, b int) *solver.Spec {
			return model.BuildImpreciseVDEAMaxDistance(data, s, b)
		},
	})
}
