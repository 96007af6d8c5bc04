package core

import (
	"context"
	"errors"
	"math"

	"github.com/deatools/deascope/core/model"
	"github.com/deatools/deascope/internal/solver"
	"github.com/deatools/deascope/schema"
)

// extremeBuilders wires one efficiency model into the shared extreme-value
// runner. Exactly one of min and minScan is set: minScan models pin one
// candidate best unit and the runner keeps the smallest feasible optimum.
type extremeBuilders struct {
	n       int
	max     func(s int) *solver.Spec
	min     func(s int) *solver.Spec
	minScan func(s, best int) *solver.Spec
	super   func(s int) *solver.Spec
}

// runExtremes computes min/max (and optionally super-) efficiencies for all
// DMUs. Numerical failures are isolated per DMU as NaN entries; infeasible
// or unbounded models abort the driver.
func runExtremes(ctx context.Context, o Options, eb extremeBuilders) (*schema.ExtremesResult, error) {
	n := eb.n
	res := &schema.ExtremesResult{Min: schema.NaNSlice(n), Max: schema.NaNSlice(n)}
	if eb.super != nil {
		res.Super = schema.NaNSlice(n)
	}
	sx := oracle()
	var failed failures

	err := forEachDMU(ctx, n, o.Workers, func(ctx context.Context, s int) error {
		numerical := false

		v, err := solveValue(ctx, sx, eb.max(s))
		switch {
		case errors.Is(err, schema.ErrNumerical):
			numerical = true
		case err != nil:
			return err
		default:
			res.Max[s] = v
		}

		switch {
		case eb.min != nil:
			v, err := solveValue(ctx, sx, eb.min(s))
			switch {
			case errors.Is(err, schema.ErrNumerical):
				numerical = true
			case err != nil:
				return err
			default:
				res.Min[s] = v
			}
		default:
			best := math.Inf(1)
			feasible := false
			for b := 0; b < n; b++ {
				v, err := solveValue(ctx, sx, eb.minScan(s, b))
				switch {
				case errors.Is(err, schema.ErrInfeasible):
					// This candidate can never be the best unit.
					continue
				case errors.Is(err, schema.ErrNumerical):
					numerical = true
					continue
				case err != nil:
					return err
				}
				feasible = true
				if v < best {
					best = v
				}
			}
			if feasible {
				res.Min[s] = best
			} else if !numerical {
				return schema.ErrInfeasible
			}
		}

		if eb.super != nil {
			v, err := solveValue(ctx, sx, eb.super(s))
			switch {
			case errors.Is(err, schema.ErrNumerical):
				numerical = true
			case err != nil:
				return err
			default:
				res.Super[s] = v
			}
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

// CCRExtremeEfficiencies computes the best- and worst-case ratio-model
// efficiencies of every DMU, and the super-efficiencies when requested.
func CCRExtremeEfficiencies(ctx context.Context, data *schema.ProblemData, opts *Options) (*schema.ExtremesResult, error) {
	o := opts.normalized()
	eb := extremeBuilders{
		n:       data.NumDMUs(),
		max:     func(s int) *solver.Spec { return model.BuildCCRMaxEfficiency(data, s) },
		minScan: func(s, b int) *solver.Spec { return model.BuildCCRMinEfficiency(data, s, b) },
	}
	if o.SuperEfficiency {
		eb.super = func(s int) *solver.Spec { return model.BuildCCRSuperEfficiency(data, s) }
	}
	return runExtremes(ctx, o, eb)
}

// VDEAExtremeEfficiencies computes the extreme additive-value efficiencies
// of every DMU.
func VDEAExtremeEfficiencies(ctx context.Context, data *schema.VDEAProblemData, opts *Options) (*schema.ExtremesResult, error) {
	o := opts.normalized()
	values := data.ValueMatrix()
	order := data.FactorNames()
	return runExtremes(ctx, o, extremeBuilders{
		n: data.NumDMUs(),
		max: func(s int) *solver.Spec {
			return model.BuildVDEAExtremeEfficiency(values, data.Constraints, order, s, solver.Maximize)
		},
		min: func(s int) *solver.Spec {
			return model.BuildVDEAExtremeEfficiency(values, data.Constraints, order, s, solver.Minimize)
		},
	})
}

// HierarchicalVDEAExtremeEfficiencies computes the extreme efficiencies at
// the named hierarchy node.
func HierarchicalVDEAExtremeEfficiencies(ctx context.Context, data *schema.HierarchicalVDEAProblemData, node string, opts *Options) (*schema.ExtremesResult, error) {
	o := opts.normalized()
	hc, err := model.NewHierarchyContext(data, node)
	if err != nil {
		return nil, err
	}
	values := data.ValueMatrix()
	return runExtremes(ctx, o, extremeBuilders{
		n: data.NumDMUs(),
		max: func(s int) *solver.Spec {
			return model.BuildHierarchicalExtremeEfficiency(values, hc, s, solver.Maximize)
		},
		min: func(s int) *solver.Spec {
			return model.BuildHierarchicalExtremeEfficiency(values, hc, s, solver.Minimize)
		},
	})
}

// ImpreciseVDEAExtremeEfficiencies computes the extreme efficiencies over
// weights, admissible performance realizations and value-function shapes.
func ImpreciseVDEAExtremeEfficiencies(ctx context.Context, data *schema.ImpreciseVDEAProblemData, opts *Options) (*schema.ExtremesResult, error) {
	o := opts.normalized()
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return runExtremes(ctx, o, extremeBuilders{
		n: data.NumDMUs(),
		max: func(s int) *solver.Spec {
			return model.BuildImpreciseVDEAExtremeEfficiency(data, s, solver.Maximize)
		},
		min: func(s int) *solver.Spec {
			return model.BuildImpreciseVDEAExtremeEfficiency(data, s, solver.Minimize)
		},
	})
}

// ImpreciseCCRExtremeEfficiencies computes the extreme ratio-model
// efficiencies over weights and admissible performance realizations.
func ImpreciseCCRExtremeEfficiencies(ctx context.Context, data *schema.CCRImpreciseProblemData, opts *Options) (*schema.ExtremesResult, error) {
	o := opts.normalized()
	if err := data.Validate(); err != nil {
		return nil, err
	}
	eb := extremeBuilders{
		n:       data.NumDMUs(),
		max:     func(s int) *solver.Spec { return model.BuildImpreciseCCRMaxEfficiency(data, s) },
		minScan: func(s, b int) *solver.Spec { return model.BuildImpreciseCCRMinEfficiency(data, s, b) },
	}
	if o.SuperEfficiency {
		eb.super = func(s int) *solver.Spec { return model.BuildImpreciseCCRSuperEfficiency(data, s) }
	}
	return runExtremes(ctx, o, eb)
}
