package core

import (
	"context"
	"errors"
	"math"

	"github.com/deatools/deascope/core/model"
	"github.com/deatools/deascope/internal/solver"
	"github.com/deatools/deascope/schema"
)

// runPairwiseRanks bounds every DMU's rank with pairwise comparisons: the
// best rank counts rivals that beat the subject for every admissible
// weight vector, the worst rank counts rivals that beat it for at least
// one. At most 2(n-1) LPs per DMU, warm-started along the rival loop.
func runPairwiseRanks(ctx context.Context, o Options, pb preferenceBuilder) (*schema.RanksResult, error) {
	n := pb.n
	res := &schema.RanksResult{Min: make([]int, n), Max: make([]int, n)}
	sx := oracle()
	var failed failures

	err := forEachDMU(ctx, n, o.Workers, func(ctx context.Context, s int) error {
		always, sometimes := 0, 0
		numerical := false
		var basis []int
		for k := 0; k < n; k++ {
			if k == s {
				continue
			}
			// Worst case for the rival: can k stay above s everywhere?
			r, err := sx.SolveWarm(ctx, pb.build(k, s, solver.Minimize), basis)
			if err != nil {
				return err
			}
			switch r.Status {
			case solver.Optimal:
				basis = r.Basis
				if r.Objective > pb.threshold+o.Epsilon {
					always++
				}
			case solver.Numerical:
				numerical = true
			default:
				return classify(r.Status)
			}

			r, err = sx.Solve(ctx, pb.build(k, s, solver.Maximize))
			if err != nil {
				return err
			}
			switch r.Status {
			case solver.Optimal:
				if r.Objective > pb.threshold+o.Epsilon {
					sometimes++
				}
			case solver.Unbounded:
				sometimes++
			case solver.Numerical:
				numerical = true
				sometimes++ // conservative: the rival may beat s
			default:
				return classify(r.Status)
			}
		}
		res.Min[s] = 1 + always
		res.Max[s] = 1 + sometimes
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

// runExactRanks computes exact extreme ranks with one mixed-integer model
// per DMU and bound, counting how many rivals can (or must) sit strictly
// above the subject under a single weight vector.
func runExactRanks(ctx context.Context, o Options, n int, build func(s int, worst bool) *solver.Spec) (*schema.RanksResult, error) {
	res := &schema.RanksResult{Min: make([]int, n), Max: make([]int, n)}
	sx := oracle()
	var failed failures

	err := forEachDMU(ctx, n, o.Workers, func(ctx context.Context, s int) error {
		numerical := false
		for _, worst := range []bool{false, true} {
			v, err := solveValue(ctx, sx, build(s, worst))
			switch {
			case errors.Is(err, schema.ErrNumerical):
				numerical = true
				continue
			case err != nil:
				return err
			}
			rank := 1 + int(math.Round(v))
			if worst {
				res.Max[s] = rank
			} else {
				res.Min[s] = rank
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

// CCRExtremeRanks bounds the efficiency ranks under the ratio model with
// pairwise comparison LPs.
func CCRExtremeRanks(ctx context.Context, data *schema.ProblemData, opts *Options) (*schema.RanksResult, error) {
	o := opts.normalized()
	return runPairwiseRanks(ctx, o, preferenceBuilder{
		n:         data.NumDMUs(),
		threshold: 1,
		build: func(s, t int, dir solver.Direction) *solver.Spec {
			return model.BuildCCRPreference(data, s, t, dir)
		},
	})
}

// VDEAExtremeRanks computes the exact extreme ranks of the additive value
// model with one MILP per DMU and bound.
func VDEAExtremeRanks(ctx context.Context, data *schema.VDEAProblemData, opts *Options) (*schema.RanksResult, error) {
	o := opts.normalized()
	values := data.ValueMatrix()
	order := data.FactorNames()
	return runExactRanks(ctx, o, data.NumDMUs(), func(s int, worst bool) *solver.Spec {
		if worst {
			return model.BuildVDEAMaxRank(values, data.Constraints, order, s, o.Epsilon)
		}
		return model.BuildVDEAMinRank(values, data.Constraints, order, s)
	})
}

// HierarchicalVDEAExtremeRanks computes the exact extreme ranks at the
// named hierarchy node.
func HierarchicalVDEAExtremeRanks(ctx context.Context, data *schema.HierarchicalVDEAProblemData, node string, opts *Options) (*schema.RanksResult, error) {
	o := opts.normalized()
	hc, err := model.NewHierarchyContext(data, node)
	if err != nil {
		return nil, err
	}
	values := data.ValueMatrix()
	return runExactRanks(ctx, o, data.NumDMUs(), func(s int, worst bool) *solver.Spec {
		if worst {
			return model.BuildHierarchicalMaxRank(values, hc, s, o.Epsilon)
		}
		return model.BuildHierarchicalMinRank(values, hc, s)
	})
}

// ImpreciseVDEAExtremeRanks bounds the ranks over weights and admissible
// realizations with pairwise comparison LPs.
func ImpreciseVDEAExtremeRanks(ctx context.Context, data *schema.ImpreciseVDEAProblemData, opts *Options) (*schema.RanksResult, error) {
	o := opts.normalized()
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return runPairwiseRanks(ctx, o, preferenceBuilder{
		n:         data.NumDMUs(),
		threshold: 0,
		build: func(s, t int, dir solver.Direction) *solver.Spec {
			return model.BuildImpreciseVDEAPreference(data, s, t, dir)
		},
	})
}

// ImpreciseCCRExtremeRanks bounds the ranks of the imprecise ratio model
// with pairwise comparison LPs.
func ImpreciseCCRExtremeRanks(ctx context.Context, data *schema.CCRImpreciseProblemData, opts *Options) (*schema.RanksResult, error) {
	o := opts.normalized()
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return runPairwiseRanks(ctx, o, preferenceBuilder{
		n:         data.NumDMUs(),
		threshold: 1,
		build: func(s, t int, dir solver.Direction) *solver.Spec {
			return model.BuildImpreciseCCRPreference(data, s, t, dir)
		},
	})
}
