package core

import (
	"context"
	"errors"

	"github.com/deatools/deascope/core/model"
	"github.com/deatools/deascope/internal/solver"
	"github.com/deatools/deascope/schema"
)

// preferenceBuilder produces the model optimizing the efficiency comparison
// of s against t in the given direction; threshold is the optimum at which
// s is considered at least as efficient as t (zero for value differences,
// one for ratio quotients).
type preferenceBuilder struct {
	n         int
	build     func(s, t int, dir solver.Direction) *solver.Spec
	threshold float64
}

// runPreferences fills the necessary and possible relation matrices.
// Diagonals are reflexively true. A numerical failure on one pair leaves
// that entry false in Necessary and true in Possible, the conservative
// answers.
func runPreferences(ctx context.Context, o Options, pb preferenceBuilder) (*schema.PreferenceResult, error) {
	n := pb.n
	res := &schema.PreferenceResult{
		Necessary: make([][]bool, n),
		Possible:  make([][]bool, n),
	}
	for i := 0; i < n; i++ {
		res.Necessary[i] = make([]bool, n)
		res.Possible[i] = make([]bool, n)
	}
	sx := oracle()

	err := forEachDMU(ctx, n, o.Workers, func(ctx context.Context, s int) error {
		var basis []int
		for t := 0; t < n; t++ {
			if t == s {
				res.Necessary[s][t] = true
				res.Possible[s][t] = true
				continue
			}
			spec := pb.build(s, t, solver.Minimize)
			r, err := sx.SolveWarm(ctx, spec, basis)
			if err != nil {
				return err
			}
			switch r.Status {
			case solver.Optimal:
				basis = r.Basis
				res.Necessary[s][t] = r.Objective >= pb.threshold-o.Epsilon
			case solver.Numerical:
				res.Necessary[s][t] = false
			default:
				return classify(r.Status)
			}

			r, err = sx.Solve(ctx, pb.build(s, t, solver.Maximize))
			if err != nil {
				return err
			}
			switch r.Status {
			case solver.Optimal:
				res.Possible[s][t] = r.Objective >= pb.threshold-o.Epsilon
			case solver.Unbounded:
				// The comparison can grow without limit; certainly possible.
				res.Possible[s][t] = true
			case solver.Numerical:
				res.Possible[s][t] = true
			default:
				return classify(r.Status)
			}
		}
		return nil
	})
	if err != nil {
		var pe *schema.PartialError
		if errors.As(err, &pe) {
			return res, err
		}
		return nil, err
	}
	return res, nil
}

// CCRPreferenceRelations checks, for every ordered pair, whether one DMU's
// ratio efficiency dominates the other's for all (necessary) or some
// (possible) admissible weights.
func CCRPreferenceRelations(ctx context.Context, data *schema.ProblemData, opts *Options) (*schema.PreferenceResult, error) {
	o := opts.normalized()
	return runPreferences(ctx, o, preferenceBuilder{
		n:         data.NumDMUs(),
		threshold: 1,
		build: func(s, t int, dir solver.Direction) *solver.Spec {
			return model.BuildCCRPreference(data, s, t, dir)
		},
	})
}

// VDEAPreferenceRelations checks the preference relations under the
// additive value model.
func VDEAPreferenceRelations(ctx context.Context, data *schema.VDEAProblemData, opts *Options) (*schema.PreferenceResult, error) {
	o := opts.normalized()
	values := data.ValueMatrix()
	order := data.FactorNames()
	return runPreferences(ctx, o, preferenceBuilder{
		n:         data.NumDMUs(),
		threshold: 0,
		build: func(s, t int, dir solver.Direction) *solver.Spec {
			return model.BuildVDEAPreference(values, data.Constraints, order, s, t, dir)
		},
	})
}

// HierarchicalVDEAPreferenceRelations checks the preference relations at
// the named hierarchy node.
func HierarchicalVDEAPreferenceRelations(ctx context.Context, data *schema.HierarchicalVDEAProblemData, node string, opts *Options) (*schema.PreferenceResult, error) {
	o := opts.normalized()
	hc, err := model.NewHierarchyContext(data, node)
	if err != nil {
		return nil, err
	}
	values := data.ValueMatrix()
	return runPreferences(ctx, o, preferenceBuilder{
		n:         data.NumDMUs(),
		threshold: 0,
		build: func(s, t int, dir solver.Direction) *solver.Spec {
			return model.BuildHierarchicalPreference(values, hc, s, t, dir)
		},
	})
}

// ImpreciseVDEAPreferenceRelations checks the preference relations over
// weights and admissible realizations jointly.
func ImpreciseVDEAPreferenceRelations(ctx context.Context, data *schema.ImpreciseVDEAProblemData, opts *Options) (*schema.PreferenceResult, error) {
	o := opts.normalized()
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return runPreferences(ctx, o, preferenceBuilder{
		n:         data.NumDMUs(),
		threshold: 0,
		build: func(s, t int, dir solver.Direction) *solver.Spec {
			return model.BuildImpreciseVDEAPreference(data, s, t, dir)
		},
	})
}

// ImpreciseCCRPreferenceRelations checks the preference relations of the
// imprecise ratio model.
func ImpreciseCCRPreferenceRelations(ctx context.Context, data *schema.CCRImpreciseProblemData, opts *Options) (*schema.PreferenceResult, error) {
	o := opts.normalized()
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return runPreferences(ctx, o, preferenceBuilder{
		n:         data.NumDMUs(),
		threshold: 1,
		build: func(s, t int, dir solver.Direction) *solver.Spec {
			return model.BuildImpreciseCCRPreference(data, s, t, dir)
		},
	})
}
