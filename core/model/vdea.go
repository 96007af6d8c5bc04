package model

import (
	"github.com/deatools/deascope/internal/sampler"
	"github.com/deatools/deascope/internal/solver"
	"github.com/deatools/deascope/schema"
)

// vdeaVars adds one nonnegative weight per factor and the simplex row.
func vdeaVars(spec *solver.Spec, order []string) factorCols {
	cols := make(factorCols, len(order))
	terms := make([]solver.Term, 0, len(order))
	for _, name := range order {
		cols[name] = spec.AddVariable("w_"+name, 0, solver.Inf())
		terms = append(terms, solver.Term{Var: cols[name], Coef: 1})
	}
	spec.AddConstraint(terms, solver.EQ, 1)
	return cols
}

// BuildVDEAExtremeEfficiency optimizes Σ w_f*u_f(p_{f,s}) over the weight
// simplex intersected with the custom restrictions. The value matrix rows
// follow DMU order, columns the given factor order.
func BuildVDEAExtremeEfficiency(values [][]float64, cons []schema.WeightConstraint, order []string, s int, dir solver.Direction) *solver.Spec {
	spec := solver.NewSpec(dir)
	cols := vdeaVars(spec, order)
	addWeightConstraints(spec, cons, cols, -1)
	for j, name := range order {
		spec.SetObjective(cols[name], values[s][j])
	}
	return spec
}

// BuildVDEAPreference optimizes the efficiency gap E(s) - E(t). Minimizing
// answers the necessary-preference question (optimum >= 0), maximizing the
// possible one.
func BuildVDEAPreference(values [][]float64, cons []schema.WeightConstraint, order []string, s, t int, dir solver.Direction) *solver.Spec {
	spec := solver.NewSpec(dir)
	cols := vdeaVars(spec, order)
	addWeightConstraints(spec, cons, cols, -1)
	for j, name := range order {
		spec.SetObjective(cols[name], values[s][j]-values[t][j])
	}
	return spec
}

// BuildVDEAMinDistance minimizes the distance to the best unit,
// max_k E(k) - E(s), as an LP with one auxiliary gap variable dominating
// every per-DMU efficiency difference.
func BuildVDEAMinDistance(values [][]float64, cons []schema.WeightConstraint, order []string, s int) *solver.Spec {
	spec := solver.NewSpec(solver.Minimize)
	cols := vdeaVars(spec, order)
	addWeightConstraints(spec, cons, cols, -1)
	gap := spec.AddVariable("d", 0, solver.Inf())
	spec.SetObjective(gap, 1)
	for k := range values {
		terms := make([]solver.Term, 0, len(order)+1)
		for j, name := range order {
			terms = append(terms, solver.Term{Var: cols[name], Coef: values[k][j] - values[s][j]})
		}
		terms = append(terms, solver.Term{Var: gap, Coef: -1})
		spec.AddConstraint(terms, solver.LEQ, 0)
	}
	return spec
}

// BuildVDEAMaxDistance maximizes E(best) - E(s) while the candidate best
// unit stays on top; the driver scans all candidates and keeps the largest
// optimum.
func BuildVDEAMaxDistance(values [][]float64, cons []schema.WeightConstraint, order []string, s, best int) *solver.Spec {
	spec := solver.NewSpec(solver.Maximize)
	cols := vdeaVars(spec, order)
	addWeightConstraints(spec, cons, cols, -1)
	for k := range values {
		if k == best {
			continue
		}
		terms := make([]solver.Term, 0, len(order))
		for j, name := range order {
			terms = append(terms, solver.Term{Var: cols[name], Coef: values[k][j] - values[best][j]})
		}
		spec.AddConstraint(terms, solver.LEQ, 0)
	}
	for j, name := range order {
		spec.SetObjective(cols[name], values[best][j]-values[s][j])
	}
	return spec
}

// BuildVDEAMinRank counts, with one binary per rival, how few units can be
// strictly more efficient than s under a single favorable weight vector.
// Values live in [0, 1], so a unit coefficient is a valid big-M.
func BuildVDEAMinRank(values [][]float64, cons []schema.WeightConstraint, order []string, s int) *solver.Spec {
	spec := solver.NewSpec(solver.Minimize)
	cols := vdeaVars(spec, order)
	addWeightConstraints(spec, cons, cols, -1)
	for k := range values {
		if k == s {
			continue
		}
		b := spec.AddBinaryVariable("beats")
		spec.SetObjective(b, 1)
		terms := make([]solver.Term, 0, len(order)+1)
		for j, name := range order {
			terms = append(terms, solver.Term{Var: cols[name], Coef: values[k][j] - values[s][j]})
		}
		terms = append(terms, solver.Term{Var: b, Coef: -1})
		spec.AddConstraint(terms, solver.LEQ, 0)
	}
	return spec
}

// BuildVDEAMaxRank counts how many units can simultaneously be strictly
// more efficient than s under a single adversarial weight vector.
func BuildVDEAMaxRank(values [][]float64, cons []schema.WeightConstraint, order []string, s int, eps float64) *solver.Spec {
	spec := solver.NewSpec(solver.Maximize)
	cols := vdeaVars(spec, order)
	addWeightConstraints(spec, cons, cols, -1)
	for k := range values {
		if k == s {
			continue
		}
		b := spec.AddBinaryVariable("beats")
		spec.SetObjective(b, 1)
		terms := make([]solver.Term, 0, len(order)+1)
		for j, name := range order {
			terms = append(terms, solver.Term{Var: cols[name], Coef: values[k][j] - values[s][j]})
		}
		// b = 1 forces E(k) - E(s) >= eps; b = 0 relaxes the row entirely.
		terms = append(terms, solver.Term{Var: b, Coef: -(1 + eps)})
		spec.AddConstraint(terms, solver.GEQ, -1)
	}
	return spec
}

// BuildVDEAWeightPolytope is the sampling region of the additive value
// model: the weight simplex cut by the custom restrictions.
func BuildVDEAWeightPolytope(cons []schema.WeightConstraint, order []string) *sampler.Polytope {
	p := sampler.NewPolytope(len(order))
	p.AddNonneg()
	p.AddSumTo(1)
	for _, c := range cons {
		appendPolytopeConstraint(p, c, order)
	}
	return p
}

// VDEASampleScores contracts the value matrix with one weight sample.
func VDEASampleScores(values [][]float64, w []float64) []float64 {
	out := make([]float64, len(values))
	for k, row := range values {
		s := 0.0
		for j, v := range row {
			s += w[j] * v
		}
		out[k] = s
	}
	return out
}
