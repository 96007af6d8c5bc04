package model

import (
	"fmt"

	"github.com/deatools/deascope/internal/sampler"
	"github.com/deatools/deascope/internal/solver"
	"github.com/deatools/deascope/schema"
)

// ccrVars adds one nonnegative weight variable per factor (v for inputs,
// u for outputs) plus, when any custom constraint carries a constant
// right-hand side, the Charnes-Cooper scale variable.
func ccrVars(spec *solver.Spec, data *schema.ProblemData) (factorCols, int) {
	cols := make(factorCols, data.NumInputs()+data.NumOutputs())
	for _, name := range data.InputNames {
		cols[name] = spec.AddVariable("v_"+name, 0, solver.Inf())
	}
	for _, name := range data.OutputNames {
		cols[name] = spec.AddVariable("u_"+name, 0, solver.Inf())
	}
	tau := -1
	for _, c := range data.Constraints {
		if c.RHS != 0 {
			tau = spec.AddVariable("tau", 0, solver.Inf())
			break
		}
	}
	return cols, tau
}

// inputTerms returns Σ v_i x_{i,k} as solver terms.
func inputTerms(data *schema.ProblemData, cols factorCols, k int) []solver.Term {
	terms := make([]solver.Term, 0, data.NumInputs())
	for j, name := range data.InputNames {
		terms = append(terms, solver.Term{Var: cols[name], Coef: data.Inputs[k][j]})
	}
	return terms
}

// outputTerms returns Σ u_r y_{r,k} as solver terms.
func outputTerms(data *schema.ProblemData, cols factorCols, k int) []solver.Term {
	terms := make([]solver.Term, 0, data.NumOutputs())
	for j, name := range data.OutputNames {
		terms = append(terms, solver.Term{Var: cols[name], Coef: data.Outputs[k][j]})
	}
	return terms
}

// ratioRows adds the Σu*y_k - Σv*x_k <= 0 row for every DMU in keep.
func ratioRows(spec *solver.Spec, data *schema.ProblemData, cols factorCols, keep func(k int) bool) {
	for k := 0; k < data.NumDMUs(); k++ {
		if !keep(k) {
			continue
		}
		terms := outputTerms(data, cols, k)
		for _, t := range inputTerms(data, cols, k) {
			terms = append(terms, solver.Term{Var: t.Var, Coef: -t.Coef})
		}
		spec.AddConstraint(terms, solver.LEQ, 0)
	}
}

// BuildCCRMaxEfficiency is the classic Charnes-Cooper multiplier LP for the
// best-case efficiency of DMU s: maximize Σu*y_s with Σv*x_s normalized to
// one and every DMU's ratio capped at one.
func BuildCCRMaxEfficiency(data *schema.ProblemData, s int) *solver.Spec {
	spec := solver.NewSpec(solver.Maximize)
	cols, tau := ccrVars(spec, data)
	spec.AddConstraint(inputTerms(data, cols, s), solver.EQ, 1)
	ratioRows(spec, data, cols, func(int) bool { return true })
	addWeightConstraints(spec, data.Constraints, cols, tau)
	for _, t := range outputTerms(data, cols, s) {
		spec.SetObjective(t.Var, t.Coef)
	}
	return spec
}

// BuildCCRSuperEfficiency drops the subject's own ratio cap, so efficient
// units score above one.
func BuildCCRSuperEfficiency(data *schema.ProblemData, s int) *solver.Spec {
	spec := solver.NewSpec(solver.Maximize)
	cols, tau := ccrVars(spec, data)
	spec.AddConstraint(inputTerms(data, cols, s), solver.EQ, 1)
	ratioRows(spec, data, cols, func(k int) bool { return k != s })
	addWeightConstraints(spec, data.Constraints, cols, tau)
	for _, t := range outputTerms(data, cols, s) {
		spec.SetObjective(t.Var, t.Coef)
	}
	return spec
}

// BuildCCRMinEfficiency builds the worst-case efficiency LP of DMU s for one
// candidate best unit: the candidate's ratio is pinned to one, everyone else
// stays below it, and Σu*y_s is minimized. The driver takes the minimum over
// all candidates; candidates that can never be best come back infeasible.
func BuildCCRMinEfficiency(data *schema.ProblemData, s, best int) *solver.Spec {
	spec := solver.NewSpec(solver.Minimize)
	cols, tau := ccrVars(spec, data)
	spec.AddConstraint(inputTerms(data, cols, s), solver.EQ, 1)
	terms := outputTerms(data, cols, best)
	for _, t := range inputTerms(data, cols, best) {
		terms = append(terms, solver.Term{Var: t.Var, Coef: -t.Coef})
	}
	spec.AddConstraint(terms, solver.EQ, 0)
	ratioRows(spec, data, cols, func(k int) bool { return k != best })
	addWeightConstraints(spec, data.Constraints, cols, tau)
	for _, t := range outputTerms(data, cols, s) {
		spec.SetObjective(t.Var, t.Coef)
	}
	return spec
}

// BuildCCRPreference compares the ratio efficiencies of s and t under a
// shared weight vector. Independent rescaling of the input and output sides
// leaves every efficiency ratio E(s)/E(t) unchanged, so the model pins
// E(t) = 1 (Σu*y_t = Σv*x_t) and Σv*x_s = 1; the objective Σu*y_s then
// equals E(s)/E(t). Minimizing answers the necessary question (optimum >= 1
// means s is preferred for every weight), maximizing the possible one.
func BuildCCRPreference(data *schema.ProblemData, s, t int, dir solver.Direction) *solver.Spec {
	spec := solver.NewSpec(dir)
	cols, tau := ccrVars(spec, data)
	spec.AddConstraint(inputTerms(data, cols, s), solver.EQ, 1)
	terms := outputTerms(data, cols, t)
	for _, tm := range inputTerms(data, cols, t) {
		terms = append(terms, solver.Term{Var: tm.Var, Coef: -tm.Coef})
	}
	spec.AddConstraint(terms, solver.EQ, 0)
	addWeightConstraints(spec, data.Constraints, cols, tau)
	for _, tm := range outputTerms(data, cols, s) {
		spec.SetObjective(tm.Var, tm.Coef)
	}
	return spec
}

// BuildCCRWeightPolytope is the sampling region for the ratio model: all
// factor weights nonnegative, jointly normalized to sum one, plus the
// custom restrictions. Coordinate order follows FactorNames.
func BuildCCRWeightPolytope(data *schema.ProblemData) *sampler.Polytope {
	order := data.FactorNames()
	p := sampler.NewPolytope(len(order))
	p.AddNonneg()
	p.AddSumTo(1)
	for _, c := range data.Constraints {
		appendPolytopeConstraint(p, c, order)
	}
	return p
}

// CCRSampleEfficiencies scores every DMU for one sampled weight vector
// (ordered like FactorNames): raw output/input ratios normalized by the
// best ratio, landing in (0, 1]. A degenerate sample where some input
// aggregate vanishes reports an error so the driver can skip it.
func CCRSampleEfficiencies(data *schema.ProblemData, w []float64) ([]float64, error) {
	n := data.NumDMUs()
	mIn := data.NumInputs()
	out := make([]float64, n)
	best := 0.0
	for k := 0; k < n; k++ {
		den := 0.0
		for j := 0; j < mIn; j++ {
			den += w[j] * data.Inputs[k][j]
		}
		num := 0.0
		for j := 0; j < data.NumOutputs(); j++ {
			num += w[mIn+j] * data.Outputs[k][j]
		}
		if den <= 0 {
			return nil, fmt.Errorf("degenerate sample: zero input aggregate for dmu %d", k)
		}
		out[k] = num / den
		if out[k] > best {
			best = out[k]
		}
	}
	if best <= 0 {
		return nil, fmt.Errorf("degenerate sample: zero output aggregates")
	}
	for k := range out {
		out[k] /= best
	}
	return out, nil
}
