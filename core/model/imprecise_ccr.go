package model

import (
	"fmt"

	"github.com/deatools/deascope/internal/sampler"
	"github.com/deatools/deascope/internal/solver"
	"github.com/deatools/deascope/schema"
)

// iccrSpace holds the variable layout of an imprecise ratio model: one
// weight per precise factor, and for each ordinal factor a weight plus the
// weighted realizations z_{f,k} = w_f*x_{f,k} chained by rank. Interval
// performances are resolved to the question's favorable or adversarial
// endpoints, so they stay constants.
type iccrSpace struct {
	data *schema.CCRImpreciseProblemData
	cols factorCols
	z    map[string][]int // ordinal factor -> per-DMU weighted realization
	tau  int
}

// newICCRSpace adds all variables and the ordinal chains to the spec.
func newICCRSpace(spec *solver.Spec, data *schema.CCRImpreciseProblemData) *iccrSpace {
	sp := &iccrSpace{data: data, cols: make(factorCols), z: make(map[string][]int), tau: -1}
	n := data.NumDMUs()
	for _, name := range data.FactorNames() {
		sp.cols[name] = spec.AddVariable("w_"+name, 0, solver.Inf())
	}
	for _, c := range data.Constraints {
		if c.RHS != 0 {
			sp.tau = spec.AddVariable("tau", 0, solver.Inf())
			break
		}
	}
	ii := data.Imprecise
	for _, name := range ii.OrdinalFactors {
		w := sp.cols[name]
		zs := make([]int, n)
		for i := 0; i < n; i++ {
			zs[i] = spec.AddVariable("z", 0, solver.Inf())
			// Realizations live on a unit scale: z <= w.
			spec.AddConstraint([]solver.Term{{Var: zs[i], Coef: 1}, {Var: w, Coef: -1}}, solver.LEQ, 0)
		}
		ranks := make([]float64, n)
		for i := 0; i < n; i++ {
			ranks[i], _ = data.Interval(i, name)
		}
		order := schema.RankOrder(ranks)
		// Lowest rank sits above the floor, consecutive ranks keep the
		// multiplicative gap.
		spec.AddConstraint([]solver.Term{
			{Var: zs[order[0]], Coef: 1},
			{Var: w, Coef: -ii.OrdinalMin},
		}, solver.GEQ, 0)
		for r := 0; r+1 < n; r++ {
			spec.AddConstraint([]solver.Term{
				{Var: zs[order[r+1]], Coef: 1},
				{Var: zs[order[r]], Coef: -ii.OrdinalRatio},
			}, solver.GEQ, 0)
		}
		sp.z[name] = zs
	}
	sp.addCustom(spec)
	return sp
}

func (sp *iccrSpace) addCustom(spec *solver.Spec) {
	addWeightConstraints(spec, sp.data.Constraints, sp.cols, sp.tau)
}

// inputTerms builds Σ v_i*x_{i,k}: interval inputs resolved to their lower
// end when the DMU is favored and the upper end otherwise, ordinal inputs
// contributing their weighted realization variable.
func (sp *iccrSpace) inputTerms(k int, favored bool) []solver.Term {
	var terms []solver.Term
	for _, name := range sp.data.InputNames {
		if zs, ok := sp.z[name]; ok {
			terms = append(terms, solver.Term{Var: zs[k], Coef: 1})
			continue
		}
		lo, hi := sp.data.Interval(k, name)
		x := hi
		if favored {
			x = lo
		}
		terms = append(terms, solver.Term{Var: sp.cols[name], Coef: x})
	}
	return terms
}

// outputTerms builds Σ u_r*y_{r,k}, the upper end when favored.
func (sp *iccrSpace) outputTerms(k int, favored bool) []solver.Term {
	var terms []solver.Term
	for _, name := range sp.data.OutputNames {
		if zs, ok := sp.z[name]; ok {
			terms = append(terms, solver.Term{Var: zs[k], Coef: 1})
			continue
		}
		lo, hi := sp.data.Interval(k, name)
		y := lo
		if favored {
			y = hi
		}
		terms = append(terms, solver.Term{Var: sp.cols[name], Coef: y})
	}
	return terms
}

// ratioRow caps DMU k's ratio at one: Σu*y_k - Σv*x_k <= 0, with k's
// interval endpoints resolved by favored.
func (sp *iccrSpace) ratioRow(spec *solver.Spec, k int, favored bool) {
	terms := sp.outputTerms(k, favored)
	for _, t := range sp.inputTerms(k, favored) {
		terms = append(terms, solver.Term{Var: t.Var, Coef: -t.Coef})
	}
	spec.AddConstraint(terms, solver.LEQ, 0)
}

// BuildImpreciseCCRMaxEfficiency is the best-case ratio LP of DMU s: the
// subject realized favorably, every rival adversarially weak.
func BuildImpreciseCCRMaxEfficiency(data *schema.CCRImpreciseProblemData, s int) *solver.Spec {
	spec := solver.NewSpec(solver.Maximize)
	sp := newICCRSpace(spec, data)
	spec.AddConstraint(sp.inputTerms(s, true), solver.EQ, 1)
	for k := 0; k < data.NumDMUs(); k++ {
		sp.ratioRow(spec, k, k == s)
	}
	accumulateObjective(spec, sp.outputTerms(s, true))
	return spec
}

// BuildImpreciseCCRSuperEfficiency drops the subject's own cap.
func BuildImpreciseCCRSuperEfficiency(data *schema.CCRImpreciseProblemData, s int) *solver.Spec {
	spec := solver.NewSpec(solver.Maximize)
	sp := newICCRSpace(spec, data)
	spec.AddConstraint(sp.inputTerms(s, true), solver.EQ, 1)
	for k := 0; k < data.NumDMUs(); k++ {
		if k != s {
			sp.ratioRow(spec, k, false)
		}
	}
	accumulateObjective(spec, sp.outputTerms(s, true))
	return spec
}

// BuildImpreciseCCRMinEfficiency is the worst-case ratio LP of DMU s for
// one candidate best unit: the subject realized adversarially, rivals
// favorably, the candidate's ratio pinned to one.
func BuildImpreciseCCRMinEfficiency(data *schema.CCRImpreciseProblemData, s, best int) *solver.Spec {
	spec := solver.NewSpec(solver.Minimize)
	sp := newICCRSpace(spec, data)
	spec.AddConstraint(sp.inputTerms(s, false), solver.EQ, 1)
	terms := sp.outputTerms(best, best != s)
	for _, t := range sp.inputTerms(best, best != s) {
		terms = append(terms, solver.Term{Var: t.Var, Coef: -t.Coef})
	}
	spec.AddConstraint(terms, solver.EQ, 0)
	for k := 0; k < data.NumDMUs(); k++ {
		if k != best {
			sp.ratioRow(spec, k, k != s)
		}
	}
	accumulateObjective(spec, sp.outputTerms(s, false))
	return spec
}

// BuildImpreciseCCRPreference compares s against t with the two-sided
// Charnes-Cooper normalization of the precise ratio model; the subject is
// realized adversarially for the necessary question (minimize) and
// favorably for the possible one (maximize), the rival the other way.
func BuildImpreciseCCRPreference(data *schema.CCRImpreciseProblemData, s, t int, dir solver.Direction) *solver.Spec {
	spec := solver.NewSpec(dir)
	sp := newICCRSpace(spec, data)
	favorSubject := dir == solver.Maximize
	spec.AddConstraint(sp.inputTerms(s, favorSubject), solver.EQ, 1)
	terms := sp.outputTerms(t, !favorSubject)
	for _, tm := range sp.inputTerms(t, !favorSubject) {
		terms = append(terms, solver.Term{Var: tm.Var, Coef: -tm.Coef})
	}
	spec.AddConstraint(terms, solver.EQ, 0)
	accumulateObjective(spec, sp.outputTerms(s, favorSubject))
	return spec
}

// BuildImpreciseCCRWeightPolytope is the sampling region over all factor
// weights; realizations are drawn separately by the performance sampler.
func BuildImpreciseCCRWeightPolytope(data *schema.CCRImpreciseProblemData) *sampler.Polytope {
	order := data.FactorNames()
	p := sampler.NewPolytope(len(order))
	p.AddNonneg()
	p.AddSumTo(1)
	for _, c := range data.Constraints {
		appendPolytopeConstraint(p, c, order)
	}
	return p
}

// ImpreciseCCRSampleEfficiencies scores every DMU for one weight sample and
// one performance realization, normalized by the best ratio.
func ImpreciseCCRSampleEfficiencies(data *schema.CCRImpreciseProblemData, w []float64, perf sampler.PerformanceSample) ([]float64, error) {
	n := data.NumDMUs()
	names := data.FactorNames()
	out := make([]float64, n)
	best := 0.0
	for k := 0; k < n; k++ {
		num, den := 0.0, 0.0
		for j, name := range names {
			v := perf[name][k]
			if data.IsInput(name) {
				den += w[j] * v
			} else {
				num += w[j] * v
			}
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
