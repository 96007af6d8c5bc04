package model

import (
	"math"

	"github.com/deatools/deascope/internal/solver"
	"github.com/deatools/deascope/schema"
)

// ImpreciseValueBounds computes, per DMU and factor, the attainable range
// of the marginal value: the envelopes evaluated at the most and least
// favorable end of the performance interval. Ordinal factors are bounded by
// the value chain their rank position admits under the monotonicity ratio.
func ImpreciseValueBounds(data *schema.ImpreciseVDEAProblemData) (lo, hi [][]float64) {
	names := data.FactorNames()
	n := data.NumDMUs()
	lo = make([][]float64, n)
	hi = make([][]float64, n)
	for i := 0; i < n; i++ {
		lo[i] = make([]float64, len(names))
		hi[i] = make([]float64, len(names))
	}
	rho := data.Imprecise.VFMonotonicityRatio
	for j, name := range names {
		if data.Imprecise.Ordinal(name) {
			for i := 0; i < n; i++ {
				rank, _ := data.Interval(i, name)
				lo[i][j] = 0
				hi[i][j] = math.Pow(rho, -(float64(n) - rank))
			}
			continue
		}
		r := data.Range(name)
		for i := 0; i < n; i++ {
			a, b := data.Interval(i, name)
			if r.Gain() {
				lo[i][j] = r.Lower.Value(a)
				hi[i][j] = r.Upper.Value(b)
			} else {
				lo[i][j] = r.Lower.Value(b)
				hi[i][j] = r.Upper.Value(a)
			}
		}
	}
	return lo, hi
}

// impreciseVDEABase lays out the joint weight/value variable space: factor
// weights on the simplex with the custom restrictions, and per DMU and
// factor the weighted value z_{f,k} = w_f*u_f(x_k), bounded by the scaled
// attainable range. Realization consistency is kept linear: surely-ordered
// interval pairs order their z values, and ordinal factors chain
// rank-consecutive z values by the monotonicity ratio.
func impreciseVDEABase(spec *solver.Spec, data *schema.ImpreciseVDEAProblemData) (cols factorCols, z [][]int) {
	names := data.FactorNames()
	n := data.NumDMUs()
	cols = vdeaVars(spec, names)
	addWeightConstraints(spec, data.Constraints, cols, -1)

	loV, hiV := ImpreciseValueBounds(data)
	z = make([][]int, n)
	for i := 0; i < n; i++ {
		z[i] = make([]int, len(names))
		for j := range names {
			z[i][j] = spec.AddVariable("z", 0, solver.Inf())
		}
	}
	for j, name := range names {
		w := cols[name]
		for i := 0; i < n; i++ {
			// z <= hi*w and z >= lo*w.
			spec.AddConstraint([]solver.Term{{Var: z[i][j], Coef: 1}, {Var: w, Coef: -hiV[i][j]}}, solver.LEQ, 0)
			spec.AddConstraint([]solver.Term{{Var: z[i][j], Coef: 1}, {Var: w, Coef: -loV[i][j]}}, solver.GEQ, 0)
		}
		if data.Imprecise.Ordinal(name) {
			ranks := make([]float64, n)
			for i := 0; i < n; i++ {
				ranks[i], _ = data.Interval(i, name)
			}
			order := schema.RankOrder(ranks)
			rho := data.Imprecise.VFMonotonicityRatio
			for r := 0; r+1 < n; r++ {
				worse, better := order[r], order[r+1]
				spec.AddConstraint([]solver.Term{
					{Var: z[better][j], Coef: 1},
					{Var: z[worse][j], Coef: -rho},
				}, solver.GEQ, 0)
			}
			continue
		}
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				if a == b || !valueSurelyLeq(data, name, a, b) {
					continue
				}
				spec.AddConstraint([]solver.Term{
					{Var: z[b][j], Coef: 1},
					{Var: z[a][j], Coef: -1},
				}, solver.GEQ, 0)
			}
		}
	}
	return cols, z
}

// valueSurelyLeq reports whether DMU a's marginal value on the factor is
// forced below DMU b's under every admissible realization.
func valueSurelyLeq(data *schema.ImpreciseVDEAProblemData, name string, a, b int) bool {
	loA, hiA := data.Interval(a, name)
	loB, hiB := data.Interval(b, name)
	if data.Range(name).Gain() {
		return hiA <= loB
	}
	return loA >= hiB
}

// sumRow returns Σ_j z[k][j] as solver terms with the given sign.
func sumRow(z [][]int, k int, sign float64) []solver.Term {
	terms := make([]solver.Term, len(z[k]))
	for j, v := range z[k] {
		terms[j] = solver.Term{Var: v, Coef: sign}
	}
	return terms
}

// BuildImpreciseVDEAExtremeEfficiency optimizes the subject's efficiency
// alone; no cross-DMU coupling binds a single unit, so the attainable value
// bounds become plain objective coefficients.
func BuildImpreciseVDEAExtremeEfficiency(data *schema.ImpreciseVDEAProblemData, s int, dir solver.Direction) *solver.Spec {
	loV, hiV := ImpreciseValueBounds(data)
	values := loV
	if dir == solver.Maximize {
		values = hiV
	}
	return BuildVDEAExtremeEfficiency(values, data.Constraints, data.FactorNames(), s, dir)
}

// BuildImpreciseVDEAMinDistance minimizes the distance of s to the best
// unit over weights and admissible realizations jointly.
func BuildImpreciseVDEAMinDistance(data *schema.ImpreciseVDEAProblemData, s int) *solver.Spec {
	spec := solver.NewSpec(solver.Minimize)
	_, z := impreciseVDEABase(spec, data)
	gap := spec.AddVariable("d", 0, solver.Inf())
	spec.SetObjective(gap, 1)
	for k := range z {
		terms := append(sumRow(z, k, 1), sumRow(z, s, -1)...)
		terms = append(terms, solver.Term{Var: gap, Coef: -1})
		spec.AddConstraint(terms, solver.LEQ, 0)
	}
	return spec
}

// BuildImpreciseVDEAMaxDistance maximizes E(best) - E(s) while the
// candidate best unit dominates every other, over weights and realizations.
func BuildImpreciseVDEAMaxDistance(data *schema.ImpreciseVDEAProblemData, s, best int) *solver.Spec {
	spec := solver.NewSpec(solver.Maximize)
	_, z := impreciseVDEABase(spec, data)
	for k := range z {
		if k == best {
			continue
		}
		terms := append(sumRow(z, k, 1), sumRow(z, best, -1)...)
		spec.AddConstraint(terms, solver.LEQ, 0)
	}
	accumulateObjective(spec, append(sumRow(z, best, 1), sumRow(z, s, -1)...))
	return spec
}

// BuildImpreciseVDEAPreference optimizes E(s) - E(t) over weights and
// realizations; minimizing answers necessary preference, maximizing
// possible preference.
func BuildImpreciseVDEAPreference(data *schema.ImpreciseVDEAProblemData, s, t int, dir solver.Direction) *solver.Spec {
	spec := solver.NewSpec(dir)
	_, z := impreciseVDEABase(spec, data)
	accumulateObjective(spec, append(sumRow(z, s, 1), sumRow(z, t, -1)...))
	return spec
}

// accumulateObjective adds terms into the objective, summing coefficients
// that land on the same variable.
func accumulateObjective(spec *solver.Spec, terms []solver.Term) {
	for _, t := range terms {
		spec.Objective[t.Var] += t.Coef
	}
}
