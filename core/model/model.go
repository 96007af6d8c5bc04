// Package model builds solver-agnostic LP/MILP instances for every pair of
// efficiency model and robustness question. Builders are free functions from
// problem data (and a subject DMU, possibly a rival) to a solver.Spec; no
// driver state leaks into them.
package model

import (
	"github.com/deatools/deascope/internal/sampler"
	"github.com/deatools/deascope/internal/solver"
	"github.com/deatools/deascope/schema"
)

// Epsilon has the value of the drivers' default strict-inequality tolerance
// (core.DefaultEpsilon). The model builders do not read it; the tolerance
// they use comes from the driver options.
const Epsilon = 1e-9

// factorCols maps factor names onto solver variable indices.
type factorCols map[string]int

// addWeightConstraints appends the problem's custom weight restrictions to
// the spec. A non-negative scale variable homogenizes constant right-hand
// sides under Charnes-Cooper style normalizations: pass tau < 0 when the
// weights are not rescaled and constants apply verbatim.
func addWeightConstraints(spec *solver.Spec, cons []schema.WeightConstraint, cols factorCols, tau int) {
	for _, c := range cons {
		terms := make([]solver.Term, 0, len(c.Coeffs)+1)
		for _, name := range c.FactorNames() {
			terms = append(terms, solver.Term{Var: cols[name], Coef: c.Coeffs[name]})
		}
		rhs := c.RHS
		if tau >= 0 && c.RHS != 0 {
			terms = append(terms, solver.Term{Var: tau, Coef: -c.RHS})
			rhs = 0
		}
		spec.AddConstraint(terms, opFor(c.Operator), rhs)
	}
}

func opFor(op schema.ConstraintOperator) solver.Op {
	switch op {
	case schema.LEQ:
		return solver.LEQ
	case schema.GEQ:
		return solver.GEQ
	default:
		return solver.EQ
	}
}

// constraintRow lowers one weight constraint onto a dense coefficient
// vector over the given factor order, for polytope assembly.
func constraintRow(c schema.WeightConstraint, order []string) []float64 {
	row := make([]float64, len(order))
	for j, name := range order {
		row[j] = c.Coeffs[name]
	}
	return row
}

// appendPolytopeConstraint adds one weight constraint to a sampler polytope,
// splitting equalities and flipping ">=" rows into "<=" form.
func appendPolytopeConstraint(p *sampler.Polytope, c schema.WeightConstraint, order []string) {
	row := constraintRow(c, order)
	switch c.Operator {
	case schema.LEQ:
		p.AddIneq(row, c.RHS)
	case schema.GEQ:
		neg := make([]float64, len(row))
		for i, v := range row {
			neg[i] = -v
		}
		p.AddIneq(neg, -c.RHS)
	case schema.EQ:
		p.AddEq(row, c.RHS)
	}
}
