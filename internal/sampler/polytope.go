package sampler

import (
	"context"
	"math"

	"github.com/deatools/deascope/internal/solver"
	"github.com/deatools/deascope/schema"
)

// Ineq is one inequality a*x <= b of a polytope.
type Ineq struct {
	A []float64
	B float64
}

// Eq is one equality a*x == b of a polytope.
type Eq struct {
	A []float64
	B float64
}

// Polytope is the admissible weight region {x : A x <= b, E x = f}.
// Nonnegativity is not implicit; callers add the rows they need.
type Polytope struct {
	Dim   int
	Ineqs []Ineq
	Eqs   []Eq
}

// NewPolytope returns an empty region of the given dimension.
func NewPolytope(dim int) *Polytope {
	return &Polytope{Dim: dim}
}

// AddIneq appends a*x <= b. The coefficient slice is used as-is.
func (p *Polytope) AddIneq(a []float64, b float64) {
	p.Ineqs = append(p.Ineqs, Ineq{A: a, B: b})
}

// AddEq appends a*x == b. The coefficient slice is used as-is.
func (p *Polytope) AddEq(a []float64, b float64) {
	p.Eqs = append(p.Eqs, Eq{A: a, B: b})
}

// AddNonneg appends x_i >= 0 for every coordinate.
func (p *Polytope) AddNonneg() {
	for i := 0; i < p.Dim; i++ {
		a := make([]float64, p.Dim)
		a[i] = -1
		p.AddIneq(a, 0)
	}
}

// AddSumTo appends Σ x_i == total over all coordinates.
func (p *Polytope) AddSumTo(total float64) {
	a := make([]float64, p.Dim)
	for i := range a {
		a[i] = 1
	}
	p.AddEq(a, total)
}

// Interior finds a strictly interior starting point (relative to the
// affine hull) by solving the Chebyshev-center LP: maximize the radius r
// with a*x + ||a||*r <= b for every inequality, equalities held exactly.
// An empty region surfaces schema.ErrInfeasible.
func (p *Polytope) Interior(ctx context.Context, oracle solver.Oracle) ([]float64, error) {
	spec := solver.NewSpec(solver.Maximize)
	cols := make([]int, p.Dim)
	for i := range cols {
		cols[i] = spec.AddVariable("x", math.Inf(-1), math.Inf(1))
	}
	radius := spec.AddVariable("r", 0, math.Inf(1))
	spec.SetObjective(radius, 1)

	for _, iq := range p.Ineqs {
		terms := make([]solver.Term, 0, p.Dim+1)
		norm := 0.0
		for j, c := range iq.A {
			if c != 0 {
				terms = append(terms, solver.Term{Var: cols[j], Coef: c})
			}
			norm += c * c
		}
		terms = append(terms, solver.Term{Var: radius, Coef: math.Sqrt(norm)})
		spec.AddConstraint(terms, solver.LEQ, iq.B)
	}
	for _, eq := range p.Eqs {
		terms := make([]solver.Term, 0, p.Dim)
		for j, c := range eq.A {
			if c != 0 {
				terms = append(terms, solver.Term{Var: cols[j], Coef: c})
			}
		}
		spec.AddConstraint(terms, solver.EQ, eq.B)
	}

	res, err := oracle.Solve(ctx, spec)
	if err != nil {
		return nil, err
	}
	switch res.Status {
	case solver.Optimal:
		// A zero radius means the inequalities leave no relative interior.
		if res.Objective <= 0 {
			return nil, schema.ErrInfeasible
		}
	case solver.Infeasible:
		return nil, schema.ErrInfeasible
	case solver.Unbounded:
		// The region itself is unbounded; pin the center inside a unit box
		// around the origin and retry.
		boxed := NewPolytope(p.Dim)
		boxed.Ineqs = append([]Ineq(nil), p.Ineqs...)
		boxed.Eqs = append([]Eq(nil), p.Eqs...)
		for i := 0; i < p.Dim; i++ {
			hi := make([]float64, p.Dim)
			hi[i] = 1
			boxed.AddIneq(hi, 1)
			lo := make([]float64, p.Dim)
			lo[i] = -1
			boxed.AddIneq(lo, 1)
		}
		return boxed.Interior(ctx, oracle)
	default:
		return nil, schema.ErrNumerical
	}

	x := make([]float64, p.Dim)
	for i, c := range cols {
		x[i] = res.Values[c]
	}
	return x, nil
}

// Contains reports whether x satisfies every constraint within tol.
func (p *Polytope) Contains(x []float64, tol float64) bool {
	for _, iq := range p.Ineqs {
		if dot(iq.A, x) > iq.B+tol {
			return false
		}
	}
	for _, eq := range p.Eqs {
		if math.Abs(dot(eq.A, x)-eq.B) > tol {
			return false
		}
	}
	return true
}

func dot(a, x []float64) float64 {
	s := 0.0
	for i, c := range a {
		s += c * x[i]
	}
	return s
}
