package solver

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Simplex solves Specs with a dense primal simplex and, for models with
// integer variables, depth-first branch and bound on top of it.
type Simplex struct {
	Tol      float64 // simplex pivot/feasibility tolerance
	IntTol   float64 // integrality tolerance for branch and bound
	MaxNodes int     // branch-and-bound node budget
}

var _ Oracle = (*Simplex)(nil)

// New returns a solver with the default tolerances.
func New() *Simplex {
	return &Simplex{Tol: 1e-9, IntTol: 1e-6, MaxNodes: 4096}
}

// Solve runs the oracle on one model.
func (sx *Simplex) Solve(ctx context.Context, spec *Spec) (*Result, error) {
	return sx.SolveWarm(ctx, spec, nil)
}

// SolveWarm runs the oracle, seeding the simplex with a basis returned by a
// previous solve of a structurally identical model. An unusable basis falls
// back to a cold start.
func (sx *Simplex) SolveWarm(ctx context.Context, spec *Spec, basis []int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if spec.NumIntegers() == 0 {
		return sx.solveLP(spec, basis)
	}
	return sx.branchAndBound(ctx, spec)
}

// row is one compiled constraint in "<=" or "=" form over compiled columns.
type row struct {
	cols  []int
	coefs []float64
	eq    bool
	rhs   float64
}

// compiled is a Spec lowered to standard form: minimize c'z, Az = b, z >= 0.
type compiled struct {
	c        []float64
	a        *mat.Dense
	b        []float64
	posCol   []int     // per variable: column of the positive part
	negCol   []int     // per variable: column of the negative part, -1 if none
	shift    []float64 // per variable: lower-bound shift applied
	constant float64   // objective constant introduced by shifting
	sign     float64   // +1 minimize, -1 maximize
	ncols    int
	status   Status // Optimal unless presolve already decided
}

func (sx *Simplex) compile(spec *Spec) *compiled {
	nv := len(spec.Vars)
	cp := &compiled{
		posCol: make([]int, nv),
		negCol: make([]int, nv),
		shift:  make([]float64, nv),
		sign:   1,
		status: Optimal,
	}
	if spec.Direction == Maximize {
		cp.sign = -1
	}

	// Column assignment. Finite lower bounds are shifted out; free
	// variables are split into positive and negative parts.
	ncols := 0
	for i, v := range spec.Vars {
		if math.IsInf(v.Lower, -1) {
			cp.posCol[i] = ncols
			cp.negCol[i] = ncols + 1
			ncols += 2
		} else {
			cp.shift[i] = v.Lower
			cp.posCol[i] = ncols
			cp.negCol[i] = -1
			ncols++
		}
	}
	cp.ncols = ncols

	var rows []row
	addRow := func(r row) {
		if len(r.cols) == 0 {
			// Constant row: either trivially satisfied or infeasible.
			if r.eq {
				if math.Abs(r.rhs) > sx.Tol {
					cp.status = Infeasible
				}
			} else if r.rhs < -sx.Tol {
				cp.status = Infeasible
			}
			return
		}
		rows = append(rows, r)
	}

	// Spec constraints, shifted and normalized to "<=" or "=".
	for _, con := range spec.Cons {
		sign := 1.0
		if con.Op == GEQ {
			sign = -1
		}
		r := row{eq: con.Op == EQ, rhs: sign * con.RHS}
		for _, t := range con.Terms {
			if t.Coef == 0 {
				continue
			}
			coef := sign * t.Coef
			r.cols = append(r.cols, cp.posCol[t.Var])
			r.coefs = append(r.coefs, coef)
			if nc := cp.negCol[t.Var]; nc >= 0 {
				r.cols = append(r.cols, nc)
				r.coefs = append(r.coefs, -coef)
			}
			r.rhs -= coef * cp.shift[t.Var]
		}
		addRow(r)
	}

	// Finite upper bounds become rows over the shifted columns.
	for i, v := range spec.Vars {
		if math.IsInf(v.Upper, 1) {
			continue
		}
		r := row{rhs: v.Upper - cp.shift[i]}
		r.cols = append(r.cols, cp.posCol[i])
		r.coefs = append(r.coefs, 1)
		if nc := cp.negCol[i]; nc >= 0 {
			r.cols = append(r.cols, nc)
			r.coefs = append(r.coefs, -1)
		}
		addRow(r)
	}

	// Objective over compiled columns.
	cp.c = make([]float64, ncols)
	for i, oc := range spec.Objective {
		if oc == 0 {
			continue
		}
		cp.constant += oc * cp.shift[i]
		cp.c[cp.posCol[i]] += cp.sign * oc
		if nc := cp.negCol[i]; nc >= 0 {
			cp.c[nc] -= cp.sign * oc
		}
	}

	// Slack columns for inequality rows.
	nLeq := 0
	for _, r := range rows {
		if !r.eq {
			nLeq++
		}
	}
	total := ncols + nLeq
	cp.c = append(cp.c, make([]float64, nLeq)...)

	if len(rows) == 0 {
		// No rows at all: feasible at z = 0 unless some cost is negative.
		for _, cj := range cp.c {
			if cj < -sx.Tol {
				cp.status = Unbounded
			}
		}
		cp.a = nil
		return cp
	}

	cp.a = mat.NewDense(len(rows), total, nil)
	cp.b = make([]float64, len(rows))
	slack := ncols
	for ri, r := range rows {
		for k, cl := range r.cols {
			cp.a.Set(ri, cl, cp.a.At(ri, cl)+r.coefs[k])
		}
		cp.b[ri] = r.rhs
		if !r.eq {
			cp.a.Set(ri, slack, 1)
			slack++
		}
	}

	// Structural columns that appear in no row are free riders: negative
	// cost makes the model unbounded, otherwise they stay at zero.
	for j := 0; j < ncols; j++ {
		zero := true
		for ri := 0; ri < len(rows); ri++ {
			if cp.a.At(ri, j) != 0 {
				zero = false
				break
			}
		}
		if zero && cp.c[j] < -sx.Tol {
			cp.status = Unbounded
		}
	}
	return cp
}

// solveLP compiles and solves a pure LP.
func (sx *Simplex) solveLP(spec *Spec, basis []int) (*Result, error) {
	cp := sx.compile(spec)
	if cp.status != Optimal {
		return &Result{Status: cp.status}, nil
	}
	if cp.a == nil {
		return sx.recover(spec, cp, cp.constant, make([]float64, cp.ncols), nil), nil
	}

	m, _ := cp.a.Dims()
	if basis != nil && len(basis) != m {
		basis = nil
	}
	optF, optX, err := lp.Simplex(cp.c, cp.a, cp.b, sx.Tol, basis)
	if err != nil && basis != nil {
		// A stale warm basis is not an answer; retry cold.
		optF, optX, err = lp.Simplex(cp.c, cp.a, cp.b, sx.Tol, nil)
	}
	if err != nil {
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return &Result{Status: Infeasible}, nil
		case errors.Is(err, lp.ErrUnbounded):
			return &Result{Status: Unbounded}, nil
		default:
			return &Result{Status: Numerical}, nil
		}
	}
	return sx.recover(spec, cp, cp.sign*(optF)+cp.constant, optX, supportBasis(optX, m, sx.Tol)), nil
}

// recover maps a standard-form solution back onto the Spec's variables.
func (sx *Simplex) recover(spec *Spec, cp *compiled, objective float64, z []float64, basis []int) *Result {
	values := make([]float64, len(spec.Vars))
	for i := range spec.Vars {
		v := cp.shift[i]
		if pc := cp.posCol[i]; pc < len(z) {
			v += z[pc]
		}
		if nc := cp.negCol[i]; nc >= 0 && nc < len(z) {
			v -= z[nc]
		}
		values[i] = v
	}
	return &Result{Status: Optimal, Objective: objective, Values: values, Basis: basis}
}

// supportBasis derives a warm-start candidate from the solution support.
// Only an exactly-sized support is worth handing back.
func supportBasis(z []float64, m int, tol float64) []int {
	var cols []int
	for j, v := range z {
		if v > tol {
			cols = append(cols, j)
		}
	}
	if len(cols) != m {
		return nil
	}
	return cols
}
