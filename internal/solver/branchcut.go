package solver

import (
	"context"
	"math"
)

// branchAndBound solves a mixed-integer Spec by depth-first branching on
// fractional integer variables, pruning against the incumbent.
func (sx *Simplex) branchAndBound(ctx context.Context, spec *Spec) (*Result, error) {
	root := *spec
	root.Vars = append([]Variable(nil), spec.Vars...)

	var incumbent *Result
	nodes := 0

	better := func(obj float64) bool {
		if incumbent == nil {
			return true
		}
		if spec.Direction == Maximize {
			return obj > incumbent.Objective+sx.Tol
		}
		return obj < incumbent.Objective-sx.Tol
	}

	var walk func(node *Spec) error
	walk = func(node *Spec) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		nodes++
		if nodes > sx.MaxNodes {
			return errNodeBudget
		}
		res, err := sx.solveLP(node, nil)
		if err != nil {
			return err
		}
		switch res.Status {
		case Infeasible:
			return nil
		case Unbounded:
			// An unbounded relaxation at the root means an unbounded or
			// ill-posed integer model; deeper down it cannot improve a
			// bounded incumbent, so it is treated the same way.
			return errRelaxUnbounded
		case Numerical:
			return errRelaxNumerical
		}
		if !better(res.Objective) {
			return nil // bound: the relaxation cannot beat the incumbent
		}

		frac := -1
		for i, v := range node.Vars {
			if !v.Integer {
				continue
			}
			if math.Abs(res.Values[i]-math.Round(res.Values[i])) > sx.IntTol {
				frac = i
				break
			}
		}
		if frac < 0 {
			incumbent = res
			return nil
		}

		val := res.Values[frac]
		down := cloneWithBound(node, frac, node.Vars[frac].Lower, math.Floor(val))
		if err := walk(down); err != nil {
			return err
		}
		up := cloneWithBound(node, frac, math.Ceil(val), node.Vars[frac].Upper)
		return walk(up)
	}

	if err := walk(&root); err != nil {
		switch err {
		case errRelaxUnbounded:
			return &Result{Status: Unbounded}, nil
		case errRelaxNumerical, errNodeBudget:
			return &Result{Status: Numerical}, nil
		default:
			return nil, err
		}
	}
	if incumbent == nil {
		// Every leaf was pruned infeasible or no integral point exists.
		return &Result{Status: Infeasible}, nil
	}
	// Snap integer values onto the grid before handing them back.
	for i, v := range spec.Vars {
		if v.Integer {
			incumbent.Values[i] = math.Round(incumbent.Values[i])
		}
	}
	return incumbent, nil
}

func cloneWithBound(spec *Spec, v int, lower, upper float64) *Spec {
	out := *spec
	out.Vars = append([]Variable(nil), spec.Vars...)
	out.Vars[v].Lower = lower
	out.Vars[v].Upper = upper
	return &out
}

// Internal control-flow sentinels for the branch-and-bound walk.
var (
	errRelaxUnbounded = sentinel("relaxation unbounded")
	errRelaxNumerical = sentinel("relaxation numerical failure")
	errNodeBudget     = sentinel("node budget exhausted")
)

type sentinel string

func (s sentinel) Error() string { return string(s) }
