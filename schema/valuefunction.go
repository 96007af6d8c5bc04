package schema

import (
	"fmt"
	"sort"
)

// Point is one characteristic point (abscissa, value) of a marginal value
// function given as a piecewise-linear shape.
type Point struct {
	X float64 // Performance abscissa
	U float64 // Marginal value at X, within [0, 1]
}

// ValueFunction is a monotone piecewise-linear marginal value function given
// by its characteristic points with strictly increasing abscissae. The value
// runs from 0 to 1 across the points; a gain function rises with X and a
// cost function falls with X.
type ValueFunction struct {
	Points []Point
}

// NewValueFunction validates and returns a value function over the given
// characteristic points. Points must have strictly increasing abscissae,
// values monotone in one direction, and terminal values 0 and 1.
func NewValueFunction(points []Point) (ValueFunction, error) {
	f := ValueFunction{Points: append([]Point(nil), points...)}
	if err := f.validate(); err != nil {
		return ValueFunction{}, err
	}
	return f, nil
}

// LinearGain returns the linear gain function mapping [lo, hi] onto [0, 1].
func LinearGain(lo, hi float64) ValueFunction {
	return ValueFunction{Points: []Point{{X: lo, U: 0}, {X: hi, U: 1}}}
}

// LinearCost returns the linear cost function mapping [lo, hi] onto [1, 0].
func LinearCost(lo, hi float64) ValueFunction {
	return ValueFunction{Points: []Point{{X: lo, U: 1}, {X: hi, U: 0}}}
}

// Gain reports whether the function is increasing in the performance.
func (f ValueFunction) Gain() bool {
	n := len(f.Points)
	if n < 2 {
		return true
	}
	return f.Points[0].U <= f.Points[n-1].U
}

// Value evaluates the function at x by linear interpolation. Arguments
// outside the covered abscissa range clamp to the terminal values.
func (f ValueFunction) Value(x float64) float64 {
	pts := f.Points
	n := len(pts)
	if n == 0 {
		return 0
	}
	if x <= pts[0].X {
		return pts[0].U
	}
	if x >= pts[n-1].X {
		return pts[n-1].U
	}
	// First point with abscissa above x; its predecessor starts the segment.
	i := sort.Search(n, func(i int) bool { return pts[i].X > x })
	a, b := pts[i-1], pts[i]
	t := (x - a.X) / (b.X - a.X)
	return a.U + t*(b.U-a.U)
}

// Abscissae returns the x-coordinates of the characteristic points.
func (f ValueFunction) Abscissae() []float64 {
	xs := make([]float64, len(f.Points))
	for i, p := range f.Points {
		xs[i] = p.X
	}
	return xs
}

func (f ValueFunction) validate() error {
	pts := f.Points
	if len(pts) < 2 {
		return &ConfigError{Op: "value function", Msg: "needs at least two characteristic points"}
	}
	dir := 0 // +1 gain, -1 cost
	for i := 1; i < len(pts); i++ {
		if pts[i].X <= pts[i-1].X {
			return &ConfigError{Op: "value function",
				Msg: fmt.Sprintf("abscissae must strictly increase, got %g after %g", pts[i].X, pts[i-1].X)}
		}
		switch {
		case pts[i].U > pts[i-1].U:
			if dir < 0 {
				return &ConfigError{Op: "value function", Msg: "values must be monotone in one direction"}
			}
			dir = 1
		case pts[i].U < pts[i-1].U:
			if dir > 0 {
				return &ConfigError{Op: "value function", Msg: "values must be monotone in one direction"}
			}
			dir = -1
		}
	}
	lo, hi := pts[0].U, pts[len(pts)-1].U
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo != 0 || hi != 1 {
		return &ConfigError{Op: "value function",
			Msg: fmt.Sprintf("terminal values must span [0,1], got %g and %g", pts[0].U, pts[len(pts)-1].U)}
	}
	return nil
}

// ValueFunctionRange is an admissible family of marginal value functions
// bounded by a lower and an upper envelope over a shared abscissa grid.
// A single exact shape is the degenerate range with Lower == Upper.
type ValueFunctionRange struct {
	Lower ValueFunction
	Upper ValueFunction
}

// ExactRange wraps a single shape as a degenerate range.
func ExactRange(f ValueFunction) ValueFunctionRange {
	return ValueFunctionRange{Lower: f, Upper: f}
}

// Gain reports the direction shared by both envelopes.
func (r ValueFunctionRange) Gain() bool { return r.Lower.Gain() }

// Exact reports whether the range admits exactly one shape.
func (r ValueFunctionRange) Exact() bool {
	if len(r.Lower.Points) != len(r.Upper.Points) {
		return false
	}
	for i, p := range r.Lower.Points {
		if p != r.Upper.Points[i] {
			return false
		}
	}
	return true
}

// Validate checks the envelope invariants: both shapes valid, shared
// abscissae, same direction, and Lower <= Upper at every breakpoint.
func (r ValueFunctionRange) Validate() error {
	if err := r.Lower.validate(); err != nil {
		return err
	}
	if err := r.Upper.validate(); err != nil {
		return err
	}
	if len(r.Lower.Points) != len(r.Upper.Points) {
		return &ConfigError{Op: "value function range", Msg: "envelopes must share the abscissa grid"}
	}
	if r.Lower.Gain() != r.Upper.Gain() {
		return &ConfigError{Op: "value function range", Msg: "envelopes must share the direction"}
	}
	for i := range r.Lower.Points {
		lo, up := r.Lower.Points[i], r.Upper.Points[i]
		if lo.X != up.X {
			return &ConfigError{Op: "value function range",
				Msg: fmt.Sprintf("abscissa mismatch at point %d: %g vs %g", i, lo.X, up.X)}
		}
		if lo.U > up.U {
			return &ConfigError{Op: "value function range",
				Msg: fmt.Sprintf("lower envelope exceeds upper at x=%g", lo.X)}
		}
	}
	return nil
}
