package solver

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveSimpleLP(t *testing.T) {
	spec := NewSpec(Maximize)
	x := spec.AddVariable("x", 0, Inf())
	y := spec.AddVariable("y", 0, Inf())
	spec.SetObjective(x, 3)
	spec.SetObjective(y, 4)
	spec.AddConstraint([]Term{{Var: x, Coef: 1}, {Var: y, Coef: 1}}, LEQ, 4)
	spec.AddConstraint([]Term{{Var: x, Coef: 1}}, LEQ, 2)

	res, err := New().Solve(context.Background(), spec)
	require.NoError(t, err)
	require.Equal(t, Optimal, res.Status)
	assert.InDelta(t, 16, res.Objective, 1e-9)
	assert.InDelta(t, 0, res.Values[x], 1e-9)
	assert.InDelta(t, 4, res.Values[y], 1e-9)
}

func TestSolveMinimizeWithEquality(t *testing.T) {
	// min x + 2y subject to x + y = 1.
	spec := NewSpec(Minimize)
	x := spec.AddVariable("x", 0, Inf())
	y := spec.AddVariable("y", 0, Inf())
	spec.SetObjective(x, 1)
	spec.SetObjective(y, 2)
	spec.AddConstraint([]Term{{Var: x, Coef: 1}, {Var: y, Coef: 1}}, EQ, 1)

	res, err := New().Solve(context.Background(), spec)
	require.NoError(t, err)
	require.Equal(t, Optimal, res.Status)
	assert.InDelta(t, 1, res.Objective, 1e-9)
	assert.InDelta(t, 1, res.Values[x], 1e-9)
}

func TestSolveShiftedBounds(t *testing.T) {
	// max x with x in [1, 3].
	spec := NewSpec(Maximize)
	x := spec.AddVariable("x", 1, 3)
	spec.SetObjective(x, 1)

	res, err := New().Solve(context.Background(), spec)
	require.NoError(t, err)
	require.Equal(t, Optimal, res.Status)
	assert.InDelta(t, 3, res.Objective, 1e-9)
	assert.InDelta(t, 3, res.Values[x], 1e-9)
}

func TestSolveFreeVariable(t *testing.T) {
	// min y subject to y >= x - 2, y >= -x, x free.
	spec := NewSpec(Minimize)
	x := spec.AddVariable("x", math.Inf(-1), Inf())
	y := spec.AddVariable("y", math.Inf(-1), Inf())
	spec.SetObjective(y, 1)
	spec.AddConstraint([]Term{{Var: y, Coef: 1}, {Var: x, Coef: -1}}, GEQ, -2)
	spec.AddConstraint([]Term{{Var: y, Coef: 1}, {Var: x, Coef: 1}}, GEQ, 0)

	res, err := New().Solve(context.Background(), spec)
	require.NoError(t, err)
	require.Equal(t, Optimal, res.Status)
	assert.InDelta(t, -1, res.Objective, 1e-9)
	assert.InDelta(t, 1, res.Values[x], 1e-9)
}

func TestSolveInfeasible(t *testing.T) {
	spec := NewSpec(Maximize)
	x := spec.AddVariable("x", 0, Inf())
	spec.SetObjective(x, 1)
	spec.AddConstraint([]Term{{Var: x, Coef: 1}}, GEQ, 2)
	spec.AddConstraint([]Term{{Var: x, Coef: 1}}, LEQ, 1)

	res, err := New().Solve(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, Infeasible, res.Status)
}

func TestSolveUnbounded(t *testing.T) {
	spec := NewSpec(Maximize)
	x := spec.AddVariable("x", 0, Inf())
	spec.SetObjective(x, 1)

	res, err := New().Solve(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, Unbounded, res.Status)
}

func TestSolveMILPKnapsack(t *testing.T) {
	// max 5a + 4b + 3c subject to 2a + 3b + c <= 5, binaries.
	spec := NewSpec(Maximize)
	a := spec.AddBinaryVariable("a")
	b := spec.AddBinaryVariable("b")
	c := spec.AddBinaryVariable("c")
	spec.SetObjective(a, 5)
	spec.SetObjective(b, 4)
	spec.SetObjective(c, 3)
	spec.AddConstraint([]Term{{Var: a, Coef: 2}, {Var: b, Coef: 3}, {Var: c, Coef: 1}}, LEQ, 5)

	res, err := New().Solve(context.Background(), spec)
	require.NoError(t, err)
	require.Equal(t, Optimal, res.Status)
	assert.InDelta(t, 9, res.Objective, 1e-9)
	for _, v := range []int{a, b, c} {
		rounded := math.Round(res.Values[v])
		assert.InDelta(t, rounded, res.Values[v], 1e-9, "integral solution")
	}
	assert.LessOrEqual(t, 2*res.Values[a]+3*res.Values[b]+res.Values[c], 5+1e-9)
}

func TestSolveMILPForcedFractional(t *testing.T) {
	// The LP relaxation is fractional; the integer optimum drops below it.
	spec := NewSpec(Maximize)
	x := spec.AddBinaryVariable("x")
	y := spec.AddBinaryVariable("y")
	spec.SetObjective(x, 2)
	spec.SetObjective(y, 1)
	spec.AddConstraint([]Term{{Var: x, Coef: 2}, {Var: y, Coef: 2}}, LEQ, 3)

	res, err := New().Solve(context.Background(), spec)
	require.NoError(t, err)
	require.Equal(t, Optimal, res.Status)
	assert.InDelta(t, 2, res.Objective, 1e-9)
}

func TestSolveMILPInfeasible(t *testing.T) {
	spec := NewSpec(Minimize)
	x := spec.AddBinaryVariable("x")
	spec.SetObjective(x, 1)
	spec.AddConstraint([]Term{{Var: x, Coef: 2}}, EQ, 1)

	res, err := New().Solve(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, Infeasible, res.Status)
}

func TestSolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	spec := NewSpec(Maximize)
	x := spec.AddVariable("x", 0, 1)
	spec.SetObjective(x, 1)

	_, err := New().Solve(ctx, spec)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWarmStartMatchesCold(t *testing.T) {
	build := func(rhs float64) *Spec {
		spec := NewSpec(Maximize)
		x := spec.AddVariable("x", 0, Inf())
		y := spec.AddVariable("y", 0, Inf())
		spec.SetObjective(x, 1)
		spec.SetObjective(y, 1)
		spec.AddConstraint([]Term{{Var: x, Coef: 1}, {Var: y, Coef: 2}}, LEQ, rhs)
		spec.AddConstraint([]Term{{Var: x, Coef: 2}, {Var: y, Coef: 1}}, LEQ, rhs)
		return spec
	}
	sx := New()
	first, err := sx.Solve(context.Background(), build(3))
	require.NoError(t, err)
	warm, err := sx.SolveWarm(context.Background(), build(4), first.Basis)
	require.NoError(t, err)
	cold, err := sx.Solve(context.Background(), build(4))
	require.NoError(t, err)
	assert.InDelta(t, cold.Objective, warm.Objective, 1e-9)
}
