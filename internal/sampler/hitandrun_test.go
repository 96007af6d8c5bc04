package sampler

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deatools/deascope/internal/solver"
	"github.com/deatools/deascope/schema"
)

// simplex3 is the probability simplex in three dimensions.
func simplex3() *Polytope {
	p := NewPolytope(3)
	p.AddNonneg()
	p.AddSumTo(1)
	return p
}

func TestInteriorOfSimplex(t *testing.T) {
	x, err := simplex3().Interior(context.Background(), solver.New())
	require.NoError(t, err)
	sum := x[0] + x[1] + x[2]
	assert.InDelta(t, 1, sum, 1e-9)
	for _, v := range x {
		assert.Greater(t, v, 0.0)
	}
}

func TestInteriorInfeasible(t *testing.T) {
	p := simplex3()
	// x0 >= 2 contradicts the simplex.
	p.AddIneq([]float64{-1, 0, 0}, -2)
	_, err := p.Interior(context.Background(), solver.New())
	assert.ErrorIs(t, err, schema.ErrInfeasible)
}

func TestHitAndRunStaysInside(t *testing.T) {
	p := simplex3()
	p.AddIneq([]float64{1, 0, 0}, 0.5) // x0 <= 0.5
	chain, err := NewHitAndRun(context.Background(), p, solver.New(), Stream(7, 0))
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		x, err := chain.Next(context.Background())
		require.NoError(t, err)
		assert.True(t, p.Contains(x, 1e-7), "sample %d left the polytope: %v", i, x)
	}
}

func TestHitAndRunCoversTheRegion(t *testing.T) {
	chain, err := NewHitAndRun(context.Background(), simplex3(), solver.New(), Stream(11, 0))
	require.NoError(t, err)

	var minX0, maxX0 = 1.0, 0.0
	for i := 0; i < 500; i++ {
		x, err := chain.Next(context.Background())
		require.NoError(t, err)
		minX0 = math.Min(minX0, x[0])
		maxX0 = math.Max(maxX0, x[0])
	}
	// A mixing chain should visit both tails of the coordinate range.
	assert.Less(t, minX0, 0.2)
	assert.Greater(t, maxX0, 0.5)
}

func TestHitAndRunDeterministicPerStream(t *testing.T) {
	draw := func() [][]float64 {
		chain, err := NewHitAndRun(context.Background(), simplex3(), solver.New(), Stream(5, 3))
		require.NoError(t, err)
		var out [][]float64
		for i := 0; i < 25; i++ {
			x, err := chain.Next(context.Background())
			require.NoError(t, err)
			out = append(out, x)
		}
		return out
	}
	assert.Equal(t, draw(), draw())
}

func TestHitAndRunCancellation(t *testing.T) {
	chain, err := NewHitAndRun(context.Background(), simplex3(), solver.New(), Stream(1, 0))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = chain.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
