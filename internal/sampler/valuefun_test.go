package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deatools/deascope/schema"
)

func envelopeRange(t *testing.T) schema.ValueFunctionRange {
	t.Helper()
	lower, err := schema.NewValueFunction([]schema.Point{{X: 0, U: 0}, {X: 5, U: 0.2}, {X: 10, U: 1}})
	require.NoError(t, err)
	upper, err := schema.NewValueFunction([]schema.Point{{X: 0, U: 0}, {X: 5, U: 0.8}, {X: 10, U: 1}})
	require.NoError(t, err)
	r := schema.ValueFunctionRange{Lower: lower, Upper: upper}
	require.NoError(t, r.Validate())
	return r
}

func TestSampleValueFunctionWithinEnvelope(t *testing.T) {
	r := envelopeRange(t)
	rng := Stream(42, 0)
	for i := 0; i < 100; i++ {
		f := SampleValueFunction(r, rng)
		prev := -1.0
		for k, p := range f.Points {
			assert.GreaterOrEqual(t, p.U, r.Lower.Points[k].U-1e-12)
			assert.LessOrEqual(t, p.U, r.Upper.Points[k].U+1e-12)
			assert.GreaterOrEqual(t, p.U, prev, "monotonicity broken at point %d", k)
			prev = p.U
		}
	}
}

func TestSampleValueFunctionExactRangeUnchanged(t *testing.T) {
	f, err := schema.NewValueFunction([]schema.Point{{X: 0, U: 0}, {X: 1, U: 1}})
	require.NoError(t, err)
	got := SampleValueFunction(schema.ExactRange(f), Stream(1, 0))
	assert.Equal(t, f, got)
}

func TestSampleOrdinalValuesRespectRatio(t *testing.T) {
	rng := Stream(9, 2)
	for i := 0; i < 100; i++ {
		vals := SampleOrdinalValues(6, 1.1, 0.01, rng)
		for j := 0; j+1 < len(vals); j++ {
			assert.GreaterOrEqual(t, vals[j+1], 1.1*vals[j]-1e-12)
		}
		assert.GreaterOrEqual(t, vals[0], 0.01-1e-12)
		assert.LessOrEqual(t, vals[len(vals)-1], 1.0+1e-12)
	}
}

func TestSampleOrdinalColumnFollowsRanks(t *testing.T) {
	ranks := []float64{3, 1, 2}
	col := SampleOrdinalColumn(ranks, 1.0001, 0, Stream(4, 0))
	assert.Greater(t, col[0], col[2])
	assert.Greater(t, col[2], col[1])
}
