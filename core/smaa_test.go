package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deatools/deascope/schema"
)

// assertDistributionInvariants checks that every histogram row sums to one
// and expectations stay within the indicator's range.
func assertDistributionInvariants(t *testing.T, res *schema.DistributionResult, lo, hi float64) {
	t.Helper()
	for i, row := range res.Histogram {
		sum := 0.0
		for _, v := range row {
			assert.GreaterOrEqual(t, v, 0.0)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "histogram row %d", i)
		assert.GreaterOrEqual(t, res.Expected[i], lo-1e-9)
		assert.LessOrEqual(t, res.Expected[i], hi+1e-9)
	}
}

func TestCCRSmaaEfficiencyDeterminism(t *testing.T) {
	data := toyCCR(t)
	opts := &Options{Samples: 100, Bins: 10, Seed: 5, Workers: 1}

	first, err := CCRSmaaEfficiency(context.Background(), data, opts)
	require.NoError(t, err)
	second, err := CCRSmaaEfficiency(context.Background(), data, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Histogram, second.Histogram)
	assert.Equal(t, first.Expected, second.Expected)
	assertDistributionInvariants(t, first, 0, 1)
}

func TestCCRSmaaEfficiencyDeterminismParallel(t *testing.T) {
	data := toyCCR(t)
	opts := &Options{Samples: 200, Bins: 10, Seed: 9, Workers: 4}

	first, err := CCRSmaaEfficiency(context.Background(), data, opts)
	require.NoError(t, err)
	second, err := CCRSmaaEfficiency(context.Background(), data, opts)
	require.NoError(t, err)
	assert.Equal(t, first.Histogram, second.Histogram)
	assert.Equal(t, first.Expected, second.Expected)
}

func TestVDEASmaaEfficiencyLine(t *testing.T) {
	data := lineVDEA(t)
	res, err := VDEASmaaEfficiency(context.Background(), data, &Options{Samples: 200, Bins: 4, Seed: 1, Workers: 2})
	require.NoError(t, err)
	assertDistributionInvariants(t, res, 0, 1)

	// Unit efficiencies are weight-independent: the whole mass lands in
	// one bin and the expectation is exact.
	assert.InDelta(t, 1.0, res.Expected[0], 1e-9)
	assert.InDelta(t, 0.5, res.Expected[1], 1e-9)
	assert.InDelta(t, 0.0, res.Expected[2], 1e-9)
	assert.InDelta(t, 1.0, res.Histogram[0][3], 1e-9) // (0.75, 1.0]
	assert.InDelta(t, 1.0, res.Histogram[1][1], 1e-9) // (0.25, 0.5]
	assert.InDelta(t, 1.0, res.Histogram[2][0], 1e-9) // [0.0, 0.25]
}

func TestVDEASmaaRanksLine(t *testing.T) {
	data := lineVDEA(t)
	res, err := VDEASmaaRanks(context.Background(), data, &Options{Samples: 100, Seed: 3, Workers: 2})
	require.NoError(t, err)
	assertDistributionInvariants(t, res, 1, 3)
	assert.InDelta(t, 1.0, res.Histogram[0][0], 1e-9)
	assert.InDelta(t, 1.0, res.Histogram[1][1], 1e-9)
	assert.InDelta(t, 1.0, res.Histogram[2][2], 1e-9)
	assert.InDelta(t, 1.0, res.Expected[0], 1e-9)
	assert.InDelta(t, 2.0, res.Expected[1], 1e-9)
	assert.InDelta(t, 3.0, res.Expected[2], 1e-9)
}

func TestVDEASmaaDistanceLine(t *testing.T) {
	data := lineVDEA(t)
	res, err := VDEASmaaDistance(context.Background(), data, &Options{Samples: 100, Bins: 4, Seed: 3, Workers: 1})
	require.NoError(t, err)
	assertDistributionInvariants(t, res, 0, 1)
	assert.InDelta(t, 0.0, res.Expected[0], 1e-9)
	assert.InDelta(t, 0.5, res.Expected[1], 1e-9)
	assert.InDelta(t, 1.0, res.Expected[2], 1e-9)
}

func TestSmaaExpectationsTrackExtremes(t *testing.T) {
	data := spreadVDEA(t)
	dist, err := VDEASmaaEfficiency(context.Background(), data, &Options{Samples: 300, Bins: 10, Seed: 7, Workers: 2})
	require.NoError(t, err)
	ext, err := VDEAExtremeEfficiencies(context.Background(), data, nil)
	require.NoError(t, err)
	for s := range dist.Expected {
		assert.GreaterOrEqual(t, dist.Expected[s], ext.Min[s]-1e-6, "unit %d", s)
		assert.LessOrEqual(t, dist.Expected[s], ext.Max[s]+1e-6, "unit %d", s)
	}
}

func TestSmaaDeadlineReturnsPartialError(t *testing.T) {
	data := toyCCR(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	_, err := CCRSmaaEfficiency(ctx, data, &Options{Samples: 5000, Workers: 2})
	var pe *schema.PartialError
	assert.ErrorAs(t, err, &pe)
}
