package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deatools/deascope/schema"
)

// degenerateImpreciseVDEA mirrors lineVDEA with collapsed intervals.
func degenerateImpreciseVDEA(t *testing.T) *schema.ImpreciseVDEAProblemData {
	t.Helper()
	inputs := [][]float64{{0.0}, {0.5}, {1.0}}
	outputs := [][]float64{{1.0}, {0.5}, {0.0}}
	data, err := schema.NewImpreciseVDEAProblemData(inputs, outputs, inputs, outputs,
		[]string{"in"}, []string{"out"})
	require.NoError(t, err)
	require.NoError(t, data.SetFunctionShape("in", []schema.Point{{X: 0, U: 1}, {X: 1, U: 0}}))
	require.NoError(t, data.SetFunctionShape("out", []schema.Point{{X: 0, U: 0}, {X: 1, U: 1}}))
	return data
}

func TestImpreciseVDEAReducesToPrecise(t *testing.T) {
	imp := degenerateImpreciseVDEA(t)
	require.True(t, imp.Precise())
	flat := lineVDEA(t)

	iext, err := ImpreciseVDEAExtremeEfficiencies(context.Background(), imp, nil)
	require.NoError(t, err)
	fext, err := VDEAExtremeEfficiencies(context.Background(), flat, nil)
	require.NoError(t, err)
	for s := range iext.Max {
		assert.InDelta(t, fext.Max[s], iext.Max[s], 1e-6, "max of unit %d", s)
		assert.InDelta(t, fext.Min[s], iext.Min[s], 1e-6, "min of unit %d", s)
	}

	idist, err := ImpreciseVDEAExtremeDistances(context.Background(), imp, nil)
	require.NoError(t, err)
	fdist, err := VDEAExtremeDistances(context.Background(), flat, nil)
	require.NoError(t, err)
	for s := range idist.Max {
		assert.InDelta(t, fdist.Max[s], idist.Max[s], 1e-6)
		assert.InDelta(t, fdist.Min[s], idist.Min[s], 1e-6)
	}

	irel, err := ImpreciseVDEAPreferenceRelations(context.Background(), imp, nil)
	require.NoError(t, err)
	frel, err := VDEAPreferenceRelations(context.Background(), flat, nil)
	require.NoError(t, err)
	assert.Equal(t, frel.Necessary, irel.Necessary)
	assert.Equal(t, frel.Possible, irel.Possible)

	iranks, err := ImpreciseVDEAExtremeRanks(context.Background(), imp, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, iranks.Min)
	assert.Equal(t, []int{1, 2, 3}, iranks.Max)
}

func TestImpreciseVDEAIntervalsWidenTheRange(t *testing.T) {
	// The middle unit's output may land anywhere in [0.3, 0.7].
	data, err := schema.NewImpreciseVDEAProblemData(
		[][]float64{{0.0}, {0.5}, {1.0}},
		[][]float64{{1.0}, {0.3}, {0.0}},
		[][]float64{{0.0}, {0.5}, {1.0}},
		[][]float64{{1.0}, {0.7}, {0.0}},
		[]string{"in"}, []string{"out"})
	require.NoError(t, err)
	require.NoError(t, data.SetFunctionShape("in", []schema.Point{{X: 0, U: 1}, {X: 1, U: 0}}))
	require.NoError(t, data.SetFunctionShape("out", []schema.Point{{X: 0, U: 0}, {X: 1, U: 1}}))

	res, err := ImpreciseVDEAExtremeEfficiencies(context.Background(), data, nil)
	require.NoError(t, err)
	// Weight on the output pushes the middle unit across its interval.
	assert.InDelta(t, 0.7, res.Max[1], 1e-6)
	assert.InDelta(t, 0.3, res.Min[1], 1e-6)
	// Precise units keep their exact values.
	assert.InDelta(t, 1.0, res.Max[0], 1e-6)
	assert.InDelta(t, 0.0, res.Max[2], 1e-6)

	smaa, err := ImpreciseVDEASmaaEfficiency(context.Background(), data, &Options{Samples: 150, Bins: 5, Seed: 8, Workers: 2})
	require.NoError(t, err)
	assertDistributionInvariants(t, smaa, 0, 1)
	assert.Greater(t, smaa.Expected[1], 0.3-1e-9)
	assert.Less(t, smaa.Expected[1], 0.7+1e-9)
}

// robotsStyleCCR is a small imprecise ratio-model data set with one ordinal
// input and one interval output, shaped like the industrial-robots example.
func robotsStyleCCR(t *testing.T) *schema.CCRImpreciseProblemData {
	t.Helper()
	data, err := schema.NewCCRImpreciseProblemData(
		[][]float64{{7.2, 2}, {4.8, 1}, {5.0, 3}}, // cost, reputation rank (lo)
		[][]float64{{50, 1.35}, {60, 1.1}, {40, 1.27}},
		[][]float64{{7.2, 2}, {4.8, 1}, {5.0, 3}},
		[][]float64{{65, 1.35}, {70, 1.1}, {50, 1.27}},
		[]string{"cost", "reputation"},
		[]string{"capacity", "velocity"},
	)
	require.NoError(t, err)
	data.Imprecise = data.Imprecise.WithOrdinal("reputation")
	data.Imprecise.OrdinalRatio = 1.1
	data.Imprecise.OrdinalMin = 0.01
	return data
}

func TestImpreciseCCRExtremeEfficiencies(t *testing.T) {
	data := robotsStyleCCR(t)
	res, err := ImpreciseCCRExtremeEfficiencies(context.Background(), data, &Options{SuperEfficiency: true})
	require.NoError(t, err)
	require.Empty(t, res.Failed)
	for s := range res.Max {
		assert.GreaterOrEqual(t, res.Max[s], res.Min[s]-1e-9, "unit %d", s)
		assert.GreaterOrEqual(t, res.Min[s], -1e-9)
		assert.LessOrEqual(t, res.Max[s], 1+1e-9)
		assert.GreaterOrEqual(t, res.Super[s], res.Max[s]-1e-9)
	}
}

func TestImpreciseCCRRanksAndPreferences(t *testing.T) {
	data := robotsStyleCCR(t)
	ranks, err := ImpreciseCCRExtremeRanks(context.Background(), data, nil)
	require.NoError(t, err)
	assertRankInvariants(t, ranks, 3)

	rel, err := ImpreciseCCRPreferenceRelations(context.Background(), data, nil)
	require.NoError(t, err)
	for i := range rel.Necessary {
		assert.True(t, rel.Necessary[i][i])
		for j := range rel.Necessary {
			if rel.Necessary[i][j] {
				assert.True(t, rel.Possible[i][j], "necessary without possible (%d,%d)", i, j)
			}
		}
	}
}

func TestImpreciseCCRSmaa(t *testing.T) {
	data := robotsStyleCCR(t)
	opts := &Options{Samples: 150, Bins: 5, Seed: 5, Workers: 2}
	dist, err := ImpreciseCCRSmaaEfficiency(context.Background(), data, opts)
	require.NoError(t, err)
	assertDistributionInvariants(t, dist, 0, 1)

	again, err := ImpreciseCCRSmaaEfficiency(context.Background(), data, opts)
	require.NoError(t, err)
	assert.Equal(t, dist.Histogram, again.Histogram)

	ranks, err := ImpreciseCCRSmaaRanks(context.Background(), data, opts)
	require.NoError(t, err)
	assertDistributionInvariants(t, ranks, 1, 3)

	peoi, err := ImpreciseCCRSmaaPreferenceRelations(context.Background(), data, opts)
	require.NoError(t, err)
	assertPEOIInvariants(t, peoi, opts.Samples)
}
