package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deatools/deascope/schema"
)

// toyCCR is the 5-unit ratio-model data set with two inputs and one output.
func toyCCR(t *testing.T) *schema.ProblemData {
	t.Helper()
	data, err := schema.NewProblemData(
		[][]float64{{1, 2}, {5, 7}, {4, 2}, {7, 4}, {3, 8}},
		[][]float64{{1}, {10}, {5}, {7}, {12}},
		[]string{"in1", "in2"},
		[]string{"out1"},
	)
	require.NoError(t, err)
	return data
}

// lineVDEA is a 3-unit value-model data set whose marginal values pin every
// unit's efficiency regardless of the weights: 1, 0.5 and 0.
func lineVDEA(t *testing.T) *schema.VDEAProblemData {
	t.Helper()
	data, err := schema.NewVDEAProblemData(
		[][]float64{{0.0}, {0.5}, {1.0}},
		[][]float64{{1.0}, {0.5}, {0.0}},
		[]string{"in"},
		[]string{"out"},
	)
	require.NoError(t, err)
	require.NoError(t, data.SetFunctionShape("in", []schema.Point{{X: 0, U: 1}, {X: 1, U: 0}}))
	require.NoError(t, data.SetFunctionShape("out", []schema.Point{{X: 0, U: 0}, {X: 1, U: 1}}))
	return data
}

// newConstraintLEQ builds w(factor) <= rhs.
func newConstraintLEQ(t *testing.T, factor string, rhs float64) schema.WeightConstraint {
	t.Helper()
	return schema.NewWeightConstraint(schema.LEQ, rhs, map[string]float64{factor: 1})
}

// newConstraintGEQ builds w(factor) >= rhs.
func newConstraintGEQ(t *testing.T, factor string, rhs float64) schema.WeightConstraint {
	t.Helper()
	return schema.NewWeightConstraint(schema.GEQ, rhs, map[string]float64{factor: 1})
}

// spreadVDEA is a 3-unit value model where the order of units depends on
// the weights.
func spreadVDEA(t *testing.T) *schema.VDEAProblemData {
	t.Helper()
	data, err := schema.NewVDEAProblemData(
		[][]float64{{0.1}, {0.9}, {0.5}},
		[][]float64{{0.2}, {0.9}, {0.6}},
		[]string{"in"},
		[]string{"out"},
	)
	require.NoError(t, err)
	require.NoError(t, data.SetFunctionShape("in", []schema.Point{{X: 0, U: 1}, {X: 1, U: 0}}))
	require.NoError(t, data.SetFunctionShape("out", []schema.Point{{X: 0, U: 0}, {X: 1, U: 1}}))
	return data
}
