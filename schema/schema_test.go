package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toyProblem(t *testing.T) *ProblemData {
	t.Helper()
	data, err := NewProblemData(
		[][]float64{{1, 2}, {5, 7}, {4, 2}, {7, 4}, {3, 8}},
		[][]float64{{1}, {10}, {5}, {7}, {12}},
		[]string{"in1", "in2"},
		[]string{"out1"},
	)
	require.NoError(t, err)
	return data
}

func TestNewProblemData(t *testing.T) {
	data := toyProblem(t)
	assert.Equal(t, 5, data.NumDMUs())
	assert.Equal(t, 2, data.NumInputs())
	assert.Equal(t, 1, data.NumOutputs())
	assert.Equal(t, []string{"in1", "in2", "out1"}, data.FactorNames())
	assert.True(t, data.IsInput("in2"))
	assert.False(t, data.IsInput("out1"))
	assert.Equal(t, 7.0, data.Performance(3, "in1"))
	assert.Equal(t, []float64{1, 10, 5, 7, 12}, data.Column("out1"))
}

func TestNewProblemDataValidation(t *testing.T) {
	cases := []struct {
		name     string
		inputs   [][]float64
		outputs  [][]float64
		inNames  []string
		outNames []string
	}{
		{"empty", nil, nil, []string{"a"}, []string{"b"}},
		{"row mismatch", [][]float64{{1}}, [][]float64{{1}, {2}}, []string{"a"}, []string{"b"}},
		{"ragged input row", [][]float64{{1, 2}, {3}}, [][]float64{{1}, {2}}, []string{"a", "c"}, []string{"b"}},
		{"name collision", [][]float64{{1}}, [][]float64{{2}}, []string{"a"}, []string{"a"}},
		{"no outputs", [][]float64{{1}}, [][]float64{{}}, []string{"a"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProblemData(tc.inputs, tc.outputs, tc.inNames, tc.outNames)
			var ce *ConfigError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestAddWeightConstraint(t *testing.T) {
	data := toyProblem(t)
	err := data.AddWeightConstraint(NewWeightConstraint(GEQ, 0, map[string]float64{"in1": 1, "in2": -5}))
	require.NoError(t, err)
	assert.Len(t, data.Constraints, 1)

	err = data.AddWeightConstraint(NewWeightConstraint(LEQ, 1, map[string]float64{"nope": 1}))
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestWeightConstraintString(t *testing.T) {
	c := NewWeightConstraint(GEQ, 0.5, map[string]float64{"b": -2, "a": 1})
	assert.Equal(t, "1*w(a) + -2*w(b) >= 0.5", c.String())
}

func TestValueFunction(t *testing.T) {
	f, err := NewValueFunction([]Point{{X: 0, U: 0}, {X: 2, U: 0.5}, {X: 4, U: 1}})
	require.NoError(t, err)
	assert.True(t, f.Gain())
	assert.InDelta(t, 0.25, f.Value(1), 1e-12)
	assert.InDelta(t, 0.75, f.Value(3), 1e-12)
	assert.InDelta(t, 0, f.Value(-1), 1e-12)  // clamps
	assert.InDelta(t, 1, f.Value(100), 1e-12) // clamps

	cost := LinearCost(0, 1)
	assert.False(t, cost.Gain())
	assert.InDelta(t, 0.25, cost.Value(0.75), 1e-12)
}

func TestValueFunctionValidation(t *testing.T) {
	cases := []struct {
		name string
		pts  []Point
	}{
		{"too few points", []Point{{X: 0, U: 0}}},
		{"non increasing x", []Point{{X: 0, U: 0}, {X: 0, U: 1}}},
		{"non monotone u", []Point{{X: 0, U: 0}, {X: 1, U: 0.8}, {X: 2, U: 0.4}, {X: 3, U: 1}}},
		{"wrong terminal span", []Point{{X: 0, U: 0.1}, {X: 1, U: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewValueFunction(tc.pts)
			var ce *ConfigError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestValueFunctionRangeValidate(t *testing.T) {
	lower, _ := NewValueFunction([]Point{{X: 0, U: 0}, {X: 1, U: 0.4}, {X: 2, U: 1}})
	upper, _ := NewValueFunction([]Point{{X: 0, U: 0}, {X: 1, U: 0.9}, {X: 2, U: 1}})
	r := ValueFunctionRange{Lower: lower, Upper: upper}
	require.NoError(t, r.Validate())
	assert.False(t, r.Exact())

	flipped := ValueFunctionRange{Lower: upper, Upper: lower}
	var ce *ConfigError
	assert.ErrorAs(t, flipped.Validate(), &ce)
}

func TestHierarchy(t *testing.T) {
	h := NewHierarchy("root")
	_, err := h.AddNode("root", "cat1")
	require.NoError(t, err)
	_, err = h.AddNode("root", "cat2")
	require.NoError(t, err)
	_, err = h.AddNode("cat1", "f1")
	require.NoError(t, err)
	_, err = h.AddNode("cat1", "f2")
	require.NoError(t, err)
	_, err = h.AddNode("cat2", "f3")
	require.NoError(t, err)

	idx, ok := h.Node("cat1")
	require.True(t, ok)
	assert.Equal(t, []string{"f1", "f2"}, h.Leaves(idx))
	assert.Equal(t, []string{"f1", "f2", "f3"}, h.Leaves(h.Root()))

	require.NoError(t, h.ValidateLeaves([]string{"f1", "f2", "f3"}))
	assert.Error(t, h.ValidateLeaves([]string{"f1", "f2"}))
	assert.Error(t, h.ValidateLeaves([]string{"f1", "f2", "f3", "f4"}))

	_, err = h.AddNode("root", "cat1")
	assert.Error(t, err, "duplicate names rejected")
	_, err = h.AddNode("ghost", "x")
	assert.Error(t, err, "unknown parent rejected")
}

func TestImpreciseValidation(t *testing.T) {
	data, err := NewCCRImpreciseProblemData(
		[][]float64{{1, 2}, {2, 1}},
		[][]float64{{1}, {2}},
		[][]float64{{1, 2}, {2, 1}},
		[][]float64{{1.5}, {2}},
		[]string{"cost", "rep"},
		[]string{"cap"},
	)
	require.NoError(t, err)
	data.Imprecise = data.Imprecise.WithOrdinal("rep")
	require.NoError(t, data.Validate())

	// Ranks must form a permutation.
	bad, err := NewCCRImpreciseProblemData(
		[][]float64{{1, 2}, {2, 2}},
		[][]float64{{1}, {2}},
		[][]float64{{1, 2}, {2, 2}},
		[][]float64{{1}, {2}},
		[]string{"cost", "rep"},
		[]string{"cap"},
	)
	require.NoError(t, err)
	bad.Imprecise = bad.Imprecise.WithOrdinal("rep")
	var ce *ConfigError
	assert.ErrorAs(t, bad.Validate(), &ce)
}

func TestIntervalOrderChecked(t *testing.T) {
	_, err := NewCCRImpreciseProblemData(
		[][]float64{{2}}, [][]float64{{1}},
		[][]float64{{1}}, [][]float64{{1}},
		[]string{"in"}, []string{"out"},
	)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestImpreciseVDEAPreciseReduction(t *testing.T) {
	data, err := NewImpreciseVDEAProblemData(
		[][]float64{{0}, {0.5}},
		[][]float64{{1}, {0.5}},
		[][]float64{{0}, {0.5}},
		[][]float64{{1}, {0.5}},
		[]string{"in"}, []string{"out"},
	)
	require.NoError(t, err)
	assert.True(t, data.Precise())

	vdea := data.PreciseVDEA()
	assert.Equal(t, 2, vdea.NumDMUs())

	data.Imprecise = data.Imprecise.WithOrdinal("in")
	assert.False(t, data.Precise())
}
