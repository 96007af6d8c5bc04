package schema

import "math"

// ExtremesResult holds per-DMU minimal and maximal indicator values, in DMU
// index order. Super is only populated by the efficiency driver when
// super-efficiency was requested. DMUs listed in Failed hit a numerical
// solver failure and carry NaN in the value slices.
type ExtremesResult struct {
	Min    []float64
	Max    []float64
	Super  []float64 `json:",omitempty"`
	Failed []int     `json:",omitempty"`
}

// RanksResult holds per-DMU extreme efficiency ranks.
type RanksResult struct {
	Min    []int
	Max    []int
	Failed []int `json:",omitempty"`
}

// PreferenceResult holds the necessary and possible preference relations as
// n x n boolean matrices with true diagonals.
type PreferenceResult struct {
	Necessary [][]bool
	Possible  [][]bool
}

// DistributionResult holds SMAA acceptability distributions: one histogram
// row per DMU over B value bins (or n rank bins), each row summing to 1,
// plus the per-DMU sample means. FailedSamples counts samples skipped due
// to numerical trouble.
type DistributionResult struct {
	Histogram     [][]float64
	Expected      []float64
	FailedSamples int `json:",omitempty"`
}

// PEOIResult holds pairwise efficiency outranking indices: Matrix[s][t] is
// the sampled probability that DMU s is at least as efficient as DMU t.
// The diagonal is 1.
type PEOIResult struct {
	Matrix        [][]float64
	FailedSamples int `json:",omitempty"`
}

// NaNSlice returns a fresh slice of n NaNs, the placeholder value for
// per-DMU results that failed numerically.
func NaNSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
