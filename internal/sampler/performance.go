package sampler

import (
	"math/rand/v2"

	"github.com/deatools/deascope/schema"
)

// PerformanceSample is one precise realization of an imprecise problem's
// performances: a value for every DMU on every factor, keyed by factor name.
type PerformanceSample map[string][]float64

// SampleIntervals draws a uniform realization of an interval column.
func SampleIntervals(lo, hi []float64, rng *rand.Rand) []float64 {
	out := make([]float64, len(lo))
	for i := range lo {
		if hi[i] > lo[i] {
			out[i] = lo[i] + rng.Float64()*(hi[i]-lo[i])
		} else {
			out[i] = lo[i]
		}
	}
	return out
}

// SampleOrdinalColumn draws a rank-respecting realization of an ordinal
// column given the per-DMU ranks 1..n: realized values are ordered like the
// ranks, consecutive values at least ratio apart multiplicatively, and the
// lowest at least min.
func SampleOrdinalColumn(ranks []float64, ratio, min float64, rng *rand.Rand) []float64 {
	n := len(ranks)
	byRank := SampleOrdinalValues(n, ratio, min, rng)
	out := make([]float64, n)
	for i, r := range ranks {
		out[i] = byRank[int(r)-1]
	}
	return out
}

// ImpreciseCCRSampler draws precise performance realizations for a
// ratio-model imprecise problem.
type ImpreciseCCRSampler struct {
	data *schema.CCRImpreciseProblemData
}

// NewImpreciseCCRSampler wraps the problem for repeated sampling.
func NewImpreciseCCRSampler(data *schema.CCRImpreciseProblemData) *ImpreciseCCRSampler {
	return &ImpreciseCCRSampler{data: data}
}

// Next draws one realization of every factor column.
func (s *ImpreciseCCRSampler) Next(rng *rand.Rand) PerformanceSample {
	d := s.data
	out := make(PerformanceSample, len(d.FactorNames()))
	for _, name := range d.FactorNames() {
		lo := make([]float64, d.NumDMUs())
		hi := make([]float64, d.NumDMUs())
		for i := range lo {
			lo[i], hi[i] = d.Interval(i, name)
		}
		if d.Imprecise.Ordinal(name) {
			out[name] = SampleOrdinalColumn(lo, d.Imprecise.OrdinalRatio, d.Imprecise.OrdinalMin, rng)
		} else {
			out[name] = SampleIntervals(lo, hi, rng)
		}
	}
	return out
}

// ImpreciseVDEASampler draws precise performances and value-function
// realizations for a value-model imprecise problem.
type ImpreciseVDEASampler struct {
	data *schema.ImpreciseVDEAProblemData
}

// NewImpreciseVDEASampler wraps the problem for repeated sampling.
func NewImpreciseVDEASampler(data *schema.ImpreciseVDEAProblemData) *ImpreciseVDEASampler {
	return &ImpreciseVDEASampler{data: data}
}

// Next draws one joint realization and returns the induced value matrix
// (DMU x factor, columns ordered like FactorNames).
func (s *ImpreciseVDEASampler) Next(rng *rand.Rand) [][]float64 {
	d := s.data
	names := d.FactorNames()
	n := d.NumDMUs()
	cols := make([][]float64, len(names))
	for j, name := range names {
		lo := make([]float64, n)
		hi := make([]float64, n)
		for i := 0; i < n; i++ {
			lo[i], hi[i] = d.Interval(i, name)
		}
		if d.Imprecise.Ordinal(name) {
			// Ordinal axes sample marginal values directly: a rank-ordered
			// chain in value space under the monotonicity ratio.
			vals := SampleOrdinalValues(n, d.Imprecise.VFMonotonicityRatio, 0, rng)
			col := make([]float64, n)
			for i := 0; i < n; i++ {
				col[i] = vals[int(lo[i])-1]
			}
			cols[j] = col
			continue
		}
		perf := SampleIntervals(lo, hi, rng)
		fn := SampleValueFunction(d.Range(name), rng)
		col := make([]float64, n)
		for i := 0; i < n; i++ {
			col[i] = fn.Value(perf[i])
		}
		cols[j] = col
	}
	values := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, len(names))
		for j := range names {
			row[j] = cols[j][i]
		}
		values[i] = row
	}
	return values
}
