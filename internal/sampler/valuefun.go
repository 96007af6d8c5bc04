package sampler

import (
	"math/rand/v2"

	"github.com/deatools/deascope/schema"
)

// SampleValueFunction draws one monotone piecewise-linear realization from
// an envelope range. Breakpoint values are drawn in the x-direction, each
// uniform within the envelope interval clipped by the monotonicity bound of
// the previously drawn value: ascending for gain functions, with values
// non-decreasing; the same sweep with non-increasing values for cost
// functions. An exact range comes back unchanged.
func SampleValueFunction(r schema.ValueFunctionRange, rng *rand.Rand) schema.ValueFunction {
	if r.Exact() {
		return r.Lower
	}
	pts := make([]schema.Point, len(r.Lower.Points))
	gain := r.Gain()
	prev := 0.0
	havePrev := false
	for i := range r.Lower.Points {
		lo := r.Lower.Points[i].U
		hi := r.Upper.Points[i].U
		if lo > hi {
			lo, hi = hi, lo
		}
		if havePrev {
			if gain {
				if prev > lo {
					lo = prev
				}
			} else {
				if prev < hi {
					hi = prev
				}
			}
		}
		u := lo
		if hi > lo {
			u = lo + rng.Float64()*(hi-lo)
		}
		pts[i] = schema.Point{X: r.Lower.Points[i].X, U: u}
		prev = u
		havePrev = true
	}
	return schema.ValueFunction{Points: pts}
}

// SampleOrdinalValues draws rank-ordered values in (0, 1] for an ordinal
// axis of n positions: the top rank is drawn near the unit scale and each
// lower rank uniform below its successor divided by the monotonicity ratio,
// floored at min*ratio^(rank-1). The result is indexed by rank-1.
func SampleOrdinalValues(n int, ratio, min float64, rng *rand.Rand) []float64 {
	out := make([]float64, n)
	floor := min * pow(ratio, n-1)
	if floor >= 1 {
		floor = 0 // tolerances leave no room; fall back to a plain chain
	}
	top := floor + rng.Float64()*(1-floor)
	out[n-1] = top
	for j := n - 2; j >= 0; j-- {
		lo := min * pow(ratio, j)
		hi := out[j+1] / ratio
		if hi < lo {
			hi = lo
		}
		out[j] = lo + rng.Float64()*(hi-lo)
	}
	return out
}

func pow(r float64, k int) float64 {
	out := 1.0
	for i := 0; i < k; i++ {
		out *= r
	}
	return out
}
