package sampler

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/deatools/deascope/internal/solver"
	"github.com/deatools/deascope/schema"
)

// directionRetries bounds resampling of degenerate chain directions.
const directionRetries = 32

// HitAndRun walks a polytope with the hit-and-run Markov chain: from the
// current interior point, pick a uniform random direction within the affine
// hull, compute the feasible segment by ratio test against every
// inequality, and jump to a uniform point on it. The chain burns in 10*dim
// steps on first use and thins by max(1, dim) between produced samples.
type HitAndRun struct {
	poly  *Polytope
	rng   *rand.Rand
	x     []float64
	basis *mat.Dense // affine-hull direction basis; nil means full space
	state State
}

// NewHitAndRun prepares a chain over the polytope, solving the
// Chebyshev-center LP for the starting point.
func NewHitAndRun(ctx context.Context, poly *Polytope, oracle solver.Oracle, rng *rand.Rand) (*HitAndRun, error) {
	start, err := poly.Interior(ctx, oracle)
	if err != nil {
		return nil, err
	}
	h := &HitAndRun{poly: poly, rng: rng, x: start, state: Uninitialized}
	if len(poly.Eqs) > 0 {
		basis, err := nullSpace(poly)
		if err != nil {
			return nil, err
		}
		h.basis = basis
	}
	return h, nil
}

// Next produces the next uniform sample. The first call performs burn-in.
func (h *HitAndRun) Next(ctx context.Context) ([]float64, error) {
	dim := h.poly.Dim
	if h.state == Uninitialized {
		h.state = BurningIn
		for i := 0; i < 10*dim; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := h.step(); err != nil {
				return nil, err
			}
		}
		h.state = Producing
	}
	thin := dim
	if thin < 1 {
		thin = 1
	}
	for i := 0; i < thin; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := h.step(); err != nil {
			return nil, err
		}
	}
	return append([]float64(nil), h.x...), nil
}

// step advances the chain by one hit-and-run move.
func (h *HitAndRun) step() error {
	for attempt := 0; attempt < directionRetries; attempt++ {
		d := h.direction()
		lo, hi, ok := h.segment(d)
		if !ok || hi-lo < 1e-12 {
			continue
		}
		t := lo + h.rng.Float64()*(hi-lo)
		for i := range h.x {
			h.x[i] += t * d[i]
		}
		return nil
	}
	// Every direction ran into a degenerate segment; the region has
	// effectively collapsed.
	return schema.ErrNumerical
}

// direction draws a uniform direction in the affine hull.
func (h *HitAndRun) direction() []float64 {
	dim := h.poly.Dim
	if h.basis == nil {
		d := make([]float64, dim)
		for i := range d {
			d[i] = h.rng.NormFloat64()
		}
		return normalize(d)
	}
	_, k := h.basis.Dims()
	g := make([]float64, k)
	for i := range g {
		g[i] = h.rng.NormFloat64()
	}
	d := make([]float64, dim)
	for i := 0; i < dim; i++ {
		s := 0.0
		for j := 0; j < k; j++ {
			s += h.basis.At(i, j) * g[j]
		}
		d[i] = s
	}
	return normalize(d)
}

// segment computes the feasible parameter interval along direction d.
func (h *HitAndRun) segment(d []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(-1), math.Inf(1)
	for _, iq := range h.poly.Ineqs {
		ad := dot(iq.A, d)
		slack := iq.B - dot(iq.A, h.x)
		if slack < 0 {
			slack = 0 // numerical drift; the point is on the boundary
		}
		switch {
		case ad > 1e-14:
			hi = math.Min(hi, slack/ad)
		case ad < -1e-14:
			lo = math.Max(lo, slack/ad)
		}
	}
	if math.IsInf(lo, -1) || math.IsInf(hi, 1) {
		// An unbounded chord cannot be sampled uniformly.
		return 0, 0, false
	}
	return lo, hi, lo < hi
}

func normalize(d []float64) []float64 {
	n := 0.0
	for _, v := range d {
		n += v * v
	}
	n = math.Sqrt(n)
	if n == 0 {
		return d
	}
	for i := range d {
		d[i] /= n
	}
	return d
}

// nullSpace computes an orthonormal basis of the equality constraints' null
// space via SVD; chain directions stay inside the affine hull.
func nullSpace(p *Polytope) (*mat.Dense, error) {
	rows := len(p.Eqs)
	e := mat.NewDense(rows, p.Dim, nil)
	for i, eq := range p.Eqs {
		for j, c := range eq.A {
			e.Set(i, j, c)
		}
	}
	var svd mat.SVD
	if !svd.Factorize(e, mat.SVDFullV) {
		return nil, schema.ErrNumerical
	}
	var v mat.Dense
	svd.VTo(&v)
	values := svd.Values(nil)
	rank := 0
	for _, s := range values {
		if s > 1e-10 {
			rank++
		}
	}
	if rank >= p.Dim {
		// The affine hull is a single point; no direction exists.
		return nil, schema.ErrNumerical
	}
	basis := mat.NewDense(p.Dim, p.Dim-rank, nil)
	for j := rank; j < p.Dim; j++ {
		for i := 0; i < p.Dim; i++ {
			basis.Set(i, j-rank, v.At(i, j))
		}
	}
	return basis, nil
}
