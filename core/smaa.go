package core

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/deatools/deascope/core/model"
	"github.com/deatools/deascope/internal/sampler"
	"github.com/deatools/deascope/schema"
)

// scoreFactory prepares one worker's scoring stream: the worker index seeds
// the stream, and the returned function produces the per-DMU scores of one
// sample. Sample-local trouble (a degenerate draw) is reported as an error
// and skipped by the engine.
type scoreFactory func(ctx context.Context, worker int) (func(ctx context.Context) ([]float64, error), error)

// weightChainFactory builds the usual factory over a weight polytope: each
// worker runs its own hit-and-run chain on a split random stream and maps
// every drawn weight vector through score.
func weightChainFactory(poly *sampler.Polytope, seed uint64, score func(w []float64, rng *rand.Rand) ([]float64, error)) scoreFactory {
	return func(ctx context.Context, worker int) (func(ctx context.Context) ([]float64, error), error) {
		rng := sampler.Stream(seed, uint64(worker))
		chain, err := sampler.NewHitAndRun(ctx, poly, oracle(), rng)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) ([]float64, error) {
			w, err := chain.Next(ctx)
			if err != nil {
				return nil, err
			}
			return score(w, rng)
		}, nil
	}
}

// collectScores draws o.Samples score vectors, sharded over o.Workers
// deterministic streams, and merges them in worker order. More than a
// tenth of failed samples fails the whole call.
func collectScores(ctx context.Context, o Options, factory scoreFactory) ([][]float64, int, error) {
	workers := o.Workers
	if workers > o.Samples {
		workers = o.Samples
	}
	perWorker := make([][][]float64, workers)
	fails := make([]int, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		count := o.Samples / workers
		if w < o.Samples%workers {
			count++
		}
		g.Go(func() error {
			next, err := factory(gctx, w)
			if err != nil {
				return err
			}
			local := make([][]float64, 0, count)
			for i := 0; i < count; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				scores, err := next(gctx)
				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
						errors.Is(err, schema.ErrInfeasible) || errors.Is(err, schema.ErrNumerical) {
						return err
					}
					fails[w]++
					continue
				}
				local = append(local, scores)
			}
			perWorker[w] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// No partial samples are emitted.
			return nil, 0, &schema.PartialError{Cause: err}
		}
		return nil, 0, err
	}

	failed := 0
	var all [][]float64
	for w := 0; w < workers; w++ {
		failed += fails[w]
		all = append(all, perWorker[w]...)
	}
	if failed*10 > o.Samples {
		return nil, failed, schema.ErrTooManyFailedSamples
	}
	return all, failed, nil
}

// valueBin places a value from [0, 1] into one of bins half-open
// right-closed intervals; the first bin is closed on both ends. A value
// within 1e-12 bin widths above a boundary counts as on it, so rounding
// noise in the sampled weights does not move it into the next bin.
func valueBin(v float64, bins int) int {
	idx := int(math.Ceil(v*float64(bins)-1e-12)) - 1
	if idx < 0 {
		return 0
	}
	if idx >= bins {
		return bins - 1
	}
	return idx
}

// valueDistribution aggregates score vectors into per-DMU histograms over
// bins value intervals plus sample means.
func valueDistribution(all [][]float64, n, bins, failed int) *schema.DistributionResult {
	res := &schema.DistributionResult{
		Histogram:     make([][]float64, n),
		Expected:      make([]float64, n),
		FailedSamples: failed,
	}
	perDMU := make([][]float64, n)
	for i := 0; i < n; i++ {
		res.Histogram[i] = make([]float64, bins)
		perDMU[i] = make([]float64, 0, len(all))
	}
	for _, scores := range all {
		for i, v := range scores {
			res.Histogram[i][valueBin(v, bins)]++
			perDMU[i] = append(perDMU[i], v)
		}
	}
	total := float64(len(all))
	for i := 0; i < n; i++ {
		if total > 0 {
			for b := range res.Histogram[i] {
				res.Histogram[i][b] /= total
			}
			res.Expected[i], _ = stats.Mean(perDMU[i])
		}
	}
	return res
}

// sampleRanks converts one score vector into strict competition ranks.
func sampleRanks(scores []float64) []int {
	out := make([]int, len(scores))
	for i, v := range scores {
		rank := 1
		for j, u := range scores {
			if j != i && u > v {
				rank++
			}
		}
		out[i] = rank
	}
	return out
}

// rankDistribution aggregates score vectors into per-DMU rank histograms
// (n bins, one per rank) plus expected ranks.
func rankDistribution(all [][]float64, n, failed int) *schema.DistributionResult {
	res := &schema.DistributionResult{
		Histogram:     make([][]float64, n),
		Expected:      make([]float64, n),
		FailedSamples: failed,
	}
	perDMU := make([][]float64, n)
	for i := 0; i < n; i++ {
		res.Histogram[i] = make([]float64, n)
		perDMU[i] = make([]float64, 0, len(all))
	}
	for _, scores := range all {
		for i, r := range sampleRanks(scores) {
			res.Histogram[i][r-1]++
			perDMU[i] = append(perDMU[i], float64(r))
		}
	}
	total := float64(len(all))
	for i := 0; i < n; i++ {
		if total > 0 {
			for b := range res.Histogram[i] {
				res.Histogram[i][b] /= total
			}
			res.Expected[i], _ = stats.Mean(perDMU[i])
		}
	}
	return res
}

// toDistances converts score vectors into distances to the sample's best.
func toDistances(all [][]float64) [][]float64 {
	out := make([][]float64, len(all))
	for m, scores := range all {
		best := 0.0
		for _, v := range scores {
			if v > best {
				best = v
			}
		}
		row := make([]float64, len(scores))
		for i, v := range scores {
			row[i] = best - v
		}
		out[m] = row
	}
	return out
}

// ccrFactory scores the ratio model over its weight polytope.
func ccrFactory(data *schema.ProblemData, seed uint64) scoreFactory {
	poly := model.BuildCCRWeightPolytope(data)
	return weightChainFactory(poly, seed, func(w []float64, _ *rand.Rand) ([]float64, error) {
		return model.CCRSampleEfficiencies(data, w)
	})
}

// vdeaFactory scores the additive value model over its weight polytope.
func vdeaFactory(data *schema.VDEAProblemData, seed uint64) scoreFactory {
	values := data.ValueMatrix()
	poly := model.BuildVDEAWeightPolytope(data.Constraints, data.FactorNames())
	return weightChainFactory(poly, seed, func(w []float64, _ *rand.Rand) ([]float64, error) {
		return model.VDEASampleScores(values, w), nil
	})
}

// hierarchicalFactory scores the value model at a node, renormalizing each
// globally sampled weight vector to the node's subtree.
func hierarchicalFactory(data *schema.HierarchicalVDEAProblemData, hc *model.HierarchyContext, seed uint64) scoreFactory {
	values := data.ValueMatrix()
	poly := model.BuildHierarchicalWeightPolytope(hc)
	return weightChainFactory(poly, seed, func(w []float64, _ *rand.Rand) ([]float64, error) {
		scores, ok := model.HierarchicalSampleScores(values, hc, w)
		if !ok {
			return nil, errDegenerateSample
		}
		return scores, nil
	})
}

// impreciseVDEAFactory draws weights, performances and value functions
// jointly.
func impreciseVDEAFactory(data *schema.ImpreciseVDEAProblemData, seed uint64) scoreFactory {
	poly := model.BuildVDEAWeightPolytope(data.Constraints, data.FactorNames())
	perf := sampler.NewImpreciseVDEASampler(data)
	return weightChainFactory(poly, seed, func(w []float64, rng *rand.Rand) ([]float64, error) {
		values := perf.Next(rng)
		return model.VDEASampleScores(values, w), nil
	})
}

// impreciseCCRFactory draws weights and performance realizations jointly.
func impreciseCCRFactory(data *schema.CCRImpreciseProblemData, seed uint64) scoreFactory {
	poly := model.BuildImpreciseCCRWeightPolytope(data)
	perf := sampler.NewImpreciseCCRSampler(data)
	return weightChainFactory(poly, seed, func(w []float64, rng *rand.Rand) ([]float64, error) {
		return model.ImpreciseCCRSampleEfficiencies(data, w, perf.Next(rng))
	})
}

var errDegenerateSample = errors.New("degenerate sample")

// CCRSmaaEfficiency estimates the efficiency distribution of every DMU
// under uniform weight sampling of the ratio model.
func CCRSmaaEfficiency(ctx context.Context, data *schema.ProblemData, opts *Options) (*schema.DistributionResult, error) {
	o := opts.normalized()
	all, failed, err := collectScores(ctx, o, ccrFactory(data, o.Seed))
	if err != nil {
		return nil, err
	}
	return valueDistribution(all, data.NumDMUs(), o.Bins, failed), nil
}

// CCRSmaaRanks estimates the rank distribution under the ratio model.
func CCRSmaaRanks(ctx context.Context, data *schema.ProblemData, opts *Options) (*schema.DistributionResult, error) {
	o := opts.normalized()
	all, failed, err := collectScores(ctx, o, ccrFactory(data, o.Seed))
	if err != nil {
		return nil, err
	}
	return rankDistribution(all, data.NumDMUs(), failed), nil
}

// VDEASmaaEfficiency estimates the efficiency distribution of the additive
// value model.
func VDEASmaaEfficiency(ctx context.Context, data *schema.VDEAProblemData, opts *Options) (*schema.DistributionResult, error) {
	o := opts.normalized()
	all, failed, err := collectScores(ctx, o, vdeaFactory(data, o.Seed))
	if err != nil {
		return nil, err
	}
	return valueDistribution(all, data.NumDMUs(), o.Bins, failed), nil
}

// VDEASmaaDistance estimates the distribution of the distance to the best
// unit under the additive value model.
func VDEASmaaDistance(ctx context.Context, data *schema.VDEAProblemData, opts *Options) (*schema.DistributionResult, error) {
	o := opts.normalized()
	all, failed, err := collectScores(ctx, o, vdeaFactory(data, o.Seed))
	if err != nil {
		return nil, err
	}
	return valueDistribution(toDistances(all), data.NumDMUs(), o.Bins, failed), nil
}

// VDEASmaaRanks estimates the rank distribution of the additive value
// model.
func VDEASmaaRanks(ctx context.Context, data *schema.VDEAProblemData, opts *Options) (*schema.DistributionResult, error) {
	o := opts.normalized()
	all, failed, err := collectScores(ctx, o, vdeaFactory(data, o.Seed))
	if err != nil {
		return nil, err
	}
	return rankDistribution(all, data.NumDMUs(), failed), nil
}

// HierarchicalVDEASmaaEfficiency estimates the efficiency distribution at
// the named hierarchy node.
func HierarchicalVDEASmaaEfficiency(ctx context.Context, data *schema.HierarchicalVDEAProblemData, node string, opts *Options) (*schema.DistributionResult, error) {
	o := opts.normalized()
	hc, err := model.NewHierarchyContext(data, node)
	if err != nil {
		return nil, err
	}
	all, failed, err := collectScores(ctx, o, hierarchicalFactory(data, hc, o.Seed))
	if err != nil {
		return nil, err
	}
	return valueDistribution(all, data.NumDMUs(), o.Bins, failed), nil
}

// HierarchicalVDEASmaaDistance estimates the distance distribution at the
// named hierarchy node.
func HierarchicalVDEASmaaDistance(ctx context.Context, data *schema.HierarchicalVDEAProblemData, node string, opts *Options) (*schema.DistributionResult, error) {
	o := opts.normalized()
	hc, err := model.NewHierarchyContext(data, node)
	if err != nil {
		return nil, err
	}
	all, failed, err := collectScores(ctx, o, hierarchicalFactory(data, hc, o.Seed))
	if err != nil {
		return nil, err
	}
	return valueDistribution(toDistances(all), data.NumDMUs(), o.Bins, failed), nil
}

// HierarchicalVDEASmaaRanks estimates the rank distribution at the named
// hierarchy node.
func HierarchicalVDEASmaaRanks(ctx context.Context, data *schema.HierarchicalVDEAProblemData, node string, opts *Options) (*schema.DistributionResult, error) {
	o := opts.normalized()
	hc, err := model.NewHierarchyContext(data, node)
	if err != nil {
		return nil, err
	}
	all, failed, err := collectScores(ctx, o, hierarchicalFactory(data, hc, o.Seed))
	if err != nil {
		return nil, err
	}
	return rankDistribution(all, data.NumDMUs(), failed), nil
}

// ImpreciseVDEASmaaEfficiency estimates the efficiency distribution over
// weights, performances and value-function shapes.
func ImpreciseVDEASmaaEfficiency(ctx context.Context, data *schema.ImpreciseVDEAProblemData, opts *Options) (*schema.DistributionResult, error) {
	o := opts.normalized()
	if err := data.Validate(); err != nil {
		return nil, err
	}
	all, failed, err := collectScores(ctx, o, impreciseVDEAFactory(data, o.Seed))
	if err != nil {
		return nil, err
	}
	return valueDistribution(all, data.NumDMUs(), o.Bins, failed), nil
}

// ImpreciseVDEASmaaDistance estimates the distance distribution of the
// imprecise value model.
func ImpreciseVDEASmaaDistance(ctx context.Context, data *schema.ImpreciseVDEAProblemData, opts *Options) (*schema.DistributionResult, error) {
	o := opts.normalized()
	if err := data.Validate(); err != nil {
		return nil, err
	}
	all, failed, err := collectScores(ctx, o, impreciseVDEAFactory(data, o.Seed))
	if err != nil {
		return nil, err
	}
	return valueDistribution(toDistances(all), data.NumDMUs(), o.Bins, failed), nil
}

// ImpreciseVDEASmaaRanks estimates the rank distribution of the imprecise
// value model.
func ImpreciseVDEASmaaRanks(ctx context.Context, data *schema.ImpreciseVDEAProblemData, opts *Options) (*schema.DistributionResult, error) {
	o := opts.normalized()
	if err := data.Validate(); err != nil {
		return nil, err
	}
	all, failed, err := collectScores(ctx, o, impreciseVDEAFactory(data, o.Seed))
	if err != nil {
		return nil, err
	}
	return rankDistribution(all, data.NumDMUs(), failed), nil
}

// ImpreciseCCRSmaaEfficiency estimates the efficiency distribution of the
// imprecise ratio model.
func ImpreciseCCRSmaaEfficiency(ctx context.Context, data *schema.CCRImpreciseProblemData, opts *Options) (*schema.DistributionResult, error) {
	o := opts.normalized()
	if err := data.Validate(); err != nil {
		return nil, err
	}
	all, failed, err := collectScores(ctx, o, impreciseCCRFactory(data, o.Seed))
	if err != nil {
		return nil, err
	}
	return valueDistribution(all, data.NumDMUs(), o.Bins, failed), nil
}

// ImpreciseCCRSmaaRanks estimates the rank distribution of the imprecise
// ratio model.
func ImpreciseCCRSmaaRanks(ctx context.Context, data *schema.CCRImpreciseProblemData, opts *Options) (*schema.DistributionResult, error) {
	o := opts.normalized()
	if err := data.Validate(); err != nil {
		return nil, err
	}
	all, failed, err := collectScores(ctx, o, impreciseCCRFactory(data, o.Seed))
	if err != nil {
		return nil, err
	}
	return rankDistribution(all, data.NumDMUs(), failed), nil
}
