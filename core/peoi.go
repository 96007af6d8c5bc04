package core

import (
	"context"

	"github.com/deatools/deascope/core/model"
	"github.com/deatools/deascope/schema"
)

// peoiMatrix aggregates score vectors into pairwise efficiency outranking
// indices: the share of samples where s scores at least as high as t.
// The diagonal is one by definition.
func peoiMatrix(all [][]float64, n, failed int) *schema.PEOIResult {
	res := &schema.PEOIResult{Matrix: make([][]float64, n), FailedSamples: failed}
	for i := 0; i < n; i++ {
		res.Matrix[i] = make([]float64, n)
	}
	for _, scores := range all {
		for s := 0; s < n; s++ {
			for t := 0; t < n; t++ {
				if scores[s] >= scores[t] {
					res.Matrix[s][t]++
				}
			}
		}
	}
	total := float64(len(all))
	for s := 0; s < n; s++ {
		for t := 0; t < n; t++ {
			if total > 0 {
				res.Matrix[s][t] /= total
			}
		}
		res.Matrix[s][s] = 1
	}
	return res
}

// CCRSmaaPreferenceRelations estimates the pairwise efficiency outranking
// indices of the ratio model.
func CCRSmaaPreferenceRelations(ctx context.Context, data *schema.ProblemData, opts *Options) (*schema.PEOIResult, error) {
	o := opts.normalized()
	all, failed, err := collectScores(ctx, o, ccrFactory(data, o.Seed))
	if err != nil {
		return nil, err
	}
	return peoiMatrix(all, data.NumDMUs(), failed), nil
}

// VDEASmaaPreferenceRelations estimates the outranking indices of the
// additive value model.
func VDEASmaaPreferenceRelations(ctx context.Context, data *schema.VDEAProblemData, opts *Options) (*schema.PEOIResult, error) {
	o := opts.normalized()
	all, failed, err := collectScores(ctx, o, vdeaFactory(data, o.Seed))
	if err != nil {
		return nil, err
	}
	return peoiMatrix(all, data.NumDMUs(), failed), nil
}

// HierarchicalVDEASmaaPreferenceRelations estimates the outranking indices
// at the named hierarchy node.
func HierarchicalVDEASmaaPreferenceRelations(ctx context.Context, data *schema.HierarchicalVDEAProblemData, node string, opts *Options) (*schema.PEOIResult, error) {
	o := opts.normalized()
	hc, err := model.NewHierarchyContext(data, node)
	if err != nil {
		return nil, err
	}
	all, failed, err := collectScores(ctx, o, hierarchicalFactory(data, hc, o.Seed))
	if err != nil {
		return nil, err
	}
	return peoiMatrix(all, data.NumDMUs(), failed), nil
}

// ImpreciseVDEASmaaPreferenceRelations estimates the outranking indices
// over weights, performances and value-function shapes.
func ImpreciseVDEASmaaPreferenceRelations(ctx context.Context, data *schema.ImpreciseVDEAProblemData, opts *Options) (*schema.PEOIResult, error) {
	o := opts.normalized()
	if err := data.Validate(); err != nil {
		return nil, err
	}
	all, failed, err := collectScores(ctx, o, impreciseVDEAFactory(data, o.Seed))
	if err != nil {
		return nil, err
	}
	return peoiMatrix(all, data.NumDMUs(), failed), nil
}

// ImpreciseCCRSmaaPreferenceRelations estimates the outranking indices of
// the imprecise ratio model.
func ImpreciseCCRSmaaPreferenceRelations(ctx context.Context, data *schema.CCRImpreciseProblemData, opts *Options) (*schema.PEOIResult, error) {
	o := opts.normalized()
	if err := data.Validate(); err != nil {
		return nil, err
	}
	all, failed, err := collectScores(ctx, o, impreciseCCRFactory(data, o.Seed))
	if err != nil {
		return nil, err
	}
	return peoiMatrix(all, data.NumDMUs(), failed), nil
}
