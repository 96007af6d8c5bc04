package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deatools/deascope/schema"
)

// assertPEOIInvariants checks the unit diagonal and near-complementarity of
// off-diagonal pairs (exact up to sampled ties).
func assertPEOIInvariants(t *testing.T, res *schema.PEOIResult, samples int) {
	t.Helper()
	n := len(res.Matrix)
	slack := 2.0 / float64(samples)
	for i := 0; i < n; i++ {
		assert.Equal(t, 1.0, res.Matrix[i][i], "diagonal at %d", i)
		for j := 0; j < n; j++ {
			v := res.Matrix[i][j]
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
			if i != j {
				sum := v + res.Matrix[j][i]
				assert.GreaterOrEqual(t, sum, 1.0-1e-9, "pair (%d,%d)", i, j)
				assert.LessOrEqual(t, sum, 1.0+slack+1e-9, "pair (%d,%d)", i, j)
			}
		}
	}
}

func TestCCRSmaaPreferenceRelationsToy(t *testing.T) {
	data := toyCCR(t)
	opts := &Options{Samples: 200, Seed: 5, Workers: 2}
	res, err := CCRSmaaPreferenceRelations(context.Background(), data, opts)
	require.NoError(t, err)
	assertPEOIInvariants(t, res, opts.Samples)

	// E dominates A for every weight vector, so the index is certain.
	assert.Equal(t, 1.0, res.Matrix[4][0])
	assert.Equal(t, 0.0, res.Matrix[0][4])
}

func TestCCRSmaaPreferenceRelationsDeterminism(t *testing.T) {
	data := toyCCR(t)
	opts := &Options{Samples: 150, Seed: 11, Workers: 3}
	first, err := CCRSmaaPreferenceRelations(context.Background(), data, opts)
	require.NoError(t, err)
	second, err := CCRSmaaPreferenceRelations(context.Background(), data, opts)
	require.NoError(t, err)
	assert.Equal(t, first.Matrix, second.Matrix)
}

func TestVDEASmaaPreferenceRelationsLine(t *testing.T) {
	data := lineVDEA(t)
	res, err := VDEASmaaPreferenceRelations(context.Background(), data, &Options{Samples: 100, Seed: 2, Workers: 1})
	require.NoError(t, err)
	assertPEOIInvariants(t, res, 100)
	assert.Equal(t, 1.0, res.Matrix[0][1])
	assert.Equal(t, 1.0, res.Matrix[0][2])
	assert.Equal(t, 1.0, res.Matrix[1][2])
	assert.Equal(t, 0.0, res.Matrix[2][0])
}

func TestVDEASmaaPreferenceMatchesNecessary(t *testing.T) {
	data := spreadVDEA(t)
	peoi, err := VDEASmaaPreferenceRelations(context.Background(), data, &Options{Samples: 300, Seed: 4, Workers: 2})
	require.NoError(t, err)
	rel, err := VDEAPreferenceRelations(context.Background(), data, nil)
	require.NoError(t, err)
	for i := range peoi.Matrix {
		for j := range peoi.Matrix {
			if rel.Necessary[i][j] {
				assert.Equal(t, 1.0, peoi.Matrix[i][j], "necessary pair (%d,%d)", i, j)
			}
			if peoi.Matrix[i][j] > 0 {
				assert.True(t, rel.Possible[i][j], "sampled support without possibility (%d,%d)", i, j)
			}
		}
	}
}
