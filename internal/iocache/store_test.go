package iocache

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deatools/deascope/schema"
)

func tempStore(t *testing.T) *RunStore {
	t.Helper()
	store, err := NewRunStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunStoreRoundTrip(t *testing.T) {
	store := tempStore(t)
	require.True(t, store.Enabled())

	start := time.Now()
	runID, err := store.BeginRun(start, schema.CCRModel, "efficiency", map[string]any{"workers": 4})
	require.NoError(t, err)
	require.NotZero(t, runID)

	names := []string{"A", "B", "C"}
	min := []float64{0.2, 0.5, math.NaN()}
	max := []float64{0.9, 1.0, math.NaN()}
	require.NoError(t, store.SaveUnitScores(runID, schema.EfficiencyIndicator, names, min, max, nil))
	require.NoError(t, store.EndRun(runID, start.Add(time.Second), len(names)))

	st, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Runs)
	assert.Equal(t, int64(3), st.Scores)

	runs, err := store.ExportRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "efficiency", runs[0].Analysis)
	assert.Equal(t, string(schema.CCRModel), runs[0].Model)
	require.NotNil(t, runs[0].TotalUnits)
	assert.Equal(t, int32(3), *runs[0].TotalUnits)

	scores, err := store.ExportUnitScores()
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, "A", scores[0].UnitName)
	require.NotNil(t, scores[0].MinValue)
	assert.InDelta(t, 0.2, *scores[0].MinValue, 1e-12)
	// NaN entries are persisted as NULL.
	assert.Nil(t, scores[2].MinValue)
	assert.Nil(t, scores[2].MaxValue)
}

func TestRunStoreClear(t *testing.T) {
	store := tempStore(t)
	runID, err := store.BeginRun(time.Now(), schema.VDEAModel, "ranks", nil)
	require.NoError(t, err)
	require.NoError(t, store.SaveUnitScores(runID, schema.RankIndicator, []string{"A"}, []float64{1}, []float64{2}, nil))

	require.NoError(t, store.Clear())
	st, err := store.GetStatus()
	require.NoError(t, err)
	assert.Zero(t, st.Runs)
	assert.Zero(t, st.Scores)
}

func TestRunStoreDisabled(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)
	assert.False(t, store.Enabled())

	runID, err := store.BeginRun(time.Now(), schema.CCRModel, "efficiency", nil)
	require.NoError(t, err)
	assert.Zero(t, runID)
	assert.NoError(t, store.SaveUnitScores(1, schema.EfficiencyIndicator, []string{"A"}, nil, nil, nil))
	assert.NoError(t, store.Clear())

	st, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, schema.NoneBackend, st.Backend)
}

func TestRunStoreUnsupportedBackend(t *testing.T) {
	_, err := NewRunStore(schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
}

func TestMigrateDownAndUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewRunStore(schema.SQLiteBackend, path)
	require.NoError(t, err)

	// Roll all the way back, then forward again.
	require.NoError(t, Migrate(store.db, schema.SQLiteBackend, 0))
	require.NoError(t, Migrate(store.db, schema.SQLiteBackend, -1))

	_, err = store.BeginRun(time.Now(), schema.CCRModel, "efficiency", nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}
