package outwriter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deatools/deascope/schema"
)

// captureFile renders into a temp file and returns its contents.
func captureFile(t *testing.T, cfg *Config, render func(cfg *Config) error) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.txt")
	cfg.OutputFile = path
	cfg.NoColor = true
	cfg.Width = 120
	require.NoError(t, render(cfg))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(raw)
}

func extremes() *schema.ExtremesResult {
	return &schema.ExtremesResult{
		Min:   []float64{0.25, 0.5},
		Max:   []float64{1.0, 0.75},
		Super: []float64{1.4, 0.75},
	}
}

func TestPrintExtremesText(t *testing.T) {
	out := captureFile(t, &Config{Output: schema.TextOut, Precision: 2}, func(cfg *Config) error {
		return PrintExtremes("Extreme efficiencies:", []string{"A", "B"}, extremes(), cfg)
	})
	assert.Contains(t, out, "Extreme efficiencies:")
	assert.Contains(t, out, "A")
	assert.Contains(t, out, "0.25")
	assert.Contains(t, out, "1.40")
}

func TestPrintExtremesCSV(t *testing.T) {
	out := captureFile(t, &Config{Output: schema.CSVOut, Precision: 2}, func(cfg *Config) error {
		return PrintExtremes("ignored", []string{"A", "B"}, extremes(), cfg)
	})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Unit,Min,Max,Super", lines[0])
	assert.Equal(t, "A,0.25,1.00,1.40", lines[1])
}

func TestPrintExtremesJSON(t *testing.T) {
	out := captureFile(t, &Config{Output: schema.JSONOut}, func(cfg *Config) error {
		return PrintExtremes("ignored", []string{"A", "B"}, extremes(), cfg)
	})
	assert.Contains(t, out, `"units"`)
	assert.Contains(t, out, `"min"`)
}

func TestPrintRanks(t *testing.T) {
	res := &schema.RanksResult{Min: []int{1, 2}, Max: []int{2, 2}}
	out := captureFile(t, &Config{Output: schema.CSVOut}, func(cfg *Config) error {
		return PrintRanks("Extreme ranks:", []string{"A", "B"}, res, cfg)
	})
	assert.Contains(t, out, "Unit,Best,Worst")
	assert.Contains(t, out, "A,1,2")
}

func TestPrintDistribution(t *testing.T) {
	res := &schema.DistributionResult{
		Histogram: [][]float64{{0.5, 0.5}, {1, 0}},
		Expected:  []float64{0.5, 0.2},
	}
	out := captureFile(t, &Config{Output: schema.TextOut, Precision: 2}, func(cfg *Config) error {
		return PrintDistribution("Efficiency distribution:", []string{"A", "B"}, ValueBinHeaders(2), res, cfg)
	})
	assert.Contains(t, out, "Efficiency distribution:")
	assert.Contains(t, out, "[0.00-0.50]")
	assert.Contains(t, out, "(0.50-1.00]")
}

func TestPrintPreferences(t *testing.T) {
	res := &schema.PreferenceResult{
		Necessary: [][]bool{{true, true}, {false, true}},
		Possible:  [][]bool{{true, true}, {true, true}},
	}
	out := captureFile(t, &Config{Output: schema.CSVOut}, func(cfg *Config) error {
		return PrintPreferences("Preference relations:", []string{"A", "B"}, res, cfg)
	})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "A,N,N", lines[1])
	assert.Equal(t, "B,P,N", lines[2])
}

func TestPrintPEOI(t *testing.T) {
	res := &schema.PEOIResult{Matrix: [][]float64{{1, 0.8}, {0.2, 1}}}
	out := captureFile(t, &Config{Output: schema.CSVOut, Precision: 1}, func(cfg *Config) error {
		return PrintPEOI("PEOI:", []string{"A", "B"}, res, cfg)
	})
	assert.Contains(t, out, "A,1.0,0.8")
	assert.Contains(t, out, "B,0.2,1.0")
}

func TestValueBinHeaders(t *testing.T) {
	headers := ValueBinHeaders(4)
	assert.Equal(t, []string{"[0.00-0.25]", "(0.25-0.50]", "(0.50-0.75]", "(0.75-1.00]"}, headers)
}

func TestRankBinHeaders(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, RankBinHeaders(3))
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "short", truncateName("short", 10))
	assert.Equal(t, "a-very-...", truncateName("a-very-long-unit-name", 10))
}
