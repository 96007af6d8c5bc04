package core

import (
	"math"
	"testing"
)

func FuzzValueBin(f *testing.F) {
	f.Add(0.0, 10)
	f.Add(1.0, 10)
	f.Add(0.5, 3)
	f.Add(-0.1, 5)
	f.Add(1.5, 7)
	f.Fuzz(func(t *testing.T, v float64, bins int) {
		if bins <= 0 || bins > 1<<16 || math.IsNaN(v) {
			t.Skip()
		}
		idx := valueBin(v, bins)
		if idx < 0 || idx >= bins {
			t.Errorf("valueBin(%g, %d) = %d out of range", v, bins, idx)
		}
		// Values inside [0, 1] land in the bin containing them.
		if v > 0 && v <= 1 {
			lo := float64(idx) / float64(bins)
			hi := float64(idx+1) / float64(bins)
			if v <= lo-1e-12 || v > hi+1e-12 {
				t.Errorf("valueBin(%g, %d) = %d misses interval (%g, %g]", v, bins, idx, lo, hi)
			}
		}
	})
}
