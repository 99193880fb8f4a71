// Package threshold derives per-ticker entry trigger levels from each
// ticker's own historical indicator distribution. A fixed oversold level
// behaves differently across tickers with structurally different RSI
// distributions; taking a low percentile of the ticker's own history adapts
// the trigger while the clamp keeps it contrarian.
package threshold

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	// MinLevel is the floor for an adaptive threshold; anything lower would
	// demand a dip too rare to ever trigger.
	MinLevel = 25.0
	// MaxLevel caps the threshold at the RSI midline so the trigger can
	// never become non-contrarian.
	MaxLevel = 50.0
)

// Adaptive computes the percentile-th percentile of the defined values in
// history, clamped to [MinLevel, MaxLevel] and rounded to 2 decimals. NaN
// entries are treated as undefined. When history holds no defined values at
// all there is no distribution to adapt from and baseLevel is returned
// unchanged. Deterministic, no side effects.
func Adaptive(history []float64, baseLevel, percentile float64) float64 {
	defined := make([]float64, 0, len(history))
	for _, v := range history {
		if !math.IsNaN(v) {
			defined = append(defined, v)
		}
	}
	if len(defined) == 0 {
		return baseLevel
	}

	sort.Float64s(defined)
	adaptive := stat.Quantile(percentile/100, stat.Empirical, defined, nil)

	clamped := math.Max(MinLevel, math.Min(MaxLevel, adaptive))
	return math.Round(clamped*100) / 100
}
