package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autograde/grader/internal/analytics"
	"github.com/autograde/grader/internal/types"
)

func samples(scores ...float64) []types.GradeSample {
	out := make([]types.GradeSample, len(scores))
	for i, s := range scores {
		out[i] = types.GradeSample{StudentID: string(rune('a' + i)), Score: s}
	}

	return out
}

func TestCompute(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		result := analytics.Compute(nil, analytics.Options{})
		assert.Zero(t, result.Count)
		assert.Empty(t, result.Distribution)
		assert.NotNil(t, result.Outliers)
	})

	t.Run("Summary", func(t *testing.T) {
		in := samples(95, 87, 76, 82, 91)
		result := analytics.Compute(in, analytics.Options{})

		assert.Equal(t, 5, result.Count)
		assert.InDelta(t, 86.2, result.Mean, 1e-9)
		assert.InDelta(t, 87, result.Median, 1e-9)
		assert.InDelta(t, 76, result.Min, 1e-9)
		assert.InDelta(t, 95, result.Max, 1e-9)
		assert.InDelta(t, 7.4632, result.StdDev, 1e-4)
		assert.Equal(t, map[string]int{"A": 2, "B": 2, "C": 1}, result.Distribution)
		assert.Equal(t, map[string]int{"90-100": 2, "80-89": 2, "70-79": 1}, result.Deciles)
		assert.Empty(t, result.Outliers)

		// input order untouched
		assert.InDelta(t, 95, in[0].Score, 1e-9)
		assert.InDelta(t, 87, in[1].Score, 1e-9)
	})

	t.Run("SingleSample", func(t *testing.T) {
		result := analytics.Compute(samples(42), analytics.Options{})
		assert.InDelta(t, 42, result.Median, 1e-9)
		assert.Zero(t, result.StdDev)
		assert.Empty(t, result.Outliers)
	})

	t.Run("TotalPoints", func(t *testing.T) {
		result := analytics.Compute(samples(9, 4), analytics.Options{TotalPoints: 10})
		assert.Equal(t, map[string]int{"A": 1, "F": 1}, result.Distribution)
		assert.Equal(t, map[string]int{"90-100": 1, "40-49": 1}, result.Deciles)
	})

	t.Run("CustomBands", func(t *testing.T) {
		bands := types.BandTable{
			{Name: "pass", Min: 50, Max: 100},
			{Name: "fail", Min: 0, Max: 50},
		}
		result := analytics.Compute(samples(50, 20, 80), analytics.Options{Bands: bands})
		assert.Equal(t, map[string]int{"pass": 2, "fail": 1}, result.Distribution)
	})

	t.Run("ConfidenceBuckets", func(t *testing.T) {
		in := samples(80, 70, 60, 50)
		high, medium, low := 0.9, 0.4, 0.1
		in[0].Confidence = &high
		in[1].Confidence = &medium
		in[2].Confidence = &low

		result := analytics.Compute(in, analytics.Options{})
		assert.Equal(t, types.ConfidenceBuckets{High: 1, Medium: 1, Low: 1}, result.ConfidenceBuckets)
	})
}

func TestOutliers(t *testing.T) {
	in := samples(95, 15, 87, 92)

	t.Run("Robust", func(t *testing.T) {
		result := analytics.Compute(in, analytics.Options{})

		require.Len(t, result.Outliers, 1)
		outlier := result.Outliers[0]
		assert.Equal(t, "b", outlier.StudentID)
		assert.InDelta(t, 15, outlier.Score, 1e-9)
		assert.InDelta(t, 15-72.25, outlier.Deviation, 1e-9)
		assert.Less(t, outlier.ZScore, -2.0)
	})

	t.Run("ClassicMasked", func(t *testing.T) {
		// the low score inflates the standard deviation enough to hide itself
		result := analytics.Compute(in, analytics.Options{OutlierRule: analytics.OutlierClassic})
		assert.Empty(t, result.Outliers)
	})

	t.Run("ClassicNarrowSigma", func(t *testing.T) {
		result := analytics.Compute(in, analytics.Options{
			OutlierRule:  analytics.OutlierClassic,
			OutlierSigma: 1,
		})
		require.Len(t, result.Outliers, 1)
		assert.Equal(t, "b", result.Outliers[0].StudentID)
	})

	t.Run("ZeroMADFallsBack", func(t *testing.T) {
		result := analytics.Compute(samples(80, 80, 80, 80, 80, 10), analytics.Options{})
		require.Len(t, result.Outliers, 1)
		assert.InDelta(t, 10, result.Outliers[0].Score, 1e-9)

		// mean 80.2, s 0.447: 81 sits 1.79 deviations out
		nearConstant := analytics.Compute(samples(80, 80, 80, 80, 81), analytics.Options{})
		assert.Empty(t, nearConstant.Outliers)
	})

	t.Run("Identical", func(t *testing.T) {
		result := analytics.Compute(samples(70, 70, 70), analytics.Options{})
		assert.Empty(t, result.Outliers)
	})
}

func TestCurve(t *testing.T) {
	curved := analytics.Curve([]float64{50, 60, 70}, 80, 100)
	assert.InDeltaSlice(t, []float64{70, 80, 90}, curved, 1e-9)

	clamped := analytics.Curve([]float64{50, 95}, 80, 100)
	assert.InDeltaSlice(t, []float64{57.5, 100}, clamped, 1e-9)

	assert.Empty(t, analytics.Curve(nil, 80, 100))
}

func TestNormalize(t *testing.T) {
	assert.InDeltaSlice(t, []float64{0, 50, 100}, analytics.Normalize([]float64{20, 40, 60}, 100), 1e-9)
	assert.InDeltaSlice(t, []float64{10, 10}, analytics.Normalize([]float64{3, 3}, 10), 1e-9)
	assert.Empty(t, analytics.Normalize(nil, 10))
}
