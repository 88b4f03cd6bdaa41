package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/autograde/grader/internal/types"
)

type OutlierRule string

const (
	// Median centre, spread from the median absolute deviation
	OutlierRobust OutlierRule = "robust"
	// Mean centre, spread from the sample standard deviation
	OutlierClassic OutlierRule = "classic"
)

const (
	DefaultTotalPoints  = 100.0
	DefaultOutlierSigma = 2.0

	HighConfidence   = 0.7
	MediumConfidence = 0.4

	// Scales a MAD to a standard deviation for normally distributed scores
	madScale = 1.4826
)

type Options struct {
	Bands        types.BandTable
	OutlierRule  OutlierRule
	TotalPoints  float64
	OutlierSigma float64
}

func (o Options) withDefaults() Options {
	if o.TotalPoints <= 0 {
		o.TotalPoints = DefaultTotalPoints
	}
	if o.OutlierSigma <= 0 {
		o.OutlierSigma = DefaultOutlierSigma
	}
	if o.OutlierRule == "" {
		o.OutlierRule = OutlierRobust
	}

	return o
}

// Summary statistics of an assignment's grades. samples is not modified.
func Compute(samples []types.GradeSample, opts Options) types.AssignmentAnalytics {
	opts = opts.withDefaults()

	result := types.AssignmentAnalytics{
		Count:        len(samples),
		Distribution: map[string]int{},
		Deciles:      map[string]int{},
		Outliers:     []types.Outlier{},
	}
	if len(samples) == 0 {
		return result
	}

	scores := make([]float64, len(samples))
	for i, s := range samples {
		scores[i] = s.Score
	}
	sorted := sortedCopy(scores)

	result.Mean = mean(scores)
	result.Median = median(sorted)
	result.Min = sorted[0]
	result.Max = sorted[len(sorted)-1]
	result.StdDev = stdDev(scores, result.Mean)

	for _, s := range samples {
		result.Distribution[band(s.Score, opts)]++
		result.Deciles[decile(types.Percent(s.Score, opts.TotalPoints))]++

		switch {
		case s.Confidence == nil:
		case *s.Confidence >= HighConfidence:
			result.ConfidenceBuckets.High++
		case *s.Confidence >= MediumConfidence:
			result.ConfidenceBuckets.Medium++
		default:
			result.ConfidenceBuckets.Low++
		}
	}

	result.Outliers = outliers(samples, sorted, result, opts)

	return result
}

func band(score float64, opts Options) string {
	if len(opts.Bands) > 0 {
		return opts.Bands.Lookup(score)
	}

	return types.DefaultLetterBands().Lookup(types.Percent(score, opts.TotalPoints))
}

// Bucket label for a percentage, "90-100" holds the top bucket
func decile(pct float64) string {
	switch {
	case pct >= 90:
		return "90-100"
	case pct < 0:
		return "0-9"
	}

	lower := int(pct/10) * 10
	return fmt.Sprintf("%d-%d", lower, lower+9)
}

func outliers(
	samples []types.GradeSample,
	sorted []float64,
	stats types.AssignmentAnalytics,
	opts Options,
) []types.Outlier {
	found := []types.Outlier{}
	if len(samples) < 2 {
		return found
	}

	// A zero MAD falls back to the classic rule as a whole, centre included
	centre, spread := stats.Mean, stats.StdDev
	if opts.OutlierRule == OutlierRobust {
		if mad := medianAbsoluteDeviation(sorted, stats.Median); mad > 0 {
			centre, spread = stats.Median, madScale*mad
		}
	}
	if spread == 0 {
		return found
	}

	for _, s := range samples {
		z := (s.Score - centre) / spread
		if math.Abs(z) <= opts.OutlierSigma {
			continue
		}

		found = append(found, types.Outlier{
			StudentID: s.StudentID,
			Score:     s.Score,
			Deviation: s.Score - stats.Mean,
			ZScore:    z,
		})
	}

	return found
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return sorted
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}

	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Sample standard deviation, 0 below two values
func stdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}

	return math.Sqrt(sum / float64(len(values)-1))
}

func medianAbsoluteDeviation(sorted []float64, centre float64) float64 {
	deviations := make([]float64, len(sorted))
	for i, v := range sorted {
		deviations[i] = math.Abs(v - centre)
	}
	sort.Float64s(deviations)

	return median(deviations)
}
