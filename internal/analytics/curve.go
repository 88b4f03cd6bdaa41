package analytics

import "math"

// Shift every score so the mean lands on targetMean, clamped to [0, total]
func Curve(scores []float64, targetMean, total float64) []float64 {
	curved := make([]float64, len(scores))
	if len(scores) == 0 {
		return curved
	}

	shift := targetMean - mean(scores)
	for i, s := range scores {
		curved[i] = clamp(s+shift, total)
	}

	return curved
}

// Rescale scores linearly onto [0, total]. Identical scores all map to total.
func Normalize(scores []float64, total float64) []float64 {
	normalized := make([]float64, len(scores))
	if len(scores) == 0 {
		return normalized
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range scores {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}

	for i, s := range scores {
		if hi == lo {
			normalized[i] = total
			continue
		}
		normalized[i] = (s - lo) / (hi - lo) * total
	}

	return normalized
}

func clamp(score, total float64) float64 {
	return math.Max(0, math.Min(total, score))
}
