// Package trust scores canonical vessel records. A record earns trust
// from each source that reports it; independent corroboration can only
// raise the combined score, never lower it.
package trust

// SourceScore is the trust one source contributes for one vessel: the
// source's authority weight scaled by how complete its current
// observation is. Both inputs are clamped to [0,1].
func SourceScore(authority, completeness float64) float64 {
	return clamp01(authority) * clamp01(completeness)
}

// Combined folds per-source scores into one cross-source trust value
// using the complement product: 1 - Π(1 - s). The result is bounded by
// [0,1] and grows monotonically with every added source, which keeps
// corroborated records above single-source ones.
func Combined(scores []float64) float64 {
	rem := 1.0
	for _, s := range scores {
		rem *= 1 - clamp01(s)
	}
	return 1 - rem
}

// Eligible reports whether a vessel's combined trust clears the
// training threshold.
func Eligible(score, threshold float64) bool {
	return score >= threshold
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
