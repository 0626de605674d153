package flux

// ToIntervals converts a StreamResult's cumulative per-revolution tick
// timestamps into actual flux intervals (the duration of each cell),
// since DecodeStream records each sample as a running accumulator value
// rather than a delta. The interval for a revolution's first sample is
// measured from the previous revolution's index crossing (or from zero,
// for the first revolution), so the returned revolutions line up with
// model.Revolution.Flux's documented meaning: the transition durations
// observed during that single disk rotation.
func ToIntervals(res *StreamResult) [][]uint64 {
	out := make([][]uint64, len(res.RevolutionTicks))
	var prevBoundary uint64
	for r, rev := range res.RevolutionTicks {
		intervals := make([]uint64, len(rev))
		prev := prevBoundary
		for i, cum := range rev {
			intervals[i] = cum - prev
			prev = cum
		}
		out[r] = intervals
		if r < len(res.IndexTickTimestamps) {
			prevBoundary = res.IndexTickTimestamps[r]
		}
	}
	return out
}

// alignWindow is the number of leading transitions used to pattern-match
// revolutions against each other (spec.md §4.3: "match the first ~50
// transitions" within an approximately 100-sample search window).
const (
	alignPatternLen = 50
	alignSearchWin  = 100
	alignTolerance  = 0.10
)

// Align finds, for each revolution after the first, the sample-index
// shift that best lines its leading transitions up with revolution 0's,
// within +/-10% interval tolerance, searching up to a 100-sample window.
// shifts[0] is always 0 (the reference). quality[r] is the fraction of
// the pattern window whose corresponding pair of intervals agreed within
// tolerance at the chosen shift; revolutions that never find an
// acceptable alignment get shift 0 and quality 0.
func Align(revs [][]uint64) (shifts []int, quality []float64) {
	shifts = make([]int, len(revs))
	quality = make([]float64, len(revs))
	if len(revs) == 0 {
		return shifts, quality
	}
	ref := revs[0]
	refLen := alignPatternLen
	if len(ref) < refLen {
		refLen = len(ref)
	}
	quality[0] = 1.0

	for r := 1; r < len(revs); r++ {
		cand := revs[r]
		bestShift := 0
		bestScore := -1.0
		maxShift := alignSearchWin
		if maxShift > len(cand) {
			maxShift = len(cand)
		}
		for shift := 0; shift < maxShift; shift++ {
			score := matchScore(ref, refLen, cand, shift)
			if score > bestScore {
				bestScore = score
				bestShift = shift
			}
		}
		if bestScore < 0 {
			bestScore = 0
		}
		shifts[r] = bestShift
		quality[r] = bestScore
	}
	return shifts, quality
}

// matchScore returns the fraction of up-to-refLen reference intervals
// that agree, within alignTolerance, with the candidate's intervals
// starting at shift.
func matchScore(ref []uint64, refLen int, cand []uint64, shift int) float64 {
	n := refLen
	if shift+n > len(cand) {
		n = len(cand) - shift
	}
	if n <= 0 {
		return 0
	}
	agree := 0
	for i := 0; i < n; i++ {
		a := float64(ref[i])
		b := float64(cand[shift+i])
		if a == 0 && b == 0 {
			agree++
			continue
		}
		diff := a - b
		if diff < 0 {
			diff = -diff
		}
		denom := a
		if b > denom {
			denom = b
		}
		if denom == 0 || diff/denom <= alignTolerance {
			agree++
		}
	}
	return float64(agree) / float64(n)
}
