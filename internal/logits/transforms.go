package logits

import (
	"cmp"
	"math"
	"slices"
)

var negInf = float32(math.Inf(-1))

// Scale divides every score by temperature.
func Scale(scores []float32, temperature float32) {
	if temperature == 1 {
		return
	}
	for i := range scores {
		scores[i] /= temperature
	}
}

// Penalize divides the score of every distinct token in seen by penalty.
// Ids outside the vocabulary are ignored.
func Penalize(scores []float32, seen []int, penalty float32) {
	if penalty == 1 || len(seen) == 0 {
		return
	}
	done := make(map[int]struct{}, len(seen))
	for _, id := range seen {
		if id < 0 || id >= len(scores) {
			continue
		}
		if _, ok := done[id]; ok {
			continue
		}
		done[id] = struct{}{}
		scores[id] /= penalty
	}
}

// TopK keeps the k highest scores and masks the rest with -Inf. Entries tied
// with the k-th value survive. k <= 0 and k == len(scores) leave scores
// untouched; k > len(scores) does too, and reports overflow so the caller can
// warn about it.
func TopK(scores []float32, k int) (overflow bool) {
	if k <= 0 || k == len(scores) {
		return false
	}
	if k > len(scores) {
		return true
	}
	sorted := slices.Clone(scores)
	slices.Sort(sorted)
	threshold := sorted[len(sorted)-k]
	for i, v := range scores {
		if v < threshold {
			scores[i] = negInf
		}
	}
	return false
}

// TopP is nucleus filtering. Entries are ranked by descending score (ties in
// index order) and an entry is masked when the probability mass of everything
// ranked above it is strictly greater than p. The best entry is therefore
// always kept. p <= 0 and p >= 1 are no-ops.
func TopP(scores []float32, p float64) {
	if p <= 0 || p >= 1 || len(scores) < 2 {
		return
	}
	probs := Softmax(scores)
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(scores[b], scores[a]) })

	var mass float64
	for rank, idx := range order {
		if rank > 0 && mass > p {
			scores[idx] = negInf
		}
		mass += probs[idx]
	}
}

// Softmax returns normalized probabilities. -Inf scores get probability 0; if
// every score is -Inf the result is all zeros.
func Softmax(scores []float32) []float64 {
	probs := make([]float64, len(scores))
	if len(scores) == 0 {
		return probs
	}
	maxv := math.Inf(-1)
	for _, v := range scores {
		maxv = max(maxv, float64(v))
	}
	if math.IsInf(maxv, -1) {
		return probs
	}
	var sum float64
	for i, v := range scores {
		if math.IsInf(float64(v), -1) {
			continue
		}
		e := math.Exp(float64(v) - maxv)
		probs[i] = e
		sum += e
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// Argmax returns the index of the largest score, the lowest index on ties.
// It panics on an empty slice.
func Argmax(scores []float32) int {
	if len(scores) == 0 {
		panic("argmax: empty slice")
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}

// Draw picks an index from a categorical distribution given a uniform r in
// [0, 1). Rounding leftovers fall to the last index with non-zero mass.
func Draw(probs []float64, r float64) int {
	var c float64
	last := -1
	for i, p := range probs {
		if p <= 0 {
			continue
		}
		last = i
		c += p
		if r < c {
			return i
		}
	}
	if last < 0 {
		return 0
	}
	return last
}
