package logits

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inf = float32(math.Inf(-1))

func TestTopP(t *testing.T) {
	t.Parallel()
	cases := []struct {
		p      float64
		scores []float32
		want   []float32
	}{
		{0, []float32{0.3, 0.1, 0.2}, []float32{0.3, 0.1, 0.2}},
		{0.01, []float32{0.3, 0.1, 0.2}, []float32{0.3, inf, inf}},
		{1, []float32{0.3, 0.1, 0.2}, []float32{0.3, 0.1, 0.2}},
		{0.2, []float32{0.7, 0.1, 0.2}, []float32{0.7, inf, inf}},
		{0.71, []float32{0.7, 0.1, 0.2}, []float32{0.7, inf, 0.2}},
		{0.71, []float32{0.1, 0.7, 0.2}, []float32{inf, 0.7, 0.2}},
		{0.71, []float32{0.7, 0.2, 0.1}, []float32{0.7, 0.2, inf}},
		{0.91, []float32{0.7, 0.1, 0.2}, []float32{0.7, 0.1, 0.2}},
	}
	for _, tc := range cases {
		got := append([]float32(nil), tc.scores...)
		TopP(got, tc.p)
		assert.Equal(t, tc.want, got, "p=%v scores=%v", tc.p, tc.scores)
	}
}

func TestTopPKeepsBestEntry(t *testing.T) {
	t.Parallel()
	for _, p := range []float64{1e-9, 0.05, 0.5, 0.99} {
		scores := []float32{-2, 9, 0.5, 3}
		TopP(scores, p)
		assert.Equal(t, float32(9), scores[1], "p=%v", p)
	}
}

func TestTopPIgnoresMaskedEntries(t *testing.T) {
	t.Parallel()
	scores := []float32{0.7, inf, 0.2}
	TopP(scores, 0.5)
	assert.Equal(t, []float32{0.7, inf, inf}, scores)
}

func TestTopK(t *testing.T) {
	t.Parallel()
	cases := []struct {
		k    int
		want []float32
	}{
		{0, []float32{0.7, 0.1, 0.2}},
		{1, []float32{0.7, inf, inf}},
		{2, []float32{0.7, inf, 0.2}},
		{3, []float32{0.7, 0.1, 0.2}},
	}
	for _, tc := range cases {
		got := []float32{0.7, 0.1, 0.2}
		overflow := TopK(got, tc.k)
		assert.False(t, overflow)
		assert.Equal(t, tc.want, got, "k=%d", tc.k)
	}
}

func TestTopKOverflow(t *testing.T) {
	t.Parallel()
	scores := []float32{0.5, 0.1, 0.9, 0.3, 0.2}
	overflow := TopK(scores, 10)
	assert.True(t, overflow)
	assert.Equal(t, []float32{0.5, 0.1, 0.9, 0.3, 0.2}, scores)
}

func TestTopKKeepsTies(t *testing.T) {
	t.Parallel()
	scores := []float32{1, 2, 2, 0}
	TopK(scores, 1)
	assert.Equal(t, []float32{inf, 2, 2, inf}, scores)
}

func TestTopKOneKeepsArgmax(t *testing.T) {
	t.Parallel()
	scores := []float32{0.8, 0.1, 0.7, 0.9}
	TopK(scores, 1)
	for i, v := range scores {
		if i == 3 {
			assert.Equal(t, float32(0.9), v)
			continue
		}
		assert.True(t, math.IsInf(float64(v), -1), "index %d", i)
	}
}

func TestScaleAndPenalize(t *testing.T) {
	t.Parallel()
	scores := []float32{2, 4, 8}
	Scale(scores, 2)
	assert.Equal(t, []float32{1, 2, 4}, scores)

	Penalize(scores, []int{2, 2, 0, 17, -1}, 2)
	assert.Equal(t, []float32{0.5, 2, 2}, scores)

	Penalize(scores, []int{1}, 1)
	assert.Equal(t, []float32{0.5, 2, 2}, scores)
}

func TestSoftmax(t *testing.T) {
	t.Parallel()
	probs := Softmax([]float32{0, 0, inf, 0})
	assert.InDeltaSlice(t, []float64{1.0 / 3, 1.0 / 3, 0, 1.0 / 3}, probs, 1e-12)

	assert.Equal(t, []float64{0, 0}, Softmax([]float32{inf, inf}))
	assert.Empty(t, Softmax(nil))
}

func TestArgmaxTiesToLowestIndex(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 3, Argmax([]float32{0.8, 0.1, 0.7, 0.9}))
	assert.Equal(t, 0, Argmax([]float32{0.9, 0.1, 0.7, 0.8}))
	assert.Equal(t, 1, Argmax([]float32{0, 5, 5}))
	assert.Panics(t, func() { Argmax(nil) })
}

func TestDraw(t *testing.T) {
	t.Parallel()
	probs := []float64{0.25, 0, 0.75}
	assert.Equal(t, 0, Draw(probs, 0))
	assert.Equal(t, 0, Draw(probs, 0.2))
	assert.Equal(t, 2, Draw(probs, 0.25))
	assert.Equal(t, 2, Draw(probs, 0.999))
	assert.Equal(t, 2, Draw([]float64{0.3, 0.3, 0.3, 0}, 0.95))
	require.Equal(t, 0, Draw([]float64{0, 0}, 0.5))
}
