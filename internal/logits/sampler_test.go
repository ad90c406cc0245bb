package logits

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSamplerDeterminism(t *testing.T) {
	t.Parallel()
	cfg := SamplerConfig{Temperature: 0.9, TopK: 4, TopP: 0.95, RepeatPenalty: 1}
	s1 := NewSampler(cfg, 42)
	s2 := NewSampler(cfg, 42)
	for i := 0; i < 20; i++ {
		a, _ := s1.Sample([]float32{0, 1, 2, 3, 4, 5}, nil)
		b, _ := s2.Sample([]float32{0, 1, 2, 3, 4, 5}, nil)
		assert.Equal(t, a, b)
	}
}

func TestSamplerNeverDrawsFilteredTokens(t *testing.T) {
	t.Parallel()
	s := NewSampler(SamplerConfig{Temperature: 1, TopK: 2, RepeatPenalty: 1}, 7)
	counts := map[int]int{}
	for i := 0; i < 200; i++ {
		tok, rep := s.Sample([]float32{1, 2, 3, 4, 5}, nil)
		assert.False(t, rep.TopKOverflow)
		counts[tok]++
	}
	assert.Zero(t, counts[0]+counts[1]+counts[2])
	assert.Positive(t, counts[3])
	assert.Positive(t, counts[4])
}

func TestSamplerTopPDominantToken(t *testing.T) {
	t.Parallel()
	s := NewSampler(SamplerConfig{Temperature: 1, TopP: 0.5, RepeatPenalty: 1}, 7)
	for i := 0; i < 10; i++ {
		tok, _ := s.Sample([]float32{10, 0, 0, 0, 0}, nil)
		assert.Equal(t, 0, tok)
	}
}

func TestSamplerFilterOrder(t *testing.T) {
	t.Parallel()
	// Temperature halves every score, then token 0 is divided by 4, which
	// drops it below token 1 before top-k runs.
	s := NewSampler(SamplerConfig{Temperature: 0.5, TopK: 1, RepeatPenalty: 4}, 1)
	scores := []float32{3, 2, 1}
	rep := s.Filter(scores, []int{0})
	assert.Equal(t, 3, rep.Vocab)
	inf := float32(math.Inf(-1))
	assert.Equal(t, []float32{inf, 4, inf}, scores)
}

func TestSamplerReportsOverflow(t *testing.T) {
	t.Parallel()
	s := NewSampler(SamplerConfig{Temperature: 1, TopK: 10, RepeatPenalty: 1}, 1)
	_, rep := s.Sample([]float32{1, 2, 3}, nil)
	assert.True(t, rep.TopKOverflow)
	assert.Equal(t, 3, rep.Vocab)
}
