// Package logits transforms next-token score vectors and draws tokens from
// them. Every transform works in place on a []float32 indexed by token id.
package logits

import "math/rand"

// SamplerConfig configures the behaviour of a Sampler. Zero TopK and TopP
// disable those filters; a RepeatPenalty of 1 disables the penalty.
type SamplerConfig struct {
	Temperature   float32
	TopK          int
	TopP          float64
	RepeatPenalty float32
}

// Report describes what happened to one score vector.
type Report struct {
	// TopKOverflow is set when TopK exceeded the vocabulary and the filter
	// was skipped.
	TopKOverflow bool
	Vocab        int
}

// Sampler runs the filter pipeline and draws from the result. It is not safe
// for concurrent use: the RNG is shared between calls.
type Sampler struct {
	rng *rand.Rand
	cfg SamplerConfig
}

// NewSampler returns a sampler whose draws are reproducible for a given seed.
// The configuration is used as given; validating it is the caller's job.
func NewSampler(cfg SamplerConfig, seed int64) *Sampler {
	return &Sampler{
		rng: rand.New(rand.NewSource(seed)), //nolint:gosec // Deterministic seed for reproducible sampling
		cfg: cfg,
	}
}

// Config returns the configuration the sampler was built with.
func (s *Sampler) Config() SamplerConfig { return s.cfg }

// Filter applies, in order:
//
//  1. temperature scaling,
//  2. repetition penalty over the tokens in recent,
//  3. top-k,
//  4. nucleus (top-p).
func (s *Sampler) Filter(scores []float32, recent []int) Report {
	Scale(scores, s.cfg.Temperature)
	Penalize(scores, recent, s.cfg.RepeatPenalty)
	rep := Report{Vocab: len(scores)}
	rep.TopKOverflow = TopK(scores, s.cfg.TopK)
	TopP(scores, s.cfg.TopP)
	return rep
}

// Sample filters scores in place and draws one token index from the softmax
// of what is left.
func (s *Sampler) Sample(scores []float32, recent []int) (int, Report) {
	rep := s.Filter(scores, recent)
	return Draw(Softmax(scores), s.rng.Float64()), rep
}
