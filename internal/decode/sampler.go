package decode

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/samcharles93/scribe/internal/logits"
)

// SamplerConfig holds the sampling parameters. K == 0 and P == 0 disable
// those filters. A negative Seed picks a random one.
type SamplerConfig struct {
	Temperature       float64 `json:"temperature" yaml:"temperature"`
	K                 int     `json:"top_k" yaml:"top_k"`
	P                 float64 `json:"top_p" yaml:"top_p"`
	RepetitionPenalty float64 `json:"repetition_penalty" yaml:"repetition_penalty"`
	Seed              int64   `json:"seed" yaml:"seed"`
}

// DefaultSamplerConfig returns top-k sampling with k = 9 and everything else
// neutral.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		Temperature:       1,
		K:                 9,
		P:                 0,
		RepetitionPenalty: 1,
		Seed:              -1,
	}
}

// Validate checks cfg and returns the warnings for accepted but unusual
// values. Errors match ErrConfiguration or ErrArithmetic.
func (cfg SamplerConfig) Validate() ([]Warning, error) {
	if cfg.K < 0 {
		return nil, &ConfigError{Field: "k", Value: cfg.K, Reason: "must be >= 0"}
	}
	if math.IsNaN(cfg.P) || cfg.P < 0 || cfg.P > 1 {
		return nil, &ConfigError{Field: "p", Value: cfg.P, Reason: "must be within [0, 1]"}
	}
	if math.IsNaN(cfg.Temperature) || math.IsInf(cfg.Temperature, 0) {
		return nil, &ConfigError{Field: "temperature", Value: cfg.Temperature, Reason: "must be finite"}
	}
	if cfg.Temperature == 0 {
		return nil, &ArithmeticError{Field: "temperature"}
	}
	if math.IsNaN(cfg.RepetitionPenalty) || math.IsInf(cfg.RepetitionPenalty, 0) {
		return nil, &ConfigError{Field: "repetition_penalty", Value: cfg.RepetitionPenalty, Reason: "must be finite"}
	}
	if cfg.RepetitionPenalty == 0 {
		return nil, &ArithmeticError{Field: "repetition_penalty"}
	}

	var warns []Warning
	if cfg.Temperature < 0 {
		warns = append(warns, Warning{
			Kind:    ConfigurationWarning,
			Field:   "temperature",
			Message: fmt.Sprintf("negative temperature %g inverts the score ranking", cfg.Temperature),
		})
	}
	if cfg.RepetitionPenalty < 0 {
		warns = append(warns, Warning{
			Kind:    ConfigurationWarning,
			Field:   "repetition_penalty",
			Message: fmt.Sprintf("negative repetition penalty %g flips the sign of repeated tokens' scores", cfg.RepetitionPenalty),
		})
	}
	return warns, nil
}

// Sampler draws each token from the model's scores after temperature
// scaling, repetition penalty, top-k and nucleus filtering, in that order.
// The RNG is shared by every generation of one Sampler; run concurrent
// generations on separate Samplers.
type Sampler struct {
	writer
	cfg   SamplerConfig
	seed  int64
	inner *logits.Sampler

	mu       sync.Mutex
	warnings []Warning
}

// Sampler validates cfg and finalizes the builder into a sampling decoder.
// Configuration warnings are emitted before it returns.
func (b Builder) Sampler(cfg SamplerConfig) (*Sampler, error) {
	warns, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	st, err := b.state()
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed < 0 {
		seed = rand.Int63() //nolint:gosec // Caller asked for a random seed
	}
	s := &Sampler{
		cfg:  cfg,
		seed: seed,
		inner: logits.NewSampler(logits.SamplerConfig{
			Temperature:   float32(cfg.Temperature),
			TopK:          cfg.K,
			TopP:          cfg.P,
			RepeatPenalty: float32(cfg.RepetitionPenalty),
		}, seed),
	}
	s.writer = writer{state: st, newPicker: s.picker}
	for _, w := range warns {
		s.warn(w)
	}
	return s, nil
}

// picker returns the selection rule for one stream. The top-k overflow
// warning is emitted once per stream rather than once per step.
func (s *Sampler) picker() pickFunc {
	warned := false
	return func(seq []int, scores []float32) (int, error) {
		tok, rep := s.inner.Sample(scores, seq)
		if rep.TopKOverflow && !warned {
			warned = true
			s.warn(Warning{
				Kind:    RuntimeWarning,
				Field:   "k",
				Message: fmt.Sprintf("k=%d exceeds the vocabulary size %d; top-k filter skipped", s.cfg.K, rep.Vocab),
			})
		}
		return tok, nil
	}
}

func (s *Sampler) warn(w Warning) {
	s.mu.Lock()
	s.warnings = append(s.warnings, w)
	s.mu.Unlock()
	s.state.warn(w)
}

// Config returns the configuration the sampler was built with.
func (s *Sampler) Config() SamplerConfig { return s.cfg }

// Seed returns the RNG seed in use, which is the drawn one when the
// configured seed was negative.
func (s *Sampler) Seed() int64 { return s.seed }

// Warnings returns every warning this sampler has emitted.
func (s *Sampler) Warnings() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Warning(nil), s.warnings...)
}

// FilterScores runs the filter pipeline on scores in place as if seq were
// the current sequence, without drawing. It reports whether top-k was
// skipped because k exceeded the vocabulary.
func (s *Sampler) FilterScores(scores []float32, seq []int) (topKSkipped bool) {
	return s.inner.Filter(scores, seq).TopKOverflow
}
