package decode

import (
	"fmt"
	"slices"

	"github.com/samcharles93/scribe/internal/device"
	"github.com/samcharles93/scribe/internal/logger"
	"github.com/samcharles93/scribe/internal/model"
)

// State is what every decoder carries: the model, the device it was placed
// on, the prompt each generation starts from, and the diagnostics sinks. It
// is fixed once the decoder is built.
type State struct {
	model  model.Model
	device device.Device
	prompt []int
	log    logger.Logger
	sink   func(Warning)
}

// Model returns the model being decoded.
func (s *State) Model() model.Model { return s.model }

// Device returns the compute device the decoder was built for.
func (s *State) Device() device.Device { return s.device }

// Prompt returns a copy of the prompt token ids.
func (s *State) Prompt() []int { return slices.Clone(s.prompt) }

func (s *State) warn(w Warning) {
	s.log.Warn(w.Message, "kind", string(w.Kind), "field", w.Field)
	if s.sink != nil {
		s.sink(w)
	}
}

// Builder configures a decoder. Every method returns an updated copy, so a
// partially configured builder can be reused:
//
//	base := decode.Using(m).On("cpu")
//	g, err := base.Prompt("It was the best of times").Greedy()
//	s, err := base.PromptIDs([]int{1, 234}).Sampler(decode.DefaultSamplerConfig())
//
// Errors from On and Prompt are held and returned by the finalizers.
type Builder struct {
	model  model.Model
	device device.Device
	prompt []int
	log    logger.Logger
	sink   func(Warning)
	err    error
}

// Using starts a builder for m on the CPU with an empty prompt.
func Using(m model.Model) Builder {
	return Builder{model: m, device: device.Default}
}

// On selects the compute device by name ("cpu", "cuda", "cuda:1", "auto").
func (b Builder) On(name string) Builder {
	if b.err != nil {
		return b
	}
	d, err := device.Resolve(name)
	if err != nil {
		b.err = &ConfigError{Field: "device", Value: name, Err: err}
		return b
	}
	b.device = d
	return b
}

// PromptIDs replaces the prompt with ids.
func (b Builder) PromptIDs(ids []int) Builder {
	b.prompt = slices.Clone(ids)
	return b
}

// Prompt tokenizes text with the model's codec and uses it as the prompt. No
// special tokens are added; write them into text when they are wanted.
func (b Builder) Prompt(text string) Builder {
	if b.err != nil {
		return b
	}
	if b.model == nil {
		b.err = &ConfigError{Field: "model", Value: nil, Reason: "no model"}
		return b
	}
	ids, err := b.model.IDsFromText(text)
	if err != nil {
		b.err = fmt.Errorf("prompt: %w", err)
		return b
	}
	return b.PromptIDs(ids)
}

// WithLogger routes diagnostics to l. The default discards them.
func (b Builder) WithLogger(l logger.Logger) Builder {
	b.log = l
	return b
}

// WithWarnings registers a callback receiving every Warning.
func (b Builder) WithWarnings(fn func(Warning)) Builder {
	b.sink = fn
	return b
}

// state finalizes the builder. A model that implements model.Placer is
// placed on the selected device here; its error is returned unchanged.
func (b Builder) state() (*State, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.model == nil {
		return nil, &ConfigError{Field: "model", Value: nil, Reason: "no model"}
	}
	if p, ok := b.model.(model.Placer); ok {
		if err := p.Place(b.device); err != nil {
			return nil, fmt.Errorf("place model on %s: %w", b.device, err)
		}
	}
	log := b.log
	if log == nil {
		log = logger.Discard()
	}
	return &State{
		model:  b.model,
		device: b.device,
		prompt: slices.Clone(b.prompt),
		log:    log,
		sink:   b.sink,
	}, nil
}
