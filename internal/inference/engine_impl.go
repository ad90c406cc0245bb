package inference

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/samcharles93/scribe/internal/decode"
	"github.com/samcharles93/scribe/internal/device"
	"github.com/samcharles93/scribe/internal/logger"
	"github.com/samcharles93/scribe/internal/model"
)

type EngineImpl struct {
	model    model.Model
	log      logger.Logger
	vocab    int
	defaults GenDefaults
}

// NewEngine wraps m so that panics in the model surface as errors. vocab is
// reported to clients; pass 0 when unknown.
func NewEngine(m model.Model, vocab int, log logger.Logger) *EngineImpl {
	if log == nil {
		log = logger.Discard()
	}
	return &EngineImpl{model: guarded{m}, log: log, vocab: vocab}
}

// Defaults returns the model defaults loaded with the engine.
func (e *EngineImpl) Defaults() GenDefaults { return e.defaults }

func (e *EngineImpl) VocabSize() int { return e.vocab }

func (e *EngineImpl) Close() error {
	if e == nil || e.model == nil {
		return nil
	}
	var errs []error
	if closer, ok := e.model.(guarded).Model.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.model = nil
	return errors.Join(errs...)
}

func (e *EngineImpl) Tokenize(text string) ([]int, error) {
	return safeEncode(e.model, text)
}

func (e *EngineImpl) Detokenize(ids []int) (string, error) {
	return safeDecodeText(e.model, ids)
}

func (e *EngineImpl) Generate(ctx context.Context, req *Request, stream StreamFunc) (*Result, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var warnings []decode.Warning
	b := decode.Using(e.model).
		On(req.Device).
		WithLogger(e.log).
		WithWarnings(func(w decode.Warning) { warnings = append(warnings, w) })

	prompt := req.PromptIDs
	if len(prompt) == 0 && req.Prompt != "" {
		ids, err := safeEncode(e.model, req.Prompt)
		if err != nil {
			return nil, fmt.Errorf("encode prompt: %w", err)
		}
		prompt = ids
	}
	b = b.PromptIDs(prompt)

	limit, err := e.limit(req)
	if err != nil {
		return nil, err
	}

	res := &Result{PromptTokens: len(prompt), Strategy: req.Strategy}
	var dec decode.Decoder
	switch req.Strategy {
	case StrategyGreedy, "":
		res.Strategy = StrategyGreedy
		g, err := b.Greedy()
		if err != nil {
			return nil, err
		}
		dec = g
	case StrategySample:
		s, err := b.Sampler(req.Sampling)
		if err != nil {
			return nil, err
		}
		seed := s.Seed()
		res.Seed = &seed
		dec = s
	default:
		return nil, &decode.ConfigError{Field: "strategy", Value: req.Strategy, Reason: "want greedy or sample"}
	}
	res.Device = dec.State().Device().String()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gen := &Generator{Decoder: dec, Tokenizer: e.model}
	ids, stats, reason, err := gen.RunWithContext(ctx, limit, stream)
	if err != nil {
		return nil, err
	}

	text, err := safeDecodeText(e.model, ids)
	if err != nil {
		return nil, err
	}
	res.Text = text
	res.TokenIDs = ids
	res.StopReason = reason
	res.Warnings = warnings
	res.Stats = stats

	e.log.Debug("generation finished",
		"strategy", res.Strategy,
		"device", res.Device,
		"tokens", stats.TokensGenerated,
		"stop_reason", string(reason),
		"tps", stats.TPS,
	)
	return res, nil
}

func (e *EngineImpl) limit(req *Request) (Limit, error) {
	end := req.EndIDs
	if len(end) == 0 && req.End != "" {
		ids, err := safeEncode(e.model, req.End)
		if err != nil {
			return Limit{}, fmt.Errorf("encode end sequence: %w", err)
		}
		if len(ids) == 0 {
			return Limit{}, &decode.ConfigError{Field: "end", Value: req.End, Reason: "encodes to no tokens"}
		}
		end = ids
	}
	if len(end) > 0 {
		return Limit{End: end, MaxLength: req.MaxLength, MinLength: req.MinLength}, nil
	}
	if req.NumTokens < 0 {
		if req.MaxLength < 1 {
			return Limit{}, &decode.ConfigError{Field: "max_length", Value: req.MaxLength, Reason: "must be at least 1"}
		}
		return Limit{Count: req.MaxLength}, nil
	}
	return Limit{Count: req.NumTokens}, nil
}

// guarded turns model panics into errors so that one bad request cannot take
// the server down.
type guarded struct {
	model.Model
}

func (g guarded) Decode(seq []int) (scores []float32, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in Decode: %v", rec)
		}
	}()
	return g.Model.Decode(seq)
}

func (g guarded) Place(dev device.Device) (err error) {
	p, ok := g.Model.(model.Placer)
	if !ok {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in Place: %v", rec)
		}
	}()
	return p.Place(dev)
}

func safeEncode(m model.Model, text string) (ids []int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in IDsFromText: %v", rec)
		}
	}()
	return m.IDsFromText(text)
}

func safeDecodeText(m model.Model, ids []int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in TextFromIDs: %v", rec)
		}
	}()
	return m.TextFromIDs(ids)
}
