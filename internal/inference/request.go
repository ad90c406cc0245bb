package inference

import "github.com/samcharles93/scribe/internal/decode"

// DefaultNumTokens is used when a request sets neither a count nor an end
// sequence.
const DefaultNumTokens = 32

type RequestOptions struct {
	Prompt    *string
	PromptIDs []int

	Strategy *string
	Device   *string

	NumTokens *int
	End       *string
	EndIDs    []int
	MaxLength *int
	MinLength *int

	Temperature       *float64
	TopK              *int
	TopP              *float64
	RepetitionPenalty *float64
	Seed              *int64
}

// GenDefaults are per-model defaults, typically read from a
// generation_config.json next to the tokenizer. Unset fields keep the
// built-in defaults.
type GenDefaults struct {
	Device            *string
	DoSample          *bool
	Temperature       *float64
	TopK              *int
	TopP              *float64
	RepetitionPenalty *float64
	MaxLength         *int
}

// ResolveRequest layers opts over defaults over the built-in defaults. Model
// defaults that are out of range are ignored; request options are taken as
// given and validated when the decoder is built.
func ResolveRequest(opts RequestOptions, defaults GenDefaults) Request {
	req := Request{
		PromptIDs: opts.PromptIDs,
		EndIDs:    opts.EndIDs,
		Strategy:  StrategyGreedy,
		Device:    "cpu",
		NumTokens: DefaultNumTokens,
		MaxLength: decode.DefaultMaxLength,
		MinLength: decode.DefaultMinLength,
		Sampling:  decode.DefaultSamplerConfig(),
	}

	if defaults.Device != nil && *defaults.Device != "" {
		req.Device = *defaults.Device
	}
	if defaults.DoSample != nil && *defaults.DoSample {
		req.Strategy = StrategySample
	}
	if defaults.Temperature != nil && *defaults.Temperature > 0 {
		req.Sampling.Temperature = *defaults.Temperature
	}
	if defaults.TopK != nil && *defaults.TopK > 0 {
		req.Sampling.K = *defaults.TopK
	}
	if defaults.TopP != nil && *defaults.TopP > 0 && *defaults.TopP <= 1 {
		req.Sampling.P = *defaults.TopP
	}
	if defaults.RepetitionPenalty != nil && *defaults.RepetitionPenalty > 0 {
		req.Sampling.RepetitionPenalty = *defaults.RepetitionPenalty
	}
	if defaults.MaxLength != nil && *defaults.MaxLength > 0 {
		req.MaxLength = *defaults.MaxLength
	}

	if opts.Prompt != nil {
		req.Prompt = *opts.Prompt
	}
	if opts.Strategy != nil && *opts.Strategy != "" {
		req.Strategy = *opts.Strategy
	}
	if opts.Device != nil && *opts.Device != "" {
		req.Device = *opts.Device
	}
	if opts.NumTokens != nil {
		req.NumTokens = *opts.NumTokens
	}
	if opts.End != nil {
		req.End = *opts.End
	}
	if opts.MaxLength != nil {
		req.MaxLength = *opts.MaxLength
	}
	if opts.MinLength != nil {
		req.MinLength = *opts.MinLength
	}
	if opts.Temperature != nil {
		req.Sampling.Temperature = *opts.Temperature
	}
	if opts.TopK != nil {
		req.Sampling.K = *opts.TopK
	}
	if opts.TopP != nil {
		req.Sampling.P = *opts.TopP
	}
	if opts.RepetitionPenalty != nil {
		req.Sampling.RepetitionPenalty = *opts.RepetitionPenalty
	}
	if opts.Seed != nil {
		req.Sampling.Seed = *opts.Seed
	}

	return req
}
