package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/scribe/internal/inference"
	"github.com/samcharles93/scribe/internal/logger"
)

type generateOptions struct {
	prompt        string
	promptIDs     string
	strategy      string
	device        string
	steps         int64
	until         string
	untilIDs      string
	maxLength     int64
	minLength     int64
	temp          float64
	topK          int64
	topP          float64
	repeatPenalty float64
	seed          int64
	showTokens    bool
	stats         bool
}

func generateCmd() *cli.Command {
	var o generateOptions

	return &cli.Command{
		Name:  "generate",
		Usage: "Generate tokens from a prompt",
		Flags: append(commonModelFlags(), generateFlags(&o)...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runGenerate(ctx, cmd, &o)
		},
	}
}

func generateFlags(o *generateOptions) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "prompt",
			Aliases:     []string{"p"},
			Usage:       "prompt text",
			Destination: &o.prompt,
		},
		&cli.StringFlag{
			Name:        "prompt-ids",
			Usage:       "prompt as comma-separated token ids",
			Destination: &o.promptIDs,
		},
		&cli.StringFlag{
			Name:        "strategy",
			Usage:       "decoding strategy (greedy, sample)",
			Value:       inference.StrategyGreedy,
			Destination: &o.strategy,
		},
		&cli.StringFlag{
			Name:        "device",
			Usage:       "compute device (cpu, cuda, cuda:N, auto)",
			Value:       "cpu",
			Destination: &o.device,
		},
		&cli.Int64Flag{
			Name:        "steps",
			Aliases:     []string{"n", "num-tokens"},
			Usage:       "number of tokens to generate (-1 = until --until or --max-length)",
			Value:       inference.DefaultNumTokens,
			Destination: &o.steps,
		},
		&cli.StringFlag{
			Name:        "until",
			Usage:       "stop once this text has been generated",
			Destination: &o.until,
		},
		&cli.StringFlag{
			Name:        "until-ids",
			Usage:       "stop once these comma-separated token ids have been generated",
			Destination: &o.untilIDs,
		},
		&cli.Int64Flag{
			Name:        "max-length",
			Usage:       "upper bound on generated tokens when stopping on an end sequence",
			Value:       100,
			Destination: &o.maxLength,
		},
		&cli.Int64Flag{
			Name:        "min-length",
			Usage:       "ignore end sequence matches before this many tokens",
			Value:       1,
			Destination: &o.minLength,
		},
		&cli.Float64Flag{
			Name:        "temp",
			Aliases:     []string{"temperature", "t"},
			Usage:       "sampling temperature",
			Value:       1,
			Destination: &o.temp,
		},
		&cli.Int64Flag{
			Name:        "top-k",
			Aliases:     []string{"k"},
			Usage:       "top-k sampling (0 = disabled)",
			Value:       9,
			Destination: &o.topK,
		},
		&cli.Float64Flag{
			Name:        "top-p",
			Usage:       "nucleus sampling mass (0 = disabled)",
			Destination: &o.topP,
		},
		&cli.Float64Flag{
			Name:        "repeat-penalty",
			Aliases:     []string{"repetition-penalty"},
			Usage:       "divide scores of tokens already in the sequence by this",
			Value:       1,
			Destination: &o.repeatPenalty,
		},
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "RNG seed (-1 = random)",
			Value:       -1,
			Destination: &o.seed,
		},
		&cli.BoolFlag{
			Name:        "show-tokens",
			Usage:       "print generated token ids after the text",
			Destination: &o.showTokens,
		},
		&cli.BoolFlag{
			Name:        "stats",
			Usage:       "print generation statistics to stderr",
			Destination: &o.stats,
		},
	}
}

func runGenerate(ctx context.Context, cmd *cli.Command, o *generateOptions) error {
	log := logger.FromContext(ctx)
	applyModelConfig(cmd, appConfig)

	opts, err := generateRequestOptions(cmd, appConfig, o)
	if err != nil {
		return err
	}

	loaded, err := loader().Load(log)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	defer func() { _ = loaded.Engine.Close() }()

	req := inference.ResolveRequest(opts, loaded.GenerationDefaults)
	log.Debug("generating",
		"strategy", req.Strategy,
		"device", req.Device,
		"tokenizer", tokenizerSpec,
	)

	out := os.Stdout
	res, err := loaded.Engine.Generate(ctx, &req, func(tok inference.Token) {
		_, _ = io.WriteString(out, tok.Text)
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out)

	if o.showTokens {
		_, _ = fmt.Fprintf(out, "tokens: %s\n", formatIDs(res.TokenIDs))
	}
	if o.stats {
		_, _ = fmt.Fprintf(os.Stderr, "stop: %s, tokens: %d, %.2f tok/s, %s",
			res.StopReason, res.Stats.TokensGenerated, res.Stats.TPS, res.Stats.Duration)
		if res.Seed != nil {
			_, _ = fmt.Fprintf(os.Stderr, ", seed: %d", *res.Seed)
		}
		_, _ = fmt.Fprintln(os.Stderr)
	}
	return nil
}

// generateRequestOptions builds request overrides from explicitly set flags,
// falling back to the config file. Anything left unset takes the model or
// built-in default.
func generateRequestOptions(c *cli.Command, cfg Config, o *generateOptions) (inference.RequestOptions, error) {
	var opts inference.RequestOptions

	if c.IsSet("prompt") {
		opts.Prompt = &o.prompt
	}
	if o.promptIDs != "" {
		ids, err := parseIDs(o.promptIDs)
		if err != nil {
			return opts, fmt.Errorf("--prompt-ids: %w", err)
		}
		opts.PromptIDs = ids
	}
	if o.untilIDs != "" {
		ids, err := parseIDs(o.untilIDs)
		if err != nil {
			return opts, fmt.Errorf("--until-ids: %w", err)
		}
		opts.EndIDs = ids
	}
	if c.IsSet("until") {
		opts.End = &o.until
	}

	opts.Strategy = pickString(c, "strategy", o.strategy, cfg.Strategy)
	opts.Device = pickString(c, "device", o.device, cfg.Device)
	opts.NumTokens = pickInt(c, "steps", o.steps, cfg.Steps)
	opts.MaxLength = pickInt(c, "max-length", o.maxLength, cfg.MaxLength)
	opts.MinLength = pickInt(c, "min-length", o.minLength, cfg.MinLength)
	opts.TopK = pickInt(c, "top-k", o.topK, cfg.TopK)
	opts.Temperature = pick(c, "temp", o.temp, cfg.Temperature)
	opts.TopP = pick(c, "top-p", o.topP, cfg.TopP)
	opts.RepetitionPenalty = pick(c, "repeat-penalty", o.repeatPenalty, cfg.RepetitionPenalty)
	opts.Seed = pick(c, "seed", o.seed, cfg.Seed)
	return opts, nil
}

func pick[T any](c *cli.Command, flag string, v T, cfg *T) *T {
	if c.IsSet(flag) {
		return &v
	}
	return cfg
}

func pickInt(c *cli.Command, flag string, v int64, cfg *int64) *int {
	p := pick(c, flag, v, cfg)
	if p == nil {
		return nil
	}
	n := int(*p)
	return &n
}

func pickString(c *cli.Command, flag, v, cfg string) *string {
	if c.IsSet(flag) {
		return &v
	}
	if cfg != "" {
		return &cfg
	}
	return nil
}

func parseIDs(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	ids := make([]int, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid token id %q", f)
		}
		if id < 0 {
			return nil, fmt.Errorf("token ids must be non-negative, got %d", id)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
