package inference

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/samcharles93/scribe/internal/decode"
)

type Stats struct {
	TokensGenerated int
	Duration        time.Duration
	TPS             float64
}

// Limit says when a Generator stops. A non-empty End selects end-sequence
// stopping within MaxLength and MinLength; otherwise exactly Count tokens are
// produced.
type Limit struct {
	Count     int
	End       []int
	MaxLength int
	MinLength int
}

// Generator drives one decoder stream, checking the context between pulls
// and streaming each token's text as it is produced.
type Generator struct {
	Decoder   decode.Decoder
	Tokenizer interface {
		TextFromIDs([]int) (string, error)
	}
}

func (g *Generator) Run(limit Limit, stream StreamFunc) ([]int, Stats, decode.StopReason, error) {
	return g.RunWithContext(context.Background(), limit, stream)
}

// RunWithContext pulls tokens until limit is reached. On error the tokens
// produced so far are returned with it.
func (g *Generator) RunWithContext(ctx context.Context, limit Limit, stream StreamFunc) ([]int, Stats, decode.StopReason, error) {
	var stats Stats
	start := time.Now()
	finish := func() {
		stats.Duration = time.Since(start)
		if stats.Duration.Seconds() > 0 {
			stats.TPS = float64(stats.TokensGenerated) / stats.Duration.Seconds()
		}
	}
	defer finish()

	var stopper *decode.Stopper
	if len(limit.End) > 0 {
		st, err := decode.NewStopper(limit.End, limit.MaxLength, limit.MinLength)
		if err != nil {
			return nil, stats, decode.StopNone, err
		}
		stopper = st
	} else if limit.Count < 0 {
		return nil, stats, decode.StopNone, &decode.ConfigError{Field: "num_tokens", Value: limit.Count, Reason: "must not be negative"}
	}

	s := g.Decoder.Stream()
	out := make([]int, 0, max(limit.Count, 0))
	var pending []int
	for {
		if stopper == nil && len(out) == limit.Count {
			return out, stats, decode.StopCount, nil
		}
		if err := ctx.Err(); err != nil {
			return out, stats, decode.StopNone, err
		}
		tok, err := s.Next()
		if err != nil {
			return out, stats, decode.StopNone, err
		}
		out = append(out, tok)
		stats.TokensGenerated++

		reason := decode.StopNone
		switch {
		case stopper != nil:
			if stopper.Push(tok) {
				reason = stopper.Reason()
			}
		case len(out) == limit.Count:
			reason = decode.StopCount
		}

		if stream != nil {
			pending = append(pending, tok)
			text, err := g.Tokenizer.TextFromIDs(pending)
			if err != nil {
				return out, stats, decode.StopNone, fmt.Errorf("detokenize token %d: %w", tok, err)
			}
			// A character split across tokens is held back until it is
			// complete, so the streamed texts concatenate to the final text.
			if utf8.ValidString(text) || reason != decode.StopNone || len(pending) >= utf8.UTFMax {
				pending = pending[:0]
			} else {
				text = ""
			}
			stream(Token{Index: len(out) - 1, ID: tok, Text: text})
		}

		if reason != decode.StopNone {
			return out, stats, reason, nil
		}
	}
}
