package inference

import (
	"context"

	"github.com/samcharles93/scribe/internal/decode"
)

// Strategy names accepted in requests.
const (
	StrategyGreedy = "greedy"
	StrategySample = "sample"
)

// Token is one generated token as delivered to a StreamFunc.
type Token struct {
	Index int
	ID    int
	Text  string
}

type StreamFunc func(tok Token)

type Engine interface {
	Generate(ctx context.Context, req *Request, stream StreamFunc) (*Result, error)
	Tokenize(text string) ([]int, error)
	Detokenize(ids []int) (string, error)
	VocabSize() int
	Close() error
}

// Request is a fully resolved generation request. When End or EndIDs is set
// generation runs until that sequence appears, bounded by MaxLength and
// MinLength. Otherwise NumTokens tokens are produced, or MaxLength tokens
// when NumTokens is negative.
type Request struct {
	Prompt    string
	PromptIDs []int

	Strategy string
	Device   string

	NumTokens int
	End       string
	EndIDs    []int
	MaxLength int
	MinLength int

	Sampling decode.SamplerConfig
}

type Result struct {
	Text         string
	TokenIDs     []int
	PromptTokens int
	Strategy     string
	Device       string
	StopReason   decode.StopReason
	Warnings     []decode.Warning
	// Seed is the RNG seed the sampler used; nil for greedy requests.
	Seed  *int64
	Stats Stats
}
