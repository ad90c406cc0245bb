package inference

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/samcharles93/scribe/internal/logger"
	"github.com/samcharles93/scribe/internal/model"
	"github.com/samcharles93/scribe/internal/tokenizer"
	"github.com/samcharles93/scribe/internal/toy"
)

// DefaultHidden is the toy model width used when none is configured.
const DefaultHidden = 16

// Loader assembles a model from a tokenizer spec and the toy scorer.
type Loader struct {
	// Tokenizer is a tokenizer.Open spec: "bytes", "tiktoken:<encoding>",
	// "tiktoken-model:<model>" or "hf:<path to tokenizer.json>".
	Tokenizer string
	// Vocab overrides the scorer's vocabulary size; 0 uses the tokenizer's.
	// It may not exceed the tokenizer's.
	Vocab  int
	Hidden int
	Seed   int64
	// Weights optionally names a safetensors file written by toy.ToyLM.Save;
	// it replaces the seeded weights and fixes the vocabulary size.
	Weights string
	// GenerationConfigPath optionally points at a generation_config.json
	// whose sampling settings become request defaults.
	GenerationConfigPath string
}

type LoadResult struct {
	Engine             *EngineImpl
	Model              model.Model
	Codec              model.Codec
	GenerationDefaults GenDefaults
}

func (l Loader) Load(log logger.Logger) (*LoadResult, error) {
	spec := strings.TrimSpace(l.Tokenizer)
	if spec == "" {
		spec = "bytes"
	}
	codec, err := tokenizer.Open(spec)
	if err != nil {
		return nil, err
	}

	var scorer *toy.ToyLM
	if l.Weights != "" {
		scorer, err = toy.LoadToyLM(l.Weights)
	} else {
		scorer, err = l.NewScorer(codec)
	}
	if err != nil {
		return nil, err
	}
	if err := checkVocab(scorer.Vocab, codec); err != nil {
		return nil, err
	}
	vocab := scorer.Vocab
	m := model.Compose(scorer, codec)

	var defaults GenDefaults
	if l.GenerationConfigPath != "" {
		raw, err := os.ReadFile(l.GenerationConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load generation config: %w", err)
		}
		defaults = parseHFGenerationDefaults(raw)
	}

	engine := NewEngine(m, vocab, log)
	engine.defaults = defaults
	return &LoadResult{
		Engine:             engine,
		Model:              m,
		Codec:              codec,
		GenerationDefaults: defaults,
	}, nil
}

// NewScorer builds seeded toy weights sized for codec unless Vocab
// overrides it.
func (l Loader) NewScorer(codec model.Codec) (*toy.ToyLM, error) {
	vocab := l.Vocab
	if vocab <= 0 {
		vocab = codec.VocabSize()
	}
	if err := checkVocab(vocab, codec); err != nil {
		return nil, err
	}
	hidden := l.Hidden
	if hidden <= 0 {
		hidden = DefaultHidden
	}
	return toy.NewToyLM(vocab, hidden, l.Seed)
}

// checkVocab rejects a scorer that can pick ids the codec cannot decode.
func checkVocab(scorerVocab int, codec model.Codec) error {
	if n := codec.VocabSize(); scorerVocab > n {
		return fmt.Errorf("scorer vocabulary %d exceeds tokenizer vocabulary %d", scorerVocab, n)
	}
	return nil
}

func parseHFGenerationDefaults(genBytes []byte) GenDefaults {
	type hfGenerationConfig struct {
		DoSample          *bool    `json:"do_sample"`
		Temperature       *float64 `json:"temperature"`
		TopK              *int     `json:"top_k"`
		TopP              *float64 `json:"top_p"`
		RepetitionPenalty *float64 `json:"repetition_penalty"`
		MaxLength         *int     `json:"max_length"`
	}
	if len(genBytes) == 0 {
		return GenDefaults{}
	}
	var cfg hfGenerationConfig
	if err := json.Unmarshal(genBytes, &cfg); err != nil {
		return GenDefaults{}
	}
	return GenDefaults{
		DoSample:          cfg.DoSample,
		Temperature:       cfg.Temperature,
		TopK:              cfg.TopK,
		TopP:              cfg.TopP,
		RepetitionPenalty: cfg.RepetitionPenalty,
		MaxLength:         cfg.MaxLength,
	}
}
