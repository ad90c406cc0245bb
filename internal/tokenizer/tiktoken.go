package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// EncodingO200kBase is the encoding used by GPT-4o and GPT-4.1.
	EncodingO200kBase = tiktoken.MODEL_O200K_BASE
	// EncodingCL100kBase is the encoding used by GPT-4 and GPT-3.5-turbo.
	EncodingCL100kBase = tiktoken.MODEL_CL100K_BASE
	// EncodingP50kBase is the encoding used by GPT-3 and Codex.
	EncodingP50kBase = tiktoken.MODEL_P50K_BASE
	// EncodingP50kEdit is p50k_base with fill-in-the-middle tokens.
	EncodingP50kEdit = tiktoken.MODEL_P50K_EDIT
	// EncodingR50kBase is the encoding used by older GPT-3 and GPT-2.
	EncodingR50kBase = tiktoken.MODEL_R50K_BASE
)

// encodingVocab is one past the highest token id, special tokens included,
// of every encoding tiktoken-go ships.
var encodingVocab = map[string]int{
	EncodingO200kBase:  200019,
	EncodingCL100kBase: 100277,
	EncodingP50kBase:   50281,
	EncodingP50kEdit:   50284,
	EncodingR50kBase:   50257,
}

// TikToken wraps pkoukk/tiktoken-go. Loading an encoding fetches its BPE
// ranks on first use unless an offline loader has been installed with
// tiktoken.SetBpeLoader.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	vocab    int
}

// NewTikToken loads the named encoding.
func NewTikToken(encodingName string) (*TikToken, error) {
	vocab, ok := encodingVocab[encodingName]
	if !ok {
		return nil, fmt.Errorf("unknown tiktoken encoding %q", encodingName)
	}
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encodingName, err)
	}
	return &TikToken{encoding: enc, vocab: vocab}, nil
}

// NewTikTokenForModel loads the encoding used by a model such as "gpt-4".
func NewTikTokenForModel(modelName string) (*TikToken, error) {
	name, err := encodingForModel(modelName)
	if err != nil {
		return nil, err
	}
	return NewTikToken(name)
}

func encodingForModel(modelName string) (string, error) {
	if name, ok := tiktoken.MODEL_TO_ENCODING[modelName]; ok {
		return name, nil
	}
	for prefix, name := range tiktoken.MODEL_PREFIX_TO_ENCODING {
		if strings.HasPrefix(modelName, prefix) {
			return name, nil
		}
	}
	return "", fmt.Errorf("no tiktoken encoding for model %q", modelName)
}

// IDsFromText encodes text without adding or allowing special tokens.
func (t *TikToken) IDsFromText(text string) ([]int, error) {
	return t.encoding.Encode(text, nil, nil), nil
}

func (t *TikToken) TextFromIDs(ids []int) (string, error) {
	for _, id := range ids {
		if id < 0 || id >= t.vocab {
			return "", fmt.Errorf("token id out of range: %d", id)
		}
	}
	return t.encoding.Decode(ids), nil
}

// VocabSize is one past the highest token id of the encoding. Some ids below
// it are unassigned and decode to nothing.
func (t *TikToken) VocabSize() int { return t.vocab }
