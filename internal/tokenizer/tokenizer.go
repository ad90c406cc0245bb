// Package tokenizer provides text codecs for the decoding engine: a
// byte-level codec that needs no vocabulary file, a BPE codec loaded from a
// HuggingFace tokenizer.json, and OpenAI tiktoken encodings.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/samcharles93/scribe/internal/model"
)

// Open selects a codec by name: "bytes", "tiktoken:<encoding>",
// "tiktoken-model:<model>" or "hf:<path to tokenizer.json>".
func Open(spec string) (model.Codec, error) {
	spec = strings.TrimSpace(spec)
	kind, arg, _ := strings.Cut(spec, ":")
	switch strings.ToLower(kind) {
	case "", "bytes":
		return Bytes{}, nil
	case "tiktoken":
		if arg == "" {
			arg = EncodingCL100kBase
		}
		return NewTikToken(arg)
	case "tiktoken-model":
		if arg == "" {
			return nil, fmt.Errorf("tokenizer %q: missing model name", spec)
		}
		return NewTikTokenForModel(arg)
	case "hf":
		if arg == "" {
			return nil, fmt.Errorf("tokenizer %q: missing tokenizer.json path", spec)
		}
		return LoadHF(arg)
	default:
		return nil, fmt.Errorf("unknown tokenizer %q (expected bytes, tiktoken:<encoding>, tiktoken-model:<model> or hf:<path>)", spec)
	}
}
