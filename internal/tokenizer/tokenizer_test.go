package tokenizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tinyTokenizerJSON = `{
	"model": {
		"type": "BPE",
		"vocab": {"h": 0, "e": 1, "l": 2, "o": 3, "Ġ": 4, "he": 5, "ll": 6, "<unk>": 8},
		"merges": ["h e", ["l", "l"]],
		"unk_token": "<unk>"
	},
	"added_tokens": [{"id": 7, "content": "<|end|>"}]
}`

func TestBytesRoundTrip(t *testing.T) {
	t.Parallel()
	ids, err := Bytes{}.IDsFromText("hé")
	require.NoError(t, err)
	assert.Equal(t, []int{'h', 0xC3, 0xA9}, ids)

	text, err := Bytes{}.TextFromIDs(ids)
	require.NoError(t, err)
	assert.Equal(t, "hé", text)
	assert.Equal(t, 256, Bytes{}.VocabSize())

	_, err = Bytes{}.TextFromIDs([]int{300})
	require.Error(t, err)
}

func TestHFEncodeDecode(t *testing.T) {
	t.Parallel()
	tok, err := LoadHFBytes([]byte(tinyTokenizerJSON))
	require.NoError(t, err)

	cases := []struct {
		text string
		ids  []int
	}{
		{"hello", []int{5, 6, 3}},
		{" hello", []int{4, 5, 6, 3}},
		{"hello<|end|>", []int{5, 6, 3, 7}},
		{"hex", []int{5, 8}},
	}
	for _, tc := range cases {
		ids, err := tok.IDsFromText(tc.text)
		require.NoError(t, err, tc.text)
		assert.Equal(t, tc.ids, ids, tc.text)
	}

	text, err := tok.TextFromIDs([]int{4, 5, 6, 3, 7})
	require.NoError(t, err)
	assert.Equal(t, " hello<|end|>", text)
	assert.Equal(t, 9, tok.VocabSize())
	assert.Equal(t, "he", tok.TokenString(5))
	assert.Empty(t, tok.TokenString(99))

	_, err = tok.TextFromIDs([]int{42})
	require.Error(t, err)
}

func TestHFRejectsUnsupportedModel(t *testing.T) {
	t.Parallel()
	_, err := LoadHFBytes([]byte(`{"model":{"type":"WordPiece","vocab":{},"merges":[]}}`))
	require.ErrorContains(t, err, "unsupported tokenizer model")

	_, err = LoadHFBytes([]byte(`{`))
	require.Error(t, err)
}

func TestOpen(t *testing.T) {
	t.Parallel()
	c, err := Open("bytes")
	require.NoError(t, err)
	assert.Equal(t, 256, c.VocabSize())

	dir := t.TempDir()
	path := filepath.Join(dir, "tokenizer.json")
	require.NoError(t, os.WriteFile(path, []byte(tinyTokenizerJSON), 0o644))
	c, err = Open("hf:" + path)
	require.NoError(t, err)
	ids, err := c.IDsFromText("hello")
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6, 3}, ids)

	_, err = Open("hf:")
	require.Error(t, err)
	_, err = Open("sentencepiece")
	require.ErrorContains(t, err, "unknown tokenizer")
	_, err = Open("tiktoken-model:")
	require.ErrorContains(t, err, "missing model name")
	_, err = Open("tiktoken:nonesuch_base")
	require.ErrorContains(t, err, "unknown tiktoken encoding")
	_, err = Open("tiktoken-model:llama-3")
	require.ErrorContains(t, err, "no tiktoken encoding")
}

func TestEncodingForModel(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"gpt-4o":            EncodingO200kBase,
		"gpt-4o-2024-05-13": EncodingO200kBase,
		"gpt-4":             EncodingCL100kBase,
		"gpt-4-0314":        EncodingCL100kBase,
		"text-davinci-003":  EncodingP50kBase,
		"davinci":           EncodingR50kBase,
	}
	for model, want := range cases {
		got, err := encodingForModel(model)
		require.NoError(t, err, model)
		assert.Equal(t, want, got, model)
	}
}

func TestEncodingVocabCoversSpecialTokens(t *testing.T) {
	t.Parallel()
	// <|endofprompt|> is the highest id of o200k_base and cl100k_base.
	assert.Equal(t, 200018+1, encodingVocab[EncodingO200kBase])
	assert.Equal(t, 100276+1, encodingVocab[EncodingCL100kBase])
	// p50k_edit ends with <|fim_suffix|>.
	assert.Equal(t, 50283+1, encodingVocab[EncodingP50kEdit])
	assert.Len(t, encodingVocab, 5)
}
