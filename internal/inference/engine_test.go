package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/samcharles93/scribe/internal/decode"
	"github.com/samcharles93/scribe/internal/model"
	"github.com/samcharles93/scribe/internal/tokenizer"
	"github.com/samcharles93/scribe/internal/toy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byteRow(ids ...int) []float32 {
	row := make([]float32, 256)
	for _, id := range ids {
		row[id] = 10
	}
	return row
}

func newTestEngine(rows ...[]float32) *EngineImpl {
	return NewEngine(model.Compose(toy.NewCyclic(rows...), tokenizer.Bytes{}), 256, nil)
}

func greedyRequest(mut func(*RequestOptions)) *Request {
	opts := RequestOptions{}
	if mut != nil {
		mut(&opts)
	}
	req := ResolveRequest(opts, GenDefaults{})
	return &req
}

func ptr[T any](v T) *T { return &v }

func TestGenerateCount(t *testing.T) {
	t.Parallel()
	e := newTestEngine(byteRow('a'), byteRow('b'))

	var streamed []Token
	res, err := e.Generate(context.Background(), greedyRequest(func(o *RequestOptions) {
		o.Prompt = ptr("hi")
		o.NumTokens = ptr(4)
	}), func(tok Token) { streamed = append(streamed, tok) })
	require.NoError(t, err)

	assert.Equal(t, "abab", res.Text)
	assert.Equal(t, []int{'a', 'b', 'a', 'b'}, res.TokenIDs)
	assert.Equal(t, 2, res.PromptTokens)
	assert.Equal(t, decode.StopCount, res.StopReason)
	assert.Equal(t, StrategyGreedy, res.Strategy)
	assert.Equal(t, "cpu", res.Device)
	assert.Nil(t, res.Seed)
	assert.Equal(t, 4, res.Stats.TokensGenerated)

	require.Len(t, streamed, 4)
	assert.Equal(t, Token{Index: 3, ID: 'b', Text: "b"}, streamed[3])
}

func TestGenerateUntilEndText(t *testing.T) {
	t.Parallel()
	e := newTestEngine(byteRow('x'), byteRow('y'), byteRow('.'))
	res, err := e.Generate(context.Background(), greedyRequest(func(o *RequestOptions) {
		o.End = ptr("y.")
		o.MaxLength = ptr(20)
	}), nil)
	require.NoError(t, err)
	assert.Equal(t, "xy.", res.Text)
	assert.Equal(t, decode.StopEndSequence, res.StopReason)
}

func TestGenerateUntilEndIDsAndMaxLength(t *testing.T) {
	t.Parallel()
	e := newTestEngine(byteRow('x'))
	res, err := e.Generate(context.Background(), greedyRequest(func(o *RequestOptions) {
		o.EndIDs = []int{'z'}
		o.MaxLength = ptr(5)
	}), nil)
	require.NoError(t, err)
	assert.Equal(t, "xxxxx", res.Text)
	assert.Equal(t, decode.StopMaxLength, res.StopReason)
}

func TestGenerateNegativeCountUsesMaxLength(t *testing.T) {
	t.Parallel()
	e := newTestEngine(byteRow('x'))
	res, err := e.Generate(context.Background(), greedyRequest(func(o *RequestOptions) {
		o.NumTokens = ptr(-1)
		o.MaxLength = ptr(3)
	}), nil)
	require.NoError(t, err)
	assert.Len(t, res.TokenIDs, 3)
}

func TestGenerateSampleReportsSeedAndWarnings(t *testing.T) {
	t.Parallel()
	e := newTestEngine(byteRow('a', 'b'))
	res, err := e.Generate(context.Background(), greedyRequest(func(o *RequestOptions) {
		o.Strategy = ptr(StrategySample)
		o.NumTokens = ptr(3)
		o.TopK = ptr(1000)
		o.Temperature = ptr(-1.0)
		o.Seed = ptr(int64(11))
	}), nil)
	require.NoError(t, err)
	require.NotNil(t, res.Seed)
	assert.Equal(t, int64(11), *res.Seed)
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, decode.ConfigurationWarning, res.Warnings[0].Kind)
	assert.Equal(t, decode.RuntimeWarning, res.Warnings[1].Kind)
}

func TestGenerateSampleReproducible(t *testing.T) {
	t.Parallel()
	run := func() []int {
		e := newTestEngine(byteRow('a', 'b', 'c'))
		res, err := e.Generate(context.Background(), greedyRequest(func(o *RequestOptions) {
			o.Strategy = ptr(StrategySample)
			o.NumTokens = ptr(16)
			o.Seed = ptr(int64(5))
		}), nil)
		require.NoError(t, err)
		return res.TokenIDs
	}
	assert.Equal(t, run(), run())
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		mut  func(*RequestOptions)
		want error
	}{
		{"unknown strategy", func(o *RequestOptions) { o.Strategy = ptr("beam") }, decode.ErrConfiguration},
		{"bad device", func(o *RequestOptions) { o.Device = ptr("tpu") }, decode.ErrConfiguration},
		{"negative k", func(o *RequestOptions) { o.Strategy = ptr(StrategySample); o.TopK = ptr(-1) }, decode.ErrConfiguration},
		{"zero temperature", func(o *RequestOptions) { o.Strategy = ptr(StrategySample); o.Temperature = ptr(0.0) }, decode.ErrArithmetic},
		{"min above max", func(o *RequestOptions) { o.EndIDs = []int{1}; o.MaxLength = ptr(2); o.MinLength = ptr(3) }, decode.ErrConfiguration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(byteRow('a'))
			_, err := e.Generate(context.Background(), greedyRequest(tc.mut), nil)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGenerateCanceled(t *testing.T) {
	t.Parallel()
	e := newTestEngine(byteRow('a'))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Generate(ctx, greedyRequest(nil), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerateCanceledMidStream(t *testing.T) {
	t.Parallel()
	e := newTestEngine(byteRow('a'))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n := 0
	_, err := e.Generate(ctx, greedyRequest(func(o *RequestOptions) { o.NumTokens = ptr(10) }), func(Token) {
		n++
		if n == 2 {
			cancel()
		}
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, n)
}

type panicScorer struct{}

func (panicScorer) Decode([]int) ([]float32, error) { panic("boom") }

type panicCodec struct{ tokenizer.Bytes }

func (panicCodec) IDsFromText(string) ([]int, error) { panic("encode boom") }

func TestGenerateConvertsPanics(t *testing.T) {
	t.Parallel()
	e := NewEngine(model.Compose(panicScorer{}, tokenizer.Bytes{}), 256, nil)
	_, err := e.Generate(context.Background(), greedyRequest(nil), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in Decode")

	e = NewEngine(model.Compose(toy.NewCyclic(byteRow('a')), panicCodec{}), 256, nil)
	_, err = e.Generate(context.Background(), greedyRequest(func(o *RequestOptions) { o.Prompt = ptr("x") }), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in IDsFromText")
}

type errScorer struct{ calls int }

func (m *errScorer) Decode([]int) ([]float32, error) {
	m.calls++
	if m.calls == 2 {
		return nil, errors.New("forced decode failure")
	}
	return byteRow('a'), nil
}

func TestRunWithContextReturnsModelError(t *testing.T) {
	t.Parallel()
	m := model.Compose(&errScorer{}, tokenizer.Bytes{})
	g, err := decode.Using(m).Greedy()
	require.NoError(t, err)

	gen := &Generator{Decoder: g, Tokenizer: m}
	out, stats, _, err := gen.Run(Limit{Count: 3}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forced decode failure")
	assert.Equal(t, []int{'a'}, out)
	assert.Equal(t, 1, stats.TokensGenerated)
}

func TestRunStreamsSplitCharacterWhole(t *testing.T) {
	t.Parallel()
	e := newTestEngine(byteRow(0xC3), byteRow(0xA9), byteRow('!'))

	var texts []string
	res, err := e.Generate(context.Background(), greedyRequest(func(o *RequestOptions) {
		o.NumTokens = ptr(3)
	}), func(tok Token) {
		texts = append(texts, tok.Text)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"", "é", "!"}, texts)
	assert.Equal(t, "é!", res.Text)
}

func TestRunFlushesIncompleteCharacterAtStop(t *testing.T) {
	t.Parallel()
	m := model.Compose(toy.NewCyclic(byteRow('a'), byteRow(0xC3)), tokenizer.Bytes{})
	g, err := decode.Using(m).Greedy()
	require.NoError(t, err)

	gen := &Generator{Decoder: g, Tokenizer: m}
	var joined string
	out, _, reason, err := gen.Run(Limit{Count: 2}, func(tok Token) { joined += tok.Text })
	require.NoError(t, err)
	assert.Equal(t, decode.StopCount, reason)
	assert.Equal(t, []int{'a', 0xC3}, out)
	assert.Equal(t, "a\xc3", joined)
}

func TestTokenizeRoundTrip(t *testing.T) {
	t.Parallel()
	e := newTestEngine(byteRow('a'))
	ids, err := e.Tokenize("ok")
	require.NoError(t, err)
	assert.Equal(t, []int{'o', 'k'}, ids)
	text, err := e.Detokenize(ids)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 256, e.VocabSize())
	require.NoError(t, e.Close())
}
