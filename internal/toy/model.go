// Package toy holds tiny deterministic scorers. ToyLM gives the CLI and the
// server something to decode against without loading weights; Cyclic replays
// fixed score rows and is what the decoder tests drive.
package toy

import (
	"fmt"
	"math/rand"

	"github.com/samcharles93/scribe/internal/device"
)

// ToyLM is a bigram language model: the last token of the sequence is
// embedded and projected back to vocabulary logits. Weights are filled from a
// seed so every run with the same seed scores identically.
type ToyLM struct {
	Vocab  int
	Hidden int

	Emb  []float32 // [Vocab x Hidden]
	W    []float32 // [Hidden x Vocab]
	Bias []float32 // [Vocab]

	device device.Device
}

// NewToyLM constructs a model with the given vocabulary and hidden size.
func NewToyLM(vocab, hidden int, seed int64) (*ToyLM, error) {
	if vocab <= 0 || hidden <= 0 {
		return nil, fmt.Errorf("toy: vocab and hidden must be positive (got %d, %d)", vocab, hidden)
	}
	m := &ToyLM{
		Vocab:  vocab,
		Hidden: hidden,
		Emb:    make([]float32, vocab*hidden),
		W:      make([]float32, hidden*vocab),
		Bias:   make([]float32, vocab),
		device: device.Default,
	}
	fillRand(m.Emb, seed+11)
	fillRand(m.W, seed+23)
	return m, nil
}

func fillRand(dst []float32, seed int64) {
	r := rand.New(rand.NewSource(seed))
	for i := range dst {
		dst[i] = r.Float32()*2 - 1
	}
}

// Place accepts only the CPU; ToyLM has no accelerator kernels.
func (m *ToyLM) Place(dev device.Device) error {
	if err := device.Check(dev); err != nil {
		return err
	}
	if dev.Kind != device.CPU {
		return fmt.Errorf("%w: toy model runs on cpu only (requested %s)", device.ErrUnavailable, dev)
	}
	m.device = dev
	return nil
}

// Device reports where the model was placed.
func (m *ToyLM) Device() device.Device { return m.device }

// Decode scores the next token. Tokens outside [0, Vocab) wrap modulo Vocab;
// an empty sequence scores the bias alone.
func (m *ToyLM) Decode(seq []int) ([]float32, error) {
	logits := make([]float32, m.Vocab)
	copy(logits, m.Bias)
	if len(seq) == 0 {
		return logits, nil
	}
	tok := seq[len(seq)-1] % m.Vocab
	if tok < 0 {
		tok += m.Vocab
	}
	h := m.Emb[tok*m.Hidden : (tok+1)*m.Hidden]
	for i, hv := range h {
		row := m.W[i*m.Vocab : (i+1)*m.Vocab]
		for j, w := range row {
			logits[j] += hv * w
		}
	}
	return logits, nil
}
