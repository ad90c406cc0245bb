package toy

import (
	"fmt"
	"strconv"

	"github.com/samcharles93/scribe/internal/device"
	"github.com/samcharles93/scribe/internal/safetensors"
)

// Tensor names used in a ToyLM weights file.
const (
	tensorEmb  = "toy.embedding"
	tensorW    = "toy.projection"
	tensorBias = "toy.bias"
)

// Save writes the model weights to a safetensors file at path.
func (m *ToyLM) Save(path string) error {
	return safetensors.Create(path, []safetensors.Tensor{
		{Name: tensorEmb, Shape: []int{m.Vocab, m.Hidden}, Data: m.Emb},
		{Name: tensorW, Shape: []int{m.Hidden, m.Vocab}, Data: m.W},
		{Name: tensorBias, Shape: []int{m.Vocab}, Data: m.Bias},
	}, map[string]string{
		"format": "scribe-toy",
		"vocab":  strconv.Itoa(m.Vocab),
		"hidden": strconv.Itoa(m.Hidden),
	})
}

// LoadToyLM reads weights written by Save. The embedding shape fixes the
// vocabulary and hidden sizes; the other tensors must agree with it.
func LoadToyLM(path string) (*ToyLM, error) {
	f, err := safetensors.Open(path)
	if err != nil {
		return nil, fmt.Errorf("toy: open weights: %w", err)
	}
	emb, info, err := f.ReadTensorF32(tensorEmb)
	if err != nil {
		return nil, fmt.Errorf("toy: %w", err)
	}
	if len(info.Shape) != 2 {
		return nil, fmt.Errorf("toy: %s has shape %v, want [vocab hidden]", tensorEmb, info.Shape)
	}
	vocab, hidden := info.Shape[0], info.Shape[1]

	w, info, err := f.ReadTensorF32(tensorW)
	if err != nil {
		return nil, fmt.Errorf("toy: %w", err)
	}
	if len(info.Shape) != 2 || info.Shape[0] != hidden || info.Shape[1] != vocab {
		return nil, fmt.Errorf("toy: %s has shape %v, want [%d %d]", tensorW, info.Shape, hidden, vocab)
	}

	bias := make([]float32, vocab)
	if _, ok := f.Tensor(tensorBias); ok {
		b, info, err := f.ReadTensorF32(tensorBias)
		if err != nil {
			return nil, fmt.Errorf("toy: %w", err)
		}
		if len(b) != vocab {
			return nil, fmt.Errorf("toy: %s has shape %v, want [%d]", tensorBias, info.Shape, vocab)
		}
		bias = b
	}

	return &ToyLM{
		Vocab:  vocab,
		Hidden: hidden,
		Emb:    emb,
		W:      w,
		Bias:   bias,
		device: device.Default,
	}, nil
}
