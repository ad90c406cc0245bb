// Package model defines the capability the decoding core consumes: something
// that scores the next token given a sequence, and something that converts
// between text and token ids.
package model

import "github.com/samcharles93/scribe/internal/device"

// Model is the full capability a decoder needs. Decode rescoring is done from
// scratch on every call; decoders cache nothing between steps.
type Model interface {
	Scorer
	IDsFromText(text string) ([]int, error)
	TextFromIDs(ids []int) (string, error)
}

// Scorer returns next-token logits for the whole sequence seen so far, one
// entry per vocabulary id.
type Scorer interface {
	Decode(seq []int) ([]float32, error)
}

// Codec converts between text and token ids.
type Codec interface {
	IDsFromText(text string) ([]int, error)
	TextFromIDs(ids []int) (string, error)
	VocabSize() int
}

// Placer is implemented by models that own device placement of their working
// tensors. Decoders call Place once, when they are built.
type Placer interface {
	Place(dev device.Device) error
}

type composed struct {
	Scorer
	codec Codec
}

// Compose joins a scorer and a codec into a Model. Placement is forwarded to
// the scorer when it implements Placer.
func Compose(s Scorer, c Codec) Model {
	return &composed{Scorer: s, codec: c}
}

func (m *composed) IDsFromText(text string) ([]int, error) { return m.codec.IDsFromText(text) }

func (m *composed) TextFromIDs(ids []int) (string, error) { return m.codec.TextFromIDs(ids) }

func (m *composed) VocabSize() int { return m.codec.VocabSize() }

func (m *composed) Place(dev device.Device) error {
	if p, ok := m.Scorer.(Placer); ok {
		return p.Place(dev)
	}
	return nil
}
