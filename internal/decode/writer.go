// Package decode generates token sequences from a language model one step at
// a time. Greedy picks the best-scoring token at each step; Sampler draws
// from a temperature-scaled, penalized and filtered distribution. Both share
// the Stream pull loop and the stopping rules in Until.
package decode

import (
	"fmt"

	"github.com/samcharles93/scribe/internal/model"
)

// Decoder is the surface shared by Greedy and Sampler.
type Decoder interface {
	State() *State
	Stream() *Stream
	GenerateIDs(n int) ([]int, error)
	GenerateIDsUntil(end []int, maxLength, minLength int) ([]int, error)
	Generate(n int) (string, error)
	GenerateUntil(end string, maxLength, minLength int) (string, error)
}

// writer implements the Decoder methods on top of a selection rule. Every
// generation call starts a fresh Stream from the prompt.
type writer struct {
	state     *State
	newPicker func() pickFunc
}

// State returns the decoder's generation state.
func (w *writer) State() *State { return w.state }

// Stream opens a lazy token stream starting at the prompt.
func (w *writer) Stream() *Stream {
	return newStream(w.state.model, w.state.prompt, w.newPicker())
}

// GenerateIDs returns exactly n new token ids. n == 0 never calls the model.
func (w *writer) GenerateIDs(n int) ([]int, error) {
	if n < 0 {
		return nil, &ConfigError{Field: "num_tokens", Value: n, Reason: "must not be negative"}
	}
	s := w.Stream()
	out, err := Take(s.Next, n)
	w.state.log.Debug("generated", "tokens", len(out), "reason", string(StopCount), "device", w.state.device.String())
	return out, err
}

// GenerateIDsUntil generates until end has been produced as a suffix of at
// least minLength tokens, or until maxLength tokens exist. The returned ids
// include the end sequence when it was matched.
func (w *writer) GenerateIDsUntil(end []int, maxLength, minLength int) ([]int, error) {
	st, err := NewStopper(end, maxLength, minLength)
	if err != nil {
		return nil, err
	}
	s := w.Stream()
	if err := st.Drain(s.Next); err != nil {
		return st.Tokens(), err
	}
	w.state.log.Debug("generated", "tokens", s.Steps(), "reason", string(st.Reason()), "device", w.state.device.String())
	return st.Tokens(), nil
}

// Generate produces n tokens and converts them to text. The text may hold
// fewer words than n; tokens and words do not map one to one.
func (w *writer) Generate(n int) (string, error) {
	ids, err := w.GenerateIDs(n)
	if err != nil {
		return "", err
	}
	return textFromIDs(w.state.model, ids)
}

// GenerateUntil tokenizes end and generates until it appears, within the
// token bounds maxLength and minLength.
func (w *writer) GenerateUntil(end string, maxLength, minLength int) (string, error) {
	endIDs, err := w.state.model.IDsFromText(end)
	if err != nil {
		return "", fmt.Errorf("end sequence: %w", err)
	}
	ids, err := w.GenerateIDsUntil(endIDs, maxLength, minLength)
	if err != nil {
		return "", err
	}
	return textFromIDs(w.state.model, ids)
}

func textFromIDs(m model.Model, ids []int) (string, error) {
	text, err := m.TextFromIDs(ids)
	if err != nil {
		return "", fmt.Errorf("detokenize: %w", err)
	}
	return text, nil
}
