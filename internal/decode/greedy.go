package decode

import "github.com/samcharles93/scribe/internal/logits"

// Greedy is greedy search: at every step the highest-scoring token is
// chosen, the lowest id winning ties. Generations from the same prompt are
// identical as long as the model is deterministic.
type Greedy struct {
	writer
}

// Greedy finalizes the builder into a greedy decoder.
func (b Builder) Greedy() (*Greedy, error) {
	st, err := b.state()
	if err != nil {
		return nil, err
	}
	return &Greedy{writer: writer{
		state: st,
		newPicker: func() pickFunc {
			return func(_ []int, scores []float32) (int, error) {
				return logits.Argmax(scores), nil
			}
		},
	}}, nil
}
