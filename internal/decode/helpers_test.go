package decode

import (
	"errors"

	"github.com/samcharles93/scribe/internal/device"
	"github.com/samcharles93/scribe/internal/model"
	"github.com/samcharles93/scribe/internal/tokenizer"
	"github.com/samcharles93/scribe/internal/toy"
)

var cyclicRows = [][]float32{
	{0.8, 0.1, 0.7, 0.9},
	{0.9, 0.1, 0.7, 0.8},
}

func cyclic(rows ...[]float32) (*toy.Cyclic, model.Model) {
	c := toy.NewCyclic(rows...)
	return c, model.Compose(c, tokenizer.Bytes{})
}

// oneHot scores vocab entries zero except idx.
func oneHot(vocab, idx int) []float32 {
	row := make([]float32, vocab)
	row[idx] = 10
	return row
}

type failingModel struct {
	model.Model
	after int
	calls int
}

var errModelBroke = errors.New("model broke")

func (f *failingModel) Decode(seq []int) ([]float32, error) {
	f.calls++
	if f.calls > f.after {
		return nil, errModelBroke
	}
	return f.Model.Decode(seq)
}

type emptyModel struct{ model.Model }

func (emptyModel) Decode([]int) ([]float32, error) { return nil, nil }

type placeRecorder struct {
	model.Model
	placed []device.Device
	err    error
}

func (p *placeRecorder) Place(d device.Device) error {
	p.placed = append(p.placed, d)
	return p.err
}
