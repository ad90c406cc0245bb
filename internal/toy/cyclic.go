package toy

import "errors"

// Cyclic ignores the sequence and returns its rows in order, wrapping around.
// Each call returns a fresh copy so callers may filter in place.
type Cyclic struct {
	Rows [][]float32
	next int
	// Calls counts Decode invocations.
	Calls int
	// Seen keeps the sequence passed to every call.
	Seen [][]int
}

// NewCyclic returns a Cyclic over rows.
func NewCyclic(rows ...[]float32) *Cyclic {
	return &Cyclic{Rows: rows}
}

func (c *Cyclic) Decode(seq []int) ([]float32, error) {
	if len(c.Rows) == 0 {
		return nil, errors.New("cyclic: no rows")
	}
	row := c.Rows[c.next]
	c.next = (c.next + 1) % len(c.Rows)
	c.Calls++
	c.Seen = append(c.Seen, append([]int(nil), seq...))
	return append([]float32(nil), row...), nil
}
