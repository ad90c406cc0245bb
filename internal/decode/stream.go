package decode

import (
	"fmt"
	"iter"
	"slices"

	"github.com/samcharles93/scribe/internal/model"
)

// pickFunc chooses the next token from the scores of one step. seq is the
// sequence the scores were computed from.
type pickFunc func(seq []int, scores []float32) (int, error)

// Stream is a lazy, unbounded and non-restartable token sequence. Each Next
// rescores the whole sequence, picks one token, appends it and returns it.
// A Stream owns its sequence; it is not safe for concurrent use.
type Stream struct {
	model     model.Model
	pick      pickFunc
	seq       []int
	promptLen int
	step      int
	err       error
}

func newStream(m model.Model, prompt []int, pick pickFunc) *Stream {
	seq := make([]int, len(prompt), len(prompt)+64)
	copy(seq, prompt)
	return &Stream{model: m, pick: pick, seq: seq, promptLen: len(prompt)}
}

// Next produces the next token. After the first error every call returns
// that same error.
func (s *Stream) Next() (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	scores, err := s.model.Decode(s.seq[:len(s.seq):len(s.seq)])
	if err != nil {
		s.err = fmt.Errorf("decode step %d: %w", s.step, err)
		return 0, s.err
	}
	if len(scores) == 0 {
		s.err = fmt.Errorf("decode step %d: %w", s.step, ErrEmptyScores)
		return 0, s.err
	}
	tok, err := s.pick(s.seq, scores)
	if err != nil {
		s.err = fmt.Errorf("decode step %d: %w", s.step, err)
		return 0, s.err
	}
	s.seq = append(s.seq, tok)
	s.step++
	return tok, nil
}

// All adapts the stream to range-over-func. Iteration ends when the caller
// breaks, or after yielding the first error.
//
//	for tok, err := range stream.All() {
//		if err != nil || tok == stop {
//			break
//		}
//	}
func (s *Stream) All() iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		for {
			tok, err := s.Next()
			if !yield(tok, err) || err != nil {
				return
			}
		}
	}
}

// Sequence returns the prompt followed by every generated token.
func (s *Stream) Sequence() []int { return slices.Clone(s.seq) }

// Generated returns only the tokens produced by this stream.
func (s *Stream) Generated() []int { return slices.Clone(s.seq[s.promptLen:]) }

// Steps is the number of tokens generated so far.
func (s *Stream) Steps() int { return s.step }
