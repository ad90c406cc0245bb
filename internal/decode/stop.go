package decode

import (
	"fmt"
	"slices"
)

const (
	// DefaultMaxLength bounds GenerateIDsUntil when the caller has no better
	// ceiling.
	DefaultMaxLength = 100
	// DefaultMinLength imposes no minimum.
	DefaultMinLength = 1
)

// StopReason says why a generation ended.
type StopReason string

const (
	StopNone        StopReason = ""
	StopEndSequence StopReason = "end_sequence"
	StopMaxLength   StopReason = "max_length"
	StopCount       StopReason = "num_tokens"
)

// End builds an end sequence from one or more tokens.
func End(tokens ...int) []int { return tokens }

// Stopper accumulates tokens and decides when generation is over. It is the
// incremental form of Until, for callers that stream tokens as they arrive.
type Stopper struct {
	end       []int
	maxLength int
	minLength int
	tokens    []int
	reason    StopReason
}

// NewStopper checks the stopping parameters. end must hold at least one
// token, maxLength must be positive and minLength may not exceed it.
func NewStopper(end []int, maxLength, minLength int) (*Stopper, error) {
	if len(end) == 0 {
		return nil, &ConfigError{Field: "end_sequence", Value: end, Reason: "at least one token is required"}
	}
	if maxLength < 1 {
		return nil, &ConfigError{Field: "max_length", Value: maxLength, Reason: "must be at least 1"}
	}
	if minLength > maxLength {
		return nil, &ConfigError{Field: "min_length", Value: minLength, Reason: fmt.Sprintf("exceeds max_length %d", maxLength)}
	}
	return &Stopper{
		end:       slices.Clone(end),
		maxLength: maxLength,
		minLength: minLength,
		tokens:    make([]int, 0, min(maxLength, 256)),
	}, nil
}

// Push records tok and reports whether generation should stop. A match of
// the end sequence is ignored while fewer than minLength tokens exist; the
// maxLength ceiling applies regardless. Pushing after a stop is a no-op.
func (s *Stopper) Push(tok int) bool {
	if s.reason != StopNone {
		return true
	}
	s.tokens = append(s.tokens, tok)
	n := len(s.tokens)
	if tok == s.end[len(s.end)-1] && n >= s.minLength && n >= len(s.end) &&
		slices.Equal(s.tokens[n-len(s.end):], s.end) {
		s.reason = StopEndSequence
		return true
	}
	if n >= s.maxLength {
		s.reason = StopMaxLength
		return true
	}
	return false
}

// Tokens returns what has been pushed so far, end sequence included.
func (s *Stopper) Tokens() []int { return slices.Clone(s.tokens) }

// Reason is StopNone until Push has returned true.
func (s *Stopper) Reason() StopReason { return s.reason }

// Drain pulls from next and pushes each token until the Stopper is done. On
// a pull error the tokens gathered so far stay in the Stopper.
func (s *Stopper) Drain(next func() (int, error)) error {
	for s.reason == StopNone {
		tok, err := next()
		if err != nil {
			return err
		}
		s.Push(tok)
	}
	return nil
}

// Until pulls from next until the end sequence appears (after minLength
// tokens) or maxLength tokens exist. On a pull error the tokens gathered so
// far are returned with it.
func Until(next func() (int, error), end []int, maxLength, minLength int) ([]int, error) {
	st, err := NewStopper(end, maxLength, minLength)
	if err != nil {
		return nil, err
	}
	err = st.Drain(next)
	return st.Tokens(), err
}

// Take pulls exactly n tokens from next.
func Take(next func() (int, error), n int) ([]int, error) {
	if n < 0 {
		return nil, &ConfigError{Field: "num_tokens", Value: n, Reason: "must not be negative"}
	}
	out := make([]int, 0, n)
	for len(out) < n {
		tok, err := next()
		if err != nil {
			return out, fmt.Errorf("token %d of %d: %w", len(out)+1, n, err)
		}
		out = append(out, tok)
	}
	return out, nil
}
