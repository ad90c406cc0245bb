package logger

import (
	"context"
	"log/slog"
	"sync"
)

// Entry is a single record kept by a Capture handler.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Capture is a slog.Handler that keeps records in memory. It is meant for
// tests that assert on emitted diagnostics.
type Capture struct {
	mu      *sync.Mutex
	entries *[]Entry
	attrs   []slog.Attr
}

// NewCapture returns a Capture handler and a Logger writing into it.
func NewCapture() (*Capture, Logger) {
	c := &Capture{mu: &sync.Mutex{}, entries: &[]Entry{}}
	return c, New(c)
}

func (c *Capture) Enabled(context.Context, slog.Level) bool { return true }

func (c *Capture) Handle(_ context.Context, r slog.Record) error {
	e := Entry{Level: r.Level, Message: r.Message, Attrs: map[string]any{}}
	for _, a := range c.attrs {
		e.Attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		e.Attrs[a.Key] = a.Value.Any()
		return true
	})
	c.mu.Lock()
	*c.entries = append(*c.entries, e)
	c.mu.Unlock()
	return nil
}

func (c *Capture) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *c
	next.attrs = append(append([]slog.Attr(nil), c.attrs...), attrs...)
	return &next
}

// WithGroup is a no-op; captured keys stay flat.
func (c *Capture) WithGroup(string) slog.Handler { return c }

// Entries returns a copy of everything recorded so far.
func (c *Capture) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), (*c.entries)...)
}

// Count returns how many records were logged at exactly level.
func (c *Capture) Count(level slog.Level) int {
	n := 0
	for _, e := range c.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}
