package api

import (
	"context"
	"sync"

	"github.com/samcharles93/scribe/internal/inference"
)

type EngineProvider interface {
	WithEngine(ctx context.Context, fn func(engine inference.Engine, defaults inference.GenDefaults) error) error
}

// SharedEngineProvider hands one engine to one request at a time. Decoders
// are built per request, but a model is not assumed safe for concurrent
// Decode calls.
type SharedEngineProvider struct {
	engine   inference.Engine
	defaults inference.GenDefaults
	mu       sync.Mutex
}

func NewSharedEngineProvider(engine inference.Engine, defaults inference.GenDefaults) *SharedEngineProvider {
	return &SharedEngineProvider{engine: engine, defaults: defaults}
}

func (p *SharedEngineProvider) WithEngine(ctx context.Context, fn func(engine inference.Engine, defaults inference.GenDefaults) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(p.engine, p.defaults)
}

func (p *SharedEngineProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.engine == nil {
		return nil
	}
	err := p.engine.Close()
	p.engine = nil
	return err
}
