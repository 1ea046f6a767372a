// Package group runs a set of goroutines which share a lifetime.
package group

import (
	"context"
	"sync"
)

// A G runs goroutines from a common context. When the first of them
// returns the context is canceled, which signals the rest to exit.
type G struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   sync.WaitGroup

	errOnce sync.Once
	err     error
}

// New returns a group derived from ctx.
func New(ctx context.Context) *G {
	ctx, cancel := context.WithCancel(ctx)
	return &G{
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddContext starts fn in a new goroutine. fn should return when its
// context is canceled.
func (g *G) AddContext(fn func(context.Context) error) {
	g.done.Add(1)
	go func() {
		defer g.done.Done()
		defer g.cancel()
		if err := fn(g.ctx); err != nil {
			g.errOnce.Do(func() { g.err = err })
		}
	}()
}

// Wait blocks until every goroutine has returned and reports the first
// error, if any.
func (g *G) Wait() error {
	g.done.Wait()
	g.errOnce.Do(func() {
		// synchronise with the writer of g.err.
	})
	return g.err
}
