package workspace

import (
	"context"
	"sync"
)

// initGate runs a setup step until it succeeds once. Failures are not kept,
// so a caller whose ctx was cancelled does not break later callers.
type initGate struct {
	mu   sync.Mutex
	done bool
}

func (g *initGate) Do(ctx context.Context, fn func(context.Context) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return nil
	}
	if err := fn(ctx); err != nil {
		return err
	}
	g.done = true
	return nil
}
