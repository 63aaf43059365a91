package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/mattjoyce/breakdown/internal/input"
	"github.com/mattjoyce/breakdown/internal/options"
)

// Runner builds a fresh Pipeline for every call from a shared Deps snapshot.
// Long-running surfaces (serve, mcp) hold one and Swap it on config reload.
type Runner struct {
	deps atomic.Pointer[Deps]
}

// NewRunner returns a Runner over deps.
func NewRunner(deps Deps) *Runner {
	r := &Runner{}
	r.Swap(deps)
	return r
}

// Swap replaces the snapshot used by subsequent runs. Runs already in
// progress keep the snapshot they started with.
func (r *Runner) Swap(deps Deps) {
	d := deps
	r.deps.Store(&d)
}

// Deps returns the current snapshot.
func (r *Runner) Deps() Deps {
	return *r.deps.Load()
}

// Run executes one pipeline with stdin standing in for standard input.
func (r *Runner) Run(ctx context.Context, args []string, opts options.Options, stdin input.Stdin) (*Result, error) {
	d := r.Deps()
	if stdin != nil {
		d.Stdin = stdin
	}
	return New(d).Run(ctx, args, opts)
}
