package fvp

import (
	"context"
	"errors"

	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/store"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
)

// Comparator answers comparisons for a blocking walk. Returning an error,
// including ctx.Err(), aborts the walk.
type Comparator interface {
	Compare(ctx context.Context, c Comparison) (Choice, error)
}

// ComparatorFunc adapts a function to Comparator.
type ComparatorFunc func(ctx context.Context, c Comparison) (Choice, error)

// Compare calls f.
func (f ComparatorFunc) Compare(ctx context.Context, c Comparison) (Choice, error) {
	return f(ctx, c)
}

// Result summarizes a finished walk.
type Result struct {
	WalkID      string
	Benchmark   *task.Task // nil when nothing was eligible
	Comparisons int
	Aborted     bool
}

// Engine runs preselection walks over one store.
type Engine struct {
	store *store.Store
}

// New returns an Engine for s.
func New(s *store.Store) *Engine {
	return &Engine{store: s}
}

// Begin starts a stepwise walk. See Begin.
func (e *Engine) Begin(lastConsidered string) (*Walk, error) {
	return Begin(e.store, lastConsidered)
}

// Run performs a complete walk, asking cmp for every comparison. Persistence
// failures do not stop the walk; the last one is returned with the result.
func (e *Engine) Run(ctx context.Context, lastConsidered string, cmp Comparator) (Result, error) {
	w, err := e.Begin(lastConsidered)
	if err != nil && !clierr.IsPersistence(err) {
		return Result{}, err
	}
	saveErr := err

	for {
		c, ok := w.Pending()
		if !ok {
			break
		}

		choice, err := cmp.Compare(ctx, c)
		if err != nil {
			_ = w.Decide(Abort)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return w.Result(), err
		}
		if err := w.Decide(choice); err != nil {
			if !clierr.IsPersistence(err) {
				return w.Result(), err
			}
			saveErr = err
		}
	}
	return w.Result(), saveErr
}

// Result summarizes the walk so far.
func (w *Walk) Result() Result {
	return Result{
		WalkID:      w.ID,
		Benchmark:   w.Benchmark(),
		Comparisons: w.Steps(),
		Aborted:     w.Aborted(),
	}
}
