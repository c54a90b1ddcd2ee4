package app

import (
	"context"

	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/fvp"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
)

func errNothingEligible(mode string) error {
	return clierr.Newf(clierr.NothingToPreselect, "no open tasks to preselect in %s", mode)
}

// Preselect runs a full walk, asking cmp for each comparison. Every answer is
// recorded under the walk's id. When fvp.auto_start is set the resulting
// benchmark's timer is started, unless the walk was aborted.
func (s *Session) Preselect(ctx context.Context, lastConsidered string, cmp fvp.Comparator) (fvp.Result, error) {
	logged := fvp.ComparatorFunc(func(ctx context.Context, c fvp.Comparison) (fvp.Choice, error) {
		choice, err := cmp.Compare(ctx, c)
		if err == nil {
			s.record("compare", c.Candidate.ID, choice.String()+" vs "+c.Benchmark.ID, c.WalkID)
		}
		return choice, err
	})

	res, err := s.fvp.Run(ctx, lastConsidered, logged)
	if err != nil && !clierr.IsPersistence(err) {
		return res, err
	}
	if res.Benchmark == nil {
		return res, errNothingEligible(s.mode)
	}
	return res, s.finishWalk(res, err)
}

// Walk is a preselection pass answered one comparison at a time.
type Walk struct {
	s *Session
	w *fvp.Walk

	finished bool
}

// BeginPreselect starts a stepwise walk.
func (s *Session) BeginPreselect(lastConsidered string) (*Walk, error) {
	w, err := s.fvp.Begin(lastConsidered)
	if err != nil && !clierr.IsPersistence(err) {
		return nil, err
	}
	if err != nil {
		s.warn(err)
	}
	if w.Benchmark() == nil {
		return nil, errNothingEligible(s.mode)
	}
	s.logger.Debug("walk started", "walk", w.ID, "benchmark", w.Benchmark().ID)
	return &Walk{s: s, w: w}, nil
}

// ID returns the walk id.
func (w *Walk) ID() string { return w.w.ID }

// Pending returns the comparison awaiting an answer.
func (w *Walk) Pending() (fvp.Comparison, bool) { return w.w.Pending() }

// Benchmark returns the currently marked task.
func (w *Walk) Benchmark() *task.Task { return w.w.Benchmark() }

// Decide answers the pending comparison. Once the walk is done it is
// finalized and the returned bool is true.
func (w *Walk) Decide(c fvp.Choice) (bool, error) {
	cmp, ok := w.w.Pending()
	if !ok {
		return true, clierr.New(clierr.NothingToPreselect, "no comparison pending")
	}

	err := w.w.Decide(c)
	if err != nil && !clierr.IsPersistence(err) {
		return false, err
	}
	if err != nil {
		w.s.warn(err)
	}
	w.s.record("compare", cmp.Candidate.ID, c.String()+" vs "+cmp.Benchmark.ID, w.w.ID)

	if !w.w.Done() {
		w.s.render(w.s.focus)
		return false, nil
	}
	return true, w.Finish()
}

// Abort ends the walk with the current benchmark.
func (w *Walk) Abort() error {
	if !w.w.Done() {
		_ = w.w.Decide(fvp.Abort)
	}
	return w.Finish()
}

// Finish finalizes the walk. It is idempotent.
func (w *Walk) Finish() error {
	if w.finished {
		return nil
	}
	w.finished = true
	return w.s.finishWalk(w.w.Result(), nil)
}

// Result summarizes the walk so far.
func (w *Walk) Result() fvp.Result { return w.w.Result() }

func (s *Session) finishWalk(res fvp.Result, saveErr error) error {
	if saveErr != nil {
		s.warn(saveErr)
	}
	detail := "benchmark " + res.Benchmark.ID
	if res.Aborted {
		detail += " (aborted)"
	}
	s.record("preselect", res.Benchmark.ID, detail, res.WalkID)
	s.logger.Info("walk finished", "walk", res.WalkID, "comparisons", res.Comparisons, "aborted", res.Aborted)

	if s.cfg.FVP.AutoStart && !res.Aborted && !res.Benchmark.Running() {
		if err := s.timer.Start(res.Benchmark.ID); err != nil {
			if !clierr.IsPersistence(err) {
				return err
			}
			s.warn(err)
			saveErr = err
		}
		s.record("start", res.Benchmark.ID, "auto", res.WalkID)
	}
	s.render(res.Benchmark.ID)
	return saveErr
}

// StartBenchmark starts the timer of the current benchmark.
func (s *Session) StartBenchmark() (*task.Task, error) {
	b := fvp.CurrentBenchmark(s.store.Tasks())
	if b == nil {
		return nil, errNothingEligible(s.mode)
	}
	return b, s.Start(b.ID)
}
