// Package fvp implements the Final Version Perfected preselection walk: the
// benchmark task is compared with each later eligible task in list order and
// the answer decides which task carries the mark.
package fvp

import (
	"github.com/google/uuid"

	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/store"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
)

// Choice is the answer to one comparison.
type Choice int

const (
	Abort Choice = iota
	ChooseBenchmark
	ChooseCandidate
	DeferCandidate
	DeferBenchmark
)

var choiceNames = map[Choice]string{
	Abort:           "abort",
	ChooseBenchmark: "benchmark",
	ChooseCandidate: "candidate",
	DeferCandidate:  "defer-candidate",
	DeferBenchmark:  "defer-benchmark",
}

func (c Choice) String() string {
	if s, ok := choiceNames[c]; ok {
		return s
	}
	return "unknown"
}

// Comparison is a pending question: do you want to do Candidate more than Benchmark?
type Comparison struct {
	WalkID    string
	Step      int // 1-based
	Benchmark *task.Task
	Candidate *task.Task
}

// PreviousBenchmark returns the last task that is marked and completed.
func PreviousBenchmark(tasks []*task.Task) *task.Task {
	for i := len(tasks) - 1; i >= 0; i-- {
		if tasks[i].Marked && tasks[i].Completed {
			return tasks[i]
		}
	}
	return nil
}

// CurrentBenchmark returns the last task that is marked and open.
func CurrentBenchmark(tasks []*task.Task) *task.Task {
	for i := len(tasks) - 1; i >= 0; i-- {
		if tasks[i].Benchmark() {
			return tasks[i]
		}
	}
	return nil
}

// NextCandidate returns the first eligible task strictly after the task with
// id after. An empty after searches from the start.
func NextCandidate(tasks []*task.Task, after string) *task.Task {
	start := 0
	if after != "" {
		i := task.Index(tasks, after)
		if i < 0 {
			return nil
		}
		start = i + 1
	}
	for _, t := range tasks[start:] {
		if t.Eligible() {
			return t
		}
	}
	return nil
}

// Walk is one preselection pass driven step by step.
type Walk struct {
	ID string

	store     *store.Store
	benchmark *task.Task
	candidate *task.Task
	steps     int
	aborted   bool
	err       error
}

// Begin starts a walk over s. When resuming, lastConsidered is the id of the
// last candidate already compared; pass "" for a fresh walk. If no task is
// marked the first eligible one becomes the benchmark. A walk over a list
// without eligible tasks is returned already finished with a nil Benchmark.
func Begin(s *store.Store, lastConsidered string) (*Walk, error) {
	w := &Walk{ID: uuid.NewString(), store: s}
	tasks := s.Tasks()

	prev := PreviousBenchmark(tasks)
	cur := CurrentBenchmark(tasks)
	if cur == nil {
		cur = NextCandidate(tasks, "")
		if cur == nil {
			return w, nil
		}
		cur.Mark()
		if err := s.Save(); err != nil {
			w.err = err
		}
	}
	w.benchmark = cur

	switch {
	case lastConsidered != "" && task.Index(tasks, lastConsidered) >= 0:
		w.candidate = NextCandidate(tasks, lastConsidered)
	case prev != nil && task.Index(tasks, prev.ID) < task.Index(tasks, cur.ID):
		w.candidate = NextCandidate(tasks, cur.ID)
	case prev != nil:
		w.candidate = NextCandidate(tasks, prev.ID)
		if w.candidate == nil {
			w.candidate = NextCandidate(tasks, cur.ID)
		}
	default:
		w.candidate = NextCandidate(tasks, cur.ID)
	}

	if w.candidate == w.benchmark {
		w.candidate = nil
	}
	return w, w.err
}

// Pending returns the comparison awaiting an answer, if any.
func (w *Walk) Pending() (Comparison, bool) {
	if w.candidate == nil || w.aborted {
		return Comparison{}, false
	}
	return Comparison{
		WalkID:    w.ID,
		Step:      w.steps + 1,
		Benchmark: w.benchmark,
		Candidate: w.candidate,
	}, true
}

// Done reports whether the walk has finished.
func (w *Walk) Done() bool {
	_, ok := w.Pending()
	return !ok
}

// Benchmark returns the currently marked task of the walk.
func (w *Walk) Benchmark() *task.Task { return w.benchmark }

// Steps returns the number of answered comparisons.
func (w *Walk) Steps() int { return w.steps }

// Aborted reports whether the walk ended on Abort.
func (w *Walk) Aborted() bool { return w.aborted }

// Decide answers the pending comparison and advances to the next candidate.
// A persistence error is returned but the decision stays applied.
func (w *Walk) Decide(c Choice) error {
	if _, ok := w.Pending(); !ok {
		return clierr.New(clierr.NothingToPreselect, "no comparison pending")
	}

	if c == Abort {
		w.aborted = true
		return nil
	}

	cand := w.candidate
	switch c {
	case ChooseBenchmark:
	case ChooseCandidate:
		w.benchmark.Unmark()
		cand.Mark()
		w.benchmark = cand
	case DeferCandidate:
		cand.Defer()
	case DeferBenchmark:
		w.benchmark.Defer()
		cand.Mark()
		w.benchmark = cand
	default:
		return clierr.Newf(clierr.InvalidInput, "unknown choice %d", int(c))
	}
	w.steps++

	tasks := w.store.Tasks()
	w.candidate = NextCandidate(tasks, cand.ID)
	if w.candidate == w.benchmark {
		w.candidate = nil
	}

	if c == ChooseBenchmark {
		return nil
	}
	return w.store.Save()
}
