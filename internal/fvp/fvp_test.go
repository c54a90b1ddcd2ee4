package fvp_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/fvp/internal/fvp"
	"github.com/twiced-technology-gmbh/fvp/internal/store"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
)

// newStore builds a store from texts; ids equal texts.
func newStore(t *testing.T, texts ...string) *store.Store {
	t.Helper()
	records := make([]*task.Task, len(texts))
	for i, text := range texts {
		records[i] = task.New(text, text)
	}
	s := store.New(&store.Memory{})
	require.NoError(t, s.Replace(records))
	return s
}

func get(t *testing.T, s *store.Store, id string) *task.Task {
	t.Helper()
	tk, ok := s.Find(id)
	require.True(t, ok, id)
	return tk
}

// scripted answers comparisons in order and records what was asked.
type scripted struct {
	answers []fvp.Choice
	asked   []string
}

func (s *scripted) Compare(_ context.Context, c fvp.Comparison) (fvp.Choice, error) {
	s.asked = append(s.asked, c.Benchmark.ID+"/"+c.Candidate.ID)
	if len(s.answers) == 0 {
		return fvp.ChooseBenchmark, nil
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func marked(s *store.Store) []string {
	var out []string
	for _, t := range s.Tasks() {
		if t.Marked {
			out = append(out, t.ID)
		}
	}
	return out
}

func TestRun_ChooseCandidateMovesMark(t *testing.T) {
	s := newStore(t, "A", "B", "C")
	cmp := &scripted{answers: []fvp.Choice{fvp.ChooseCandidate, fvp.ChooseBenchmark}}

	res, err := fvp.New(s).Run(context.Background(), "", cmp)
	require.NoError(t, err)

	assert.Equal(t, []string{"A/B", "B/C"}, cmp.asked)
	assert.Equal(t, "B", res.Benchmark.ID)
	assert.Equal(t, 2, res.Comparisons)
	assert.False(t, res.Aborted)
	assert.Equal(t, []string{"B"}, marked(s))
	assert.NotEmpty(t, res.WalkID)
}

func TestRun_DeferCandidate(t *testing.T) {
	s := newStore(t, "A", "B", "C")
	cmp := &scripted{answers: []fvp.Choice{fvp.DeferCandidate, fvp.ChooseBenchmark}}

	res, err := fvp.New(s).Run(context.Background(), "", cmp)
	require.NoError(t, err)

	assert.Equal(t, []string{"A/B", "A/C"}, cmp.asked)
	assert.Equal(t, "A", res.Benchmark.ID)
	assert.True(t, get(t, s, "B").Deferred)
	assert.False(t, get(t, s, "B").Marked)
}

func TestRun_DeferBenchmark(t *testing.T) {
	s := newStore(t, "A", "B", "C")
	cmp := &scripted{answers: []fvp.Choice{fvp.DeferBenchmark, fvp.ChooseCandidate}}

	res, err := fvp.New(s).Run(context.Background(), "", cmp)
	require.NoError(t, err)

	assert.Equal(t, []string{"A/B", "B/C"}, cmp.asked)
	assert.Equal(t, "C", res.Benchmark.ID)
	a := get(t, s, "A")
	assert.True(t, a.Deferred)
	assert.False(t, a.Marked)
	assert.Equal(t, []string{"C"}, marked(s))
}

func TestRun_Abort(t *testing.T) {
	s := newStore(t, "A", "B", "C")
	cmp := &scripted{answers: []fvp.Choice{fvp.Abort}}

	res, err := fvp.New(s).Run(context.Background(), "", cmp)
	require.NoError(t, err)
	assert.True(t, res.Aborted)
	assert.Zero(t, res.Comparisons)
	assert.Equal(t, "A", res.Benchmark.ID)
	assert.Equal(t, []string{"A"}, marked(s))
}

func TestRun_ContextCanceled(t *testing.T) {
	s := newStore(t, "A", "B")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := fvp.New(s).Run(ctx, "", fvp.ComparatorFunc(func(ctx context.Context, _ fvp.Comparison) (fvp.Choice, error) {
		return fvp.Abort, ctx.Err()
	}))
	require.NoError(t, err)
	assert.True(t, res.Aborted)
	assert.Equal(t, "A", res.Benchmark.ID)
}

func TestRun_ComparatorError(t *testing.T) {
	s := newStore(t, "A", "B")
	boom := errors.New("input closed")
	_, err := fvp.New(s).Run(context.Background(), "", fvp.ComparatorFunc(func(context.Context, fvp.Comparison) (fvp.Choice, error) {
		return fvp.Abort, boom
	}))
	assert.ErrorIs(t, err, boom)
}

func TestRun_NothingEligible(t *testing.T) {
	s := newStore(t, "A", "B")
	get(t, s, "A").Completed = true
	get(t, s, "B").Defer()

	res, err := fvp.New(s).Run(context.Background(), "", &scripted{})
	require.NoError(t, err)
	assert.Nil(t, res.Benchmark)
	assert.Zero(t, res.Comparisons)
}

func TestRun_SingleEligibleNeedsNoComparison(t *testing.T) {
	s := newStore(t, "A")
	cmp := &scripted{}
	res, err := fvp.New(s).Run(context.Background(), "", cmp)
	require.NoError(t, err)
	assert.Empty(t, cmp.asked)
	assert.Equal(t, "A", res.Benchmark.ID)
	assert.True(t, get(t, s, "A").Marked)
}

func TestBegin_PreviousBenchmarkBeforeCurrent(t *testing.T) {
	s := newStore(t, "P", "B", "C", "D")
	p := get(t, s, "P")
	p.Marked, p.Completed = true, true
	get(t, s, "C").Mark()

	w, err := fvp.Begin(s, "")
	require.NoError(t, err)
	c, ok := w.Pending()
	require.True(t, ok)
	assert.Equal(t, "C", c.Benchmark.ID)
	assert.Equal(t, "D", c.Candidate.ID)
}

func TestBegin_PreviousBenchmarkAfterCurrent(t *testing.T) {
	s := newStore(t, "A", "B", "P", "C")
	get(t, s, "A").Mark()
	p := get(t, s, "P")
	p.Marked, p.Completed = true, true

	w, err := fvp.Begin(s, "")
	require.NoError(t, err)
	c, ok := w.Pending()
	require.True(t, ok)
	assert.Equal(t, "A", c.Benchmark.ID)
	assert.Equal(t, "C", c.Candidate.ID)
}

func TestBegin_PreviousBenchmarkFallsBackToCurrent(t *testing.T) {
	s := newStore(t, "A", "B", "P")
	get(t, s, "A").Mark()
	p := get(t, s, "P")
	p.Marked, p.Completed = true, true

	w, err := fvp.Begin(s, "")
	require.NoError(t, err)
	c, ok := w.Pending()
	require.True(t, ok)
	assert.Equal(t, "B", c.Candidate.ID)
}

func TestBegin_Resume(t *testing.T) {
	s := newStore(t, "A", "B", "C", "D")
	get(t, s, "A").Mark()

	w, err := fvp.Begin(s, "B")
	require.NoError(t, err)
	c, ok := w.Pending()
	require.True(t, ok)
	assert.Equal(t, "C", c.Candidate.ID)

	w, err = fvp.Begin(s, "gone")
	require.NoError(t, err)
	c, _ = w.Pending()
	assert.Equal(t, "B", c.Candidate.ID, "stale resume point starts fresh")
}

func TestWalk_Stepper(t *testing.T) {
	s := newStore(t, "A", "B", "C")
	w, err := fvp.Begin(s, "")
	require.NoError(t, err)

	c, ok := w.Pending()
	require.True(t, ok)
	assert.Equal(t, 1, c.Step)
	require.NoError(t, w.Decide(fvp.ChooseCandidate))

	c, ok = w.Pending()
	require.True(t, ok)
	assert.Equal(t, 2, c.Step)
	assert.Equal(t, "B", c.Benchmark.ID)
	require.NoError(t, w.Decide(fvp.ChooseBenchmark))

	assert.True(t, w.Done())
	assert.Error(t, w.Decide(fvp.ChooseBenchmark), "nothing pending")
}

func TestWalk_SkipsIneligible(t *testing.T) {
	s := newStore(t, "A", "B", "C", "D")
	get(t, s, "B").Completed = true
	get(t, s, "C").Defer()

	cmp := &scripted{}
	_, err := fvp.New(s).Run(context.Background(), "", cmp)
	require.NoError(t, err)
	assert.Equal(t, []string{"A/D"}, cmp.asked)
}

func TestRun_BoundedComparisons(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	choices := []fvp.Choice{fvp.ChooseBenchmark, fvp.ChooseCandidate, fvp.DeferCandidate, fvp.DeferBenchmark}

	for round := 0; round < 200; round++ {
		n := 1 + rng.IntN(12)
		texts := make([]string, n)
		for i := range texts {
			texts[i] = fmt.Sprintf("t%02d", i)
		}
		s := newStore(t, texts...)
		for _, tk := range s.Tasks() {
			switch rng.IntN(5) {
			case 0:
				tk.Completed = true
			case 1:
				tk.Defer()
			}
		}

		tasks := s.Tasks()
		bench := fvp.CurrentBenchmark(tasks)
		if bench == nil {
			bench = fvp.NextCandidate(tasks, "")
		}
		limit := 0
		if bench != nil {
			for _, tk := range tasks[task.Index(tasks, bench.ID)+1:] {
				if tk.Eligible() {
					limit++
				}
			}
		}

		res, err := fvp.New(s).Run(context.Background(), "", fvp.ComparatorFunc(func(context.Context, fvp.Comparison) (fvp.Choice, error) {
			return choices[rng.IntN(len(choices))], nil
		}))
		require.NoError(t, err)
		assert.LessOrEqual(t, res.Comparisons, limit, "round %d", round)

		open := 0
		for _, tk := range s.Tasks() {
			assert.False(t, tk.Marked && tk.Deferred, "round %d", round)
			if tk.Benchmark() {
				open++
			}
		}
		if bench == nil {
			assert.Zero(t, open)
		} else {
			assert.Equal(t, 1, open, "round %d: exactly one benchmark", round)
		}
	}
}

func TestChoiceString(t *testing.T) {
	assert.Equal(t, "candidate", fvp.ChooseCandidate.String())
	assert.Equal(t, "unknown", fvp.Choice(42).String())
}
