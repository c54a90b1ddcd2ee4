package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/fvp/internal/app"
	"github.com/twiced-technology-gmbh/fvp/internal/board"
	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/config"
	"github.com/twiced-technology-gmbh/fvp/internal/fvp"
	"github.com/twiced-technology-gmbh/fvp/internal/lifecycle"
	"github.com/twiced-technology-gmbh/fvp/internal/store"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
	"github.com/twiced-technology-gmbh/fvp/internal/timer"
	"github.com/twiced-technology-gmbh/fvp/internal/timer/timertest"
)

var t0 = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type recorder struct {
	renders int
	focus   string
	notes   []string
}

func (r *recorder) Render(_ []*task.Task, focus string) {
	r.renders++
	r.focus = focus
}

func (r *recorder) Notify(msg string) { r.notes = append(r.notes, msg) }

type fixture struct {
	s     *app.Session
	cfg   *config.Config
	mem   *store.Memory
	clock *timertest.Clock
	rec   *recorder
}

func setup(t *testing.T, texts ...string) *fixture {
	t.Helper()
	cfg := config.NewDefault()
	cfg.SetDir(t.TempDir())
	cfg.FVP.AutoStart = false
	require.NoError(t, cfg.Save())

	f := &fixture{cfg: cfg, mem: &store.Memory{}, clock: timertest.NewClock(t0), rec: &recorder{}}
	s, err := app.Open(cfg, "work",
		app.WithPersister(f.mem),
		app.WithClock(f.clock),
		app.WithRenderer(f.rec),
		app.WithNotifier(f.rec),
	)
	require.NoError(t, err)
	f.s = s

	for _, text := range texts {
		_, err := s.Add(text)
		require.NoError(t, err)
	}
	return f
}

func (f *fixture) ids() []string {
	var out []string
	for _, tk := range f.s.Tasks() {
		out = append(out, tk.ID)
	}
	return out
}

func (f *fixture) actions(t *testing.T) []string {
	t.Helper()
	entries, err := board.ReadLog(f.cfg.Dir(), 0)
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		out = append(out, e.Action)
	}
	return out
}

func script(choices ...fvp.Choice) fvp.Comparator {
	i := 0
	return fvp.ComparatorFunc(func(context.Context, fvp.Comparison) (fvp.Choice, error) {
		if i >= len(choices) {
			return fvp.Abort, nil
		}
		c := choices[i]
		i++
		return c, nil
	})
}

func TestOpenUnknownMode(t *testing.T) {
	_, err := app.Open(config.NewDefault(), "holiday", app.WithPersister(&store.Memory{}))
	assert.Equal(t, clierr.UnknownMode, clierr.CodeOf(err))
}

func TestAddRendersAndLogs(t *testing.T) {
	f := setup(t)
	tk, err := f.s.Add("write report")
	require.NoError(t, err)

	assert.Equal(t, tk.ID, f.rec.focus)
	assert.Equal(t, tk.ID, f.s.Focus())
	assert.Equal(t, []string{"add"}, f.actions(t))

	_, err = f.s.Add("  ")
	assert.Equal(t, clierr.EmptyText, clierr.CodeOf(err))
	assert.Len(t, f.s.Tasks(), 1)
}

func TestPersistenceFailureNotifies(t *testing.T) {
	f := setup(t)
	f.mem.Err = errors.New("disk full")

	tk, err := f.s.Add("a")
	assert.True(t, clierr.IsPersistence(err))
	require.NotNil(t, tk)
	assert.Len(t, f.s.Tasks(), 1)
	require.Len(t, f.rec.notes, 1)
	assert.Contains(t, f.rec.notes[0], "changes not saved")
}

func TestDeleteFocus(t *testing.T) {
	f := setup(t, "a", "b", "c")
	ids := f.ids()

	focus, err := f.s.Delete(ids[1])
	require.NoError(t, err)
	assert.Equal(t, ids[0], focus)
	assert.Equal(t, ids[0], f.rec.focus)

	focus, err = f.s.Delete(ids[0])
	require.NoError(t, err)
	assert.Equal(t, ids[2], focus)

	focus, err = f.s.Delete(ids[2])
	require.NoError(t, err)
	assert.Empty(t, focus)

	_, err = f.s.Delete("gone")
	assert.True(t, clierr.IsNotFound(err))
}

func TestTimerOperations(t *testing.T) {
	f := setup(t, "a", "b")
	ids := f.ids()

	require.NoError(t, f.s.Start(ids[0]))
	f.clock.Advance(time.Minute)
	require.NoError(t, f.s.Start(ids[1]))

	a, _ := f.s.Find(ids[0])
	assert.False(t, a.Running())
	assert.InDelta(t, 60, a.CumulativeSeconds, 1e-9)

	f.clock.Advance(30 * time.Second)
	b, _ := f.s.Find(ids[1])
	assert.InDelta(t, 30, f.s.Displayed(b), 1e-9)

	stopped, err := f.s.StopRunning()
	require.NoError(t, err)
	assert.Equal(t, ids[1], stopped.ID)

	stopped, err = f.s.StopRunning()
	require.NoError(t, err)
	assert.Nil(t, stopped)

	r, err := f.s.Toggle(ids[0])
	require.NoError(t, err)
	assert.Equal(t, timer.Started, r)

	require.NoError(t, f.s.EditTime(ids[1], "1:00:00"))
	assert.InDelta(t, 3600, b.CumulativeSeconds, 1e-9)
	assert.Equal(t, clierr.InvalidTime, clierr.CodeOf(f.s.EditTime(ids[1], "1:75")))
}

func TestCompleteAndCancel(t *testing.T) {
	f := setup(t, "a")
	id := f.ids()[0]
	require.NoError(t, f.s.Start(id))

	cancel := lifecycle.ReflectorFunc(func(context.Context, *task.Task) (lifecycle.Reflection, error) {
		return lifecycle.Reflection{Outcome: lifecycle.OutcomeCancel}, nil
	})
	res, err := f.s.Complete(context.Background(), id, cancel)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.OutcomeCancel, res.Outcome)
	tk, _ := f.s.Find(id)
	assert.False(t, tk.Completed)
	assert.True(t, tk.Running(), "cancel restores the running timer")
	assert.Empty(t, tk.Comments)

	c, err := f.s.BeginComplete(id)
	require.NoError(t, err)
	assert.True(t, c.Task().Completed)
	res, err = c.Finish(lifecycle.OutcomeShelve, "half done")
	require.NoError(t, err)
	require.NotNil(t, res.Shelved)
	assert.Len(t, f.s.Tasks(), 2)
	assert.Contains(t, tk.Comments, "Reflection: half done")

	assert.Equal(t, []string{"add", "start", "complete", "shelve"}, f.actions(t))
}

func TestToggleMarkAndDefer(t *testing.T) {
	f := setup(t, "a")
	id := f.ids()[0]

	deferred, err := f.s.ToggleDeferred(id)
	require.NoError(t, err)
	assert.True(t, deferred)

	marked, err := f.s.ToggleMark(id)
	require.NoError(t, err)
	assert.True(t, marked)
	tk, _ := f.s.Find(id)
	assert.False(t, tk.Deferred)
}

func TestMoveAndReopen(t *testing.T) {
	f := setup(t, "a", "b")
	ids := f.ids()

	pos, err := f.s.Move(ids[1], -1)
	require.NoError(t, err)
	assert.Zero(t, pos)
	assert.Equal(t, []string{ids[1], ids[0]}, f.ids())

	_, err = f.s.Reopen(ids[0])
	assert.Equal(t, clierr.NotCompleted, clierr.CodeOf(err))
}

func TestClear(t *testing.T) {
	f := setup(t, "a", "b")
	ids := f.ids()
	c, err := f.s.BeginComplete(ids[0])
	require.NoError(t, err)
	_, err = c.Finish(lifecycle.OutcomeComplete, "")
	require.NoError(t, err)

	no := app.ConfirmerFunc(func(context.Context, string) (bool, error) { return false, nil })
	yes := app.ConfirmerFunc(func(context.Context, string) (bool, error) { return true, nil })

	n, err := f.s.ClearCompleted(context.Background(), no)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, f.s.Tasks(), 2)

	_, err = f.s.ClearCompleted(context.Background(), nil)
	assert.Equal(t, clierr.ConfirmationReq, clierr.CodeOf(err))

	n, err = f.s.ClearCompleted(context.Background(), yes)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	interrupted := app.ConfirmerFunc(func(ctx context.Context, _ string) (bool, error) { return false, ctx.Err() })
	n, err = f.s.ClearAll(ctx, interrupted)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.s.ClearAll(context.Background(), yes)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, f.s.Tasks())
}

func TestPreselect(t *testing.T) {
	f := setup(t, "A", "B", "C")
	ids := f.ids()

	res, err := f.s.Preselect(context.Background(), "", script(fvp.ChooseCandidate, fvp.ChooseBenchmark))
	require.NoError(t, err)
	assert.Equal(t, ids[1], res.Benchmark.ID)
	assert.Equal(t, 2, res.Comparisons)
	assert.False(t, res.Benchmark.Running(), "auto start disabled")
	assert.Equal(t, ids[1], f.rec.focus)

	entries, err := board.ReadLog(f.cfg.Dir(), 0)
	require.NoError(t, err)
	var walkIDs []string
	for _, e := range entries {
		if e.Action == "compare" || e.Action == "preselect" {
			walkIDs = append(walkIDs, e.WalkID)
		}
	}
	require.Len(t, walkIDs, 3)
	assert.Equal(t, res.WalkID, walkIDs[0])
	assert.Equal(t, walkIDs[0], walkIDs[2])
}

func TestPreselectAutoStart(t *testing.T) {
	f := setup(t, "A", "B")
	f.cfg.FVP.AutoStart = true

	res, err := f.s.Preselect(context.Background(), "", script(fvp.DeferBenchmark))
	require.NoError(t, err)
	assert.True(t, res.Benchmark.Running())
	assert.Equal(t, "B", res.Benchmark.Text)
}

func TestPreselectCanceledDoesNotAutoStart(t *testing.T) {
	f := setup(t, "A", "B", "C")
	f.cfg.FVP.AutoStart = true

	ctx, cancel := context.WithCancel(context.Background())
	cancelling := fvp.ComparatorFunc(func(ctx context.Context, _ fvp.Comparison) (fvp.Choice, error) {
		cancel()
		return fvp.Abort, ctx.Err()
	})

	res, err := f.s.Preselect(ctx, "", cancelling)
	require.NoError(t, err)
	assert.True(t, res.Aborted)
	assert.Equal(t, "A", res.Benchmark.Text)
	assert.False(t, res.Benchmark.Running())

	res, err = f.s.Preselect(context.Background(), "", script(fvp.ChooseCandidate))
	require.NoError(t, err)
	assert.True(t, res.Aborted, "script ran out of answers")
	assert.Equal(t, "B", res.Benchmark.Text)
	assert.False(t, res.Benchmark.Running())
}

func TestPreselectNothingEligible(t *testing.T) {
	f := setup(t)
	_, err := f.s.Preselect(context.Background(), "", script())
	assert.Equal(t, clierr.NothingToPreselect, clierr.CodeOf(err))

	_, err = f.s.BeginPreselect("")
	assert.Equal(t, clierr.NothingToPreselect, clierr.CodeOf(err))

	_, err = f.s.StartBenchmark()
	assert.Equal(t, clierr.NothingToPreselect, clierr.CodeOf(err))
}

func TestStepwiseWalk(t *testing.T) {
	f := setup(t, "A", "B", "C")
	f.cfg.FVP.AutoStart = true
	ids := f.ids()

	w, err := f.s.BeginPreselect("")
	require.NoError(t, err)
	c, ok := w.Pending()
	require.True(t, ok)
	assert.Equal(t, ids[0], c.Benchmark.ID)
	assert.Equal(t, ids[1], c.Candidate.ID)
	assert.Equal(t, w.ID(), c.WalkID)

	done, err := w.Decide(fvp.DeferCandidate)
	require.NoError(t, err)
	assert.False(t, done)

	done, err = w.Decide(fvp.ChooseBenchmark)
	require.NoError(t, err)
	assert.True(t, done)
	assert.True(t, w.Benchmark().Running())
	assert.Equal(t, ids[0], w.Benchmark().ID)

	require.NoError(t, w.Finish(), "finishing twice is harmless")
	_, err = w.Decide(fvp.ChooseBenchmark)
	assert.Equal(t, clierr.NothingToPreselect, clierr.CodeOf(err))
}

func TestWalkAbort(t *testing.T) {
	f := setup(t, "A", "B")
	f.cfg.FVP.AutoStart = true
	w, err := f.s.BeginPreselect("")
	require.NoError(t, err)
	require.NoError(t, w.Abort())
	assert.True(t, w.Result().Aborted)
	assert.Equal(t, "A", w.Benchmark().Text)
	assert.False(t, w.Benchmark().Running(), "aborted walk starts nothing")
}

func TestStartBenchmark(t *testing.T) {
	f := setup(t, "A", "B")
	ids := f.ids()
	_, err := f.s.ToggleMark(ids[1])
	require.NoError(t, err)

	b, err := f.s.StartBenchmark()
	require.NoError(t, err)
	assert.Equal(t, ids[1], b.ID)
	assert.True(t, b.Running())
}

func TestImportExport(t *testing.T) {
	f := setup(t, "a")

	n, err := f.s.Import([]byte(`[{"text":"x"},{"text":"y","completed":true}]`), config.ImportAppend)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, f.s.Tasks(), 3)

	data, err := f.s.Export()
	require.NoError(t, err)

	n, err = f.s.Import(data[:len(data)/2], "")
	assert.Equal(t, clierr.InvalidImport, clierr.CodeOf(err))
	assert.Zero(t, n)
	assert.Len(t, f.s.Tasks(), 3, "failed import changes nothing")

	for _, payload := range []string{"", "   ", "null", `[{"text":""}]`} {
		n, err = f.s.Import([]byte(payload), config.ImportReplace)
		assert.Equal(t, clierr.InvalidImport, clierr.CodeOf(err), "payload %q", payload)
		assert.Zero(t, n)
		assert.Len(t, f.s.Tasks(), 3, "payload %q keeps the list", payload)
	}

	n, err = f.s.Import([]byte(`[{"text":"only"}]`), "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, f.s.Tasks(), 1, "default policy replaces")

	_, err = f.s.Import([]byte(`[]`), "merge")
	assert.Equal(t, clierr.InvalidInput, clierr.CodeOf(err))

	assert.Equal(t, "2026-10-17_FVP_tasks_work.json", f.s.ExportFilename())
}

func TestShowCompletedAndVisible(t *testing.T) {
	f := setup(t, "a", "b")
	ids := f.ids()
	c, err := f.s.BeginComplete(ids[0])
	require.NoError(t, err)
	_, err = c.Finish(lifecycle.OutcomeComplete, "")
	require.NoError(t, err)

	f.s.ToggleShowCompleted()
	require.False(t, f.s.ShowCompleted())
	rows := f.s.Visible(board.FilterOptions{})
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Position)

	assert.True(t, f.s.ToggleShowCompleted())
	assert.Len(t, f.s.Visible(board.FilterOptions{}), 2)

	p := f.s.Progress()
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, 1, p.Completed)
}

func TestSwitchMode(t *testing.T) {
	f := setup(t, "work task")
	other := &store.Memory{}

	next, err := f.s.SwitchMode("personal", app.WithPersister(other))
	require.NoError(t, err)
	assert.Equal(t, "personal", next.Mode())
	assert.Empty(t, next.Tasks())
	assert.Len(t, f.s.Tasks(), 1, "modes never interact")

	loaded, err := config.Load(f.cfg.Dir())
	require.NoError(t, err)
	assert.Equal(t, "personal", loaded.Mode)

	_, err = f.s.SwitchMode("holiday")
	assert.Equal(t, clierr.UnknownMode, clierr.CodeOf(err))
}

func TestReload(t *testing.T) {
	f := setup(t, "a")
	f.mem.Data = []byte(`[{"id":"ext","text":"from another process"}]`)

	require.NoError(t, f.s.Reload())
	require.Len(t, f.s.Tasks(), 1)
	assert.Equal(t, "ext", f.s.Tasks()[0].ID)
	assert.Empty(t, f.s.Focus())
}
