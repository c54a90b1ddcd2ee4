// Package lifecycle implements task state transitions: completion with
// reflection, reopening, shelving, marking, deferring and deletion.
package lifecycle

import (
	"context"
	"errors"

	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/store"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
	"github.com/twiced-technology-gmbh/fvp/internal/timer"
)

// Outcome is the answer of the reflection dialog.
type Outcome int

const (
	OutcomeCancel Outcome = iota
	OutcomeComplete
	OutcomeShelve
)

func (o Outcome) String() string {
	switch o {
	case OutcomeComplete:
		return "complete"
	case OutcomeShelve:
		return "shelve"
	default:
		return "cancel"
	}
}

// ParseOutcome maps a user answer to an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "complete", "c", "":
		return OutcomeComplete, nil
	case "shelve", "s":
		return OutcomeShelve, nil
	case "cancel", "x", "q":
		return OutcomeCancel, nil
	}
	return OutcomeCancel, clierr.Newf(clierr.InvalidInput, "invalid reflection outcome %q", s).
		WithDetails(map[string]any{"input": s, "allowed": []string{"complete", "shelve", "cancel"}})
}

// Reflection is what the user answered when completing a task.
type Reflection struct {
	Outcome Outcome
	Text    string
}

// Reflector asks the user how a completion should end. Returning an error
// (including ctx.Err()) cancels the completion.
type Reflector interface {
	Reflect(ctx context.Context, t *task.Task) (Reflection, error)
}

// ReflectorFunc adapts a function to Reflector.
type ReflectorFunc func(ctx context.Context, t *task.Task) (Reflection, error)

// Reflect calls f.
func (f ReflectorFunc) Reflect(ctx context.Context, t *task.Task) (Reflection, error) {
	return f(ctx, t)
}

// Manager applies lifecycle transitions to a store.
type Manager struct {
	store *store.Store
	timer *timer.Engine
}

// New returns a Manager.
func New(s *store.Store, e *timer.Engine) *Manager {
	return &Manager{store: s, timer: e}
}

// Result reports the effect of a finished completion.
type Result struct {
	Outcome Outcome
	Task    *task.Task
	Shelved *task.Task // continuation, when Outcome is OutcomeShelve
}

// Complete completes id after consulting r. On cancel the task is restored
// exactly and nothing is written.
func (m *Manager) Complete(ctx context.Context, id string, r Reflector) (Result, error) {
	c, err := m.BeginComplete(id)
	if err != nil {
		return Result{}, err
	}

	refl, err := r.Reflect(ctx, c.Task())
	if err != nil {
		_, _ = c.Finish(OutcomeCancel, "")
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Result{Outcome: OutcomeCancel, Task: c.Task()}, nil
		}
		return Result{Outcome: OutcomeCancel, Task: c.Task()}, err
	}
	return c.Finish(refl.Outcome, refl.Text)
}

// Completion is a completion awaiting the reflection answer. The task is
// tentatively completed in memory until Finish is called.
type Completion struct {
	m        *Manager
	task     *task.Task
	snapshot *task.Task
	done     bool
}

// BeginComplete stops the timer of id and tentatively completes it.
func (m *Manager) BeginComplete(id string) (*Completion, error) {
	t, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}
	if err := task.ValidateNotCompleted(t); err != nil {
		return nil, err
	}

	c := &Completion{m: m, task: t, snapshot: t.Clone()}
	now := m.timer.Now()
	t.StopAt(now)
	t.MarkCompleted(now)
	return c, nil
}

// Task returns the task being completed.
func (c *Completion) Task() *task.Task { return c.task }

// Finish resolves the completion.
func (c *Completion) Finish(outcome Outcome, text string) (Result, error) {
	if c.done {
		return Result{}, clierr.New(clierr.InvalidInput, "completion already finished")
	}
	c.done = true
	res := Result{Outcome: outcome, Task: c.task}

	if outcome == OutcomeCancel {
		*c.task = *c.snapshot
		return res, nil
	}

	now := c.m.timer.Now()
	if text != "" {
		c.task.AppendComment(now, "Reflection: "+text)
	}
	if outcome == OutcomeShelve {
		res.Shelved = c.task.Continuation("", now)
		return res, c.m.store.Append(res.Shelved)
	}
	return res, c.m.store.Save()
}

// Reopen returns a completed task to the open list.
func (m *Manager) Reopen(id string) (*task.Task, error) {
	t, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}
	if err := task.ValidateCompleted(t); err != nil {
		return nil, err
	}
	t.Reopen()
	return t, m.store.Save()
}

// Shelve appends a continuation of id with fresh time. The original is untouched.
func (m *Manager) Shelve(id string) (*task.Task, error) {
	t, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}
	c := t.Continuation("", m.timer.Now())
	return c, m.store.Append(c)
}

// ToggleMark flips the mark of id and reports the new state. Marking clears
// deferred; completed tasks cannot be marked.
func (m *Manager) ToggleMark(id string) (bool, error) {
	t, err := m.store.Get(id)
	if err != nil {
		return false, err
	}
	if t.Marked {
		t.Unmark()
	} else {
		if err := task.ValidateNotCompleted(t); err != nil {
			return false, err
		}
		t.Mark()
	}
	return t.Marked, m.store.Save()
}

// ToggleDeferred flips the deferred flag of id and reports the new state.
// Deferring clears the mark.
func (m *Manager) ToggleDeferred(id string) (bool, error) {
	t, err := m.store.Get(id)
	if err != nil {
		return false, err
	}
	if t.Deferred {
		t.Undefer()
	} else {
		t.Defer()
	}
	return t.Deferred, m.store.Save()
}

// Delete removes id and returns the id that should receive focus next:
// the previous task, else the new first task, else "".
func (m *Manager) Delete(id string) (string, error) {
	tasks := m.store.Tasks()
	i := task.Index(tasks, id)
	if i < 0 {
		return "", task.NotFound(id)
	}

	focus := ""
	switch {
	case i > 0:
		focus = tasks[i-1].ID
	case len(tasks) > 1:
		focus = tasks[1].ID
	}
	return focus, m.store.Remove(id)
}

// Annotate appends a timestamped note to the comments of id.
func (m *Manager) Annotate(id, note string) (*task.Task, error) {
	t, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}
	note, err = task.ValidateText(note)
	if err != nil {
		return nil, err
	}
	t.AppendComment(m.timer.Now(), note)
	return t, m.store.Save()
}

// EditText renames id.
func (m *Manager) EditText(id, text string) (*task.Task, error) {
	t, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}
	text, err = task.ValidateText(text)
	if err != nil {
		return nil, err
	}
	if text == t.Text {
		return t, nil
	}
	t.Text = text
	return t, m.store.Save()
}
