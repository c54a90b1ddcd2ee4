package app

import (
	"context"
	"fmt"

	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/config"
	"github.com/twiced-technology-gmbh/fvp/internal/date"
	"github.com/twiced-technology-gmbh/fvp/internal/lifecycle"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
	"github.com/twiced-technology-gmbh/fvp/internal/timer"
)

// Add appends a new task.
func (s *Session) Add(text string) (*task.Task, error) {
	t, err := s.store.Add(text)
	if t == nil {
		return nil, err
	}
	return t, s.after(err, "add", t.ID, t.Text)
}

// Delete removes id and focuses the neighbouring task.
func (s *Session) Delete(id string) (string, error) {
	t, ok := s.store.Find(id)
	if !ok {
		return "", task.NotFound(id)
	}
	focus, err := s.life.Delete(id)
	if err != nil && !clierr.IsPersistence(err) {
		return "", err
	}
	if err != nil {
		s.warn(err)
	}
	s.record("delete", id, t.Text, "")
	s.render(focus)
	return focus, err
}

// EditText renames id.
func (s *Session) EditText(id, text string) (*task.Task, error) {
	t, err := s.life.EditText(id, text)
	return t, s.after(err, "edit", id, "text")
}

// EditTime overrides the tracked time of id from an h:mm:ss or mm:ss entry.
func (s *Session) EditTime(id, text string) error {
	return s.after(s.timer.SetCumulative(id, text), "edit", id, "time "+text)
}

// Annotate appends a timestamped note to id.
func (s *Session) Annotate(id, note string) (*task.Task, error) {
	t, err := s.life.Annotate(id, note)
	return t, s.after(err, "note", id, note)
}

// Start runs the timer of id, stopping any other.
func (s *Session) Start(id string) error {
	return s.after(s.timer.Start(id), "start", id, "")
}

// Stop stops the timer of id.
func (s *Session) Stop(id string) error {
	return s.after(s.timer.Stop(id), "stop", id, "")
}

// StopRunning stops whichever timer is running and returns that task.
func (s *Session) StopRunning() (*task.Task, error) {
	t, err := s.timer.StopRunning()
	if t == nil {
		return nil, err
	}
	return t, s.after(err, "stop", t.ID, "")
}

// Toggle starts or stops the timer of id, subject to the debounce window.
func (s *Session) Toggle(id string) (timer.Result, error) {
	r, err := s.timer.Toggle(id)
	if r == timer.Ignored {
		return r, err
	}
	action := "start"
	if r == timer.Stopped {
		action = "stop"
	}
	return r, s.after(err, action, id, "toggle")
}

// Complete completes id, asking r for the reflection.
func (s *Session) Complete(ctx context.Context, id string, r lifecycle.Reflector) (lifecycle.Result, error) {
	res, err := s.life.Complete(ctx, id, r)
	return res, s.finishCompletion(res, err)
}

// Completion is a completion awaiting the user's reflection.
type Completion struct {
	s *Session
	c *lifecycle.Completion
}

// BeginComplete tentatively completes id until Finish is called.
func (s *Session) BeginComplete(id string) (*Completion, error) {
	c, err := s.life.BeginComplete(id)
	if err != nil {
		return nil, err
	}
	return &Completion{s: s, c: c}, nil
}

// Task returns the task being completed.
func (c *Completion) Task() *task.Task { return c.c.Task() }

// Finish resolves the completion with the user's answer.
func (c *Completion) Finish(outcome lifecycle.Outcome, text string) (lifecycle.Result, error) {
	res, err := c.c.Finish(outcome, text)
	return res, c.s.finishCompletion(res, err)
}

func (s *Session) finishCompletion(res lifecycle.Result, err error) error {
	if res.Task == nil {
		return err
	}
	if res.Outcome == lifecycle.OutcomeCancel {
		if err == nil {
			s.render(res.Task.ID)
		}
		return err
	}
	err = s.after(err, "complete", res.Task.ID, res.Outcome.String())
	if res.Shelved != nil {
		s.record("shelve", res.Shelved.ID, "from "+res.Task.ID, "")
	}
	return err
}

// Reopen returns a completed task to the open list.
func (s *Session) Reopen(id string) (*task.Task, error) {
	t, err := s.life.Reopen(id)
	return t, s.after(err, "reopen", id, "")
}

// Shelve appends a continuation of id.
func (s *Session) Shelve(id string) (*task.Task, error) {
	t, err := s.life.Shelve(id)
	if t == nil {
		return nil, err
	}
	return t, s.after(err, "shelve", t.ID, "from "+id)
}

// ToggleMark flips the mark of id.
func (s *Session) ToggleMark(id string) (bool, error) {
	marked, err := s.life.ToggleMark(id)
	return marked, s.after(err, "mark", id, fmt.Sprint(marked))
}

// ToggleDeferred flips the deferred flag of id.
func (s *Session) ToggleDeferred(id string) (bool, error) {
	deferred, err := s.life.ToggleDeferred(id)
	return deferred, s.after(err, "defer", id, fmt.Sprint(deferred))
}

// Move shifts id by delta positions and returns its new 0-based position.
func (s *Session) Move(id string, delta int) (int, error) {
	pos, err := s.store.Move(id, delta)
	return pos, s.after(err, "move", id, fmt.Sprintf("to %d", pos+1))
}

// ClearCompleted removes completed tasks after confirmation. A declined
// confirmation removes nothing and returns 0 without error.
func (s *Session) ClearCompleted(ctx context.Context, c Confirmer) (int, error) {
	n := 0
	for _, t := range s.store.Tasks() {
		if t.Completed {
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	ok, err := confirm(ctx, c, fmt.Sprintf("Remove %d completed task(s) from %s?", n, s.mode))
	if err != nil || !ok {
		return 0, err
	}
	removed, err := s.store.ClearCompleted()
	return removed, s.after(err, "clear", "", fmt.Sprintf("%d completed", removed))
}

// ClearAll removes every task after confirmation.
func (s *Session) ClearAll(ctx context.Context, c Confirmer) (int, error) {
	if s.store.Len() == 0 {
		return 0, nil
	}
	ok, err := confirm(ctx, c, fmt.Sprintf("Delete all %d task(s) in %s?", s.store.Len(), s.mode))
	if err != nil || !ok {
		return 0, err
	}
	removed, err := s.store.Clear()
	err = s.after(err, "clear", "", fmt.Sprintf("%d all", removed))
	s.render("")
	return removed, err
}

func confirm(ctx context.Context, c Confirmer, prompt string) (bool, error) {
	if c == nil {
		return false, clierr.New(clierr.ConfirmationReq, prompt+" (confirmation required)")
	}
	ok, err := c.Confirm(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// Import reads a task array. With policy "replace" the list is replaced,
// with "append" the tasks are added at the end. Returns the number imported.
func (s *Session) Import(data []byte, policy string) (int, error) {
	if policy == "" {
		policy = s.cfg.Import.Policy
	}
	if policy != config.ImportReplace && policy != config.ImportAppend {
		return 0, clierr.Newf(clierr.InvalidInput, "invalid import policy %q", policy).
			WithDetails(map[string]any{"allowed": []string{config.ImportReplace, config.ImportAppend}})
	}

	records, err := task.DecodeImport(data, func() string { return task.NewID(s.clock.Now()) })
	if err != nil {
		return 0, err
	}

	if policy == config.ImportAppend {
		err = s.store.Merge(records)
	} else {
		err = s.store.Replace(records)
	}
	return len(records), s.after(err, "import", "", fmt.Sprintf("%d tasks (%s)", len(records), policy))
}

// Export encodes the list in the persisted shape.
func (s *Session) Export() ([]byte, error) {
	return task.Encode(s.store.Tasks())
}

// ExportFilename returns the default export file name for today.
func (s *Session) ExportFilename() string {
	return task.ExportFilename(date.Of(s.clock.Now().Local()), s.mode)
}
