package task

import "time"

// Record-level transitions. They keep the per-task exclusivity rules
// (marked excludes completed and deferred) but know nothing about timers
// or other tasks in the list.

// Mark sets the marked flag. Marking un-defers the task.
func (t *Task) Mark() {
	t.Marked = true
	t.Deferred = false
}

// Unmark clears the marked flag.
func (t *Task) Unmark() {
	t.Marked = false
}

// Defer sets the deferred flag and drops any mark.
func (t *Task) Defer() {
	t.Deferred = true
	t.Marked = false
}

// Undefer clears the deferred flag.
func (t *Task) Undefer() {
	t.Deferred = false
}

// MarkCompleted sets completed and endedAt, clearing the mark.
func (t *Task) MarkCompleted(now time.Time) {
	t.Completed = true
	t.Marked = false
	t.EndedAt = &now
}

// Reopen clears completed and endedAt. Other timestamps are preserved.
func (t *Task) Reopen() {
	t.Completed = false
	t.EndedAt = nil
}

// Continuation returns a fresh copy of t for shelving: same text, zero time,
// linked back through ParentID.
func (t *Task) Continuation(id string, now time.Time) *Task {
	parent := t.ID
	c := New(id, t.Text)
	c.ParentID = &parent
	c.AppendComment(now, "Shelved")
	return c
}
