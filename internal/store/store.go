// Package store holds the ordered task list of one mode and persists it.
//
// The in-memory list is authoritative. Every mutation writes the whole list
// through the Persister; a failed write is reported as PERSISTENCE_FAILED but
// the mutation stays applied, and the next successful write catches up.
package store

import (
	"io"
	"log/slog"
	"time"

	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
)

// Store is the ordered task list for one mode.
type Store struct {
	tasks     []*task.Task
	persister Persister
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
	dirty     bool
}

// Option configures a Store.
type Option func(*Store)

// WithNow sets the clock used for id generation and load-time repairs.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs replaces ULID generation, mainly for tests.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns an empty store backed by p.
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		now:       time.Now,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newID == nil {
		s.newID = func() string { return task.NewID(s.now()) }
	}
	return s
}

// Load replaces the in-memory list with the persisted one.
// Older records are upgraded and invariant violations repaired; repairs are
// written back.
func (s *Store) Load() error {
	data, err := s.persister.Load()
	if err != nil {
		return clierr.Wrap(clierr.PersistenceFailed, err, "loading tasks")
	}

	tasks, err := task.Decode(data, s.newID)
	if err != nil {
		return err
	}

	now := s.now()
	repairs := task.Normalize(tasks, func(t *task.Task) { t.StopAt(now) })
	repairs += dedupeIDs(tasks, s.newID)

	s.tasks = tasks
	if repairs > 0 {
		s.logger.Warn("repaired stored tasks", "repairs", repairs)
		return s.Save()
	}
	return nil
}

// Save writes the list through the persister.
func (s *Store) Save() error {
	data, err := task.Encode(s.tasks)
	if err != nil {
		return clierr.Wrap(clierr.InternalError, err, "encoding tasks")
	}
	if err := s.persister.Save(data); err != nil {
		s.dirty = true
		s.logger.Error("saving tasks failed", "error", err, "tasks", len(s.tasks))
		return clierr.Wrap(clierr.PersistenceFailed, err, "saving tasks").
			WithDetails(map[string]any{"tasks": len(s.tasks)})
	}
	if s.dirty {
		s.logger.Info("store write recovered", "tasks", len(s.tasks))
	}
	s.dirty = false
	return nil
}

// Dirty reports whether the last write failed.
func (s *Store) Dirty() bool { return s.dirty }

// Tasks returns the list in traversal order. The slice is a copy; the tasks
// are shared.
func (s *Store) Tasks() []*task.Task {
	out := make([]*task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int { return len(s.tasks) }

// Find returns the task with id.
func (s *Store) Find(id string) (*task.Task, bool) {
	i := task.Index(s.tasks, id)
	if i < 0 {
		return nil, false
	}
	return s.tasks[i], true
}

// Get is Find returning a TASK_NOT_FOUND error for unknown ids.
func (s *Store) Get(id string) (*task.Task, error) {
	t, ok := s.Find(id)
	if !ok {
		return nil, task.NotFound(id)
	}
	return t, nil
}

// Running returns the task whose timer is running, if any.
func (s *Store) Running() *task.Task {
	for _, t := range s.tasks {
		if t.Running() {
			return t
		}
	}
	return nil
}

// Add appends a new task. On a persistence failure the task is still added and
// returned together with the error.
func (s *Store) Add(text string) (*task.Task, error) {
	text, err := task.ValidateText(text)
	if err != nil {
		return nil, err
	}
	t := task.New(s.newID(), text)
	s.tasks = append(s.tasks, t)
	return t, s.Save()
}

// Append adds an existing record at the end, regenerating its id on collision.
func (s *Store) Append(t *task.Task) error {
	if t.ID == "" || task.Index(s.tasks, t.ID) >= 0 {
		t.ID = s.newID()
	}
	s.tasks = append(s.tasks, t)
	return s.Save()
}

// Remove deletes the task with id. Unknown ids are a no-op.
func (s *Store) Remove(id string) error {
	i := task.Index(s.tasks, id)
	if i < 0 {
		return nil
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return s.Save()
}

// Merge appends records, regenerating missing or colliding ids.
func (s *Store) Merge(records []*task.Task) error {
	seen := make(map[string]bool, len(s.tasks)+len(records))
	for _, t := range s.tasks {
		seen[t.ID] = true
	}
	for _, r := range records {
		for r.ID == "" || seen[r.ID] {
			r.ID = s.newID()
		}
		seen[r.ID] = true
		s.tasks = append(s.tasks, r)
	}
	s.normalize()
	return s.Save()
}

// Replace swaps the whole list for records.
func (s *Store) Replace(records []*task.Task) error {
	tasks := make([]*task.Task, len(records))
	copy(tasks, records)
	dedupeIDs(tasks, s.newID)
	s.tasks = tasks
	s.normalize()
	return s.Save()
}

// Move shifts the task with id by delta positions, clamped to the list bounds.
// It returns the new position.
func (s *Store) Move(id string, delta int) (int, error) {
	i := task.Index(s.tasks, id)
	if i < 0 {
		return -1, task.NotFound(id)
	}
	j := max(0, min(len(s.tasks)-1, i+delta))
	if j == i {
		return i, nil
	}
	t := s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.tasks = append(s.tasks[:j], append([]*task.Task{t}, s.tasks[j:]...)...)
	return j, s.Save()
}

// ClearCompleted removes all completed tasks and returns how many were removed.
func (s *Store) ClearCompleted() (int, error) {
	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(s.tasks) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	s.tasks = kept
	return removed, s.Save()
}

// Clear removes every task.
func (s *Store) Clear() (int, error) {
	removed := len(s.tasks)
	s.tasks = nil
	return removed, s.Save()
}

func (s *Store) normalize() {
	now := s.now()
	if n := task.Normalize(s.tasks, func(t *task.Task) { t.StopAt(now) }); n > 0 {
		s.logger.Warn("repaired imported tasks", "repairs", n)
	}
}

// dedupeIDs regenerates ids that repeat an earlier one in tasks.
func dedupeIDs(tasks []*task.Task, newID func() string) int {
	seen := make(map[string]bool, len(tasks))
	n := 0
	for _, t := range tasks {
		for t.ID == "" || seen[t.ID] {
			t.ID = newID()
			n++
		}
		seen[t.ID] = true
	}
	return n
}
