// Package app composes the task store, timer, lifecycle and preselection
// engines of one mode into a Session, the single entry point used by the CLI
// and the TUI. Every state change is written to the activity log and handed
// to the Renderer.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twiced-technology-gmbh/fvp/internal/board"
	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/config"
	"github.com/twiced-technology-gmbh/fvp/internal/fvp"
	"github.com/twiced-technology-gmbh/fvp/internal/lifecycle"
	"github.com/twiced-technology-gmbh/fvp/internal/logging"
	"github.com/twiced-technology-gmbh/fvp/internal/store"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
	"github.com/twiced-technology-gmbh/fvp/internal/timer"
)

// Renderer receives the full list and the id to focus after every change.
type Renderer interface {
	Render(tasks []*task.Task, focus string)
}

// Notifier receives user-facing warnings, such as a failed save.
type Notifier interface {
	Notify(msg string)
}

// Confirmer asks a yes/no question before a destructive bulk operation.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Session is one mode's task list with its engines.
type Session struct {
	cfg  *config.Config
	mode string

	store *store.Store
	timer *timer.Engine
	life  *lifecycle.Manager
	fvp   *fvp.Engine

	clock     timer.Clock
	persister store.Persister
	base      *slog.Logger
	logger    *slog.Logger
	renderer  Renderer
	notifier  Notifier

	showCompleted bool
	focus         string
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the system clock.
func WithClock(c timer.Clock) Option { return func(s *Session) { s.clock = c } }

// WithPersister replaces the mode's store file.
func WithPersister(p store.Persister) Option { return func(s *Session) { s.persister = p } }

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option { return func(s *Session) { s.logger = l } }

// WithRenderer sets the render callback.
func WithRenderer(r Renderer) Option { return func(s *Session) { s.renderer = r } }

// WithNotifier sets the warning callback.
func WithNotifier(n Notifier) Option { return func(s *Session) { s.notifier = n } }

// Open loads the task list of mode.
func Open(cfg *config.Config, mode string, opts ...Option) (*Session, error) {
	if err := cfg.ValidateMode(mode); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:           cfg,
		mode:          mode,
		clock:         timer.RealClock{},
		logger:        logging.Discard(),
		showCompleted: cfg.TUI.ShowCompleted,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.persister == nil {
		s.persister = store.NewFilePersister(cfg.StorePath(mode), cfg.Storage.QuotaBytes)
	}
	s.base = s.logger
	s.logger = s.base.With("mode", mode)

	s.store = store.New(s.persister, store.WithNow(s.clock.Now), store.WithLogger(s.logger))
	s.timer = timer.New(s.store, s.clock, cfg.DebounceDuration())
	s.life = lifecycle.New(s.store, s.timer)
	s.fvp = fvp.New(s.store)

	if err := s.store.Load(); err != nil {
		if !clierr.IsPersistence(err) || s.store.Len() == 0 {
			return nil, err
		}
		s.warn(err)
	}
	return s, nil
}

// SwitchMode makes mode the active one in the config and opens it. The
// current session is left untouched; its timers keep running.
func (s *Session) SwitchMode(mode string, opts ...Option) (*Session, error) {
	if err := s.cfg.ValidateMode(mode); err != nil {
		return nil, err
	}
	base := []Option{WithClock(s.clock), WithLogger(s.base), WithRenderer(s.renderer), WithNotifier(s.notifier)}
	next, err := Open(s.cfg, mode, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	next.showCompleted = s.showCompleted

	if s.cfg.Mode != mode {
		s.cfg.Mode = mode
		if s.cfg.Dir() != "" {
			if err := s.cfg.Save(); err != nil {
				return nil, fmt.Errorf("saving config: %w", err)
			}
		}
	}
	next.record("mode", "", "switched from "+s.mode, "")
	next.render("")
	return next, nil
}

// Mode returns the session's mode name.
func (s *Session) Mode() string { return s.mode }

// Config returns the configuration the session was opened with.
func (s *Session) Config() *config.Config { return s.cfg }

// Now returns the session clock's current time.
func (s *Session) Now() time.Time { return s.clock.Now() }

// Tasks returns the list in traversal order.
func (s *Session) Tasks() []*task.Task { return s.store.Tasks() }

// Find returns the task with id.
func (s *Session) Find(id string) (*task.Task, bool) { return s.store.Find(id) }

// Resolve turns a user reference (id, id prefix or #position) into a task.
func (s *Session) Resolve(ref string) (*task.Task, error) {
	return task.Resolve(s.store.Tasks(), ref)
}

// ResolveAll resolves a comma-separated list of references.
func (s *Session) ResolveAll(refs string) ([]*task.Task, error) {
	return task.ResolveAll(s.store.Tasks(), refs)
}

// Dirty reports whether the last write to the store failed.
func (s *Session) Dirty() bool { return s.store.Dirty() }

// Focus returns the id the last change asked to focus.
func (s *Session) Focus() string { return s.focus }

// Displayed returns the displayed seconds of t now.
func (s *Session) Displayed(t *task.Task) float64 { return s.timer.DisplayedTask(t) }

// ShowCompleted reports whether completed tasks are visible.
func (s *Session) ShowCompleted() bool { return s.showCompleted }

// ToggleShowCompleted flips completed-task visibility and returns the new value.
func (s *Session) ToggleShowCompleted() bool {
	s.showCompleted = !s.showCompleted
	s.render(s.focus)
	return s.showCompleted
}

// Visible returns the rows to display with the given extra filters.
func (s *Session) Visible(opts board.FilterOptions) []board.Row {
	opts.ShowCompleted = opts.ShowCompleted || s.showCompleted
	return board.Rows(s.store.Tasks(), opts, s.clock.Now())
}

// Progress summarizes the list.
func (s *Session) Progress() board.Progress {
	return board.Summary(s.mode, s.store.Tasks(), s.clock.Now())
}

// Reload re-reads the store, used when another process changed it.
func (s *Session) Reload() error {
	if err := s.store.Load(); err != nil {
		return err
	}
	if _, ok := s.store.Find(s.focus); !ok {
		s.focus = ""
	}
	s.render(s.focus)
	return nil
}

// after finishes a mutation: it records the activity, reports persistence
// failures and renders. Validation and lookup errors pass through untouched.
func (s *Session) after(err error, action, id, detail string) error {
	if err != nil && !clierr.IsPersistence(err) {
		return err
	}
	if err != nil {
		s.warn(err)
	}
	s.record(action, id, detail, "")
	if id != "" {
		s.focus = id
	}
	s.render(s.focus)
	return err
}

func (s *Session) record(action, id, detail, walkID string) {
	s.logger.Debug("mutation", "action", action, "task", id, "walk", walkID)
	if s.cfg.Dir() == "" {
		return
	}
	board.LogMutation(s.cfg.Dir(), board.LogEntry{
		Timestamp: s.clock.Now(),
		Mode:      s.mode,
		Action:    action,
		TaskID:    id,
		Detail:    detail,
		WalkID:    walkID,
	})
}

func (s *Session) render(focus string) {
	s.focus = focus
	if s.renderer != nil {
		s.renderer.Render(s.store.Tasks(), focus)
	}
}

func (s *Session) warn(err error) {
	if s.notifier != nil {
		s.notifier.Notify("changes not saved: " + err.Error())
	}
}
