// Package timer implements per-task start/stop bookkeeping with at most one
// running task per store.
package timer

import (
	"time"

	"github.com/twiced-technology-gmbh/fvp/internal/store"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
)

// DefaultDebounce is the window in which a second Toggle is ignored.
const DefaultDebounce = 100 * time.Millisecond

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// Result describes what a Toggle did.
type Result int

const (
	Ignored Result = iota
	Started
	Stopped
)

func (r Result) String() string {
	switch r {
	case Started:
		return "started"
	case Stopped:
		return "stopped"
	default:
		return "ignored"
	}
}

// Engine starts and stops task timers in a store.
type Engine struct {
	store      *store.Store
	clock      Clock
	debounce   time.Duration
	lastToggle time.Time
}

// New returns an engine over s. A zero debounce disables the toggle guard.
func New(s *store.Store, clock Clock, debounce time.Duration) *Engine {
	if clock == nil {
		clock = RealClock{}
	}
	return &Engine{store: s, clock: clock, debounce: debounce}
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time { return e.clock.Now() }

// Start runs the timer of id, stopping any other running task first.
// Starting a running task is a no-op.
func (e *Engine) Start(id string) error {
	t, err := e.store.Get(id)
	if err != nil {
		return err
	}
	if err := task.ValidateNotCompleted(t); err != nil {
		return err
	}
	if t.Running() {
		return nil
	}

	now := e.clock.Now()
	if other := e.store.Running(); other != nil {
		other.StopAt(now)
	}
	t.StartAt(now)
	return e.store.Save()
}

// Stop flushes the running interval of id. Stopping an idle task is a no-op.
func (e *Engine) Stop(id string) error {
	t, err := e.store.Get(id)
	if err != nil {
		return err
	}
	if !t.StopAt(e.clock.Now()) {
		return nil
	}
	return e.store.Save()
}

// StopRunning stops whichever task is running and returns it, or nil.
func (e *Engine) StopRunning() (*task.Task, error) {
	t := e.store.Running()
	if t == nil {
		return nil, nil
	}
	t.StopAt(e.clock.Now())
	return t, e.store.Save()
}

// Toggle starts an idle task or stops a running one. A toggle arriving within
// the debounce window of the previous one is ignored.
func (e *Engine) Toggle(id string) (Result, error) {
	t, err := e.store.Get(id)
	if err != nil {
		return Ignored, err
	}

	now := e.clock.Now()
	if e.debounce > 0 && !e.lastToggle.IsZero() && now.Sub(e.lastToggle) < e.debounce {
		return Ignored, nil
	}

	if t.Running() {
		e.lastToggle = now
		return Stopped, e.Stop(id)
	}
	if err := task.ValidateNotCompleted(t); err != nil {
		return Ignored, err
	}
	e.lastToggle = now
	return Started, e.Start(id)
}

// Displayed returns cumulative plus live seconds for id.
func (e *Engine) Displayed(id string) (float64, error) {
	t, err := e.store.Get(id)
	if err != nil {
		return 0, err
	}
	return e.DisplayedTask(t), nil
}

// DisplayedTask is Displayed for a task already in hand.
func (e *Engine) DisplayedTask(t *task.Task) float64 {
	return t.DisplayedAt(e.clock.Now())
}

// SetCumulative overrides the tracked time of id with a manual entry. The
// running state is kept; a running interval restarts now so the displayed
// time equals the entry.
func (e *Engine) SetCumulative(id, text string) error {
	t, err := e.store.Get(id)
	if err != nil {
		return err
	}
	seconds, err := Parse(text)
	if err != nil {
		return err
	}

	t.CumulativeSeconds = seconds
	if t.Running() {
		now := e.clock.Now()
		t.RunningSince = &now
	}
	return e.store.Save()
}
