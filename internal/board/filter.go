// Package board provides list-level views over a mode's tasks: filtering,
// progress summaries and the activity log.
package board

import (
	"slices"
	"strings"

	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
)

// States accepted by FilterOptions.States.
const (
	StateOpen      = "open"
	StateCompleted = "completed"
	StateDeferred  = "deferred"
	StateMarked    = "marked"
	StateRunning   = "running"
)

var allStates = []string{StateOpen, StateCompleted, StateDeferred, StateMarked, StateRunning}

// FilterOptions defines which tasks to include.
type FilterOptions struct {
	ShowCompleted bool
	States        []string // any-of; empty means no state filter
	Search        string   // case-insensitive substring match across text and comments
}

// ValidateStates rejects unknown state names.
func ValidateStates(states []string) error {
	for _, s := range states {
		if !slices.Contains(allStates, s) {
			return clierr.Newf(clierr.InvalidInput, "invalid state %q", s).
				WithDetails(map[string]any{"state": s, "allowed": allStates})
		}
	}
	return nil
}

// Filter returns tasks matching all specified criteria, keeping list order.
func Filter(tasks []*task.Task, opts FilterOptions) []*task.Task {
	var result []*task.Task
	for _, t := range tasks {
		if matchesFilter(t, opts) {
			result = append(result, t)
		}
	}
	return result
}

func matchesFilter(t *task.Task, opts FilterOptions) bool {
	if t.Completed && !opts.ShowCompleted && !slices.Contains(opts.States, StateCompleted) {
		return false
	}
	if len(opts.States) > 0 && !slices.ContainsFunc(opts.States, func(s string) bool { return inState(t, s) }) {
		return false
	}
	if opts.Search != "" && !matchesSearch(t, opts.Search) {
		return false
	}
	return true
}

func inState(t *task.Task, state string) bool {
	switch state {
	case StateOpen:
		return !t.Completed
	case StateCompleted:
		return t.Completed
	case StateDeferred:
		return t.Deferred
	case StateMarked:
		return t.Marked
	case StateRunning:
		return t.Running()
	}
	return false
}

// matchesSearch performs case-insensitive substring matching across text and comments.
func matchesSearch(t *task.Task, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Text), q) ||
		strings.Contains(strings.ToLower(t.Comments), q)
}
