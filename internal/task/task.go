// Package task defines the task record, its persisted form and its schema upgrades.
package task

import (
	"time"

	"github.com/twiced-technology-gmbh/fvp/internal/date"
)

// Task is a single entry of an FVP list.
type Task struct {
	ID                string     `json:"id"`
	Text              string     `json:"text"`
	Marked            bool       `json:"marked"`
	Completed         bool       `json:"completed"`
	Deferred          bool       `json:"deferred"`
	CumulativeSeconds float64    `json:"cumulativeSeconds"`
	RunningSince      *time.Time `json:"runningSince"`
	StartedAt         *time.Time `json:"startedAt"`
	FirstStartedAt    *time.Time `json:"firstStartedAt"`
	EndedAt           *time.Time `json:"endedAt"`
	Comments          string     `json:"comments,omitempty"`
	ParentID          *string    `json:"parentId"`
}

// New returns a task with default state.
func New(id, text string) *Task {
	return &Task{ID: id, Text: text}
}

// Running reports whether the task's timer is running.
func (t *Task) Running() bool {
	return t.RunningSince != nil
}

// Eligible reports whether the task can take part in preselection.
func (t *Task) Eligible() bool {
	return !t.Completed && !t.Deferred
}

// Benchmark reports whether the task is the marked, open top-priority task.
func (t *Task) Benchmark() bool {
	return t.Marked && !t.Completed
}

// ElapsedAt returns the live seconds of the running interval at now, or 0.
func (t *Task) ElapsedAt(now time.Time) float64 {
	if t.RunningSince == nil {
		return 0
	}
	d := now.Sub(*t.RunningSince).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// DisplayedAt returns cumulative plus live seconds without mutating the task.
func (t *Task) DisplayedAt(now time.Time) float64 {
	return t.CumulativeSeconds + t.ElapsedAt(now)
}

// StartAt begins a running interval. Returns false if already running.
func (t *Task) StartAt(now time.Time) bool {
	if t.RunningSince != nil {
		return false
	}
	t.RunningSince = &now
	t.StartedAt = &now
	if t.FirstStartedAt == nil {
		t.FirstStartedAt = &now
	}
	return true
}

// StopAt flushes the running interval into CumulativeSeconds.
// Returns false if the task was idle.
func (t *Task) StopAt(now time.Time) bool {
	if t.RunningSince == nil {
		return false
	}
	t.CumulativeSeconds += t.ElapsedAt(now)
	t.RunningSince = nil
	t.EndedAt = &now
	return true
}

// AppendComment adds a "[YYYY-MM-DD HH:MM:SS] note" line to the comments log.
func (t *Task) AppendComment(now time.Time, note string) {
	entry := "[" + date.Stamp(now) + "] " + note
	if t.Comments == "" {
		t.Comments = entry
		return
	}
	t.Comments += "\n" + entry
}

// Clone returns a deep copy, used to snapshot a task before a tentative change.
func (t *Task) Clone() *Task {
	c := *t
	c.RunningSince = cloneTime(t.RunningSince)
	c.StartedAt = cloneTime(t.StartedAt)
	c.FirstStartedAt = cloneTime(t.FirstStartedAt)
	c.EndedAt = cloneTime(t.EndedAt)
	if t.ParentID != nil {
		p := *t.ParentID
		c.ParentID = &p
	}
	return &c
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
