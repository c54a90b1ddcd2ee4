package board

import (
	"time"

	"github.com/twiced-technology-gmbh/fvp/internal/task"
)

// Row is a task prepared for rendering.
type Row struct {
	Position int        `json:"position"` // 1-based position in the full list
	Task     *task.Task `json:"task"`
	Seconds  float64    `json:"displayed_seconds"`
}

// Rows pairs each visible task with its list position and displayed time.
// Positions refer to the unfiltered list so "#N" references stay stable.
func Rows(all []*task.Task, opts FilterOptions, now time.Time) []Row {
	var rows []Row
	for i, t := range all {
		if !matchesFilter(t, opts) {
			continue
		}
		rows = append(rows, Row{Position: i + 1, Task: t, Seconds: t.DisplayedAt(now)})
	}
	return rows
}

// Progress is the aggregate overview of one mode.
type Progress struct {
	Mode           string  `json:"mode"`
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Open           int     `json:"open"`
	Deferred       int     `json:"deferred"`
	Percent        int     `json:"percent"`
	TrackedSeconds float64 `json:"tracked_seconds"`
	Benchmark      string  `json:"benchmark,omitempty"` // id of the marked open task
	Running        string  `json:"running,omitempty"`   // id of the running task
}

// Summary computes the progress of a task list at now.
func Summary(mode string, tasks []*task.Task, now time.Time) Progress {
	p := Progress{Mode: mode, Total: len(tasks)}
	for _, t := range tasks {
		switch {
		case t.Completed:
			p.Completed++
		case t.Deferred:
			p.Deferred++
			p.Open++
		default:
			p.Open++
		}
		p.TrackedSeconds += t.DisplayedAt(now)
		if t.Benchmark() {
			p.Benchmark = t.ID
		}
		if t.Running() {
			p.Running = t.ID
		}
	}
	if p.Total > 0 {
		p.Percent = p.Completed * 100 / p.Total
	}
	return p
}
