package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/fvp/internal/board"
	"github.com/twiced-technology-gmbh/fvp/internal/timer"
)

// TaskCompact renders rows in one-line-per-record compact format.
func TaskCompact(w io.Writer, rows []board.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, r := range rows {
		fmt.Fprintln(w, formatTaskLine(r))
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, r board.Row) {
	t := r.Task
	fmt.Fprintln(w, formatTaskLine(r))

	ts := "  id:" + t.ID
	if t.FirstStartedAt != nil {
		ts += " first:" + t.FirstStartedAt.Local().Format("2006-01-02")
	}
	if t.EndedAt != nil {
		ts += " ended:" + t.EndedAt.Local().Format("2006-01-02")
	}
	if t.ParentID != nil {
		ts += " parent:" + *t.ParentID
	}
	fmt.Fprintln(w, ts)

	if t.Comments != "" {
		for _, line := range strings.Split(t.Comments, "\n") {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

// ProgressCompact renders the progress summary in compact format.
func ProgressCompact(w io.Writer, p board.Progress) {
	line := p.Mode + ": " + strconv.Itoa(p.Completed) + "/" + strconv.Itoa(p.Total) +
		" done, " + timer.FormatHM(p.TrackedSeconds) + " tracked"
	var annotations []string
	if p.Deferred > 0 {
		annotations = append(annotations, strconv.Itoa(p.Deferred)+" deferred")
	}
	if p.Running != "" {
		annotations = append(annotations, "running "+p.Running)
	}
	if len(annotations) > 0 {
		line += " (" + strings.Join(annotations, ", ") + ")"
	}
	fmt.Fprintln(w, line)
}

// LogCompact renders activity log entries one per line.
func LogCompact(w io.Writer, entries []board.LogEntry) {
	for _, e := range entries {
		line := e.Timestamp.Local().Format("2006-01-02T15:04:05") + " " + e.Mode + " " + e.Action
		if e.TaskID != "" {
			line += " " + e.TaskID
		}
		if e.Detail != "" {
			line += " " + e.Detail
		}
		fmt.Fprintln(w, line)
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(r board.Row) string {
	t := r.Task
	return "#" + strconv.Itoa(r.Position) + " " + Marker(t) + " [" + State(t) + " " +
		timer.Format(r.Seconds) + "] " + t.Text
}
