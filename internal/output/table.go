package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/twiced-technology-gmbh/fvp/internal/board"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
	"github.com/twiced-technology-gmbh/fvp/internal/timer"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// State colors aligned with the TUI list palette.
	stateStyles = map[string]lipgloss.Style{
		board.StateMarked:    lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		board.StateRunning:   lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
		board.StateDeferred:  lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		board.StateCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		board.StateOpen:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}

	timeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))

	markdownStyle = styles.AutoStyle
)

// DisableColor strips all styling from table output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	stateStyles = map[string]lipgloss.Style{}
	timeStyle = lipgloss.NewStyle()
	markdownStyle = styles.NoTTYStyle
}

// Marker is the one-character state glyph shown in front of a task.
func Marker(t *task.Task) string {
	switch {
	case t.Completed:
		return "✓"
	case t.Running():
		return "▶"
	case t.Marked:
		return "●"
	case t.Deferred:
		return "~"
	default:
		return "○"
	}
}

// State names the dominant state of a task for display.
func State(t *task.Task) string {
	switch {
	case t.Completed:
		return board.StateCompleted
	case t.Running():
		return board.StateRunning
	case t.Marked:
		return board.StateMarked
	case t.Deferred:
		return board.StateDeferred
	default:
		return board.StateOpen
	}
}

// TaskTable renders rows as a formatted table.
func TaskTable(w io.Writer, rows []board.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	posW, idW, stateW, timeW := 4, 4, 7, 6
	for _, r := range rows {
		posW = max(posW, len(strconv.Itoa(r.Position))+1+pad)
		idW = max(idW, len(r.Task.ID)+pad)
		stateW = max(stateW, len(State(r.Task))+2+pad)
		timeW = max(timeW, len(timer.Format(r.Seconds))+pad)
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %s",
		posW, "#", idW, "ID", stateW, "STATE", timeW, "TIME", "TEXT")
	fmt.Fprintln(w, headerStyle.Render(header))

	for _, r := range rows {
		text := r.Task.Text
		const maxText = 60
		if len([]rune(text)) > maxText {
			text = string([]rune(text)[:maxText-3]) + "..."
		}
		if r.Task.Completed {
			text = dimStyle.Render(text)
		}

		row := fmt.Sprintf("%-*s %s %s %s %s",
			posW, "#"+strconv.Itoa(r.Position),
			padRight(dimStyle.Render(r.Task.ID), idW),
			padRight(styledState(r.Task), stateW),
			padRight(timeStyle.Render(timer.Format(r.Seconds)), timeW),
			text)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail. Comments are rendered
// as a markdown list.
func TaskDetail(w io.Writer, r board.Row) {
	t := r.Task
	titleLine := fmt.Sprintf("Task #%d: %s", r.Position, t.Text)
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	printField(w, "ID", t.ID)
	printField(w, "State", styledState(t))
	printField(w, "Time", timeStyle.Render(timer.Format(r.Seconds)))
	if t.FirstStartedAt != nil {
		printField(w, "First start", t.FirstStartedAt.Local().Format("2006-01-02 15:04"))
	}
	if t.StartedAt != nil {
		printField(w, "Last start", t.StartedAt.Local().Format("2006-01-02 15:04"))
	}
	if t.RunningSince != nil {
		printField(w, "Running", "since "+t.RunningSince.Local().Format("15:04:05"))
	}
	if t.EndedAt != nil {
		printField(w, "Ended", t.EndedAt.Local().Format("2006-01-02 15:04"))
	}
	if t.ParentID != nil {
		printField(w, "Continues", *t.ParentID)
	}

	if t.Comments != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, renderComments(t.Comments))
	}
}

func renderComments(comments string) string {
	var md strings.Builder
	for _, line := range strings.Split(comments, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		md.WriteString("- " + line + "\n")
	}

	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(markdownStyle), glamour.WithWordWrap(80)) //nolint:mnd // wrap width
	if err != nil {
		return md.String()
	}
	out, err := r.Render(md.String())
	if err != nil {
		return md.String()
	}
	return out
}

// ProgressTable renders the progress summary of a mode.
func ProgressTable(w io.Writer, p board.Progress) {
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(p.Mode))
	fmt.Fprintf(w, "Completed: %d/%d (%d%%)\n", p.Completed, p.Total, p.Percent)
	fmt.Fprintf(w, "Open: %d  Deferred: %d\n", p.Open, p.Deferred)
	fmt.Fprintf(w, "Tracked: %s\n", timeStyle.Render(timer.FormatHM(p.TrackedSeconds)))
	if p.Benchmark != "" {
		printField(w, "Benchmark", p.Benchmark)
	}
	if p.Running != "" {
		printField(w, "Running", p.Running)
	}
}

// LogTable renders activity log entries.
func LogTable(w io.Writer, entries []board.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity recorded.")
		return
	}
	header := fmt.Sprintf("%-19s %-10s %-10s %-28s %s", "TIME", "MODE", "ACTION", "TASK", "DETAIL")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, e := range entries {
		taskID := e.TaskID
		if taskID == "" {
			taskID = dimStyle.Render("--")
		}
		row := fmt.Sprintf("%-19s %-10s %-10s %s %s",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Mode, e.Action,
			padRight(taskID, 28), e.Detail) //nolint:mnd // column width
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func styledState(t *task.Task) string {
	state := State(t)
	label := Marker(t) + " " + state
	if st, ok := stateStyles[state]; ok {
		return st.Render(label)
	}
	return label
}
