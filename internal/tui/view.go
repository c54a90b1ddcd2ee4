package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/fvp/internal/board"
	"github.com/twiced-technology-gmbh/fvp/internal/output"
	"github.com/twiced-technology-gmbh/fvp/internal/timer"
)

// --- Styles ---

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("237"))

	benchmarkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	candidateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)
	runningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Strikethrough(true)
	deferredStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true)
	timeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	titleStyle     = lipgloss.NewStyle().Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	dialogPadY = 1
	dialogPadX = 2

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(dialogPadY, dialogPadX)
)

// --- View rendering ---

func (b *Board) viewList() string {
	rows := b.rows()
	parts := []string{b.renderHeader()}

	maxVis := b.visibleRows()
	start := min(b.scrollOff, len(rows))
	end := min(start+maxVis, len(rows))

	lines := make([]string, 0, maxVis)
	if len(rows) == 0 {
		lines = append(lines, dimStyle.Render("  No tasks. Press a to add one."))
	}
	for _, r := range rows[start:end] {
		lines = append(lines, b.renderRow(r))
	}
	for len(lines) < maxVis {
		lines = append(lines, "")
	}
	if start > 0 {
		lines[0] = dimStyle.Render(fmt.Sprintf("  ↑ %d more", start))
	}
	if end < len(rows) {
		lines[len(lines)-1] = dimStyle.Render(fmt.Sprintf("  ↓ %d more", len(rows)-end))
	}

	parts = append(parts, lines...)
	parts = append(parts, "", b.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (b *Board) renderHeader() string {
	p := b.sess.Progress()
	text := fmt.Sprintf("fvp · %s · %d/%d done · %s tracked",
		p.Mode, p.Completed, p.Total, timer.FormatHM(p.TrackedSeconds))
	if !b.sess.ShowCompleted() && p.Completed > 0 {
		text += " · completed hidden"
	}
	return headerStyle.Width(b.width).Render(truncate(text, b.width-2)) //nolint:mnd // header padding
}

func (b *Board) renderRow(r board.Row) string {
	t := r.Task
	const timeW = 8
	prefix := fmt.Sprintf(" %s %3d ", output.Marker(t), r.Position)
	clock := fmt.Sprintf("%*s", timeW, timer.Format(r.Seconds))
	textW := max(1, b.width-lipgloss.Width(prefix)-timeW-2) //nolint:mnd // gap after time
	text := truncate(t.Text, textW)

	selected := t.ID == b.focus
	if selected {
		line := prefix + clock + "  " + text
		return selectedStyle.Width(b.width).Render(line)
	}

	switch {
	case t.Completed:
		text = completedStyle.Render(text)
	case t.Running():
		text = runningStyle.Render(text)
	case t.Marked:
		text = benchmarkStyle.Render(text)
	case t.Deferred:
		text = deferredStyle.Render(text)
	}
	return prefix + timeStyle.Render(clock) + "  " + text
}

func (b *Board) renderStatusBar() string {
	help := " a:add space:timer c:complete p:preselect m:mark z:defer d:del e:edit t:time n:note v:done tab:mode q:quit"
	status := statusBarStyle.Render(truncate(help, b.width))

	switch {
	case b.err != nil:
		return errorStyle.Render(truncate("Error: "+b.err.Error(), b.width)) + "\n" + status
	case b.showNotice():
		return warnStyle.Render(truncate(b.notice, b.width)) + "\n" + status
	}
	return status
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	// Slice by runes to avoid breaking multi-byte UTF-8 characters.
	runes := []rune(s)
	target := maxLen - 3 //nolint:mnd // room for "..."
	if target > len(runes) {
		target = len(runes)
	}
	// Trim runes from the end until the display width fits.
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return strings.TrimRight(string(runes[:target]), " ") + "..."
}
