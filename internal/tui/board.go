// Package tui implements the interactive terminal list for fvp.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/twiced-technology-gmbh/fvp/internal/app"
	"github.com/twiced-technology-gmbh/fvp/internal/board"
	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/config"
	"github.com/twiced-technology-gmbh/fvp/internal/lifecycle"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
	"github.com/twiced-technology-gmbh/fvp/internal/timer"
)

// view represents the current screen state.
type view int

const (
	viewList view = iota
	viewInput
	viewConfirm
	viewCompare
	viewReflect
)

// Key and layout constants.
const (
	keyEsc   = "esc"
	keyEnter = "enter"

	listChrome  = 3 // header line + blank line + status bar
	noticeLines = 1 // extra line when an error or warning is displayed
)

// Board is the top-level bubbletea model.
type Board struct {
	sess   *app.Session
	opts   []app.Option
	view   view
	width  int
	height int
	tick   time.Duration

	focus     string // id of the selected task
	scrollOff int
	err       error
	notice    string

	// Reload requested while a dialog was open.
	pendingReload bool

	input     textinput.Model
	inputKind inputKind
	inputID   string

	confirm confirmation

	walk       *app.Walk
	completion *app.Completion
	reflection textarea.Model
}

// Open creates a Board and opens mode with the board as renderer and notifier.
// opts are passed to every session the board opens, including on mode switch.
func Open(cfg *config.Config, mode string, opts ...app.Option) (*Board, error) {
	b := &Board{
		tick:       cfg.TickDuration(),
		input:      newInput(),
		reflection: newReflectionArea(),
	}
	b.opts = append([]app.Option{app.WithRenderer(b), app.WithNotifier(b)}, opts...)

	sess, err := app.Open(cfg, mode, b.opts...)
	if err != nil {
		return nil, err
	}
	b.sess = sess
	if tasks := sess.Tasks(); len(tasks) > 0 {
		b.focus = tasks[0].ID
	}
	return b, nil
}

// Session returns the session currently shown.
func (b *Board) Session() *app.Session { return b.sess }

// Render implements app.Renderer. It runs synchronously inside Update.
func (b *Board) Render(_ []*task.Task, focus string) {
	if focus != "" {
		b.focus = focus
	}
	b.clampFocus()
}

// Notify implements app.Notifier.
func (b *Board) Notify(msg string) { b.notice = msg }

// Init implements tea.Model.
func (b *Board) Init() tea.Cmd {
	return b.tickCmd()
}

// Update implements tea.Model.
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(msg)
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.reflection.SetWidth(min(msg.Width-8, 72)) //nolint:mnd // dialog chrome and max width
		b.ensureVisible()
		return b, nil
	case ReloadMsg:
		if b.view != viewList {
			b.pendingReload = true
			return b, nil
		}
		b.reload()
		return b, nil
	case TickMsg:
		return b, b.tickCmd()
	case ErrMsg:
		b.err = msg.Err
		return b, nil
	}
	return b, b.updateInputs(msg)
}

// View implements tea.Model.
func (b *Board) View() string {
	if b.width == 0 {
		return "Loading..."
	}

	switch b.view {
	case viewInput:
		return b.viewInput()
	case viewConfirm:
		return b.viewConfirm()
	case viewCompare:
		return b.viewCompare()
	case viewReflect:
		return b.viewReflect()
	default:
		return b.viewList()
	}
}

func (b *Board) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys.
	if key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c"))) {
		b.abandonDialogs()
		return b, tea.Quit
	}

	switch b.view {
	case viewList:
		return b.handleListKey(msg)
	case viewInput:
		return b.handleInputKey(msg)
	case viewConfirm:
		return b.handleConfirmKey(msg)
	case viewCompare:
		return b.handleCompareKey(msg)
	case viewReflect:
		return b.handleReflectKey(msg)
	}
	return b, nil
}

func (b *Board) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b.err = nil
	t := b.selectedTask()

	switch msg.String() {
	case "q", keyEsc:
		return b, tea.Quit
	case "j", "down":
		b.moveCursor(1)
	case "k", "up":
		b.moveCursor(-1)
	case "g", "home":
		b.moveCursor(-len(b.rows()))
	case "G", "end":
		b.moveCursor(len(b.rows()))
	case "a":
		return b, b.startInput(inputAdd, "", "")
	case "p":
		b.startPreselect()
	case "b":
		_, err := b.sess.StartBenchmark()
		b.setErr(err)
	case "v":
		b.sess.ToggleShowCompleted()
	case "tab":
		b.nextMode()
	case "X":
		b.startConfirm(confirmClearCompleted, "")
	case "C":
		b.startConfirm(confirmClearAll, "")
	}

	if t == nil {
		return b, nil
	}
	return b, b.handleTaskKey(msg, t)
}

// handleTaskKey handles keys acting on the selected task.
func (b *Board) handleTaskKey(msg tea.KeyMsg, t *task.Task) tea.Cmd {
	switch msg.String() {
	case " ", keyEnter:
		_, err := b.sess.Toggle(t.ID)
		b.setErr(err)
	case "c":
		b.startComplete(t)
		return textarea.Blink
	case "s":
		_, err := b.sess.Shelve(t.ID)
		b.setErr(err)
	case "m":
		_, err := b.sess.ToggleMark(t.ID)
		b.setErr(err)
	case "z":
		_, err := b.sess.ToggleDeferred(t.ID)
		b.setErr(err)
	case "r":
		_, err := b.sess.Reopen(t.ID)
		b.setErr(err)
	case "e":
		return b.startInput(inputEditText, t.ID, t.Text)
	case "t":
		return b.startInput(inputEditTime, t.ID, timer.Format(b.sess.Displayed(t)))
	case "n":
		return b.startInput(inputNote, t.ID, "")
	case "d":
		b.startConfirm(confirmDelete, t.ID)
	case "K", "shift+up":
		_, err := b.sess.Move(t.ID, -1)
		b.setErr(err)
	case "J", "shift+down":
		_, err := b.sess.Move(t.ID, 1)
		b.setErr(err)
	}
	return nil
}

func (b *Board) nextMode() {
	modes := b.sess.Config().Modes
	if len(modes) < 2 { //nolint:mnd // nothing to switch to
		return
	}
	next := modes[0]
	for i, m := range modes {
		if m == b.sess.Mode() {
			next = modes[(i+1)%len(modes)]
			break
		}
	}
	sess, err := b.sess.SwitchMode(next, b.opts...)
	if err != nil {
		b.setErr(err)
		return
	}
	b.sess = sess
	b.focus = ""
	b.scrollOff = 0
	b.clampFocus()
}

// reload re-reads the store after an external change.
func (b *Board) reload() {
	b.pendingReload = false
	if err := b.sess.Reload(); err != nil {
		b.setErr(err)
	}
	b.clampFocus()
}

// returnToList closes any dialog and applies a reload deferred while it was open.
func (b *Board) returnToList() {
	b.view = viewList
	b.input.Blur()
	b.reflection.Blur()
	if b.pendingReload {
		b.reload()
	}
}

// abandonDialogs resolves pending two-phase operations before quitting so no
// tentative state is left behind.
func (b *Board) abandonDialogs() {
	if b.completion != nil {
		_, _ = b.completion.Finish(lifecycle.OutcomeCancel, "")
		b.completion = nil
	}
	if b.walk != nil {
		_ = b.walk.Abort()
		b.walk = nil
	}
}

// setErr shows err unless it is a persistence failure, which the session
// already reported through Notify.
func (b *Board) setErr(err error) {
	if err == nil || clierr.IsPersistence(err) {
		return
	}
	b.err = err
}

func (b *Board) rows() []board.Row {
	return b.sess.Visible(board.FilterOptions{})
}

func (b *Board) selectedIndex(rows []board.Row) int {
	for i, r := range rows {
		if r.Task.ID == b.focus {
			return i
		}
	}
	return -1
}

func (b *Board) selectedTask() *task.Task {
	rows := b.rows()
	if i := b.selectedIndex(rows); i >= 0 {
		return rows[i].Task
	}
	return nil
}

func (b *Board) moveCursor(delta int) {
	rows := b.rows()
	if len(rows) == 0 {
		return
	}
	i := max(0, min(len(rows)-1, b.selectedIndex(rows)+delta))
	b.focus = rows[i].Task.ID
	b.ensureVisible()
}

// clampFocus moves the selection to a visible task when the focused one
// disappeared (deleted, hidden or reloaded away).
func (b *Board) clampFocus() {
	rows := b.rows()
	if len(rows) == 0 {
		b.focus = ""
		b.scrollOff = 0
		return
	}
	if b.selectedIndex(rows) >= 0 {
		b.ensureVisible()
		return
	}
	if t, ok := b.sess.Find(b.focus); ok {
		// Hidden (completed): pick the nearest visible row above it.
		all := b.sess.Tasks()
		pos := task.Index(all, t.ID) + 1
		pick := rows[0]
		for _, r := range rows {
			if r.Position > pos {
				break
			}
			pick = r
		}
		b.focus = pick.Task.ID
	} else {
		b.focus = rows[0].Task.ID
	}
	b.ensureVisible()
}

// showNotice reports whether the save warning is still relevant.
func (b *Board) showNotice() bool {
	return b.notice != "" && b.sess.Dirty()
}

// visibleRows returns how many task lines fit on screen.
func (b *Board) visibleRows() int {
	h := b.height - listChrome
	if b.err != nil || b.showNotice() {
		h -= noticeLines
	}
	return max(1, h)
}

// ensureVisible adjusts the scroll offset so the selected row is on screen.
func (b *Board) ensureVisible() {
	i := b.selectedIndex(b.rows())
	if i < 0 {
		return
	}
	maxVis := b.visibleRows()
	switch {
	case i >= b.scrollOff+maxVis:
		b.scrollOff = i - maxVis + 1
	case i < b.scrollOff:
		b.scrollOff = i
	}
}

// WatchPaths returns the store files that should be watched for changes.
func (b *Board) WatchPaths() []string {
	cfg := b.sess.Config()
	paths := make([]string, 0, len(cfg.Modes))
	for _, m := range cfg.Modes {
		paths = append(paths, cfg.StorePath(m))
	}
	return paths
}

// --- Messages ---

// ReloadMsg is sent by the file watcher to trigger a reload.
type ReloadMsg struct{}

// ErrMsg reports a background failure, such as a watcher error.
type ErrMsg struct{ Err error }

// TickMsg is sent periodically to refresh running timers.
type TickMsg struct{}

func (b *Board) tickCmd() tea.Cmd {
	return tea.Tick(b.tick, func(time.Time) tea.Msg { return TickMsg{} })
}

func (b *Board) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch b.view {
	case viewInput:
		b.input, cmd = b.input.Update(msg)
	case viewReflect:
		b.reflection, cmd = b.reflection.Update(msg)
	}
	return cmd
}
