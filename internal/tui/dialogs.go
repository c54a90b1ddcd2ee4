package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/twiced-technology-gmbh/fvp/internal/app"
	"github.com/twiced-technology-gmbh/fvp/internal/fvp"
	"github.com/twiced-technology-gmbh/fvp/internal/lifecycle"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
	"github.com/twiced-technology-gmbh/fvp/internal/timer"
)

// --- Text input ---

type inputKind int

const (
	inputAdd inputKind = iota
	inputEditText
	inputEditTime
	inputNote
)

var inputTitles = map[inputKind]string{
	inputAdd:      "New task",
	inputEditText: "Edit task",
	inputEditTime: "Set time (h:mm:ss or mm:ss)",
	inputNote:     "Add note",
}

func newInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Width = 60
	return ti
}

func (b *Board) startInput(kind inputKind, id, value string) tea.Cmd {
	b.inputKind = kind
	b.inputID = id
	b.input.Reset()
	b.input.SetValue(value)
	b.input.CursorEnd()
	b.view = viewInput
	return b.input.Focus()
}

func (b *Board) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		b.err = nil
		b.returnToList()
		return b, nil
	case keyEnter:
		if err := b.submitInput(strings.TrimSpace(b.input.Value())); err != nil {
			// Stay in the dialog so the entry can be corrected.
			b.setErr(err)
			return b, nil
		}
		b.err = nil
		b.returnToList()
		return b, nil
	}

	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return b, cmd
}

func (b *Board) submitInput(value string) error {
	var err error
	switch b.inputKind {
	case inputAdd:
		_, err = b.sess.Add(value)
	case inputEditText:
		_, err = b.sess.EditText(b.inputID, value)
	case inputEditTime:
		err = b.sess.EditTime(b.inputID, value)
	case inputNote:
		_, err = b.sess.Annotate(b.inputID, value)
	}
	return err
}

func (b *Board) viewInput() string {
	content := titleStyle.Render(inputTitles[b.inputKind]) + "\n\n" +
		b.input.View() + "\n\n"
	if b.err != nil {
		content += errorStyle.Render(b.err.Error()) + "\n\n"
	}
	content += dimStyle.Render("enter:save  esc:cancel")
	return dialogStyle.Render(content)
}

// --- Confirmation ---

type confirmKind int

const (
	confirmDelete confirmKind = iota
	confirmClearCompleted
	confirmClearAll
)

type confirmation struct {
	kind  confirmKind
	id    string
	text  string
	count int
}

func (b *Board) startConfirm(kind confirmKind, id string) {
	c := confirmation{kind: kind, id: id}
	switch kind {
	case confirmDelete:
		t, ok := b.sess.Find(id)
		if !ok {
			return
		}
		c.text = t.Text
	case confirmClearCompleted:
		for _, t := range b.sess.Tasks() {
			if t.Completed {
				c.count++
			}
		}
	case confirmClearAll:
		c.count = len(b.sess.Tasks())
	}
	if kind != confirmDelete && c.count == 0 {
		return
	}
	b.confirm = c
	b.view = viewConfirm
}

func (b *Board) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		b.executeConfirm()
		b.returnToList()
	case "n", "N", keyEsc, "q":
		b.returnToList()
	}
	return b, nil
}

func (b *Board) executeConfirm() {
	yes := app.ConfirmerFunc(func(context.Context, string) (bool, error) { return true, nil })
	var err error
	switch b.confirm.kind {
	case confirmDelete:
		_, err = b.sess.Delete(b.confirm.id)
	case confirmClearCompleted:
		_, err = b.sess.ClearCompleted(context.Background(), yes)
	case confirmClearAll:
		_, err = b.sess.ClearAll(context.Background(), yes)
	}
	b.setErr(err)
}

func (b *Board) viewConfirm() string {
	var content string
	switch b.confirm.kind {
	case confirmDelete:
		content = errorStyle.Render("Delete task?") + "\n\n" +
			"  " + b.confirm.text
	case confirmClearCompleted:
		content = errorStyle.Render("Clear completed tasks?") + "\n\n" +
			fmt.Sprintf("  %d completed tasks will be removed from %s.", b.confirm.count, b.sess.Mode())
	case confirmClearAll:
		content = errorStyle.Render("Delete ALL tasks?") + "\n\n" +
			fmt.Sprintf("  %d tasks will be removed from %s.", b.confirm.count, b.sess.Mode())
	}
	content += "\n\n" + dimStyle.Render("y:yes  n:no")
	return dialogStyle.Render(content)
}

// --- Preselection ---

var compareKeys = map[string]fvp.Choice{
	"1": fvp.ChooseBenchmark,
	"b": fvp.ChooseBenchmark,
	"n": fvp.ChooseBenchmark,
	"2": fvp.ChooseCandidate,
	"c": fvp.ChooseCandidate,
	"y": fvp.ChooseCandidate,
	"d": fvp.DeferCandidate,
	"D": fvp.DeferBenchmark,
}

func (b *Board) startPreselect() {
	w, err := b.sess.BeginPreselect("")
	if err != nil {
		b.setErr(err)
		return
	}
	if _, ok := w.Pending(); !ok {
		b.setErr(w.Finish())
		return
	}
	b.walk = w
	b.view = viewCompare
}

func (b *Board) handleCompareKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc, "q":
		b.setErr(b.walk.Abort())
		b.walk = nil
		b.returnToList()
		return b, nil
	}

	choice, ok := compareKeys[msg.String()]
	if !ok {
		return b, nil
	}
	done, err := b.walk.Decide(choice)
	b.setErr(err)
	if done || b.err != nil {
		if !done {
			_ = b.walk.Abort()
		}
		b.walk = nil
		b.returnToList()
	}
	return b, nil
}

func (b *Board) viewCompare() string {
	c, ok := b.walk.Pending()
	if !ok {
		return dialogStyle.Render("Preselection finished.")
	}
	content := titleStyle.Render(fmt.Sprintf("Preselect (comparison %d)", c.Step)) + "\n\n" +
		"Do you want to do\n\n" +
		"  " + candidateStyle.Render(truncate(c.Candidate.Text, b.dialogWidth())) + "\n\n" +
		"more than\n\n" +
		"  " + benchmarkStyle.Render(truncate(c.Benchmark.Text, b.dialogWidth())) + "\n\n" +
		dimStyle.Render("c:yes, candidate  b:no, keep benchmark  d:defer candidate  D:defer benchmark  esc:stop")
	return dialogStyle.Render(content)
}

// --- Completion ---

func newReflectionArea() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "How did it go? (optional)"
	ta.ShowLineNumbers = false
	ta.SetHeight(4) //nolint:mnd // reflection box height
	ta.KeyMap.InsertNewline.SetKeys("alt+enter")
	return ta
}

func (b *Board) startComplete(t *task.Task) {
	c, err := b.sess.BeginComplete(t.ID)
	if err != nil {
		b.setErr(err)
		return
	}
	b.completion = c
	b.reflection.Reset()
	b.reflection.Focus()
	b.view = viewReflect
}

func (b *Board) handleReflectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var outcome lifecycle.Outcome
	switch msg.String() {
	case keyEsc:
		outcome = lifecycle.OutcomeCancel
	case keyEnter:
		outcome = lifecycle.OutcomeComplete
	case "ctrl+s":
		outcome = lifecycle.OutcomeShelve
	default:
		var cmd tea.Cmd
		b.reflection, cmd = b.reflection.Update(msg)
		return b, cmd
	}

	_, err := b.completion.Finish(outcome, strings.TrimSpace(b.reflection.Value()))
	b.setErr(err)
	b.completion = nil
	b.returnToList()
	return b, nil
}

func (b *Board) viewReflect() string {
	t := b.completion.Task()
	content := titleStyle.Render("Complete: "+truncate(t.Text, b.dialogWidth())) + "\n" +
		dimStyle.Render("Time: "+timer.Format(t.CumulativeSeconds)) + "\n\n" +
		b.reflection.View() + "\n\n" +
		dimStyle.Render("enter:complete  ctrl+s:complete & shelve  alt+enter:newline  esc:cancel")
	return dialogStyle.Render(content)
}

func (b *Board) dialogWidth() int {
	const chrome = 12 // border, padding and indent
	return max(20, min(b.width-chrome, 72)) //nolint:mnd // readable dialog width bounds
}
