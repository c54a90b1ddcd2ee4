package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/fvp/internal/board"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
)

var t0 = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func sampleRows() []board.Row {
	a := task.New("01JAAAAAAAAAAAAAAAAAAAAAAA", "write report")
	a.Mark()
	b := task.New("01JBBBBBBBBBBBBBBBBBBBBBBB", "call mom")
	b.MarkCompleted(t0)
	b.Comments = "[2026-10-17 09:00:00] Reflection: went fine"
	c := task.New("01JCCCCCCCCCCCCCCCCCCCCCCC", "tidy desk")
	c.StartAt(t0)
	return []board.Row{
		{Position: 1, Task: a, Seconds: 0},
		{Position: 2, Task: b, Seconds: 3725},
		{Position: 3, Task: c, Seconds: 65},
	}
}

func TestDetect(t *testing.T) {
	t.Setenv("FVP_OUTPUT", "")
	assert.Equal(t, FormatJSON, Detect(true, true, true))
	assert.Equal(t, FormatCompact, Detect(false, true, true))
	assert.Equal(t, FormatTable, Detect(false, false, false))

	t.Setenv("FVP_OUTPUT", "json")
	assert.Equal(t, FormatJSON, Detect(false, false, false))
	t.Setenv("FVP_OUTPUT", "oneline")
	assert.Equal(t, FormatCompact, Detect(false, false, false))
	t.Setenv("FVP_OUTPUT", "yaml")
	assert.Equal(t, FormatTable, Detect(false, false, false))
	assert.Equal(t, FormatAuto, Parse("yaml"))
}

func TestMarkerAndState(t *testing.T) {
	rows := sampleRows()
	assert.Equal(t, "●", Marker(rows[0].Task))
	assert.Equal(t, "✓", Marker(rows[1].Task))
	assert.Equal(t, "▶", Marker(rows[2].Task))
	assert.Equal(t, board.StateRunning, State(rows[2].Task))

	d := task.New("d", "d")
	d.Defer()
	assert.Equal(t, "~", Marker(d))
	assert.Equal(t, board.StateOpen, State(task.New("e", "e")))
}

func TestTaskTable(t *testing.T) {
	DisableColor()
	var buf bytes.Buffer
	TaskTable(&buf, sampleRows())

	out := buf.String()
	assert.Contains(t, out, "STATE")
	assert.Contains(t, out, "#2")
	assert.Contains(t, out, "✓ completed")
	assert.Contains(t, out, "1:02:05")
	assert.Contains(t, out, "1:05")
	assert.Contains(t, out, "tidy desk")
}

func TestTaskDetailRendersComments(t *testing.T) {
	DisableColor()
	var buf bytes.Buffer
	TaskDetail(&buf, sampleRows()[1])

	out := buf.String()
	assert.Contains(t, out, "Task #2: call mom")
	assert.Contains(t, out, "Reflection: went fine")
	assert.Contains(t, out, "Ended:")
}

func TestCompact(t *testing.T) {
	var buf bytes.Buffer
	TaskCompact(&buf, sampleRows())
	assert.Equal(t,
		"#1 ● [marked 0:00] write report\n"+
			"#2 ✓ [completed 1:02:05] call mom\n"+
			"#3 ▶ [running 1:05] tidy desk\n",
		buf.String())

	buf.Reset()
	ProgressCompact(&buf, board.Progress{Mode: "work", Total: 3, Completed: 1, Deferred: 1, TrackedSeconds: 3790, Running: "c"})
	assert.Equal(t, "work: 1/3 done, 1:03 tracked (1 deferred, running c)\n", buf.String())
}

func TestViewsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, Views(sampleRows()[:1])))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "write report", got[0]["text"])
	assert.Equal(t, true, got[0]["marked"])
	assert.InDelta(t, 1, got[0]["position"], 0)

	buf.Reset()
	require.NoError(t, JSON(&buf, Views(nil)))
	assert.Equal(t, "[]\n", buf.String())
}

func TestJSONError(t *testing.T) {
	var buf bytes.Buffer
	JSONError(&buf, "TASK_NOT_FOUND", "task not found", map[string]any{"id": "x"})

	var got ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "TASK_NOT_FOUND", got.Code)
	assert.Equal(t, "x", got.Details["id"])
}
