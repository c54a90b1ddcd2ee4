package task

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/date"
)

var t0 = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return "gen-" + string(rune('a'+n-1))
	}
}

func TestStartStop(t *testing.T) {
	tk := New("a", "write report")

	require.True(t, tk.StartAt(t0))
	assert.False(t, tk.StartAt(t0.Add(time.Second)), "second start is a no-op")
	assert.True(t, tk.Running())
	assert.Equal(t, t0, *tk.FirstStartedAt)

	assert.InDelta(t, 90, tk.DisplayedAt(t0.Add(90*time.Second)), 1e-9)
	assert.Zero(t, tk.CumulativeSeconds, "displayed time never mutates")

	require.True(t, tk.StopAt(t0.Add(90*time.Second)))
	assert.False(t, tk.StopAt(t0.Add(100*time.Second)), "stop is idempotent")
	assert.InDelta(t, 90, tk.CumulativeSeconds, 1e-9)
	assert.Nil(t, tk.RunningSince)
	assert.Equal(t, t0.Add(90*time.Second), *tk.EndedAt)

	tk.StartAt(t0.Add(time.Hour))
	assert.Equal(t, t0, *tk.FirstStartedAt, "first start is kept")
	assert.Equal(t, t0.Add(time.Hour), *tk.StartedAt)
}

func TestElapsedAt_ClockSkew(t *testing.T) {
	tk := New("a", "x")
	tk.StartAt(t0)
	assert.Zero(t, tk.ElapsedAt(t0.Add(-time.Minute)))
}

func TestMarkExclusivity(t *testing.T) {
	tk := New("a", "x")
	tk.Defer()
	tk.Mark()
	assert.True(t, tk.Marked)
	assert.False(t, tk.Deferred)

	tk.Defer()
	assert.False(t, tk.Marked)

	tk.Mark()
	tk.MarkCompleted(t0)
	assert.True(t, tk.Completed)
	assert.False(t, tk.Marked)

	tk.Reopen()
	assert.False(t, tk.Completed)
	assert.Nil(t, tk.EndedAt)
}

func TestAppendComment(t *testing.T) {
	tk := New("a", "x")
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)
	tk.AppendComment(now, "Reflection: done")
	tk.AppendComment(now, "second")
	assert.Equal(t, "[2026-01-02 03:04:05] Reflection: done\n[2026-01-02 03:04:05] second", tk.Comments)
}

func TestContinuation(t *testing.T) {
	tk := New("a", "long task")
	tk.StartAt(t0)
	tk.StopAt(t0.Add(time.Minute))
	tk.Mark()

	c := tk.Continuation("b", t0)
	assert.Equal(t, "b", c.ID)
	assert.Equal(t, "long task", c.Text)
	require.NotNil(t, c.ParentID)
	assert.Equal(t, "a", *c.ParentID)
	assert.Zero(t, c.CumulativeSeconds)
	assert.False(t, c.Marked)
	assert.Contains(t, c.Comments, "] Shelved")
	assert.True(t, tk.Marked, "original untouched")
}

func TestClone(t *testing.T) {
	tk := New("a", "x")
	tk.StartAt(t0)
	c := tk.Clone()
	tk.StopAt(t0.Add(time.Second))

	assert.True(t, c.Running())
	assert.Zero(t, c.CumulativeSeconds)
}

func TestNewID(t *testing.T) {
	a := NewID(t0)
	b := NewID(t0)
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}

func TestRoundTrip(t *testing.T) {
	started := t0
	ended := t0.Add(time.Minute)
	parent := "p"
	in := []*Task{
		{ID: "a", Text: "first", Marked: true, CumulativeSeconds: 12.5, StartedAt: &started, FirstStartedAt: &started, EndedAt: &ended},
		{ID: "b", Text: "second", Completed: true, Comments: "[2026-10-17 09:00:00] Reflection: ok", ParentID: &parent},
		{ID: "c", Text: "third", Deferred: true, RunningSince: &started},
	}

	data, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(data, seqIDs())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncode_Empty(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	out, err := Decode([]byte("  "), seqIDs())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDecode_LegacyRecord(t *testing.T) {
	legacy := `[
		{"text": "old", "completed": false, "marked": true,
		 "cumulativeTimeInSeconds": 30, "lastStartedTime": 1709993100000,
		 "startTime": 1709993100000, "endTime": null},
		{"id": 7, "text": "numeric id"}
	]`

	out, err := Decode([]byte(legacy), seqIDs())
	require.NoError(t, err)
	require.Len(t, out, 2)

	old := out[0]
	assert.Equal(t, "gen-a", old.ID)
	assert.True(t, old.Marked)
	assert.False(t, old.Deferred)
	assert.InDelta(t, 30, old.CumulativeSeconds, 1e-9)
	require.NotNil(t, old.RunningSince)
	assert.True(t, old.RunningSince.Equal(time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)))
	require.NotNil(t, old.FirstStartedAt)
	assert.Nil(t, old.StartedAt)
	assert.Nil(t, old.EndedAt)
	assert.Nil(t, old.ParentID)

	assert.Equal(t, "7", out[1].ID)
	assert.Zero(t, out[1].CumulativeSeconds)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "object", data: `{"tasks": []}`},
		{name: "not json", data: `tasks`},
		{name: "scalar entry", data: `[1]`},
		{name: "null entry", data: `[null]`},
		{name: "bad flag", data: `[{"id":"a","marked":"yes"}]`},
		{name: "bad timestamp", data: `[{"id":"a","startedAt":"soon"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), seqIDs())
			require.Error(t, err)
			assert.Equal(t, clierr.InvalidImport, clierr.CodeOf(err))
		})
	}
}

func TestDecodeImport(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ``},
		{name: "blank", data: "  \n "},
		{name: "null", data: `null`},
		{name: "object", data: `{"text":"a"}`},
		{name: "missing text", data: `[{"id":"a"}]`},
		{name: "blank text", data: `[{"text":"x"},{"text":"  "}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeImport([]byte(tt.data), seqIDs())
			require.Error(t, err)
			assert.Equal(t, clierr.InvalidImport, clierr.CodeOf(err))
		})
	}

	out, err := DecodeImport([]byte(` [{"text":"a"}]`), seqIDs())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].Text)

	out, err = DecodeImport([]byte(`[]`), seqIDs())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestNormalize(t *testing.T) {
	a := New("a", "a")
	b := New("b", "b")
	c := New("c", "c")
	a.StartAt(t0)
	b.StartAt(t0)
	c.Marked, c.Deferred = true, true

	var stopped []string
	n := Normalize([]*Task{a, b, c}, func(t *Task) {
		stopped = append(stopped, t.ID)
		t.StopAt(t0.Add(time.Second))
	})

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"b"}, stopped)
	assert.True(t, a.Running())
	assert.False(t, c.Marked)
}

func TestValidateText(t *testing.T) {
	got, err := ValidateText("  call mom ")
	require.NoError(t, err)
	assert.Equal(t, "call mom", got)

	_, err = ValidateText(" \t\n")
	assert.Equal(t, clierr.EmptyText, clierr.CodeOf(err))
	assert.True(t, clierr.IsValidation(err))
}

func TestResolve(t *testing.T) {
	tasks := []*Task{
		New("01JAAAAAAA", "a"),
		New("01JAAAAAAB", "b"),
		New("01JBBBBBBB", "c"),
	}

	tests := []struct {
		ref  string
		want string
		code string
	}{
		{ref: "#2", want: "01JAAAAAAB"},
		{ref: "01JBBBBBBB", want: "01JBBBBBBB"},
		{ref: "01jb", want: "01JBBBBBBB"},
		{ref: "01JA", code: clierr.AmbiguousTaskRef},
		{ref: "zz", code: clierr.TaskNotFound},
		{ref: "#9", code: clierr.TaskNotFound},
		{ref: "#0", code: clierr.InvalidTaskRef},
		{ref: "#x", code: clierr.InvalidTaskRef},
		{ref: " ", code: clierr.InvalidTaskRef},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := Resolve(tasks, tt.ref)
			if tt.code != "" {
				assert.Equal(t, tt.code, clierr.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestResolveAll(t *testing.T) {
	tasks := []*Task{New("a1", "a"), New("b1", "b")}
	got, err := ResolveAll(tasks, "#1, b1,")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, "b1", got[1].ID)

	_, err = ResolveAll(tasks, " , ")
	assert.Equal(t, clierr.InvalidTaskRef, clierr.CodeOf(err))
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "tasks-work.json", StoreFilename("Work"))
	assert.Equal(t, "tasks-side-projects.json", StoreFilename("Side Projects!"))
	assert.Equal(t, "2026-10-17_FVP_tasks_personal.json", ExportFilename(date.New(2026, 10, 17), "personal"))
	assert.Len(t, GenerateSlug(strings.Repeat("ab ", 40)), 29)
}
