package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/twiced-technology-gmbh/fvp/internal/date"
)

// record is the loosely-typed form of a persisted task, before upgrades run.
type record map[string]json.RawMessage

// upgrade rewrites a record written by an older version into the current shape.
type upgrade struct {
	name  string
	apply func(r record)
}

// upgrades run in order on every decoded record. Each step must be idempotent.
var upgrades = []upgrade{
	{name: "rename legacy timer fields", apply: renameLegacyFields},
	{name: "backfill flags", apply: backfillFlags},
	{name: "backfill timestamps", apply: backfillTimestamps},
}

var legacyNames = map[string]string{
	"cumulativeTimeInSeconds": "cumulativeSeconds",
	"lastStartedTime":         "runningSince",
	"startTime":               "firstStartedAt",
	"endTime":                 "endedAt",
}

func renameLegacyFields(r record) {
	for old, current := range legacyNames {
		v, ok := r[old]
		if !ok {
			continue
		}
		delete(r, old)
		if _, exists := r[current]; !exists {
			r[current] = v
		}
	}
}

func backfillFlags(r record) {
	for _, k := range []string{"marked", "completed", "deferred"} {
		if isNull(r[k]) {
			r[k] = json.RawMessage("false")
		}
	}
	if isNull(r["cumulativeSeconds"]) {
		r["cumulativeSeconds"] = json.RawMessage("0")
	}
}

func backfillTimestamps(r record) {
	for _, k := range []string{"runningSince", "startedAt", "firstStartedAt", "endedAt", "parentId"} {
		if _, ok := r[k]; !ok {
			r[k] = json.RawMessage("null")
		}
	}
}

func isNull(v json.RawMessage) bool {
	return len(v) == 0 || string(v) == "null"
}

// Decode parses a persisted task array. Records written by older versions are
// upgraded in place. Records without a usable id get one from newID.
// An empty payload decodes to an empty list.
func Decode(data []byte, newID func() string) ([]*Task, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, InvalidImport("expected a JSON array of tasks", err)
	}

	tasks := make([]*Task, 0, len(raws))
	for i, raw := range raws {
		var r record
		if err := json.Unmarshal(raw, &r); err != nil || r == nil {
			return nil, InvalidImport(fmt.Sprintf("entry %d is not a task object", i), err)
		}
		for _, u := range upgrades {
			u.apply(r)
		}
		t, err := decodeRecord(r)
		if err != nil {
			return nil, InvalidImport(fmt.Sprintf("entry %d", i), err)
		}
		if t.ID == "" {
			t.ID = newID()
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// DecodeImport parses an import payload. Unlike Decode it requires a JSON
// array and rejects records without text, so a bad file never reaches the store.
func DecodeImport(data []byte, newID func() string) ([]*Task, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, InvalidImport("expected a JSON array of tasks", nil)
	}
	tasks, err := Decode(data, newID)
	if err != nil {
		return nil, err
	}
	for i, t := range tasks {
		if strings.TrimSpace(t.Text) == "" {
			return nil, InvalidImport(fmt.Sprintf("entry %d has no text", i), nil)
		}
	}
	return tasks, nil
}

func decodeRecord(r record) (*Task, error) {
	t := &Task{}

	t.ID = decodeID(r["id"])
	if v := r["text"]; !isNull(v) {
		if err := json.Unmarshal(v, &t.Text); err != nil {
			return nil, fmt.Errorf("text: %w", err)
		}
	}
	if v := r["comments"]; !isNull(v) {
		if err := json.Unmarshal(v, &t.Comments); err != nil {
			return nil, fmt.Errorf("comments: %w", err)
		}
	}

	for k, dst := range map[string]*bool{"marked": &t.Marked, "completed": &t.Completed, "deferred": &t.Deferred} {
		if err := json.Unmarshal(r[k], dst); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
	}
	if err := json.Unmarshal(r["cumulativeSeconds"], &t.CumulativeSeconds); err != nil {
		return nil, fmt.Errorf("cumulativeSeconds: %w", err)
	}
	if t.CumulativeSeconds < 0 {
		t.CumulativeSeconds = 0
	}

	var err error
	if t.RunningSince, err = date.ParseInstant(r["runningSince"]); err != nil {
		return nil, fmt.Errorf("runningSince: %w", err)
	}
	if t.StartedAt, err = date.ParseInstant(r["startedAt"]); err != nil {
		return nil, fmt.Errorf("startedAt: %w", err)
	}
	if t.FirstStartedAt, err = date.ParseInstant(r["firstStartedAt"]); err != nil {
		return nil, fmt.Errorf("firstStartedAt: %w", err)
	}
	if t.EndedAt, err = date.ParseInstant(r["endedAt"]); err != nil {
		return nil, fmt.Errorf("endedAt: %w", err)
	}

	if p := decodeID(r["parentId"]); p != "" {
		t.ParentID = &p
	}
	return t, nil
}

// decodeID accepts string or numeric identifiers; anything else yields "".
func decodeID(v json.RawMessage) string {
	if isNull(v) {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	return ""
}

// Encode serializes tasks as an indented JSON array.
func Encode(tasks []*Task) ([]byte, error) {
	if tasks == nil {
		tasks = []*Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding tasks: %w", err)
	}
	return append(data, '\n'), nil
}

// Normalize repairs invariant violations found in loaded data. Every running
// timer after the first, and any running timer on a completed task, is handed
// to stop. Marks on deferred tasks are cleared. It returns the number of repairs.
func Normalize(tasks []*Task, stop func(*Task)) int {
	repairs := 0
	running := false
	for _, t := range tasks {
		if t.Running() {
			if running || t.Completed {
				stop(t)
				repairs++
			} else {
				running = true
			}
		}
		if t.Marked && t.Deferred {
			t.Marked = false
			repairs++
		}
	}
	return repairs
}
