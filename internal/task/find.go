package task

import (
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
)

// Index returns the position of id in tasks, or -1.
func Index(tasks []*Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Resolve finds the task a user reference points at. A reference is either
// "#N" (1-based position in tasks), an exact id, or a unique case-insensitive
// id prefix.
func Resolve(tasks []*Task, ref string) (*Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ValidateTaskRef(ref)
	}

	if pos, ok := strings.CutPrefix(ref, "#"); ok {
		n, err := strconv.Atoi(pos)
		if err != nil || n < 1 {
			return nil, ValidateTaskRef(ref)
		}
		if n > len(tasks) {
			return nil, NotFound(ref)
		}
		return tasks[n-1], nil
	}

	if i := Index(tasks, ref); i >= 0 {
		return tasks[i], nil
	}

	upper := strings.ToUpper(ref)
	var matches []*Task
	for _, t := range tasks {
		if strings.HasPrefix(strings.ToUpper(t.ID), upper) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return nil, NotFound(ref)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return nil, clierr.Newf(clierr.AmbiguousTaskRef, "task reference %q matches %d tasks", ref, len(matches)).
			WithDetails(map[string]any{"input": ref, "matches": ids})
	}
}

// ResolveAll resolves a comma-separated list of references.
func ResolveAll(tasks []*Task, refs string) ([]*Task, error) {
	var out []*Task
	for _, part := range strings.Split(refs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := Resolve(tasks, part)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, ValidateTaskRef(refs)
	}
	return out, nil
}
