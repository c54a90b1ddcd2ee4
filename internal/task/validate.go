package task

import (
	"strings"

	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
)

// ValidateText trims text and rejects blank labels.
func ValidateText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", clierr.New(clierr.EmptyText, "task text must not be empty")
	}
	return trimmed, nil
}

// NotFound returns a CLIError for a stale or unknown task id.
func NotFound(id string) *clierr.Error {
	return clierr.Newf(clierr.TaskNotFound, "task not found: %s", id).
		WithDetails(map[string]any{"id": id})
}

// ValidateNotCompleted rejects operations that require an open task.
func ValidateNotCompleted(t *Task) error {
	if !t.Completed {
		return nil
	}
	return clierr.Newf(clierr.AlreadyCompleted, "task %s is already completed", t.ID).
		WithDetails(map[string]any{"id": t.ID})
}

// ValidateCompleted rejects operations that require a completed task.
func ValidateCompleted(t *Task) error {
	if t.Completed {
		return nil
	}
	return clierr.Newf(clierr.NotCompleted, "task %s is not completed", t.ID).
		WithDetails(map[string]any{"id": t.ID})
}

// InvalidImport returns a CLIError for an unreadable task payload.
func InvalidImport(reason string, err error) *clierr.Error {
	return clierr.Wrap(clierr.InvalidImport, err, "invalid task data: %s", reason).
		WithDetails(map[string]any{"reason": reason})
}

// InvalidTime returns a CLIError for a malformed duration entry.
func InvalidTime(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTime, "invalid time %q: expected h:mm:ss or mm:ss", input).
		WithDetails(map[string]any{"input": input})
}

// ValidateTaskRef returns a CLIError for an unparseable task reference.
func ValidateTaskRef(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTaskRef, "invalid task reference %q", input).
		WithDetails(map[string]any{"input": input})
}
