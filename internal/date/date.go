// Package date provides the calendar and timestamp formats used by task records:
// YYYY-MM-DD dates for export filenames, "YYYY-MM-DD HH:MM:SS" stamps for the
// comments log, and a lenient instant parser for persisted timestamps.
package date

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	format      = "2006-01-02"
	stampFormat = "2006-01-02 15:04:05"
)

// Date represents a calendar date without time or timezone.
type Date struct {
	time.Time
}

// New creates a Date from year, month, day.
func New(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Of returns the calendar date of t in t's location.
func Of(t time.Time) Date {
	return New(t.Year(), t.Month(), t.Day())
}

// Parse parses a YYYY-MM-DD string into a Date.
func Parse(s string) (Date, error) {
	t, err := time.Parse(format, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(format)
}

// Stamp formats t as "YYYY-MM-DD HH:MM:SS" in local time, the prefix format
// of comment entries.
func Stamp(t time.Time) string {
	return t.Local().Format(stampFormat)
}

// ParseInstant decodes a persisted timestamp. It accepts JSON null, an RFC 3339
// string, or a number of milliseconds since the Unix epoch (the format written by
// the earliest versions of the store). A nil result means "not set".
func ParseInstant(raw json.RawMessage) (*time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: expected RFC 3339", s)
		}
		return &t, nil
	}

	ms, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %s: expected string or epoch milliseconds", raw)
	}
	t := time.UnixMilli(int64(ms))
	return &t, nil
}
