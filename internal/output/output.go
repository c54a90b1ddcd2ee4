// Package output renders tasks, progress and the activity log for the CLI as
// a styled table, JSON, or one line per record.
package output

import (
	"os"
)

// EnvVar selects the output format when no format flag is given.
const EnvVar = "FVP_OUTPUT"

// Format represents an output format.
type Format int

const (
	// FormatAuto defers to the environment, then the table.
	FormatAuto Format = iota
	FormatJSON
	FormatTable
	// FormatCompact prints one line per record.
	FormatCompact
)

var formatNames = map[string]Format{
	"json":    FormatJSON,
	"table":   FormatTable,
	"compact": FormatCompact,
	"oneline": FormatCompact,
}

// Parse maps a format name to a Format. Unknown names yield FormatAuto.
func Parse(name string) Format {
	return formatNames[name]
}

// Detect picks the format from the flags, then $FVP_OUTPUT, then the table.
func Detect(jsonFlag, tableFlag, compactFlag bool) Format {
	switch {
	case jsonFlag:
		return FormatJSON
	case compactFlag:
		return FormatCompact
	case tableFlag:
		return FormatTable
	}
	if f := Parse(os.Getenv(EnvVar)); f != FormatAuto {
		return f
	}
	return FormatTable
}
