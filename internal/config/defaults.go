// Package config handles fvp configuration.
package config

const (
	// DefaultDir is the data directory name searched for in the working tree.
	DefaultDir = "fvp"

	// ConfigFileName is the name of the config file within the data directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 3

	// DefaultDebounce is the default timer toggle debounce as a duration string.
	DefaultDebounce = "100ms"
	// DefaultTick is the default TUI refresh interval.
	DefaultTick = "1s"
	// DefaultQuotaBytes caps the size of one store file.
	DefaultQuotaBytes = 5 * 1024 * 1024
	// DefaultLogLevel is the default diagnostic log level.
	DefaultLogLevel = "info"

	// ImportReplace replaces the list on import.
	ImportReplace = "replace"
	// ImportAppend appends imported tasks.
	ImportAppend = "append"
)

// DefaultModes are the task lists created by init.
var DefaultModes = []string{"work", "personal"}

// LogLevels are the accepted values of log.level.
var LogLevels = []string{"debug", "info", "warn", "error"}
