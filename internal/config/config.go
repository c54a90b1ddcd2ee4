package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("no fvp data directory found (run 'fvp init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the fvp configuration.
type Config struct {
	Version int           `yaml:"version"`
	Modes   []string      `yaml:"modes"`
	Mode    string        `yaml:"mode"`
	FVP     FVPConfig     `yaml:"fvp"`
	Timer   TimerConfig   `yaml:"timer"`
	Storage StorageConfig `yaml:"storage,omitempty"`
	Import  ImportConfig  `yaml:"import,omitempty"`
	TUI     TUIConfig     `yaml:"tui,omitempty"`
	Log     LogConfig     `yaml:"log,omitempty"`

	// dir is the absolute path to the data directory (not serialized).
	dir string `yaml:"-"`
}

// FVPConfig holds preselection settings.
type FVPConfig struct {
	AutoStart bool `yaml:"auto_start"`
}

// TimerConfig holds timer settings.
type TimerConfig struct {
	Debounce string `yaml:"debounce"`
}

// StorageConfig holds task store settings.
type StorageConfig struct {
	QuotaBytes int64 `yaml:"quota_bytes"`
}

// ImportConfig holds import settings.
type ImportConfig struct {
	Policy string `yaml:"policy"`
}

// TUIConfig holds TUI-specific display settings.
type TUIConfig struct {
	ShowCompleted bool   `yaml:"show_completed"`
	Tick          string `yaml:"tick,omitempty"`
}

// LogConfig holds diagnostic log settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Dir returns the absolute path to the data directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the data directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// StorePath returns the task store file of mode.
func (c *Config) StorePath(mode string) string {
	return filepath.Join(c.dir, task.StoreFilename(mode))
}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	return &Config{
		Version: CurrentVersion,
		Modes:   append([]string{}, DefaultModes...),
		Mode:    DefaultModes[0],
		FVP:     FVPConfig{AutoStart: true},
		Timer:   TimerConfig{Debounce: DefaultDebounce},
		Storage: StorageConfig{QuotaBytes: DefaultQuotaBytes},
		Import:  ImportConfig{Policy: ImportReplace},
		TUI:     TUIConfig{ShowCompleted: true, Tick: DefaultTick},
		Log:     LogConfig{Level: DefaultLogLevel},
	}
}

// HasMode reports whether mode is configured.
func (c *Config) HasMode(mode string) bool {
	return slices.Contains(c.Modes, mode)
}

// ValidateMode returns an UNKNOWN_MODE error for unconfigured modes.
func (c *Config) ValidateMode(mode string) error {
	if c.HasMode(mode) {
		return nil
	}
	return clierr.Newf(clierr.UnknownMode, "unknown mode %q", mode).
		WithDetails(map[string]any{"mode": mode, "allowed": c.Modes})
}

// DebounceDuration returns timer.debounce parsed, or 0 when unset.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Timer.Debounce)
	if err != nil {
		return 0
	}
	return d
}

// TickDuration returns tui.tick parsed, defaulting to one second.
func (c *Config) TickDuration() time.Duration {
	d, err := time.ParseDuration(c.TUI.Tick)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if len(c.Modes) < 1 {
		return fmt.Errorf("%w: at least 1 mode is required", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Modes))
	for _, m := range c.Modes {
		slug := task.GenerateSlug(m)
		if slug == "" {
			return fmt.Errorf("%w: mode %q has no usable characters", ErrInvalid, m)
		}
		if seen[slug] {
			return fmt.Errorf("%w: modes contain duplicates (%q)", ErrInvalid, m)
		}
		seen[slug] = true
	}
	if !c.HasMode(c.Mode) {
		return fmt.Errorf("%w: active mode %q not in modes list", ErrInvalid, c.Mode)
	}
	if c.Timer.Debounce != "" {
		if d, err := time.ParseDuration(c.Timer.Debounce); err != nil || d < 0 {
			return fmt.Errorf("%w: invalid timer.debounce %q", ErrInvalid, c.Timer.Debounce)
		}
	}
	if c.Storage.QuotaBytes < 0 {
		return fmt.Errorf("%w: storage.quota_bytes must be >= 0", ErrInvalid)
	}
	if c.Import.Policy != ImportReplace && c.Import.Policy != ImportAppend {
		return fmt.Errorf("%w: import.policy must be %q or %q", ErrInvalid, ImportReplace, ImportAppend)
	}
	if c.TUI.Tick != "" {
		if d, err := time.ParseDuration(c.TUI.Tick); err != nil || d <= 0 {
			return fmt.Errorf("%w: invalid tui.tick %q", ErrInvalid, c.TUI.Tick)
		}
	}
	if !slices.Contains(LogLevels, c.Log.Level) {
		return fmt.Errorf("%w: log.level must be one of %v", ErrInvalid, LogLevels)
	}
	return nil
}

// Init creates a data directory with a default config.
func Init(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if _, err := os.Stat(filepath.Join(absDir, ConfigFileName)); err == nil {
		return nil, clierr.Newf(clierr.StoreExists, "fvp data directory already exists at %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	cfg := NewDefault()
	cfg.SetDir(absDir)

	if err := os.MkdirAll(absDir, dirMode); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given data directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.dir = absDir

	// Migrate old config versions forward before validating.
	oldVersion := cfg.Version
	if err := migrate(&cfg); err != nil {
		return nil, err
	}

	// Persist migrated config so future loads skip re-migration.
	if cfg.Version != oldVersion {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindDir walks upward from startDir looking for a data directory
// containing config.yml. Returns the absolute path to the data directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the data directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.StoreNotFound,
				"no fvp data directory found (run 'fvp init' to create one)")
		}
		dir = parent
	}
}
