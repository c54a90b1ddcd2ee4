package config

import "fmt"

// migrate upgrades a config from its current version to CurrentVersion.
// Each migration function transforms the config one version forward.
// Returns an error if the config version is newer than what this binary supports.
func migrate(cfg *Config) error {
	if cfg.Version == CurrentVersion {
		return nil
	}
	if cfg.Version > CurrentVersion {
		return fmt.Errorf(
			"%w: config version %d is newer than supported version %d (upgrade fvp)",
			ErrInvalid, cfg.Version, CurrentVersion,
		)
	}
	if cfg.Version < 1 {
		return fmt.Errorf("%w: config version %d is invalid", ErrInvalid, cfg.Version)
	}

	for cfg.Version < CurrentVersion {
		fn, ok := migrations[cfg.Version]
		if !ok {
			return fmt.Errorf("%w: no migration path from version %d", ErrInvalid, cfg.Version)
		}
		if err := fn(cfg); err != nil {
			return fmt.Errorf("migrating config from v%d: %w", cfg.Version, err)
		}
	}

	return nil
}

// migrations maps each version to the function that migrates it to the next version.
// The migration function must increment cfg.Version after a successful migration.
var migrations = map[int]func(*Config) error{
	1: migrateV1ToV2,
	2: migrateV2ToV3,
}

// migrateV1ToV2 adds the fvp and timer sections. Version 1 always started the
// benchmark after preselection.
func migrateV1ToV2(cfg *Config) error { //nolint:unparam // signature must match migrations map type
	cfg.FVP.AutoStart = true
	if cfg.Timer.Debounce == "" {
		cfg.Timer.Debounce = DefaultDebounce
	}
	cfg.Version = 2
	return nil
}

// migrateV2ToV3 adds storage quota, import policy, tui and log settings.
// Version 2 files always showed completed tasks, so that is kept.
func migrateV2ToV3(cfg *Config) error { //nolint:unparam // signature must match migrations map type
	if cfg.Storage.QuotaBytes == 0 {
		cfg.Storage.QuotaBytes = DefaultQuotaBytes
	}
	if cfg.Import.Policy == "" {
		cfg.Import.Policy = ImportReplace
	}
	if cfg.TUI.Tick == "" {
		cfg.TUI.Tick = DefaultTick
	}
	cfg.TUI.ShowCompleted = true
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	cfg.Version = 3
	return nil
}
