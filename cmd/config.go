package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/config"
	"github.com/twiced-technology-gmbh/fvp/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

func parseBool(key, v string) (bool, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, clierr.Newf(clierr.InvalidInput, "invalid %s %q: must be true or false", key, v)
	}
	return b, nil
}

func configAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"modes": {
			get: func(c *config.Config) any { return c.Modes },
			set: func(c *config.Config, v string) error {
				var modes []string
				for _, m := range strings.Split(v, ",") {
					if m = strings.TrimSpace(m); m != "" {
						modes = append(modes, m)
					}
				}
				c.Modes = modes
				return nil // validation checks the active mode is kept
			},
			writable: true,
		},
		"mode": {
			get: func(c *config.Config) any { return c.Mode },
			set: func(c *config.Config, v string) error {
				if err := c.ValidateMode(v); err != nil {
					return err
				}
				c.Mode = v
				return nil
			},
			writable: true,
		},
		"fvp.auto_start": {
			get: func(c *config.Config) any { return c.FVP.AutoStart },
			set: func(c *config.Config, v string) error {
				b, err := parseBool("fvp.auto_start", v)
				c.FVP.AutoStart = b
				return err
			},
			writable: true,
		},
		"timer.debounce": {
			get:      func(c *config.Config) any { return c.Timer.Debounce },
			set:      func(c *config.Config, v string) error { c.Timer.Debounce = v; return nil },
			writable: true,
		},
		"storage.quota_bytes": {
			get: func(c *config.Config) any { return c.Storage.QuotaBytes },
			set: func(c *config.Config, v string) error {
				n, err := strconv.ParseInt(v, 10, 64)
				if err != nil {
					return clierr.Newf(clierr.InvalidInput,
						"invalid storage.quota_bytes %q: must be an integer", v)
				}
				c.Storage.QuotaBytes = n
				return nil
			},
			writable: true,
		},
		"import.policy": {
			get:      func(c *config.Config) any { return c.Import.Policy },
			set:      func(c *config.Config, v string) error { c.Import.Policy = v; return nil },
			writable: true,
		},
		"tui.show_completed": {
			get: func(c *config.Config) any { return c.TUI.ShowCompleted },
			set: func(c *config.Config, v string) error {
				b, err := parseBool("tui.show_completed", v)
				c.TUI.ShowCompleted = b
				return err
			},
			writable: true,
		},
		"tui.tick": {
			get:      func(c *config.Config) any { return c.TUI.Tick },
			set:      func(c *config.Config, v string) error { c.TUI.Tick = v; return nil },
			writable: true,
		},
		"log.level": {
			get:      func(c *config.Config) any { return c.Log.Level },
			set:      func(c *config.Config, v string) error { c.Log.Level = v; return nil },
			writable: true,
		},
	}
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"modes",
		"mode",
		"fvp.auto_start",
		"timer.debounce",
		"storage.quota_bytes",
		"import.policy",
		"tui.show_completed",
		"tui.tick",
		"log.level",
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	for _, key := range allConfigKeys() {
		val := accessors[key].get(cfg)
		fmt.Fprintf(os.Stdout, "%-20s %v\n", key, formatConfigValue(val))
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return unknownConfigKey(key)
	}

	val := acc.get(cfg)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}
	fmt.Fprintln(os.Stdout, formatConfigValue(val))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	acc, ok := configAccessors()[key]
	if !ok {
		return unknownConfigKey(key)
	}
	if !acc.writable {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return clierr.Wrap(clierr.InvalidInput, err, "invalid value for %s", key)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}
	output.Messagef(os.Stdout, "Set %s = %v", key, formatConfigValue(acc.get(cfg)))
	return nil
}

func unknownConfigKey(key string) error {
	return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key).
		WithDetails(map[string]any{"key": key, "allowed": allConfigKeys()})
}

func formatConfigValue(val any) string {
	switch v := val.(type) {
	case []string:
		return strings.Join(v, ", ")
	case string:
		if v == "" {
			return "--"
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
