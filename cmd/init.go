package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/fvp/internal/config"
	"github.com/twiced-technology-gmbh/fvp/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an fvp data directory",
	Long: `Creates an fvp/ directory with config.yml in the current directory (or --dir).
Task lists are created on first use of each mode.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringSlice("modes", nil, "comma-separated list of modes (default work,personal)")
	initCmd.Flags().Bool("no-auto-start", false, "do not start the benchmark's timer after preselection")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = config.DefaultDir
	}

	cfg, err := config.Init(dir)
	if err != nil {
		return err
	}

	changed := false
	if modes, _ := cmd.Flags().GetStringSlice("modes"); len(modes) > 0 {
		cfg.Modes = modes
		cfg.Mode = modes[0]
		changed = true
	}
	if noAuto, _ := cmd.Flags().GetBool("no-auto-start"); noAuto {
		cfg.FVP.AutoStart = false
		changed = true
	}
	if changed {
		if err := cfg.Validate(); err != nil {
			_ = os.Remove(cfg.ConfigPath())
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"status": "initialized",
			"dir":    cfg.Dir(),
			"config": cfg.ConfigPath(),
			"modes":  cfg.Modes,
		})
	}

	output.Messagef(os.Stdout, "Initialized fvp in %s", cfg.Dir())
	output.Messagef(os.Stdout, "  Config: %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Modes:  %s", strings.Join(cfg.Modes, ", "))
	return nil
}
