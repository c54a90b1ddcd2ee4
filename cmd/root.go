// Package cmd implements the fvp CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/fvp/internal/app"
	"github.com/twiced-technology-gmbh/fvp/internal/board"
	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/config"
	"github.com/twiced-technology-gmbh/fvp/internal/logging"
	"github.com/twiced-technology-gmbh/fvp/internal/output"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagDir     string
	flagMode    string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "fvp",
	Short: "Final Version Perfected task list",
	Long: `fvp keeps a Final Version Perfected task list per mode with time tracking.
Run fvp without arguments to open the interactive list.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to the fvp data directory")
	rootCmd.PersistentFlags().StringVarP(&flagMode, "mode", "m", "", "task list to use (defaults to the active mode)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	rootCmd.SetGlobalNormalizationFunc(normalizeFlag)
}

// normalizeFlag accepts snake_case spellings of dashed flags.
func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	// SilentError: exit with its code, no output.
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	if flagJSON || output.Parse(os.Getenv(output.EnvVar)) == output.FormatJSON {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	fmt.Fprintln(os.Stderr, err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// defaultHomeDir returns the path to ~/.config/fvp.
func defaultHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "fvp"), nil
}

// resolveDir returns the data directory: --dir, an fvp/ directory found
// upward from the working directory, or ~/.config/fvp.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	dir, err := config.FindDir(cwd)
	if err == nil {
		return dir, nil
	}
	return defaultHomeDir()
}

// loadConfig finds and loads the config. The home default directory is
// created on first use.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err == nil {
		return cfg, nil
	}

	if !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}
	homeDir, homeErr := defaultHomeDir()
	if homeErr != nil || dir != homeDir {
		return nil, err
	}
	return config.Init(homeDir)
}

// activeMode returns --mode or the config's active mode.
func activeMode(cfg *config.Config) string {
	if flagMode != "" {
		return flagMode
	}
	return cfg.Mode
}

// openSession loads the config and opens the selected mode. The returned
// function closes the diagnostic log.
func openSession(opts ...app.Option) (*app.Session, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger, closeLog, logErr := logging.Open(cfg.Dir(), cfg.Log.Level)
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", logErr)
	}
	opts = append([]app.Option{
		app.WithLogger(logger),
		app.WithNotifier(stderrNotifier{}),
	}, opts...)

	sess, err := app.Open(cfg, activeMode(cfg), opts...)
	if err != nil {
		_ = closeLog()
		return nil, nil, err
	}
	return sess, func() { _ = closeLog() }, nil
}

// stderrNotifier prints session warnings, such as failed saves, to stderr.
type stderrNotifier struct{}

func (stderrNotifier) Notify(msg string) {
	fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// rowOf returns t as a display row of the session's list.
func rowOf(sess *app.Session, t *task.Task) board.Row {
	return board.Row{
		Position: task.Index(sess.Tasks(), t.ID) + 1,
		Task:     t,
		Seconds:  sess.Displayed(t),
	}
}

// printTask writes t as JSON or prints msg.
func printTask(sess *app.Session, t *task.Task, format string, args ...any) error {
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, output.View(rowOf(sess, t)))
	}
	output.Messagef(os.Stdout, format, args...)
	return nil
}

// label renders a task as "#N text" for messages.
func label(sess *app.Session, t *task.Task) string {
	return fmt.Sprintf("#%d %s", task.Index(sess.Tasks(), t.ID)+1, t.Text)
}

// splitRefs splits a comma-separated reference list, dropping duplicates.
func splitRefs(arg string) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, r := range strings.Split(arg, ",") {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		refs = append(refs, r)
	}
	return refs
}

// runBatch resolves each reference and applies fn. A single reference is
// reported through report; several produce a batch summary. Returns a
// SilentError with exit code 1 if any operation failed (after outputting results).
func runBatch(sess *app.Session, arg string, fn, report func(*task.Task) error) error {
	refs := splitRefs(arg)
	if len(refs) == 0 {
		return task.ValidateTaskRef(arg)
	}

	// Resolve everything first so "#N" references survive reordering.
	targets := make([]*task.Task, len(refs))
	errs := make([]error, len(refs))
	for i, ref := range refs {
		targets[i], errs[i] = sess.Resolve(ref)
	}

	if len(refs) == 1 {
		if errs[0] != nil {
			return errs[0]
		}
		if err := fn(targets[0]); err != nil {
			return err
		}
		return report(targets[0])
	}

	results := make([]output.BatchResult, 0, len(refs))
	anyFailed := false
	for i, ref := range refs {
		err := errs[i]
		if err == nil {
			err = fn(targets[i])
		}
		if err != nil {
			anyFailed = true
			var cliErr *clierr.Error
			if errors.As(err, &cliErr) {
				results = append(results, output.BatchResult{ID: ref, OK: false, Error: cliErr.Message, Code: cliErr.Code})
			} else {
				results = append(results, output.BatchResult{ID: ref, OK: false, Error: err.Error()})
			}
			continue
		}
		results = append(results, output.BatchResult{ID: targets[i].ID, OK: true})
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		var succeeded int
		for _, r := range results {
			if r.OK {
				succeeded++
			} else {
				fmt.Fprintf(os.Stderr, "Error: task %s: %s\n", r.ID, r.Error)
			}
		}
		output.Messagef(os.Stdout, "Completed %d/%d operations", succeeded, len(refs))
	}

	if anyFailed {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}
