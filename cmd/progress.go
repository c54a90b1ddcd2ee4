package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/fvp/internal/app"
	"github.com/twiced-technology-gmbh/fvp/internal/output"
	"github.com/twiced-technology-gmbh/fvp/internal/watcher"
)

var progressCmd = &cobra.Command{
	Use:     "progress",
	Aliases: []string{"summary"},
	Short:   "Show list progress",
	Long: `Displays how many tasks of the active mode are done, the total tracked time,
the current benchmark and the running task.

Use --watch to keep the display live-updating while another process changes the list.
Press Ctrl+C to stop.`,
	RunE: runProgress,
}

func init() {
	progressCmd.Flags().BoolP("watch", "w", false, "live-update on file changes")
	rootCmd.AddCommand(progressCmd)
}

func runProgress(cmd *cobra.Command, _ []string) error {
	watch, _ := cmd.Flags().GetBool("watch")

	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	if err := renderProgress(sess); err != nil {
		return err
	}
	if !watch {
		return nil
	}
	return watchSession(sess, renderProgress)
}

func renderProgress(sess *app.Session) error {
	p := sess.Progress()
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, p)
	case output.FormatCompact:
		output.ProgressCompact(os.Stdout, p)
	default:
		output.ProgressTable(os.Stdout, p)
	}
	return nil
}

// watchSession re-renders sess whenever its store file changes until
// interrupted. Reloads run on the calling goroutine.
func watchSession(sess *app.Session, render func(*app.Session) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	changed := make(chan struct{}, 1)
	w, err := watcher.New([]string{sess.Config().StorePath(sess.Mode())}, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	go w.Run(ctx, func(watchErr error) {
		fmt.Fprintf(os.Stderr, "Warning: file watcher: %v\n", watchErr)
	})

	fmt.Fprintln(os.Stderr, "Watching for changes... (Ctrl+C to stop)")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			clearScreen()
			if err := sess.Reload(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: reloading list: %v\n", err)
				continue
			}
			if err := render(sess); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: rendering: %v\n", err)
			}
		}
	}
}

// clearScreen sends ANSI escape codes to clear the terminal and move the
// cursor to the top-left corner.
func clearScreen() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}
