package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/fvp/internal/output"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
	"github.com/twiced-technology-gmbh/fvp/internal/timer"
)

var startCmd = &cobra.Command{
	Use:   "start ID",
	Short: "Start a task's timer",
	Long:  `Starts the timer of a task. Any other running timer is stopped first.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runStart,
}

var stopCmd = &cobra.Command{
	Use:   "stop [ID]",
	Short: "Stop a timer",
	Long:  `Stops the timer of the given task, or of whichever task is running.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStop,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle ID",
	Short: "Start or stop a task's timer",
	Args:  cobra.ExactArgs(1),
	RunE:  runToggle,
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(toggleCmd)
}

func runStart(_ *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	t, err := sess.Resolve(args[0])
	if err != nil {
		return err
	}
	if err := sess.Start(t.ID); err != nil {
		return err
	}
	return printTask(sess, t, "Started %s", label(sess, t))
}

func runStop(_ *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	var t *task.Task
	if len(args) == 1 {
		if t, err = sess.Resolve(args[0]); err != nil {
			return err
		}
		err = sess.Stop(t.ID)
	} else {
		t, err = sess.StopRunning()
	}
	if err != nil {
		return err
	}

	if t == nil {
		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, map[string]any{"status": "idle"})
		}
		output.Messagef(os.Stdout, "No timer running")
		return nil
	}
	return printTask(sess, t, "Stopped %s at %s", label(sess, t), timer.Format(t.CumulativeSeconds))
}

func runToggle(_ *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	t, err := sess.Resolve(args[0])
	if err != nil {
		return err
	}
	r, err := sess.Toggle(t.ID)
	if err != nil {
		return err
	}
	return printTask(sess, t, "%s %s at %s", capitalize(r.String()), label(sess, t),
		timer.Format(sess.Displayed(t)))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
