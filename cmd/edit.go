package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/fvp/internal/app"
	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
	"github.com/twiced-technology-gmbh/fvp/internal/timer"
)

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a task",
	Long: `Changes the text or the tracked time of a task, or appends a note to its
comment log. Only the given flags are applied.

Time is entered as h:mm:ss or mm:ss. Setting the time of a running task
restarts its current interval from now.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var noteCmd = &cobra.Command{
	Use:   "note ID TEXT...",
	Short: "Append a timestamped note to a task",
	Args:  cobra.MinimumNArgs(2), //nolint:mnd // id and text
	RunE:  runNote,
}

func init() {
	editCmd.Flags().String("text", "", "new task text")
	editCmd.Flags().String("time", "", "new tracked time (h:mm:ss or mm:ss)")
	editCmd.Flags().String("note", "", "append a note to the comment log")
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(noteCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if !flags.Changed("text") && !flags.Changed("time") && !flags.Changed("note") {
		return clierr.New(clierr.NoChanges, "nothing to change; use --text, --time or --note")
	}

	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	t, err := sess.Resolve(args[0])
	if err != nil {
		return err
	}

	var changes []string
	if flags.Changed("text") {
		text, _ := flags.GetString("text")
		if _, err := sess.EditText(t.ID, text); err != nil {
			return err
		}
		changes = append(changes, "text")
	}
	if flags.Changed("time") {
		value, _ := flags.GetString("time")
		if err := sess.EditTime(t.ID, value); err != nil {
			return err
		}
		changes = append(changes, "time "+timer.Format(sess.Displayed(t)))
	}
	if flags.Changed("note") {
		note, _ := flags.GetString("note")
		if _, err := sess.Annotate(t.ID, note); err != nil {
			return err
		}
		changes = append(changes, "note")
	}

	return printTask(sess, t, "Updated %s: %s", label(sess, t), strings.Join(changes, ", "))
}

func runNote(_ *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	t, err := annotate(sess, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	return printTask(sess, t, "Noted on %s", label(sess, t))
}

func annotate(sess *app.Session, ref, note string) (*task.Task, error) {
	t, err := sess.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return sess.Annotate(t.ID, note)
}
