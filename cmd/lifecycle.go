package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/fvp/internal/app"
	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/lifecycle"
	"github.com/twiced-technology-gmbh/fvp/internal/output"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
	"github.com/twiced-technology-gmbh/fvp/internal/timer"
)

var completeCmd = &cobra.Command{
	Use:     "complete ID",
	Aliases: []string{"done"},
	Short:   "Complete a task",
	Long: `Stops the task's timer and marks it completed. On a terminal you are asked
for an optional reflection and whether to shelve a fresh copy of the task to the
end of the list. Use --reflection and --shelve to answer non-interactively.`,
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

var reopenCmd = &cobra.Command{
	Use:   "reopen ID[,ID,...]",
	Short: "Return completed tasks to the open list",
	Args:  cobra.ExactArgs(1),
	RunE:  runReopen,
}

var shelveCmd = &cobra.Command{
	Use:   "shelve ID[,ID,...]",
	Short: "Append a fresh copy of tasks to the end of the list",
	Args:  cobra.ExactArgs(1),
	RunE:  runShelve,
}

var markCmd = &cobra.Command{
	Use:   "mark ID[,ID,...]",
	Short: "Toggle the mark of tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runMark,
}

var deferCmd = &cobra.Command{
	Use:   "defer ID[,ID,...]",
	Short: "Toggle whether tasks are skipped by preselection",
	Args:  cobra.ExactArgs(1),
	RunE:  runDefer,
}

func init() {
	completeCmd.Flags().StringP("reflection", "r", "", "reflection note appended to the comments")
	completeCmd.Flags().Bool("shelve", false, "append a fresh copy of the task after completing it")
	completeCmd.Flags().BoolP("yes", "y", false, "do not prompt")
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(reopenCmd)
	rootCmd.AddCommand(shelveCmd)
	rootCmd.AddCommand(markCmd)
	rootCmd.AddCommand(deferCmd)
}

func runComplete(cmd *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	t, err := sess.Resolve(args[0])
	if err != nil {
		return err
	}

	var r lifecycle.Reflector
	flags := cmd.Flags()
	yes, _ := flags.GetBool("yes")
	if flags.Changed("reflection") || flags.Changed("shelve") || yes || !interactive() {
		text, _ := flags.GetString("reflection")
		shelve, _ := flags.GetBool("shelve")
		r = fixedReflection(text, shelve)
	} else {
		r = newPrompter().reflector()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := sess.Complete(ctx, t.ID, r)
	if err != nil {
		return err
	}
	return reportCompletion(sess, res)
}

func fixedReflection(text string, shelve bool) lifecycle.Reflector {
	return lifecycle.ReflectorFunc(func(context.Context, *task.Task) (lifecycle.Reflection, error) {
		outcome := lifecycle.OutcomeComplete
		if shelve {
			outcome = lifecycle.OutcomeShelve
		}
		return lifecycle.Reflection{Outcome: outcome, Text: text}, nil
	})
}

func reportCompletion(sess *app.Session, res lifecycle.Result) error {
	if outputFormat() == output.FormatJSON {
		resp := map[string]any{
			"outcome": res.Outcome.String(),
			"task":    output.View(rowOf(sess, res.Task)),
		}
		if res.Shelved != nil {
			resp["shelved"] = output.View(rowOf(sess, res.Shelved))
		}
		return output.JSON(os.Stdout, resp)
	}

	switch res.Outcome {
	case lifecycle.OutcomeCancel:
		output.Messagef(os.Stdout, "Canceled; %s is unchanged", label(sess, res.Task))
	case lifecycle.OutcomeShelve:
		output.Messagef(os.Stdout, "Completed %s after %s, shelved as %s",
			label(sess, res.Task), timer.Format(res.Task.CumulativeSeconds), label(sess, res.Shelved))
	default:
		output.Messagef(os.Stdout, "Completed %s after %s",
			label(sess, res.Task), timer.Format(res.Task.CumulativeSeconds))
	}
	return nil
}

func runReopen(_ *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	return runBatch(sess, args[0],
		func(t *task.Task) error {
			_, err := sess.Reopen(t.ID)
			return err
		},
		func(t *task.Task) error {
			return printTask(sess, t, "Reopened %s", label(sess, t))
		})
}

func runShelve(_ *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	var shelved *task.Task
	return runBatch(sess, args[0],
		func(t *task.Task) error {
			var err error
			shelved, err = sess.Shelve(t.ID)
			return err
		},
		func(*task.Task) error {
			return printTask(sess, shelved, "Shelved as %s", label(sess, shelved))
		})
}

func runMark(_ *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	var marked bool
	return runBatch(sess, args[0],
		func(t *task.Task) error {
			var err error
			marked, err = sess.ToggleMark(t.ID)
			return err
		},
		func(t *task.Task) error {
			verb := "Unmarked"
			if marked {
				verb = "Marked"
			}
			return printTask(sess, t, "%s %s", verb, label(sess, t))
		})
}

func runDefer(_ *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	var deferred bool
	return runBatch(sess, args[0],
		func(t *task.Task) error {
			var err error
			deferred, err = sess.ToggleDeferred(t.ID)
			return err
		},
		func(t *task.Task) error {
			verb := "Undeferred"
			if deferred {
				verb = "Deferred"
			}
			return printTask(sess, t, "%s %s", verb, label(sess, t))
		})
}

// requireInteractive fails with CONFIRMATION_REQUIRED when stdin is not a terminal.
func requireInteractive(what string) error {
	if interactive() {
		return nil
	}
	return clierr.Newf(clierr.ConfirmationReq, "cannot prompt for %s (not a terminal)", what)
}
