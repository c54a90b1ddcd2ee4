package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/fvp/internal/app"
	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/output"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
)

var deleteCmd = &cobra.Command{
	Use:     "delete ID[,ID,...]",
	Aliases: []string{"rm"},
	Short:   "Delete tasks",
	Long: `Removes tasks from the list. Prompts for confirmation in interactive mode.
Multiple IDs can be provided as a comma-separated list (requires --yes).`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove completed tasks or empty the list",
	Long: `With --completed, removes every completed task. With --all, deletes every task
of the mode. Both ask for confirmation unless --yes is given.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	clearCmd.Flags().Bool("completed", false, "remove completed tasks")
	clearCmd.Flags().Bool("all", false, "delete all tasks")
	clearCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	clearCmd.MarkFlagsOneRequired("completed", "all")
	clearCmd.MarkFlagsMutuallyExclusive("completed", "all")
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	refs := splitRefs(args[0])
	if len(refs) > 1 && !yes {
		return clierr.New(clierr.ConfirmationReq, "batch delete requires --yes")
	}

	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	if len(refs) == 1 && !yes {
		t, err := sess.Resolve(refs[0])
		if err != nil {
			return err
		}
		if err := requireInteractive("confirmation; use --yes"); err != nil {
			return err
		}
		ok, err := newPrompter().confirmer().Confirm(context.Background(),
			fmt.Sprintf("Delete task %s?", label(sess, t)))
		if err != nil || !ok {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	var text string
	return runBatch(sess, args[0],
		func(t *task.Task) error {
			var err error
			text, err = sess.Delete(t.ID)
			return err
		},
		func(t *task.Task) error {
			if outputFormat() == output.FormatJSON {
				return output.JSON(os.Stdout, map[string]any{
					"status": "deleted",
					"id":     t.ID,
					"text":   text,
				})
			}
			output.Messagef(os.Stdout, "Deleted task %s: %s", t.ID, text)
			return nil
		})
}

func runClear(cmd *cobra.Command, _ []string) error {
	all, _ := cmd.Flags().GetBool("all")
	yes, _ := cmd.Flags().GetBool("yes")

	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	var c app.Confirmer
	switch {
	case yes:
		c = app.ConfirmerFunc(func(context.Context, string) (bool, error) { return true, nil })
	case interactive():
		c = newPrompter().confirmer()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var n int
	if all {
		n, err = sess.ClearAll(ctx, c)
	} else {
		n, err = sess.ClearCompleted(ctx, c)
	}
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"removed": n, "mode": sess.Mode()})
	}
	output.Messagef(os.Stdout, "Removed %d task(s) from %s", n, sess.Mode())
	return nil
}
