package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/fvp/internal/app"
	"github.com/twiced-technology-gmbh/fvp/internal/fvp"
	"github.com/twiced-technology-gmbh/fvp/internal/output"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
)

var preselectCmd = &cobra.Command{
	Use:     "preselect",
	Aliases: []string{"fvp"},
	Short:   "Run a preselection walk",
	Long: `Compares the marked benchmark with each later open task, asking
"Do you want to do X more than Y?". The task you prefer becomes the new benchmark.
When the walk ends, the benchmark's timer is started if fvp.auto_start is on.

Answers: y (candidate), n (benchmark), d (defer candidate), D (defer benchmark), q (stop).
Use --answers to run a walk non-interactively; the walk stops when the answers run out.`,
	RunE: runPreselect,
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Start the timer of the current benchmark",
	Args:  cobra.NoArgs,
	RunE:  runNext,
}

func init() {
	preselectCmd.Flags().String("after", "", "resume after this task instead of starting from the benchmark")
	preselectCmd.Flags().StringSlice("answers", nil, "comma-separated answers for a non-interactive walk")
	rootCmd.AddCommand(preselectCmd)
	rootCmd.AddCommand(nextCmd)
}

func runPreselect(cmd *cobra.Command, _ []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	lastConsidered := ""
	if after, _ := cmd.Flags().GetString("after"); after != "" {
		t, err := sess.Resolve(after)
		if err != nil {
			return err
		}
		lastConsidered = t.ID
	}

	var cmp fvp.Comparator
	if cmd.Flags().Changed("answers") {
		answers, _ := cmd.Flags().GetStringSlice("answers")
		if cmp, err = scriptedComparator(answers); err != nil {
			return err
		}
	} else {
		if err := requireInteractive("comparisons"); err != nil {
			return err
		}
		cmp = newPrompter().comparator(func(t *task.Task) string { return label(sess, t) })
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := sess.Preselect(ctx, lastConsidered, cmp)
	if err != nil {
		return err
	}
	return reportWalk(sess, res)
}

func reportWalk(sess *app.Session, res fvp.Result) error {
	b := res.Benchmark
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"walk_id":     res.WalkID,
			"comparisons": res.Comparisons,
			"aborted":     res.Aborted,
			"benchmark":   output.View(rowOf(sess, b)),
		})
	}

	verb := "Next up"
	if res.Aborted {
		verb = "Stopped; benchmark stays"
	}
	output.Messagef(os.Stdout, "%s: %s", verb, label(sess, b))
	if b.Running() && !res.Aborted {
		output.Messagef(os.Stdout, "Timer started")
	}
	return nil
}

func runNext(_ *cobra.Command, _ []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	t, err := sess.StartBenchmark()
	if err != nil {
		return err
	}
	return printTask(sess, t, "Started %s", label(sess, t))
}
