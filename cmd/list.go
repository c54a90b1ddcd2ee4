package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/fvp/internal/app"
	"github.com/twiced-technology-gmbh/fvp/internal/board"
	"github.com/twiced-technology-gmbh/fvp/internal/output"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `Lists the tasks of the active mode in list order. Completed tasks are shown
unless tui.show_completed is off; --all always includes them.

Use --watch to keep the list live-updating while another process changes it.`,
	RunE: runList,
}

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show task details",
	Long:  `Displays a single task including timestamps and its comment log.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	listCmd.Flags().BoolP("all", "a", false, "include completed tasks")
	listCmd.Flags().StringSlice("state", nil, "filter by state (open, completed, deferred, marked, running)")
	listCmd.Flags().StringP("search", "s", "", "search text and comments (case-insensitive)")
	listCmd.Flags().BoolP("watch", "w", false, "live-update the list on file changes")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	all, _ := cmd.Flags().GetBool("all")
	states, _ := cmd.Flags().GetStringSlice("state")
	search, _ := cmd.Flags().GetString("search")
	watch, _ := cmd.Flags().GetBool("watch")

	if err := board.ValidateStates(states); err != nil {
		return err
	}
	filter := board.FilterOptions{
		ShowCompleted: all || len(states) > 0,
		States:        states,
		Search:        search,
	}

	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	render := func(s *app.Session) error {
		return outputTaskList(s.Visible(filter))
	}
	if err := render(sess); err != nil {
		return err
	}
	if !watch {
		return nil
	}
	return watchSession(sess, render)
}

func outputTaskList(rows []board.Row) error {
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, output.Views(rows))
	case output.FormatCompact:
		output.TaskCompact(os.Stdout, rows)
	default:
		output.TaskTable(os.Stdout, rows)
	}
	return nil
}

func runShow(_ *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	t, err := sess.Resolve(args[0])
	if err != nil {
		return err
	}
	row := rowOf(sess, t)

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, output.View(row))
	case output.FormatCompact:
		output.TaskDetailCompact(os.Stdout, row)
	default:
		output.TaskDetail(os.Stdout, row)
	}
	return nil
}
