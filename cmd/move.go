package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
)

var moveCmd = &cobra.Command{
	Use:   "move ID up|down|top|bottom|N",
	Short: "Reorder a task",
	Long: `Moves a task within the list. up and down shift it by one place, top and
bottom move it to either end, and a signed number shifts it by that many places.
Positions are clamped to the list.`,
	Args: cobra.ExactArgs(2), //nolint:mnd // id and direction
	RunE: runMove,
}

func init() {
	rootCmd.AddCommand(moveCmd)
}

func runMove(_ *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	t, err := sess.Resolve(args[0])
	if err != nil {
		return err
	}

	n := len(sess.Tasks())
	var delta int
	switch args[1] {
	case "up":
		delta = -1
	case "down":
		delta = 1
	case "top":
		delta = -n
	case "bottom":
		delta = n
	default:
		delta, err = strconv.Atoi(args[1])
		if err != nil {
			return clierr.Newf(clierr.InvalidInput, "invalid direction %q", args[1]).
				WithDetails(map[string]any{"input": args[1], "allowed": []string{"up", "down", "top", "bottom", "N"}})
		}
	}

	pos, err := sess.Move(t.ID, delta)
	if err != nil {
		return err
	}
	return printTask(sess, t, "Moved %s to position %d", t.Text, pos+1)
}
