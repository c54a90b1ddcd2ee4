package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
)

var addCmd = &cobra.Command{
	Use:     "add [TEXT...]",
	Aliases: []string{"create"},
	Short:   "Add a task to the end of the list",
	Long: `Appends a new open task. The text can be given as arguments or via --text.
Use --note to attach an initial comment and --start to start its timer right away.`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().String("text", "", "task text (alternative to positional arguments)")
	addCmd.Flags().String("note", "", "initial comment")
	addCmd.Flags().Bool("start", false, "start the timer of the new task")
	addCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "title":
			name = "text"
		case "comment":
			name = "note"
		}
		return pflag.NormalizedName(name)
	})
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	if len(args) > 0 {
		if text != "" {
			return clierr.New(clierr.InvalidInput, "provide the text as arguments or --text, not both")
		}
		text = strings.Join(args, " ")
	}

	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	t, err := sess.Add(text)
	if err != nil {
		return err
	}
	if note, _ := cmd.Flags().GetString("note"); note != "" {
		if _, err := sess.Annotate(t.ID, note); err != nil {
			return err
		}
	}
	if start, _ := cmd.Flags().GetBool("start"); start {
		if err := sess.Start(t.ID); err != nil {
			return err
		}
	}

	return printTask(sess, t, "Added %s (%s)", label(sess, t), t.ID)
}
