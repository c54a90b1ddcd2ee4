package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/fvp/internal/output"
)

var modeCmd = &cobra.Command{
	Use:   "mode [NAME]",
	Short: "Show or switch the active mode",
	Long: `Without arguments, prints the active mode and the configured modes.
With a name, makes that mode the active one. Running timers of the previous
mode keep running.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMode,
}

func init() {
	rootCmd.AddCommand(modeCmd)
}

func runMode(_ *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	if len(args) == 1 {
		if sess, err = sess.SwitchMode(args[0]); err != nil {
			return err
		}
	}
	cfg := sess.Config()

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"mode": sess.Mode(), "modes": cfg.Modes})
	}
	if len(args) == 1 {
		output.Messagef(os.Stdout, "Switched to %s", sess.Mode())
		return nil
	}
	output.Messagef(os.Stdout, "%s (modes: %s)", sess.Mode(), strings.Join(cfg.Modes, ", "))
	return nil
}
