package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/fvp/internal/app"
	"github.com/twiced-technology-gmbh/fvp/internal/config"
	"github.com/twiced-technology-gmbh/fvp/internal/output"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import tasks from a JSON file",
	Long: `Reads a JSON array of tasks (including files written by older versions) and
replaces the list with it, or appends it with --append. Use - to read stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the list as JSON",
	Long: `Writes the list to a dated file (YYYY-MM-DD_FVP_tasks_MODE.json) in the working
directory, to --out, or to stdout with --out -.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	importCmd.Flags().Bool("append", false, "append instead of replacing the list")
	exportCmd.Flags().StringP("out", "o", "", "output file (- for stdout)")
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading import file: %w", err)
	}

	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	policy := ""
	if appendFlag, _ := cmd.Flags().GetBool("append"); appendFlag {
		policy = config.ImportAppend
	}
	n, err := sess.Import(data, policy)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"imported": n, "mode": sess.Mode(), "total": len(sess.Tasks())})
	}
	output.Messagef(os.Stdout, "Imported %d task(s) into %s", n, sess.Mode())
	return nil
}

// writeExport writes the list to out, to stdout for "-" or to the dated
// default file for "". It returns the destination used.
func writeExport(sess *app.Session, out string, stdout io.Writer) (string, error) {
	data, err := sess.Export()
	if err != nil {
		return "", err
	}

	if out == "-" {
		_, err = stdout.Write(data)
		return out, err
	}
	if out == "" {
		out = sess.ExportFilename()
	}
	if err := os.WriteFile(out, data, 0o600); err != nil { //nolint:mnd // owner read/write
		return "", fmt.Errorf("writing export: %w", err)
	}
	return out, nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	out, _ := cmd.Flags().GetString("out")
	out, err = writeExport(sess, out, os.Stdout)
	if err != nil || out == "-" {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"file": out, "tasks": len(sess.Tasks())})
	}
	output.Messagef(os.Stdout, "Exported %d task(s) to %s", len(sess.Tasks()), out)
	return nil
}
