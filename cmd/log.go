package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/fvp/internal/board"
	"github.com/twiced-technology-gmbh/fvp/internal/output"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the activity log",
	Long:  `Prints the most recent entries of the activity log, oldest first.`,
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntP("limit", "n", 20, "number of entries (0 for all)") //nolint:mnd // default page size
	logCmd.Flags().String("walk", "", "only entries of one preselection walk")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	walk, _ := cmd.Flags().GetString("walk")
	if walk != "" {
		limit = 0
	}

	entries, err := board.ReadLog(cfg.Dir(), limit)
	if err != nil {
		return err
	}
	if walk != "" {
		kept := entries[:0]
		for _, e := range entries {
			if e.WalkID == walk {
				kept = append(kept, e)
			}
		}
		entries = kept
	}

	switch outputFormat() {
	case output.FormatJSON:
		if entries == nil {
			entries = []board.LogEntry{}
		}
		return output.JSON(os.Stdout, entries)
	case output.FormatCompact:
		output.LogCompact(os.Stdout, entries)
	default:
		output.LogTable(os.Stdout, entries)
	}
	return nil
}
