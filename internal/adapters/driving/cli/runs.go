package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// runsLimit is the --limit flag of the runs command.
var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent batch runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum number of runs (0 for all)")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	runs, err := documentService.Runs(commandContext(cmd), runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	for i := range runs {
		r := &runs[i]
		cmd.Printf("  %s  %s  %-20s %5d persisted %5d failed %5d skipped  %s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.RunID, r.Batch,
			r.Persisted, r.Failed, r.Skipped, r.Duration().Round(time.Millisecond))
	}
	return nil
}
