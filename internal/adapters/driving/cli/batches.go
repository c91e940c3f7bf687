package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List discoverable batches",
	Long: `Lists the batch directories found in the base recognizer output
of the configured resource.`,
	Args: cobra.NoArgs,
	RunE: runBatches,
}

func init() {
	rootCmd.AddCommand(batchesCmd)
}

func runBatches(cmd *cobra.Command, _ []string) error {
	if batchCoordinator == nil {
		return errors.New("batch coordinator not configured")
	}

	batches, err := batchCoordinator.Batches(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list batches: %w", err)
	}

	if len(batches) == 0 {
		cmd.Println("No batches found.")
		return nil
	}

	for _, b := range batches {
		cmd.Printf("  %s\n", b)
	}
	cmd.Printf("\nTotal: %d batches\n", len(batches))
	return nil
}
