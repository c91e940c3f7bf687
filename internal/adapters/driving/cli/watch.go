package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

// Flags for the watch command.
var (
	watchExisting bool
	watchWorkers  int
	watchForce    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Merge batches as they appear",
	Long: `Watches the base recognizer output of the configured resource and
merges every new batch directory once it has settled. Runs until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "Also merge the batches present at start")
	watchCmd.Flags().IntVarP(&watchWorkers, "workers", "w", 0, "Worker pool size (default from config)")
	watchCmd.Flags().BoolVarP(&watchForce, "force", "f", false, "Re-process documents whose inputs are unchanged")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if watcherFactory == nil {
		return errors.New("batch watcher not configured")
	}

	w := watcherFactory(WatchOptions{
		RunExisting: watchExisting,
		Workers:     watchWorkers,
		Force:       watchForce,
		OnReport:    func(r *domain.BatchReport) { printReport(cmd, r) },
	})

	cmd.Println("Watching for new batches (Ctrl+C to stop)...")
	if err := w.Run(commandContext(cmd)); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	cmd.Println("Stopped watching.")
	return nil
}
