package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pubminer/internal/adapters/driving/tui"
	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driving"
)

// errDocumentsFailed makes the process exit non-zero when a run had failures.
var errDocumentsFailed = errors.New("documents failed")

// Flags for the merge command.
var (
	mergeWorkers int
	mergeForce   bool
	mergeAll     bool
	mergeTUI     bool
)

// runWithTUI renders a batch run; tests replace it.
var runWithTUI = func(
	ctx context.Context, coordinator driving.BatchCoordinator, batch string, opts driving.RunOptions,
) (*domain.BatchReport, error) {
	return tui.RunBatch(ctx, coordinator, batch, opts)
}

var mergeCmd = &cobra.Command{
	Use:   "merge [batch]",
	Short: "Merge the recognizer outputs of a batch",
	Long: `Merges every document of a batch: normalises the four recognizer outputs,
resolves overlapping annotations, fills gaps from the vocabularies,
partitions annotations into sentences and persists the result.

Documents whose inputs are unchanged since they were last persisted are
skipped unless --force is given. The command fails when any document failed.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if mergeAll {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().IntVarP(&mergeWorkers, "workers", "w", 0, "Worker pool size (default from config)")
	mergeCmd.Flags().BoolVarP(&mergeForce, "force", "f", false, "Re-process documents whose inputs are unchanged")
	mergeCmd.Flags().BoolVar(&mergeAll, "all", false, "Merge every discoverable batch")
	mergeCmd.Flags().BoolVar(&mergeTUI, "tui", false, "Show an interactive progress view")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	if batchCoordinator == nil {
		return errors.New("batch coordinator not configured")
	}
	if mergeWorkers < 0 {
		return fmt.Errorf("%w: workers must not be negative", domain.ErrInvalidInput)
	}

	ctx := commandContext(cmd)
	opts := driving.RunOptions{Workers: mergeWorkers, Force: mergeForce}

	if mergeAll {
		reports, err := batchCoordinator.RunAll(ctx, opts)
		failed := 0
		for _, r := range reports {
			printReport(cmd, r)
			failed += r.Failed
		}
		if err != nil {
			return fmt.Errorf("merge failed: %w", err)
		}
		if len(reports) == 0 {
			cmd.Println("No batches found.")
		}
		return failuresError(failed)
	}

	batch := args[0]
	var (
		report *domain.BatchReport
		err    error
	)
	if mergeTUI {
		report, err = runWithTUI(ctx, batchCoordinator, batch, opts)
	} else {
		cmd.Printf("Merging batch: %s...\n", batch)
		report, err = mergeWithProgress(ctx, cmd, batchCoordinator, batch, opts)
	}
	if report != nil {
		printReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}
	return failuresError(report.Failed)
}

// mergeWithProgress runs the batch while printing progress updates.
func mergeWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	coordinator driving.BatchCoordinator,
	batch string,
	opts driving.RunOptions,
) (*domain.BatchReport, error) {
	type result struct {
		report *domain.BatchReport
		err    error
	}
	resCh := make(chan result, 1)
	go func() {
		report, err := coordinator.Run(ctx, batch, opts)
		resCh <- result{report: report, err: err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastDone := 0
	for {
		select {
		case res := <-resCh:
			if lastDone > 0 {
				cmd.Println()
			}
			return res.report, res.err
		case <-ticker.C:
			status := coordinator.Status()
			if status.Running && status.Progress.Done > lastDone {
				p := status.Progress
				cmd.Printf("\rProcessing... %d/%d documents (%d failed)", p.Done, p.Total, p.Failed)
				lastDone = p.Done
			}
		}
	}
}

func printReport(cmd *cobra.Command, r *domain.BatchReport) {
	cmd.Printf("Batch %s: %d persisted, %d failed, %d skipped (%d documents in %s)\n",
		r.Batch, r.Persisted, r.Failed, r.Skipped, r.Total, r.Duration().Round(time.Millisecond))
	for _, f := range r.Failures {
		cmd.Printf("  %s failed during %s: %s\n", f.DocumentID, f.Stage, f.Error)
	}
}

func failuresError(failed int) error {
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d", errDocumentsFailed, failed)
}
