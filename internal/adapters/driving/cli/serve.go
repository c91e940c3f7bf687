package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/logger"
)

// serveWatch is the --watch flag of the serve command.
var serveWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled batch merging",
	Long: `Runs the scheduler, which periodically merges every discoverable batch
(task merge-batches, interval from scheduler.interval). With --watch new
batches are also merged as they appear. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Also merge new batches as they appear")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}
	if serveWatch && watcherFactory == nil {
		return errors.New("batch watcher not configured")
	}
	if !schedulerConfig.Enabled && !serveWatch {
		return errors.New("scheduler is disabled (scheduler.enabled = false) and --watch not given")
	}

	ctx := commandContext(cmd)
	g, gctx := errgroup.WithContext(ctx)

	if schedulerConfig.Enabled {
		task := schedulerConfig.GetTaskConfig(domain.TaskIDMergeBatches)
		cmd.Printf("Scheduler started: %s every %s\n", domain.TaskIDMergeBatches, task.Interval)
		g.Go(func() error {
			if err := scheduler.Start(gctx); err != nil {
				return fmt.Errorf("scheduler: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			if err := scheduler.Stop(); err != nil {
				logger.Warn("stop scheduler: %v", err)
			}
			return nil
		})
	}

	if serveWatch {
		w := watcherFactory(WatchOptions{
			OnReport: func(r *domain.BatchReport) { printReport(cmd, r) },
		})
		cmd.Println("Watching for new batches...")
		g.Go(func() error {
			if err := w.Run(gctx); err != nil {
				return fmt.Errorf("watch: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	cmd.Println("Stopped.")
	return nil
}
