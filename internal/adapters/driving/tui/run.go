package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pubminer/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driving"
)

// RunBatch merges batch through coordinator while rendering the progress
// view. It returns once the run has returned and the view has exited.
// Quitting early cancels the run and yields ErrCancelled alongside any
// partial report.
func RunBatch(
	ctx context.Context,
	coordinator driving.BatchCoordinator,
	batch string,
	opts driving.RunOptions,
	programOpts ...tea.ProgramOption,
) (*domain.BatchReport, error) {
	if coordinator == nil {
		return nil, ErrMissingCoordinator
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	view := NewBatchView(batch, cancel)
	program := tea.NewProgram(view, programOpts...)

	forward := opts.Progress
	opts.Progress = func(p driving.BatchProgress) {
		if forward != nil {
			forward(p)
		}
		program.Send(messages.Progress{Snapshot: p})
	}

	type result struct {
		report *domain.BatchReport
		err    error
	}
	finished := make(chan result, 1)
	go func() {
		report, err := coordinator.Run(runCtx, batch, opts)
		finished <- result{report: report, err: err}
		program.Send(messages.Done{Report: report, Err: err})
	}()

	// A cancelled parent context, e.g. SIGINT, shows up as a cancel request.
	exited := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			program.Send(messages.CancelRequested{})
		case <-exited:
		}
	}()

	_, runErr := program.Run()
	close(exited)

	// The view may exit before the run does, e.g. on a terminal error.
	cancel()
	res := <-finished

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return res.report, fmt.Errorf("progress view: %w", runErr)
	}
	if (view.Cancelled() || ctx.Err() != nil) && res.err == nil {
		return res.report, ErrCancelled
	}
	return res.report, res.err
}
