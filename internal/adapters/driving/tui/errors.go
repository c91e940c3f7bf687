package tui

import "errors"

// ErrMissingCoordinator is returned when no batch coordinator is provided.
var ErrMissingCoordinator = errors.New("tui: batch coordinator is required")

// ErrCancelled is returned when the user quit before the batch finished.
var ErrCancelled = errors.New("tui: batch run cancelled")
