// Package messages defines Bubbletea message types for the progress view.
// Messages carry coordinator events into the Elm update loop.
package messages

import (
	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driving"
)

// Progress is sent after every finished document.
type Progress struct {
	Snapshot driving.BatchProgress
}

// Done is sent once when the batch run returns.
type Done struct {
	Report *domain.BatchReport
	Err    error
}

// CancelRequested signals that the user asked to stop the run.
type CancelRequested struct{}
