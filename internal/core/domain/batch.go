package domain

import (
	"fmt"
	"time"
)

// DocumentState is the per-document state of the merge pipeline.
//
//	Pending → Normalizing → Merging → GapFilling → Partitioning → Persisting → Persisted
//
// Failed is terminal and reachable from any state. Skipped marks documents
// whose inputs are unchanged since they were last persisted.
type DocumentState string

// Document states.
const (
	StatePending      DocumentState = "pending"
	StateNormalizing  DocumentState = "normalizing"
	StateMerging      DocumentState = "merging"
	StateGapFilling   DocumentState = "gap_filling"
	StatePartitioning DocumentState = "partitioning"
	StatePersisting   DocumentState = "persisting"
	StatePersisted    DocumentState = "persisted"
	StateFailed       DocumentState = "failed"
	StateSkipped      DocumentState = "skipped"
)

// IsTerminal reports whether no further transitions follow.
func (s DocumentState) IsTerminal() bool {
	return s == StatePersisted || s == StateFailed || s == StateSkipped
}

// StageError records the state a document was in when it failed.
type StageError struct {
	DocumentID string
	Stage      DocumentState
	Err        error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("document %s failed during %s: %v", e.DocumentID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// DocumentFailure is one failed document in a batch report.
type DocumentFailure struct {
	DocumentID string
	Stage      DocumentState
	Error      string
}

// BatchReport summarises one batch run.
type BatchReport struct {
	// RunID uniquely identifies the run.
	RunID string

	// Batch is the batch (directory) name.
	Batch string

	// Resource is the corpus the batch came from (PUBMED or PMC).
	Resource string

	StartedAt time.Time
	EndedAt   time.Time

	// Total is the number of documents dequeued.
	Total int

	Persisted int
	Failed    int
	Skipped   int

	// Failures lists every failed document.
	Failures []DocumentFailure
}

// Duration returns how long the run took.
func (r *BatchReport) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// DocumentRecord is the persisted form of a merged document.
type DocumentRecord struct {
	// DocumentID is the external document id.
	DocumentID string

	// Seq is the dense numeric key the store assigns to the document.
	// Postings bitmaps are keyed by it.
	Seq uint32

	// Resource, Batch and Name locate the recognizer inputs the record
	// came from; Name is the input file name.
	Resource string
	Batch    string
	Name     string

	// RunID is the batch run that last wrote the record.
	RunID string

	// State is StatePersisted for successfully merged documents.
	State DocumentState

	// Fingerprint identifies the inputs (recognizer outputs and vocabulary snapshot).
	Fingerprint string

	// IsCancer is true when the document carries a cancer-disease annotation.
	IsCancer bool

	// AnnotationCount is the size of the merged annotation set.
	AnnotationCount int

	// UpdatedAt is when the record was written.
	UpdatedAt time.Time

	// Document is the merged document; it may be nil for summary listings.
	Document *Document
}
