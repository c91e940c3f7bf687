package domain

import "errors"

// Domain errors represent merge-engine failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown recognizer, stage or entity type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrMalformedOutput indicates a recognizer output that could not be parsed.
	// The recognizer's contribution is treated as empty.
	ErrMalformedOutput = errors.New("malformed recognizer output")

	// ErrUnresolvableDocument indicates a document with no passages or no
	// base recognizer output. The document fails.
	ErrUnresolvableDocument = errors.New("unresolvable document")

	// ErrReferenceData indicates the shared vocabularies could not be loaded.
	// The batch cannot start.
	ErrReferenceData = errors.New("reference data unavailable")

	// ErrBatchInProgress indicates a batch is already running.
	ErrBatchInProgress = errors.New("batch in progress")
)
