// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - RecognizerSource: Discovers and reads recognizer outputs on disk
//   - ReferenceLoader: Loads the shared vocabularies once per batch
//   - Normaliser: Maps raw recognizer annotations into the canonical taxonomy
//   - NormaliserRegistry: Selects the normaliser for a recognizer kind
//   - Stage / StagePipeline: Merge, gap-fill and partition stages
//   - DocumentWriter: Emits merged documents (BioC XML/JSON, store)
//   - DocumentStore: Merged document persistence
//   - RunStore: Batch run history
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - PostingsStore: Identifier/mention postings. Without it, lookups are disabled.
//   - SchedulerStore: Scheduler state. Without it, task state is kept in memory.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, normaliser or postprocessor package
package driven
